package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/cdr-lab/cdr-service/internal/api/v1"
	"github.com/cdr-lab/cdr-service/internal/core/storage"
)

// newMockAdapter builds an Adapter over a sqlmock connection, registering
// the prepare expectations for every aggregate statement.
func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	for _, q := range []string{
		queryAverageCallCost,
		queryMinCallCost,
		queryMaxCallCost,
		queryTotalCallCost,
		queryTotalCallCount,
		queryLongestCalls,
		queryCallCountBetween,
		queryMostCalledNumber,
		queryMostActiveCaller,
		queryTotalCallDuration,
	} {
		mock.ExpectPrepare(regexp.QuoteMeta(q))
	}

	a := &Adapter{db: db}
	require.NoError(t, a.prepareStatements())

	return a, mock, db
}

func testRecord(ref string) *v1.CallRecord {
	return &v1.CallRecord{
		Reference:       ref,
		CallerID:        "441234567890",
		Recipient:       "447700900123",
		CallDate:        time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:         v1.TimeOfDay{Hour: 10},
		DurationSeconds: 60,
		Cost:            decimal.RequireFromString("1.500"),
		Currency:        "GBP",
	}
}

func TestAdapter_SaveRecords(t *testing.T) {
	tests := []struct {
		name       string
		records    []*v1.CallRecord
		mockResult func(mock sqlmock.Sqlmock)
		assertions func(t *testing.T, err error)
	}{
		{
			name:    "empty batch is a no-op",
			records: nil,
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:    "commits all records in one transaction",
			records: []*v1.CallRecord{testRecord("REF1"), testRecord("REF2")},
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				prep := mock.ExpectPrepare(regexp.QuoteMeta(queryInsertRecord))
				prep.ExpectExec().
					WithArgs("REF1", "441234567890", "447700900123",
						sqlmock.AnyArg(), sqlmock.AnyArg(), 60, sqlmock.AnyArg(), "GBP").
					WillReturnResult(sqlmock.NewResult(0, 1))
				prep.ExpectExec().
					WithArgs("REF2", "441234567890", "447700900123",
						sqlmock.AnyArg(), sqlmock.AnyArg(), 60, sqlmock.AnyArg(), "GBP").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:    "unique violation maps to ErrDuplicate",
			records: []*v1.CallRecord{testRecord("REF1")},
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				prep := mock.ExpectPrepare(regexp.QuoteMeta(queryInsertRecord))
				prep.ExpectExec().
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			assertions: func(t *testing.T, err error) {
				require.ErrorIs(t, err, storage.ErrDuplicate)
				require.ErrorContains(t, err, "REF1")
			},
		},
		{
			name:    "other insert errors are wrapped",
			records: []*v1.CallRecord{testRecord("REF1")},
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				prep := mock.ExpectPrepare(regexp.QuoteMeta(queryInsertRecord))
				prep.ExpectExec().
					WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			assertions: func(t *testing.T, err error) {
				require.Error(t, err)
				require.NotErrorIs(t, err, storage.ErrDuplicate)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			if tc.mockResult != nil {
				tc.mockResult(mock)
			}

			err := adapter.SaveRecords(context.Background(), tc.records)
			tc.assertions(t, err)

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_AverageCallCost(t *testing.T) {
	t.Run("returns value", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queryAverageCallCost)).
			WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow("1.500"))

		avg, err := adapter.AverageCallCost(context.Background())
		require.NoError(t, err)
		require.True(t, avg.Valid)
		require.True(t, avg.Decimal.Equal(decimal.RequireFromString("1.500")))
	})

	t.Run("empty table yields invalid decimal, not zero", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queryAverageCallCost)).
			WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))

		avg, err := adapter.AverageCallCost(context.Background())
		require.NoError(t, err)
		require.False(t, avg.Valid)
	})
}

func TestAdapter_TotalCallCost_EmptyTableIsZero(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryTotalCallCost)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("0"))

	total, err := adapter.TotalCallCost(context.Background())
	require.NoError(t, err)
	require.True(t, total.IsZero())
}

func TestAdapter_LongestCalls(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	callDate := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"reference", "caller_id", "recipient", "call_date",
		"end_time", "duration_seconds", "cost", "currency",
	}).
		AddRow("REF2", "123", "456", callDate, "11:00:00", 300, "2.000", "GBP").
		AddRow("REF1", "123", "789", callDate, "10:00:00", 60, "1.500", "GBP")

	mock.ExpectQuery(regexp.QuoteMeta(queryLongestCalls)).
		WithArgs(2).
		WillReturnRows(rows)

	records, err := adapter.LongestCalls(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "REF2", records[0].Reference)
	require.Equal(t, 300, records[0].DurationSeconds)
	require.Equal(t, v1.TimeOfDay{Hour: 11}, records[0].EndTime)
	require.True(t, records[0].Cost.Equal(decimal.RequireFromString("2.000")))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CallCountBetween(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 11, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryCallCountBetween)).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	n, err := adapter.CallCountBetween(context.Background(), start, end)
	require.NoError(t, err)
	require.Equal(t, int64(42), n)
}

func TestAdapter_MostCalledNumber(t *testing.T) {
	t.Run("returns top recipient", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queryMostCalledNumber)).
			WillReturnRows(sqlmock.NewRows([]string{"recipient"}).AddRow("447700900123"))

		number, err := adapter.MostCalledNumber(context.Background())
		require.NoError(t, err)
		require.Equal(t, "447700900123", number)
	})

	t.Run("empty table maps to ErrNoRecords", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queryMostCalledNumber)).
			WillReturnRows(sqlmock.NewRows([]string{"recipient"}))

		_, err := adapter.MostCalledNumber(context.Background())
		require.ErrorIs(t, err, storage.ErrNoRecords)
	})
}

func TestAdapter_TotalCallDuration(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryTotalCallDuration)).
		WithArgs("441234567890").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(int64(360)))

	total, err := adapter.TotalCallDuration(context.Background(), "441234567890")
	require.NoError(t, err)
	require.Equal(t, int64(360), total)
}
