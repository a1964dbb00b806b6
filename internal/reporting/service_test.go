package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/cdr-lab/cdr-service/internal/api/v1"
)

// stubStore is a canned-response CallRecordStore for service and handler tests.
type stubStore struct {
	avgCost  decimal.NullDecimal
	minCost  decimal.NullDecimal
	maxCost  decimal.NullDecimal
	sumCost  decimal.Decimal
	count    int64
	longest  []*v1.CallRecord
	between  int64
	topGroup string
	duration int64
	err      error

	queried  bool
	gotTop   int
	gotStart time.Time
	gotEnd   time.Time
}

func (s *stubStore) SaveRecords(ctx context.Context, records []*v1.CallRecord) error {
	return s.err
}

func (s *stubStore) AverageCallCost(ctx context.Context) (decimal.NullDecimal, error) {
	s.queried = true
	return s.avgCost, s.err
}

func (s *stubStore) MinCallCost(ctx context.Context) (decimal.NullDecimal, error) {
	s.queried = true
	return s.minCost, s.err
}

func (s *stubStore) MaxCallCost(ctx context.Context) (decimal.NullDecimal, error) {
	s.queried = true
	return s.maxCost, s.err
}

func (s *stubStore) TotalCallCost(ctx context.Context) (decimal.Decimal, error) {
	s.queried = true
	return s.sumCost, s.err
}

func (s *stubStore) TotalCallCount(ctx context.Context) (int64, error) {
	s.queried = true
	return s.count, s.err
}

func (s *stubStore) LongestCalls(ctx context.Context, top int) ([]*v1.CallRecord, error) {
	s.queried = true
	s.gotTop = top
	return s.longest, s.err
}

func (s *stubStore) CallCountBetween(ctx context.Context, start, end time.Time) (int64, error) {
	s.queried = true
	s.gotStart, s.gotEnd = start, end
	return s.between, s.err
}

func (s *stubStore) MostCalledNumber(ctx context.Context) (string, error) {
	s.queried = true
	return s.topGroup, s.err
}

func (s *stubStore) MostActiveCaller(ctx context.Context) (string, error) {
	s.queried = true
	return s.topGroup, s.err
}

func (s *stubStore) TotalCallDuration(ctx context.Context, callerID string) (int64, error) {
	s.queried = true
	return s.duration, s.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_LongestCalls_RejectsNonPositiveTop(t *testing.T) {
	for _, top := range []int{0, -1} {
		store := &stubStore{}
		svc := NewService(store)

		_, err := svc.LongestCalls(context.Background(), top)
		require.ErrorIs(t, err, ErrInvalidQuery)
		require.False(t, store.queried, "storage must not be queried for top=%d", top)
	}
}

func TestService_LongestCalls_PassesTopThrough(t *testing.T) {
	store := &stubStore{longest: []*v1.CallRecord{{Reference: "REF1"}}}
	svc := NewService(store)

	records, err := svc.LongestCalls(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 5, store.gotTop)
	require.Len(t, records, 1)
}

func TestService_AverageNumberOfCalls(t *testing.T) {
	t.Run("start after end is rejected before querying", func(t *testing.T) {
		store := &stubStore{}
		svc := NewService(store)

		_, err := svc.AverageNumberOfCalls(context.Background(),
			date(2023, 1, 10), date(2023, 1, 1))
		require.ErrorIs(t, err, ErrInvalidQuery)
		require.False(t, store.queried)
	})

	t.Run("zero-length interval yields no result", func(t *testing.T) {
		store := &stubStore{between: 99}
		svc := NewService(store)

		avg, err := svc.AverageNumberOfCalls(context.Background(),
			date(2023, 1, 1), date(2023, 1, 1))
		require.NoError(t, err)
		require.Nil(t, avg)
		require.False(t, store.queried, "division-by-zero guard fires before querying")
	})

	t.Run("count divided by interval days", func(t *testing.T) {
		store := &stubStore{between: 20}
		svc := NewService(store)

		avg, err := svc.AverageNumberOfCalls(context.Background(),
			date(2023, 1, 1), date(2023, 1, 11))
		require.NoError(t, err)
		require.NotNil(t, avg)
		require.InDelta(t, 2.0, *avg, 1e-9)
		require.Equal(t, date(2023, 1, 1), store.gotStart)
		require.Equal(t, date(2023, 1, 11), store.gotEnd)
	})
}

func TestService_AverageCallCost_PassThrough(t *testing.T) {
	store := &stubStore{avgCost: decimal.NewNullDecimal(decimal.RequireFromString("1.500"))}
	svc := NewService(store)

	avg, err := svc.AverageCallCost(context.Background())
	require.NoError(t, err)
	require.True(t, avg.Valid)
	require.True(t, avg.Decimal.Equal(decimal.RequireFromString("1.500")))
}
