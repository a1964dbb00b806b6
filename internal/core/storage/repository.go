package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/cdr-lab/cdr-service/internal/api/v1"
)

// ErrDuplicate is returned when a record with an already-persisted reference
// is committed. The unique constraint on reference is the only protection
// against duplicate-reference races between concurrent uploads.
var ErrDuplicate = errors.New("call record already exists")

// ErrNoRecords is returned by group-and-rank queries when the record set is empty.
var ErrNoRecords = errors.New("no call records stored")

// CallRecordStore defines the interface for persisting call records and
// serving the read-only aggregate queries over them. Records are never
// updated or deleted; the set only grows via ingestion.
type CallRecordStore interface {
	// SaveRecords persists one batch atomically in a single transaction.
	// Returns ErrDuplicate if any record's reference is already stored.
	SaveRecords(ctx context.Context, records []*v1.CallRecord) error

	// AverageCallCost returns the mean cost over all records.
	// The result is invalid (SQL NULL) when no records are stored.
	AverageCallCost(ctx context.Context) (decimal.NullDecimal, error)

	// MinCallCost and MaxCallCost return the cost extrema, invalid when empty.
	MinCallCost(ctx context.Context) (decimal.NullDecimal, error)
	MaxCallCost(ctx context.Context) (decimal.NullDecimal, error)

	// TotalCallCost returns the sum of all costs, zero when empty.
	TotalCallCost(ctx context.Context) (decimal.Decimal, error)

	// TotalCallCount returns the number of stored records.
	TotalCallCount(ctx context.Context) (int64, error)

	// LongestCalls returns the top records ordered by duration descending.
	LongestCalls(ctx context.Context, top int) ([]*v1.CallRecord, error)

	// CallCountBetween counts records with call date in the closed interval.
	CallCountBetween(ctx context.Context, start, end time.Time) (int64, error)

	// MostCalledNumber returns the recipient with the highest occurrence
	// count; ties break arbitrarily. Returns ErrNoRecords when empty.
	MostCalledNumber(ctx context.Context) (string, error)

	// MostActiveCaller is MostCalledNumber grouped by caller instead.
	MostActiveCaller(ctx context.Context) (string, error)

	// TotalCallDuration sums durations for one caller, zero when none match.
	TotalCallDuration(ctx context.Context, callerID string) (int64, error)
}
