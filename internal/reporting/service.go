package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/cdr-lab/cdr-service/internal/api/v1"
	"github.com/cdr-lab/cdr-service/internal/core/storage"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
// These are caught before any storage query is issued.
var ErrInvalidQuery = errors.New("invalid aggregate query")

// Service implements the read-only aggregate query layer. It is a thin
// pass-through: every operation is one relational aggregate served by the
// storage engine, plus caller-side validation.
type Service struct {
	store storage.CallRecordStore
}

func NewService(store storage.CallRecordStore) *Service {
	if store == nil {
		panic("reporting: store must not be nil")
	}
	return &Service{store: store}
}

// AverageCallCost returns the mean cost, invalid over an empty record set.
func (s *Service) AverageCallCost(ctx context.Context) (decimal.NullDecimal, error) {
	return s.store.AverageCallCost(ctx)
}

// MinCallCost returns the smallest cost, invalid over an empty record set.
func (s *Service) MinCallCost(ctx context.Context) (decimal.NullDecimal, error) {
	return s.store.MinCallCost(ctx)
}

// MaxCallCost returns the largest cost, invalid over an empty record set.
func (s *Service) MaxCallCost(ctx context.Context) (decimal.NullDecimal, error) {
	return s.store.MaxCallCost(ctx)
}

// TotalCallCost returns the cost sum, zero over an empty record set.
func (s *Service) TotalCallCost(ctx context.Context) (decimal.Decimal, error) {
	return s.store.TotalCallCost(ctx)
}

// TotalCallCount returns the number of stored records.
func (s *Service) TotalCallCount(ctx context.Context) (int64, error) {
	return s.store.TotalCallCount(ctx)
}

// LongestCalls returns the top records by duration descending.
// top below 1 is rejected before storage is queried.
func (s *Service) LongestCalls(ctx context.Context, top int) ([]*v1.CallRecord, error) {
	if top < 1 {
		return nil, fmt.Errorf("%w: top must be at least 1, got %d", ErrInvalidQuery, top)
	}
	return s.store.LongestCalls(ctx, top)
}

// AverageNumberOfCalls returns the call count in the closed [start, end]
// interval divided by the interval length in days. A zero-length interval
// yields nil (no result, the division-by-zero guard); start after end is
// rejected before storage is queried.
func (s *Service) AverageNumberOfCalls(ctx context.Context, start, end time.Time) (*float64, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date %s is after end date %s",
			ErrInvalidQuery, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	totalDays := end.Sub(start).Hours() / 24
	if totalDays == 0 {
		return nil, nil
	}

	count, err := s.store.CallCountBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	average := float64(count) / totalDays
	return &average, nil
}

// MostCalledNumber returns the recipient with the highest occurrence count.
// It also backs the frequent-called-number endpoint; the two operations
// compute the same aggregate. ErrNoRecords flows through when empty.
func (s *Service) MostCalledNumber(ctx context.Context) (string, error) {
	return s.store.MostCalledNumber(ctx)
}

// MostActiveCaller returns the caller with the highest occurrence count.
func (s *Service) MostActiveCaller(ctx context.Context) (string, error) {
	return s.store.MostActiveCaller(ctx)
}

// TotalCallDuration sums call durations for one caller, zero when none match.
func (s *Service) TotalCallDuration(ctx context.Context, callerID string) (int64, error) {
	return s.store.TotalCallDuration(ctx, callerID)
}
