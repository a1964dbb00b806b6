package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	v1 "github.com/cdr-lab/cdr-service/internal/api/v1"
	"github.com/cdr-lab/cdr-service/internal/core/storage"
)

// DefaultBatchSize bounds how many records accumulate before a commit.
const DefaultBatchSize = 500

// ValidationError reports a record that failed the persistence invariants.
// It aborts the entire upload: nothing from the offending batch is
// committed, batches already committed stay durable.
type ValidationError struct {
	Reference string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid call record %q: %v", e.Reference, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Pipeline consumes a Parser and persists its records in bounded batches.
//
// One goroutine parses and one commits, joined over a bounded channel, so
// parsing the next rows overlaps the previous batch's round trip. Batches
// are committed strictly in input order, preserving duplicate-key
// determinism; observable behavior is identical to a sequential loop.
type Pipeline struct {
	store     storage.CallRecordStore
	batchSize int
}

func NewPipeline(store storage.CallRecordStore, batchSize int) *Pipeline {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{store: store, batchSize: batchSize}
}

// Run drains the parser and commits every full batch plus the final
// partial one. Nil entries (rows that failed to decode) are skipped and
// not counted. Zero records is a no-op success. Returns the number of
// records persisted.
func (p *Pipeline) Run(ctx context.Context, parser *Parser) (int, error) {
	records := make(chan *v1.CallRecord, p.batchSize)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(records)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rec, err := parser.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if rec == nil {
				continue
			}

			select {
			case records <- rec:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	var total int
	g.Go(func() error {
		batch := make([]*v1.CallRecord, 0, p.batchSize)
		for rec := range records {
			batch = append(batch, rec)
			if len(batch) >= p.batchSize {
				if err := p.commit(ctx, batch); err != nil {
					return err
				}
				total += len(batch)
				batch = batch[:0]
			}
		}

		if len(batch) > 0 {
			if err := p.commit(ctx, batch); err != nil {
				return err
			}
			total += len(batch)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}

	slog.Info("Ingestion complete", "records", total)
	return total, nil
}

// commit validates every record in the batch, then persists it in one
// transaction. The first invalid record fails the whole upload.
func (p *Pipeline) commit(ctx context.Context, batch []*v1.CallRecord) error {
	// The producer may have aborted while this batch was buffered.
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, rec := range batch {
		if err := rec.Validate(); err != nil {
			return &ValidationError{Reference: rec.Reference, Err: err}
		}
	}

	if err := p.store.SaveRecords(ctx, batch); err != nil {
		return err
	}

	slog.Debug("Committed batch", "records", len(batch))
	return nil
}
