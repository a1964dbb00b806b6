package postgres

import (
	"fmt"

	v1 "github.com/cdr-lab/cdr-service/internal/api/v1"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecordRow scans a database row into a CallRecord.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
// EndTime and Cost carry their own sql.Scanner implementations.
func scanRecordRow(row scanner) (*v1.CallRecord, error) {
	var rec v1.CallRecord

	err := row.Scan(
		&rec.Reference,
		&rec.CallerID,
		&rec.Recipient,
		&rec.CallDate,
		&rec.EndTime,
		&rec.DurationSeconds,
		&rec.Cost,
		&rec.Currency,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan call record row: %w", err)
	}

	return &rec, nil
}
