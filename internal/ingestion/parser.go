package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	v1 "github.com/cdr-lab/cdr-service/internal/api/v1"
)

// ErrEmptyStream is returned by NewParser when the stream has no header row.
var ErrEmptyStream = errors.New("csv stream has no header row")

// Parser produces a lazy, forward-only sequence of call records from CSV
// text. Rows are read one at a time; the full record set is never held in
// memory, so arbitrarily large uploads stay bounded in the parse stage.
// A Parser is consumable exactly once.
type Parser struct {
	csv     *csv.Reader
	decoder *Decoder
	line    int
}

// NewParser reads the header row eagerly and builds the column mapping.
// A missing or unreadable header is a structural error; rows shorter than
// the header are tolerated later.
func NewParser(r io.Reader) (*Parser, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyStream
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	return &Parser{csv: cr, decoder: NewDecoder(header), line: 1}, nil
}

// Next returns the next decoded record, or io.EOF when the stream ends.
//
// Failure policy: a single row that fails to decode (bad date, bad number,
// broken quoting) yields a nil record and is logged at warn level; the
// pipeline skips nil entries. Only stream-level failures (I/O errors)
// abort the sequence.
func (p *Parser) Next() (*v1.CallRecord, error) {
	row, err := p.csv.Read()
	p.line++

	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		slog.Warn("Skipping malformed csv row", "line", parseErr.Line, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv row: %w", err)
	}

	rec, err := p.decoder.Decode(p.line, row)
	if err != nil {
		slog.Warn("Skipping row that failed to decode", "line", p.line, "error", err)
		return nil, nil
	}

	return rec, nil
}
