package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/cdr-lab/cdr-service/internal/api/v1"
)

// CSV column names, matched case-insensitively and order-independently.
const (
	colCallerID  = "caller_id"
	colRecipient = "recipient"
	colCallDate  = "call_date"
	colEndTime   = "end_time"
	colDuration  = "duration"
	colCost      = "cost"
	colReference = "reference"
	colCurrency  = "currency"
)

// Headers lists the documented column order used when encoding records.
var Headers = []string{
	colCallerID, colRecipient, colCallDate, colEndTime,
	colDuration, colCost, colReference, colCurrency,
}

// The two accepted call_date layouts: day/month/year with an optional
// time component. Anything else is a decode error.
var dateLayouts = []string{"02/01/2006 15:04:05", "02/01/2006"}

// DecodeError reports a row that could not be converted into a CallRecord.
type DecodeError struct {
	Line   int
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder converts raw CSV rows into CallRecords using the column positions
// discovered in the header row. It is a pure row-to-record function; all
// side effects (logging, persistence) live upstream.
type Decoder struct {
	// index maps known column names to their position in each row.
	// A missing column simply never sets its field.
	index map[string]int
}

// NewDecoder builds a decoder from the header row. Header names are
// normalized to lower case; unknown columns are ignored.
func NewDecoder(header []string) *Decoder {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return &Decoder{index: index}
}

// Decode converts one row into a CallRecord. line is the 1-based position
// in the stream, used only for error reporting. Rows shorter than the
// header are tolerated; the absent trailing fields stay zero.
func (d *Decoder) Decode(line int, row []string) (*v1.CallRecord, error) {
	rec := &v1.CallRecord{
		CallerID:  d.field(row, colCallerID),
		Recipient: d.field(row, colRecipient),
		Reference: d.field(row, colReference),
		Currency:  d.field(row, colCurrency),
	}

	if text, ok := d.lookup(row, colCallDate); ok {
		date, err := parseCallDate(text)
		if err != nil {
			return nil, &DecodeError{Line: line, Column: colCallDate, Err: err}
		}
		rec.CallDate = date
	}

	if text, ok := d.lookup(row, colEndTime); ok {
		endTime, err := v1.ParseTimeOfDay(text)
		if err != nil {
			return nil, &DecodeError{Line: line, Column: colEndTime, Err: err}
		}
		rec.EndTime = endTime
	}

	if text, ok := d.lookup(row, colDuration); ok {
		duration, err := strconv.Atoi(text)
		if err != nil {
			return nil, &DecodeError{Line: line, Column: colDuration,
				Err: fmt.Errorf("%q is not a valid duration", text)}
		}
		rec.DurationSeconds = duration
	}

	if text, ok := d.lookup(row, colCost); ok {
		cost, err := decimal.NewFromString(text)
		if err != nil {
			return nil, &DecodeError{Line: line, Column: colCost,
				Err: fmt.Errorf("%q is not a valid cost", text)}
		}
		rec.Cost = cost
	}

	return rec, nil
}

func (d *Decoder) field(row []string, col string) string {
	text, _ := d.lookup(row, col)
	return text
}

func (d *Decoder) lookup(row []string, col string) (string, bool) {
	i, ok := d.index[col]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// parseCallDate accepts exactly the two documented layouts.
func parseCallDate(text string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, text); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a valid date or date and time", text)
}
