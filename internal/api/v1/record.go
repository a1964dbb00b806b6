package v1

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CallRecord is the atomic unit of the system: one completed phone call
// with its billing-relevant metadata.
type CallRecord struct {
	// Reference is the unique natural key of the call. It is the primary
	// key in storage; a duplicate reference is rejected at commit time.
	Reference string `json:"reference"`

	// CallerID is the phone number that originated the call.
	// No format validation beyond non-empty.
	CallerID string `json:"callerId"`

	// Recipient is the phone number that was dialled.
	Recipient string `json:"recipient"`

	// CallDate is the date on which the call was made. The CSV input may
	// carry an optional time component; it is preserved when present.
	CallDate time.Time `json:"callDate"`

	// EndTime is the wall-clock time at which the call ended.
	EndTime TimeOfDay `json:"endTime"`

	// DurationSeconds is the length of the call in seconds. Never negative.
	DurationSeconds int `json:"durationSeconds"`

	// Cost is the billable cost of the call, fixed-point with 3 fractional
	// digits. Never negative.
	Cost decimal.Decimal `json:"cost"`

	// Currency is the ISO 4217 alpha-3 code for Cost. Membership in the
	// ISO list is not checked.
	Currency string `json:"currency"`
}

// Validate ensures the record satisfies the persistence invariants.
// It is called on every record before a batch commit.
func (r *CallRecord) Validate() error {
	if r.Reference == "" {
		return fmt.Errorf("reference is required")
	}

	if r.CallerID == "" {
		return fmt.Errorf("caller_id is required")
	}

	if r.Recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	if r.Currency == "" {
		return fmt.Errorf("currency is required")
	}

	if r.DurationSeconds < 0 {
		return fmt.Errorf("duration must not be negative, got %d", r.DurationSeconds)
	}

	if r.Cost.IsNegative() {
		return fmt.Errorf("cost must not be negative, got %s", r.Cost)
	}

	return nil
}

// TimeOfDay is a clock time with second precision and no date component.
// It is stored as a TIME column and rendered as zero-padded "15:04:05".
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses the single accepted layout, zero-padded "15:04:05".
// Any other input is rejected.
func ParseTimeOfDay(text string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", text)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%q is not a valid time", text)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Seconds returns the offset from midnight.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Value implements driver.Valuer so the type binds directly as a TIME parameter.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner. lib/pq returns TIME columns as []byte; string
// and time.Time are accepted for other drivers and for sqlmock rows.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = TimeOfDay{Hour: v.Hour(), Minute: v.Minute(), Second: v.Second()}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// MarshalJSON renders the time as its canonical "15:04:05" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts the same layout MarshalJSON produces.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%s is not a valid time", data)
	}
	parsed, err := ParseTimeOfDay(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
