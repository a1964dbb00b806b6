package ingestion

import (
	"strconv"

	v1 "github.com/cdr-lab/cdr-service/internal/api/v1"
)

// EncodeRecord renders a record as one CSV row in the documented Headers
// order. Decoding the result yields an equal record; the date keeps its
// time component only when one is present.
func EncodeRecord(rec *v1.CallRecord) []string {
	callDate := rec.CallDate.Format("02/01/2006")
	if h, m, s := rec.CallDate.Clock(); h != 0 || m != 0 || s != 0 {
		callDate = rec.CallDate.Format("02/01/2006 15:04:05")
	}

	return []string{
		rec.CallerID,
		rec.Recipient,
		callDate,
		rec.EndTime.String(),
		strconv.Itoa(rec.DurationSeconds),
		rec.Cost.StringFixed(3),
		rec.Reference,
		rec.Currency,
	}
}
