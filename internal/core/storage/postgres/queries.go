package postgres

// SQL statements for the call_records table. Every aggregate the service
// exposes is a single relational query served directly by the executor.

const (
	// queryInsertRecord inserts one call record. Executed per record inside
	// one transaction per batch; the primary key on reference rejects
	// duplicates with a unique_violation the adapter maps to ErrDuplicate.
	queryInsertRecord = `
		INSERT INTO call_records (
			reference, caller_id, recipient, call_date,
			end_time, duration_seconds, cost, currency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// queryAverageCallCost yields NULL over an empty table, which the
	// adapter surfaces as an invalid NullDecimal rather than zero.
	queryAverageCallCost = `SELECT AVG(cost) FROM call_records`

	queryMinCallCost = `SELECT MIN(cost) FROM call_records`

	queryMaxCallCost = `SELECT MAX(cost) FROM call_records`

	// queryTotalCallCost uses the sum identity: zero over an empty table.
	queryTotalCallCost = `SELECT COALESCE(SUM(cost), 0) FROM call_records`

	queryTotalCallCount = `SELECT COUNT(*) FROM call_records`

	queryLongestCalls = `
		SELECT
			reference, caller_id, recipient, call_date,
			end_time, duration_seconds, cost, currency
		FROM call_records
		ORDER BY duration_seconds DESC
		LIMIT $1
	`

	// queryCallCountBetween counts calls in the closed [start, end] interval.
	queryCallCountBetween = `
		SELECT COUNT(*)
		FROM call_records
		WHERE call_date >= $1 AND call_date <= $2
	`

	queryMostCalledNumber = `
		SELECT recipient
		FROM call_records
		GROUP BY recipient
		ORDER BY COUNT(*) DESC
		LIMIT 1
	`

	queryMostActiveCaller = `
		SELECT caller_id
		FROM call_records
		GROUP BY caller_id
		ORDER BY COUNT(*) DESC
		LIMIT 1
	`

	queryTotalCallDuration = `
		SELECT COALESCE(SUM(duration_seconds), 0)
		FROM call_records
		WHERE caller_id = $1
	`
)
