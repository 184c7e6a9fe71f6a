package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// GatewayCall records a single call to the recipe API.
type GatewayCall struct {
	Operation string
	LatencyMS int64
	Failed    bool
	Timestamp time.Time
}

// Store handles persistence of gateway call metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a call to the database.
func (s *Store) Record(ctx context.Context, c GatewayCall) error {
	ts := c.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gateway_calls (operation, latency_ms, failed, timestamp) VALUES (?, ?, ?, ?)`,
		c.Operation, c.LatencyMS, c.Failed, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to record gateway call: %w", err)
	}
	return nil
}

// Observe has the shape of forkify.Observer so the store can be plugged into
// the API client directly. Recording errors are logged, never returned.
func (s *Store) Observe(op string, latency time.Duration, err error) {
	call := GatewayCall{
		Operation: op,
		LatencyMS: latency.Milliseconds(),
		Failed:    err != nil,
	}
	if recErr := s.Record(context.Background(), call); recErr != nil {
		log.Printf("Warning: %v", recErr)
	}
}

// DailyUsage represents call totals for a single day.
type DailyUsage struct {
	Date         string
	Calls        int
	Failures     int
	AvgLatencyMS int64
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d', timestamp) AS day,
		       COUNT(*),
		       COALESCE(SUM(failed), 0),
		       COALESCE(AVG(latency_ms), 0)
		FROM gateway_calls
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var (
			u   DailyUsage
			day sql.NullString
			avg float64
		)
		if err := rows.Scan(&day, &u.Calls, &u.Failures, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		u.Date = "Unknown"
		if day.Valid {
			u.Date = day.String
		}
		u.AvgLatencyMS = int64(avg)
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM gateway_calls WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up gateway calls: %w", err)
	}
	return res.RowsAffected()
}
