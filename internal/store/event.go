package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// eventRepo implements EventRepo on the query_events table.
type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendQueryEvent(ctx context.Context, data QueryEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO query_events (
			timestamp, subject, marks, history_len, question,
			latency_ms, success, status_code, source_count, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UnixMilli(),
		data.Subject,
		data.Marks,
		data.HistoryLen,
		data.Question,
		data.LatencyMs,
		boolToInt(data.Success),
		data.StatusCode,
		data.SourceCount,
		data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save query event: %w", err)
	}
	return nil
}

const queryEventColumns = `id, timestamp, subject, marks, history_len, question,
	latency_ms, success, status_code, source_count, error_message`

func (r *eventRepo) QueryQueryEvents(ctx context.Context, opts QueryOpts) ([]QueryEventRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, opts.Subject)
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, opts.To.UnixMilli())
	}

	query := "SELECT " + queryEventColumns + " FROM query_events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []QueryEventRecord
	for rows.Next() {
		rec, err := scanQueryEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetQueryEvent(ctx context.Context, id int) (*QueryEventRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+queryEventColumns+" FROM query_events WHERE id = ?", id)
	rec, err := scanQueryEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *eventRepo) UsageBySubject(ctx context.Context) ([]SubjectUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT subject,
		       COUNT(*),
		       SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM query_events
		GROUP BY subject
		ORDER BY subject`)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}
	defer rows.Close()

	var out []SubjectUsage
	for rows.Next() {
		var u SubjectUsage
		if err := rows.Scan(&u.Subject, &u.Calls, &u.Failures, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueryEvent(row rowScanner) (*QueryEventRecord, error) {
	var (
		rec     QueryEventRecord
		ts      int64
		success int
	)
	err := row.Scan(
		&rec.ID, &ts, &rec.Subject, &rec.Marks, &rec.HistoryLen, &rec.Question,
		&rec.LatencyMs, &success, &rec.StatusCode, &rec.SourceCount, &rec.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan query event: %w", err)
	}
	rec.Timestamp = time.UnixMilli(ts)
	rec.Success = success != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
