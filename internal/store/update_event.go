package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpdateEventData captures one run of `cbseprep update`.
type UpdateEventData struct {
	FromVersion  string
	ToVersion    string
	Asset        string
	Success      bool
	ErrorMessage string
}

// UpdateEventRecord is a stored UpdateEventData with its identity.
type UpdateEventRecord struct {
	ID        int
	Timestamp time.Time
	UpdateEventData
}

// UpdateRepo records self-update attempts.
type UpdateRepo interface {
	AppendUpdateEvent(ctx context.Context, data UpdateEventData) error

	// RecentUpdateEvents returns up to limit events, newest first.
	RecentUpdateEvents(ctx context.Context, limit int) ([]UpdateEventRecord, error)
}

type updateRepo struct {
	db *sql.DB
}

func (r *updateRepo) AppendUpdateEvent(ctx context.Context, data UpdateEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO update_events (timestamp, from_version, to_version, asset, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UnixMilli(),
		data.FromVersion,
		data.ToVersion,
		data.Asset,
		boolToInt(data.Success),
		data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save update event: %w", err)
	}
	return nil
}

func (r *updateRepo) RecentUpdateEvents(ctx context.Context, limit int) ([]UpdateEventRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, from_version, to_version, asset, success, error_message
		FROM update_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query update events: %w", err)
	}
	defer rows.Close()

	var out []UpdateEventRecord
	for rows.Next() {
		var (
			rec     UpdateEventRecord
			ts      int64
			success int
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.FromVersion, &rec.ToVersion, &rec.Asset, &success, &rec.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan update event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		rec.Success = success != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}
