package repository

import (
	"context"
	"database/sql"
)

// HistoryRepo handles state_changes.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

func (r *HistoryRepo) Insert(ctx context.Context, c StateChange) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO state_changes(id, store_key, course_id, from_state, to_state, changed_at)
	VALUES (?, ?, ?, ?, ?, ?);
	`, c.ID, c.StoreKey, c.CourseID, c.From, c.To, c.ChangedAt)
	return err
}

// Recent returns the newest changes recorded under storeKey first.
func (r *HistoryRepo) Recent(ctx context.Context, storeKey string, limit int) ([]StateChange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, store_key, course_id, from_state, to_state, changed_at
	FROM state_changes
	WHERE store_key = ?
	ORDER BY changed_at DESC, rowid DESC
	LIMIT ?`, storeKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StateChange
	for rows.Next() {
		var c StateChange
		if err := rows.Scan(&c.ID, &c.StoreKey, &c.CourseID, &c.From, &c.To, &c.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
