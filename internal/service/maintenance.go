package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/malla/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the TUI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes the stored progress and history of one progress entry. Other
// entries in the same database are left alone.
func (s *MaintenanceService) Reset(ctx context.Context, storeKey string) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		stmts := []struct {
			table string
			query string
		}{
			{"state_changes", `DELETE FROM state_changes WHERE store_key = ?`},
			{"kv_store", `DELETE FROM kv_store WHERE key = ?`},
		}
		for _, st := range stmts {
			if _, err := tx.ExecContext(ctx, st.query, storeKey); err != nil {
				return fmt.Errorf("reset table %s: %w", st.table, err)
			}
		}
		return nil
	})
}
