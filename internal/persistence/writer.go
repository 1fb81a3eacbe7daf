package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"TxLedger/internal/event"
	"TxLedger/internal/processor"
)

// LedgerWriter maintains the downstream Postgres projections: account
// statements for reporting and rejection rows for audit. Both writes are
// idempotent, so a replayed batch after a crash is harmless.
type LedgerWriter struct {
	db *sql.DB
}

func NewLedgerWriter(db *sql.DB) *LedgerWriter {
	return &LedgerWriter{db: db}
}

// DB exposes the underlying handle for transaction control.
func (w *LedgerWriter) DB() *sql.DB { return w.db }

// UpsertStatements writes a snapshot of account states to ledger.statements
// using a multi-row INSERT with per-client conflict resolution.
func (w *LedgerWriter) UpsertStatements(ctx context.Context, tx *sql.Tx, states []event.AccountState) error {
	if len(states) == 0 {
		return nil
	}

	query := `INSERT INTO ledger.statements
		(client, available, held, total, locked)
		VALUES `

	values := make([]string, 0, len(states))
	args := make([]interface{}, 0, len(states)*5)

	for i, s := range states {
		base := i * 5
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, int32(s.Client), s.Available, s.Held, s.Total, s.Locked)
	}

	query += strings.Join(values, ", ")
	query += ` ON CONFLICT (client) DO UPDATE SET
		available = EXCLUDED.available,
		held = EXCLUDED.held,
		total = EXCLUDED.total,
		locked = EXCLUDED.locked,
		updated_at = NOW()`

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// WriteRejections appends a batch of rejection records to ledger.rejections.
func (w *LedgerWriter) WriteRejections(ctx context.Context, tx *sql.Tx, rejections []processor.Rejection) error {
	if len(rejections) == 0 {
		return nil
	}

	query := `INSERT INTO ledger.rejections
		(id, client, tx, kind, reason, detail, observed_at)
		VALUES `

	values := make([]string, 0, len(rejections))
	args := make([]interface{}, 0, len(rejections)*7)

	for i, r := range rejections {
		base := i * 7
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args,
			r.ID, int32(r.Client), int64(r.Tx), r.Kind, r.Reason, r.Detail, r.ObservedAt,
		)
	}

	query += strings.Join(values, ", ")
	query += " ON CONFLICT (id) DO NOTHING" // Idempotent writes

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
