// Package query serves read-only access to the Postgres projection tables.
// Results may lag the processor by one projection interval; clients needing
// the live state should consume snapshots instead.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"TxLedger/internal/amount"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type QueryService struct {
	db *sql.DB
}

func NewQueryService(db *sql.DB) *QueryService {
	return &QueryService{db: db}
}

// GetStatement returns the latest projected state for one client.
func (qs *QueryService) GetStatement(ctx context.Context, client uint16) (*StatementResponse, error) {
	var (
		s         StatementResponse
		available int64
		held      int64
		total     int64
	)
	err := qs.db.QueryRowContext(ctx, `
		SELECT client, available, held, total, locked, updated_at
		FROM ledger.statements
		WHERE client = $1
	`, int32(client)).Scan(&s.Client, &available, &held, &total, &s.Locked, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Available = amount.Format(available)
	s.Held = amount.Format(held)
	s.Total = amount.Format(total)
	return &s, nil
}

// ListStatements returns projected states ordered by client id, paginated
// with an exclusive lower bound on client.
func (qs *QueryService) ListStatements(ctx context.Context, afterClient *uint16, limit int) ([]StatementResponse, error) {
	query := `
		SELECT client, available, held, total, locked, updated_at
		FROM ledger.statements
	`
	args := []interface{}{}
	argIdx := 1

	if afterClient != nil {
		query += fmt.Sprintf(" WHERE client > $%d", argIdx)
		args = append(args, int32(*afterClient))
		argIdx++
	}

	query += " ORDER BY client"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := qs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statements []StatementResponse
	for rows.Next() {
		var (
			s         StatementResponse
			available int64
			held      int64
			total     int64
		)
		if err := rows.Scan(&s.Client, &available, &held, &total, &s.Locked, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Available = amount.Format(available)
		s.Held = amount.Format(held)
		s.Total = amount.Format(total)
		statements = append(statements, s)
	}

	return statements, rows.Err()
}

// ListRejections returns the audit trail of rejected events, newest first,
// optionally filtered by client and reason.
func (qs *QueryService) ListRejections(ctx context.Context, client *uint16, reason *string, limit int) ([]RejectionResponse, error) {
	query := `
		SELECT id, client, tx, kind, reason, detail, observed_at
		FROM ledger.rejections
		WHERE TRUE
	`
	args := []interface{}{}
	argIdx := 1

	if client != nil {
		query += fmt.Sprintf(" AND client = $%d", argIdx)
		args = append(args, int32(*client))
		argIdx++
	}
	if reason != nil {
		query += fmt.Sprintf(" AND reason = $%d", argIdx)
		args = append(args, *reason)
		argIdx++
	}

	query += " ORDER BY observed_at DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := qs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rejections []RejectionResponse
	for rows.Next() {
		var r RejectionResponse
		var tx int64
		if err := rows.Scan(&r.ID, &r.Client, &tx, &r.Kind, &r.Reason, &r.Detail, &r.ObservedAt); err != nil {
			return nil, err
		}
		r.Tx = uint32(tx)
		rejections = append(rejections, r)
	}

	return rejections, rows.Err()
}
