package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository handles database operations for settlement transfers
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetTransfersByTripID retrieves the stored settlement plan for a trip,
// settled transfers first.
func (r *Repository) GetTransfersByTripID(ctx context.Context, tripID string) ([]Transfer, error) {
	query := `
		SELECT id, trip_id, from_participant_id, to_participant_id,
		       amount, computed_at, is_settled, settled_at
		FROM settlement_transfers
		WHERE trip_id = $1
		ORDER BY is_settled DESC, from_participant_id, to_participant_id`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// GetTransferByID retrieves a single transfer, nil when absent
func (r *Repository) GetTransferByID(ctx context.Context, id string) (*Transfer, error) {
	query := `
		SELECT id, trip_id, from_participant_id, to_participant_id,
		       amount, computed_at, is_settled, settled_at
		FROM settlement_transfers
		WHERE id = $1`

	t := &Transfer{}
	var settledAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.TripID, &t.FromParticipantID, &t.ToParticipantID,
		&t.Amount, &t.ComputedAt, &t.IsSettled, &settledAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	if settledAt.Valid {
		t.SettledAt = &settledAt.Time
	}
	return t, nil
}

// ReplaceTransfers atomically replaces a trip's stored plan with a fresh
// computation. The incoming set already carries the settled transfers
// from the previous plan, so a full delete-and-insert is safe.
func (r *Repository) ReplaceTransfers(ctx context.Context, tripID string, transfers []Transfer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM settlement_transfers WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("failed to clear transfers: %w", err)
	}

	insert := `
		INSERT INTO settlement_transfers
			(id, trip_id, from_participant_id, to_participant_id, amount, computed_at, is_settled, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, t := range transfers {
		var settledAt interface{}
		if t.SettledAt != nil {
			settledAt = *t.SettledAt
		}
		if _, err := tx.ExecContext(ctx, insert,
			t.ID, t.TripID, t.FromParticipantID, t.ToParticipantID,
			t.Amount, t.ComputedAt, t.IsSettled, settledAt,
		); err != nil {
			return fmt.Errorf("failed to insert transfer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MarkSettled flags a transfer as paid in the real world. Returns false
// when the transfer does not exist or is already settled.
func (r *Repository) MarkSettled(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE settlement_transfers
		SET is_settled = TRUE, settled_at = $2
		WHERE id = $1 AND is_settled = FALSE`, id, at)
	if err != nil {
		return false, fmt.Errorf("failed to settle transfer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to settle transfer: %w", err)
	}
	return affected > 0, nil
}

// LatestComputedAt returns the timestamp of the trip's stored plan, or
// nil when no plan has been computed yet.
func (r *Repository) LatestComputedAt(ctx context.Context, tripID string) (*time.Time, error) {
	var computedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(computed_at) FROM settlement_transfers WHERE trip_id = $1`, tripID,
	).Scan(&computedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get computation time: %w", err)
	}
	if !computedAt.Valid {
		return nil, nil
	}
	return &computedAt.Time, nil
}

func scanTransfers(rows *sql.Rows) ([]Transfer, error) {
	var transfers []Transfer
	for rows.Next() {
		var t Transfer
		var settledAt sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.TripID, &t.FromParticipantID, &t.ToParticipantID,
			&t.Amount, &t.ComputedAt, &t.IsSettled, &settledAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		if settledAt.Valid {
			t.SettledAt = &settledAt.Time
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
