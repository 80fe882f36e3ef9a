package expense

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/tripsplit/internal/allocation"
)

// Repository handles expense and share data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateExpenseWithShares inserts an expense and all its shares in one
// transaction so a failed share insert never leaves a half-written
// expense behind.
func (r *Repository) CreateExpenseWithShares(ctx context.Context, expense *Expense, shares []*Share) (*ExpenseWithShares, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	expenseQuery := `
		INSERT INTO expenses (id, trip_id, payer_id, description, amount, currency_code, split_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	expense.ID = uuid.NewString()
	err = tx.QueryRowContext(ctx, expenseQuery,
		expense.ID,
		expense.TripID,
		expense.PayerID,
		expense.Description,
		expense.Amount,
		expense.CurrencyCode,
		expense.SplitType,
	).Scan(&expense.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	shareQuery := `
		INSERT INTO expense_shares (id, expense_id, participant_id, amount_owed, breakdown)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, share := range shares {
		share.ID = uuid.NewString()
		share.ExpenseID = expense.ID

		var breakdown []byte
		if share.Breakdown != nil {
			breakdown, err = json.Marshal(share.Breakdown)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal breakdown: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, shareQuery,
			share.ID, share.ExpenseID, share.ParticipantID, share.AmountOwed, breakdown,
		); err != nil {
			return nil, fmt.Errorf("failed to create share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	return &ExpenseWithShares{Expense: expense, Shares: shares}, nil
}

// GetExpenseByID retrieves an expense by its ID, or nil if it does not exist
func (r *Repository) GetExpenseByID(ctx context.Context, id string) (*Expense, error) {
	query := `
		SELECT id, trip_id, payer_id, description, amount, currency_code, split_type, created_at
		FROM expenses
		WHERE id = $1
	`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.TripID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.CurrencyCode,
		&expense.SplitType,
		&expense.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// GetSharesByExpenseID retrieves all shares of an expense
func (r *Repository) GetSharesByExpenseID(ctx context.Context, expenseID string) ([]*Share, error) {
	query := `
		SELECT id, expense_id, participant_id, amount_owed, breakdown
		FROM expense_shares
		WHERE expense_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	return scanShares(rows)
}

// ListExpensesByTripID retrieves expenses for a trip with pagination
func (r *Repository) ListExpensesByTripID(ctx context.Context, tripID string, limit, offset int) ([]*Expense, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE trip_id = $1`, tripID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT id, trip_id, payer_id, description, amount, currency_code, split_type, created_at
		FROM expenses
		WHERE trip_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, tripID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.TripID,
			&expense.PayerID,
			&expense.Description,
			&expense.Amount,
			&expense.CurrencyCode,
			&expense.SplitType,
			&expense.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, total, rows.Err()
}

// ListAllByTripID retrieves every expense of a trip together with its
// shares, oldest first. The settlement calculator consumes this.
func (r *Repository) ListAllByTripID(ctx context.Context, tripID string) ([]*ExpenseWithShares, error) {
	query := `
		SELECT id, trip_id, payer_id, description, amount, currency_code, split_type, created_at
		FROM expenses
		WHERE trip_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.TripID,
			&expense.PayerID,
			&expense.Description,
			&expense.Amount,
			&expense.CurrencyCode,
			&expense.SplitType,
			&expense.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*ExpenseWithShares, len(expenses))
	for i, expense := range expenses {
		shares, err := r.GetSharesByExpenseID(ctx, expense.ID)
		if err != nil {
			return nil, err
		}
		result[i] = &ExpenseWithShares{Expense: expense, Shares: shares}
	}
	return result, nil
}

// UpdateExpenseWithShares rewrites an expense and replaces its shares in
// one transaction. Shares are fully recalculated on every edit, so a
// delete-and-insert is simpler and as correct as a diff.
func (r *Repository) UpdateExpenseWithShares(ctx context.Context, expense *Expense, shares []*Share) (*ExpenseWithShares, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE expenses
		SET payer_id = $2, description = $3, amount = $4, split_type = $5
		WHERE id = $1
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, updateQuery,
		expense.ID,
		expense.PayerID,
		expense.Description,
		expense.Amount,
		expense.SplitType,
	).Scan(&expense.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_shares WHERE expense_id = $1`, expense.ID); err != nil {
		return nil, fmt.Errorf("failed to clear shares: %w", err)
	}

	shareQuery := `
		INSERT INTO expense_shares (id, expense_id, participant_id, amount_owed, breakdown)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, share := range shares {
		share.ID = uuid.NewString()
		share.ExpenseID = expense.ID

		var breakdown []byte
		if share.Breakdown != nil {
			breakdown, err = json.Marshal(share.Breakdown)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal breakdown: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, shareQuery,
			share.ID, share.ExpenseID, share.ParticipantID, share.AmountOwed, breakdown,
		); err != nil {
			return nil, fmt.Errorf("failed to create share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	return &ExpenseWithShares{Expense: expense, Shares: shares}, nil
}

// DeleteExpense deletes an expense; shares cascade via foreign key
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func scanShares(rows *sql.Rows) ([]*Share, error) {
	var shares []*Share
	for rows.Next() {
		share := &Share{}
		var breakdown []byte
		if err := rows.Scan(
			&share.ID,
			&share.ExpenseID,
			&share.ParticipantID,
			&share.AmountOwed,
			&breakdown,
		); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if len(breakdown) > 0 {
			share.Breakdown = &allocation.ParticipantBreakdown{}
			if err := json.Unmarshal(breakdown, share.Breakdown); err != nil {
				return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
			}
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}
