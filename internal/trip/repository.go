package trip

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository handles trip and participant data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new trip repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTrip inserts a new trip into the database
func (r *Repository) CreateTrip(ctx context.Context, name, baseCurrency string) (*Trip, error) {
	query := `
		INSERT INTO trips (id, name, base_currency)
		VALUES ($1, $2, $3)
		RETURNING id, name, base_currency, created_at, expenses_updated_at
	`

	trip := &Trip{}
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), name, baseCurrency).Scan(
		&trip.ID,
		&trip.Name,
		&trip.BaseCurrency,
		&trip.CreatedAt,
		&trip.ExpensesUpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	return trip, nil
}

// GetByID retrieves a trip by its ID, or nil if it does not exist
func (r *Repository) GetByID(ctx context.Context, id string) (*Trip, error) {
	query := `
		SELECT id, name, base_currency, created_at, expenses_updated_at
		FROM trips
		WHERE id = $1
	`

	trip := &Trip{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&trip.ID,
		&trip.Name,
		&trip.BaseCurrency,
		&trip.CreatedAt,
		&trip.ExpensesUpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return trip, nil
}

// List retrieves trips with pagination
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Trip, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	query := `
		SELECT id, name, base_currency, created_at, expenses_updated_at
		FROM trips
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		trip := &Trip{}
		if err := rows.Scan(
			&trip.ID,
			&trip.Name,
			&trip.BaseCurrency,
			&trip.CreatedAt,
			&trip.ExpensesUpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}

	return trips, total, rows.Err()
}

// Delete removes a trip and everything attached to it (participants,
// expenses and transfers cascade via foreign keys)
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddParticipant inserts a new participant for a trip
func (r *Repository) AddParticipant(ctx context.Context, tripID, name string) (*Participant, error) {
	query := `
		INSERT INTO trip_participants (id, trip_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, trip_id, name, joined_at
	`

	p := &Participant{}
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), tripID, name).Scan(
		&p.ID,
		&p.TripID,
		&p.Name,
		&p.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	return p, nil
}

// ListParticipants retrieves all participants of a trip in join order
func (r *Repository) ListParticipants(ctx context.Context, tripID string) ([]*Participant, error) {
	query := `
		SELECT id, trip_id, name, joined_at
		FROM trip_participants
		WHERE trip_id = $1
		ORDER BY joined_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{}
		if err := rows.Scan(&p.ID, &p.TripID, &p.Name, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// TouchExpenses records that an expense of the trip changed at the given
// time; settlement caching uses this to detect staleness
func (r *Repository) TouchExpenses(ctx context.Context, tripID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE trips SET expenses_updated_at = $2 WHERE id = $1`, tripID, at)
	if err != nil {
		return fmt.Errorf("failed to touch trip expenses: %w", err)
	}
	return nil
}
