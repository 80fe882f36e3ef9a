package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/fkhayef/tripsplit/internal/expense"
	"github.com/fkhayef/tripsplit/internal/trip"
)

// Common errors
var (
	ErrTripNotFound           = errors.New("trip not found")
	ErrTransferNotFound       = errors.New("transfer not found")
	ErrTransferAlreadySettled = errors.New("transfer is already settled")
)

// Service handles settlement business logic
type Service struct {
	repo        *Repository
	tripRepo    *trip.Repository
	expenseRepo *expense.Repository
}

// NewService creates a new settlement service with dependencies injected
func NewService(repo *Repository, tripRepo *trip.Repository, expenseRepo *expense.Repository) *Service {
	return &Service{
		repo:        repo,
		tripRepo:    tripRepo,
		expenseRepo: expenseRepo,
	}
}

// GetSettlement returns the trip's stored settlement plan. The first call
// for a trip computes one; after that the stored plan is returned as-is,
// flagged stale when expenses changed since it was computed. Summaries
// are always derived from the current expenses.
func (s *Service) GetSettlement(ctx context.Context, tripID string) (*TripSettlement, error) {
	tr, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, ErrTripNotFound
	}

	computedAt, err := s.repo.LatestComputedAt(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if computedAt == nil {
		return s.recompute(ctx, tr)
	}

	stored, err := s.repo.GetTransfersByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	shares, err := s.loadExpenseShares(ctx, tripID)
	if err != nil {
		return nil, err
	}
	summaries := ApplySettledAdjustment(CalculatePersonSummaries(shares), stored)

	stale := tr.ExpensesUpdatedAt != nil && tr.ExpensesUpdatedAt.After(*computedAt)
	return &TripSettlement{
		Result: Result{
			TripID:     tripID,
			ComputedAt: *computedAt,
			Summaries:  summaries,
			Transfers:  stored,
		},
		BaseCurrency: tr.BaseCurrency,
		Stale:        stale,
	}, nil
}

// Recompute rebuilds the settlement plan from the trip's current expenses
// and stores it, carrying over settled transfers from the previous plan.
func (s *Service) Recompute(ctx context.Context, tripID string) (*TripSettlement, error) {
	tr, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, ErrTripNotFound
	}
	return s.recompute(ctx, tr)
}

func (s *Service) recompute(ctx context.Context, tr *trip.Trip) (*TripSettlement, error) {
	prior, err := s.repo.GetTransfersByTripID(ctx, tr.ID)
	if err != nil {
		return nil, err
	}

	shares, err := s.loadExpenseShares(ctx, tr.ID)
	if err != nil {
		return nil, err
	}

	result := ComputeSettlement(tr.ID, shares, prior, tr.BaseCurrency, time.Now().UTC())
	if err := s.repo.ReplaceTransfers(ctx, tr.ID, result.Transfers); err != nil {
		return nil, err
	}

	return &TripSettlement{
		Result:       result,
		BaseCurrency: tr.BaseCurrency,
		Stale:        false,
	}, nil
}

// SettleTransfer marks one suggested payment as actually paid. The
// trip's base currency is returned alongside for display formatting.
func (s *Service) SettleTransfer(ctx context.Context, id string) (*Transfer, string, error) {
	t, err := s.repo.GetTransferByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if t == nil {
		return nil, "", ErrTransferNotFound
	}
	if t.IsSettled {
		return nil, "", ErrTransferAlreadySettled
	}

	tr, err := s.tripRepo.GetByID(ctx, t.TripID)
	if err != nil {
		return nil, "", err
	}
	if tr == nil {
		return nil, "", ErrTripNotFound
	}

	now := time.Now().UTC()
	ok, err := s.repo.MarkSettled(ctx, id, now)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrTransferAlreadySettled
	}

	t.IsSettled = true
	t.SettledAt = &now
	return t, tr.BaseCurrency, nil
}

func (s *Service) loadExpenseShares(ctx context.Context, tripID string) ([]ExpenseShares, error) {
	expenses, err := s.expenseRepo.ListAllByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	shares := make([]ExpenseShares, len(expenses))
	for i, e := range expenses {
		es := ExpenseShares{
			PayerID:    e.Expense.PayerID,
			AmountPaid: e.Expense.Amount,
			Shares:     make([]ParticipantShare, len(e.Shares)),
		}
		for j, sh := range e.Shares {
			es.Shares[j] = ParticipantShare{
				ParticipantID: sh.ParticipantID,
				Amount:        sh.AmountOwed,
			}
		}
		shares[i] = es
	}
	return shares, nil
}
