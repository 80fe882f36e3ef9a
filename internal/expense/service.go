package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/allocation"
	"github.com/fkhayef/tripsplit/internal/currency"
	"github.com/fkhayef/tripsplit/internal/expense/split"
	"github.com/fkhayef/tripsplit/internal/rounding"
	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrTripNotFound    = errors.New("trip not found")
)

// Service handles expense business logic
type Service struct {
	repo         *Repository
	tripRepo     *trip.Repository
	splitFactory *split.Factory
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, tripRepo *trip.Repository, splitFactory *split.Factory) *Service {
	return &Service{
		repo:         repo,
		tripRepo:     tripRepo,
		splitFactory: splitFactory,
	}
}

// CreateExpense creates a new expense and calculates shares using either
// a simple split strategy or the itemized allocation calculator. The
// trip's expense clock is bumped so cached settlements go stale.
func (s *Service) CreateExpense(ctx context.Context, req *CreateExpenseRequest) (*ExpenseWithShares, error) {
	tr, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, ErrTripNotFound
	}

	amount, shares, err := s.buildShares(ctx, req, tr)
	if err != nil {
		return nil, err
	}

	expense := &Expense{
		TripID:       req.TripID,
		PayerID:      req.PayerID,
		Description:  req.Description,
		Amount:       amount,
		CurrencyCode: tr.BaseCurrency,
		SplitType:    SplitType(req.SplitType),
	}

	result, err := s.repo.CreateExpenseWithShares(ctx, expense, shares)
	if err != nil {
		return nil, err
	}

	if err := s.tripRepo.TouchExpenses(ctx, req.TripID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateExpense replaces an expense's payer, description, split and
// shares, fully recalculating them from the request. The trip cannot
// change.
func (s *Service) UpdateExpense(ctx context.Context, id string, req *CreateExpenseRequest) (*ExpenseWithShares, error) {
	existing, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrExpenseNotFound
	}

	tr, err := s.tripRepo.GetByID(ctx, existing.TripID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, ErrTripNotFound
	}
	req.TripID = existing.TripID

	amount, shares, err := s.buildShares(ctx, req, tr)
	if err != nil {
		return nil, err
	}

	expense := &Expense{
		ID:           existing.ID,
		TripID:       existing.TripID,
		PayerID:      req.PayerID,
		Description:  req.Description,
		Amount:       amount,
		CurrencyCode: tr.BaseCurrency,
		SplitType:    SplitType(req.SplitType),
	}

	result, err := s.repo.UpdateExpenseWithShares(ctx, expense, shares)
	if err != nil {
		return nil, err
	}

	if err := s.tripRepo.TouchExpenses(ctx, existing.TripID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return result, nil
}

// buildShares validates the request against trip membership and computes
// the expense amount and per-participant shares.
func (s *Service) buildShares(ctx context.Context, req *CreateExpenseRequest, tr *trip.Trip) (decimal.Decimal, []*Share, error) {
	members, err := s.tripRepo.ListParticipants(ctx, tr.ID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	memberIDs := make([]string, len(members))
	memberSet := make(map[string]bool, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
		memberSet[m.ID] = true
	}
	if !memberSet[req.PayerID] {
		return decimal.Zero, nil, fmt.Errorf("%w: payer %q is not on trip %q", apperror.ErrDataIntegrity, req.PayerID, tr.ID)
	}

	if SplitType(req.SplitType) == SplitTypeItemized {
		return s.calculateItemized(req, memberIDs, memberSet, tr.BaseCurrency)
	}
	return s.calculateSimple(req, memberSet, tr.BaseCurrency)
}

// calculateSimple runs one of the EVEN/PERCENTAGE/EXACT strategies.
func (s *Service) calculateSimple(req *CreateExpenseRequest, memberSet map[string]bool, currencyCode string) (decimal.Decimal, []*Share, error) {
	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("%w: %v", apperror.ErrValidation, err)
	}
	if req.Amount.Sign() <= 0 {
		return decimal.Zero, nil, fmt.Errorf("%w: amount must be positive", apperror.ErrValidation)
	}
	if len(req.Participants) == 0 {
		return decimal.Zero, nil, fmt.Errorf("%w: at least one participant is required", apperror.ErrValidation)
	}

	inputs := make([]split.Input, len(req.Participants))
	for i, p := range req.Participants {
		if !memberSet[p.ParticipantID] {
			return decimal.Zero, nil, fmt.Errorf("%w: participant %q is not on this trip", apperror.ErrDataIntegrity, p.ParticipantID)
		}
		inputs[i] = p.ToSplitInput()
	}

	cfg := s.roundingConfig(req)
	cfg.Precision = currency.Precision(currencyCode)
	outputs, err := strategy.Calculate(req.Amount, inputs, cfg)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidConfiguration) {
			return decimal.Zero, nil, err
		}
		return decimal.Zero, nil, fmt.Errorf("%w: %v", apperror.ErrValidation, err)
	}

	shares := make([]*Share, len(outputs))
	for i, out := range outputs {
		shares[i] = &Share{ParticipantID: out.ParticipantID, AmountOwed: out.AmountOwed}
	}
	return req.Amount, shares, nil
}

// calculateItemized delegates to the allocation calculator; the expense
// amount is derived from the computed grand total.
func (s *Service) calculateItemized(req *CreateExpenseRequest, memberIDs []string, memberSet map[string]bool, currencyCode string) (decimal.Decimal, []*Share, error) {
	if len(req.Items) == 0 && req.Extras == nil {
		return decimal.Zero, nil, fmt.Errorf("%w: itemized expense needs items or extras", apperror.ErrValidation)
	}

	// An explicit participant list narrows the expense to a subset of the
	// trip; the default is everyone.
	participants := memberIDs
	if len(req.Participants) > 0 {
		participants = make([]string, len(req.Participants))
		for i, p := range req.Participants {
			if !memberSet[p.ParticipantID] {
				return decimal.Zero, nil, fmt.Errorf("%w: participant %q is not on this trip", apperror.ErrDataIntegrity, p.ParticipantID)
			}
			participants[i] = p.ParticipantID
		}
	}

	items := make([]allocation.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = item.toLineItem(fmt.Sprintf("item-%d", i+1))
		// An even item with no explicit list is shared by everyone on
		// the expense.
		if items[i].Assignment.Type == allocation.AssignmentEven && len(items[i].Assignment.Participants) == 0 {
			items[i].Assignment.Participants = participants
		}
	}

	breakdowns, err := allocation.Calculate(participants, items, req.Extras.toExtras(), s.allocationRule(req), currencyCode)
	if err != nil {
		return decimal.Zero, nil, err
	}

	amount := decimal.Zero
	shares := make([]*Share, 0, len(participants))
	for _, id := range participants {
		b := breakdowns[id]
		amount = amount.Add(b.Total)
		shares = append(shares, &Share{
			ParticipantID: id,
			AmountOwed:    b.Total,
			Breakdown:     b,
		})
	}
	return amount, shares, nil
}

func (s *Service) roundingConfig(req *CreateExpenseRequest) rounding.Config {
	cfg := rounding.Config{
		Mode:      rounding.ModeHalfUp,
		Strategy:  rounding.StrategyLargestShare,
		PayerID:   req.PayerID,
	}
	if req.Options != nil {
		if req.Options.RoundingMode != "" {
			cfg.Mode = rounding.Mode(req.Options.RoundingMode)
		}
		if req.Options.RemainderStrategy != "" {
			cfg.Strategy = rounding.Strategy(req.Options.RemainderStrategy)
		}
	}
	return cfg
}

func (s *Service) allocationRule(req *CreateExpenseRequest) allocation.Rule {
	rule := allocation.DefaultRule()
	rule.PayerID = req.PayerID
	if req.Options != nil {
		if req.Options.ExtrasSplit != "" {
			rule.ExtrasSplit = allocation.ExtrasSplitMode(req.Options.ExtrasSplit)
		}
		if req.Options.RoundingMode != "" {
			rule.Mode = rounding.Mode(req.Options.RoundingMode)
		}
		if req.Options.RemainderStrategy != "" {
			rule.Strategy = rounding.Strategy(req.Options.RemainderStrategy)
		}
	}
	return rule
}

// GetExpenseByID retrieves an expense with its shares
func (s *Service) GetExpenseByID(ctx context.Context, id string) (*ExpenseWithShares, error) {
	expense, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}

	shares, err := s.repo.GetSharesByExpenseID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithShares{Expense: expense, Shares: shares}, nil
}

// ListExpensesByTripID retrieves expenses for a trip
func (s *Service) ListExpensesByTripID(ctx context.Context, tripID string, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListExpensesByTripID(ctx, tripID, perPage, offset)
}

// ListWithSharesByTripID returns every expense on a trip together with
// its shares. Used by the settlement service.
func (s *Service) ListWithSharesByTripID(ctx context.Context, tripID string) ([]*ExpenseWithShares, error) {
	return s.repo.ListAllByTripID(ctx, tripID)
}

// DeleteExpense deletes an expense and bumps the trip's expense clock
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	expense, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return ErrExpenseNotFound
	}

	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	return s.tripRepo.TouchExpenses(ctx, expense.TripID, time.Now().UTC())
}

func (li *LineItemRequest) toLineItem(id string) allocation.LineItem {
	assignment := allocation.Assignment{}
	if len(li.Shares) > 0 {
		assignment.Type = allocation.AssignmentCustom
		assignment.Shares = make([]allocation.ParticipantShare, len(li.Shares))
		for i, s := range li.Shares {
			assignment.Shares[i] = allocation.ParticipantShare{
				ParticipantID: s.ParticipantID,
				Share:         s.Share,
			}
		}
	} else {
		assignment.Type = allocation.AssignmentEven
		assignment.Participants = li.Participants
	}

	return allocation.LineItem{
		ID:         id,
		Name:       li.Name,
		Quantity:   li.Quantity,
		UnitPrice:  li.UnitPrice,
		Assignment: assignment,
	}
}

func (e *ExtrasRequest) toExtras() allocation.Extras {
	if e == nil {
		return allocation.Extras{}
	}

	extras := allocation.Extras{}
	if e.Tax != nil {
		extras.Tax = &allocation.Charge{Type: allocation.ChargeType(e.Tax.Type), Value: e.Tax.Value}
	}
	if e.Tip != nil {
		extras.Tip = &allocation.Charge{Type: allocation.ChargeType(e.Tip.Type), Value: e.Tip.Value}
	}
	for _, fee := range e.Fees {
		extras.Fees = append(extras.Fees, allocation.NamedCharge{
			Name:   fee.Name,
			Charge: allocation.Charge{Type: allocation.ChargeType(fee.Type), Value: fee.Value},
		})
	}
	for _, disc := range e.Discounts {
		extras.Discounts = append(extras.Discounts, allocation.NamedCharge{
			Name:   disc.Name,
			Charge: allocation.Charge{Type: allocation.ChargeType(disc.Type), Value: disc.Value},
		})
	}
	return extras
}
