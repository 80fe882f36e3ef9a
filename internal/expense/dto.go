package expense

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/allocation"
)

// CreateExpenseRequest represents the request to create an expense.
// Simple splits (EVEN, PERCENTAGE, EXACT) use Amount and Participants;
// ITEMIZED expenses use Items and Extras, and the amount is derived.
type CreateExpenseRequest struct {
	TripID      string          `json:"trip_id" validate:"required"`
	PayerID     string          `json:"payer_id" validate:"required"`
	Description string          `json:"description" validate:"required,min=1,max=255"`
	Amount      decimal.Decimal `json:"amount,omitempty"`
	SplitType   string          `json:"split_type" validate:"required,oneof=EVEN PERCENTAGE EXACT ITEMIZED"`

	Participants []*SplitParticipant `json:"participants,omitempty"`

	Items   []*LineItemRequest `json:"items,omitempty"`
	Extras  *ExtrasRequest     `json:"extras,omitempty"`
	Options *AllocationOptions `json:"options,omitempty"`
}

// LineItemRequest represents one line item of an itemized expense.
// Participants means an even assignment; Shares means a custom one.
type LineItemRequest struct {
	Name         string             `json:"name" validate:"required"`
	Quantity     decimal.Decimal    `json:"quantity" validate:"required"`
	UnitPrice    decimal.Decimal    `json:"unit_price" validate:"required"`
	Participants []string           `json:"participants,omitempty"`
	Shares       []ItemShareRequest `json:"shares,omitempty"`
}

// ItemShareRequest is a participant's fraction (0-1) of a line item
type ItemShareRequest struct {
	ParticipantID string          `json:"participant_id"`
	Share         decimal.Decimal `json:"share"`
}

// ChargeRequest represents a flat or percent extra charge
type ChargeRequest struct {
	Type  string          `json:"type" validate:"required,oneof=FLAT PERCENT"`
	Value decimal.Decimal `json:"value"`
}

// NamedChargeRequest is a fee or discount with a display name
type NamedChargeRequest struct {
	Name  string          `json:"name" validate:"required"`
	Type  string          `json:"type" validate:"required,oneof=FLAT PERCENT"`
	Value decimal.Decimal `json:"value"`
}

// ExtrasRequest bundles the optional charges of an itemized expense
type ExtrasRequest struct {
	Tax       *ChargeRequest       `json:"tax,omitempty"`
	Tip       *ChargeRequest       `json:"tip,omitempty"`
	Fees      []NamedChargeRequest `json:"fees,omitempty"`
	Discounts []NamedChargeRequest `json:"discounts,omitempty"`
}

// AllocationOptions tunes how extras are split and how rounding
// remainders are assigned. Zero values mean the engine defaults
// (proportional extras, half-up rounding, remainder to largest share).
type AllocationOptions struct {
	ExtrasSplit       string `json:"extras_split,omitempty" validate:"omitempty,oneof=EVEN PROPORTIONAL"`
	RoundingMode      string `json:"rounding_mode,omitempty" validate:"omitempty,oneof=HALF_UP HALF_EVEN FLOOR CEIL"`
	RemainderStrategy string `json:"remainder_strategy,omitempty" validate:"omitempty,oneof=LARGEST_SHARE PAYER FIRST_LISTED RANDOM"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID           string           `json:"id"`
	TripID       string           `json:"trip_id"`
	PayerID      string           `json:"payer_id"`
	Description  string           `json:"description"`
	Amount       string           `json:"amount"`
	CurrencyCode string           `json:"currency_code"`
	SplitType    SplitType        `json:"split_type"`
	CreatedAt    string           `json:"created_at"`
	Shares       []*ShareResponse `json:"shares,omitempty"`
}

// ShareResponse represents the response for one participant's share
type ShareResponse struct {
	ID            string                           `json:"id"`
	ExpenseID     string                           `json:"expense_id"`
	ParticipantID string                           `json:"participant_id"`
	AmountOwed    string                           `json:"amount_owed"`
	Breakdown     *allocation.ParticipantBreakdown `json:"breakdown,omitempty"`
}

const timeFormat = "2006-01-02T15:04:05Z"

// ToResponse converts an Expense model to an ExpenseResponse DTO. Amounts
// are formatted at the precision of the expense currency.
func (e *Expense) ToResponse(precision int32) *ExpenseResponse {
	return &ExpenseResponse{
		ID:           e.ID,
		TripID:       e.TripID,
		PayerID:      e.PayerID,
		Description:  e.Description,
		Amount:       e.Amount.StringFixed(precision),
		CurrencyCode: e.CurrencyCode,
		SplitType:    e.SplitType,
		CreatedAt:    e.CreatedAt.Format(timeFormat),
	}
}

// ToResponse converts a Share model to a ShareResponse DTO
func (s *Share) ToResponse(precision int32) *ShareResponse {
	return &ShareResponse{
		ID:            s.ID,
		ExpenseID:     s.ExpenseID,
		ParticipantID: s.ParticipantID,
		AmountOwed:    s.AmountOwed.StringFixed(precision),
		Breakdown:     s.Breakdown,
	}
}
