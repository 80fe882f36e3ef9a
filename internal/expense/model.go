package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/allocation"
	"github.com/fkhayef/tripsplit/internal/expense/split"
)

// SplitType represents how an expense is divided among participants
type SplitType string

const (
	SplitTypeEven       SplitType = "EVEN"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeExact      SplitType = "EXACT"
	SplitTypeItemized   SplitType = "ITEMIZED"
)

// Expense represents one shared expense of a trip. Amounts are always in
// the trip's base currency; conversion happens upstream.
type Expense struct {
	ID           string          `json:"id"`
	TripID       string          `json:"trip_id"`
	PayerID      string          `json:"payer_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	SplitType    SplitType       `json:"split_type"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Share is one participant's owed portion of an expense. Itemized
// expenses also carry the full allocation breakdown for the expense
// detail view.
type Share struct {
	ID            string                           `json:"id"`
	ExpenseID     string                           `json:"expense_id"`
	ParticipantID string                           `json:"participant_id"`
	AmountOwed    decimal.Decimal                  `json:"amount_owed"`
	Breakdown     *allocation.ParticipantBreakdown `json:"breakdown,omitempty"`
}

// ExpenseWithShares combines an expense with its calculated shares
type ExpenseWithShares struct {
	Expense *Expense
	Shares  []*Share
}

// SplitParticipant is used when creating an expense with a simple split
type SplitParticipant struct {
	ParticipantID string           `json:"participant_id"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount        *decimal.Decimal `json:"amount,omitempty"`     // For EXACT split
}

// ToSplitInput converts to the split package's input type
func (p *SplitParticipant) ToSplitInput() split.Input {
	return split.Input{
		ParticipantID: p.ParticipantID,
		Percentage:    p.Percentage,
		Amount:        p.Amount,
	}
}
