package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// PersonSummary is one participant's aggregate position for a trip, in
// the trip's base currency.
type PersonSummary struct {
	ParticipantID string
	TotalPaid     decimal.Decimal
	TotalOwed     decimal.Decimal
	// Net is paid minus owed: positive means the trip owes this
	// participant money, negative means they owe the trip.
	Net decimal.Decimal
}

// Transfer is one pairwise payment of the minimal settlement plan.
// Transfers are created fresh by every computation; settled status is a
// real-world fact and is carried over from the previous computation.
type Transfer struct {
	ID                string
	TripID            string
	FromParticipantID string // debtor, pays
	ToParticipantID   string // creditor, receives
	Amount            decimal.Decimal
	ComputedAt        time.Time
	IsSettled         bool
	SettledAt         *time.Time
}

// ParticipantShare is one participant's owed amount for one expense.
type ParticipantShare struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// ExpenseShares is the per-expense input to the settlement calculator: who
// paid, how much, and each participant's share. It is produced from an
// itemized breakdown or from a simple split; the calculator does not care
// which.
type ExpenseShares struct {
	PayerID    string
	AmountPaid decimal.Decimal
	Shares     []ParticipantShare
}

// Result is a complete settlement computation for a trip. Summaries are
// reported net of settled transfers: they describe what remains to be
// settled, not the historical gross balances.
type Result struct {
	TripID     string
	ComputedAt time.Time
	Summaries  []PersonSummary
	Transfers  []Transfer
}

// TripSettlement is a Result annotated with the trip's base currency and
// whether expenses changed after the plan was computed.
type TripSettlement struct {
	Result
	BaseCurrency string
	Stale        bool
}
