package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/rounding"
)

// AssignmentType defines how a line item is divided between its participants
type AssignmentType string

const (
	AssignmentEven   AssignmentType = "EVEN"
	AssignmentCustom AssignmentType = "CUSTOM"
)

// ParticipantShare is a participant's declared fraction (0-1) of an item
// under a CUSTOM assignment. Shares are ordered; order matters for how
// sub-precision division drift is absorbed.
type ParticipantShare struct {
	ParticipantID string
	Share         decimal.Decimal
}

// Assignment describes who a line item belongs to: either EVEN over an
// explicit participant list, or CUSTOM with a share per participant that
// must sum to exactly 1.
type Assignment struct {
	Type         AssignmentType
	Participants []string           // EVEN
	Shares       []ParticipantShare // CUSTOM
}

// EvenAssignment builds an even assignment over the given participants.
func EvenAssignment(participants ...string) Assignment {
	return Assignment{Type: AssignmentEven, Participants: participants}
}

// CustomAssignment builds a custom assignment from ordered shares.
func CustomAssignment(shares ...ParticipantShare) Assignment {
	return Assignment{Type: AssignmentCustom, Shares: shares}
}

// LineItem is one line of an itemized expense. Immutable; constructed per
// expense edit.
type LineItem struct {
	ID         string
	Name       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Assignment Assignment
}

// Total returns quantity x unit price.
func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// ChargeType defines how an extra charge is expressed
type ChargeType string

const (
	ChargeFlat    ChargeType = "FLAT"    // absolute amount
	ChargePercent ChargeType = "PERCENT" // percent of the pre-tax items subtotal
)

// Charge is one extra charge (tax, tip, a fee or a discount).
type Charge struct {
	Type  ChargeType
	Value decimal.Decimal
}

// FlatCharge builds a flat charge from a decimal string.
func FlatCharge(value decimal.Decimal) *Charge {
	return &Charge{Type: ChargeFlat, Value: value}
}

// PercentCharge builds a percent-of-base charge.
func PercentCharge(value decimal.Decimal) *Charge {
	return &Charge{Type: ChargePercent, Value: value}
}

// NamedCharge is a fee or discount identified by name.
type NamedCharge struct {
	Name string
	Charge
}

// Extras bundles the optional charges of one expense. Fees and discounts
// are ordered lists; discounts are subtracted from the running total.
type Extras struct {
	Tax       *Charge
	Tip       *Charge
	Fees      []NamedCharge
	Discounts []NamedCharge
}

// ExtrasSplitMode defines how extras totals are distributed
type ExtrasSplitMode string

const (
	// ExtrasSplitEven divides each extras total evenly across every
	// participant of the expense.
	ExtrasSplitEven ExtrasSplitMode = "EVEN"
	// ExtrasSplitProportional divides each extras total proportionally to
	// each participant's item subtotal, falling back to an even split when
	// the total item subtotal is zero.
	ExtrasSplitProportional ExtrasSplitMode = "PROPORTIONAL"
)

// Rule is the allocation configuration for one itemized expense: how
// extras are split and how the final rounding pass behaves. Currency
// precision is looked up from the currency code at calculation time.
type Rule struct {
	ExtrasSplit ExtrasSplitMode
	Mode        rounding.Mode
	Strategy    rounding.Strategy
	PayerID     string
	Seed        *int64
}

// DefaultRule is the configuration used when the caller does not care:
// proportional extras, half-up rounding, remainder to the largest share.
func DefaultRule() Rule {
	return Rule{
		ExtrasSplit: ExtrasSplitProportional,
		Mode:        rounding.ModeHalfUp,
		Strategy:    rounding.StrategyLargestShare,
	}
}

// Extras category keys used in ParticipantBreakdown.Extras.
const (
	ExtraKeyTax            = "tax"
	ExtraKeyTip            = "tip"
	ExtraKeyFeePrefix      = "fee:"
	ExtraKeyDiscountPrefix = "discount:"
)

// ItemContribution is the audit record of one item's contribution to one
// participant's subtotal.
type ItemContribution struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Share     decimal.Decimal `json:"share"`  // fraction of the item assigned to this participant
	Amount    decimal.Decimal `json:"amount"` // unrounded amount contributed
}

// ParticipantBreakdown is one participant's fully-traced result for one
// itemized expense. The sum of Total over all participants equals the
// expense grand total rounded to currency precision, exactly.
type ParticipantBreakdown struct {
	ParticipantID      string                     `json:"participant_id"`
	ItemsSubtotal      decimal.Decimal            `json:"items_subtotal"`
	Extras             map[string]decimal.Decimal `json:"extras"`
	RoundingAdjustment decimal.Decimal            `json:"rounding_adjustment"`
	Total              decimal.Decimal            `json:"total"`
	Items              []ItemContribution         `json:"items"`
}
