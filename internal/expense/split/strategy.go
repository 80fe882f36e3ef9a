package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/rounding"
)

// Type defines the type of split strategy
type Type string

const (
	TypeEven       Type = "EVEN"
	TypePercentage Type = "PERCENTAGE"
	TypeExact      Type = "EXACT"
)

// Input represents a participant in a split with optional values
type Input struct {
	ParticipantID string           `json:"participant_id"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount        *decimal.Decimal `json:"amount,omitempty"`     // For EXACT split
}

// Output represents the calculated split for a single participant
type Output struct {
	ParticipantID string          `json:"participant_id"`
	AmountOwed    decimal.Decimal `json:"amount_owed"`
}

// Strategy is the interface that all split strategies must implement.
// Every participant, the payer included, receives a share; the settlement
// layer reconciles shares against what the payer fronted.
type Strategy interface {
	// Calculate computes the split amounts for all participants. The
	// rounding config decides currency precision and who absorbs the
	// remainder cent.
	Calculate(totalAmount decimal.Decimal, participants []Input, cfg rounding.Config) ([]Output, error)

	// Type returns the type identifier for this strategy
	Type() Type

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount decimal.Decimal, participants []Input) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType Type) (Strategy, error) {
	switch splitType {
	case TypeEven:
		return &EvenStrategy{}, nil
	case TypePercentage:
		return &PercentageStrategy{}, nil
	case TypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split type: %s", splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(Type(splitType))
}

var (
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidExactAmounts  = errors.New("exact amounts must sum to total amount")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// quotientScale is the internal precision for equal and percentage
// division ahead of the currency-precision rounding pass.
const quotientScale = 12

func validateCommon(totalAmount decimal.Decimal, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount.Sign() < 0 {
		return ErrNegativeAmount
	}
	return nil
}
