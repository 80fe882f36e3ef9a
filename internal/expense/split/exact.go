package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/rounding"
)

// =============================================================================
// EXACT SPLIT STRATEGY
// Each participant owes a specific exact amount (must sum to total)
// =============================================================================

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() Type {
	return TypeExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(totalAmount decimal.Decimal, participants []Input) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	totalExact := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if p.Amount.Sign() < 0 {
			return ErrNegativeAmount
		}
		totalExact = totalExact.Add(*p.Amount)
	}

	// Decimal arithmetic is exact; no floating point tolerance needed.
	if !totalExact.Equal(totalAmount) {
		return ErrInvalidExactAmounts
	}
	return nil
}

// Calculate returns the amounts exactly as specified, rounded to currency
// precision. The amounts already sum to the total, so the rounding pass
// is a no-op unless a caller supplies sub-precision amounts.
func (s *ExactStrategy) Calculate(totalAmount decimal.Decimal, participants []Input, cfg rounding.Config) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shares := make([]rounding.Share, len(participants))
	for i, p := range participants {
		shares[i] = rounding.Share{ParticipantID: p.ParticipantID, Amount: *p.Amount}
	}

	rounded, err := rounding.RoundShares(shares, cfg)
	if err != nil {
		return nil, err
	}

	outputs := make([]Output, len(rounded))
	for i, share := range rounded {
		outputs[i] = Output{ParticipantID: share.ParticipantID, AmountOwed: share.Amount}
	}
	return outputs, nil
}
