package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/rounding"
)

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() Type {
	return TypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(totalAmount decimal.Decimal, participants []Input) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	totalPercentage := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if p.Percentage.Sign() < 0 || p.Percentage.Cmp(hundred) > 0 {
			return ErrPercentageOutOfRange
		}
		totalPercentage = totalPercentage.Add(*p.Percentage)
	}

	if !totalPercentage.Equal(hundred) {
		return ErrInvalidPercentages
	}
	return nil
}

// Calculate divides the total amount based on each participant's
// percentage, then lets the rounding service reconcile the rounded
// amounts with the exact total.
func (s *PercentageStrategy) Calculate(totalAmount decimal.Decimal, participants []Input, cfg rounding.Config) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shares := make([]rounding.Share, len(participants))
	distributed := decimal.Zero
	for i, p := range participants {
		amount := totalAmount.Mul(*p.Percentage).DivRound(hundred, quotientScale)
		shares[i] = rounding.Share{ParticipantID: p.ParticipantID, Amount: amount}
		distributed = distributed.Add(amount)
	}
	// Percentages sum to exactly 100, so any drift is pure division
	// noise; the first participant absorbs it.
	shares[0].Amount = shares[0].Amount.Add(totalAmount.Sub(distributed))

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
