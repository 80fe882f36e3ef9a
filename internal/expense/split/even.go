package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/rounding"
)

// =============================================================================
// EVEN SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EvenStrategy implements the Strategy interface for even splits
type EvenStrategy struct{}

// Type returns the split type identifier
func (s *EvenStrategy) Type() Type {
	return TypeEven
}

// Validate checks if the inputs are valid for an even split
func (s *EvenStrategy) Validate(totalAmount decimal.Decimal, participants []Input) error {
	return validateCommon(totalAmount, participants)
}

// Calculate divides the total amount evenly among all participants. The
// quotient is taken at high precision and the rounding service squares
// the result back to the exact total, so no cent is created or lost.
func (s *EvenStrategy) Calculate(totalAmount decimal.Decimal, participants []Input, cfg rounding.Config) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	count := decimal.NewFromInt(int64(len(participants)))
	quotient := totalAmount.DivRound(count, quotientScale)

	shares := make([]rounding.Share, len(participants))
	for i, p := range participants {
		shares[i] = rounding.Share{ParticipantID: p.ParticipantID, Amount: quotient}
	}
	// The first participant carries the sub-scale division drift so the
	// unrounded shares sum exactly to the total.
	shares[0].Amount = totalAmount.Sub(quotient.Mul(count.Sub(decimal.NewFromInt(1))))

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
