package rounding

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// Mode selects how individual amounts are rounded to currency precision.
type Mode string

const (
	ModeHalfUp   Mode = "HALF_UP"   // round half away from zero
	ModeHalfEven Mode = "HALF_EVEN" // banker's rounding
	ModeFloor    Mode = "FLOOR"
	ModeCeil     Mode = "CEIL"
)

// Strategy selects which participant absorbs the rounding remainder.
type Strategy string

const (
	StrategyLargestShare Strategy = "LARGEST_SHARE"
	StrategyPayer        Strategy = "PAYER"
	StrategyFirstListed  Strategy = "FIRST_LISTED"
	StrategyRandom       Strategy = "RANDOM"
)

// Share is one participant's amount. Shares are passed as an ordered slice
// rather than a map: the caller's order is meaningful for the FIRST_LISTED
// strategy and for tie-breaking.
type Share struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// Config controls a rounding pass.
type Config struct {
	Precision int32
	Mode      Mode
	Strategy  Strategy

	// PayerID is required by the PAYER strategy and ignored otherwise.
	PayerID string

	// Seed makes the RANDOM strategy reproducible. Nil means seeded from
	// the clock, which is what production uses.
	Seed *int64
}

// RoundShares rounds every amount to cfg.Precision and guarantees the
// rounded amounts sum to the original sum rounded to the same precision
// under the same mode.
// The unavoidable remainder is given in full to exactly one participant,
// chosen by cfg.Strategy. The input slice is not modified.
func RoundShares(shares []Share, cfg Config) ([]Share, error) {
	if err := validate(shares, cfg); err != nil {
		return nil, err
	}
	if len(shares) == 0 {
		return []Share{}, nil
	}

	rounded := make([]Share, len(shares))
	originalSum := decimal.Zero
	allZero := true
	for i, s := range shares {
		rounded[i] = Share{
			ParticipantID: s.ParticipantID,
			Amount:        roundAmount(s.Amount, cfg.Precision, cfg.Mode),
		}
		originalSum = originalSum.Add(s.Amount)
		if !s.Amount.IsZero() {
			allZero = false
		}
	}

	// A single participant or an all-zero set needs no correction.
	if len(shares) == 1 || allZero {
		return rounded, nil
	}

	roundedSum := decimal.Zero
	for _, s := range rounded {
		roundedSum = roundedSum.Add(s.Amount)
	}

	// The target is the original sum rounded under the same mode: under
	// FLOOR three thirds of 10 each round to 3.33 and must stay at 9.99,
	// not be bumped back to 10.00.
	target := roundAmount(originalSum, cfg.Precision, cfg.Mode)
	adjustment := target.Sub(roundedSum)
	if adjustment.IsZero() {
		return rounded, nil
	}

	idx, err := pickRecipient(shares, cfg)
	if err != nil {
		return nil, err
	}
	rounded[idx].Amount = rounded[idx].Amount.Add(adjustment)

	return rounded, nil
}

func validate(shares []Share, cfg Config) error {
	switch cfg.Mode {
	case ModeHalfUp, ModeHalfEven, ModeFloor, ModeCeil:
	default:
		return fmt.Errorf("%w: unknown rounding mode %q", apperror.ErrInvalidConfiguration, cfg.Mode)
	}
	switch cfg.Strategy {
	case StrategyLargestShare, StrategyFirstListed, StrategyRandom:
	case StrategyPayer:
		if cfg.PayerID == "" {
			return fmt.Errorf("%w: payer remainder strategy requires a payer id", apperror.ErrInvalidConfiguration)
		}
		found := false
		for _, s := range shares {
			if s.ParticipantID == cfg.PayerID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: payer %q is not among the amounts being rounded", apperror.ErrInvalidConfiguration, cfg.PayerID)
		}
	default:
		return fmt.Errorf("%w: unknown remainder strategy %q", apperror.ErrInvalidConfiguration, cfg.Strategy)
	}
	return nil
}

func roundAmount(d decimal.Decimal, precision int32, mode Mode) decimal.Decimal {
	switch mode {
	case ModeHalfEven:
		return d.RoundBank(precision)
	case ModeFloor:
		return d.RoundFloor(precision)
	case ModeCeil:
		return d.RoundCeil(precision)
	default:
		return d.Round(precision)
	}
}

// pickRecipient selects the one participant that absorbs the remainder.
// All tie-breaks follow the caller's insertion order.
func pickRecipient(shares []Share, cfg Config) (int, error) {
	switch cfg.Strategy {
	case StrategyLargestShare:
		idx := 0
		for i, s := range shares {
			if s.Amount.Abs().Cmp(shares[idx].Amount.Abs()) > 0 {
				idx = i
			}
		}
		return idx, nil

	case StrategyPayer:
		for i, s := range shares {
			if s.ParticipantID == cfg.PayerID {
				return i, nil
			}
		}
		// validate() already checked membership.
		return 0, fmt.Errorf("%w: payer %q is not among the amounts being rounded", apperror.ErrInvalidConfiguration, cfg.PayerID)

	case StrategyFirstListed:
		return 0, nil

	case StrategyRandom:
		seed := time.Now().UnixNano()
		if cfg.Seed != nil {
			seed = *cfg.Seed
		}
		return rand.New(rand.NewSource(seed)).Intn(len(shares)), nil
	}

	return 0, fmt.Errorf("%w: unknown remainder strategy %q", apperror.ErrInvalidConfiguration, cfg.Strategy)
}
