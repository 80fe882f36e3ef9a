package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/currency"
	"github.com/fkhayef/tripsplit/internal/rounding"
	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// shareScale is the internal precision for division results. Division
// drift below this scale is reassigned to one participant so that the
// unrounded totals always sum exactly to the expense grand total.
const shareScale = 12

var (
	one     = decimal.NewFromInt(1)
	percent = decimal.New(1, -2) // 1/100, exact
)

// Calculate computes each participant's share of an itemized expense:
// per-item shares, tax/tip/fee/discount allocations, and a final rounding
// pass that preserves the expense grand total at currency precision.
//
// The participant set is explicit. Items may only be assigned to listed
// participants; an extras-only expense (no items) is valid as long as the
// participant list is not empty.
func Calculate(participants []string, items []LineItem, extras Extras, rule Rule, currencyCode string) (map[string]*ParticipantBreakdown, error) {
	applyRuleDefaults(&rule)

	index, err := validateParticipants(participants)
	if err != nil {
		return nil, err
	}
	if err := validateExtras(extras); err != nil {
		return nil, err
	}

	n := len(participants)
	subtotals := make([]decimal.Decimal, n)
	contributions := make([][]ItemContribution, n)

	// Item pass: accumulate each participant's unrounded subtotal with an
	// audit record per item.
	itemsTotal := decimal.Zero
	for _, item := range items {
		if err := validateItem(item, index); err != nil {
			return nil, err
		}
		total := item.Total()
		itemsTotal = itemsTotal.Add(total)

		for _, piece := range splitItem(item, total) {
			i := index[piece.participantID]
			subtotals[i] = subtotals[i].Add(piece.amount)
			contributions[i] = append(contributions[i], ItemContribution{
				ItemID:    item.ID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Share:     piece.share,
				Amount:    piece.amount,
			})
		}
	}

	// Extras passes. The percent base is the pre-tax sum of item
	// subtotals; every charge is distributed per the rule's split mode.
	extrasAllocated := make([]map[string]decimal.Decimal, n)
	for i := range extrasAllocated {
		extrasAllocated[i] = map[string]decimal.Decimal{}
	}
	feeTotals := make([]decimal.Decimal, n)
	discountTotals := make([]decimal.Decimal, n)

	addCharge := func(key string, c Charge, into []decimal.Decimal) {
		total := chargeTotal(c, itemsTotal)
		if total.IsZero() {
			return
		}
		amounts := distribute(total, subtotals, itemsTotal, rule.ExtrasSplit)
		for i, amt := range amounts {
			extrasAllocated[i][key] = extrasAllocated[i][key].Add(amt)
			into[i] = into[i].Add(amt)
		}
	}

	taxTotals := make([]decimal.Decimal, n)
	tipTotals := make([]decimal.Decimal, n)
	if extras.Tax != nil {
		addCharge(ExtraKeyTax, *extras.Tax, taxTotals)
	}
	if extras.Tip != nil {
		addCharge(ExtraKeyTip, *extras.Tip, tipTotals)
	}
	for _, fee := range extras.Fees {
		addCharge(ExtraKeyFeePrefix+fee.Name, fee.Charge, feeTotals)
	}
	for _, disc := range extras.Discounts {
		addCharge(ExtraKeyDiscountPrefix+disc.Name, disc.Charge, discountTotals)
	}

	// Unrounded totals, then one rounding pass over the whole map so the
	// rounded amounts still sum to the grand total.
	unrounded := make([]rounding.Share, n)
	for i, id := range participants {
		total := subtotals[i].
			Add(taxTotals[i]).
			Add(tipTotals[i]).
			Add(feeTotals[i]).
			Sub(discountTotals[i])
		unrounded[i] = rounding.Share{ParticipantID: id, Amount: total}
	}

	rounded, err := rounding.RoundShares(unrounded, rounding.Config{
		Precision: currency.Precision(currencyCode),
		Mode:      rule.Mode,
		Strategy:  rule.Strategy,
		PayerID:   rule.PayerID,
		Seed:      rule.Seed,
	})
	if err != nil {
		return nil, err
	}

	result := make(map[string]*ParticipantBreakdown, n)
	for i, id := range participants {
		result[id] = &ParticipantBreakdown{
			ParticipantID:      id,
			ItemsSubtotal:      subtotals[i],
			Extras:             extrasAllocated[i],
			RoundingAdjustment: rounded[i].Amount.Sub(unrounded[i].Amount),
			Total:              rounded[i].Amount,
			Items:              contributions[i],
		}
	}
	return result, nil
}

func applyRuleDefaults(rule *Rule) {
	if rule.ExtrasSplit == "" {
		rule.ExtrasSplit = ExtrasSplitProportional
	}
	if rule.Mode == "" {
		rule.Mode = rounding.ModeHalfUp
	}
	if rule.Strategy == "" {
		rule.Strategy = rounding.StrategyLargestShare
	}
}

func validateParticipants(participants []string) (map[string]int, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: an explicit participant set is required", apperror.ErrValidation)
	}
	index := make(map[string]int, len(participants))
	for i, id := range participants {
		if id == "" {
			return nil, fmt.Errorf("%w: empty participant id", apperror.ErrValidation)
		}
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate participant %q", apperror.ErrValidation, id)
		}
		index[id] = i
	}
	return index, nil
}

func validateItem(item LineItem, index map[string]int) error {
	if item.Quantity.Sign() <= 0 {
		return fmt.Errorf("%w: item %q quantity must be positive", apperror.ErrValidation, item.Name)
	}
	if item.UnitPrice.Sign() < 0 {
		return fmt.Errorf("%w: item %q unit price cannot be negative", apperror.ErrValidation, item.Name)
	}

	switch item.Assignment.Type {
	case AssignmentEven:
		if len(item.Assignment.Participants) == 0 {
			return fmt.Errorf("%w: item %q is assigned to nobody", apperror.ErrValidation, item.Name)
		}
		for _, id := range item.Assignment.Participants {
			if _, ok := index[id]; !ok {
				return fmt.Errorf("%w: item %q references unknown participant %q", apperror.ErrDataIntegrity, item.Name, id)
			}
		}
	case AssignmentCustom:
		if len(item.Assignment.Shares) == 0 {
			return fmt.Errorf("%w: item %q is assigned to nobody", apperror.ErrValidation, item.Name)
		}
		sum := decimal.Zero
		for _, s := range item.Assignment.Shares {
			if _, ok := index[s.ParticipantID]; !ok {
				return fmt.Errorf("%w: item %q references unknown participant %q", apperror.ErrDataIntegrity, item.Name, s.ParticipantID)
			}
			if s.Share.Sign() < 0 || s.Share.Cmp(one) > 0 {
				return fmt.Errorf("%w: item %q share for %q must be between 0 and 1", apperror.ErrValidation, item.Name, s.ParticipantID)
			}
			sum = sum.Add(s.Share)
		}
		if !sum.Equal(one) {
			return fmt.Errorf("%w: item %q shares sum to %s, want 1", apperror.ErrValidation, item.Name, sum)
		}
	default:
		return fmt.Errorf("%w: item %q has unknown assignment type %q", apperror.ErrValidation, item.Name, item.Assignment.Type)
	}
	return nil
}

func validateExtras(extras Extras) error {
	check := func(label string, c *Charge) error {
		if c == nil {
			return nil
		}
		if c.Type != ChargeFlat && c.Type != ChargePercent {
			return fmt.Errorf("%w: %s has unknown charge type %q", apperror.ErrValidation, label, c.Type)
		}
		if c.Value.Sign() < 0 {
			return fmt.Errorf("%w: %s value cannot be negative", apperror.ErrValidation, label)
		}
		return nil
	}

	if err := check("tax", extras.Tax); err != nil {
		return err
	}
	if err := check("tip", extras.Tip); err != nil {
		return err
	}
	for _, fee := range extras.Fees {
		if fee.Name == "" {
			return fmt.Errorf("%w: fee name is required", apperror.ErrValidation)
		}
		if err := check("fee "+fee.Name, &fee.Charge); err != nil {
			return err
		}
	}
	for _, disc := range extras.Discounts {
		if disc.Name == "" {
			return fmt.Errorf("%w: discount name is required", apperror.ErrValidation)
		}
		if err := check("discount "+disc.Name, &disc.Charge); err != nil {
			return err
		}
	}
	return nil
}

type itemPiece struct {
	participantID string
	share         decimal.Decimal
	amount        decimal.Decimal
}

// splitItem divides an item total per its assignment. Even division is
// exact by construction: every participant gets the truncated quotient
// and the first assigned participant absorbs the sub-scale drift, so the
// pieces always re-sum to the item total.
func splitItem(item LineItem, total decimal.Decimal) []itemPiece {
	if item.Assignment.Type == AssignmentCustom {
		pieces := make([]itemPiece, len(item.Assignment.Shares))
		for i, s := range item.Assignment.Shares {
			pieces[i] = itemPiece{
				participantID: s.ParticipantID,
				share:         s.Share,
				amount:        total.Mul(s.Share),
			}
		}
		return pieces
	}

	assigned := item.Assignment.Participants
	count := decimal.NewFromInt(int64(len(assigned)))
	quotient := total.DivRound(count, shareScale)
	fraction := one.DivRound(count, shareScale)

	pieces := make([]itemPiece, len(assigned))
	for i, id := range assigned {
		pieces[i] = itemPiece{participantID: id, share: fraction, amount: quotient}
	}
	pieces[0].amount = total.Sub(quotient.Mul(count.Sub(one)))
	return pieces
}

// chargeTotal resolves a charge to an absolute amount. Percent charges
// are based on the pre-tax sum of item subtotals.
func chargeTotal(c Charge, itemsTotal decimal.Decimal) decimal.Decimal {
	if c.Type == ChargePercent {
		return itemsTotal.Mul(c.Value).Mul(percent)
	}
	return c.Value
}

// distribute splits an extras total across participants. Proportional
// distribution weighs by item subtotal and falls back to an even split
// when the subtotal base is zero; that degenerate case is well defined,
// not an error. The division drift goes to the largest weight (even
// split: the first participant) so the pieces re-sum exactly.
func distribute(total decimal.Decimal, subtotals []decimal.Decimal, itemsTotal decimal.Decimal, mode ExtrasSplitMode) []decimal.Decimal {
	n := len(subtotals)
	amounts := make([]decimal.Decimal, n)

	if mode == ExtrasSplitProportional && !itemsTotal.IsZero() {
		distributed := decimal.Zero
		largest := 0
		for i, weight := range subtotals {
			amounts[i] = total.Mul(weight).DivRound(itemsTotal, shareScale)
			distributed = distributed.Add(amounts[i])
			if weight.Cmp(subtotals[largest]) > 0 {
				largest = i
			}
		}
		amounts[largest] = amounts[largest].Add(total.Sub(distributed))
		return amounts
	}

	count := decimal.NewFromInt(int64(n))
	quotient := total.DivRound(count, shareScale)
	for i := range amounts {
		amounts[i] = quotient
	}
	amounts[0] = total.Sub(quotient.Mul(count.Sub(one)))
	return amounts
}
