package expense

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/tripsplit/internal/allocation"
	"github.com/fkhayef/tripsplit/internal/expense/split"
	"github.com/fkhayef/tripsplit/internal/rounding"
	"github.com/fkhayef/tripsplit/pkg/apperror"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testService() *Service {
	return &Service{splitFactory: split.NewFactory()}
}

func memberSet(ids ...string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestCalculateSimple_Even(t *testing.T) {
	s := testService()
	req := &CreateExpenseRequest{
		PayerID:   "a",
		Amount:    dec("100.00"),
		SplitType: "EVEN",
		Participants: []*SplitParticipant{
			{ParticipantID: "a"}, {ParticipantID: "b"}, {ParticipantID: "c"},
		},
	}

	amount, shares, err := s.calculateSimple(req, memberSet("a", "b", "c"), "USD")
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("100.00")))
	require.Len(t, shares, 3)

	total := decimal.Zero
	for _, sh := range shares {
		total = total.Add(sh.AmountOwed)
	}
	assert.True(t, total.Equal(dec("100.00")))
	// Remainder cent lands on the largest share under the default
	// strategy, which for an even split is the first participant.
	assert.True(t, shares[0].AmountOwed.Equal(dec("33.34")))
}

func TestCalculateSimple_Percentage(t *testing.T) {
	s := testService()
	req := &CreateExpenseRequest{
		PayerID:   "a",
		Amount:    dec("80.00"),
		SplitType: "PERCENTAGE",
		Participants: []*SplitParticipant{
			{ParticipantID: "a", Percentage: decPtr("60")},
			{ParticipantID: "b", Percentage: decPtr("40")},
		},
	}

	_, shares, err := s.calculateSimple(req, memberSet("a", "b"), "USD")
	require.NoError(t, err)
	assert.True(t, shares[0].AmountOwed.Equal(dec("48.00")))
	assert.True(t, shares[1].AmountOwed.Equal(dec("32.00")))
}

func TestCalculateSimple_Errors(t *testing.T) {
	s := testService()

	t.Run("unknown split type", func(t *testing.T) {
		req := &CreateExpenseRequest{Amount: dec("10"), SplitType: "FIBONACCI",
			Participants: []*SplitParticipant{{ParticipantID: "a"}}}
		_, _, err := s.calculateSimple(req, memberSet("a"), "USD")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		req := &CreateExpenseRequest{Amount: dec("0"), SplitType: "EVEN",
			Participants: []*SplitParticipant{{ParticipantID: "a"}}}
		_, _, err := s.calculateSimple(req, memberSet("a"), "USD")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("participant not on trip", func(t *testing.T) {
		req := &CreateExpenseRequest{Amount: dec("10"), SplitType: "EVEN",
			Participants: []*SplitParticipant{{ParticipantID: "stranger"}}}
		_, _, err := s.calculateSimple(req, memberSet("a"), "USD")
		assert.ErrorIs(t, err, apperror.ErrDataIntegrity)
	})

	t.Run("percentages not summing to 100", func(t *testing.T) {
		req := &CreateExpenseRequest{Amount: dec("10"), SplitType: "PERCENTAGE",
			Participants: []*SplitParticipant{
				{ParticipantID: "a", Percentage: decPtr("70")},
				{ParticipantID: "b", Percentage: decPtr("40")},
			}}
		_, _, err := s.calculateSimple(req, memberSet("a", "b"), "USD")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestCalculateItemized_DerivesAmount(t *testing.T) {
	s := testService()
	req := &CreateExpenseRequest{
		PayerID:   "a",
		SplitType: "ITEMIZED",
		Items: []*LineItemRequest{
			{Name: "Pizza", Quantity: dec("2"), UnitPrice: dec("15.00")},
			{Name: "Salad", Quantity: dec("1"), UnitPrice: dec("9.00"), Participants: []string{"b"}},
		},
		Extras: &ExtrasRequest{
			Tip: &ChargeRequest{Type: "PERCENT", Value: dec("10")},
		},
	}

	amount, shares, err := s.calculateItemized(req, []string{"a", "b", "c"}, memberSet("a", "b", "c"), "USD")
	require.NoError(t, err)
	// 30 pizza + 9 salad + 3.90 tip
	assert.True(t, amount.Equal(dec("42.90")), "got %s", amount)
	require.Len(t, shares, 3)
	for _, sh := range shares {
		assert.NotNil(t, sh.Breakdown)
	}

	total := decimal.Zero
	for _, sh := range shares {
		total = total.Add(sh.AmountOwed)
	}
	assert.True(t, total.Equal(amount))
}

func TestCalculateItemized_RequiresItemsOrExtras(t *testing.T) {
	s := testService()
	req := &CreateExpenseRequest{PayerID: "a", SplitType: "ITEMIZED"}
	_, _, err := s.calculateItemized(req, []string{"a"}, memberSet("a"), "USD")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCalculateItemized_SubsetParticipants(t *testing.T) {
	s := testService()
	req := &CreateExpenseRequest{
		PayerID:   "a",
		SplitType: "ITEMIZED",
		Participants: []*SplitParticipant{
			{ParticipantID: "a"}, {ParticipantID: "b"},
		},
		Items: []*LineItemRequest{
			{Name: "Cab", Quantity: dec("1"), UnitPrice: dec("24.00")},
		},
	}

	amount, shares, err := s.calculateItemized(req, []string{"a", "b", "c"}, memberSet("a", "b", "c"), "USD")
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("24.00")))
	require.Len(t, shares, 2)
	assert.True(t, shares[0].AmountOwed.Equal(dec("12.00")))
}

func TestAllocationOptionsMapping(t *testing.T) {
	s := testService()
	req := &CreateExpenseRequest{
		PayerID: "p",
		Options: &AllocationOptions{
			ExtrasSplit:       "EVEN",
			RoundingMode:      "FLOOR",
			RemainderStrategy: "PAYER",
		},
	}

	rule := s.allocationRule(req)
	assert.Equal(t, allocation.ExtrasSplitEven, rule.ExtrasSplit)
	assert.Equal(t, rounding.ModeFloor, rule.Mode)
	assert.Equal(t, rounding.StrategyPayer, rule.Strategy)
	assert.Equal(t, "p", rule.PayerID)

	cfg := s.roundingConfig(req)
	assert.Equal(t, rounding.ModeFloor, cfg.Mode)
	assert.Equal(t, rounding.StrategyPayer, cfg.Strategy)
}

func TestLineItemRequestConversion(t *testing.T) {
	li := &LineItemRequest{
		Name:      "Wine",
		Quantity:  dec("1"),
		UnitPrice: dec("30.00"),
		Shares: []ItemShareRequest{
			{ParticipantID: "a", Share: dec("0.5")},
			{ParticipantID: "b", Share: dec("0.5")},
		},
	}

	item := li.toLineItem("item-1")
	assert.Equal(t, allocation.AssignmentCustom, item.Assignment.Type)
	require.Len(t, item.Assignment.Shares, 2)
	assert.True(t, item.Total().Equal(dec("30.00")))

	even := &LineItemRequest{Name: "Bread", Quantity: dec("2"), UnitPrice: dec("3.00")}
	item = even.toLineItem("item-2")
	assert.Equal(t, allocation.AssignmentEven, item.Assignment.Type)
	assert.Empty(t, item.Assignment.Participants)
}
