package rounding

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/tripsplit/pkg/apperror"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumShares(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func TestRoundShares_ThirdsUSD(t *testing.T) {
	// 100.00 split three ways: the extra cent goes to the first participant.
	third := dec("100").DivRound(dec("3"), 12)
	shares := []Share{
		{ParticipantID: "alice", Amount: third},
		{ParticipantID: "bob", Amount: third},
		{ParticipantID: "carol", Amount: third},
	}

	got, err := RoundShares(shares, Config{Precision: 2, Mode: ModeHalfUp, Strategy: StrategyFirstListed})
	require.NoError(t, err)

	assert.True(t, got[0].Amount.Equal(dec("33.34")), "alice got %s", got[0].Amount)
	assert.True(t, got[1].Amount.Equal(dec("33.33")))
	assert.True(t, got[2].Amount.Equal(dec("33.33")))
	assert.True(t, sumShares(got).Equal(dec("100.00")))
}

func TestRoundShares_ThirdsZeroDecimalCurrency(t *testing.T) {
	// 1000 VND split three ways in a zero-decimal currency.
	third := dec("1000").DivRound(dec("3"), 12)
	shares := []Share{
		{ParticipantID: "a", Amount: third},
		{ParticipantID: "b", Amount: third},
		{ParticipantID: "c", Amount: third},
	}

	got, err := RoundShares(shares, Config{Precision: 0, Mode: ModeHalfUp, Strategy: StrategyFirstListed})
	require.NoError(t, err)

	assert.True(t, got[0].Amount.Equal(dec("334")))
	assert.True(t, got[1].Amount.Equal(dec("333")))
	assert.True(t, got[2].Amount.Equal(dec("333")))
	assert.True(t, sumShares(got).Equal(dec("1000")))
}

func TestRoundShares_SumPreservation(t *testing.T) {
	seed := int64(42)
	inputs := [][]Share{
		{
			{ParticipantID: "a", Amount: dec("10").DivRound(dec("3"), 12)},
			{ParticipantID: "b", Amount: dec("10").DivRound(dec("3"), 12)},
			{ParticipantID: "c", Amount: dec("10").DivRound(dec("3"), 12)},
		},
		{
			{ParticipantID: "a", Amount: dec("0.015")},
			{ParticipantID: "b", Amount: dec("0.015")},
			{ParticipantID: "c", Amount: dec("0.015")},
			{ParticipantID: "d", Amount: dec("0.015")},
		},
		{
			{ParticipantID: "a", Amount: dec("-5.005")},
			{ParticipantID: "b", Amount: dec("2.5025")},
			{ParticipantID: "c", Amount: dec("2.5025")},
		},
		{
			{ParticipantID: "a", Amount: dec("99.999")},
			{ParticipantID: "b", Amount: dec("0.001")},
		},
	}
	strategies := []Strategy{StrategyLargestShare, StrategyFirstListed, StrategyRandom, StrategyPayer}
	modes := []Mode{ModeHalfUp, ModeHalfEven, ModeFloor, ModeCeil}

	for _, shares := range inputs {
		for _, strategy := range strategies {
			for _, mode := range modes {
				cfg := Config{
					Precision: 2,
					Mode:      mode,
					Strategy:  strategy,
					PayerID:   shares[0].ParticipantID,
					Seed:      &seed,
				}
				got, err := RoundShares(shares, cfg)
				require.NoError(t, err)

				want := roundAmount(sumShares(shares), cfg.Precision, cfg.Mode)
				assert.True(t, sumShares(got).Equal(want),
					"strategy=%s mode=%s: sum %s, want %s", strategy, mode, sumShares(got), want)
			}
		}
	}
}

func TestRoundShares_FloorKeepsFlooredTotal(t *testing.T) {
	// Three thirds of 10 each floor to 3.33. The floored total is 9.99,
	// so no cent may be added back to reach 10.00.
	third := dec("10").DivRound(dec("3"), 12)
	shares := []Share{
		{ParticipantID: "a", Amount: third},
		{ParticipantID: "b", Amount: third},
		{ParticipantID: "c", Amount: third},
	}

	for _, strategy := range []Strategy{StrategyLargestShare, StrategyFirstListed, StrategyPayer} {
		got, err := RoundShares(shares, Config{Precision: 2, Mode: ModeFloor, Strategy: strategy, PayerID: "a"})
		require.NoError(t, err)
		assert.True(t, sumShares(got).Equal(dec("9.99")), "strategy=%s: sum %s", strategy, sumShares(got))
		for i := range got {
			assert.True(t, got[i].Amount.Equal(dec("3.33")))
		}
	}
}

func TestRoundShares_SmallRemainderIgnored(t *testing.T) {
	shares := []Share{
		{ParticipantID: "a", Amount: dec("10.002")},
		{ParticipantID: "b", Amount: dec("10.002")},
	}

	got, err := RoundShares(shares, Config{Precision: 2, Mode: ModeHalfUp, Strategy: StrategyLargestShare})
	require.NoError(t, err)

	assert.True(t, got[0].Amount.Equal(dec("10.00")))
	assert.True(t, got[1].Amount.Equal(dec("10.00")))
}

func TestRoundShares_LargestShareTieBreak(t *testing.T) {
	third := dec("1").DivRound(dec("3"), 12)
	shares := []Share{
		{ParticipantID: "b", Amount: third},
		{ParticipantID: "a", Amount: third},
		{ParticipantID: "c", Amount: third},
	}

	got, err := RoundShares(shares, Config{Precision: 2, Mode: ModeHalfUp, Strategy: StrategyLargestShare})
	require.NoError(t, err)

	// Equal amounts: the first listed wins the tie.
	assert.True(t, got[0].Amount.Equal(dec("0.34")), "first listed should absorb the cent, got %s", got[0].Amount)
}

func TestRoundShares_PayerStrategy(t *testing.T) {
	third := dec("100").DivRound(dec("3"), 12)
	shares := []Share{
		{ParticipantID: "a", Amount: third},
		{ParticipantID: "b", Amount: third},
		{ParticipantID: "c", Amount: third},
	}

	got, err := RoundShares(shares, Config{Precision: 2, Mode: ModeHalfUp, Strategy: StrategyPayer, PayerID: "b"})
	require.NoError(t, err)
	assert.True(t, got[1].Amount.Equal(dec("33.34")))

	_, err = RoundShares(shares, Config{Precision: 2, Mode: ModeHalfUp, Strategy: StrategyPayer})
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)

	_, err = RoundShares(shares, Config{Precision: 2, Mode: ModeHalfUp, Strategy: StrategyPayer, PayerID: "nobody"})
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
}

func TestRoundShares_RandomIsSeedable(t *testing.T) {
	seed := int64(7)
	third := dec("100").DivRound(dec("3"), 12)
	shares := []Share{
		{ParticipantID: "a", Amount: third},
		{ParticipantID: "b", Amount: third},
		{ParticipantID: "c", Amount: third},
	}
	cfg := Config{Precision: 2, Mode: ModeHalfUp, Strategy: StrategyRandom, Seed: &seed}

	first, err := RoundShares(shares, cfg)
	require.NoError(t, err)
	second, err := RoundShares(shares, cfg)
	require.NoError(t, err)

	for i := range first {
		assert.True(t, first[i].Amount.Equal(second[i].Amount), "seeded runs must match at index %d", i)
	}
}

func TestRoundShares_SingleParticipantAndZeros(t *testing.T) {
	got, err := RoundShares([]Share{{ParticipantID: "solo", Amount: dec("10.005")}},
		Config{Precision: 2, Mode: ModeHalfUp, Strategy: StrategyLargestShare})
	require.NoError(t, err)
	assert.True(t, got[0].Amount.Equal(dec("10.01")))

	zeros := []Share{
		{ParticipantID: "a", Amount: decimal.Zero},
		{ParticipantID: "b", Amount: decimal.Zero},
	}
	got, err = RoundShares(zeros, Config{Precision: 2, Mode: ModeHalfUp, Strategy: StrategyLargestShare})
	require.NoError(t, err)
	assert.True(t, got[0].Amount.IsZero())
	assert.True(t, got[1].Amount.IsZero())
}

func TestRoundShares_UnknownModeOrStrategy(t *testing.T) {
	shares := []Share{{ParticipantID: "a", Amount: dec("1")}}

	_, err := RoundShares(shares, Config{Precision: 2, Mode: "NEAREST", Strategy: StrategyFirstListed})
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)

	_, err = RoundShares(shares, Config{Precision: 2, Mode: ModeHalfUp, Strategy: "COIN_FLIP"})
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
}
