package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/tripsplit/internal/rounding"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func usdConfig() rounding.Config {
	return rounding.Config{
		Precision: 2,
		Mode:      rounding.ModeHalfUp,
		Strategy:  rounding.StrategyFirstListed,
	}
}

func sumOutputs(outputs []Output) decimal.Decimal {
	total := decimal.Zero
	for _, o := range outputs {
		total = total.Add(o.AmountOwed)
	}
	return total
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	for _, splitType := range []Type{TypeEven, TypePercentage, TypeExact} {
		strategy, err := f.Create(splitType)
		require.NoError(t, err)
		assert.Equal(t, splitType, strategy.Type())
	}

	_, err := f.CreateFromString("FIBONACCI")
	assert.Error(t, err)
}

func TestEvenStrategy(t *testing.T) {
	strategy := &EvenStrategy{}

	t.Run("splits cleanly", func(t *testing.T) {
		outputs, err := strategy.Calculate(dec("100.00"), []Input{
			{ParticipantID: "a"}, {ParticipantID: "b"},
		}, usdConfig())
		require.NoError(t, err)
		require.Len(t, outputs, 2)
		assert.True(t, outputs[0].AmountOwed.Equal(dec("50.00")))
		assert.True(t, outputs[1].AmountOwed.Equal(dec("50.00")))
	})

	t.Run("three-way split keeps total", func(t *testing.T) {
		outputs, err := strategy.Calculate(dec("100.00"), []Input{
			{ParticipantID: "a"}, {ParticipantID: "b"}, {ParticipantID: "c"},
		}, usdConfig())
		require.NoError(t, err)
		assert.True(t, outputs[0].AmountOwed.Equal(dec("33.34")))
		assert.True(t, outputs[1].AmountOwed.Equal(dec("33.33")))
		assert.True(t, outputs[2].AmountOwed.Equal(dec("33.33")))
		assert.True(t, sumOutputs(outputs).Equal(dec("100.00")))
	})

	t.Run("zero-decimal currency", func(t *testing.T) {
		cfg := usdConfig()
		cfg.Precision = 0
		outputs, err := strategy.Calculate(dec("1000"), []Input{
			{ParticipantID: "a"}, {ParticipantID: "b"}, {ParticipantID: "c"},
		}, cfg)
		require.NoError(t, err)
		assert.True(t, outputs[0].AmountOwed.Equal(dec("334")))
		assert.True(t, sumOutputs(outputs).Equal(dec("1000")))
	})

	t.Run("rejects empty participants", func(t *testing.T) {
		_, err := strategy.Calculate(dec("10"), nil, usdConfig())
		assert.ErrorIs(t, err, ErrNoParticipants)
	})

	t.Run("rejects negative total", func(t *testing.T) {
		_, err := strategy.Calculate(dec("-10"), []Input{{ParticipantID: "a"}}, usdConfig())
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}

func TestPercentageStrategy(t *testing.T) {
	strategy := &PercentageStrategy{}

	t.Run("splits by percentage", func(t *testing.T) {
		outputs, err := strategy.Calculate(dec("200.00"), []Input{
			{ParticipantID: "a", Percentage: decPtr("60")},
			{ParticipantID: "b", Percentage: decPtr("40")},
		}, usdConfig())
		require.NoError(t, err)
		assert.True(t, outputs[0].AmountOwed.Equal(dec("120.00")))
		assert.True(t, outputs[1].AmountOwed.Equal(dec("80.00")))
	})

	t.Run("awkward percentages keep total", func(t *testing.T) {
		outputs, err := strategy.Calculate(dec("100.00"), []Input{
			{ParticipantID: "a", Percentage: decPtr("33.33")},
			{ParticipantID: "b", Percentage: decPtr("33.33")},
			{ParticipantID: "c", Percentage: decPtr("33.34")},
		}, usdConfig())
		require.NoError(t, err)
		assert.True(t, sumOutputs(outputs).Equal(dec("100.00")))
	})

	t.Run("rejects percentages that do not sum to 100", func(t *testing.T) {
		_, err := strategy.Calculate(dec("100.00"), []Input{
			{ParticipantID: "a", Percentage: decPtr("50")},
			{ParticipantID: "b", Percentage: decPtr("40")},
		}, usdConfig())
		assert.ErrorIs(t, err, ErrInvalidPercentages)
	})

	t.Run("rejects missing percentage", func(t *testing.T) {
		_, err := strategy.Calculate(dec("100.00"), []Input{
			{ParticipantID: "a", Percentage: decPtr("100")},
			{ParticipantID: "b"},
		}, usdConfig())
		assert.ErrorIs(t, err, ErrMissingPercentage)
	})

	t.Run("rejects out-of-range percentage", func(t *testing.T) {
		_, err := strategy.Calculate(dec("100.00"), []Input{
			{ParticipantID: "a", Percentage: decPtr("120")},
			{ParticipantID: "b", Percentage: decPtr("-20")},
		}, usdConfig())
		assert.ErrorIs(t, err, ErrPercentageOutOfRange)
	})
}

func TestExactStrategy(t *testing.T) {
	strategy := &ExactStrategy{}

	t.Run("uses the specified amounts", func(t *testing.T) {
		outputs, err := strategy.Calculate(dec("75.50"), []Input{
			{ParticipantID: "a", Amount: decPtr("50.25")},
			{ParticipantID: "b", Amount: decPtr("25.25")},
		}, usdConfig())
		require.NoError(t, err)
		assert.True(t, outputs[0].AmountOwed.Equal(dec("50.25")))
		assert.True(t, outputs[1].AmountOwed.Equal(dec("25.25")))
	})

	t.Run("rejects amounts that do not sum to total", func(t *testing.T) {
		_, err := strategy.Calculate(dec("75.50"), []Input{
			{ParticipantID: "a", Amount: decPtr("50.00")},
			{ParticipantID: "b", Amount: decPtr("25.00")},
		}, usdConfig())
		assert.ErrorIs(t, err, ErrInvalidExactAmounts)
	})

	t.Run("rejects missing amount", func(t *testing.T) {
		_, err := strategy.Calculate(dec("10.00"), []Input{
			{ParticipantID: "a", Amount: decPtr("10.00")},
			{ParticipantID: "b"},
		}, usdConfig())
		assert.ErrorIs(t, err, ErrMissingExactAmount)
	})
}
