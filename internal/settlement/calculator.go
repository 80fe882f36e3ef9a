package settlement

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/currency"
)

// CalculatePersonSummaries aggregates every expense of a trip into per
// participant paid/owed/net totals. Participants are ordered by first
// appearance across the expense list, so the result is deterministic for
// a given input order. The nets of all participants sum to zero within
// rounding noise; that invariant is what the settlement plan relies on.
func CalculatePersonSummaries(expenses []ExpenseShares) []PersonSummary {
	index := make(map[string]int)
	var summaries []PersonSummary

	at := func(id string) *PersonSummary {
		if i, ok := index[id]; ok {
			return &summaries[i]
		}
		index[id] = len(summaries)
		summaries = append(summaries, PersonSummary{ParticipantID: id})
		return &summaries[len(summaries)-1]
	}

	for _, exp := range expenses {
		if exp.PayerID != "" {
			payer := at(exp.PayerID)
			payer.TotalPaid = payer.TotalPaid.Add(exp.AmountPaid)
		}
		for _, share := range exp.Shares {
			p := at(share.ParticipantID)
			p.TotalOwed = p.TotalOwed.Add(share.Amount)
		}
	}

	for i := range summaries {
		summaries[i].Net = summaries[i].TotalPaid.Sub(summaries[i].TotalOwed)
	}
	return summaries
}

// ApplySettledAdjustment folds already-settled transfers back into the
// summaries: the settled amount is returned to the payer's net and taken
// from the receiver's. The resulting summaries describe what remains to
// be settled, so marking a transfer settled never requires touching the
// underlying expense history.
func ApplySettledAdjustment(summaries []PersonSummary, prior []Transfer) []PersonSummary {
	adjusted := make([]PersonSummary, len(summaries))
	copy(adjusted, summaries)

	index := make(map[string]int, len(adjusted))
	for i, s := range adjusted {
		index[s.ParticipantID] = i
	}

	// A settled payment may reference a participant with no remaining
	// expense history, e.g. after their only expense was deleted. They
	// still hold a position from the money that changed hands, so they
	// are materialized with zero paid/owed; adjusting only one side of
	// the pair would break the zero-sum of the nets.
	at := func(id string) int {
		if i, ok := index[id]; ok {
			return i
		}
		index[id] = len(adjusted)
		adjusted = append(adjusted, PersonSummary{ParticipantID: id})
		return len(adjusted) - 1
	}

	for _, t := range prior {
		if !t.IsSettled {
			continue
		}
		from := at(t.FromParticipantID)
		adjusted[from].Net = adjusted[from].Net.Add(t.Amount)
		to := at(t.ToParticipantID)
		adjusted[to].Net = adjusted[to].Net.Sub(t.Amount)
	}
	return adjusted
}

// CalculateMinimalTransfers turns net balances into a small set of
// pairwise payments: repeatedly match the largest remaining creditor with
// the largest remaining debtor (ties broken by participant id) until
// everyone is within one precision unit of zero. For n unsettled
// participants this yields at most n-1 transfers; the true minimum is
// NP-hard and out of scope.
func CalculateMinimalTransfers(tripID string, summaries []PersonSummary, currencyCode string, now time.Time) []Transfer {
	unit := decimal.New(1, -currency.Precision(currencyCode))

	type balance struct {
		participantID string
		amount        decimal.Decimal // always positive
	}
	var creditors, debtors []balance
	for _, s := range summaries {
		switch {
		case s.Net.Cmp(unit) >= 0:
			creditors = append(creditors, balance{s.ParticipantID, s.Net})
		case s.Net.Neg().Cmp(unit) >= 0:
			debtors = append(debtors, balance{s.ParticipantID, s.Net.Neg()})
		}
	}

	largest := func(balances []balance) int {
		idx := 0
		for i, b := range balances {
			switch b.amount.Cmp(balances[idx].amount) {
			case 1:
				idx = i
			case 0:
				if b.participantID < balances[idx].participantID {
					idx = i
				}
			}
		}
		return idx
	}
	drop := func(balances []balance, i int) []balance {
		if balances[i].amount.Cmp(unit) < 0 {
			return append(balances[:i], balances[i+1:]...)
		}
		return balances
	}

	transfers := []Transfer{}
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)

		amount := decimal.Min(creditors[ci].amount, debtors[di].amount)
		transfers = append(transfers, Transfer{
			ID:                uuid.NewString(),
			TripID:            tripID,
			FromParticipantID: debtors[di].participantID,
			ToParticipantID:   creditors[ci].participantID,
			Amount:            amount,
			ComputedAt:        now,
		})

		creditors[ci].amount = creditors[ci].amount.Sub(amount)
		debtors[di].amount = debtors[di].amount.Sub(amount)
		creditors = drop(creditors, ci)
		debtors = drop(debtors, di)
	}
	return transfers
}

// ComputeSettlement runs a full settlement pass for a trip: aggregate
// summaries, fold settled prior transfers back in, and compute the
// remaining transfer plan. Settled prior transfers are preserved in the
// result as-is (they happened in the real world); a fresh transfer that
// re-emerges for an already-settled pair represents new debt and starts
// unsettled.
func ComputeSettlement(tripID string, expenses []ExpenseShares, prior []Transfer, currencyCode string, now time.Time) Result {
	summaries := CalculatePersonSummaries(expenses)
	adjusted := ApplySettledAdjustment(summaries, prior)

	var transfers []Transfer
	for _, t := range prior {
		if !t.IsSettled {
			continue
		}
		carried := t
		carried.TripID = tripID
		carried.ComputedAt = now
		transfers = append(transfers, carried)
	}
	transfers = append(transfers, CalculateMinimalTransfers(tripID, adjusted, currencyCode, now)...)

	// Stable presentation order: settled history first, computed plan after.
	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].IsSettled && !transfers[j].IsSettled
	})

	return Result{
		TripID:     tripID,
		ComputedAt: now,
		Summaries:  adjusted,
		Transfers:  transfers,
	}
}
