package settlement

// PersonSummaryResponse is one participant's position in API form
type PersonSummaryResponse struct {
	ParticipantID string `json:"participant_id"`
	TotalPaid     string `json:"total_paid"`
	TotalOwed     string `json:"total_owed"`
	Net           string `json:"net"`
}

// TransferResponse is one suggested payment in API form
type TransferResponse struct {
	ID                string `json:"id"`
	TripID            string `json:"trip_id"`
	FromParticipantID string `json:"from_participant_id"`
	ToParticipantID   string `json:"to_participant_id"`
	Amount            string `json:"amount"`
	ComputedAt        string `json:"computed_at"`
	IsSettled         bool   `json:"is_settled"`
	SettledAt         string `json:"settled_at,omitempty"`
}

// SettlementResponse is the full settlement plan for a trip
type SettlementResponse struct {
	TripID       string                   `json:"trip_id"`
	CurrencyCode string                   `json:"currency_code"`
	ComputedAt   string                   `json:"computed_at"`
	Stale        bool                     `json:"stale"`
	Summaries    []*PersonSummaryResponse `json:"summaries"`
	Transfers    []*TransferResponse      `json:"transfers"`
}

const timeFormat = "2006-01-02T15:04:05Z"

// ToResponse converts a PersonSummary at the given currency precision
func (p *PersonSummary) ToResponse(precision int32) *PersonSummaryResponse {
	return &PersonSummaryResponse{
		ParticipantID: p.ParticipantID,
		TotalPaid:     p.TotalPaid.StringFixed(precision),
		TotalOwed:     p.TotalOwed.StringFixed(precision),
		Net:           p.Net.StringFixed(precision),
	}
}

// ToResponse converts a Transfer at the given currency precision
func (t *Transfer) ToResponse(precision int32) *TransferResponse {
	resp := &TransferResponse{
		ID:                t.ID,
		TripID:            t.TripID,
		FromParticipantID: t.FromParticipantID,
		ToParticipantID:   t.ToParticipantID,
		Amount:            t.Amount.StringFixed(precision),
		ComputedAt:        t.ComputedAt.Format(timeFormat),
		IsSettled:         t.IsSettled,
	}
	if t.SettledAt != nil {
		resp.SettledAt = t.SettledAt.Format(timeFormat)
	}
	return resp
}

// ToResponse converts a TripSettlement to its API form
func (ts *TripSettlement) ToResponse(precision int32) *SettlementResponse {
	resp := &SettlementResponse{
		TripID:       ts.TripID,
		CurrencyCode: ts.BaseCurrency,
		ComputedAt:   ts.ComputedAt.Format(timeFormat),
		Stale:        ts.Stale,
		Summaries:    make([]*PersonSummaryResponse, len(ts.Summaries)),
		Transfers:    make([]*TransferResponse, len(ts.Transfers)),
	}
	for i := range ts.Summaries {
		resp.Summaries[i] = ts.Summaries[i].ToResponse(precision)
	}
	for i := range ts.Transfers {
		resp.Transfers[i] = ts.Transfers[i].ToResponse(precision)
	}
	return resp
}
