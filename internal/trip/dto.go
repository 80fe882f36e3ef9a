package trip

// CreateTripRequest represents the request to create a trip
type CreateTripRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	BaseCurrency string `json:"base_currency" validate:"omitempty,len=3"`
}

// AddParticipantRequest represents the request to add a participant to a trip
type AddParticipantRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// TripResponse represents the response for a trip
type TripResponse struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	BaseCurrency      string                 `json:"base_currency"`
	CreatedAt         string                 `json:"created_at"`
	ExpensesUpdatedAt *string                `json:"expenses_updated_at,omitempty"`
	Participants      []*ParticipantResponse `json:"participants,omitempty"`
}

// ParticipantResponse represents the response for a trip participant
type ParticipantResponse struct {
	ID       string `json:"id"`
	TripID   string `json:"trip_id"`
	Name     string `json:"name"`
	JoinedAt string `json:"joined_at"`
}

const timeFormat = "2006-01-02T15:04:05Z"

// ToResponse converts a Trip model to a TripResponse DTO
func (t *Trip) ToResponse() *TripResponse {
	resp := &TripResponse{
		ID:           t.ID,
		Name:         t.Name,
		BaseCurrency: t.BaseCurrency,
		CreatedAt:    t.CreatedAt.Format(timeFormat),
	}
	if t.ExpensesUpdatedAt != nil {
		s := t.ExpensesUpdatedAt.Format(timeFormat)
		resp.ExpensesUpdatedAt = &s
	}
	return resp
}

// ToResponse converts a Participant model to a ParticipantResponse DTO
func (p *Participant) ToResponse() *ParticipantResponse {
	return &ParticipantResponse{
		ID:       p.ID,
		TripID:   p.TripID,
		Name:     p.Name,
		JoinedAt: p.JoinedAt.Format(timeFormat),
	}
}
