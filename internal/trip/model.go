package trip

import "time"

// Trip represents a trip whose participants share expenses. All of a
// trip's settlement math happens in its base currency; conversion of
// foreign amounts is the caller's job before an expense is recorded.
type Trip struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BaseCurrency string    `json:"base_currency"`
	CreatedAt    time.Time `json:"created_at"`

	// ExpensesUpdatedAt is bumped whenever an expense on this trip is
	// created, changed or deleted. A cached settlement computed before
	// this time is stale.
	ExpensesUpdatedAt *time.Time `json:"expenses_updated_at,omitempty"`
}

// Participant is a member of one trip. Participants are trip-scoped
// labels, not accounts; identity is external to this service.
type Participant struct {
	ID       string    `json:"id"`
	TripID   string    `json:"trip_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}
