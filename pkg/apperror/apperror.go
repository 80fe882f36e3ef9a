package apperror

import "errors"

// Error kinds shared by the calculation engine and the HTTP layer.
// Packages wrap these with fmt.Errorf("%w: ...") so handlers can map
// them to status codes with errors.Is.
var (
	// ErrValidation indicates malformed caller input (empty assignment,
	// shares that don't sum to 1, a negative amount).
	ErrValidation = errors.New("validation error")

	// ErrInvalidConfiguration indicates a calculation was configured in a
	// way that cannot be executed (payer remainder strategy without a
	// payer, unknown rounding mode).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDataIntegrity indicates inconsistent data across entities, e.g.
	// an expense referencing a participant that is not on the trip.
	ErrDataIntegrity = errors.New("data integrity error")
)
