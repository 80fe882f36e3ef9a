package trip

import (
	"context"
	"errors"
	"strings"
)

// Common errors
var ErrTripNotFound = errors.New("trip not found")

// Service handles trip business logic
type Service struct {
	repo *Repository
}

// NewService creates a new trip service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateTrip creates a new trip. The base currency defaults to USD and is
// normalized to upper case; unknown codes are accepted and treated as
// two-decimal currencies by the calculation engine.
func (s *Service) CreateTrip(ctx context.Context, req *CreateTripRequest) (*Trip, error) {
	code := strings.ToUpper(strings.TrimSpace(req.BaseCurrency))
	if code == "" {
		code = "USD"
	}
	return s.repo.CreateTrip(ctx, req.Name, code)
}

// GetByID retrieves a trip with its participants
func (s *Service) GetByID(ctx context.Context, id string) (*Trip, []*Participant, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if trip == nil {
		return nil, nil, ErrTripNotFound
	}

	participants, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return trip, participants, nil
}

// List retrieves trips with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Trip, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// Delete removes a trip
func (s *Service) Delete(ctx context.Context, id string) error {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if trip == nil {
		return ErrTripNotFound
	}
	return s.repo.Delete(ctx, id)
}

// AddParticipant adds a participant to a trip
func (s *Service) AddParticipant(ctx context.Context, tripID string, req *AddParticipantRequest) (*Participant, error) {
	trip, err := s.repo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	return s.repo.AddParticipant(ctx, tripID, req.Name)
}
