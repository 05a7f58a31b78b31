package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/andresfq/mercadito/internal/model"
	"github.com/andresfq/mercadito/internal/repository"
)

// ProfileService serves profile views: counters, the buyer's purchase
// history, and the buyer's edit form.
type ProfileService interface {
	// Get returns the profile with its counters.
	Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	// UpdateComprador updates buyer display fields; blank values keep the
	// stored ones. Returns the refreshed profile.
	UpdateComprador(ctx context.Context, userID uuid.UUID, nombre, descripcion string) (*model.Profile, error)
	// Historial returns the buyer's purchases, newest first.
	Historial(ctx context.Context, buyerID uuid.UUID) ([]model.Purchase, error)
}

type ProfileServiceImpl struct {
	profiles  repository.ProfileRepository
	purchases repository.PurchaseRepository
}

// NewProfileService constructs ProfileService.
func NewProfileService(profiles repository.ProfileRepository, purchases repository.PurchaseRepository) *ProfileServiceImpl {
	return &ProfileServiceImpl{profiles: profiles, purchases: purchases}
}

// Get loads the profile by user id.
func (s *ProfileServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty user id")
	}
	return s.profiles.GetByID(ctx, userID)
}

// UpdateComprador writes the buyer edit form fields.
func (s *ProfileServiceImpl) UpdateComprador(ctx context.Context, userID uuid.UUID, nombre, descripcion string) (*model.Profile, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty user id")
	}
	if err := s.profiles.UpdateComprador(ctx, userID, nombre, descripcion); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, userID)
}

// Historial returns the buyer's purchase history.
func (s *ProfileServiceImpl) Historial(ctx context.Context, buyerID uuid.UUID) ([]model.Purchase, error) {
	if buyerID == uuid.Nil {
		return nil, errors.New("validation: empty buyer id")
	}
	return s.purchases.ListByComprador(ctx, buyerID)
}
