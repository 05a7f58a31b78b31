package repository

import (
	"context"

	"github.com/andresfq/mercadito/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProfileRepository reads and updates public profiles.
type ProfileRepository interface {
	// GetByID loads a profile with its counters.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	// UpdateComprador updates buyer display fields; blank values keep the
	// stored ones.
	UpdateComprador(ctx context.Context, id uuid.UUID, nombre, descripcion string) error
}
