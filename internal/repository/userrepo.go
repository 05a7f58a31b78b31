// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/andresfq/mercadito/internal/model"
)

// UserRepository provides account storage. Registration creates the auth row
// and its profile row in one transaction so no orphan accounts exist.
type UserRepository interface {
	// CreateWithProfile inserts a user and its profile atomically.
	CreateWithProfile(ctx context.Context, u *model.User, p *model.Profile) error
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
