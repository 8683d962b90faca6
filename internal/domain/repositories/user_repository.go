package repositories

import (
	"context"

	"github.com/nagoyameshi/backend/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user; duplicate email or username yields a conflict error
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by login email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// UpdateProfile persists the user-editable profile fields
	UpdateProfile(ctx context.Context, id string, update entities.ProfileUpdate) error

	// UpdateCustomerID stores or clears the billing customer reference
	UpdateCustomerID(ctx context.Context, id, customerID string) error
}
