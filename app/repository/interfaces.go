package repository

import (
	"context"

	"github.com/ManuelReschke/saasbase/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateIfAbsent inserts the user unless a row with the same email
	// already exists. It reports whether this call inserted the row.
	CreateIfAbsent(ctx context.Context, user *models.User) (bool, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User UserRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User: NewUserRepository(db),
	}
}
