package ports

import (
	"context"

	"github.com/technotes/notes-api/internal/core/domain"
)

// UserRepository defines persistence operations for users.
//
// Create and Save return *domain.UniqueViolation when the username is
// already taken. Lookups of a missing user return domain.ErrNotFound.
type UserRepository interface {
	// FindAll returns every user with the password hash left empty.
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindUsernames resolves the given IDs in a single query. IDs with no
	// matching user are absent from the result.
	FindUsernames(ctx context.Context, ids []string) (map[string]string, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
