package ports

import (
	"context"

	"github.com/technotes/notes-api/internal/core/domain"
)

// CreateUserInput is the DTO passed from the transport layer to UserService.
type CreateUserInput struct {
	Username string
	Password string
	Roles    []string // optional; empty means default roles
}

// UpdateUserInput replaces every mutable field of a user. Active is a
// pointer so that an absent value can be told apart from false.
type UpdateUserInput struct {
	ID       string
	Username string
	Roles    []string
	Active   *bool
	Password string // optional; empty keeps the current hash
}

// UserService defines use-case operations for users. The string results are
// confirmation messages for the client.
type UserService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (string, error)
	UpdateUser(ctx context.Context, input UpdateUserInput) (string, error)
	DeleteUser(ctx context.Context, id string) (string, error)
}
