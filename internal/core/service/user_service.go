package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/technotes/notes-api/internal/core/domain"
	"github.com/technotes/notes-api/internal/core/ports"
)

const msgAllFieldsRequired = "All fields are required"

// UserService implements user management on top of the user and note repositories.
type UserService struct {
	users  ports.UserRepository
	notes  ports.NoteRepository
	hasher ports.PasswordHasher
	tx     ports.Transactor
	cache  ports.UsernameCache // optional
	logger zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	notes ports.NoteRepository,
	hasher ports.PasswordHasher,
	tx ports.Transactor,
	cache ports.UsernameCache,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:  users,
		notes:  notes,
		hasher: hasher,
		tx:     tx,
		cache:  cache,
		logger: logger,
	}
}

// ListUsers returns every user. The password hash is never populated.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, domain.NoContent("No users found")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// CreateUser hashes the password and stores a new user. Duplicate usernames
// are not checked here; the repository rejects them with a UniqueViolation.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (string, error) {
	if in.Username == "" || in.Password == "" {
		return "", domain.InvalidInput(msgAllFieldsRequired)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return "", fmt.Errorf("create user: hash password: %w", err)
	}

	roles := in.Roles
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     strings.ToLower(in.Username),
		PasswordHash: hash,
		Roles:        roles,
		Active:       true,
	})
	if err != nil {
		return "", err
	}
	if created == nil {
		return "", domain.InvalidInput("Invalid user data received")
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user created")
	return fmt.Sprintf("New user %s created", in.Username), nil
}

// UpdateUser replaces username, roles and active flag. The password hash is
// only recomputed when a new password is supplied.
func (s *UserService) UpdateUser(ctx context.Context, in ports.UpdateUserInput) (string, error) {
	if in.ID == "" || in.Username == "" || len(in.Roles) == 0 || in.Active == nil {
		return "", domain.InvalidInput(msgAllFieldsRequired)
	}

	user, err := s.users.FindByID(ctx, in.ID)
	if err != nil {
		return "", notFoundAs(err, "User not found")
	}

	user.Username = strings.ToLower(in.Username)
	user.Roles = in.Roles
	user.Active = *in.Active

	if in.Password != "" {
		hash, err := s.hasher.Hash(ctx, in.Password)
		if err != nil {
			return "", fmt.Errorf("update user: hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	updated, err := s.users.Save(ctx, user)
	if err != nil {
		return "", notFoundAs(err, "User not found")
	}

	s.invalidate(ctx, updated.ID)
	return fmt.Sprintf("%s updated", updated.Username), nil
}

// DeleteUser removes a user that no note references. The reference check and
// the delete share one transaction when the store supports it.
func (s *UserService) DeleteUser(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", domain.InvalidInput("User ID required")
	}

	var deleted *domain.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		assigned, err := s.notes.HasNotesForUser(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user: check notes: %w", err)
		}
		if assigned {
			return domain.Conflict("User has assigned notes")
		}

		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "User not found")
		}
		if err := s.users.Delete(ctx, id); err != nil {
			return notFoundAs(err, "User not found")
		}
		deleted = user
		return nil
	})
	if err != nil {
		return "", err
	}

	s.invalidate(ctx, deleted.ID)
	s.logger.Info().Str("user_id", deleted.ID).Str("username", deleted.Username).Msg("user deleted")
	return fmt.Sprintf("User %s with ID %s deleted", deleted.Username, deleted.ID), nil
}

func (s *UserService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("user_id", id).Msg("failed to invalidate username cache")
	}
}
