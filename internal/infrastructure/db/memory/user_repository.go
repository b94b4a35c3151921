package memory

import (
	"context"
	"time"

	"github.com/technotes/notes-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository in memory.
type UserRepository struct {
	s *Store
}

func (r *UserRepository) FindAll(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := byCreation(r.s.users, func(u *domain.User) time.Time { return u.CreatedAt })
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		u := cloneUser(r.s.users[id])
		u.PasswordHash = ""
		out = append(out, *u)
	}
	return out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindUsernames(_ context.Context, ids []string) (map[string]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u.Username
		}
	}
	return out, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkUnique(user.Username, ""); err != nil {
		return nil, err
	}
	stored := cloneUser(user)
	stored.ID = newID()
	stored.CreatedAt = r.s.now()
	stored.UpdatedAt = stored.CreatedAt
	r.s.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *UserRepository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := r.checkUnique(user.Username, user.ID); err != nil {
		return nil, err
	}
	stored := cloneUser(user)
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = r.s.now()
	r.s.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// checkUnique mirrors the unique index on users.username. Caller holds the lock.
func (r *UserRepository) checkUnique(username, selfID string) error {
	for id, u := range r.s.users {
		if id != selfID && u.Username == username {
			return &domain.UniqueViolation{Field: domain.FieldUsername, Value: username}
		}
	}
	return nil
}
