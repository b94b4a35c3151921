package memory

import (
	"context"
	"time"

	"github.com/technotes/notes-api/internal/core/domain"
)

// NoteRepository implements ports.NoteRepository in memory.
type NoteRepository struct {
	s *Store
}

func (r *NoteRepository) FindAll(_ context.Context) ([]domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := byCreation(r.s.notes, func(n *domain.Note) time.Time { return n.CreatedAt })
	out := make([]domain.Note, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.s.notes[id])
	}
	return out, nil
}

func (r *NoteRepository) FindByID(_ context.Context, id string) (*domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneNote(n), nil
}

func (r *NoteRepository) HasNotesForUser(_ context.Context, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, n := range r.s.notes {
		if n.User == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *NoteRepository) Create(_ context.Context, note *domain.Note) (*domain.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkUnique(note.Title, ""); err != nil {
		return nil, err
	}
	stored := cloneNote(note)
	stored.ID = newID()
	stored.CreatedAt = r.s.now()
	stored.UpdatedAt = stored.CreatedAt
	r.s.notes[stored.ID] = stored
	return cloneNote(stored), nil
}

func (r *NoteRepository) Save(_ context.Context, note *domain.Note) (*domain.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.notes[note.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := r.checkUnique(note.Title, note.ID); err != nil {
		return nil, err
	}
	stored := cloneNote(note)
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = r.s.now()
	r.s.notes[stored.ID] = stored
	return cloneNote(stored), nil
}

func (r *NoteRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.notes, id)
	return nil
}

// checkUnique mirrors the unique index on notes.title. Caller holds the lock.
func (r *NoteRepository) checkUnique(title, selfID string) error {
	for id, n := range r.s.notes {
		if id != selfID && n.Title == title {
			return &domain.UniqueViolation{Field: domain.FieldTitle, Value: title}
		}
	}
	return nil
}
