package ports

import (
	"context"

	"github.com/technotes/notes-api/internal/core/domain"
)

// NoteRepository defines persistence operations for notes.
//
// Create and Save return *domain.UniqueViolation when the title is already
// taken. Lookups of a missing note return domain.ErrNotFound.
type NoteRepository interface {
	FindAll(ctx context.Context) ([]domain.Note, error)
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	// HasNotesForUser reports whether at least one note references userID.
	HasNotesForUser(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, note *domain.Note) (*domain.Note, error)
	Save(ctx context.Context, note *domain.Note) (*domain.Note, error)
	Delete(ctx context.Context, id string) error
}
