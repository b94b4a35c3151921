package ports

import (
	"context"

	"github.com/technotes/notes-api/internal/core/domain"
)

// CreateNoteInput is the DTO passed from the transport layer to NoteService.
type CreateNoteInput struct {
	User  string
	Title string
	Text  string
}

// UpdateNoteInput replaces every mutable field of a note.
type UpdateNoteInput struct {
	ID        string
	User      string
	Title     string
	Text      string
	Completed *bool
}

// NoteView is a note together with the username of the user it is assigned to.
type NoteView struct {
	domain.Note
	Username string `json:"username"`
}

// NoteService defines use-case operations for notes.
type NoteService interface {
	ListNotes(ctx context.Context) ([]NoteView, error)
	CreateNote(ctx context.Context, input CreateNoteInput) (string, error)
	UpdateNote(ctx context.Context, input UpdateNoteInput) (string, error)
	DeleteNote(ctx context.Context, id string) (string, error)
}
