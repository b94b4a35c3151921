package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/technotes/notes-api/internal/core/domain"
	"github.com/technotes/notes-api/internal/core/ports"
)

// NoteService implements note management. Users are only read, to validate
// assignments and to resolve usernames for listings.
type NoteService struct {
	notes  ports.NoteRepository
	users  ports.UserRepository
	cache  ports.UsernameCache // optional
	logger zerolog.Logger
}

func NewNoteService(notes ports.NoteRepository, users ports.UserRepository, cache ports.UsernameCache, logger zerolog.Logger) *NoteService {
	return &NoteService{notes: notes, users: users, cache: cache, logger: logger}
}

// ListNotes returns every note with the assigned user's username attached.
// Usernames are resolved with one batched lookup for the distinct user IDs.
func (s *NoteService) ListNotes(ctx context.Context) ([]ports.NoteView, error) {
	notes, err := s.notes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if len(notes) == 0 {
		return nil, domain.NoContent("No notes found")
	}

	seen := make(map[string]struct{}, len(notes))
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		if _, ok := seen[n.User]; ok {
			continue
		}
		seen[n.User] = struct{}{}
		ids = append(ids, n.User)
	}

	usernames, err := s.resolveUsernames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list notes: resolve usernames: %w", err)
	}

	views := make([]ports.NoteView, len(notes))
	for i, n := range notes {
		views[i] = ports.NoteView{Note: n, Username: usernames[n.User]}
	}
	return views, nil
}

// resolveUsernames consults the cache first and loads the misses from the
// repository. Cache failures only cost a repository round-trip.
func (s *NoteService) resolveUsernames(ctx context.Context, ids []string) (map[string]string, error) {
	resolved := make(map[string]string, len(ids))
	missing := ids

	if s.cache != nil {
		cached, err := s.cache.GetMany(ctx, ids)
		if err != nil {
			s.logger.Warn().Err(err).Msg("username cache lookup failed")
		} else {
			missing = make([]string, 0, len(ids))
			for _, id := range ids {
				if name, ok := cached[id]; ok {
					resolved[id] = name
					continue
				}
				missing = append(missing, id)
			}
		}
	}
	if len(missing) == 0 {
		return resolved, nil
	}

	loaded, err := s.users.FindUsernames(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range loaded {
		resolved[id] = name
	}

	if s.cache != nil && len(loaded) > 0 {
		if err := s.cache.SetMany(ctx, loaded); err != nil {
			s.logger.Warn().Err(err).Msg("username cache fill failed")
		}
	}
	return resolved, nil
}

// CreateNote stores a new note assigned to an existing user. Duplicate
// titles are rejected by the repository.
func (s *NoteService) CreateNote(ctx context.Context, in ports.CreateNoteInput) (string, error) {
	if in.User == "" || in.Title == "" || in.Text == "" {
		return "", domain.InvalidInput(msgAllFieldsRequired)
	}
	if err := s.ensureUser(ctx, in.User); err != nil {
		return "", err
	}

	created, err := s.notes.Create(ctx, &domain.Note{
		User:  in.User,
		Title: in.Title,
		Text:  in.Text,
	})
	if err != nil {
		return "", err
	}
	if created == nil {
		return "", domain.InvalidInput("Invalid note data received")
	}

	s.logger.Info().Str("note_id", created.ID).Str("user_id", created.User).Msg("note created")
	return "New note created", nil
}

// UpdateNote replaces user, title, text and completed on an existing note.
func (s *NoteService) UpdateNote(ctx context.Context, in ports.UpdateNoteInput) (string, error) {
	if in.ID == "" || in.User == "" || in.Title == "" || in.Text == "" || in.Completed == nil {
		return "", domain.InvalidInput(msgAllFieldsRequired)
	}

	note, err := s.notes.FindByID(ctx, in.ID)
	if err != nil {
		return "", notFoundAs(err, "Note not found")
	}
	if note.User != in.User {
		if err := s.ensureUser(ctx, in.User); err != nil {
			return "", err
		}
	}

	note.User = in.User
	note.Title = in.Title
	note.Text = in.Text
	note.Completed = *in.Completed

	updated, err := s.notes.Save(ctx, note)
	if err != nil {
		return "", notFoundAs(err, "Note not found")
	}
	return fmt.Sprintf("%s updated", updated.Title), nil
}

// DeleteNote removes a note by ID.
func (s *NoteService) DeleteNote(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", domain.InvalidInput("Note ID required")
	}

	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return "", notFoundAs(err, "Note not found")
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		return "", notFoundAs(err, "Note not found")
	}

	s.logger.Info().Str("note_id", note.ID).Msg("note deleted")
	return fmt.Sprintf("Note %s with ID %s deleted", note.Title, note.ID), nil
}

func (s *NoteService) ensureUser(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.InvalidInput("Assigned user not found")
		}
		return fmt.Errorf("lookup assigned user: %w", err)
	}
	return nil
}

// notFoundAs replaces a bare repository ErrNotFound with a client-facing
// message. Any other error is returned unchanged.
func notFoundAs(err error, msg string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound(msg)
	}
	return err
}
