package service

import (
	"context"
	"errors"
	"testing"

	"github.com/technotes/notes-api/internal/core/domain"
	"github.com/technotes/notes-api/internal/core/ports"
)

// countingUsers wraps a UserRepository and counts batched username lookups.
type countingUsers struct {
	ports.UserRepository
	lookups int
	lastIDs []string
}

func (c *countingUsers) FindUsernames(ctx context.Context, ids []string) (map[string]string, error) {
	c.lookups++
	c.lastIDs = append([]string(nil), ids...)
	return c.UserRepository.FindUsernames(ctx, ids)
}

func (f *fixture) mustCreateNote(t *testing.T, userID, title string) domain.Note {
	t.Helper()
	if _, err := f.notes.CreateNote(context.Background(), ports.CreateNoteInput{User: userID, Title: title, Text: "text"}); err != nil {
		t.Fatalf("create note %s: %v", title, err)
	}
	all, _ := f.store.Notes().FindAll(context.Background())
	for _, n := range all {
		if n.Title == title {
			return n
		}
	}
	t.Fatalf("note %s not stored", title)
	return domain.Note{}
}

// ---------------------------------------------------------------------------
// ListNotes
// ---------------------------------------------------------------------------

func TestNoteService_List_EmptyIsNoContent(t *testing.T) {
	f := newFixture()

	_, err := f.notes.ListNotes(context.Background())
	assertKind(t, err, domain.ErrNoContent, "No notes found")
}

func TestNoteService_List_AttachesUsernamesInOneLookup(t *testing.T) {
	f := newFixture()
	alice := f.mustCreateUser(t, "alice")
	bob := f.mustCreateUser(t, "bob")
	f.mustCreateNote(t, alice.ID, "one")
	f.mustCreateNote(t, alice.ID, "two")
	f.mustCreateNote(t, bob.ID, "three")

	users := &countingUsers{UserRepository: f.store.Users()}
	svc := NewNoteService(f.store.Notes(), users, nil, discardLogger)

	views, err := svc.ListNotes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(views))
	}
	want := map[string]string{"one": "alice", "two": "alice", "three": "bob"}
	for _, v := range views {
		if v.Username != want[v.Title] {
			t.Errorf("note %s: expected username %s, got %s", v.Title, want[v.Title], v.Username)
		}
	}
	if users.lookups != 1 {
		t.Errorf("expected a single batched lookup, got %d", users.lookups)
	}
	if len(users.lastIDs) != 2 {
		t.Errorf("expected distinct user ids, got %v", users.lastIDs)
	}
}

func TestNoteService_List_UsesCache(t *testing.T) {
	f := newFixture()
	alice := f.mustCreateUser(t, "alice")
	f.mustCreateNote(t, alice.ID, "one")
	f.cache.entries[alice.ID] = "cached-alice"

	users := &countingUsers{UserRepository: f.store.Users()}
	svc := NewNoteService(f.store.Notes(), users, f.cache, discardLogger)

	views, err := svc.ListNotes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if views[0].Username != "cached-alice" {
		t.Errorf("expected cached username, got %s", views[0].Username)
	}
	if users.lookups != 0 {
		t.Errorf("expected no repository lookup on a full cache hit, got %d", users.lookups)
	}
}

func TestNoteService_List_FillsCacheOnMiss(t *testing.T) {
	f := newFixture()
	alice := f.mustCreateUser(t, "alice")
	f.mustCreateNote(t, alice.ID, "one")

	if _, err := f.notes.ListNotes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.cache.entries[alice.ID] != "alice" {
		t.Errorf("expected cache to be filled, got %v", f.cache.entries)
	}
}

func TestNoteService_List_CacheFailureFallsBack(t *testing.T) {
	f := newFixture()
	alice := f.mustCreateUser(t, "alice")
	f.mustCreateNote(t, alice.ID, "one")
	f.cache.getErr = errors.New("redis down")

	views, err := f.notes.ListNotes(context.Background())
	if err != nil {
		t.Fatalf("cache failure must not fail the listing: %v", err)
	}
	if views[0].Username != "alice" {
		t.Errorf("expected username from repository, got %s", views[0].Username)
	}
}

// ---------------------------------------------------------------------------
// CreateNote
// ---------------------------------------------------------------------------

func TestNoteService_Create_Success(t *testing.T) {
	f := newFixture()
	u := f.mustCreateUser(t, "alice")

	msg, err := f.notes.CreateNote(context.Background(), ports.CreateNoteInput{User: u.ID, Title: "Fix laptop", Text: "screen"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "New note created" {
		t.Errorf("unexpected message: %q", msg)
	}
	notes, _ := f.store.Notes().FindAll(context.Background())
	if len(notes) != 1 || notes[0].Completed {
		t.Fatalf("expected one open note, got %+v", notes)
	}
}

func TestNoteService_Create_Validation(t *testing.T) {
	f := newFixture()

	cases := []ports.CreateNoteInput{
		{Title: "t", Text: "x"},
		{User: "u", Text: "x"},
		{User: "u", Title: "t"},
	}
	for _, in := range cases {
		_, err := f.notes.CreateNote(context.Background(), in)
		assertKind(t, err, domain.ErrInvalidInput, "All fields are required")
	}
}

func TestNoteService_Create_UnknownUser(t *testing.T) {
	f := newFixture()

	_, err := f.notes.CreateNote(context.Background(), ports.CreateNoteInput{User: "65a000000000000000000000", Title: "t", Text: "x"})
	assertKind(t, err, domain.ErrInvalidInput, "Assigned user not found")
}

func TestNoteService_Create_DuplicateTitle(t *testing.T) {
	f := newFixture()
	u := f.mustCreateUser(t, "alice")
	f.mustCreateNote(t, u.ID, "Same")

	_, err := f.notes.CreateNote(context.Background(), ports.CreateNoteInput{User: u.ID, Title: "Same", Text: "again"})

	var uv *domain.UniqueViolation
	if !errors.As(err, &uv) {
		t.Fatalf("expected UniqueViolation, got %v", err)
	}
	if uv.Field != domain.FieldTitle {
		t.Errorf("expected field title, got %s", uv.Field)
	}
}

// ---------------------------------------------------------------------------
// UpdateNote
// ---------------------------------------------------------------------------

func TestNoteService_Update_AcceptsCompletedFalse(t *testing.T) {
	f := newFixture()
	u := f.mustCreateUser(t, "alice")
	n := f.mustCreateNote(t, u.ID, "Old")

	msg, err := f.notes.UpdateNote(context.Background(), ports.UpdateNoteInput{
		ID: n.ID, User: u.ID, Title: "New", Text: "changed", Completed: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "New updated" {
		t.Errorf("unexpected message: %q", msg)
	}
	stored, _ := f.store.Notes().FindByID(context.Background(), n.ID)
	if stored.Title != "New" || stored.Text != "changed" || stored.Completed {
		t.Errorf("unexpected stored note: %+v", stored)
	}
}

func TestNoteService_Update_Reassigns(t *testing.T) {
	f := newFixture()
	alice := f.mustCreateUser(t, "alice")
	bob := f.mustCreateUser(t, "bob")
	n := f.mustCreateNote(t, alice.ID, "Task")

	_, err := f.notes.UpdateNote(context.Background(), ports.UpdateNoteInput{
		ID: n.ID, User: bob.ID, Title: "Task", Text: "text", Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := f.store.Notes().FindByID(context.Background(), n.ID)
	if stored.User != bob.ID || !stored.Completed {
		t.Errorf("unexpected stored note: %+v", stored)
	}
}

func TestNoteService_Update_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.notes.UpdateNote(context.Background(), ports.UpdateNoteInput{ID: "x", User: "u", Title: "t", Text: "x"})
	assertKind(t, err, domain.ErrInvalidInput, "All fields are required")
}

func TestNoteService_Update_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.notes.UpdateNote(context.Background(), ports.UpdateNoteInput{
		ID: "65a000000000000000000000", User: "u", Title: "t", Text: "x", Completed: boolPtr(true),
	})
	assertKind(t, err, domain.ErrNotFound, "Note not found")
}

// ---------------------------------------------------------------------------
// DeleteNote
// ---------------------------------------------------------------------------

func TestNoteService_Delete_Success(t *testing.T) {
	f := newFixture()
	u := f.mustCreateUser(t, "alice")
	n := f.mustCreateNote(t, u.ID, "Done")

	msg, err := f.notes.DeleteNote(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Note Done with ID " + n.ID + " deleted"; msg != want {
		t.Errorf("expected %q, got %q", want, msg)
	}

	// The user is no longer referenced and can be removed.
	if _, err := f.users.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("expected user delete to succeed after note removal: %v", err)
	}
}

func TestNoteService_Delete_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.notes.DeleteNote(context.Background(), "")
	assertKind(t, err, domain.ErrInvalidInput, "Note ID required")

	_, err = f.notes.DeleteNote(context.Background(), "65a000000000000000000000")
	assertKind(t, err, domain.ErrNotFound, "Note not found")
}
