package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/technotes/notes-api/internal/core/domain"
	"github.com/technotes/notes-api/internal/core/ports"
)

type stubUserService struct {
	listFn   func(ctx context.Context) ([]domain.User, error)
	createFn func(ctx context.Context, in ports.CreateUserInput) (string, error)
	updateFn func(ctx context.Context, in ports.UpdateUserInput) (string, error)
	deleteFn func(ctx context.Context, id string) (string, error)
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (string, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) UpdateUser(ctx context.Context, in ports.UpdateUserInput) (string, error) {
	return s.updateFn(ctx, in)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id string) (string, error) {
	return s.deleteFn(ctx, id)
}

type stubNoteService struct {
	listFn   func(ctx context.Context) ([]ports.NoteView, error)
	createFn func(ctx context.Context, in ports.CreateNoteInput) (string, error)
	updateFn func(ctx context.Context, in ports.UpdateNoteInput) (string, error)
	deleteFn func(ctx context.Context, id string) (string, error)
}

func (s *stubNoteService) ListNotes(ctx context.Context) ([]ports.NoteView, error) {
	return s.listFn(ctx)
}

func (s *stubNoteService) CreateNote(ctx context.Context, in ports.CreateNoteInput) (string, error) {
	return s.createFn(ctx, in)
}

func (s *stubNoteService) UpdateNote(ctx context.Context, in ports.UpdateNoteInput) (string, error) {
	return s.updateFn(ctx, in)
}

func (s *stubNoteService) DeleteNote(ctx context.Context, id string) (string, error) {
	return s.deleteFn(ctx, id)
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertInvalid(t *testing.T, err error, msg string) {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) || !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if de.Message != msg {
		t.Fatalf("expected message %q, got %q", msg, de.Message)
	}
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp.Message
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func TestUserHandler_List_Success(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context) ([]domain.User, error) {
			return []domain.User{{ID: "1", Username: "alice", PasswordHash: "secret-hash", Roles: []string{"Employee"}, Active: true}}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/users", "")

	if err := NewUserHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password digest leaked: %s", rec.Body.String())
	}
}

func TestUserHandler_List_PropagatesError(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context) ([]domain.User, error) {
			return nil, domain.NoContent("No users found")
		},
	}
	c, _ := newContext(http.MethodGet, "/users", "")

	err := NewUserHandler(stub).List(c)
	if !errors.Is(err, domain.ErrNoContent) {
		t.Fatalf("expected NoContent, got %v", err)
	}
}

func TestUserHandler_Create_Success(t *testing.T) {
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (string, error) {
			if in.Username != "Alice" || in.Password != "pw" || len(in.Roles) != 1 || in.Roles[0] != "Manager" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return "New user Alice created", nil
		},
	}
	c, rec := newContext(http.MethodPost, "/users", `{"username":"Alice","password":"pw","roles":["Manager"]}`)

	if err := NewUserHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "New user Alice created" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUserHandler_Create_MissingPassword(t *testing.T) {
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (string, error) {
			t.Fatalf("service must not be called")
			return "", nil
		},
	}
	c, _ := newContext(http.MethodPost, "/users", `{"username":"alice"}`)

	assertInvalid(t, NewUserHandler(stub).Create(c), "All fields are required")
}

func TestUserHandler_Create_MalformedBody(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/users", `{"username":`)

	assertInvalid(t, NewUserHandler(&stubUserService{}).Create(c), "Invalid request body")
}

func TestUserHandler_Update_AcceptsActiveFalse(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, in ports.UpdateUserInput) (string, error) {
			if in.Active == nil || *in.Active {
				t.Fatalf("expected active=false, got %v", in.Active)
			}
			return "alice updated", nil
		},
	}
	c, rec := newContext(http.MethodPatch, "/users", `{"id":"1","username":"alice","roles":["Employee"],"active":false}`)

	if err := NewUserHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if msg := decodeMessage(t, rec); msg != "alice updated" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUserHandler_Update_Validation(t *testing.T) {
	bodies := []string{
		`{"id":"1","username":"alice","roles":["Employee"]}`,
		`{"id":"1","username":"alice","roles":[],"active":true}`,
		`{"id":"1","username":"alice","active":true}`,
		`{"username":"alice","roles":["Employee"],"active":true}`,
		`{"id":"1","username":"alice","roles":[""],"active":true}`,
	}
	for _, body := range bodies {
		c, _ := newContext(http.MethodPatch, "/users", body)
		assertInvalid(t, NewUserHandler(&stubUserService{}).Update(c), "All fields are required")
	}
}

func TestUserHandler_Delete_ReadsIDFromBody(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id string) (string, error) {
			if id != "abc" {
				t.Fatalf("unexpected id %q", id)
			}
			return "User alice with ID abc deleted", nil
		},
	}
	c, rec := newContext(http.MethodDelete, "/users", `{"id":"abc"}`)

	if err := NewUserHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Delete_PropagatesConflict(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id string) (string, error) {
			return "", domain.Conflict("User has assigned notes")
		},
	}
	c, _ := newContext(http.MethodDelete, "/users", `{"id":"abc"}`)

	if err := NewUserHandler(stub).Delete(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Notes
// ---------------------------------------------------------------------------

func TestNoteHandler_List_IncludesUsername(t *testing.T) {
	stub := &stubNoteService{
		listFn: func(ctx context.Context) ([]ports.NoteView, error) {
			return []ports.NoteView{{Note: domain.Note{ID: "n1", User: "u1", Title: "t", Text: "x"}, Username: "alice"}}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/notes", "")

	if err := NewNoteHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var notes []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &notes); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(notes) != 1 || notes[0]["username"] != "alice" || notes[0]["title"] != "t" {
		t.Fatalf("unexpected payload: %v", notes)
	}
}

func TestNoteHandler_Create_Success(t *testing.T) {
	stub := &stubNoteService{
		createFn: func(ctx context.Context, in ports.CreateNoteInput) (string, error) {
			if in.User != "u1" || in.Title != "t" || in.Text != "x" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return "New note created", nil
		},
	}
	c, rec := newContext(http.MethodPost, "/notes", `{"user":"u1","title":"t","text":"x"}`)

	if err := NewNoteHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestNoteHandler_Create_MissingText(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/notes", `{"user":"u1","title":"t"}`)

	assertInvalid(t, NewNoteHandler(&stubNoteService{}).Create(c), "All fields are required")
}

func TestNoteHandler_Update_RequiresCompleted(t *testing.T) {
	c, _ := newContext(http.MethodPatch, "/notes", `{"id":"n1","user":"u1","title":"t","text":"x"}`)

	assertInvalid(t, NewNoteHandler(&stubNoteService{}).Update(c), "All fields are required")
}

func TestNoteHandler_Update_AcceptsCompletedFalse(t *testing.T) {
	stub := &stubNoteService{
		updateFn: func(ctx context.Context, in ports.UpdateNoteInput) (string, error) {
			if in.Completed == nil || *in.Completed {
				t.Fatalf("expected completed=false, got %v", in.Completed)
			}
			return "t updated", nil
		},
	}
	c, rec := newContext(http.MethodPatch, "/notes", `{"id":"n1","user":"u1","title":"t","text":"x","completed":false}`)

	if err := NewNoteHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if msg := decodeMessage(t, rec); msg != "t updated" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestNoteHandler_Delete_EmptyIDReachesService(t *testing.T) {
	called := false
	stub := &stubNoteService{
		deleteFn: func(ctx context.Context, id string) (string, error) {
			called = true
			return "", domain.InvalidInput("Note ID required")
		},
	}
	c, _ := newContext(http.MethodDelete, "/notes", `{}`)

	assertInvalid(t, NewNoteHandler(stub).Delete(c), "Note ID required")
	if !called {
		t.Fatalf("service not called")
	}
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health", "")

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthDependenciesHandler_DisabledDependencies(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health/ready", "")

	if err := NewHealthDependenciesHandler(nil, nil).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dependencies["mongodb"].Status != statusDisabled || resp.Dependencies["redis"].Status != statusDisabled {
		t.Fatalf("unexpected dependencies: %+v", resp.Dependencies)
	}
}
