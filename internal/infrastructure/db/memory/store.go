// Package memory provides in-process repositories with the same uniqueness
// rules as the MongoDB collections. It backs local development
// (STORAGE_DRIVER=memory) and the package tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotes/notes-api/internal/core/domain"
)

// Store holds both collections behind a single lock.
type Store struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	notes map[string]*domain.Note
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*domain.User),
		notes: make(map[string]*domain.Note),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Users returns a UserRepository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Notes returns a NoteRepository view of the store.
func (s *Store) Notes() *NoteRepository { return &NoteRepository{s: s} }

// Transactor runs functions directly. Every repository call is atomic on its
// own but a multi-call function is not isolated from concurrent writers.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newID() string { return primitive.NewObjectID().Hex() }

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func cloneNote(n *domain.Note) *domain.Note {
	clone := *n
	return &clone
}

// byCreation orders IDs by insertion time so listings are stable.
func byCreation[T any](m map[string]T, created func(T) time.Time) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := created(m[ids[i]]), created(m[ids[j]])
		if ci.Equal(cj) {
			return ids[i] < ids[j]
		}
		return ci.Before(cj)
	})
	return ids
}
