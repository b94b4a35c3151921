package ports

import "context"

// PasswordHasher is a one-way transform for user passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
}

// Transactor runs fn inside a single storage transaction when the backing
// store supports one. The ctx passed to fn must be used for every
// repository call that should join the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UsernameCache memoises user ID to username lookups for note listings.
type UsernameCache interface {
	GetMany(ctx context.Context, ids []string) (map[string]string, error)
	SetMany(ctx context.Context, usernames map[string]string) error
	Invalidate(ctx context.Context, id string) error
}
