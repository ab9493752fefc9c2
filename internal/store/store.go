// Package store defines the room store contract: durable keyed storage of room
// aggregates with an optimistic conditional-update primitive and change
// notification. All cross-participant coordination goes through AtomicUpdate;
// the engine holds no locks of its own.
package store

import (
	"context"
	"errors"

	"github.com/ashwinrao/auction-arena/internal/domain"
)

var (
	// ErrNotFound means no room exists under the given code.
	ErrNotFound = errors.New("room not found")
	// ErrCodeTaken means Create was called with a code already in use.
	ErrCodeTaken = errors.New("room code already in use")
	// ErrTooMuchContention means an update lost the conditional-commit race more
	// times than the retry cap allows. Callers may retry the whole operation.
	ErrTooMuchContention = errors.New("too many concurrent updates, try again")
)

// MaxUpdateAttempts caps the optimistic retry loop before a conflict is
// surfaced as ErrTooMuchContention instead of retrying forever.
const MaxUpdateAttempts = 16

// UpdateFn computes the next room value from the latest committed one. Returning
// an error aborts the update with no write; the error reaches the caller as-is.
// The function may run several times if the commit loses a race, so it must be
// pure over its argument.
type UpdateFn func(room *domain.Room) (*domain.Room, error)

// RoomStore is the storage collaborator the auction core requires. Implementations
// must serialize conflicting AtomicUpdate commits so lost updates are impossible.
type RoomStore interface {
	// Get returns the latest committed snapshot, or ErrNotFound.
	Get(ctx context.Context, code string) (*domain.Room, error)

	// Create inserts a new room, rejecting duplicate codes with ErrCodeTaken.
	Create(ctx context.Context, room *domain.Room) error

	// AtomicUpdate applies fn to the latest value and commits only if the value
	// is unchanged since it was read, retrying on conflict up to
	// MaxUpdateAttempts. It returns the committed snapshot.
	AtomicUpdate(ctx context.Context, code string, fn UpdateFn) (*domain.Room, error)

	// Subscribe calls fn with the current value first and again after every
	// committed change until cancel is called. The registration snapshot is
	// ordered against commits, so a caller never sees it after a newer value.
	// Callbacks must not block or call back into the store.
	Subscribe(ctx context.Context, code string, fn func(*domain.Room)) (cancel func(), err error)

	// ListCodes returns the codes of every stored room.
	ListCodes(ctx context.Context) ([]string, error)
}
