// Package lists enforces the toggle and mutual-exclusion semantics of a
// user's per-game lists: collection, wishlist, and played.
package lists

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ludolist/backend/internal/logging"
	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

var (
	// ErrNotAuthenticated indicates a toggle was attempted without a current user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnknownList indicates the list kind is not one of collection, wishlist, played.
	ErrUnknownList = errors.New("unknown list kind")
	// ErrConflict indicates a concurrent toggle for the same (user, game, kind)
	// won the race. The operation had no effect; callers should re-query the
	// current state rather than retry blindly.
	ErrConflict = errors.New("concurrent list update")
)

// Presence is the membership state of a (user, game, kind) triple after a toggle.
type Presence string

const (
	Present Presence = "present"
	Absent  Presence = "absent"
)

// MembershipStore is the row-level access the coordinator drives.
type MembershipStore interface {
	Exists(ctx context.Context, userID string, gameID int64, kind models.ListKind) (bool, error)
	Insert(ctx context.Context, membership models.ListMembership) error
	Delete(ctx context.Context, userID string, gameID int64, kind models.ListKind) error
}

// Coordinator mediates all membership changes, maintaining the invariant that
// a game is never in collection and wishlist at the same time.
type Coordinator struct {
	store   MembershipStore
	logger  *slog.Logger
	nowFunc func() time.Time
}

// NewCoordinator constructs a Coordinator over the provided store.
func NewCoordinator(store MembershipStore, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:   store,
		logger:  logger,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Toggle flips the membership of (userID, gameID, kind) and returns the new
// presence. Adding to the collection removes the same game from the wishlist
// first: owning a game supersedes wanting it. Played is independent of both.
func (c *Coordinator) Toggle(ctx context.Context, userID string, gameID int64, kind models.ListKind) (Presence, error) {
	if userID == "" {
		return Absent, ErrNotAuthenticated
	}
	if !kind.Valid() {
		return Absent, fmt.Errorf("%w: %q", ErrUnknownList, kind)
	}

	ctx, span := logging.StartSpan(ctx, "lists.toggle")
	defer span.End()

	exists, err := c.store.Exists(ctx, userID, gameID, kind)
	if err != nil {
		return Absent, fmt.Errorf("check membership: %w", err)
	}

	if exists {
		if err := c.store.Delete(ctx, userID, gameID, kind); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				// Another client removed the row between our check and the
				// delete. The toggle is a no-op either way.
				return Absent, ErrConflict
			}
			return Absent, fmt.Errorf("remove membership: %w", err)
		}
		return Absent, nil
	}

	if kind == models.ListCollection {
		if err := c.store.Delete(ctx, userID, gameID, models.ListWishlist); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return Absent, fmt.Errorf("supersede wishlist: %w", err)
		}
	}

	err = c.store.Insert(ctx, models.ListMembership{
		UserID:    userID,
		GameID:    gameID,
		Kind:      kind,
		CreatedAt: c.nowFunc(),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			c.logger.Debug("membership insert lost a race", "userId", userID, "gameId", gameID, "kind", kind)
			return Absent, ErrConflict
		}
		return Absent, fmt.Errorf("insert membership: %w", err)
	}

	return Present, nil
}
