package lists

import (
	"context"
	"errors"
	"testing"

	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

type tripleKey struct {
	userID string
	gameID int64
	kind   models.ListKind
}

type inMemoryMembershipStore struct {
	rows map[tripleKey]models.ListMembership

	existsErr error
	insertErr error
	deleteErr error
}

func newInMemoryMembershipStore() *inMemoryMembershipStore {
	return &inMemoryMembershipStore{rows: make(map[tripleKey]models.ListMembership)}
}

func (s *inMemoryMembershipStore) Exists(_ context.Context, userID string, gameID int64, kind models.ListKind) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.rows[tripleKey{userID, gameID, kind}]
	return ok, nil
}

func (s *inMemoryMembershipStore) Insert(_ context.Context, m models.ListMembership) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	key := tripleKey{m.UserID, m.GameID, m.Kind}
	if _, ok := s.rows[key]; ok {
		return repositories.ErrConflict
	}
	s.rows[key] = m
	return nil
}

func (s *inMemoryMembershipStore) Delete(_ context.Context, userID string, gameID int64, kind models.ListKind) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	key := tripleKey{userID, gameID, kind}
	if _, ok := s.rows[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.rows, key)
	return nil
}

func (s *inMemoryMembershipStore) has(userID string, gameID int64, kind models.ListKind) bool {
	_, ok := s.rows[tripleKey{userID, gameID, kind}]
	return ok
}

func TestToggleTurnsMembershipOnAndOff(t *testing.T) {
	store := newInMemoryMembershipStore()
	coordinator := NewCoordinator(store, nil)
	ctx := context.Background()

	presence, err := coordinator.Toggle(ctx, "user-1", 42, models.ListWishlist)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if presence != Present {
		t.Fatalf("expected present got %v", presence)
	}
	if !store.has("user-1", 42, models.ListWishlist) {
		t.Fatal("expected wishlist row to exist")
	}

	presence, err = coordinator.Toggle(ctx, "user-1", 42, models.ListWishlist)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if presence != Absent {
		t.Fatalf("expected absent got %v", presence)
	}
	if store.has("user-1", 42, models.ListWishlist) {
		t.Fatal("expected wishlist row to be removed")
	}
}

func TestToggleCollectionSupersedesWishlist(t *testing.T) {
	store := newInMemoryMembershipStore()
	coordinator := NewCoordinator(store, nil)
	ctx := context.Background()

	if _, err := coordinator.Toggle(ctx, "user-1", 42, models.ListWishlist); err != nil {
		t.Fatalf("toggle wishlist: %v", err)
	}

	presence, err := coordinator.Toggle(ctx, "user-1", 42, models.ListCollection)
	if err != nil {
		t.Fatalf("toggle collection: %v", err)
	}
	if presence != Present {
		t.Fatalf("expected present got %v", presence)
	}
	if !store.has("user-1", 42, models.ListCollection) {
		t.Fatal("expected collection row")
	}
	if store.has("user-1", 42, models.ListWishlist) {
		t.Fatal("wishlist row should have been superseded")
	}
}

func TestTogglePlayedIsIndependent(t *testing.T) {
	store := newInMemoryMembershipStore()
	coordinator := NewCoordinator(store, nil)
	ctx := context.Background()

	for _, kind := range []models.ListKind{models.ListCollection, models.ListWishlist} {
		store.rows = map[tripleKey]models.ListMembership{
			{"user-1", 42, kind}: {UserID: "user-1", GameID: 42, Kind: kind},
		}

		if _, err := coordinator.Toggle(ctx, "user-1", 42, models.ListPlayed); err != nil {
			t.Fatalf("toggle played with %s present: %v", kind, err)
		}
		if !store.has("user-1", 42, kind) {
			t.Fatalf("%s row must survive a played toggle", kind)
		}
		if !store.has("user-1", 42, models.ListPlayed) {
			t.Fatal("expected played row")
		}
	}
}

// Collection and wishlist are never both present, whatever sequence of
// toggles runs.
func TestToggleExclusivityInvariant(t *testing.T) {
	store := newInMemoryMembershipStore()
	coordinator := NewCoordinator(store, nil)
	ctx := context.Background()

	sequence := []models.ListKind{
		models.ListWishlist,
		models.ListCollection,
		models.ListWishlist,
		models.ListCollection,
		models.ListPlayed,
		models.ListCollection,
		models.ListWishlist,
	}

	for i, kind := range sequence {
		if _, err := coordinator.Toggle(ctx, "user-1", 42, kind); err != nil {
			t.Fatalf("toggle %d (%s): %v", i, kind, err)
		}
		both := store.has("user-1", 42, models.ListCollection) && store.has("user-1", 42, models.ListWishlist)
		if both {
			t.Fatalf("after toggle %d (%s): collection and wishlist both present", i, kind)
		}
	}
}

// Two sequential toggles of the same triple return it to its original state.
func TestTogglePairingIsIdempotent(t *testing.T) {
	store := newInMemoryMembershipStore()
	coordinator := NewCoordinator(store, nil)
	ctx := context.Background()

	for _, kind := range []models.ListKind{models.ListCollection, models.ListWishlist, models.ListPlayed} {
		before := store.has("user-1", 7, kind)
		if _, err := coordinator.Toggle(ctx, "user-1", 7, kind); err != nil {
			t.Fatalf("first toggle %s: %v", kind, err)
		}
		if _, err := coordinator.Toggle(ctx, "user-1", 7, kind); err != nil {
			t.Fatalf("second toggle %s: %v", kind, err)
		}
		if store.has("user-1", 7, kind) != before {
			t.Fatalf("%s: presence changed after paired toggles", kind)
		}
	}
}

func TestToggleRequiresAuthentication(t *testing.T) {
	store := newInMemoryMembershipStore()
	coordinator := NewCoordinator(store, nil)

	if _, err := coordinator.Toggle(context.Background(), "", 42, models.ListWishlist); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated got %v", err)
	}
	if len(store.rows) != 0 {
		t.Fatal("no row may be written for an unauthenticated toggle")
	}
}

func TestToggleRejectsUnknownKind(t *testing.T) {
	coordinator := NewCoordinator(newInMemoryMembershipStore(), nil)

	if _, err := coordinator.Toggle(context.Background(), "user-1", 42, models.ListKind("favorites")); !errors.Is(err, ErrUnknownList) {
		t.Fatalf("expected ErrUnknownList got %v", err)
	}
}

func TestToggleConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("insert race", func(t *testing.T) {
		store := newInMemoryMembershipStore()
		store.insertErr = repositories.ErrConflict
		coordinator := NewCoordinator(store, nil)

		if _, err := coordinator.Toggle(ctx, "user-1", 42, models.ListPlayed); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict got %v", err)
		}
	})

	t.Run("delete race", func(t *testing.T) {
		store := newInMemoryMembershipStore()
		store.rows[tripleKey{"user-1", 42, models.ListPlayed}] = models.ListMembership{}
		store.deleteErr = repositories.ErrNotFound
		coordinator := NewCoordinator(store, nil)

		if _, err := coordinator.Toggle(ctx, "user-1", 42, models.ListPlayed); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict got %v", err)
		}
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		store := newInMemoryMembershipStore()
		store.existsErr = errors.New("connection reset")
		coordinator := NewCoordinator(store, nil)

		if _, err := coordinator.Toggle(ctx, "user-1", 42, models.ListPlayed); err == nil || errors.Is(err, ErrConflict) {
			t.Fatalf("expected wrapped storage error got %v", err)
		}
	})
}
