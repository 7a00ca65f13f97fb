package models

import "time"

// Roles assignable to a profile.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile is the application-level user record backing an authenticated session.
type Profile struct {
	ID        string
	Email     string
	Username  string
	FirstName string
	LastName  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName renders the profile's human-readable name.
func (p Profile) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Account couples a profile with its credential state. Only the auth service
// handles accounts; every other component sees the Profile alone.
type Account struct {
	Profile
	PasswordHash string
	ConfirmedAt  *time.Time
}

// Game is one board game in the shared catalog.
type Game struct {
	ID           int64
	Name         string
	Description  string
	MinPlayers   int
	MaxPlayers   int
	PlayingTime  int
	ThumbnailURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListKind names one of the per-user game lists.
type ListKind string

const (
	ListCollection ListKind = "collection"
	ListWishlist   ListKind = "wishlist"
	ListPlayed     ListKind = "played"
)

// Valid reports whether the kind is one of the three known lists.
func (k ListKind) Valid() bool {
	switch k {
	case ListCollection, ListWishlist, ListPlayed:
		return true
	}
	return false
}

// ListMembership records that a game belongs to one of a user's lists.
// At most one row exists per (user, game, kind).
type ListMembership struct {
	UserID    string
	GameID    int64
	Kind      ListKind
	CreatedAt time.Time
}

// Reviewer carries the public profile fields shown next to an evaluation.
type Reviewer struct {
	Username  string
	FirstName string
	LastName  string
}

// Evaluation is a user's rating and optional comment for one game. At most
// one evaluation exists per (user, game); resubmitting replaces it.
type Evaluation struct {
	ID        int64
	UserID    string
	GameID    int64
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Reviewer is populated on reads that join the author's profile.
	Reviewer Reviewer
}

// GameRating pairs one evaluation's rating with the game it scored. Rows in
// this shape feed the leaderboard computation.
type GameRating struct {
	Game   Game
	Rating int
}

// Session is a live credential pair issued to an authenticated user.
type Session struct {
	UserID           string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
