package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

const minPasswordLength = 6

// AccountStore captures the persistence operations the auth service needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) error
	FindAccountByEmail(ctx context.Context, email string) (models.Account, error)
	MarkConfirmed(ctx context.Context, userID string, at time.Time) error
}

// SignUpFields carries the profile attributes captured at registration.
type SignUpFields struct {
	FirstName string
	LastName  string
	Username  string
}

// SignUpResult distinguishes an immediately usable session from a registration
// that is pending email confirmation. Pending confirmation is a success, not
// an error; Session is nil in that case.
type SignUpResult struct {
	Session              *models.Session
	RequiresConfirmation bool
}

// SessionEvent is one entry in the auth service's session-change stream.
// Seq increases monotonically in emission order; a nil Session means the
// principal signed out or was revoked.
type SessionEvent struct {
	Seq     uint64
	Session *models.Session
}

// Options tunes the auth service.
type Options struct {
	RequireConfirmation bool
	LoginAttemptsPerMin int
	LoginBurst          int
	Logger              *slog.Logger
}

// Service implements credential authentication over an account store. It is
// the local stand-in for the hosted auth provider the mobile client talked to.
type Service struct {
	accounts AccountStore
	tokens   *TokenManager
	limiter  *loginLimiter
	logger   *slog.Logger

	requireConfirmation bool
	now                 func() time.Time

	mu     sync.Mutex
	seq    uint64
	events chan SessionEvent
}

// NewService constructs the auth service.
func NewService(accounts AccountStore, tokens *TokenManager, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:            accounts,
		tokens:              tokens,
		limiter:             newLoginLimiter(opts.LoginAttemptsPerMin, opts.LoginBurst),
		logger:              logger,
		requireConfirmation: opts.RequireConfirmation,
		now:                 func() time.Time { return time.Now().UTC() },
		events:              make(chan SessionEvent, 64),
	}
}

// SignIn verifies the email/password pair and issues a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	email = normalizeEmail(email)

	if !s.limiter.allow(email) {
		return models.Session{}, newError(KindRateLimited, "too many sign-in attempts")
	}

	account, err := s.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Session{}, newError(KindInvalidCredentials, "invalid email or password")
		}
		return models.Session{}, wrapError(KindUnknown, "look up account", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return models.Session{}, newError(KindInvalidCredentials, "invalid email or password")
	}

	if s.requireConfirmation && account.ConfirmedAt == nil {
		return models.Session{}, newError(KindUnconfirmed, "email address not confirmed")
	}

	session, err := s.tokens.Issue(ctx, account.ID)
	if err != nil {
		return models.Session{}, wrapError(KindUnknown, "issue session", err)
	}

	s.emit(&session)
	return session, nil
}

// SignUp registers a new account. When email confirmation is required the
// account is created without a session and the caller is told a confirmation
// step is pending.
func (s *Service) SignUp(ctx context.Context, email, password string, fields SignUpFields) (SignUpResult, error) {
	email = normalizeEmail(email)

	if _, err := mail.ParseAddress(email); err != nil {
		return SignUpResult{}, newError(KindInvalidEmail, "invalid email address")
	}
	if len(password) < minPasswordLength {
		return SignUpResult{}, newError(KindWeakPassword, "password must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return SignUpResult{}, wrapError(KindUnknown, "hash password", err)
	}

	username := strings.TrimSpace(fields.Username)
	if username == "" {
		username = fallbackUsername(fields.FirstName, email)
	}

	now := s.now()
	account := models.Account{
		Profile: models.Profile{
			ID:        uuid.NewString(),
			Email:     email,
			Username:  username,
			FirstName: fields.FirstName,
			LastName:  fields.LastName,
			Role:      models.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: string(hashed),
	}
	if !s.requireConfirmation {
		account.ConfirmedAt = &now
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return SignUpResult{}, newError(KindAlreadyRegistered, "account already exists")
		}
		return SignUpResult{}, wrapError(KindUnknown, "create account", err)
	}

	if s.requireConfirmation {
		return SignUpResult{RequiresConfirmation: true}, nil
	}

	session, err := s.tokens.Issue(ctx, account.ID)
	if err != nil {
		return SignUpResult{}, wrapError(KindUnknown, "issue session", err)
	}

	s.emit(&session)
	return SignUpResult{Session: &session}, nil
}

// SignOut revokes the refresh token and broadcasts the sign-out. The token
// may already be gone; that is not an error.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	s.tokens.Revoke(ctx, refreshToken)
	s.emit(nil)
	return nil
}

// Restore exchanges a persisted refresh token for a fresh session, typically
// at process start.
func (s *Service) Restore(ctx context.Context, refreshToken string) (models.Session, error) {
	session, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return models.Session{}, err
	}
	s.emit(&session)
	return session, nil
}

// ConfirmEmail marks the account for email as confirmed. Confirmation tokens
// are delivered out of band; this only flips the stored flag.
func (s *Service) ConfirmEmail(ctx context.Context, email string) error {
	account, err := s.accounts.FindAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if account.ConfirmedAt != nil {
		return nil
	}
	return s.accounts.MarkConfirmed(ctx, account.ID, s.now())
}

// Events exposes the session-change stream. It is intended for a single
// consumer; entries are delivered in emission order.
func (s *Service) Events() <-chan SessionEvent {
	return s.events
}

// emit appends a session-change event, assigning the next sequence number.
// When the buffer is full the oldest entry is discarded; under last-write-wins
// consumption only the newest event matters.
func (s *Service) emit(session *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	event := SessionEvent{Seq: s.seq, Session: session}
	for {
		select {
		case s.events <- event:
			return
		default:
			select {
			case dropped := <-s.events:
				s.logger.Warn("session event buffer full, dropping oldest", "seq", dropped.Seq)
			default:
			}
		}
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
