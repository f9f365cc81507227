package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours/internal/model"
	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

var ErrInvalidCredentials = errors.New("invalid email or password")

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type AuthService struct {
	userRepository    repository.UserRepository
	sessionRepository repository.SessionRepository
	sessionExpiry     time.Duration
	secureCookies     bool
	now               func() time.Time
}

func NewAuthService(
	userRepository repository.UserRepository,
	sessionRepository repository.SessionRepository,
	sessionExpiry time.Duration,
	secureCookies bool,
) *AuthService {
	return &AuthService{
		userRepository:    userRepository,
		sessionRepository: sessionRepository,
		sessionExpiry:     sessionExpiry,
		secureCookies:     secureCookies,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// SignIn checks the credentials and opens a session. It returns the cookie
// token; only its hash is stored.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return s.createSession(ctx, user.ID)
}

type SignUpInput struct {
	Email      string
	Username   string
	Password   string
	InviteCode string
}

// SignUp creates the account, redeems the invite code and opens a session.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (string, *model.Session, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	username := strings.TrimSpace(in.Username)
	code := strings.TrimSpace(in.InviteCode)

	v := &validator{}
	v.check("email", validation.ValidateEmail(email))
	v.check("username", validation.ValidateUsername(username))
	v.check("password", validation.ValidatePassword(in.Password))
	if code == "" {
		v.check("inviteCode", errors.New("invite code is required"))
	}
	if err := v.err(); err != nil {
		return "", nil, err
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	profile := &model.Profile{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      username,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.userRepository.CreateWithInvite(ctx, user, profile, code)
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return "", nil, invalid("email", "email is already registered")
	case errors.Is(err, repository.ErrDuplicateUsername):
		return "", nil, invalid("username", "username is taken")
	case errors.Is(err, repository.ErrInviteCodeInvalid):
		return "", nil, invalid("inviteCode", err.Error())
	case err != nil:
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user signed up", "user_id", user.ID)
	return s.createSession(ctx, user.ID)
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	err := s.sessionRepository.Delete(ctx, sessionID(token))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ValidateSession resolves a cookie token to its user. Expired sessions are
// deleted and rejected. A session within half its lifetime of expiring is
// pushed back out to the full expiry; renewed reports whether that happened
// so the caller can refresh the cookie.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*model.User, *model.Session, bool, error) {
	if token == "" {
		return nil, nil, false, ErrUnauthorized
	}

	session, err := s.sessionRepository.ByID(ctx, sessionID(token))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil, false, ErrUnauthorized
		}
		return nil, nil, false, fmt.Errorf("failed to get session: %w", err)
	}

	now := s.now()
	if session.IsExpired(now) {
		err = s.sessionRepository.Delete(ctx, session.ID)
		if err != nil {
			slog.Warn("failed to delete expired session", "error", err, "user_id", session.UserID)
		}
		return nil, nil, false, ErrUnauthorized
	}

	user, err := s.userRepository.ByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, false, ErrUnauthorized
		}
		return nil, nil, false, fmt.Errorf("failed to get user: %w", err)
	}

	renewed := false
	if !now.Before(session.ExpiresAt.Add(-s.sessionExpiry / 2)) {
		session.ExpiresAt = now.Add(s.sessionExpiry)
		err = s.sessionRepository.UpdateExpiry(ctx, session.ID, session.ExpiresAt)
		if err != nil {
			return nil, nil, false, fmt.Errorf("failed to renew session: %w", err)
		}
		renewed = true
	}

	return user, session, renewed, nil
}

// PruneSessions deletes every expired session.
func (s *AuthService) PruneSessions(ctx context.Context) (int64, error) {
	n, err := s.sessionRepository.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return n, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) createSession(ctx context.Context, userID string) (string, *model.Session, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:        sessionID(token),
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionExpiry),
		CreatedAt: now,
	}
	err = s.sessionRepository.Create(ctx, session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}
	return token, session, nil
}

// GenerateToken returns 20 random bytes as unpadded lowercase base32.
func GenerateToken() (string, error) {
	bytes := make([]byte, 20)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return strings.ToLower(tokenEncoding.EncodeToString(bytes)), nil
}

func sessionID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
