package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/testutil"
)

const sessionExpiry = 30 * 24 * time.Hour

type authFixture struct {
	auth     *AuthService
	invites  *InviteService
	sessions repository.SessionRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	sessions := repository.NewSessionRepository(database)
	return &authFixture{
		auth:     NewAuthService(repository.NewUserRepository(database), sessions, sessionExpiry, false),
		invites:  NewInviteService(repository.NewInviteCodeRepository(database), 7*24*time.Hour),
		sessions: sessions,
	}
}

func (f *authFixture) signUp(t *testing.T, email, username string) string {
	t.Helper()
	invite, err := f.invites.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	token, _, err := f.auth.SignUp(context.Background(), SignUpInput{
		Email: email, Username: username, Password: "correct horse", InviteCode: invite.Code,
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	return token
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	// 20 bytes is 160 bits, 32 base32 characters with no padding.
	if len(token) != 32 || strings.ContainsAny(token, "=ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		t.Errorf("token = %q", token)
	}
}

func TestAuthService_SignUpThenSignIn(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUp(t, "Alice@Example.com", "alice1")

	token, session, err := f.auth.SignIn(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if session.ID != sessionID(token) {
		t.Error("session id should be the hash of the token")
	}

	user, _, _, err := f.auth.ValidateSession(ctx, token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if user.Username != "alice1" || user.Email != "alice@example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestAuthService_SignInWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice@example.com", "alice1")

	_, _, err := f.auth.SignIn(context.Background(), "alice@example.com", "wrong password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
	_, _, err = f.auth.SignIn(context.Background(), "nobody@example.com", "whatever1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_SignUpRejects(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice@example.com", "alice1")
	invite, _ := f.invites.Create(ctx, nil)

	tests := []struct {
		name  string
		in    SignUpInput
		field string
	}{
		{"short username", SignUpInput{Email: "b@example.com", Username: "bob", Password: "password1", InviteCode: invite.Code}, "username"},
		{"short password", SignUpInput{Email: "b@example.com", Username: "bobby1", Password: "short", InviteCode: invite.Code}, "password"},
		{"missing invite", SignUpInput{Email: "b@example.com", Username: "bobby1", Password: "password1"}, "inviteCode"},
		{"unknown invite", SignUpInput{Email: "b@example.com", Username: "bobby1", Password: "password1", InviteCode: "nope"}, "inviteCode"},
		{"taken email", SignUpInput{Email: "alice@example.com", Username: "bobby1", Password: "password1", InviteCode: invite.Code}, "email"},
		{"taken username", SignUpInput{Email: "b@example.com", Username: "alice1", Password: "password1", InviteCode: invite.Code}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.auth.SignUp(ctx, tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if verr.Issues[0].Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Issues[0].Field, tt.field)
			}
		})
	}

	// The invite survived every failed attempt.
	_, _, err := f.auth.SignUp(ctx, SignUpInput{Email: "b@example.com", Username: "bobby1", Password: "password1", InviteCode: invite.Code})
	if err != nil {
		t.Errorf("invite should still be redeemable: %v", err)
	}
}

func TestAuthService_ExpiredSessionIsDeleted(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	token := f.signUp(t, "alice@example.com", "alice1")

	start := time.Now().UTC()
	f.auth.now = func() time.Time { return start.Add(sessionExpiry + time.Minute) }

	_, _, _, err := f.auth.ValidateSession(ctx, token)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
	_, err = f.sessions.ByID(ctx, sessionID(token))
	if !errors.Is(err, repository.ErrSessionNotFound) {
		t.Errorf("expired session should be deleted, got %v", err)
	}
}

func TestAuthService_SessionRenewal(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	token := f.signUp(t, "alice@example.com", "alice1")
	start := time.Now().UTC()

	f.auth.now = func() time.Time { return start.Add(24 * time.Hour) }
	_, _, renewed, err := f.auth.ValidateSession(ctx, token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if renewed {
		t.Error("fresh session should not be renewed")
	}

	later := start.Add(16 * 24 * time.Hour)
	f.auth.now = func() time.Time { return later }
	_, session, renewed, err := f.auth.ValidateSession(ctx, token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if !renewed {
		t.Fatal("session within 15 days of expiry should be renewed")
	}
	if !session.ExpiresAt.Equal(later.Add(sessionExpiry)) {
		t.Errorf("expires at = %v, want %v", session.ExpiresAt, later.Add(sessionExpiry))
	}

	stored, err := f.sessions.ByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if !stored.ExpiresAt.Equal(session.ExpiresAt) {
		t.Errorf("stored expiry = %v, want %v", stored.ExpiresAt, session.ExpiresAt)
	}
}

func TestAuthService_SignOut(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	token := f.signUp(t, "alice@example.com", "alice1")

	if err := f.auth.SignOut(ctx, token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	_, _, _, err := f.auth.ValidateSession(ctx, token)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
}

func TestAuthService_PruneSessions(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "alice@example.com", "alice1")
	f.signUp(t, "bob@example.com", "bobby1")

	f.auth.now = func() time.Time { return time.Now().UTC().Add(sessionExpiry + time.Hour) }
	n, err := f.auth.PruneSessions(context.Background())
	if err != nil {
		t.Fatalf("PruneSessions: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d, want 2", n)
	}
}

func TestAuthService_SessionCookie(t *testing.T) {
	f := newAuthFixture(t)
	rec := httptest.NewRecorder()

	f.auth.SetSessionCookie(rec, "tok", time.Now().Add(time.Hour))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].Value != "tok" || !cookies[0].HttpOnly {
		t.Errorf("cookies = %+v", cookies)
	}
}
