package appstate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// SessionEvent identifies why the backend fired a session notification
type SessionEvent = string

const (
	// SessionSignedIn follows a successful credential sign in
	SessionSignedIn SessionEvent = "signed-in"
	// SessionSignedOut follows an explicit sign out or session invalidation
	SessionSignedOut SessionEvent = "signed-out"
	// SessionTokenRefreshed follows a token refresh for the same user
	SessionTokenRefreshed SessionEvent = "token-refreshed"
)

// Subscription is a long-lived registration with the backend's
// session-change stream. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Client is the backend the Synchronizer composes with: session retrieval,
// a session-change notification stream, credential operations, and the
// table reads/writes this module exposes. Session persistence, token
// refresh, and password hashing are owned by the implementation.
type Client interface {
	CurrentSession(ctx context.Context) (*Session, error)
	OnSessionChange(fn func(event SessionEvent, session *Session)) Subscription

	SignUp(ctx context.Context, email, password string, metadata map[string]any) error
	SignInWithPassword(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email, redirectURL string) error

	FetchProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) error

	ListDonations(ctx context.Context, userID uuid.UUID) ([]*Donation, error)
	InsertDonation(ctx context.Context, donation *Donation) error

	ListVolunteerApplications(ctx context.Context, userID uuid.UUID) ([]*VolunteerApplication, error)
	InsertVolunteerApplication(ctx context.Context, application *VolunteerApplication) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] APPSTATE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] APPSTATE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] APPSTATE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] APPSTATE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
