package appstate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is the backend-issued proof of an authenticated user. Expiry and
// refresh mechanics are fully owned by the backend; the Synchronizer holds
// a read-only cached copy.
type Session struct {
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenType    string     `json:"token_type,omitempty"`
	IssuedAt     *time.Time `json:"issued_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	User         *User      `json:"user,omitempty"`
}

// GetUserID returns the owning user id, or "" for an anonymous session
func (s *Session) GetUserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID.String()
}

// GetUserUUID parses the owning user id
func (s *Session) GetUserUUID() (uuid.UUID, error) {
	if s == nil || s.User == nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	return s.User.ID, nil
}

// Expired reports whether the access token expired before now
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	return s.ExpiresAt.Before(now)
}

// Clone returns a shallow copy; the embedded user is shared
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func (s Session) String() string {
	expiresAt := "<nil>"
	if s.ExpiresAt != nil {
		expiresAt = s.ExpiresAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s type=%s exp=%s",
		s.GetUserID(),
		s.TokenType,
		expiresAt,
	)
}
