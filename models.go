package appstate

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the backend-owned identity record
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	FullName      string         `bun:"full_name" json:"full_name,omitempty"`
	PasswordHash  string         `bun:"password_hash" json:"-"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// Profile supplements the identity record with user-owned metadata. One
// row per user, keyed by the user id, created implicitly on sign up and
// never deleted by this module.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	FullName      string     `bun:"full_name" json:"full_name,omitempty"`
	Phone         string     `bun:"phone" json:"phone,omitempty"`
	Country       string     `bun:"country" json:"country,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Clone returns a shallow copy safe to hand to state consumers
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// ProfilePatch carries the caller-mutable profile columns. Nil fields are
// left untouched by UpdateProfile.
type ProfilePatch struct {
	FullName  *string    `json:"full_name,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Country   *string    `json:"country,omitempty"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Apply merges the patch into profile, overwriting only the fields the
// patch carries.
func (p ProfilePatch) Apply(profile *Profile) {
	if profile == nil {
		return
	}
	if p.FullName != nil {
		profile.FullName = *p.FullName
	}
	if p.Phone != nil {
		profile.Phone = *p.Phone
	}
	if p.Country != nil {
		profile.Country = *p.Country
	}
	if p.AvatarURL != nil {
		profile.AvatarURL = *p.AvatarURL
	}
	if p.UpdatedAt != nil {
		profile.UpdatedAt = p.UpdatedAt
	}
}

// IsZero reports whether the patch carries no fields
func (p ProfilePatch) IsZero() bool {
	return p.FullName == nil && p.Phone == nil && p.Country == nil &&
		p.AvatarURL == nil && p.UpdatedAt == nil
}

// DonationStatus is the payment state of a donation row
type DonationStatus = string

const (
	// DonationPending is the backend-side default
	DonationPending DonationStatus = "pending"
	// DonationCompleted marks settled payments
	DonationCompleted DonationStatus = "completed"
	// DonationFailed marks rejected payments
	DonationFailed DonationStatus = "failed"
)

// Donation is append-only from this module's perspective. A nil UserID
// records an anonymous (unauthenticated) donation.
type Donation struct {
	bun.BaseModel `bun:"table:donations,alias:don"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,nullzero,type:uuid" json:"user_id,omitempty"`
	Amount        int64      `bun:"amount,notnull" json:"amount,omitempty"`
	Currency      string     `bun:"currency,notnull" json:"currency,omitempty"`
	DonationType  string     `bun:"donation_type,notnull" json:"donation_type,omitempty"`
	Program       string     `bun:"program,notnull" json:"program,omitempty"`
	PaymentMethod string     `bun:"payment_method,notnull" json:"payment_method,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	Message       string     `bun:"message" json:"message,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ApplicationStatus is the review state of a volunteer application
type ApplicationStatus = string

const (
	// ApplicationPending is the backend-side default; clients never set status
	ApplicationPending ApplicationStatus = "pending"
	// ApplicationApproved marks accepted applications
	ApplicationApproved ApplicationStatus = "approved"
	// ApplicationRejected marks declined applications
	ApplicationRejected ApplicationStatus = "rejected"
)

// VolunteerApplication is insert-only from this module. Status, id, and
// timestamps are assigned by the backend, never by the caller.
type VolunteerApplication struct {
	bun.BaseModel `bun:"table:volunteer_applications,alias:vap"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,nullzero,type:uuid" json:"user_id,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	Phone         string     `bun:"phone" json:"phone,omitempty"`
	Country       string     `bun:"country" json:"country,omitempty"`
	PreferredRole string     `bun:"preferred_role,notnull" json:"preferred_role,omitempty"`
	Availability  string     `bun:"availability,notnull" json:"availability,omitempty"`
	Experience    string     `bun:"experience" json:"experience,omitempty"`
	Motivation    string     `bun:"motivation,notnull" json:"motivation,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
