package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/esperanza-dev/go-appstate"
)

const (
	// ResetRequestedStatus is the requested status
	ResetRequestedStatus = "requested"
	// ResetExpiredStatus is the expired status
	ResetExpiredStatus = "expired"
	// ResetChangedStatus is the changed status
	ResetChangedStatus = "changed"
)

const (
	// TextCodeTokenUsed flags replayed reset tokens
	TextCodeTokenUsed = "TOKEN_ALREADY_USED"
	// TextCodeTokenExpired flags reset tokens past their window
	TextCodeTokenExpired = "TOKEN_EXPIRED"
)

// resetTokenTTL is how long a reset token stays redeemable
const resetTokenTTL = 24 * time.Hour

var resetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// PasswordReset tracks an outstanding reset-email request
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_reset,alias:pwdr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID     `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *appstate.User `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Status        string         `bun:"status,notnull" json:"status,omitempty"`
	Email         string         `bun:"email,notnull" json:"email,omitempty"`
	RedirectURL   string         `bun:"redirect_url" json:"redirect_url,omitempty"`
	ResetedAt     *time.Time     `bun:"reseted_at,nullzero" json:"reseted_at,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// MarkPasswordAsReseted will create a new instance
func MarkPasswordAsReseted(id uuid.UUID) *PasswordReset {
	r := &PasswordReset{}
	r.ID = id
	r.Status = ResetChangedStatus
	n := time.Now()
	r.ResetedAt = &n
	return r
}

// Mailer delivers password-reset notifications
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// printMailer writes the notification to stdout; real deployments swap in
// an SMTP or provider-backed Mailer.
type printMailer struct{}

func (printMailer) SendPasswordReset(_ context.Context, email, link string) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s\n", email)
	fmt.Printf("link: %s\n", link)
	return nil
}
