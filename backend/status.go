package backend

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/esperanza-dev/go-appstate"
)

const (
	textCodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	textCodeTerminalStatus    = "TERMINAL_STATUS"
)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid status transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalStatus is returned when attempting to move away from a settled status.
var ErrTerminalStatus = goerrors.New("status is terminal", goerrors.CategoryConflict).
	WithTextCode(textCodeTerminalStatus).
	WithCode(goerrors.CodeConflict)

// statusMachine guards row status transitions. Rows start in the initial
// status and may only follow the declared edges; statuses with no outgoing
// edges are terminal.
type statusMachine struct {
	transitions map[string]map[string]struct{}
}

func (m statusMachine) check(from, to string) error {
	targets, ok := m.transitions[from]
	if !ok {
		return ErrTerminalStatus
	}
	if _, ok := targets[to]; !ok {
		return ErrInvalidTransition
	}
	return nil
}

var donationStatuses = statusMachine{
	transitions: map[string]map[string]struct{}{
		appstate.DonationPending: {
			appstate.DonationCompleted: {},
			appstate.DonationFailed:    {},
		},
	},
}

var applicationStatuses = statusMachine{
	transitions: map[string]map[string]struct{}{
		appstate.ApplicationPending: {
			appstate.ApplicationApproved: {},
			appstate.ApplicationRejected: {},
		},
	},
}

// SetStatus settles a donation's payment state. Only pending donations
// may change; completed and failed are terminal.
func (r *DonationsRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	donation := &appstate.Donation{}
	err := r.db.NewSelect().
		Model(donation).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "donation not found").
			WithMetadata(map[string]any{"donation_id": id.String()})
	}

	if err := donationStatuses.check(donation.Status, status); err != nil {
		return err
	}

	if _, err := r.db.NewUpdate().
		Model((*appstate.Donation)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update donation status")
	}

	return nil
}

// Review resolves a pending volunteer application. Approved and rejected
// are terminal.
func (r *ApplicationsRepository) Review(ctx context.Context, id uuid.UUID, status string) error {
	application := &appstate.VolunteerApplication{}
	err := r.db.NewSelect().
		Model(application).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "volunteer application not found").
			WithMetadata(map[string]any{"application_id": id.String()})
	}

	if err := applicationStatuses.check(application.Status, status); err != nil {
		return err
	}

	now := time.Now()
	if _, err := r.db.NewUpdate().
		Model((*appstate.VolunteerApplication)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update application status")
	}

	return nil
}
