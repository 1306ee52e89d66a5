package backend

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/esperanza-dev/go-appstate"
)

// ProfilesRepository stores the one-per-user profile rows
type ProfilesRepository struct {
	db *bun.DB
}

func NewProfilesRepository(db *bun.DB) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

func (r *ProfilesRepository) GetByID(ctx context.Context, id uuid.UUID) (*appstate.Profile, error) {
	profile := &appstate.Profile{}
	err := r.db.NewSelect().
		Model(profile).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerrors.New("profile not found", goerrors.CategoryNotFound).
				WithMetadata(map[string]any{"user_id": id.String()})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load profile")
	}

	return profile, nil
}

func (r *ProfilesRepository) Create(ctx context.Context, profile *appstate.Profile) error {
	return r.CreateTx(ctx, r.db, profile)
}

func (r *ProfilesRepository) CreateTx(ctx context.Context, tx bun.IDB, profile *appstate.Profile) error {
	now := time.Now()
	if profile.CreatedAt == nil {
		profile.CreatedAt = &now
	}
	if profile.UpdatedAt == nil {
		profile.UpdatedAt = &now
	}

	if _, err := tx.NewInsert().Model(profile).Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryConflict, "failed to create profile")
	}

	return nil
}

// Update applies the non-nil patch fields to the profile row for id
func (r *ProfilesRepository) Update(ctx context.Context, id uuid.UUID, patch appstate.ProfilePatch) error {
	if patch.IsZero() {
		return nil
	}

	q := r.db.NewUpdate().
		Model((*appstate.Profile)(nil)).
		Where("id = ?", id)

	if patch.FullName != nil {
		q = q.Set("full_name = ?", *patch.FullName)
	}
	if patch.Phone != nil {
		q = q.Set("phone = ?", *patch.Phone)
	}
	if patch.Country != nil {
		q = q.Set("country = ?", *patch.Country)
	}
	if patch.AvatarURL != nil {
		q = q.Set("avatar_url = ?", *patch.AvatarURL)
	}
	if patch.UpdatedAt != nil {
		q = q.Set("updated_at = ?", *patch.UpdatedAt)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return goerrors.New("profile not found", goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"user_id": id.String()})
	}

	return nil
}

// DonationsRepository stores donation rows. Inserts assign id, status
// default, and the creation timestamp.
type DonationsRepository struct {
	db *bun.DB
}

func NewDonationsRepository(db *bun.DB) *DonationsRepository {
	return &DonationsRepository{db: db}
}

func (r *DonationsRepository) Insert(ctx context.Context, donation *appstate.Donation) error {
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	if donation.Status == "" {
		donation.Status = appstate.DonationPending
	}
	now := time.Now()
	donation.CreatedAt = &now

	if _, err := r.db.NewInsert().Model(donation).Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert donation")
	}

	return nil
}

// ListByUser returns the user's donations, most recent first
func (r *DonationsRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*appstate.Donation, error) {
	var donations []*appstate.Donation
	err := r.db.NewSelect().
		Model(&donations).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*appstate.Donation{}, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list donations")
	}

	return donations, nil
}

// ApplicationsRepository stores volunteer application rows. Inserts
// always start in the pending status regardless of caller input.
type ApplicationsRepository struct {
	db *bun.DB
}

func NewApplicationsRepository(db *bun.DB) *ApplicationsRepository {
	return &ApplicationsRepository{db: db}
}

func (r *ApplicationsRepository) Insert(ctx context.Context, application *appstate.VolunteerApplication) error {
	if application.ID == uuid.Nil {
		application.ID = uuid.New()
	}
	application.Status = appstate.ApplicationPending
	now := time.Now()
	application.CreatedAt = &now
	application.UpdatedAt = &now

	if _, err := r.db.NewInsert().Model(application).Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert volunteer application")
	}

	return nil
}

// ListByUser returns the user's applications, most recent first
func (r *ApplicationsRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*appstate.VolunteerApplication, error) {
	var applications []*appstate.VolunteerApplication
	err := r.db.NewSelect().
		Model(&applications).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*appstate.VolunteerApplication{}, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list volunteer applications")
	}

	return applications, nil
}
