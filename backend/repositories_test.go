package backend

import (
	"context"
	"database/sql"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	appstate "github.com/esperanza-dev/go-appstate"
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	require.NoError(t, Setup(context.Background(), bunDB))

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	return bunDB
}

func TestProfilesRepositoryGetByID(t *testing.T) {
	db := setupDB(t)
	repo := NewProfilesRepository(db)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, repo.Create(ctx, &appstate.Profile{
		ID:       id,
		Email:    "pepe.rone@example.com",
		FullName: "Pepe Rone",
	}))

	profile, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pepe Rone", profile.FullName)
	assert.NotNil(t, profile.CreatedAt)

	_, err = repo.GetByID(ctx, uuid.New())
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, goerrors.CategoryNotFound, rich.Category)
}

func TestProfilesRepositoryUpdatePatchesSetFields(t *testing.T) {
	db := setupDB(t)
	repo := NewProfilesRepository(db)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, repo.Create(ctx, &appstate.Profile{
		ID:       id,
		Email:    "pepe.rone@example.com",
		FullName: "Pepe Rone",
		Country:  "PT",
		Phone:    "+16502530000",
	}))

	country := "ES"
	now := time.Now()
	require.NoError(t, repo.Update(ctx, id, appstate.ProfilePatch{Country: &country, UpdatedAt: &now}))

	profile, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ES", profile.Country)
	assert.Equal(t, "Pepe Rone", profile.FullName)
	assert.Equal(t, "+16502530000", profile.Phone)
}

func TestProfilesRepositoryUpdateMissingRow(t *testing.T) {
	db := setupDB(t)
	repo := NewProfilesRepository(db)

	country := "ES"
	err := repo.Update(context.Background(), uuid.New(), appstate.ProfilePatch{Country: &country})
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, goerrors.CategoryNotFound, rich.Category)

	// an empty patch is a no-op even for missing rows
	assert.NoError(t, repo.Update(context.Background(), uuid.New(), appstate.ProfilePatch{}))
}

func TestDonationsRepositoryInsertAssignsDefaults(t *testing.T) {
	db := setupDB(t)
	repo := NewDonationsRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	donation := &appstate.Donation{
		UserID:        &userID,
		Amount:        2500,
		Currency:      "USD",
		DonationType:  "one-time",
		Program:       "education",
		PaymentMethod: "card",
	}
	require.NoError(t, repo.Insert(ctx, donation))

	assert.NotEqual(t, uuid.Nil, donation.ID)
	assert.Equal(t, appstate.DonationPending, donation.Status)
	assert.NotNil(t, donation.CreatedAt)
}

func TestDonationsRepositoryListByUser(t *testing.T) {
	db := setupDB(t)
	repo := NewDonationsRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	stranger := uuid.New()

	insert := func(userID uuid.UUID, amount int64, createdAt time.Time) {
		donation := &appstate.Donation{
			ID:            uuid.New(),
			UserID:        &userID,
			Amount:        amount,
			Currency:      "USD",
			DonationType:  "one-time",
			Program:       "education",
			PaymentMethod: "card",
			Status:        appstate.DonationCompleted,
			CreatedAt:     &createdAt,
		}
		_, err := db.NewInsert().Model(donation).Exec(ctx)
		require.NoError(t, err)
	}

	base := time.Now().Add(-time.Hour)
	insert(owner, 1000, base)
	insert(owner, 2000, base.Add(10*time.Minute))
	insert(owner, 3000, base.Add(20*time.Minute))
	insert(stranger, 9000, base.Add(30*time.Minute))

	donations, err := repo.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, donations, 3)
	assert.Equal(t, int64(3000), donations[0].Amount)
	assert.Equal(t, int64(2000), donations[1].Amount)
	assert.Equal(t, int64(1000), donations[2].Amount)

	empty, err := repo.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestApplicationsRepositoryInsertForcesPending(t *testing.T) {
	db := setupDB(t)
	repo := NewApplicationsRepository(db)
	ctx := context.Background()

	application := &appstate.VolunteerApplication{
		FirstName:     "Pepe",
		LastName:      "Rone",
		Email:         "pepe.rone@example.com",
		PreferredRole: "mentor",
		Availability:  "weekends",
		Motivation:    "give back to the community",
		Status:        appstate.ApplicationApproved,
	}
	require.NoError(t, repo.Insert(ctx, application))

	assert.NotEqual(t, uuid.Nil, application.ID)
	assert.Equal(t, appstate.ApplicationPending, application.Status)
	assert.NotNil(t, application.CreatedAt)
	assert.NotNil(t, application.UpdatedAt)
}

func TestApplicationsRepositoryListByUser(t *testing.T) {
	db := setupDB(t)
	repo := NewApplicationsRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	application := &appstate.VolunteerApplication{
		UserID:        &owner,
		FirstName:     "Pepe",
		LastName:      "Rone",
		Email:         "pepe.rone@example.com",
		PreferredRole: "mentor",
		Availability:  "weekends",
		Motivation:    "give back to the community",
	}
	require.NoError(t, repo.Insert(ctx, application))

	applications, err := repo.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.Equal(t, "Pepe", applications[0].FirstName)

	empty, err := repo.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
