package backend

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstate "github.com/esperanza-dev/go-appstate"
)

func TestDonationSetStatus(t *testing.T) {
	db := setupDB(t)
	repo := NewDonationsRepository(db)
	ctx := context.Background()

	donation := &appstate.Donation{
		Amount:        2500,
		Currency:      "USD",
		DonationType:  "one-time",
		Program:       "education",
		PaymentMethod: "card",
	}
	require.NoError(t, repo.Insert(ctx, donation))

	require.NoError(t, repo.SetStatus(ctx, donation.ID, appstate.DonationCompleted))

	// completed is terminal
	err := repo.SetStatus(ctx, donation.ID, appstate.DonationFailed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTerminalStatus)
}

func TestDonationSetStatusRejectsUnknownTarget(t *testing.T) {
	db := setupDB(t)
	repo := NewDonationsRepository(db)
	ctx := context.Background()

	donation := &appstate.Donation{
		Amount:        1000,
		Currency:      "EUR",
		DonationType:  "monthly",
		Program:       "health",
		PaymentMethod: "transfer",
	}
	require.NoError(t, repo.Insert(ctx, donation))

	err := repo.SetStatus(ctx, donation.ID, "archived")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = repo.SetStatus(ctx, uuid.New(), appstate.DonationCompleted)
	require.Error(t, err)
}

func TestApplicationReview(t *testing.T) {
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
	}
	require.NoError(t, repo.Insert(ctx, application))

	require.NoError(t, repo.Review(ctx, application.ID, appstate.ApplicationApproved))

	// a decided application cannot flip
	err := repo.Review(ctx, application.ID, appstate.ApplicationRejected)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTerminalStatus)
}
