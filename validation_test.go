package appstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstate "github.com/esperanza-dev/go-appstate"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "already e164", input: "+16502530000", expected: "+16502530000"},
		{name: "national digits get default region", input: "6502530000", expected: "+16502530000"},
		{name: "formatted national", input: "(650) 253-0000", expected: "+16502530000"},
		{name: "international keeps its region", input: "+442071838750", expected: "+442071838750"},
		{name: "too short", input: "12", wantErr: true},
		{name: "letters", input: "not-a-number", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			normalized, err := appstate.NormalizePhone(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, appstate.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, normalized)
		})
	}
}

func TestSignUpPayloadValidate(t *testing.T) {
	valid := appstate.SignUpPayload{
		Email:    "pepe.rone@example.com",
		Password: "s3cret-password",
		FullName: "Pepe Rone",
	}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.FullName = ""
	assert.NoError(t, noName.Validate())

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.Error(t, badEmail.Validate())

	shortPassword := valid
	shortPassword.Password = "short"
	assert.Error(t, shortPassword.Validate())

	empty := appstate.SignUpPayload{}
	assert.Error(t, empty.Validate())
}

func TestDonationPayloadValidate(t *testing.T) {
	valid := appstate.DonationPayload{
		Amount:        2500,
		Currency:      "USD",
		DonationType:  "one-time",
		Program:       "education",
		PaymentMethod: "card",
		Status:        appstate.DonationPending,
		Message:       "keep it up",
	}
	assert.NoError(t, valid.Validate())

	zeroAmount := valid
	zeroAmount.Amount = 0
	assert.Error(t, zeroAmount.Validate())

	badCurrency := valid
	badCurrency.Currency = "US"
	assert.Error(t, badCurrency.Validate())

	badStatus := valid
	badStatus.Status = "archived"
	assert.Error(t, badStatus.Validate())

	noProgram := valid
	noProgram.Program = ""
	assert.Error(t, noProgram.Validate())
}

func TestVolunteerApplicationPayloadValidate(t *testing.T) {
	valid := appstate.VolunteerApplicationPayload{
		FirstName:     "Pepe",
		LastName:      "Rone",
		Email:         "pepe.rone@example.com",
		Phone:         "+16502530000",
		Country:       "PT",
		PreferredRole: "mentor",
		Availability:  "weekends",
		Experience:    "two years tutoring",
		Motivation:    "give back to the community",
	}
	assert.NoError(t, valid.Validate())

	optionalEmpty := valid
	optionalEmpty.Phone = ""
	optionalEmpty.Country = ""
	optionalEmpty.Experience = ""
	assert.NoError(t, optionalEmpty.Validate())

	badEmail := valid
	badEmail.Email = "nope"
	assert.Error(t, badEmail.Validate())

	noMotivation := valid
	noMotivation.Motivation = ""
	assert.Error(t, noMotivation.Validate())
}
