package appstate

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is assumed when a phone number has no country prefix
const defaultPhoneRegion = "US"

// NormalizePhone parses a phone number and returns its E.164 form. Numbers
// without a + prefix are interpreted in defaultPhoneRegion.
func NormalizePhone(number string) (string, error) {
	parsed, err := phonenumbers.Parse(number, defaultPhoneRegion)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "unparseable phone number").
			WithTextCode(TextCodeInvalidPayload)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", goerrors.New("invalid phone number", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidPayload).
			WithMetadata(map[string]any{"phone": number})
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// SignUpPayload is the credential registration payload
type SignUpPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Validate will run validation rules
func (p SignUpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&p.FullName, validation.Length(1, 200)),
	)
}

// DonationPayload carries the caller-suppliable donation columns. Owner
// id, row id, and the creation timestamp are assigned elsewhere.
type DonationPayload struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	DonationType  string `json:"donation_type"`
	Program       string `json:"program"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// Validate will validate the payload
func (p DonationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Amount, validation.Required, validation.Min(int64(1))),
		validation.Field(&p.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&p.DonationType, validation.Required, validation.Length(1, 50)),
		validation.Field(&p.Program, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.PaymentMethod, validation.Required, validation.Length(1, 50)),
		validation.Field(&p.Status, validation.In(DonationPending, DonationCompleted, DonationFailed)),
		validation.Field(&p.Message, validation.Length(0, 500)),
	)
}

func (p DonationPayload) toDonation(owner *User) *Donation {
	donation := &Donation{
		Amount:        p.Amount,
		Currency:      p.Currency,
		DonationType:  p.DonationType,
		Program:       p.Program,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		Message:       p.Message,
	}

	if owner != nil {
		id := owner.ID
		donation.UserID = &id
	}

	return donation
}

// VolunteerApplicationPayload carries the caller-suppliable application
// columns. Status, id, and timestamps are backend-assigned.
type VolunteerApplicationPayload struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Country       string `json:"country"`
	PreferredRole string `json:"preferred_role"`
	Availability  string `json:"availability"`
	Experience    string `json:"experience"`
	Motivation    string `json:"motivation"`
}

// Validate will validate the payload
func (p VolunteerApplicationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Country, validation.Length(2, 100)),
		validation.Field(&p.PreferredRole, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Availability, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Experience, validation.Length(0, 2000)),
		validation.Field(&p.Motivation, validation.Required, validation.Length(1, 2000)),
	)
}

func (p VolunteerApplicationPayload) toApplication(owner *User) *VolunteerApplication {
	application := &VolunteerApplication{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		Phone:         p.Phone,
		Country:       p.Country,
		PreferredRole: p.PreferredRole,
		Availability:  p.Availability,
		Experience:    p.Experience,
		Motivation:    p.Motivation,
	}

	if owner != nil {
		id := owner.ID
		application.UserID = &id
	}

	return application
}
