// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/openaccel/beamauth/internal/validation"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
	verificationUseCase "github.com/openaccel/beamauth/internal/verification/usecase"
)

// ToggleVerificationRequest selects the (control, destination) pair to toggle.
type ToggleVerificationRequest struct {
	ControlID     int64 `json:"control_id"`
	DestinationID int64 `json:"destination_id"`
}

// Validate checks if the toggle request is valid.
func (r *ToggleVerificationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ControlID, validation.Required, validation.Min(1)),
		validation.Field(&r.DestinationID, validation.Required, validation.Min(1)),
	)
}

// EditVerificationsRequest applies one set of fields to a batch of
// verifications. Deeper validation (resolvable usernames, per-row permission)
// happens in the use case.
type EditVerificationsRequest struct {
	VerificationIDs  []int64    `json:"verification_ids"`
	Status           int        `json:"status"`
	VerificationDate *time.Time `json:"verification_date"`
	VerifiedBy       string     `json:"verified_by"`
	ExpirationDate   *time.Time `json:"expiration_date"`
	Comments         *string    `json:"comments"`
}

// Validate checks if the edit request is valid.
func (r *EditVerificationsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.VerificationIDs, validation.Required, validation.Length(1, 0)),
		validation.Field(&r.Status,
			validation.Required,
			customValidation.VerificationStatus{
				Allowed: []int{
					int(verificationDomain.StatusVerified),
					int(verificationDomain.StatusProvisional),
					int(verificationDomain.StatusNotVerified),
				},
			},
		),
		validation.Field(&r.VerificationDate, validation.Required),
		validation.Field(&r.VerifiedBy, validation.Required, customValidation.NotBlank),
		validation.Field(&r.ExpirationDate, customValidation.NotPast{}),
	)
}

// ToEditInput converts the request into the use case input.
func (r *EditVerificationsRequest) ToEditInput() *verificationUseCase.EditInput {
	return &verificationUseCase.EditInput{
		VerificationIDs:    r.VerificationIDs,
		Status:             verificationDomain.Status(r.Status),
		VerificationDate:   r.VerificationDate,
		VerifiedByUsername: r.VerifiedBy,
		ExpirationDate:     r.ExpirationDate,
		Comments:           r.Comments,
	}
}
