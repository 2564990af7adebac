// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

// CreditedControlResponse represents a credited control in API responses.
type CreditedControlResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Weight            int    `json:"weight"`
	GroupID           int64  `json:"group_id,omitempty"`
	GroupName         string `json:"group_name,omitempty"`
	LeaderWorkgroupID int64  `json:"leader_workgroup_id,omitempty"`
}

// VerificationResponse represents a control verification in API responses.
type VerificationResponse struct {
	ID               int64                   `json:"id"`
	CreditedControl  CreditedControlResponse `json:"credited_control"`
	DestinationID    int64                   `json:"destination_id"`
	DestinationName  string                  `json:"destination_name"`
	Status           int                     `json:"status"`
	StatusLabel      string                  `json:"status_label"`
	VerificationDate *time.Time              `json:"verification_date,omitempty"`
	VerifiedBy       string                  `json:"verified_by,omitempty"`
	ExpirationDate   *time.Time              `json:"expiration_date,omitempty"`
	Comments         *string                 `json:"comments,omitempty"`
	ModifiedBy       string                  `json:"modified_by"`
	ModifiedDate     time.Time               `json:"modified_date"`
}

// VerificationHistoryResponse represents one audit row in API responses.
type VerificationHistoryResponse struct {
	ID               int64      `json:"id"`
	Status           int        `json:"status"`
	StatusLabel      string     `json:"status_label"`
	VerificationDate *time.Time `json:"verification_date,omitempty"`
	VerifiedBy       string     `json:"verified_by,omitempty"`
	ExpirationDate   *time.Time `json:"expiration_date,omitempty"`
	Comments         *string    `json:"comments,omitempty"`
	ModifiedBy       string     `json:"modified_by"`
	ModifiedDate     time.Time  `json:"modified_date"`
}

// ListVerificationsResponse wraps a verification list.
type ListVerificationsResponse struct {
	Verifications []VerificationResponse `json:"verifications"`
}

// ListHistoryResponse wraps an audit row list.
type ListHistoryResponse struct {
	History []VerificationHistoryResponse `json:"history"`
}

// ListControlsResponse wraps a credited control list.
type ListControlsResponse struct {
	Controls []CreditedControlResponse `json:"controls"`
}

// MapControlToResponse converts a domain credited control to an API response.
func MapControlToResponse(control *verificationDomain.CreditedControl) CreditedControlResponse {
	response := CreditedControlResponse{
		ID:     control.ID,
		Name:   control.Name,
		Weight: control.Weight,
	}

	if control.Group != nil {
		response.GroupID = control.Group.ID
		response.GroupName = control.Group.Name
		response.LeaderWorkgroupID = control.Group.LeaderWorkgroupID
	}

	return response
}

// MapVerificationToResponse converts a domain verification to an API response.
func MapVerificationToResponse(
	verification *verificationDomain.ControlVerification,
) VerificationResponse {
	response := VerificationResponse{
		ID:               verification.ID,
		DestinationID:    verification.DestinationID,
		DestinationName:  verification.DestinationName,
		Status:           int(verification.Status),
		StatusLabel:      verification.Status.String(),
		VerificationDate: verification.VerificationDate,
		ExpirationDate:   verification.ExpirationDate,
		Comments:         verification.Comments,
		ModifiedBy:       verification.ModifiedBy.Username,
		ModifiedDate:     verification.ModifiedDate,
	}

	if verification.CreditedControl != nil {
		response.CreditedControl = MapControlToResponse(verification.CreditedControl)
	}

	if verification.VerifiedBy != nil {
		response.VerifiedBy = verification.VerifiedBy.Username
	}

	return response
}

// MapVerificationsToListResponse converts a verification list to an API response.
func MapVerificationsToListResponse(
	verifications []*verificationDomain.ControlVerification,
) ListVerificationsResponse {
	response := ListVerificationsResponse{
		Verifications: make([]VerificationResponse, 0, len(verifications)),
	}

	for _, verification := range verifications {
		response.Verifications = append(response.Verifications, MapVerificationToResponse(verification))
	}

	return response
}

// MapHistoryToListResponse converts audit rows to an API response.
func MapHistoryToListResponse(
	history []*verificationDomain.VerificationHistory,
) ListHistoryResponse {
	response := ListHistoryResponse{
		History: make([]VerificationHistoryResponse, 0, len(history)),
	}

	for _, row := range history {
		item := VerificationHistoryResponse{
			ID:               row.ID,
			Status:           int(row.Status),
			StatusLabel:      row.Status.String(),
			VerificationDate: row.VerificationDate,
			ExpirationDate:   row.ExpirationDate,
			Comments:         row.Comments,
			ModifiedBy:       row.ModifiedBy.Username,
			ModifiedDate:     row.ModifiedDate,
		}

		if row.VerifiedBy != nil {
			item.VerifiedBy = row.VerifiedBy.Username
		}

		response.History = append(response.History, item)
	}

	return response
}

// MapControlsToListResponse converts credited controls to an API response.
func MapControlsToListResponse(
	controls []*verificationDomain.CreditedControl,
) ListControlsResponse {
	response := ListControlsResponse{
		Controls: make([]CreditedControlResponse, 0, len(controls)),
	}

	for _, control := range controls {
		response.Controls = append(response.Controls, MapControlToResponse(control))
	}

	return response
}
