// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
)

// DestinationAuthorizationResponse represents one destination row of an
// authorization version in API responses.
type DestinationAuthorizationResponse struct {
	DestinationID   int64      `json:"destination_id"`
	DestinationName string     `json:"destination_name"`
	BeamMode        string     `json:"beam_mode"`
	CWLimit         *float64   `json:"cw_limit,omitempty"`
	ExpirationDate  *time.Time `json:"expiration_date,omitempty"`
	Comments        *string    `json:"comments,omitempty"`
}

// AuthorizationResponse represents an authorization version in API responses.
type AuthorizationResponse struct {
	ID           int64                              `json:"id"`
	CreatedAt    time.Time                          `json:"created_at"`
	Destinations []DestinationAuthorizationResponse `json:"destinations"`
}

// BeamDestinationResponse represents a beam destination in API responses.
type BeamDestinationResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ListBeamDestinationsResponse wraps a beam destination list.
type ListBeamDestinationsResponse struct {
	Destinations []BeamDestinationResponse `json:"destinations"`
}

// MapAuthorizationToResponse converts an authorization version to an API response.
func MapAuthorizationToResponse(authorization *authDomain.Authorization) AuthorizationResponse {
	response := AuthorizationResponse{
		ID:           authorization.ID,
		CreatedAt:    authorization.CreatedAt,
		Destinations: make([]DestinationAuthorizationResponse, 0, len(authorization.Destinations)),
	}

	for _, dest := range authorization.Destinations {
		response.Destinations = append(response.Destinations, DestinationAuthorizationResponse{
			DestinationID:   dest.DestinationID,
			DestinationName: dest.DestinationName,
			BeamMode:        dest.BeamMode,
			CWLimit:         dest.CWLimit,
			ExpirationDate:  dest.ExpirationDate,
			Comments:        dest.Comments,
		})
	}

	return response
}

// MapDestinationsToListResponse converts beam destinations to an API response.
func MapDestinationsToListResponse(
	destinations []*authDomain.BeamDestination,
) ListBeamDestinationsResponse {
	response := ListBeamDestinationsResponse{
		Destinations: make([]BeamDestinationResponse, 0, len(destinations)),
	}

	for _, dest := range destinations {
		response.Destinations = append(response.Destinations, BeamDestinationResponse{
			ID:     dest.ID,
			Name:   dest.Name,
			Active: dest.Active,
		})
	}

	return response
}
