package dto

import "github.com/condohub/property-service/internal/domain"

// IssueKeyRequest payload for POST /registration-keys/{kind}. Missing ids and
// emails are reported by the lookups themselves so the error order is stable;
// only the email length is bounded up front.
type IssueKeyRequest struct {
	Unit    int64  `json:"unit"`
	Company int64  `json:"company"`
	User    string `json:"user" validate:"max=254"`
	IsOwner *bool  `json:"is_owner"`
}

// RedeemKeyRequest payload for PATCH /public-profile/register-{kind}.
// User defaults to the caller.
type RedeemKeyRequest struct {
	Key  string `json:"key" validate:"required,max=100"`
	User *int64 `json:"user"`
}

// RegistrationKeyResponse mirrors a stored key.
type RegistrationKeyResponse struct {
	Key      string `json:"key"`
	User     int64  `json:"user"`
	Unit     int64  `json:"unit"`
	IsOwner  bool   `json:"is_owner"`
	IsActive bool   `json:"is_active"`
}

// NewRegistrationKeyResponse converts a domain key.
func NewRegistrationKeyResponse(key *domain.RegistrationKey) RegistrationKeyResponse {
	return RegistrationKeyResponse{
		Key:      key.Key,
		User:     key.OccupantID,
		Unit:     key.UnitID,
		IsOwner:  key.IsOwner,
		IsActive: key.IsActive,
	}
}
