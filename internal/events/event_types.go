package events

import (
	"time"

	"github.com/condohub/property-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRegistrationKeyIssued      EventType = "registration_key_issued"
	EventUnitRegistered             EventType = "unit_registered"
	EventRegistrationKeyDeactivated EventType = "registration_key_deactivated"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID *int64      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services. Payloads never carry
// registration key tokens.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Kind      domain.UnitKind `json:"kind"`
	UnitID    int64           `json:"unit_id"`
	Actor     Actor           `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload"`
}

// RegistrationKeyIssuedPayload payload.
type RegistrationKeyIssuedPayload struct {
	CompanyID  int64 `json:"company_id"`
	OccupantID int64 `json:"occupant_id"`
	IsOwner    bool  `json:"is_owner"`
	Notified   bool  `json:"notified"`
}

// UnitRegisteredPayload payload.
type UnitRegisteredPayload struct {
	OccupantID int64 `json:"occupant_id"`
	IsOwner    bool  `json:"is_owner"`
}
