package domain

import "time"

// RegistrationKey is a single-use capability binding one unit to one public profile.
type RegistrationKey struct {
	Key        string
	Kind       UnitKind
	OccupantID int64
	UnitID     int64
	IsOwner    bool
	IsActive   bool
	CreatedAt  time.Time
}

// KeyScope selects which keys a listing returns.
type KeyScope string

const (
	KeyScopeActive KeyScope = "ACTIVE"
	KeyScopeAll    KeyScope = "ALL"
)
