package domain

import (
	"fmt"
	"strings"
	"time"
)

// UnitKind enumerates the rentable unit families a property can hold.
type UnitKind string

const (
	UnitKindCondo   UnitKind = "condo"
	UnitKindParking UnitKind = "parking"
	UnitKindStorage UnitKind = "storage"
)

// UnitKinds lists every supported kind in display order.
var UnitKinds = []UnitKind{UnitKindCondo, UnitKindParking, UnitKindStorage}

// ParseUnitKind resolves the kind used in URLs and payloads.
func ParseUnitKind(raw string) (UnitKind, error) {
	kind := UnitKind(strings.ToLower(strings.TrimSpace(raw)))
	if kind.Valid() {
		return kind, nil
	}
	return "", fmt.Errorf("unknown unit kind %q", raw)
}

// Valid reports whether k is one of the supported kinds.
func (k UnitKind) Valid() bool {
	switch k {
	case UnitKindCondo, UnitKindParking, UnitKindStorage:
		return true
	}
	return false
}

func (k UnitKind) String() string {
	return string(k)
}

// Unit is a condo, parking or storage unit belonging to a property.
// Money is held in cents and Size in hundredths of a unit.
type Unit struct {
	ID                 int64
	Kind               UnitKind
	PropertyID         int64
	OccupantID         *int64
	Location           string
	Size               int64
	PurchasePrice      int64
	RentPrice          int64
	OperationalExpense int64
	ExtraInformation   *string
	ImageRef           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Vacant reports whether no public profile is bound to the unit.
func (u *Unit) Vacant() bool {
	return u.OccupantID == nil
}
