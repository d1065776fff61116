package dto

import (
	"time"

	"github.com/condohub/property-service/internal/domain"
)

// Money fields are integer cents and sizes are hundredths of a unit.

// CreatePropertyRequest payload for POST /properties.
type CreatePropertyRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Address      string `json:"address" validate:"required,max=100"`
	City         string `json:"city" validate:"required,max=100"`
	Province     string `json:"province" validate:"required,max=100"`
	PostalCode   string `json:"postal_code" validate:"required,max=12"`
	FeeRateCents int64  `json:"fee_rate_cents" validate:"min=0"`
}

// CreateUnitRequest payload for POST /properties/{id}/{kind}-units.
type CreateUnitRequest struct {
	Location                string  `json:"location" validate:"required,max=4"`
	SizeHundredths          int64   `json:"size_hundredths" validate:"min=0"`
	PurchasePriceCents      int64   `json:"purchase_price_cents" validate:"min=0"`
	RentPriceCents          int64   `json:"rent_price_cents" validate:"min=0"`
	OperationalExpenseCents int64   `json:"operational_expense_cents" validate:"min=0"`
	ExtraInformation        *string `json:"extra_information"`
}

// PropertyResponse is the public view of a property.
type PropertyResponse struct {
	ID           int64     `json:"id"`
	Company      int64     `json:"company"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Province     string    `json:"province"`
	PostalCode   string    `json:"postal_code"`
	FeeRateCents int64     `json:"fee_rate_cents"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPropertyResponse converts a domain property.
func NewPropertyResponse(p *domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:           p.ID,
		Company:      p.CompanyID,
		Name:         p.Name,
		Address:      p.Address,
		City:         p.City,
		Province:     p.Province,
		PostalCode:   p.PostalCode,
		FeeRateCents: p.FeeRate,
		Image:        p.ImageRef,
		CreatedAt:    p.CreatedAt,
	}
}

// UnitResponse is the public view of a unit of any kind.
type UnitResponse struct {
	ID                      int64   `json:"id"`
	Property                int64   `json:"property"`
	PublicProfile           *int64  `json:"public_profile"`
	Location                string  `json:"location"`
	SizeHundredths          int64   `json:"size_hundredths"`
	PurchasePriceCents      int64   `json:"purchase_price_cents"`
	RentPriceCents          int64   `json:"rent_price_cents"`
	OperationalExpenseCents int64   `json:"operational_expense_cents"`
	ExtraInformation        *string `json:"extra_information"`
	Image                   string  `json:"image"`
}

// NewUnitResponse converts a domain unit.
func NewUnitResponse(u *domain.Unit) UnitResponse {
	return UnitResponse{
		ID:                      u.ID,
		Property:                u.PropertyID,
		PublicProfile:           u.OccupantID,
		Location:                u.Location,
		SizeHundredths:          u.Size,
		PurchasePriceCents:      u.PurchasePrice,
		RentPriceCents:          u.RentPrice,
		OperationalExpenseCents: u.OperationalExpense,
		ExtraInformation:        u.ExtraInformation,
		Image:                   u.ImageRef,
	}
}

// NewUnitResponses converts a list of units.
func NewUnitResponses(units []domain.Unit) []UnitResponse {
	out := make([]UnitResponse, 0, len(units))
	for i := range units {
		out = append(out, NewUnitResponse(&units[i]))
	}
	return out
}
