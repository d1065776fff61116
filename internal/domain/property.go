package domain

import "time"

// Property groups units under a company. FeeRate is in cents per unit of size.
type Property struct {
	ID         int64
	CompanyID  int64
	Name       string
	Address    string
	City       string
	Province   string
	PostalCode string
	FeeRate    int64
	ImageRef   string
	CreatedAt  time.Time
}

// UnitFee computes the monthly fee for a unit of the given size, in cents.
// Size is in hundredths, so the product is scaled back down with half-up rounding.
func (p *Property) UnitFee(size int64) int64 {
	return (size*p.FeeRate + 50) / 100
}
