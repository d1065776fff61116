package dto

import (
	"strconv"

	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/service"
)

// UnitBudgetResponse is one unit's line of the finance report.
type UnitBudgetResponse struct {
	ID           int64  `json:"id"`
	Location     string `json:"location"`
	ExpenseCents int64  `json:"expense_cents"`
	FeeCents     int64  `json:"fee_cents"`
}

// PropertyBudgetResponse totals one property.
type PropertyBudgetResponse struct {
	PropertyName        string               `json:"property_name"`
	Condos              []UnitBudgetResponse `json:"condos"`
	Parkings            []UnitBudgetResponse `json:"parkings"`
	Storages            []UnitBudgetResponse `json:"storages"`
	CondoFeeCents       int64                `json:"condo_fee_cents"`
	ParkingFeeCents     int64                `json:"parking_fee_cents"`
	StorageFeeCents     int64                `json:"storage_fee_cents"`
	CondoExpenseCents   int64                `json:"condo_expense_cents"`
	ParkingExpenseCents int64                `json:"parking_expense_cents"`
	StorageExpenseCents int64                `json:"storage_expense_cents"`
	FeeCents            int64                `json:"fee_cents"`
	ExpensesCents       int64                `json:"expenses_cents"`
}

// FinanceReportResponse is the company-wide report keyed by property id.
type FinanceReportResponse struct {
	Properties    map[string]PropertyBudgetResponse `json:"properties"`
	ExpensesCents int64                             `json:"expenses_cents"`
	FeeCents      int64                             `json:"fee_cents"`
	TotalCents    int64                             `json:"total_cents"`
}

// NewFinanceReportResponse converts a service report.
func NewFinanceReportResponse(report *service.CompanyReport) FinanceReportResponse {
	resp := FinanceReportResponse{
		Properties:    make(map[string]PropertyBudgetResponse, len(report.Properties)),
		ExpensesCents: report.Expenses,
		FeeCents:      report.Fee,
		TotalCents:    report.Total,
	}
	for _, p := range report.Properties {
		condos := p.Kinds[domain.UnitKindCondo]
		parkings := p.Kinds[domain.UnitKindParking]
		storages := p.Kinds[domain.UnitKindStorage]
		resp.Properties[strconv.FormatInt(p.PropertyID, 10)] = PropertyBudgetResponse{
			PropertyName:        p.PropertyName,
			Condos:              unitBudgets(condos.Units),
			Parkings:            unitBudgets(parkings.Units),
			Storages:            unitBudgets(storages.Units),
			CondoFeeCents:       condos.Fee,
			ParkingFeeCents:     parkings.Fee,
			StorageFeeCents:     storages.Fee,
			CondoExpenseCents:   condos.Expense,
			ParkingExpenseCents: parkings.Expense,
			StorageExpenseCents: storages.Expense,
			FeeCents:            p.Fee,
			ExpensesCents:       p.Expenses,
		}
	}
	return resp
}

func unitBudgets(units []service.UnitBudget) []UnitBudgetResponse {
	out := make([]UnitBudgetResponse, 0, len(units))
	for _, u := range units {
		out = append(out, UnitBudgetResponse{ID: u.ID, Location: u.Location, ExpenseCents: u.Expense, FeeCents: u.Fee})
	}
	return out
}
