package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/repository"
)

// FinanceService aggregates fees and operational expenses per company.
type FinanceService struct {
	store repository.Store
}

// NewFinanceService constructs the service.
func NewFinanceService(store repository.Store) *FinanceService {
	return &FinanceService{store: store}
}

// UnitBudget is a single unit's line in the report. Amounts are in cents.
type UnitBudget struct {
	ID       int64
	Location string
	Expense  int64
	Fee      int64
}

// KindBudget totals one unit kind within a property.
type KindBudget struct {
	Units   []UnitBudget
	Fee     int64
	Expense int64
}

// PropertyBudget totals one property.
type PropertyBudget struct {
	PropertyID   int64
	PropertyName string
	Kinds        map[domain.UnitKind]KindBudget
	Fee          int64
	Expenses     int64
}

// CompanyReport is the company-wide finance report.
type CompanyReport struct {
	Properties []PropertyBudget
	Fee        int64
	Expenses   int64
	Total      int64
}

// CompanyReport builds the finance report. Every unit's operational expense
// counts; only occupied units contribute their fee.
func (s *FinanceService) CompanyReport(ctx context.Context, companyID int64) (*CompanyReport, error) {
	if _, err := s.store.Profiles().GetCompany(ctx, companyID); err != nil {
		return nil, notFoundAs(err, ErrCompanyNotFound)
	}
	properties, err := s.store.Properties().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	report := &CompanyReport{Properties: make([]PropertyBudget, 0, len(properties))}
	for i := range properties {
		budget, err := s.propertyBudget(ctx, &properties[i])
		if err != nil {
			return nil, err
		}
		report.Properties = append(report.Properties, budget)
		report.Fee += budget.Fee
		report.Expenses += budget.Expenses
	}
	report.Total = report.Fee - report.Expenses
	return report, nil
}

func (s *FinanceService) propertyBudget(ctx context.Context, property *domain.Property) (PropertyBudget, error) {
	units := make([][]domain.Unit, len(domain.UnitKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range domain.UnitKinds {
		i, kind := i, kind
		g.Go(func() error {
			list, err := s.store.Units().ListByProperty(gctx, kind, property.ID)
			if err != nil {
				return err
			}
			units[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PropertyBudget{}, err
	}

	budget := PropertyBudget{
		PropertyID:   property.ID,
		PropertyName: property.Name,
		Kinds:        make(map[domain.UnitKind]KindBudget, len(domain.UnitKinds)),
	}
	for i, kind := range domain.UnitKinds {
		kb := KindBudget{Units: make([]UnitBudget, 0, len(units[i]))}
		for _, unit := range units[i] {
			line := UnitBudget{ID: unit.ID, Location: unit.Location, Expense: unit.OperationalExpense}
			if !unit.Vacant() {
				line.Fee = property.UnitFee(unit.Size)
			}
			kb.Units = append(kb.Units, line)
			kb.Fee += line.Fee
			kb.Expense += line.Expense
		}
		budget.Kinds[kind] = kb
		budget.Fee += kb.Fee
		budget.Expenses += kb.Expense
	}
	return budget, nil
}
