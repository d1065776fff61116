package service

import (
	"context"
	"strings"

	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/repository"
)

const defaultPropertyImage = "property_images/defaultProperty.jpg"

var defaultUnitImages = map[domain.UnitKind]string{
	domain.UnitKindCondo:   "condoUnit_images/defaultCondoUnit.jpg",
	domain.UnitKindParking: "parkingUnit_images/defaultParkingUnit.jpg",
	domain.UnitKindStorage: "storageUnit_images/defaultStorageUnit.jpg",
}

// PropertyService manages company properties and their units.
type PropertyService struct {
	store repository.Store
}

// PropertyInput describes a property to create.
type PropertyInput struct {
	Name       string
	Address    string
	City       string
	Province   string
	PostalCode string
	FeeRate    int64
	ImageRef   string
}

// UnitInput describes a unit to create under a property.
type UnitInput struct {
	PropertyID         int64
	Location           string
	Size               int64
	PurchasePrice      int64
	RentPrice          int64
	OperationalExpense int64
	ExtraInformation   *string
	ImageRef           string
}

// NewPropertyService constructs the service.
func NewPropertyService(store repository.Store) *PropertyService {
	return &PropertyService{store: store}
}

// CreateProperty registers a property owned by the company.
func (s *PropertyService) CreateProperty(ctx context.Context, companyID int64, in PropertyInput) (*domain.Property, error) {
	if _, err := s.store.Profiles().GetCompany(ctx, companyID); err != nil {
		return nil, notFoundAs(err, ErrCompanyNotFound)
	}
	property := &domain.Property{
		CompanyID:  companyID,
		Name:       strings.TrimSpace(in.Name),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		Province:   strings.TrimSpace(in.Province),
		PostalCode: strings.TrimSpace(in.PostalCode),
		FeeRate:    in.FeeRate,
		ImageRef:   in.ImageRef,
	}
	if property.ImageRef == "" {
		property.ImageRef = defaultPropertyImage
	}
	if err := s.store.Properties().Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// ListProperties returns the company's properties.
func (s *PropertyService) ListProperties(ctx context.Context, companyID int64) ([]domain.Property, error) {
	if _, err := s.store.Profiles().GetCompany(ctx, companyID); err != nil {
		return nil, notFoundAs(err, ErrCompanyNotFound)
	}
	return s.store.Properties().ListByCompany(ctx, companyID)
}

// CreateUnit adds a vacant unit to a property. When companyID is non-zero the
// property must belong to that company.
func (s *PropertyService) CreateUnit(ctx context.Context, companyID int64, kind domain.UnitKind, in UnitInput) (*domain.Unit, error) {
	property, err := s.store.Properties().GetByID(ctx, in.PropertyID)
	if err != nil {
		return nil, notFoundAs(err, ErrPropertyNotFound)
	}
	if companyID != 0 && property.CompanyID != companyID {
		return nil, ErrPropertyNotOwned
	}
	unit := &domain.Unit{
		Kind:               kind,
		PropertyID:         property.ID,
		Location:           strings.TrimSpace(in.Location),
		Size:               in.Size,
		PurchasePrice:      in.PurchasePrice,
		RentPrice:          in.RentPrice,
		OperationalExpense: in.OperationalExpense,
		ExtraInformation:   in.ExtraInformation,
		ImageRef:           in.ImageRef,
	}
	if unit.ImageRef == "" {
		unit.ImageRef = defaultUnitImages[kind]
	}
	if err := s.store.Units().Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// ListPropertyUnits returns the property's units of one kind.
func (s *PropertyService) ListPropertyUnits(ctx context.Context, kind domain.UnitKind, propertyID int64) ([]domain.Unit, error) {
	if _, err := s.store.Properties().GetByID(ctx, propertyID); err != nil {
		return nil, notFoundAs(err, ErrPropertyNotFound)
	}
	return s.store.Units().ListByProperty(ctx, kind, propertyID)
}

// ListOccupantUnits returns the units of one kind bound to a public profile.
func (s *PropertyService) ListOccupantUnits(ctx context.Context, kind domain.UnitKind, userID int64) ([]domain.Unit, error) {
	if _, err := s.store.Profiles().GetPublic(ctx, userID); err != nil {
		return nil, notFoundAs(err, ErrProfileNotFound)
	}
	units, err := s.store.Units().ListByOccupant(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, ErrNoUnits
	}
	return units, nil
}
