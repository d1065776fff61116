package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/repository/memory"
)

func seedCompany(t *testing.T, store *memory.Store, email string) *domain.User {
	t.Helper()
	ctx := context.Background()
	user := &domain.User{Email: email, Role: domain.RoleCompany, IsActive: true}
	require.NoError(t, store.Users().Create(ctx, user))
	require.NoError(t, store.Profiles().CreateCompany(ctx, &domain.CompanyProfile{UserID: user.ID}))
	return user
}

func seedPublic(t *testing.T, store *memory.Store, email string) *domain.User {
	t.Helper()
	ctx := context.Background()
	user := &domain.User{Email: email, Role: domain.RolePublic, IsActive: true}
	require.NoError(t, store.Users().Create(ctx, user))
	require.NoError(t, store.Profiles().CreatePublic(ctx, &domain.PublicProfile{UserID: user.ID, Type: domain.PublicProfileOwner}))
	return user
}

func TestPropertyAndUnitCreation(t *testing.T) {
	store := memory.NewStore()
	svc := NewPropertyService(store)
	ctx := context.Background()
	company := seedCompany(t, store, "co@x.com")
	rival := seedCompany(t, store, "rival@x.com")

	_, err := svc.CreateProperty(ctx, 999, PropertyInput{Name: "Nope"})
	assert.ErrorIs(t, err, ErrCompanyNotFound)

	property, err := svc.CreateProperty(ctx, company.ID, PropertyInput{Name: " Tower ", FeeRate: 125})
	require.NoError(t, err)
	assert.Equal(t, "Tower", property.Name)
	assert.Equal(t, defaultPropertyImage, property.ImageRef)

	unit, err := svc.CreateUnit(ctx, company.ID, domain.UnitKindParking, UnitInput{PropertyID: property.ID, Location: "P1", Size: 1250})
	require.NoError(t, err)
	assert.True(t, unit.Vacant())
	assert.Equal(t, defaultUnitImages[domain.UnitKindParking], unit.ImageRef)

	_, err = svc.CreateUnit(ctx, rival.ID, domain.UnitKindParking, UnitInput{PropertyID: property.ID})
	assert.ErrorIs(t, err, ErrPropertyNotOwned)
	_, err = svc.CreateUnit(ctx, company.ID, domain.UnitKindParking, UnitInput{PropertyID: 999})
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	units, err := svc.ListPropertyUnits(ctx, domain.UnitKindParking, property.ID)
	require.NoError(t, err)
	assert.Len(t, units, 1)
	units, err = svc.ListPropertyUnits(ctx, domain.UnitKindCondo, property.ID)
	require.NoError(t, err)
	assert.Empty(t, units)

	properties, err := svc.ListProperties(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, properties, 1)
}

func TestListOccupantUnits(t *testing.T) {
	store := memory.NewStore()
	svc := NewPropertyService(store)
	ctx := context.Background()
	company := seedCompany(t, store, "co@x.com")
	occupant := seedPublic(t, store, "a@x.com")

	property, err := svc.CreateProperty(ctx, company.ID, PropertyInput{Name: "Tower"})
	require.NoError(t, err)
	unit, err := svc.CreateUnit(ctx, company.ID, domain.UnitKindStorage, UnitInput{PropertyID: property.ID, Location: "S1"})
	require.NoError(t, err)

	_, err = svc.ListOccupantUnits(ctx, domain.UnitKindStorage, 999)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	_, err = svc.ListOccupantUnits(ctx, domain.UnitKindStorage, occupant.ID)
	assert.ErrorIs(t, err, ErrNoUnits)

	require.NoError(t, store.Units().Bind(ctx, domain.UnitKindStorage, unit.ID, occupant.ID))
	units, err := svc.ListOccupantUnits(ctx, domain.UnitKindStorage, occupant.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, unit.ID, units[0].ID)
}
