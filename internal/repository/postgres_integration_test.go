//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"

	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/repository"
	"github.com/condohub/property-service/internal/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.Postgres
	store    repository.Store
	tx       repository.Transactor

	occupantA int64
	occupantB int64
	property  int64
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgres(s.T())
	s.store = repository.NewStore(s.postgres.Pool)
	s.tx = repository.NewPgTransactor(s.postgres.Pool, 0)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(s.ctx, "users", "properties"))

	company := s.createUser("company@x.com", domain.RoleCompany)
	s.Require().NoError(s.store.Profiles().CreateCompany(s.ctx, &domain.CompanyProfile{UserID: company}))
	s.occupantA = s.createUser("a@x.com", domain.RolePublic)
	s.occupantB = s.createUser("b@x.com", domain.RolePublic)
	for _, id := range []int64{s.occupantA, s.occupantB} {
		s.Require().NoError(s.store.Profiles().CreatePublic(s.ctx, &domain.PublicProfile{UserID: id, Type: domain.PublicProfileOwner}))
	}

	property := &domain.Property{CompanyID: company, Name: "Tower", FeeRate: 100}
	s.Require().NoError(s.store.Properties().Create(s.ctx, property))
	s.property = property.ID
}

func (s *PostgresStoreSuite) createUser(email string, role domain.Role) int64 {
	user := &domain.User{Email: email, Role: role, PasswordHash: "x", IsActive: true}
	s.Require().NoError(s.store.Users().Create(s.ctx, user))
	return user.ID
}

func (s *PostgresStoreSuite) createUnit(kind domain.UnitKind) *domain.Unit {
	unit := &domain.Unit{Kind: kind, PropertyID: s.property, Location: "101", Size: 5000, ImageRef: "img"}
	s.Require().NoError(s.store.Units().Create(s.ctx, unit))
	return unit
}

func (s *PostgresStoreSuite) TestBindIsConditional() {
	unit := s.createUnit(domain.UnitKindCondo)

	s.Require().NoError(s.store.Units().Bind(s.ctx, domain.UnitKindCondo, unit.ID, s.occupantA))
	s.ErrorIs(s.store.Units().Bind(s.ctx, domain.UnitKindCondo, unit.ID, s.occupantB), repository.ErrUnitOccupied)
	s.ErrorIs(s.store.Units().Bind(s.ctx, domain.UnitKindCondo, unit.ID+100, s.occupantB), pgx.ErrNoRows)

	bound, err := s.store.Units().ListByOccupant(s.ctx, domain.UnitKindCondo, s.occupantA)
	s.Require().NoError(err)
	s.Len(bound, 1)
}

func (s *PostgresStoreSuite) TestConcurrentBindsHaveOneWinner() {
	unit := s.createUnit(domain.UnitKindParking)
	occupants := []int64{s.occupantA, s.occupantB}

	var wg sync.WaitGroup
	errs := make([]error, len(occupants))
	for i, occupant := range occupants {
		wg.Add(1)
		go func(i int, occupant int64) {
			defer wg.Done()
			errs[i] = s.tx.RunInTx(s.ctx, func(store repository.Store) error {
				return store.Units().Bind(s.ctx, domain.UnitKindParking, unit.ID, occupant)
			})
		}(i, occupant)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrUnitOccupied):
			conflicts++
		}
	}
	s.Equal(1, wins)
	s.Equal(1, conflicts)
}

func (s *PostgresStoreSuite) TestRegistrationKeys() {
	unit := s.createUnit(domain.UnitKindStorage)
	keys := s.store.RegistrationKeys()

	key := &domain.RegistrationKey{Key: "k1", Kind: domain.UnitKindStorage, OccupantID: s.occupantA, UnitID: unit.ID, IsOwner: true, IsActive: true}
	s.Require().NoError(keys.Insert(s.ctx, key))
	s.False(key.CreatedAt.IsZero())

	dup := *key
	s.ErrorIs(keys.Insert(s.ctx, &dup), repository.ErrDuplicateKey)

	s.Require().NoError(keys.Deactivate(s.ctx, domain.UnitKindStorage, "k1"))
	s.Require().NoError(keys.Deactivate(s.ctx, domain.UnitKindStorage, "k1"))
	s.ErrorIs(keys.Deactivate(s.ctx, domain.UnitKindStorage, "missing"), pgx.ErrNoRows)

	active, err := keys.List(s.ctx, domain.UnitKindStorage, domain.KeyScopeActive)
	s.Require().NoError(err)
	s.Empty(active)
	all, err := keys.List(s.ctx, domain.UnitKindStorage, domain.KeyScopeAll)
	s.Require().NoError(err)
	s.Len(all, 1)

	_, err = keys.FindByKey(s.ctx, domain.UnitKindCondo, "k1")
	s.ErrorIs(err, pgx.ErrNoRows)
}

func (s *PostgresStoreSuite) TestRunInTxRollsBack() {
	boom := errors.New("boom")
	err := s.tx.RunInTx(s.ctx, func(store repository.Store) error {
		if err := store.Users().Create(s.ctx, &domain.User{Email: "rollback@x.com", Role: domain.RolePublic, PasswordHash: "x"}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.Users().GetByEmail(s.ctx, "rollback@x.com")
	s.ErrorIs(err, pgx.ErrNoRows)

	s.ErrorIs(s.store.Users().Create(s.ctx, &domain.User{Email: "a@x.com", Role: domain.RolePublic, PasswordHash: "x"}), repository.ErrDuplicateKey)
}
