package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"

	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/repository"
)

type StoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.store = NewStore()
	s.ctx = context.Background()
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) newUnit(kind domain.UnitKind) *domain.Unit {
	unit := &domain.Unit{Kind: kind, PropertyID: 1, Location: "A1"}
	s.Require().NoError(s.store.Units().Create(s.ctx, unit))
	return unit
}

func (s *StoreSuite) TestUnitsAreSeparatedByKind() {
	condo := s.newUnit(domain.UnitKindCondo)
	parking := s.newUnit(domain.UnitKindParking)

	s.Equal(int64(1), condo.ID)
	s.Equal(int64(1), parking.ID)

	found, err := s.store.Units().GetByID(s.ctx, domain.UnitKindStorage, condo.ID)
	s.Nil(found)
	s.ErrorIs(err, pgx.ErrNoRows)
}

func (s *StoreSuite) TestBindIsConditional() {
	unit := s.newUnit(domain.UnitKindCondo)

	s.Require().NoError(s.store.Units().Bind(s.ctx, domain.UnitKindCondo, unit.ID, 10))
	err := s.store.Units().Bind(s.ctx, domain.UnitKindCondo, unit.ID, 11)
	s.ErrorIs(err, repository.ErrUnitOccupied)

	bound, err := s.store.Units().GetByID(s.ctx, domain.UnitKindCondo, unit.ID)
	s.Require().NoError(err)
	s.Require().NotNil(bound.OccupantID)
	s.Equal(int64(10), *bound.OccupantID)

	s.ErrorIs(s.store.Units().Bind(s.ctx, domain.UnitKindCondo, 99, 10), pgx.ErrNoRows)
}

func (s *StoreSuite) TestRegistrationKeys() {
	keys := s.store.RegistrationKeys()

	s.Run("rejects duplicate tokens within a kind", func() {
		s.Require().NoError(keys.Insert(s.ctx, &domain.RegistrationKey{Key: "dup", Kind: domain.UnitKindCondo, IsActive: true}))
		err := keys.Insert(s.ctx, &domain.RegistrationKey{Key: "dup", Kind: domain.UnitKindCondo, IsActive: true})
		s.ErrorIs(err, repository.ErrDuplicateKey)
		s.NoError(keys.Insert(s.ctx, &domain.RegistrationKey{Key: "dup", Kind: domain.UnitKindParking, IsActive: true}))
	})

	s.Run("deactivate is idempotent and respected by active scope", func() {
		s.Require().NoError(keys.Insert(s.ctx, &domain.RegistrationKey{Key: "k2", Kind: domain.UnitKindCondo, IsActive: true}))
		s.Require().NoError(keys.Deactivate(s.ctx, domain.UnitKindCondo, "k2"))
		s.Require().NoError(keys.Deactivate(s.ctx, domain.UnitKindCondo, "k2"))

		active, err := keys.List(s.ctx, domain.UnitKindCondo, domain.KeyScopeActive)
		s.Require().NoError(err)
		s.Len(active, 1)

		all, err := keys.List(s.ctx, domain.UnitKindCondo, domain.KeyScopeAll)
		s.Require().NoError(err)
		s.Len(all, 2)

		found, err := keys.FindByKey(s.ctx, domain.UnitKindCondo, "k2")
		s.Require().NoError(err)
		s.False(found.IsActive)
	})

	s.Run("unknown key", func() {
		_, err := keys.FindByKey(s.ctx, domain.UnitKindStorage, "missing")
		s.ErrorIs(err, pgx.ErrNoRows)
		s.ErrorIs(keys.Deactivate(s.ctx, domain.UnitKindStorage, "missing"), pgx.ErrNoRows)
	})
}

func (s *StoreSuite) TestRunInTxRollsBackOnError() {
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, func(store repository.Store) error {
		user := &domain.User{Email: "a@x.com", Role: domain.RolePublic}
		s.Require().NoError(store.Users().Create(s.ctx, user))
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.Users().GetByEmail(s.ctx, "a@x.com")
	s.ErrorIs(err, pgx.ErrNoRows)
}

func (s *StoreSuite) TestRunInTxCommits() {
	err := s.store.RunInTx(s.ctx, func(store repository.Store) error {
		user := &domain.User{Email: "a@x.com", Role: domain.RoleCompany}
		if err := store.Users().Create(s.ctx, user); err != nil {
			return err
		}
		return store.Profiles().CreateCompany(s.ctx, &domain.CompanyProfile{UserID: user.ID})
	})
	s.Require().NoError(err)

	user, err := s.store.Users().GetByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	_, err = s.store.Profiles().GetCompany(s.ctx, user.ID)
	s.NoError(err)
}

func (s *StoreSuite) TestUserEmailUnique() {
	s.Require().NoError(s.store.Users().Create(s.ctx, &domain.User{Email: "a@x.com"}))
	s.ErrorIs(s.store.Users().Create(s.ctx, &domain.User{Email: "a@x.com"}), repository.ErrDuplicateKey)
}

func (s *StoreSuite) TestRollbackKeepsWritesMadeOutsideTheTx() {
	boom := errors.New("boom")
	s.Require().NoError(s.store.RegistrationKeys().Insert(s.ctx, &domain.RegistrationKey{Key: "k", Kind: domain.UnitKindCondo, IsActive: true}))

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.store.RunInTx(s.ctx, func(store repository.Store) error {
			close(entered)
			<-release
			return boom
		})
	}()
	<-entered

	writesDone := make(chan struct{})
	property := &domain.Property{CompanyID: 1, Name: "Tower"}
	go func() {
		defer close(writesDone)
		s.NoError(s.store.Properties().Create(s.ctx, property))
		s.NoError(s.store.RegistrationKeys().Deactivate(s.ctx, domain.UnitKindCondo, "k"))
	}()

	select {
	case <-writesDone:
		s.Fail("write finished while a transaction was open")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	s.ErrorIs(<-txDone, boom)
	<-writesDone

	_, err := s.store.Properties().GetByID(s.ctx, property.ID)
	s.NoError(err)
	key, err := s.store.RegistrationKeys().FindByKey(s.ctx, domain.UnitKindCondo, "k")
	s.Require().NoError(err)
	s.False(key.IsActive)
}

func (s *StoreSuite) TestPanicInTxLeavesStoreUntouched() {
	s.Panics(func() {
		_ = s.store.RunInTx(s.ctx, func(store repository.Store) error {
			s.Require().NoError(store.Users().Create(s.ctx, &domain.User{Email: "a@x.com"}))
			panic("boom")
		})
	})

	_, err := s.store.Users().GetByEmail(s.ctx, "a@x.com")
	s.ErrorIs(err, pgx.ErrNoRows)
	s.NoError(s.store.Users().Create(s.ctx, &domain.User{Email: "b@x.com"}))
}

func (s *StoreSuite) TestTxWritesAreInvisibleUntilCommit() {
	err := s.store.RunInTx(s.ctx, func(store repository.Store) error {
		s.Require().NoError(store.Users().Create(s.ctx, &domain.User{Email: "a@x.com"}))
		_, err := s.store.Users().GetByEmail(s.ctx, "a@x.com")
		s.ErrorIs(err, pgx.ErrNoRows)
		return nil
	})
	s.Require().NoError(err)

	_, err = s.store.Users().GetByEmail(s.ctx, "a@x.com")
	s.NoError(err)
}
