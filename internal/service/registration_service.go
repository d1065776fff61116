package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/condohub/property-service/internal/config"
	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/events"
	"github.com/condohub/property-service/internal/keygen"
	"github.com/condohub/property-service/internal/notify"
	"github.com/condohub/property-service/internal/observability"
	"github.com/condohub/property-service/internal/repository"
)

// Redemption outcomes reported to metrics.
const (
	outcomeBound    = "bound"
	outcomeConflict = "conflict"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// RegistrationService issues registration keys and redeems them against units.
type RegistrationService struct {
	store         repository.Store
	tx            repository.Transactor
	keys          keygen.Generator
	notifier      notify.Notifier
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
	cfg           config.RegistrationConfig
	notifyTimeout time.Duration
}

// RegistrationDependencies bundles collaborators for the registration service.
type RegistrationDependencies struct {
	Store      repository.Store
	Transactor repository.Transactor
	Generator  keygen.Generator
	Notifier   notify.Notifier
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// IssueInput describes a key issuance request.
type IssueInput struct {
	Kind      domain.UnitKind
	UnitID    int64
	CompanyID int64
	Email     string
	IsOwner   *bool
	Actor     *domain.User
}

// NewRegistrationService constructs the service.
func NewRegistrationService(cfg config.Config, deps RegistrationDependencies) *RegistrationService {
	generator := deps.Generator
	if generator == nil {
		generator = keygen.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		store:         deps.Store,
		tx:            deps.Transactor,
		keys:          generator,
		notifier:      deps.Notifier,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger,
		cfg:           cfg.Registration,
		notifyTimeout: cfg.Notification.Timeout(),
	}
}

// Issue validates the request, persists a new key and notifies the occupant.
// Validation runs in a fixed order: unit, company, user, vacancy, role, company scope.
func (s *RegistrationService) Issue(ctx context.Context, in IssueInput) (*domain.RegistrationKey, error) {
	var (
		record   *domain.RegistrationKey
		occupant *domain.User
	)
	err := s.tx.RunInTx(ctx, func(store repository.Store) error {
		unit, err := store.Units().GetForUpdate(ctx, in.Kind, in.UnitID)
		if err != nil {
			return notFoundAs(err, ErrUnitNotFound)
		}
		if _, err := store.Profiles().GetCompany(ctx, in.CompanyID); err != nil {
			return notFoundAs(err, ErrCompanyNotFound)
		}
		user, err := store.Users().GetByEmail(ctx, domain.NormalizeEmail(in.Email))
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		if !unit.Vacant() {
			return ErrUnitAlreadyBound
		}
		if user.Role != domain.RolePublic {
			return ErrUserNotPublic
		}
		if err := s.checkCompanyScope(ctx, store, unit, in.CompanyID); err != nil {
			return err
		}

		isOwner := true
		if in.IsOwner != nil {
			isOwner = *in.IsOwner
		}
		key := &domain.RegistrationKey{
			Key:        s.keys.Generate(user.Email, unit.ID),
			Kind:       in.Kind,
			OccupantID: user.ID,
			UnitID:     unit.ID,
			IsOwner:    isOwner,
			IsActive:   true,
		}
		if err := store.RegistrationKeys().Insert(ctx, key); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrDuplicateKey
			}
			return err
		}
		record, occupant = key, user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.KeyIssued(in.Kind.String())
	notified := s.deliver(ctx, in.Kind, occupant.Email, record.Key)
	s.publishEvent(ctx, events.Event{
		Type:   events.EventRegistrationKeyIssued,
		Kind:   in.Kind,
		UnitID: record.UnitID,
		Actor:  actorOf(in.Actor),
		Payload: events.RegistrationKeyIssuedPayload{
			CompanyID:  in.CompanyID,
			OccupantID: record.OccupantID,
			IsOwner:    record.IsOwner,
			Notified:   notified,
		},
	})
	return record, nil
}

// checkCompanyScope rejects units outside the issuing company's properties
// when scope enforcement is enabled.
func (s *RegistrationService) checkCompanyScope(ctx context.Context, store repository.Store, unit *domain.Unit, companyID int64) error {
	if !s.cfg.EnforceCompanyScope {
		return nil
	}
	property, err := store.Properties().GetByID(ctx, unit.PropertyID)
	if err != nil {
		return notFoundAs(err, ErrUnitNotOwnedByCompany)
	}
	if property.CompanyID != companyID {
		return ErrUnitNotOwnedByCompany
	}
	return nil
}

// deliver runs after commit. A failed delivery is logged and counted but never
// undoes the issued key.
func (s *RegistrationService) deliver(ctx context.Context, kind domain.UnitKind, email, token string) bool {
	if s.notifier == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, email, token); err != nil {
		s.metrics.NotificationFailed(kind.String())
		s.logger.Warn("registration key notification failed",
			zap.String("kind", kind.String()),
			zap.String("recipient", email),
			zap.Error(err))
		return false
	}
	return true
}

// Redeem binds the key's unit to the caller's public profile. The bind is a
// conditional update so a concurrent redemption cannot overwrite an occupant.
func (s *RegistrationService) Redeem(ctx context.Context, kind domain.UnitKind, key string, userID int64) (*domain.Unit, error) {
	var (
		bound  *domain.Unit
		record *domain.RegistrationKey
	)
	err := s.tx.RunInTx(ctx, func(store repository.Store) error {
		rec, err := store.RegistrationKeys().FindByKey(ctx, kind, key)
		if err != nil {
			return notFoundAs(err, ErrKeyNotFound)
		}
		user, err := store.Users().GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		if rec.OccupantID != user.ID {
			return ErrKeyNotAuthorizedForUser
		}
		if !rec.IsActive {
			return ErrKeyInactive
		}
		unit, err := store.Units().GetByID(ctx, kind, rec.UnitID)
		if err != nil {
			return notFoundAs(err, ErrUnitNotFound)
		}
		profile, err := store.Profiles().GetPublic(ctx, user.ID)
		if err != nil {
			return notFoundAs(err, ErrProfileNotFound)
		}
		if err := store.Units().Bind(ctx, kind, unit.ID, profile.UserID); err != nil {
			if errors.Is(err, repository.ErrUnitOccupied) {
				return ErrUnitAlreadyBound
			}
			return notFoundAs(err, ErrUnitNotFound)
		}
		occupant := profile.UserID
		unit.OccupantID = &occupant
		bound, record = unit, rec
		return nil
	})
	s.metrics.Redemption(kind.String(), redemptionOutcome(err))
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventUnitRegistered,
		Kind:   kind,
		UnitID: bound.ID,
		Actor:  events.Actor{UserID: &userID, Role: domain.RolePublic},
		Payload: events.UnitRegisteredPayload{
			OccupantID: *bound.OccupantID,
			IsOwner:    record.IsOwner,
		},
	})
	return bound, nil
}

// ListKeys returns keys of a kind using the configured default scope.
func (s *RegistrationService) ListKeys(ctx context.Context, kind domain.UnitKind) ([]domain.RegistrationKey, error) {
	scope := domain.KeyScopeAll
	if s.cfg.ListActiveOnly {
		scope = domain.KeyScopeActive
	}
	return s.store.RegistrationKeys().List(ctx, kind, scope)
}

// DeactivateKey marks a key inactive. Deactivating an inactive key is a no-op.
func (s *RegistrationService) DeactivateKey(ctx context.Context, kind domain.UnitKind, key string, actor *domain.User) error {
	rec, err := s.store.RegistrationKeys().FindByKey(ctx, kind, key)
	if err != nil {
		return notFoundAs(err, ErrKeyNotFound)
	}
	if err := s.store.RegistrationKeys().Deactivate(ctx, kind, key); err != nil {
		return notFoundAs(err, ErrKeyNotFound)
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventRegistrationKeyDeactivated,
		Kind:   kind,
		UnitID: rec.UnitID,
		Actor:  actorOf(actor),
	})
	return nil
}

func (s *RegistrationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func redemptionOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeBound
	case errors.Is(err, ErrUnitAlreadyBound):
		return outcomeConflict
	case errors.Is(err, ErrKeyNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrKeyNotAuthorizedForUser), errors.Is(err, ErrKeyInactive),
		errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrUnitNotFound):
		return outcomeRejected
	default:
		return outcomeError
	}
}

func actorOf(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	id := user.ID
	return events.Actor{UserID: &id, Role: user.Role}
}
