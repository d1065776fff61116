// Package memory provides an in-process Store used when no database is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/repository"
)

// Store keeps every table in maps. A transaction works on a private copy of
// the tables that replaces the shared ones only on commit. Transactions and
// writes outside a transaction are serialised on txMu.
type Store struct {
	// txMu is nil for the view handed to a transaction.
	txMu *sync.Mutex
	mu   sync.RWMutex
	data *tables
}

type tables struct {
	seq        map[string]int64
	units      map[domain.UnitKind]map[int64]domain.Unit
	keys       map[domain.UnitKind][]domain.RegistrationKey
	keyIndex   map[domain.UnitKind]map[string]int
	users      map[int64]domain.User
	emails     map[string]int64
	public     map[int64]domain.PublicProfile
	companies  map[int64]domain.CompanyProfile
	properties map[int64]domain.Property
}

var (
	_ repository.Store      = (*Store)(nil)
	_ repository.Transactor = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{txMu: &sync.Mutex{}, data: newTables()}
}

func newTables() *tables {
	t := &tables{
		seq:        map[string]int64{},
		units:      map[domain.UnitKind]map[int64]domain.Unit{},
		keys:       map[domain.UnitKind][]domain.RegistrationKey{},
		keyIndex:   map[domain.UnitKind]map[string]int{},
		users:      map[int64]domain.User{},
		emails:     map[string]int64{},
		public:     map[int64]domain.PublicProfile{},
		companies:  map[int64]domain.CompanyProfile{},
		properties: map[int64]domain.Property{},
	}
	for _, kind := range domain.UnitKinds {
		t.units[kind] = map[int64]domain.Unit{}
		t.keyIndex[kind] = map[string]int{}
	}
	return t
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.seq {
		c.seq[k] = v
	}
	for kind, units := range t.units {
		for id, u := range units {
			c.units[kind][id] = u
		}
	}
	for kind, keys := range t.keys {
		c.keys[kind] = append([]domain.RegistrationKey(nil), keys...)
	}
	for kind, idx := range t.keyIndex {
		for k, v := range idx {
			c.keyIndex[kind][k] = v
		}
	}
	for id, u := range t.users {
		c.users[id] = u
	}
	for email, id := range t.emails {
		c.emails[email] = id
	}
	for id, p := range t.public {
		c.public[id] = p
	}
	for id, p := range t.companies {
		c.companies[id] = p
	}
	for id, p := range t.properties {
		c.properties[id] = p
	}
	return c
}

func (t *tables) next(name string) int64 {
	t.seq[name]++
	return t.seq[name]
}

// RunInTx runs fn against a copy of the tables and publishes the copy only
// when fn returns nil. An error or panic leaves the store untouched. Nested
// calls join the enclosing transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(store repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.txMu == nil {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	view := &Store{data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(view); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = view.data
	s.mu.Unlock()
	return nil
}

// lockWrite takes the locks a write needs and returns the release func.
func (s *Store) lockWrite() func() {
	if s.txMu != nil {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if s.txMu != nil {
			s.txMu.Unlock()
		}
	}
}

func (s *Store) Units() repository.UnitRepository                       { return unitRepo{s} }
func (s *Store) RegistrationKeys() repository.RegistrationKeyRepository { return keyRepo{s} }
func (s *Store) Users() repository.UserRepository                       { return userRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository                 { return profileRepo{s} }
func (s *Store) Properties() repository.PropertyRepository              { return propertyRepo{s} }

type unitRepo struct{ s *Store }

func (r unitRepo) Create(_ context.Context, unit *domain.Unit) error {
	if !unit.Kind.Valid() {
		return errUnknownKind(unit.Kind)
	}
	defer r.s.lockWrite()()
	now := time.Now()
	unit.ID = r.s.data.next(string(unit.Kind) + "_units")
	unit.CreatedAt, unit.UpdatedAt = now, now
	r.s.data.units[unit.Kind][unit.ID] = *unit
	return nil
}

func (r unitRepo) GetByID(_ context.Context, kind domain.UnitKind, id int64) (*domain.Unit, error) {
	if !kind.Valid() {
		return nil, errUnknownKind(kind)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	unit, ok := r.s.data.units[kind][id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &unit, nil
}

func (r unitRepo) GetForUpdate(ctx context.Context, kind domain.UnitKind, id int64) (*domain.Unit, error) {
	return r.GetByID(ctx, kind, id)
}

func (r unitRepo) ListByProperty(_ context.Context, kind domain.UnitKind, propertyID int64) ([]domain.Unit, error) {
	return r.filter(kind, func(u domain.Unit) bool { return u.PropertyID == propertyID })
}

func (r unitRepo) ListByOccupant(_ context.Context, kind domain.UnitKind, occupantID int64) ([]domain.Unit, error) {
	return r.filter(kind, func(u domain.Unit) bool { return u.OccupantID != nil && *u.OccupantID == occupantID })
}

func (r unitRepo) filter(kind domain.UnitKind, keep func(domain.Unit) bool) ([]domain.Unit, error) {
	if !kind.Valid() {
		return nil, errUnknownKind(kind)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Unit
	for _, u := range r.s.data.units[kind] {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r unitRepo) Bind(_ context.Context, kind domain.UnitKind, id, occupantID int64) error {
	if !kind.Valid() {
		return errUnknownKind(kind)
	}
	defer r.s.lockWrite()()
	unit, ok := r.s.data.units[kind][id]
	if !ok {
		return pgx.ErrNoRows
	}
	if unit.OccupantID != nil {
		return repository.ErrUnitOccupied
	}
	occupant := occupantID
	unit.OccupantID = &occupant
	unit.UpdatedAt = time.Now()
	r.s.data.units[kind][id] = unit
	return nil
}

type keyRepo struct{ s *Store }

func (r keyRepo) Insert(_ context.Context, key *domain.RegistrationKey) error {
	if !key.Kind.Valid() {
		return errUnknownKind(key.Kind)
	}
	defer r.s.lockWrite()()
	if _, exists := r.s.data.keyIndex[key.Kind][key.Key]; exists {
		return repository.ErrDuplicateKey
	}
	key.CreatedAt = time.Now()
	r.s.data.keyIndex[key.Kind][key.Key] = len(r.s.data.keys[key.Kind])
	r.s.data.keys[key.Kind] = append(r.s.data.keys[key.Kind], *key)
	return nil
}

func (r keyRepo) FindByKey(_ context.Context, kind domain.UnitKind, key string) (*domain.RegistrationKey, error) {
	if !kind.Valid() {
		return nil, errUnknownKind(kind)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	idx, ok := r.s.data.keyIndex[kind][key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	record := r.s.data.keys[kind][idx]
	return &record, nil
}

func (r keyRepo) List(_ context.Context, kind domain.UnitKind, scope domain.KeyScope) ([]domain.RegistrationKey, error) {
	if !kind.Valid() {
		return nil, errUnknownKind(kind)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.RegistrationKey
	for _, k := range r.s.data.keys[kind] {
		if scope == domain.KeyScopeActive && !k.IsActive {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (r keyRepo) Deactivate(_ context.Context, kind domain.UnitKind, key string) error {
	if !kind.Valid() {
		return errUnknownKind(kind)
	}
	defer r.s.lockWrite()()
	idx, ok := r.s.data.keyIndex[kind][key]
	if !ok {
		return pgx.ErrNoRows
	}
	r.s.data.keys[kind][idx].IsActive = false
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	defer r.s.lockWrite()()
	if _, exists := r.s.data.emails[user.Email]; exists {
		return repository.ErrDuplicateKey
	}
	user.ID = r.s.data.next("users")
	user.CreatedAt = time.Now()
	r.s.data.users[user.ID] = *user
	r.s.data.emails[user.Email] = user.ID
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.data.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	id, ok := r.s.data.emails[email]
	r.s.mu.RUnlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

type profileRepo struct{ s *Store }

func (r profileRepo) CreatePublic(_ context.Context, profile *domain.PublicProfile) error {
	defer r.s.lockWrite()()
	if _, exists := r.s.data.public[profile.UserID]; exists {
		return repository.ErrDuplicateKey
	}
	r.s.data.public[profile.UserID] = *profile
	return nil
}

func (r profileRepo) CreateCompany(_ context.Context, profile *domain.CompanyProfile) error {
	defer r.s.lockWrite()()
	if _, exists := r.s.data.companies[profile.UserID]; exists {
		return repository.ErrDuplicateKey
	}
	r.s.data.companies[profile.UserID] = *profile
	return nil
}

func (r profileRepo) GetPublic(_ context.Context, userID int64) (*domain.PublicProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	profile, ok := r.s.data.public[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &profile, nil
}

func (r profileRepo) GetCompany(_ context.Context, userID int64) (*domain.CompanyProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	profile, ok := r.s.data.companies[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &profile, nil
}

type propertyRepo struct{ s *Store }

func (r propertyRepo) Create(_ context.Context, property *domain.Property) error {
	defer r.s.lockWrite()()
	property.ID = r.s.data.next("properties")
	property.CreatedAt = time.Now()
	r.s.data.properties[property.ID] = *property
	return nil
}

func (r propertyRepo) GetByID(_ context.Context, id int64) (*domain.Property, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	property, ok := r.s.data.properties[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &property, nil
}

func (r propertyRepo) ListByCompany(_ context.Context, companyID int64) ([]domain.Property, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Property
	for _, p := range r.s.data.properties {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func errUnknownKind(kind domain.UnitKind) error {
	return fmt.Errorf("unknown unit kind %q", kind)
}
