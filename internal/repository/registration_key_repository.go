package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/condohub/property-service/internal/domain"
)

// RegistrationKeyRepository is the append-only key store, one table per unit kind.
type RegistrationKeyRepository interface {
	Insert(ctx context.Context, key *domain.RegistrationKey) error
	FindByKey(ctx context.Context, kind domain.UnitKind, key string) (*domain.RegistrationKey, error)
	List(ctx context.Context, kind domain.UnitKind, scope domain.KeyScope) ([]domain.RegistrationKey, error)
	Deactivate(ctx context.Context, kind domain.UnitKind, key string) error
}

type registrationKeyRepository struct {
	db DBTX
}

// NewRegistrationKeyRepository constructs repository.
func NewRegistrationKeyRepository(db DBTX) RegistrationKeyRepository {
	return &registrationKeyRepository{db: db}
}

func keyTable(kind domain.UnitKind) (string, error) {
	switch kind {
	case domain.UnitKindCondo:
		return "condo_registration_keys", nil
	case domain.UnitKindParking:
		return "parking_registration_keys", nil
	case domain.UnitKindStorage:
		return "storage_registration_keys", nil
	}
	return "", fmt.Errorf("unknown unit kind %q", kind)
}

func (r *registrationKeyRepository) Insert(ctx context.Context, key *domain.RegistrationKey) error {
	table, err := keyTable(key.Kind)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO ` + table + ` (key, public_profile_id, unit_id, is_owner, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`

	err = r.db.QueryRow(ctx, query,
		key.Key,
		key.OccupantID,
		key.UnitID,
		key.IsOwner,
		key.IsActive,
	).Scan(&key.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *registrationKeyRepository) FindByKey(ctx context.Context, kind domain.UnitKind, key string) (*domain.RegistrationKey, error) {
	table, err := keyTable(kind)
	if err != nil {
		return nil, err
	}
	query := `
        SELECT key, public_profile_id, unit_id, is_owner, is_active, created_at
        FROM ` + table + ` WHERE key=$1`

	record, err := scanKey(r.db.QueryRow(ctx, query, key))
	if err != nil {
		return nil, err
	}
	record.Kind = kind
	return record, nil
}

func (r *registrationKeyRepository) List(ctx context.Context, kind domain.UnitKind, scope domain.KeyScope) ([]domain.RegistrationKey, error) {
	table, err := keyTable(kind)
	if err != nil {
		return nil, err
	}
	query := `
        SELECT key, public_profile_id, unit_id, is_owner, is_active, created_at
        FROM ` + table
	if scope == domain.KeyScopeActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.RegistrationKey
	for rows.Next() {
		record, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		record.Kind = kind
		keys = append(keys, *record)
	}
	return keys, rows.Err()
}

func (r *registrationKeyRepository) Deactivate(ctx context.Context, kind domain.UnitKind, key string) error {
	table, err := keyTable(kind)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE `+table+` SET is_active=FALSE WHERE key=$1`, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanKey(row pgx.Row) (*domain.RegistrationKey, error) {
	var key domain.RegistrationKey
	if err := row.Scan(
		&key.Key,
		&key.OccupantID,
		&key.UnitID,
		&key.IsOwner,
		&key.IsActive,
		&key.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &key, nil
}
