package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/condohub/property-service/internal/domain"
)

// UnitRepository persists condo, parking and storage units. Each kind lives in its own table.
type UnitRepository interface {
	Create(ctx context.Context, unit *domain.Unit) error
	GetByID(ctx context.Context, kind domain.UnitKind, id int64) (*domain.Unit, error)
	GetForUpdate(ctx context.Context, kind domain.UnitKind, id int64) (*domain.Unit, error)
	ListByProperty(ctx context.Context, kind domain.UnitKind, propertyID int64) ([]domain.Unit, error)
	ListByOccupant(ctx context.Context, kind domain.UnitKind, occupantID int64) ([]domain.Unit, error)
	// Bind sets the occupant only when the unit is vacant. It returns ErrUnitOccupied otherwise.
	Bind(ctx context.Context, kind domain.UnitKind, id, occupantID int64) error
}

type unitRepository struct {
	db DBTX
}

// NewUnitRepository returns a Postgres-backed implementation.
func NewUnitRepository(db DBTX) UnitRepository {
	return &unitRepository{db: db}
}

func unitTable(kind domain.UnitKind) (string, error) {
	switch kind {
	case domain.UnitKindCondo:
		return "condo_units", nil
	case domain.UnitKindParking:
		return "parking_units", nil
	case domain.UnitKindStorage:
		return "storage_units", nil
	}
	return "", fmt.Errorf("unknown unit kind %q", kind)
}

const unitColumns = `id, property_id, public_profile_id, location, size_hundredths, purchase_price_cents,
               rent_price_cents, operational_expense_cents, extra_information, image, created_at, updated_at`

func (r *unitRepository) Create(ctx context.Context, unit *domain.Unit) error {
	table, err := unitTable(unit.Kind)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO ` + table + ` (property_id, location, size_hundredths, purchase_price_cents, rent_price_cents,
            operational_expense_cents, extra_information, image)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		unit.PropertyID,
		unit.Location,
		unit.Size,
		unit.PurchasePrice,
		unit.RentPrice,
		unit.OperationalExpense,
		unit.ExtraInformation,
		unit.ImageRef,
	).Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
}

func (r *unitRepository) GetByID(ctx context.Context, kind domain.UnitKind, id int64) (*domain.Unit, error) {
	return r.fetchSingle(ctx, kind, "WHERE id=$1", id)
}

func (r *unitRepository) GetForUpdate(ctx context.Context, kind domain.UnitKind, id int64) (*domain.Unit, error) {
	return r.fetchSingle(ctx, kind, "WHERE id=$1 FOR UPDATE", id)
}

func (r *unitRepository) ListByProperty(ctx context.Context, kind domain.UnitKind, propertyID int64) ([]domain.Unit, error) {
	return r.list(ctx, kind, "WHERE property_id=$1 ORDER BY id", propertyID)
}

func (r *unitRepository) ListByOccupant(ctx context.Context, kind domain.UnitKind, occupantID int64) ([]domain.Unit, error) {
	return r.list(ctx, kind, "WHERE public_profile_id=$1 ORDER BY id", occupantID)
}

func (r *unitRepository) Bind(ctx context.Context, kind domain.UnitKind, id, occupantID int64) error {
	table, err := unitTable(kind)
	if err != nil {
		return err
	}
	query := `
        UPDATE ` + table + ` SET public_profile_id=$1, updated_at=NOW()
        WHERE id=$2 AND public_profile_id IS NULL`

	cmd, err := r.db.Exec(ctx, query, occupantID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, kind, id); err != nil {
		return err
	}
	return ErrUnitOccupied
}

func (r *unitRepository) fetchSingle(ctx context.Context, kind domain.UnitKind, where string, arg any) (*domain.Unit, error) {
	table, err := unitTable(kind)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + unitColumns + " FROM " + table + " " + where
	unit, err := scanUnit(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	unit.Kind = kind
	return unit, nil
}

func (r *unitRepository) list(ctx context.Context, kind domain.UnitKind, where string, arg any) ([]domain.Unit, error) {
	table, err := unitTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, "SELECT "+unitColumns+" FROM "+table+" "+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		unit.Kind = kind
		units = append(units, *unit)
	}
	return units, rows.Err()
}

func scanUnit(row pgx.Row) (*domain.Unit, error) {
	var unit domain.Unit
	if err := row.Scan(
		&unit.ID,
		&unit.PropertyID,
		&unit.OccupantID,
		&unit.Location,
		&unit.Size,
		&unit.PurchasePrice,
		&unit.RentPrice,
		&unit.OperationalExpense,
		&unit.ExtraInformation,
		&unit.ImageRef,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &unit, nil
}
