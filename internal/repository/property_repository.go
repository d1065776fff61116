package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/condohub/property-service/internal/domain"
)

// PropertyRepository persists properties owned by companies.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	ListByCompany(ctx context.Context, companyID int64) ([]domain.Property, error)
}

type propertyRepository struct {
	db DBTX
}

// NewPropertyRepository constructs repository.
func NewPropertyRepository(db DBTX) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	const query = `
        INSERT INTO properties (company_id, name, address, city, province, postal_code, fee_rate_cents, image)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		property.CompanyID,
		property.Name,
		property.Address,
		property.City,
		property.Province,
		property.PostalCode,
		property.FeeRate,
		property.ImageRef,
	).Scan(&property.ID, &property.CreatedAt)
}

func (r *propertyRepository) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	const query = `
        SELECT id, company_id, name, address, city, province, postal_code, fee_rate_cents, image, created_at
        FROM properties WHERE id=$1`
	return scanProperty(r.db.QueryRow(ctx, query, id))
}

func (r *propertyRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Property, error) {
	const query = `
        SELECT id, company_id, name, address, city, province, postal_code, fee_rate_cents, image, created_at
        FROM properties WHERE company_id=$1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *property)
	}
	return properties, rows.Err()
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var property domain.Property
	if err := row.Scan(
		&property.ID,
		&property.CompanyID,
		&property.Name,
		&property.Address,
		&property.City,
		&property.Province,
		&property.PostalCode,
		&property.FeeRate,
		&property.ImageRef,
		&property.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &property, nil
}
