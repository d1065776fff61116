package repository

import (
	"context"

	"github.com/condohub/property-service/internal/domain"
)

// ProfileRepository manages the role specific profiles keyed by user id.
type ProfileRepository interface {
	CreatePublic(ctx context.Context, profile *domain.PublicProfile) error
	CreateCompany(ctx context.Context, profile *domain.CompanyProfile) error
	GetPublic(ctx context.Context, userID int64) (*domain.PublicProfile, error)
	GetCompany(ctx context.Context, userID int64) (*domain.CompanyProfile, error)
}

type profileRepository struct {
	db DBTX
}

// NewProfileRepository constructs repository.
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) CreatePublic(ctx context.Context, profile *domain.PublicProfile) error {
	const query = `
        INSERT INTO public_profiles (user_id, type, address, city, province, postal_code, phone_number)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.db.Exec(ctx, query,
		profile.UserID,
		profile.Type,
		profile.Address,
		profile.City,
		profile.Province,
		profile.PostalCode,
		profile.PhoneNumber,
	)
	return err
}

func (r *profileRepository) CreateCompany(ctx context.Context, profile *domain.CompanyProfile) error {
	const query = `
        INSERT INTO company_profiles (user_id, address, city, province, postal_code, phone_number)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.Exec(ctx, query,
		profile.UserID,
		profile.Address,
		profile.City,
		profile.Province,
		profile.PostalCode,
		profile.PhoneNumber,
	)
	return err
}

func (r *profileRepository) GetPublic(ctx context.Context, userID int64) (*domain.PublicProfile, error) {
	const query = `
        SELECT user_id, type, address, city, province, postal_code, phone_number
        FROM public_profiles WHERE user_id=$1`
	var profile domain.PublicProfile
	if err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Type,
		&profile.Address,
		&profile.City,
		&profile.Province,
		&profile.PostalCode,
		&profile.PhoneNumber,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetCompany(ctx context.Context, userID int64) (*domain.CompanyProfile, error) {
	const query = `
        SELECT user_id, address, city, province, postal_code, phone_number
        FROM company_profiles WHERE user_id=$1`
	var profile domain.CompanyProfile
	if err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Address,
		&profile.City,
		&profile.Province,
		&profile.PostalCode,
		&profile.PhoneNumber,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
