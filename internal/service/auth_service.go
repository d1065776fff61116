package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/condohub/property-service/internal/auth"
	"github.com/condohub/property-service/internal/config"
	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/repository"
)

// AuthService coordinates registration, login and logout.
type AuthService struct {
	store      repository.Store
	tx         repository.Transactor
	tokenMgr   *auth.TokenManager
	revoked    auth.RevocationList
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Store       repository.Store
	Transactor  repository.Transactor
	Revocations auth.RevocationList
}

// RegisterInput describes a new account and its profile.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        domain.Role
	ProfileType domain.PublicProfileType
	Address     string
	City        string
	Province    string
	PostalCode  string
	PhoneNumber string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		store:      deps.Store,
		tx:         deps.Transactor,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		revoked:    deps.Revocations,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates the user and its role profile in one transaction.
// Administrator accounts cannot be self-registered.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, time.Time, error) {
	if !in.Role.Valid() || in.Role == domain.RoleAdmin {
		return nil, "", time.Time{}, ErrInvalidRole
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Email:        domain.NormalizeEmail(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
		PasswordHash: hash,
		IsActive:     true,
	}
	err = s.tx.RunInTx(ctx, func(store repository.Store) error {
		if err := store.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrEmailTaken
			}
			return err
		}
		switch user.Role {
		case domain.RolePublic:
			profileType := in.ProfileType
			if profileType == "" {
				profileType = domain.PublicProfileOwner
			}
			return store.Profiles().CreatePublic(ctx, &domain.PublicProfile{
				UserID:      user.ID,
				Type:        profileType,
				Address:     in.Address,
				City:        in.City,
				Province:    in.Province,
				PostalCode:  in.PostalCode,
				PhoneNumber: in.PhoneNumber,
			})
		case domain.RoleCompany:
			return store.Profiles().CreateCompany(ctx, &domain.CompanyProfile{
				UserID:      user.ID,
				Address:     in.Address,
				City:        in.City,
				Province:    in.Province,
				PostalCode:  in.PostalCode,
				PhoneNumber: in.PhoneNumber,
			})
		}
		return nil
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, meta, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, meta.ExpiresAt, nil
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.store.Users().GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if !user.IsActive {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, meta, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, meta.ExpiresAt, nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
