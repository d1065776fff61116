package service

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// Registration workflow failures. Handlers map each to a response.
var (
	ErrUnitNotFound            = errors.New("unit not found")
	ErrCompanyNotFound         = errors.New("company not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrUserNotPublic           = errors.New("user is not a public user")
	ErrUnitAlreadyBound        = errors.New("unit already bound")
	ErrUnitNotOwnedByCompany   = errors.New("unit does not belong to company")
	ErrKeyNotFound             = errors.New("registration key not found")
	ErrKeyNotAuthorizedForUser = errors.New("registration key not valid for user")
	ErrKeyInactive             = errors.New("registration key inactive")
	ErrProfileNotFound         = errors.New("public profile not found")
	ErrDuplicateKey            = errors.New("registration key collision")
	ErrPropertyNotFound        = errors.New("property not found")
	ErrPropertyNotOwned        = errors.New("property does not belong to company")
	ErrNoUnits                 = errors.New("no units bound to profile")
	ErrEmailTaken              = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidRole             = errors.New("invalid role")
)

// notFoundAs replaces pgx.ErrNoRows with the given sentinel and passes other errors through.
func notFoundAs(err, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}
