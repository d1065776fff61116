package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/condohub/property-service/internal/auth"
	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/service"
	apperrors "github.com/condohub/property-service/pkg/util/errorutil"
)

const (
	msgUserNotFound      = "There is no user with the given email"
	msgUserNotPublic     = "The user associated with this email is not a public user"
	msgCompanyNotFound   = "There is no Company Profile associated with the given id"
	msgUnitInUse         = "this unit is already in use."
	msgKeyNotValidForYou = "This registration key is not valid for you"
)

func unitNotFoundMessage(kind domain.UnitKind) string {
	return fmt.Sprintf("There is no %s unit associated with the given id", kind)
}

// issueError maps issuance failures. Lookups are client errors; a bound unit is a conflict.
func issueError(kind domain.UnitKind, err error) error {
	switch {
	case errors.Is(err, service.ErrUnitNotFound):
		return apperrors.NewBadRequest("UNIT_NOT_FOUND", unitNotFoundMessage(kind))
	case errors.Is(err, service.ErrCompanyNotFound):
		return apperrors.NewBadRequest("COMPANY_NOT_FOUND", msgCompanyNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		return apperrors.NewBadRequest("USER_NOT_FOUND", msgUserNotFound)
	case errors.Is(err, service.ErrUserNotPublic):
		return apperrors.NewBadRequest("USER_NOT_PUBLIC", msgUserNotPublic)
	case errors.Is(err, service.ErrUnitNotOwnedByCompany):
		return apperrors.NewBadRequest("UNIT_NOT_OWNED_BY_COMPANY", "The unit does not belong to a property of this company")
	case errors.Is(err, service.ErrUnitAlreadyBound):
		return apperrors.NewDomainError("UNIT_ALREADY_BOUND", msgUnitInUse, fiber.StatusConflict, nil)
	}
	return apperrors.MapError(err)
}

// redeemError maps redemption failures. Lookups are not-found errors.
func redeemError(kind domain.UnitKind, err error) error {
	switch {
	case errors.Is(err, service.ErrKeyNotFound):
		return apperrors.NewNotFoundMessage("There is no registration key matching the given key")
	case errors.Is(err, service.ErrUserNotFound):
		return apperrors.NewNotFoundMessage("There is no user with the given id")
	case errors.Is(err, service.ErrProfileNotFound):
		return apperrors.NewNotFoundMessage("There is no public profile associated with this user")
	case errors.Is(err, service.ErrUnitNotFound):
		return apperrors.NewNotFoundMessage(unitNotFoundMessage(kind))
	case errors.Is(err, service.ErrKeyNotAuthorizedForUser):
		return apperrors.NewBadRequest("KEY_NOT_VALID_FOR_USER", msgKeyNotValidForYou)
	case errors.Is(err, service.ErrKeyInactive):
		return apperrors.NewBadRequest("KEY_INACTIVE", "This registration key is no longer active")
	case errors.Is(err, service.ErrUnitAlreadyBound):
		return apperrors.NewDomainError("UNIT_ALREADY_BOUND", msgUnitInUse, fiber.StatusConflict, nil)
	}
	return apperrors.MapError(err)
}

// lookupError maps errors of the property, profile and finance endpoints.
func lookupError(kind domain.UnitKind, err error) error {
	switch {
	case errors.Is(err, service.ErrCompanyNotFound):
		return apperrors.NewNotFoundMessage(msgCompanyNotFound)
	case errors.Is(err, service.ErrPropertyNotFound):
		return apperrors.NewNotFoundMessage("There is no property associated with the given id")
	case errors.Is(err, service.ErrPropertyNotOwned):
		return apperrors.NewForbidden("property belongs to another company")
	case errors.Is(err, service.ErrProfileNotFound):
		return apperrors.NewNotFoundMessage("User not found")
	case errors.Is(err, service.ErrNoUnits):
		return apperrors.NewNotFoundMessage(fmt.Sprintf("No %s units found for this user", kind))
	case errors.Is(err, service.ErrKeyNotFound):
		return apperrors.NewNotFoundMessage("There is no registration key matching the given key")
	}
	return apperrors.MapError(err)
}

func kindParam(c *fiber.Ctx) (domain.UnitKind, error) {
	kind, err := domain.ParseUnitKind(c.Params("kind"))
	if err != nil {
		return "", apperrors.NewNotFound("unit kind", map[string]any{"kind": c.Params("kind")})
	}
	return kind, nil
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, nil)
	}
	return id, nil
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

// actsForCompany reports whether the caller may act as the given company.
func actsForCompany(user *domain.User, companyID int64) bool {
	return user.Role == domain.RoleAdmin || (user.Role == domain.RoleCompany && user.ID == companyID)
}
