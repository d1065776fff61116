package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/condohub/property-service/internal/api/dto"
	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/service"
	apperrors "github.com/condohub/property-service/pkg/util/errorutil"
)

// PublicProfileHandler exposes occupant-side endpoints.
type PublicProfileHandler struct {
	registration *service.RegistrationService
	properties   *service.PropertyService
}

// NewPublicProfileHandler constructs handler.
func NewPublicProfileHandler(registration *service.RegistrationService, properties *service.PropertyService) *PublicProfileHandler {
	return &PublicProfileHandler{registration: registration, properties: properties}
}

// Register returns the PATCH /public-profile/register-{kind} handler.
func (h *PublicProfileHandler) Register(kind domain.UnitKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := requirePrincipal(c)
		if err != nil {
			return err
		}
		var req dto.RedeemKeyRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if err := dto.Validate(req); err != nil {
			return err
		}
		userID := principal.User.ID
		if req.User != nil && *req.User != userID {
			return apperrors.NewForbidden("cannot redeem keys on behalf of another user")
		}

		if _, err := h.registration.Redeem(c.UserContext(), kind, req.Key, userID); err != nil {
			return redeemError(kind, err)
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

// Units returns the GET /public-profile/:user_id/{kind}-units handler.
func (h *PublicProfileHandler) Units(kind domain.UnitKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := idParam(c, "user_id")
		if err != nil {
			return err
		}
		units, err := h.properties.ListOccupantUnits(c.UserContext(), kind, userID)
		if err != nil {
			return lookupError(kind, err)
		}
		return c.JSON(dto.NewUnitResponses(units))
	}
}
