package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/condohub/property-service/internal/api/dto"
	"github.com/condohub/property-service/internal/service"
	apperrors "github.com/condohub/property-service/pkg/util/errorutil"
)

// RegistrationKeysHandler exposes company-side registration key endpoints.
type RegistrationKeysHandler struct {
	registration *service.RegistrationService
}

// NewRegistrationKeysHandler constructs handler.
func NewRegistrationKeysHandler(registration *service.RegistrationService) *RegistrationKeysHandler {
	return &RegistrationKeysHandler{registration: registration}
}

// Issue handles POST /registration-keys/:kind.
func (h *RegistrationKeysHandler) Issue(c *fiber.Ctx) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.IssueKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if !actsForCompany(principal.User, req.Company) {
		return apperrors.NewForbidden("cannot issue keys for another company")
	}

	key, err := h.registration.Issue(c.UserContext(), service.IssueInput{
		Kind:      kind,
		UnitID:    req.Unit,
		CompanyID: req.Company,
		Email:     req.User,
		IsOwner:   req.IsOwner,
		Actor:     principal.User,
	})
	if err != nil {
		return issueError(kind, err)
	}
	return c.JSON(dto.NewRegistrationKeyResponse(key))
}

// List handles GET /registration-keys/:kind.
func (h *RegistrationKeysHandler) List(c *fiber.Ctx) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	keys, err := h.registration.ListKeys(c.UserContext(), kind)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.RegistrationKeyResponse, 0, len(keys))
	for i := range keys {
		items = append(items, dto.NewRegistrationKeyResponse(&keys[i]))
	}
	return c.JSON(items)
}

// Deactivate handles PATCH /registration-keys/:kind/:key/deactivate.
func (h *RegistrationKeysHandler) Deactivate(c *fiber.Ctx) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.registration.DeactivateKey(c.UserContext(), kind, c.Params("key"), principal.User); err != nil {
		return lookupError(kind, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
