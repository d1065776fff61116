package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/condohub/property-service/internal/api/dto"
	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/service"
	apperrors "github.com/condohub/property-service/pkg/util/errorutil"
)

// PropertiesHandler manages properties and their units.
type PropertiesHandler struct {
	properties *service.PropertyService
	finance    *service.FinanceService
}

// NewPropertiesHandler constructs handler.
func NewPropertiesHandler(properties *service.PropertyService, finance *service.FinanceService) *PropertiesHandler {
	return &PropertiesHandler{properties: properties, finance: finance}
}

// CreateProperty handles POST /properties for the calling company.
func (h *PropertiesHandler) CreateProperty(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	property, err := h.properties.CreateProperty(c.UserContext(), principal.User.ID, service.PropertyInput{
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		FeeRate:    req.FeeRateCents,
	})
	if err != nil {
		return lookupError("", err)
	}
	return c.Status(http.StatusCreated).JSON(dto.NewPropertyResponse(property))
}

// ListCompanyProperties handles GET /company-profile/:company_id/properties.
func (h *PropertiesHandler) ListCompanyProperties(c *fiber.Ctx) error {
	companyID, err := idParam(c, "company_id")
	if err != nil {
		return err
	}
	properties, err := h.properties.ListProperties(c.UserContext(), companyID)
	if err != nil {
		return lookupError("", err)
	}
	items := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		items = append(items, dto.NewPropertyResponse(&properties[i]))
	}
	return c.JSON(items)
}

// CreateUnit returns the POST /properties/:property_id/{kind}-units handler.
func (h *PropertiesHandler) CreateUnit(kind domain.UnitKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := requirePrincipal(c)
		if err != nil {
			return err
		}
		propertyID, err := idParam(c, "property_id")
		if err != nil {
			return err
		}
		var req dto.CreateUnitRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if err := dto.Validate(req); err != nil {
			return err
		}
		companyID := principal.User.ID
		if principal.User.Role == domain.RoleAdmin {
			companyID = 0
		}
		unit, err := h.properties.CreateUnit(c.UserContext(), companyID, kind, service.UnitInput{
			PropertyID:         propertyID,
			Location:           req.Location,
			Size:               req.SizeHundredths,
			PurchasePrice:      req.PurchasePriceCents,
			RentPrice:          req.RentPriceCents,
			OperationalExpense: req.OperationalExpenseCents,
			ExtraInformation:   req.ExtraInformation,
		})
		if err != nil {
			return lookupError(kind, err)
		}
		return c.Status(http.StatusCreated).JSON(dto.NewUnitResponse(unit))
	}
}

// ListUnits returns the GET /properties/:property_id/{kind}-units handler.
func (h *PropertiesHandler) ListUnits(kind domain.UnitKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		propertyID, err := idParam(c, "property_id")
		if err != nil {
			return err
		}
		units, err := h.properties.ListPropertyUnits(c.UserContext(), kind, propertyID)
		if err != nil {
			return lookupError(kind, err)
		}
		return c.JSON(dto.NewUnitResponses(units))
	}
}

// FinanceReport handles GET /company-profile/:company_id/finance-report.
func (h *PropertiesHandler) FinanceReport(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	companyID, err := idParam(c, "company_id")
	if err != nil {
		return err
	}
	if !actsForCompany(principal.User, companyID) {
		return apperrors.NewForbidden("cannot view another company's finances")
	}
	report, err := h.finance.CompanyReport(c.UserContext(), companyID)
	if err != nil {
		return lookupError("", err)
	}
	return c.JSON(dto.NewFinanceReportResponse(report))
}
