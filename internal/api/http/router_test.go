package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/condohub/property-service/internal/api/http/handlers"
	"github.com/condohub/property-service/internal/auth"
	"github.com/condohub/property-service/internal/config"
	"github.com/condohub/property-service/internal/domain"
	"github.com/condohub/property-service/internal/events"
	"github.com/condohub/property-service/internal/notify"
	"github.com/condohub/property-service/internal/observability"
	"github.com/condohub/property-service/internal/repository/memory"
	"github.com/condohub/property-service/internal/service"
)

type APISuite struct {
	suite.Suite
	ctx    context.Context
	app    *fiber.App
	store  *memory.Store
	tokens *auth.TokenManager

	occupant *domain.User
	other    *domain.User
	company  *domain.User
	unit     *domain.Unit
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	cfg := config.Config{
		Auth:         config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 15, BcryptCost: bcrypt.MinCost},
		Notification: config.NotificationConfig{TimeoutSeconds: 1},
		Registration: config.RegistrationConfig{ListActiveOnly: true},
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	revoked := auth.NewMemoryRevocationList()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg, service.AuthDependencies{Store: s.store, Transactor: s.store, Revocations: revoked})
	registration := service.NewRegistrationService(cfg, service.RegistrationDependencies{
		Store:      s.store,
		Transactor: s.store,
		Notifier:   notify.NewLogNotifier(logger),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	properties := service.NewPropertyService(s.store)
	s.tokens = authService.TokenManager()

	s.app = fiber.New()
	RegisterMiddlewares(s.app, logger, metrics, 0)
	RegisterRoutes(s.app, RouteConfig{
		Health:           handlers.NewHealthHandler("property-service", "test", nil),
		Users:            handlers.NewUsersHandler(authService),
		RegistrationKeys: handlers.NewRegistrationKeysHandler(registration),
		PublicProfiles:   handlers.NewPublicProfileHandler(registration, properties),
		Properties:       handlers.NewPropertiesHandler(properties, service.NewFinanceService(s.store)),
		AuthMiddleware:   auth.NewAuthMiddleware(s.tokens, s.store.Users(), revoked),
		MetricsRegistry:  metrics.Registry,
	})

	s.occupant = s.seedUser("a@x.com", domain.RolePublic)
	s.other = s.seedUser("b@x.com", domain.RolePublic)
	s.company = s.seedUser("company@x.com", domain.RoleCompany)
	s.Require().Equal(int64(3), s.company.ID)

	property := &domain.Property{CompanyID: s.company.ID, Name: "Tower", FeeRate: 100}
	s.Require().NoError(s.store.Properties().Create(s.ctx, property))
	for i := 0; i < 7; i++ {
		unit := &domain.Unit{Kind: domain.UnitKindCondo, PropertyID: property.ID, Location: "10" + string(rune('0'+i))}
		s.Require().NoError(s.store.Units().Create(s.ctx, unit))
		s.unit = unit
	}
	s.Require().Equal(int64(7), s.unit.ID)
}

func (s *APISuite) seedUser(email string, role domain.Role) *domain.User {
	user := &domain.User{Email: email, Role: role, IsActive: true}
	s.Require().NoError(s.store.Users().Create(s.ctx, user))
	switch role {
	case domain.RolePublic:
		s.Require().NoError(s.store.Profiles().CreatePublic(s.ctx, &domain.PublicProfile{UserID: user.ID, Type: domain.PublicProfileOwner}))
	case domain.RoleCompany:
		s.Require().NoError(s.store.Profiles().CreateCompany(s.ctx, &domain.CompanyProfile{UserID: user.ID}))
	}
	return user
}

func (s *APISuite) tokenFor(user *domain.User) string {
	token, _, err := s.tokens.GenerateToken(user.ID, user.Role)
	s.Require().NoError(err)
	return token
}

func (s *APISuite) do(method, path, token string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, payload
}

func (s *APISuite) details(payload []byte) string {
	var body struct {
		Details string `json:"details"`
	}
	s.Require().NoError(json.Unmarshal(payload, &body))
	return body.Details
}

func (s *APISuite) issue(unitID int64, email string) (int, []byte) {
	return s.do(fiber.MethodPost, "/registration-keys/condo", s.tokenFor(s.company), fiber.Map{
		"unit":    unitID,
		"company": s.company.ID,
		"user":    email,
	})
}

func (s *APISuite) issuedKey(unitID int64, email string) string {
	status, payload := s.issue(unitID, email)
	s.Require().Equal(fiber.StatusOK, status, string(payload))
	var body struct {
		Key string `json:"key"`
	}
	s.Require().NoError(json.Unmarshal(payload, &body))
	return body.Key
}

func (s *APISuite) redeem(user *domain.User, key string) (int, []byte) {
	return s.do(fiber.MethodPatch, "/public-profile/register-condo", s.tokenFor(user), fiber.Map{"key": key, "user": user.ID})
}

func (s *APISuite) TestIssueAndRedeemScenario() {
	status, payload := s.issue(7, "a@x.com")
	s.Require().Equal(fiber.StatusOK, status, string(payload))

	var key struct {
		Key      string `json:"key"`
		User     int64  `json:"user"`
		Unit     int64  `json:"unit"`
		IsOwner  bool   `json:"is_owner"`
		IsActive bool   `json:"is_active"`
	}
	s.Require().NoError(json.Unmarshal(payload, &key))
	s.Len(key.Key, 64)
	s.Equal(s.occupant.ID, key.User)
	s.Equal(int64(7), key.Unit)
	s.True(key.IsOwner)
	s.True(key.IsActive)

	unit, err := s.store.Units().GetByID(s.ctx, domain.UnitKindCondo, 7)
	s.Require().NoError(err)
	s.True(unit.Vacant())

	status, payload = s.redeem(s.occupant, key.Key)
	s.Require().Equal(fiber.StatusOK, status, string(payload))
	s.Empty(payload)

	unit, err = s.store.Units().GetByID(s.ctx, domain.UnitKindCondo, 7)
	s.Require().NoError(err)
	s.Require().NotNil(unit.OccupantID)
	s.Equal(s.occupant.ID, *unit.OccupantID)

	status, payload = s.redeem(s.occupant, key.Key)
	s.Equal(fiber.StatusConflict, status)
	s.Equal("this unit is already in use.", s.details(payload))

	status, payload = s.issue(7, "b@x.com")
	s.Equal(fiber.StatusConflict, status)
	s.Equal("this unit is already in use.", s.details(payload))

	status, payload = s.do(fiber.MethodGet, "/public-profile/1/condo-units", s.tokenFor(s.occupant), nil)
	s.Equal(fiber.StatusOK, status)
	var units []map[string]any
	s.Require().NoError(json.Unmarshal(payload, &units))
	s.Len(units, 1)
}

func (s *APISuite) TestIssueErrors() {
	cases := []struct {
		name    string
		unit    int64
		email   string
		status  int
		details string
	}{
		{"non public user", 7, "company@x.com", fiber.StatusBadRequest, "The user associated with this email is not a public user"},
		{"unknown user", 7, "nobody@x.com", fiber.StatusBadRequest, "There is no user with the given email"},
		{"unknown unit", 70, "a@x.com", fiber.StatusBadRequest, "There is no condo unit associated with the given id"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			status, payload := s.issue(tc.unit, tc.email)
			s.Equal(tc.status, status)
			s.Equal(tc.details, s.details(payload))
		})
	}

	s.Run("oversized email", func() {
		status, payload := s.issue(7, strings.Repeat("a", 250)+"@x.com")
		s.Equal(fiber.StatusBadRequest, status)
		s.Contains(string(payload), "VALIDATION_FAILED")
	})

	s.Run("unknown company as admin", func() {
		admin := s.seedUser("admin@x.com", domain.RoleAdmin)
		status, payload := s.do(fiber.MethodPost, "/registration-keys/condo", s.tokenFor(admin), fiber.Map{"unit": 7, "company": 99, "user": "a@x.com"})
		s.Equal(fiber.StatusBadRequest, status)
		s.Equal("There is no Company Profile associated with the given id", s.details(payload))
	})
}

func (s *APISuite) TestIssueAccessControl() {
	body := fiber.Map{"unit": 7, "company": s.company.ID, "user": "a@x.com"}

	status, _ := s.do(fiber.MethodPost, "/registration-keys/condo", "", body)
	s.Equal(fiber.StatusUnauthorized, status)

	status, _ = s.do(fiber.MethodPost, "/registration-keys/condo", s.tokenFor(s.occupant), body)
	s.Equal(fiber.StatusForbidden, status)

	rival := s.seedUser("rival@x.com", domain.RoleCompany)
	status, _ = s.do(fiber.MethodPost, "/registration-keys/condo", s.tokenFor(rival), body)
	s.Equal(fiber.StatusForbidden, status)

	status, _ = s.do(fiber.MethodPost, "/registration-keys/villa", s.tokenFor(s.company), body)
	s.Equal(fiber.StatusNotFound, status)
}

func (s *APISuite) TestRedeemErrors() {
	key := s.issuedKey(7, "a@x.com")

	status, payload := s.redeem(s.other, key)
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("This registration key is not valid for you", s.details(payload))

	status, _ = s.redeem(s.occupant, "does-not-exist")
	s.Equal(fiber.StatusNotFound, status)

	status, _ = s.do(fiber.MethodPatch, "/public-profile/register-condo", s.tokenFor(s.occupant), fiber.Map{"key": key, "user": s.other.ID})
	s.Equal(fiber.StatusForbidden, status)

	status, payload = s.do(fiber.MethodPatch, "/public-profile/register-condo", s.tokenFor(s.occupant), fiber.Map{})
	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(string(payload), "VALIDATION_FAILED")

	unit, err := s.store.Units().GetByID(s.ctx, domain.UnitKindCondo, 7)
	s.Require().NoError(err)
	s.True(unit.Vacant())
}

func (s *APISuite) TestListAndDeactivateKeys() {
	key := s.issuedKey(7, "a@x.com")
	s.issuedKey(7, "b@x.com")
	token := s.tokenFor(s.company)

	status, _ := s.do(fiber.MethodPatch, "/registration-keys/condo/"+key+"/deactivate", token, nil)
	s.Equal(fiber.StatusNoContent, status)

	status, payload := s.do(fiber.MethodGet, "/registration-keys/condo", token, nil)
	s.Require().Equal(fiber.StatusOK, status)
	var keys []map[string]any
	s.Require().NoError(json.Unmarshal(payload, &keys))
	s.Len(keys, 1)

	status, _ = s.do(fiber.MethodPatch, "/registration-keys/condo/missing/deactivate", token, nil)
	s.Equal(fiber.StatusNotFound, status)

	status, payload = s.redeem(s.occupant, key)
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("This registration key is no longer active", s.details(payload))
}

func (s *APISuite) TestAuthFlow() {
	status, payload := s.do(fiber.MethodPost, "/auth/register", "", fiber.Map{
		"email": "new@x.com", "password": "long-enough", "role": "PUBLIC", "type": "RENTER",
	})
	s.Require().Equal(fiber.StatusCreated, status, string(payload))

	status, _ = s.do(fiber.MethodPost, "/auth/register", "", fiber.Map{
		"email": "new@x.com", "password": "long-enough", "role": "PUBLIC",
	})
	s.Equal(fiber.StatusConflict, status)

	status, _ = s.do(fiber.MethodPost, "/auth/register", "", fiber.Map{
		"email": "root@x.com", "password": "long-enough", "role": "ADMIN",
	})
	s.Equal(fiber.StatusBadRequest, status)

	status, _ = s.do(fiber.MethodPost, "/auth/login", "", fiber.Map{"email": "new@x.com", "password": "wrong-password"})
	s.Equal(fiber.StatusUnauthorized, status)

	status, payload = s.do(fiber.MethodPost, "/auth/login", "", fiber.Map{"email": "new@x.com", "password": "long-enough"})
	s.Require().Equal(fiber.StatusOK, status)
	var login struct {
		Data struct {
			Auth struct {
				Token string `json:"token"`
			} `json:"auth"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(payload, &login))
	token := login.Data.Auth.Token

	status, _ = s.do(fiber.MethodGet, "/auth/me", token, nil)
	s.Equal(fiber.StatusOK, status)

	status, _ = s.do(fiber.MethodPost, "/auth/logout", token, nil)
	s.Equal(fiber.StatusNoContent, status)

	status, _ = s.do(fiber.MethodGet, "/auth/me", token, nil)
	s.Equal(fiber.StatusUnauthorized, status)
}

func (s *APISuite) TestPropertiesAndFinance() {
	token := s.tokenFor(s.company)

	status, payload := s.do(fiber.MethodPost, "/properties", token, fiber.Map{
		"name": "Annex", "address": "1 Main", "city": "Montreal", "province": "QC", "postal_code": "H1H1H1", "fee_rate_cents": 200,
	})
	s.Require().Equal(fiber.StatusCreated, status, string(payload))
	var property struct {
		ID int64 `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(payload, &property))

	status, payload = s.do(fiber.MethodPost, "/properties/"+itoa(property.ID)+"/parking-units", token, fiber.Map{
		"location": "P1", "size_hundredths": 1000, "operational_expense_cents": 300,
	})
	s.Require().Equal(fiber.StatusCreated, status, string(payload))

	status, _ = s.do(fiber.MethodGet, "/properties/"+itoa(property.ID)+"/parking-units", token, nil)
	s.Equal(fiber.StatusOK, status)

	status, payload = s.do(fiber.MethodGet, "/company-profile/3/finance-report", token, nil)
	s.Require().Equal(fiber.StatusOK, status)
	var report struct {
		Properties    map[string]json.RawMessage `json:"properties"`
		ExpensesCents int64                      `json:"expenses_cents"`
		TotalCents    int64                      `json:"total_cents"`
	}
	s.Require().NoError(json.Unmarshal(payload, &report))
	s.Len(report.Properties, 2)
	s.Equal(int64(300), report.ExpensesCents)
	s.Equal(int64(-300), report.TotalCents)

	status, _ = s.do(fiber.MethodGet, "/company-profile/3/finance-report", s.tokenFor(s.occupant), nil)
	s.Equal(fiber.StatusForbidden, status)
}

func (s *APISuite) TestOperationalEndpoints() {
	status, _ := s.do(fiber.MethodGet, "/health/live", "", nil)
	s.Equal(fiber.StatusOK, status)

	status, _ = s.do(fiber.MethodGet, "/health/ready", "", nil)
	s.Equal(fiber.StatusOK, status)

	s.issuedKey(7, "a@x.com")
	status, payload := s.do(fiber.MethodGet, "/metrics", "", nil)
	s.Equal(fiber.StatusOK, status)
	s.Contains(string(payload), "property_registration_keys_issued_total")

	status, payload = s.do(fiber.MethodGet, "/nowhere", "", nil)
	s.Equal(fiber.StatusNotFound, status)
	s.Contains(string(payload), "NOT_FOUND")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
