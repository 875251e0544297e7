package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pocket-budget/internal/config"
	"pocket-budget/internal/database"
	"pocket-budget/internal/dto"
	"pocket-budget/internal/errors"
	"pocket-budget/internal/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type ServerSuite struct {
	suite.Suite
	db      *database.DB
	handler http.Handler
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:             "127.0.0.1",
			Port:             "0",
			Environment:      "testing",
			CORSAllowOrigins: []string{"*"},
		},
		JWT: config.JWTConfig{
			PrivateKey:           privateKey,
			PublicKey:            publicKey,
			Issuer:               "pocket-budget-test",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: time.Hour,
		},
		Security: config.SecurityConfig{
			BCryptCost:         bcrypt.MinCost,
			RateLimitPerSecond: 1000,
			RateLimitBurst:     1000,
		},
		Budget: config.BudgetConfig{
			DefaultCurrency: "INR",
			ImportMaxBytes:  1 << 20,
			DemoSeedCount:   10,
		},
	}

	s.db = database.SetupTestDB(s.T())
	s.handler = New(cfg, s.db.DB, prometheus.NewRegistry(), nil).WithTokenSweeper(s.db).Handler()
}

func (s *ServerSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func (s *ServerSuite) signUp(email string) string {
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email:       email,
		Password:    "Sunshine42",
		DisplayName: "Meera",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email:    email,
		Password: "Sunshine42",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var tokens dto.TokenResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &tokens))
	s.Require().NotEmpty(tokens.AccessToken)
	return tokens.AccessToken
}

func (s *ServerSuite) TestHealthIsPublic() {
	rec := s.do(http.MethodGet, "/health", "", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"status":"healthy"`)
	s.NotEmpty(rec.Header().Get(middleware.TraceIDHeader))
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func (s *ServerSuite) TestMetricsIsPublic() {
	rec := s.do(http.MethodGet, "/metrics", "", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "go_goroutines")
}

func (s *ServerSuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/api/v1/nowhere", "", nil)

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(errors.SystemRouteNotFound), s.errorCode(rec))
}

func (s *ServerSuite) TestCatalogIsPublic() {
	rec := s.do(http.MethodGet, "/api/v1/budget-setup/catalog", "", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"data":[`)
}

func (s *ServerSuite) TestProtectedRoutesRequireToken() {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/transactions"},
		{http.MethodPost, "/api/v1/transactions/import"},
		{http.MethodGet, "/api/v1/goals"},
		{http.MethodGet, "/api/v1/rewards"},
		{http.MethodGet, "/api/v1/onboarding"},
		{http.MethodPut, "/api/v1/budget-setup"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/activity"},
	}

	for _, p := range paths {
		s.Run(p.method+" "+p.path, func() {
			rec := s.do(p.method, p.path, "", nil)
			s.Equal(http.StatusUnauthorized, rec.Code)
			s.Equal(string(errors.AuthMissingToken), s.errorCode(rec))
		})
	}
}

func (s *ServerSuite) TestTransactionRoundTrip() {
	token := s.signUp("meera@example.com")

	rec := s.do(http.MethodPost, "/api/v1/transactions", token, dto.CreateTransactionRequest{
		Date:     "2024-03-05",
		Name:     "Groceries",
		Amount:   "-1250.50",
		Category: "Food",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/transactions", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var list struct {
		Data []dto.TransactionResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &list))
	s.Require().Len(list.Data, 1)
	s.Equal("Groceries", list.Data[0].Name)
	s.Equal("2024-03-05", list.Data[0].Date)

	rec = s.do(http.MethodGet, "/api/v1/transactions/insights", token, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "meera@example.com")

	rec = s.do(http.MethodGet, "/api/v1/activity", token, nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestValidationErrorsAreReported() {
	token := s.signUp("ravi@example.com")

	rec := s.do(http.MethodPost, "/api/v1/transactions", token, map[string]string{
		"date":   "05/03/2024",
		"name":   "Rent",
		"amount": "0",
	})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(errors.ValidationGeneral), s.errorCode(rec))
}

func (s *ServerSuite) TestAdminRoutesRejectMembers() {
	token := s.signUp("anil@example.com")

	rec := s.do(http.MethodGet, "/api/v1/admin/users/00000000-0000-0000-0000-000000000001", token, nil)

	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(string(errors.AuthInsufficientPermission), s.errorCode(rec))
}

func (s *ServerSuite) TestLogoutRevokesAccessToken() {
	token := s.signUp("leela@example.com")

	rec := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}
