package middleware

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pocket-budget/internal/config"
	"pocket-budget/internal/errors"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories/repository_mocks"
	"pocket-budget/internal/services"
	"pocket-budget/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestAuthMiddleware(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

type AuthMiddlewareSuite struct {
	suite.Suite
	ctrl                     *gomock.Controller
	tokenService             services.TokenServiceInterface
	mockBlacklistedTokenRepo *repository_mocks.MockBlacklistedTokenRepositoryInterface
	e                        *echo.Echo
	user                     *models.User
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	s.tokenService = services.NewTokenService(&config.JWTConfig{
		PrivateKey:           privateKey,
		PublicKey:            publicKey,
		Issuer:               "pocket-budget-test",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	})
	s.mockBlacklistedTokenRepo = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.e = echo.New()
	s.user = &models.User{
		ID:    uuid.New(),
		Email: "asha@example.com",
		Role:  models.RoleMember,
	}
}

func (s *AuthMiddlewareSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthMiddlewareSuite) serve(mw echo.MiddlewareFunc, authHeader string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "trace-auth")

	s.Require().NoError(mw(next)(c))
	return rec
}

func (s *AuthMiddlewareSuite) decodeError(rec *httptest.ResponseRecorder) errors.ErrorResponse {
	var body errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *AuthMiddlewareSuite) TestRequireAuth_ValidToken() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)
	jti, err := s.tokenService.GetJTI(token)
	s.Require().NoError(err)

	s.mockBlacklistedTokenRepo.EXPECT().IsBlacklisted(gomock.Any(), jti).Return(false, nil)

	rec := s.serve(RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo), "Bearer "+token, func(c echo.Context) error {
		s.Equal(s.user.ID, c.Get("user_id"))
		s.Equal(s.user.Email, c.Get("user_email"))
		s.Equal(models.RoleMember, c.Get("user_role"))
		s.Equal(jti, c.Get("token_jti"))
		s.Equal(false, c.Get("is_admin"))
		return okHandler(c)
	})

	s.Equal(http.StatusOK, rec.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_LowercaseScheme() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)
	s.mockBlacklistedTokenRepo.EXPECT().IsBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)

	rec := s.serve(RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo), "bearer "+token, okHandler)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_MissingAuthorizationHeader() {
	rec := s.serve(RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo), "", func(c echo.Context) error {
		s.Fail("next handler must not run")
		return nil
	})

	s.Equal(http.StatusUnauthorized, rec.Code)
	body := s.decodeError(rec)
	s.Equal(string(errors.AuthMissingToken), body.Error.Code)
	s.Equal("trace-auth", body.Error.TraceID)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_MalformedHeader() {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   ", "abc.def.ghi"} {
		s.Run(header, func() {
			rec := s.serve(RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo), header, okHandler)
			s.Equal(http.StatusUnauthorized, rec.Code)
			s.Equal(string(errors.AuthInvalidTokenFormat), s.decodeError(rec).Error.Code)
		})
	}
}

func (s *AuthMiddlewareSuite) TestRequireAuth_GarbageToken() {
	rec := s.serve(RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo), "Bearer not-a-jwt", okHandler)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(errors.AuthInvalidTokenFormat), s.decodeError(rec).Error.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_RefreshTokenRejected() {
	refresh, _, err := s.tokenService.GenerateRefreshToken(s.user.ID)
	s.Require().NoError(err)

	rec := s.serve(RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo), "Bearer "+refresh, okHandler)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(errors.AuthInvalidTokenFormat), s.decodeError(rec).Error.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_ExpiredToken() {
	mockTokens := service_mocks.NewMockTokenServiceInterface(s.ctrl)
	mockTokens.EXPECT().ExtractTokenFromHeader("Bearer stale").Return("stale", nil)
	mockTokens.EXPECT().ValidateAccessToken("stale").Return(nil, services.ErrExpiredToken)

	rec := s.serve(RequireAuth(mockTokens, s.mockBlacklistedTokenRepo), "Bearer stale", okHandler)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(errors.AuthExpiredToken), s.decodeError(rec).Error.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_RevokedToken() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)
	s.mockBlacklistedTokenRepo.EXPECT().IsBlacklisted(gomock.Any(), gomock.Any()).Return(true, nil)

	rec := s.serve(RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo), "Bearer "+token, okHandler)

	s.Equal(http.StatusUnauthorized, rec.Code)
	body := s.decodeError(rec)
	s.Equal(string(errors.AuthInvalidTokenFormat), body.Error.Code)
	s.Contains(body.Error.Details, "Token has been revoked")
}

func (s *AuthMiddlewareSuite) TestRequireAuth_BlacklistLookupFails() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)
	s.mockBlacklistedTokenRepo.EXPECT().IsBlacklisted(gomock.Any(), gomock.Any()).Return(false, stderrors.New("connection refused"))

	rec := s.serve(RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo), "Bearer "+token, okHandler)

	s.Equal(http.StatusInternalServerError, rec.Code)
	body := s.decodeError(rec)
	s.Equal(string(errors.SystemInternalError), body.Error.Code)
	s.NotContains(rec.Body.String(), "connection refused")
}

func (s *AuthMiddlewareSuite) TestRequireAuth_InvalidSubject() {
	mockTokens := service_mocks.NewMockTokenServiceInterface(s.ctrl)
	mockTokens.EXPECT().ExtractTokenFromHeader(gomock.Any()).Return("tok", nil)
	claims := &models.CustomClaims{UserID: "not-a-uuid", Role: models.RoleMember}
	claims.ID = "jti-1"
	mockTokens.EXPECT().ValidateAccessToken("tok").Return(claims, nil)
	s.mockBlacklistedTokenRepo.EXPECT().IsBlacklisted(gomock.Any(), "jti-1").Return(false, nil)

	rec := s.serve(RequireAuth(mockTokens, s.mockBlacklistedTokenRepo), "Bearer tok", okHandler)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(s.decodeError(rec).Error.Details, "Invalid user ID in token")
}

func (s *AuthMiddlewareSuite) TestRequireAuth_AdminFlag() {
	s.user.Role = models.RoleAdmin
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)
	s.mockBlacklistedTokenRepo.EXPECT().IsBlacklisted(gomock.Any(), gomock.Any()).Return(false, nil)

	rec := s.serve(RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo), "Bearer "+token, func(c echo.Context) error {
		s.Equal(true, c.Get("is_admin"))
		return okHandler(c)
	})

	s.Equal(http.StatusOK, rec.Code)
}

func (s *AuthMiddlewareSuite) TestRequireRole() {
	testCases := []struct {
		name     string
		role     interface{}
		expected int
		code     errors.ErrorCode
	}{
		{"admin allowed", models.RoleAdmin, http.StatusOK, ""},
		{"member forbidden", models.RoleMember, http.StatusForbidden, errors.AuthInsufficientPermission},
		{"role missing", nil, http.StatusUnauthorized, errors.AuthInvalidTokenFormat},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			rec := httptest.NewRecorder()
			c := s.e.NewContext(req, rec)
			if tc.role != nil {
				c.Set("user_role", tc.role)
			}

			s.Require().NoError(RequireAdmin()(okHandler)(c))
			s.Equal(tc.expected, rec.Code)
			if tc.code != "" {
				s.Equal(string(tc.code), s.decodeError(rec).Error.Code)
			}
		})
	}
}

func (s *AuthMiddlewareSuite) TestRequireRole_AnyOfSeveral() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set("user_role", models.RoleMember)

	s.Require().NoError(RequireRole(models.RoleAdmin, models.RoleMember)(okHandler)(c))
	s.Equal(http.StatusOK, rec.Code)
}
