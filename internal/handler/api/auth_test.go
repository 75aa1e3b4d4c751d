//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"admin-console/internal/handler/api"
	reqdto "admin-console/internal/handler/dto/request"
	resdto "admin-console/internal/handler/dto/response"
	"admin-console/internal/infra"
	"admin-console/internal/pkg/config"
	"admin-console/internal/pkg/cookie"
	"admin-console/internal/usecase"
	commonhttp "admin-console/tests/common/httptest"
	usecasemock "admin-console/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockGateway *usecasemock.MockIdentityGateway
	handler     *api.AuthHandler
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockGateway = usecasemock.NewMockIdentityGateway(s.mockCtrl)
	s.handler = api.NewAuthHandler(s.mockGateway, config.NewTestConfig())

	s.router.POST("/api/auth/login", s.handler.Login)
	s.router.POST("/api/auth/logout", s.handler.Logout)
	s.router.GET("/login", s.handler.LoginPage)
}

func (s *AuthHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) TestLogin() {
	s.Run("valid credentials store the session in cookies", func() {
		session := &usecase.Session{AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 3600}
		user := &usecase.ProviderUser{ID: "user-1", Email: "root@example.com"}
		s.mockGateway.EXPECT().
			SignIn(gomock.Any(), "root@example.com", "secret123").
			Return(session, user, nil)

		body := reqdto.LoginRequest{Email: "root@example.com", Password: "secret123"}
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/api/auth/login", body, "")

		var resp resdto.LoginResponse
		commonhttp.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal("root@example.com", resp.Email)

		access := commonhttp.GetCookie(w, cookie.AccessTokenCookieName)
		s.Require().NotNil(access)
		s.Equal("access-1", access.Value)
		s.True(access.HttpOnly)
		refresh := commonhttp.GetCookie(w, cookie.RefreshTokenCookieName)
		s.Require().NotNil(refresh)
		s.Equal("refresh-1", refresh.Value)
	})

	s.Run("wrong credentials", func() {
		s.mockGateway.EXPECT().
			SignIn(gomock.Any(), "root@example.com", "wrong").
			Return(nil, nil, infra.WrapInfraErr("invalid credentials", errors.New("400"), infra.KindUnauthorized))

		body := reqdto.LoginRequest{Email: "root@example.com", Password: "wrong"}
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/api/auth/login", body, "")
		commonhttp.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid email or password")
	})

	s.Run("unconfigured provider", func() {
		s.mockGateway.EXPECT().
			SignIn(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil, infra.WrapInfraErr("identity provider not configured", errors.New("missing url"), infra.KindConfig))

		body := reqdto.LoginRequest{Email: "root@example.com", Password: "secret123"}
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/api/auth/login", body, "")
		commonhttp.AssertErrorResponse(s.T(), w, http.StatusInternalServerError, "Server configuration error")
	})

	s.Run("malformed body", func() {
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/api/auth/login", map[string]string{"email": "not-an-email"}, "")
		commonhttp.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
	})
}

func (s *AuthHandlerTestSuite) TestLogout() {
	s.Run("clears the session cookies", func() {
		s.mockGateway.EXPECT().SignOut(gomock.Any(), "access-1").Return(nil)

		cookies := []*http.Cookie{{Name: cookie.AccessTokenCookieName, Value: "access-1"}}
		w := commonhttp.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/auth/logout", nil, cookies, "")

		s.Equal(http.StatusNoContent, w.Code)
		access := commonhttp.GetCookie(w, cookie.AccessTokenCookieName)
		s.Require().NotNil(access)
		s.Empty(access.Value)
		s.Negative(access.MaxAge)
	})

	s.Run("provider revocation failure still clears cookies", func() {
		s.mockGateway.EXPECT().SignOut(gomock.Any(), "access-1").Return(errors.New("provider down"))

		cookies := []*http.Cookie{{Name: cookie.AccessTokenCookieName, Value: "access-1"}}
		w := commonhttp.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/auth/logout", nil, cookies, "")

		s.Equal(http.StatusNoContent, w.Code)
		s.Require().NotNil(commonhttp.GetCookie(w, cookie.AccessTokenCookieName))
	})

	s.Run("logout without a session skips the provider", func() {
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/api/auth/logout", nil, "")
		s.Equal(http.StatusNoContent, w.Code)
	})
}

func (s *AuthHandlerTestSuite) TestLoginPage() {
	s.Run("renders the form", func() {
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/login", nil, "")
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), "Sign in")
		s.NotContains(w.Body.String(), "Access denied")
	})

	s.Run("shows the denial reason", func() {
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/login?error=access_denied", nil, "")
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), "Access denied")
	})
}
