package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	"github.com/ravi-menon/dept-attendance-api/internal/service"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, role models.UserRole) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID:     "user-1",
		Role:       role,
		Department: "CSE",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func buildGuardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(nil, nil, nil, service.AuthConfig{
		TokenSecret: testSecret,
		TokenExpiry: time.Hour,
	})

	r := gin.New()
	r.GET("/hod-only", JWT(authSvc), RequireRoles(models.RoleHOD), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestJWTAndRBACChain(t *testing.T) {
	router := buildGuardedRouter()

	perform := func(header string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodGet, "/hod-only", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	t.Run("missing token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, perform("").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, perform("Token abc").Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, perform("Bearer garbage").Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden, perform("Bearer "+signTestToken(t, models.RoleFaculty)).Code)
	})

	t.Run("allowed role", func(t *testing.T) {
		require.Equal(t, http.StatusOK, perform("Bearer "+signTestToken(t, models.RoleHOD)).Code)
	})
}
