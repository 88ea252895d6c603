package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
)

type fakeAuthRepo struct {
	user *models.User
}

func (f *fakeAuthRepo) FindByUsernameAndRole(_ context.Context, username string, role models.UserRole) (*models.User, error) {
	if f.user == nil || f.user.Username != username || f.user.Role != role {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func testAuthService(t *testing.T, password string) (*AuthService, *models.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           "fac-1",
		Username:     "rmenon",
		PasswordHash: string(hash),
		Name:         "Dr. Rao",
		Role:         models.RoleFaculty,
		Department:   "CSE",
	}
	svc := NewAuthService(&fakeAuthRepo{user: user}, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "dept-attendance-api",
	})
	return svc, user
}

func TestLoginSuccess(t *testing.T) {
	svc, user := testAuthService(t, "s3cret99")

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Username: "rmenon", Password: "s3cret99", Role: models.RoleFaculty,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, user.ID, res.User.ID)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, models.RoleFaculty, claims.Role)
	require.Equal(t, "CSE", claims.Department)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := testAuthService(t, "s3cret99")

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Username: "rmenon", Password: "wrong", Role: models.RoleFaculty,
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRoleMismatch(t *testing.T) {
	svc, _ := testAuthService(t, "s3cret99")

	// Right credentials, wrong role: same opaque rejection as a bad password.
	_, err := svc.Login(context.Background(), models.LoginRequest{
		Username: "rmenon", Password: "s3cret99", Role: models.RoleStudent,
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	svc, _ := testAuthService(t, "s3cret99")

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Username: "rmenon", Password: "s3cret99", Role: "registrar",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, user := testAuthService(t, "s3cret99")

	other := NewAuthService(&fakeAuthRepo{}, nil, nil, AuthConfig{
		TokenSecret: "other-secret", TokenExpiry: time.Hour,
	})
	token, err := other.generateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := testAuthService(t, "s3cret99")

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
