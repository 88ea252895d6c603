package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
)

type fakeUserRepo struct {
	users         map[string]*models.User
	usernames     map[string]bool
	created       *models.User
	updated       *models.User
	passwordHash  string
	deleteMatched int64
	studentFilter models.StudentFilter
	students      []models.User
	faculty       []models.User
	stats         *models.DepartmentStats
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return f.usernames[username], nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = "new-1"
	f.created = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.updated = user
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, _, hash string) error {
	f.passwordHash = hash
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, _ string) (int64, error) {
	return f.deleteMatched, nil
}

func (f *fakeUserRepo) ListFaculty(_ context.Context, _ string) ([]models.User, error) {
	return f.faculty, nil
}

func (f *fakeUserRepo) ListStudents(_ context.Context, filter models.StudentFilter) ([]models.User, error) {
	f.studentFilter = filter
	return f.students, nil
}

func (f *fakeUserRepo) DepartmentStats(_ context.Context, _ string) (*models.DepartmentStats, error) {
	return f.stats, nil
}

func strPtr(s string) *string { return &s }

func TestUpdateProfileStudentFieldGating(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{
		"stu-1": {ID: "stu-1", Role: models.RoleStudent, Name: "Asha"},
	}}
	svc := NewUserService(repo, nil, nil)

	user, err := svc.UpdateProfile(context.Background(), "stu-1", UpdateProfileRequest{
		GuardianName:  strPtr("R. Pillai"),
		Qualification: strPtr("PhD"),
	})
	require.NoError(t, err)
	require.Equal(t, "R. Pillai", *user.GuardianName)
	// Faculty-only field ignored for a student.
	require.Nil(t, user.Qualification)
}

func TestUpdateProfileFacultyFieldGating(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{
		"fac-1": {ID: "fac-1", Role: models.RoleFaculty, Name: "Dr. Rao"},
	}}
	svc := NewUserService(repo, nil, nil)

	user, err := svc.UpdateProfile(context.Background(), "fac-1", UpdateProfileRequest{
		Subjects:     []string{"Algorithms", "Networks"},
		GuardianName: strPtr("nope"),
	})
	require.NoError(t, err)
	require.Len(t, user.Subjects, 2)
	require.Nil(t, user.GuardianName)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("oldpass1"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*models.User{
		"stu-1": {ID: "stu-1", Role: models.RoleStudent, PasswordHash: string(hash)},
	}}
	svc := NewUserService(repo, nil, nil)

	err = svc.ChangePassword(context.Background(), "stu-1", models.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newpass1",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Empty(t, repo.passwordHash)

	err = svc.ChangePassword(context.Background(), "stu-1", models.ChangePasswordRequest{
		CurrentPassword: "oldpass1", NewPassword: "newpass1",
	})
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordHash), []byte("newpass1")))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := &fakeUserRepo{usernames: map[string]bool{"asha24": true}}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "asha24", Password: "secret1", Name: "Asha", Role: models.RoleFaculty, Department: "CSE",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
}

func TestCreateUserStudentRequiredFields(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "asha24", Password: "secret1", Name: "Asha", Role: models.RoleStudent, Department: "CSE",
		RollNumber: strPtr("CSE24001"),
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Nil(t, repo.created)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "asha24", Password: "secret1", Name: "Asha", Role: models.RoleStudent, Department: "CSE",
		RollNumber: strPtr("CSE24001"), Batch: strPtr("2024"), Programme: strPtr("B.Tech"), Section: strPtr("A"),
	})
	require.NoError(t, err)
	require.Equal(t, "new-1", user.ID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{}, nil, nil)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "x", Password: "secret1", Name: "X", Role: "registrar", Department: "CSE",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDeleteUserNotFound(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{deleteMatched: 0}, nil, nil)

	err := svc.DeleteUser(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentsNormalizesAllSentinel(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Students(context.Background(), "CSE", "all", "2024", "all")
	require.NoError(t, err)
	require.Equal(t, "CSE", repo.studentFilter.Department)
	require.Empty(t, repo.studentFilter.Programme)
	require.Equal(t, "2024", repo.studentFilter.Batch)
	require.Empty(t, repo.studentFilter.Section)
}
