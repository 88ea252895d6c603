package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) (int64, error)
	ListFaculty(ctx context.Context, department string) ([]models.User, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.User, error)
	DepartmentStats(ctx context.Context, department string) (*models.DepartmentStats, error)
}

// UserService owns identity management and profile workflows.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// Profile loads one user by id.
func (s *UserService) Profile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// UpdateProfileRequest carries the self-service profile fields. Role-specific
// fields are applied only when the caller's role allows them.
type UpdateProfileRequest struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Phone          *string  `json:"phone"`
	Address        *string  `json:"address"`
	DateOfBirth    *string  `json:"dateOfBirth"`
	Nationality    *string  `json:"nationality"`
	Qualification  *string  `json:"qualification"`
	Experience     *string  `json:"experience"`
	Subjects       []string `json:"subjects"`
	Specialization *string  `json:"specialization"`
	GuardianName   *string  `json:"guardianName"`
	GuardianPhone  *string  `json:"guardianPhone"`
}

// UpdateProfile applies the caller's profile changes. Role and username are
// never touched here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = req.DateOfBirth
	}
	if req.Nationality != nil {
		user.Nationality = req.Nationality
	}

	switch user.Role {
	case models.RoleFaculty, models.RoleHOD:
		if req.Qualification != nil {
			user.Qualification = req.Qualification
		}
		if req.Experience != nil {
			user.Experience = req.Experience
		}
		if req.Subjects != nil {
			user.Subjects = req.Subjects
		}
		if req.Specialization != nil {
			user.Specialization = req.Specialization
		}
	case models.RoleStudent:
		if req.GuardianName != nil {
			user.GuardianName = req.GuardianName
		}
		if req.GuardianPhone != nil {
			user.GuardianPhone = req.GuardianPhone
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	return nil
}

// CreateUserRequest is the HOD user-creation payload.
type CreateUserRequest struct {
	Username   string          `json:"username" validate:"required"`
	Password   string          `json:"password" validate:"required,min=6"`
	Name       string          `json:"name" validate:"required"`
	Role       models.UserRole `json:"role" validate:"required"`
	Department string          `json:"department" validate:"required"`
	Email      *string         `json:"email" validate:"omitempty,email"`
	Phone      *string         `json:"phone"`

	// Student fields.
	RollNumber *string `json:"rollNumber"`
	Batch      *string `json:"batch"`
	Programme  *string `json:"programme"`
	Section    *string `json:"section"`
	Semester   *int    `json:"semester"`

	// Faculty fields.
	Subjects      []string `json:"subjects"`
	Qualification *string  `json:"qualification"`
	Experience    *string  `json:"experience"`
}

// CreateUser registers a new identity. Role-specific required fields are
// enforced per role; the role is fixed at creation.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		Department:   req.Department,
		Email:        req.Email,
		Phone:        req.Phone,
	}

	switch req.Role {
	case models.RoleStudent:
		if req.RollNumber == nil || req.Batch == nil || req.Programme == nil || req.Section == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "rollNumber, batch, programme and section are required for students")
		}
		user.RollNumber = req.RollNumber
		user.Batch = req.Batch
		user.Programme = req.Programme
		user.Section = req.Section
		user.Semester = req.Semester
	case models.RoleFaculty:
		user.Subjects = req.Subjects
		user.Qualification = req.Qualification
		user.Experience = req.Experience
	case models.RoleHOD:
		// No extra required fields at creation; tenure start is set on update.
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// AdminUpdateUser applies an HOD-initiated update to another user. Username,
// password, and role are not updatable through this path.
func (s *UserService) AdminUpdateUser(ctx context.Context, id string, req UpdateProfileRequest) (*models.User, error) {
	return s.UpdateProfile(ctx, id, req)
}

// DeleteUser hard-deletes a user unconditionally.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return nil
}

// Faculty lists a department's faculty members.
func (s *UserService) Faculty(ctx context.Context, department string) ([]models.User, error) {
	users, err := s.repo.ListFaculty(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return users, nil
}

// Students lists a department's students with optional programme, batch, and
// section filters ("all" means no filter).
func (s *UserService) Students(ctx context.Context, department, programme, batch, section string) ([]models.User, error) {
	filter := models.StudentFilter{
		Department: department,
		Programme:  normalizeAll(programme),
		Batch:      normalizeAll(batch),
		Section:    normalizeAll(section),
	}
	users, err := s.repo.ListStudents(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	return users, nil
}

// DepartmentStats summarises the department roster.
func (s *UserService) DepartmentStats(ctx context.Context, department string) (*models.DepartmentStats, error) {
	stats, err := s.repo.DepartmentStats(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department stats")
	}
	return stats, nil
}
