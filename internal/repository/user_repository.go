package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
)

const userColumns = `id, username, password_hash, name, role, department, email, phone, address, date_of_birth, nationality, roll_number, programme, batch, section, semester, guardian_name, guardian_phone, subjects, qualification, experience, specialization, tenure_start, created_at, updated_at`

// UserRepository provides persistence for identities.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameAndRole loads the user matching the credential tuple.
func (r *UserRepository) FindByUsernameAndRole(ctx context.Context, username string, role models.UserRole) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 AND role = $2`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username, role); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername reports whether a username is already taken.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM users WHERE username = $1 LIMIT 1`, username)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}
	return true, nil
}

// Create stores a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, username, password_hash, name, role, department, email, phone, address, date_of_birth, nationality, roll_number, programme, batch, section, semester, guardian_name, guardian_phone, subjects, qualification, experience, specialization, tenure_start, created_at, updated_at)
		VALUES (:id, :username, :password_hash, :name, :role, :department, :email, :phone, :address, :date_of_birth, :nationality, :roll_number, :programme, :batch, :section, :semester, :guardian_name, :guardian_phone, :subjects, :qualification, :experience, :specialization, :tenure_start, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a user. Role and username are
// immutable after creation and deliberately absent from the SET list.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET name = :name, department = :department, email = :email, phone = :phone, address = :address, date_of_birth = :date_of_birth, nationality = :nationality, roll_number = :roll_number, programme = :programme, batch = :batch, section = :section, semester = :semester, guardian_name = :guardian_name, guardian_phone = :guardian_phone, subjects = :subjects, qualification = :qualification, experience = :experience, specialization = :specialization, tenure_start = :tenure_start, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if affected == 0 {
		return errNoRows
	}
	return nil
}

// UpdatePassword replaces the credential hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete hard-deletes a user. Returns the number of rows removed so callers
// can map zero to a not-found response.
func (r *UserRepository) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user rows affected: %w", err)
	}
	return affected, nil
}

// ListFaculty returns every faculty member of a department.
func (r *UserRepository) ListFaculty(ctx context.Context, department string) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = 'faculty' AND department = $1 ORDER BY name ASC`, userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, department); err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return users, nil
}

// ListStudents returns students matching the filter, ordered by roll number.
func (r *UserRepository) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.User, error) {
	base := `FROM users WHERE role = 'student'`
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Programme != "" {
		conditions = append(conditions, fmt.Sprintf("programme = $%d", len(args)+1))
		args = append(args, filter.Programme)
	}
	if filter.Batch != "" {
		conditions = append(conditions, fmt.Sprintf("batch = $%d", len(args)+1))
		args = append(args, filter.Batch)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY roll_number ASC", userColumns, base)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return users, nil
}

// DepartmentStats aggregates the roster counts for a department.
func (r *UserRepository) DepartmentStats(ctx context.Context, department string) (*models.DepartmentStats, error) {
	stats := &models.DepartmentStats{}

	if err := r.db.GetContext(ctx, &stats.TotalStudents, `SELECT COUNT(*) FROM users WHERE role = 'student' AND department = $1`, department); err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.TotalFaculty, `SELECT COUNT(*) FROM users WHERE role = 'faculty' AND department = $1`, department); err != nil {
		return nil, fmt.Errorf("count faculty: %w", err)
	}

	const breakdownQuery = `SELECT programme, COUNT(*) AS count, ARRAY_AGG(DISTINCT section) AS sections FROM users WHERE role = 'student' AND department = $1 AND programme IS NOT NULL GROUP BY programme ORDER BY programme ASC`
	if err := r.db.SelectContext(ctx, &stats.ProgramResults, breakdownQuery, department); err != nil {
		return nil, fmt.Errorf("programme breakdown: %w", err)
	}

	stats.TotalPrograms = len(stats.ProgramResults)
	sections := map[string]struct{}{}
	for _, p := range stats.ProgramResults {
		for _, s := range p.Sections {
			sections[s] = struct{}{}
		}
	}
	stats.TotalSections = len(sections)

	return stats, nil
}
