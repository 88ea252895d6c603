// Command seed creates the database schema and loads a small demo dataset:
// one HOD, two faculty, four students, and a Monday timetable for two
// sections. Intended for local development, not production.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	"github.com/ravi-menon/dept-attendance-api/pkg/config"
	"github.com/ravi-menon/dept-attendance-api/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL,
	department TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	address TEXT,
	date_of_birth TEXT,
	nationality TEXT,
	roll_number TEXT,
	programme TEXT,
	batch TEXT,
	section TEXT,
	semester INT,
	guardian_name TEXT,
	guardian_phone TEXT,
	subjects TEXT[],
	qualification TEXT,
	experience TEXT,
	specialization TEXT,
	tenure_start TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS timetables (
	id UUID PRIMARY KEY,
	department TEXT NOT NULL,
	programme TEXT NOT NULL,
	batch TEXT NOT NULL,
	section TEXT NOT NULL,
	semester INT NOT NULL,
	day TEXT NOT NULL,
	periods JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (department, programme, batch, section, day)
);

CREATE INDEX IF NOT EXISTS idx_timetables_periods ON timetables USING gin (periods);

CREATE TABLE IF NOT EXISTS attendance_records (
	id UUID PRIMARY KEY,
	date DATE NOT NULL,
	department TEXT NOT NULL,
	programme TEXT NOT NULL,
	batch TEXT NOT NULL,
	section TEXT NOT NULL,
	subject TEXT NOT NULL,
	faculty_id UUID NOT NULL REFERENCES users (id),
	period INT NOT NULL,
	room TEXT NOT NULL DEFAULT '',
	students JSONB NOT NULL DEFAULT '[]',
	revision INT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (date, subject, period, faculty_id)
);

CREATE INDEX IF NOT EXISTS idx_attendance_students ON attendance_records USING gin (students);
CREATE INDEX IF NOT EXISTS idx_attendance_department_date ON attendance_records (department, date);
`

type seedUser struct {
	username  string
	password  string
	name      string
	role      models.UserRole
	section   string
	roll      string
	subjects  []string
	qualified string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("schema creation failed: %v", err)
	}

	facultyIDs, err := seedUsers(ctx, db)
	if err != nil {
		log.Fatalf("user seed failed: %v", err)
	}
	if err := seedTimetables(ctx, db, facultyIDs); err != nil {
		log.Fatalf("timetable seed failed: %v", err)
	}

	log.Println("seed complete")
}

func seedUsers(ctx context.Context, db *sqlx.DB) (map[string]string, error) {
	users := []seedUser{
		{username: "hod1", password: "password123", name: "Dr. Meera Pillai", role: models.RoleHOD, qualified: "PhD"},
		{username: "faculty1", password: "password123", name: "Dr. Arjun Rao", role: models.RoleFaculty, subjects: []string{"Algorithms", "Data Structures"}, qualified: "PhD"},
		{username: "faculty2", password: "password123", name: "Dr. Kavya Iyer", role: models.RoleFaculty, subjects: []string{"Computer Networks", "Operating Systems"}, qualified: "PhD"},
		{username: "student1", password: "password123", name: "Asha Nair", role: models.RoleStudent, section: "CS-A", roll: "CS2024001"},
		{username: "student2", password: "password123", name: "Rahul Menon", role: models.RoleStudent, section: "CS-A", roll: "CS2024002"},
		{username: "student3", password: "password123", name: "Divya Krishnan", role: models.RoleStudent, section: "CS-B", roll: "CS2024003"},
		{username: "student4", password: "password123", name: "Vivek Shenoy", role: models.RoleStudent, section: "CS-B", roll: "CS2024004"},
	}

	facultyIDs := map[string]string{}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		id := uuid.NewString()
		user := &models.User{
			ID:           id,
			Username:     u.username,
			PasswordHash: string(hash),
			Name:         u.name,
			Role:         u.role,
			Department:   "Computer Science",
			Subjects:     u.subjects,
		}
		if u.role == models.RoleStudent {
			programme, batch, semester := "B.Tech", "2024-28", 4
			user.Programme = &programme
			user.Batch = &batch
			user.Semester = &semester
			user.Section = &u.section
			user.RollNumber = &u.roll
		}
		if u.qualified != "" {
			user.Qualification = &u.qualified
		}

		const query = `INSERT INTO users (id, username, password_hash, name, role, department, roll_number, programme, batch, section, semester, subjects, qualification)
			VALUES (:id, :username, :password_hash, :name, :role, :department, :roll_number, :programme, :batch, :section, :semester, :subjects, :qualification)
			ON CONFLICT (username) DO NOTHING`
		if _, err := db.NamedExecContext(ctx, query, user); err != nil {
			return nil, err
		}

		if u.role == models.RoleFaculty {
			// Reload so reruns resolve the already-seeded id.
			var existing string
			if err := db.GetContext(ctx, &existing, `SELECT id FROM users WHERE username = $1`, u.username); err != nil {
				return nil, err
			}
			facultyIDs[u.username] = existing
		}
	}
	return facultyIDs, nil
}

func seedTimetables(ctx context.Context, db *sqlx.DB, facultyIDs map[string]string) error {
	entries := []models.TimeTable{
		{
			ID: uuid.NewString(), Department: "Computer Science", Programme: "B.Tech",
			Batch: "2024-28", Section: "CS-A", Semester: 4, Day: models.Monday,
			Periods: models.PeriodList{
				{PeriodNumber: 1, StartTime: "09:00", EndTime: "09:50", Subject: "Algorithms", FacultyID: facultyIDs["faculty1"], Room: "301"},
				{PeriodNumber: 2, StartTime: "10:00", EndTime: "10:50", Subject: "Computer Networks", FacultyID: facultyIDs["faculty2"], Room: "301"},
			},
		},
		{
			ID: uuid.NewString(), Department: "Computer Science", Programme: "B.Tech",
			Batch: "2024-28", Section: "CS-B", Semester: 4, Day: models.Monday,
			Periods: models.PeriodList{
				{PeriodNumber: 1, StartTime: "09:00", EndTime: "09:50", Subject: "Operating Systems", FacultyID: facultyIDs["faculty2"], Room: "302"},
				{PeriodNumber: 2, StartTime: "10:00", EndTime: "10:50", Subject: "Data Structures", FacultyID: facultyIDs["faculty1"], Room: "302"},
			},
		},
	}

	for i := range entries {
		const query = `INSERT INTO timetables (id, department, programme, batch, section, semester, day, periods)
			VALUES (:id, :department, :programme, :batch, :section, :semester, :day, :periods)
			ON CONFLICT (department, programme, batch, section, day) DO NOTHING`
		if _, err := db.NamedExecContext(ctx, query, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}
