package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-library-backend/internal/model"
)

const studentColumns = `id, student_id, email, password, first_name, last_name, phone, address,
	enrollment_date, is_active, created_at, updated_at`

type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func (r *StudentRepository) FindActiveByEmail(ctx context.Context, email string) (model.Student, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students
		 WHERE lower(email) = lower($1) AND is_active = true
		 ORDER BY id
		 LIMIT 1`, strings.TrimSpace(email))

	s, err := scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Student{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.Student{}, fmt.Errorf("find student by email: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) FindActiveByID(ctx context.Context, id int64) (model.Student, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students
		 WHERE id = $1 AND is_active = true`, id)

	s, err := scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Student{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.Student{}, fmt.Errorf("find student by id: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check student email exists: %w", err)
	}
	return exists, nil
}

func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (student_id, email, password, first_name, last_name, phone, address,
		                       enrollment_date, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		s.StudentID, s.Email, s.PasswordHash, s.FirstName, s.LastName, s.Phone, s.Address,
		s.EnrollmentDate, s.IsActive).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if constraint, ok := uniqueConstraint(err); ok {
		if strings.Contains(constraint, "email") {
			return model.ErrEmailTaken
		}
		return model.ErrExternalIDTaken
	}
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

func (r *StudentRepository) SetActive(ctx context.Context, email string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET is_active = $2, updated_at = $3 WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email), active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set student active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func scanStudent(row pgx.Row) (model.Student, error) {
	var s model.Student
	err := row.Scan(&s.ID, &s.StudentID, &s.Email, &s.PasswordHash, &s.FirstName, &s.LastName,
		&s.Phone, &s.Address, &s.EnrollmentDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
