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

const staffColumns = `id, staff_id, email, password, first_name, last_name, phone, role, department,
	address, hired_date, is_active, created_at, updated_at`

type StaffRepository struct {
	pool *pgxpool.Pool
}

func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

func (r *StaffRepository) FindActiveByEmail(ctx context.Context, email string) (model.Staff, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff
		 WHERE lower(email) = lower($1) AND is_active = true
		 ORDER BY id
		 LIMIT 1`, strings.TrimSpace(email))

	s, err := scanStaff(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Staff{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.Staff{}, fmt.Errorf("find staff by email: %w", err)
	}
	return s, nil
}

func (r *StaffRepository) FindActiveByID(ctx context.Context, id int64) (model.Staff, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff
		 WHERE id = $1 AND is_active = true`, id)

	s, err := scanStaff(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Staff{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.Staff{}, fmt.Errorf("find staff by id: %w", err)
	}
	return s, nil
}

func (r *StaffRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM staff WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check staff email exists: %w", err)
	}
	return exists, nil
}

func (r *StaffRepository) Create(ctx context.Context, s *model.Staff) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO staff (staff_id, email, password, first_name, last_name, phone, role, department,
		                    address, hired_date, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		s.StaffID, s.Email, s.PasswordHash, s.FirstName, s.LastName, s.Phone, s.Role, s.Department,
		s.Address, s.HiredDate, s.IsActive).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if constraint, ok := uniqueConstraint(err); ok {
		if strings.Contains(constraint, "email") {
			return model.ErrEmailTaken
		}
		return model.ErrExternalIDTaken
	}
	if err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

func (r *StaffRepository) SetActive(ctx context.Context, email string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE staff SET is_active = $2, updated_at = $3 WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email), active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set staff active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func scanStaff(row pgx.Row) (model.Staff, error) {
	var s model.Staff
	err := row.Scan(&s.ID, &s.StaffID, &s.Email, &s.PasswordHash, &s.FirstName, &s.LastName,
		&s.Phone, &s.Role, &s.Department, &s.Address, &s.HiredDate, &s.IsActive,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}
