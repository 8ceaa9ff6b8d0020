package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-library-backend/internal/model"
	"go-library-backend/pkg/apierror"
	"go-library-backend/pkg/validator"
)

type studentStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, s *model.Student) error
	SetActive(ctx context.Context, email string, active bool) error
}

type staffStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, s *model.Staff) error
	SetActive(ctx context.Context, email string, active bool) error
}

// MemberService provisions identities. Emails are unique across both tables so that
// login never has to choose between a student and a staff row.
type MemberService struct {
	students studentStore
	staff    staffStore
	validate *validator.Validator
}

func NewMemberService(students studentStore, staff staffStore) *MemberService {
	return &MemberService{
		students: students,
		staff:    staff,
		validate: validator.New(),
	}
}

func (s *MemberService) CreateStudent(ctx context.Context, req model.CreateStudentRequest) (model.Student, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.Student{}, err
	}

	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return model.Student{}, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return model.Student{}, err
	}

	enrolled, _ := time.Parse(time.DateOnly, req.EnrollmentDate)

	student := model.Student{
		StudentID:      strings.TrimSpace(req.StudentID),
		Email:          email,
		PasswordHash:   hash,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Address:        req.Address,
		EnrollmentDate: enrolled,
		IsActive:       true,
	}

	if err := s.students.Create(ctx, &student); err != nil {
		return model.Student{}, mapMemberError(err, email, student.StudentID)
	}
	return student, nil
}

func (s *MemberService) CreateStaff(ctx context.Context, req model.CreateStaffRequest) (model.Staff, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.Staff{}, err
	}

	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return model.Staff{}, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return model.Staff{}, err
	}

	hired, _ := time.Parse(time.DateOnly, req.HiredDate)

	member := model.Staff{
		StaffID:      strings.TrimSpace(req.StaffID),
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         req.Role,
		Department:   req.Department,
		Address:      req.Address,
		HiredDate:    hired,
		IsActive:     true,
	}

	if err := s.staff.Create(ctx, &member); err != nil {
		return model.Staff{}, mapMemberError(err, email, member.StaffID)
	}
	return member, nil
}

// SetActive flips the active flag. A deactivated identity is rejected on its next
// authenticated request even if it still holds an unexpired token.
func (s *MemberService) SetActive(ctx context.Context, userType model.UserType, email string, active bool) error {
	email = normalizeEmail(email)

	var err error
	switch userType {
	case model.UserTypeStudent:
		err = s.students.SetActive(ctx, email, active)
	case model.UserTypeStaff:
		err = s.staff.SetActive(ctx, email, active)
	default:
		return apierror.BadRequest("invalid user type", string(userType))
	}

	if errors.Is(err, model.ErrUserNotFound) {
		return apierror.NotFound(fmt.Sprintf("No %s with email %s", userType, email), "")
	}
	if err != nil {
		return fmt.Errorf("set %s active: %w", userType, err)
	}
	return nil
}

func (s *MemberService) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := s.students.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check student email: %w", err)
	}
	if !taken {
		taken, err = s.staff.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("check staff email: %w", err)
		}
	}
	if taken {
		return apierror.Conflict(fmt.Sprintf("Email %s is already registered", email), "")
	}
	return nil
}

func mapMemberError(err error, email string, externalID string) error {
	switch {
	case errors.Is(err, model.ErrEmailTaken):
		return apierror.Conflict(fmt.Sprintf("Email %s is already registered", email), "")
	case errors.Is(err, model.ErrExternalIDTaken):
		return apierror.Conflict(fmt.Sprintf("ID %s is already registered", externalID), "")
	default:
		return fmt.Errorf("create member: %w", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
