package model

import (
	"strconv"
	"time"
)

type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeStaff   UserType = "staff"
)

func (t UserType) Valid() bool {
	return t == UserTypeStudent || t == UserTypeStaff
}

type Student struct {
	ID             int64     `json:"id"`
	StudentID      string    `json:"studentId"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Phone          *string   `json:"phone,omitempty"`
	Address        *string   `json:"address,omitempty"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Staff struct {
	ID           int64     `json:"id"`
	StaffID      string    `json:"staffId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        *string   `json:"phone,omitempty"`
	Role         string    `json:"role"`
	Department   *string   `json:"department,omitempty"`
	Address      *string   `json:"address,omitempty"`
	HiredDate    time.Time `json:"hiredDate"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthUser is the identity summary returned at login and resolved from a token on
// every authenticated request.
type AuthUser struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	FullName  string   `json:"fullName"`
	Type      UserType `json:"type"`
	StudentID string   `json:"studentId,omitempty"`
	StaffID   string   `json:"staffId,omitempty"`
	Role      string   `json:"role,omitempty"`
}

func (s Student) AuthUser() AuthUser {
	return AuthUser{
		ID:        s.ID,
		Email:     s.Email,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		FullName:  s.FirstName + " " + s.LastName,
		Type:      UserTypeStudent,
		StudentID: s.StudentID,
	}
}

func (s Staff) AuthUser() AuthUser {
	return AuthUser{
		ID:        s.ID,
		Email:     s.Email,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		FullName:  s.FirstName + " " + s.LastName,
		Type:      UserTypeStaff,
		StaffID:   s.StaffID,
		Role:      s.Role,
	}
}

type AuthClaims struct {
	UserID  int64    `json:"sub"`
	Email   string   `json:"email"`
	Type    UserType `json:"type"`
	TokenID string   `json:"jti"`
}

func (c AuthClaims) Subject() string {
	return strconv.FormatInt(c.UserID, 10)
}

type LoginResponse struct {
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	ExpiresIn   int64    `json:"expiresIn"`
	User        AuthUser `json:"user"`
}
