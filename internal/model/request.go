package model

import (
	"bytes"
	"encoding/json"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateBookRequest struct {
	ISBN          string  `json:"isbn" validate:"required,max=20"`
	Title         string  `json:"title" validate:"required,max=500"`
	Author        string  `json:"author" validate:"required,max=255"`
	Publisher     *string `json:"publisher,omitempty" validate:"omitnil,max=255"`
	PublishedDate *string `json:"publishedDate,omitempty" validate:"omitnil,datetime=2006-01-02"`
	Genre         *string `json:"genre,omitempty" validate:"omitnil,max=100"`
	Description   *string `json:"description,omitempty"`
	TotalCopies   *int    `json:"totalCopies,omitempty" validate:"omitnil,min=1"`
	Location      *string `json:"location,omitempty" validate:"omitnil,max=100"`
}

// UpdateBookRequest is a partial update: only non-nil fields are applied. Optional
// columns sent as an explicit JSON null are listed in Cleared and written as NULL.
type UpdateBookRequest struct {
	ISBN            *string `json:"isbn,omitempty" validate:"omitnil,min=1,max=20"`
	Title           *string `json:"title,omitempty" validate:"omitnil,min=1,max=500"`
	Author          *string `json:"author,omitempty" validate:"omitnil,min=1,max=255"`
	Publisher       *string `json:"publisher,omitempty" validate:"omitnil,max=255"`
	PublishedDate   *string `json:"publishedDate,omitempty" validate:"omitnil,datetime=2006-01-02"`
	Genre           *string `json:"genre,omitempty" validate:"omitnil,max=100"`
	Description     *string `json:"description,omitempty"`
	TotalCopies     *int    `json:"totalCopies,omitempty" validate:"omitnil,min=1"`
	AvailableCopies *int    `json:"availableCopies,omitempty" validate:"omitnil,min=0"`
	IsAvailable     *bool   `json:"isAvailable,omitempty"`
	Location        *string `json:"location,omitempty" validate:"omitnil,max=100"`
	Version         *int    `json:"version,omitempty" validate:"omitnil,min=1"`

	Cleared []string `json:"-"`
}

func (r *UpdateBookRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateBookRequest

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = UpdateBookRequest(decoded)
	r.Cleared = nil
	for _, field := range ClearableBookFields {
		if value, ok := raw[field]; ok && bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			r.Cleared = append(r.Cleared, field)
		}
	}
	return nil
}

type CreateStudentRequest struct {
	StudentID      string  `json:"studentId" validate:"required,max=50"`
	Email          string  `json:"email" validate:"required,email,max=255"`
	Password       string  `json:"password" validate:"required,min=8,max=72"`
	FirstName      string  `json:"firstName" validate:"required,max=100"`
	LastName       string  `json:"lastName" validate:"required,max=100"`
	Phone          *string `json:"phone,omitempty" validate:"omitnil,max=20"`
	Address        *string `json:"address,omitempty" validate:"omitnil,max=500"`
	EnrollmentDate string  `json:"enrollmentDate" validate:"required,datetime=2006-01-02"`
}

type CreateStaffRequest struct {
	StaffID    string  `json:"staffId" validate:"required,max=50"`
	Email      string  `json:"email" validate:"required,email,max=255"`
	Password   string  `json:"password" validate:"required,min=8,max=72"`
	FirstName  string  `json:"firstName" validate:"required,max=100"`
	LastName   string  `json:"lastName" validate:"required,max=100"`
	Phone      *string `json:"phone,omitempty" validate:"omitnil,max=20"`
	Role       string  `json:"role" validate:"required,max=100"`
	Department *string `json:"department,omitempty" validate:"omitnil,max=100"`
	Address    *string `json:"address,omitempty" validate:"omitnil,max=500"`
	HiredDate  string  `json:"hiredDate" validate:"required,datetime=2006-01-02"`
}
