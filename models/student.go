package models

import (
	"strings"
	"time"
)

// BirthDateLayout is the form and display layout for birth dates
const BirthDateLayout = "2006-01-02"

// Student represents an enrolled student
type Student struct {
	ID                  int64     `json:"student_id" db:"student_id"`
	FirstName           string    `json:"first_name" db:"first_name"`
	LastName            string    `json:"last_name" db:"last_name"`
	Email               string    `json:"email" db:"email"`
	MajorID             *int64    `json:"major_id,omitempty" db:"major_id"`
	BirthDate           time.Time `json:"birth_date" db:"birth_date"`
	NumCreditsCompleted int       `json:"num_credits_completed" db:"num_credits_completed"`
	GPA                 float64   `json:"gpa" db:"gpa"`
	IsHonors            bool      `json:"is_honors" db:"is_honors"`

	// Populated by list/detail queries that join the major table
	MajorName string `json:"major,omitempty" db:"-"`
}

// TableName returns the table name for the Student model
func (Student) TableName() string {
	return "student"
}

// NewStudent creates a new Student. Credits and GPA always start at zero.
func NewStudent(firstName, lastName, email string, majorID *int64, birthDate time.Time, isHonors bool) *Student {
	return &Student{
		FirstName:           firstName,
		LastName:            lastName,
		Email:               email,
		MajorID:             majorID,
		BirthDate:           birthDate,
		NumCreditsCompleted: 0,
		GPA:                 0.0,
		IsHonors:            isHonors,
	}
}

// FullName returns "First Last"
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// BirthDateString formats the birth date for forms
func (s *Student) BirthDateString() string {
	if s.BirthDate.IsZero() {
		return ""
	}
	return s.BirthDate.Format(BirthDateLayout)
}

// HasMajor reports whether the student references a major
func (s *Student) HasMajor(id int64) bool {
	return s.MajorID != nil && *s.MajorID == id
}
