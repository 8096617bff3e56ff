package domain

import "time"

// Student models a learner account. PasswordHash is never serialized.
type Student struct {
	StudentNumber int64
	Name          string
	Surname       string
	Email         string
	Grade         int
	IDNum         string
	Province      string
	Address       string
	PasswordHash  string
	GroupID       *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StudentDetail is a student joined with group and school names.
type StudentDetail struct {
	Student
	GroupName  *string
	SchoolName *string
}
