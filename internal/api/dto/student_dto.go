package dto

import "time"

// CreateStudentRequest payload for new students.
type CreateStudentRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Grade    int    `json:"grade"`
	IDNum    string `json:"id_num"`
	Province string `json:"province"`
	Address  string `json:"address"`
	Password string `json:"password"`
	GroupID  *int64 `json:"group_id"`
}

// UpdateStudentRequest carries partial updates; absent fields stay unchanged.
type UpdateStudentRequest struct {
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Email    *string `json:"email"`
	Grade    *int    `json:"grade"`
	IDNum    *string `json:"id_num"`
	Province *string `json:"province"`
	Address  *string `json:"address"`
	GroupID  *int64  `json:"group_id"`
}

// StudentResponse is a student row without the password hash.
type StudentResponse struct {
	StudentNumber int64     `json:"student_number"`
	Name          string    `json:"name"`
	Surname       string    `json:"surname"`
	Email         string    `json:"email"`
	Grade         int       `json:"grade"`
	IDNum         string    `json:"id_num"`
	Province      string    `json:"province"`
	Address       string    `json:"address"`
	GroupID       *int64    `json:"group_id"`
	GroupName     *string   `json:"group_name,omitempty"`
	SchoolName    *string   `json:"school_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
