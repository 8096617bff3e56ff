package domain

import "fmt"

// Role enumerates the recognized principal types. A principal's role is
// determined by which table its row lives in.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleMentor  Role = "mentor"
	RoleStudent Role = "student"
)

// ParseRole validates a client-supplied user type.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleTeacher, RoleMentor, RoleStudent:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown user type %q", s)
	}
}

// Table returns the credential table backing the role.
func (r Role) Table() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTeacher:
		return "teachers"
	case RoleMentor:
		return "mentors"
	case RoleStudent:
		return "students"
	}
	return ""
}

// IDColumn returns the primary key column of the role's table.
func (r Role) IDColumn() string {
	if r == RoleStudent {
		return "student_number"
	}
	return "id"
}

// RoleForTable reports whether a table backs a principal role.
func RoleForTable(table string) (Role, bool) {
	switch table {
	case "admin":
		return RoleAdmin, true
	case "teachers":
		return RoleTeacher, true
	case "mentors":
		return RoleMentor, true
	case "students":
		return RoleStudent, true
	}
	return "", false
}

// Principal is the sanitized identity attached to authenticated requests.
type Principal struct {
	ID      int64
	Email   string
	Name    string
	Surname string
	Role    Role
}

// Credential is a principal row as read from its role table during login.
type Credential struct {
	ID           int64
	Email        string
	Name         string
	Surname      string
	PasswordHash string
}
