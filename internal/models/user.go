package models

// Role enumerates the user roles known to the system.
type Role string

const (
	// RoleTeacher can author exams, revise grades and resolve disputes.
	RoleTeacher Role = "TEACHER"
	// RoleStudent can take exams and file disputes.
	RoleStudent Role = "STUDENT"
	// RoleAdmin has full access.
	RoleAdmin Role = "ADMIN"
)

// User is an authenticated participant. Credentials live in a static
// allow-list; this record is what the rest of the system sees.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
}
