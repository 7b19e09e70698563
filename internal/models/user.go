package models

type Student struct {
	ID    string `json:"student_id" db:"student_id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

type Teacher struct {
	ID    string `json:"teacher_id" db:"teacher_id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleTeacher:
		return Role(s), true
	default:
		return "", false
	}
}
