package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin   Role = "管理员"
	RoleTeacher Role = "教师"
	RoleStudent Role = "学生"
)

type User struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"-"`
	FullName           string    `json:"fullName"`
	Email              string    `json:"email"`
	Role               Role      `json:"role"`
	MustChangePassword bool      `json:"mustChangePassword"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	Version            int32     `json:"-"`
}
