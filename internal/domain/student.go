package domain

import "time"

type Student struct {
	ID         int64     `json:"id"`
	StudentNo  string    `json:"studentNo"` // 对外的学号，全局唯一
	UserID     int64     `json:"-"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	TeacherNos []string  `json:"teacherNos"` // 该学生被分配到的所有教师
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}
