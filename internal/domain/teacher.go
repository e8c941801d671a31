package domain

import "time"

type Teacher struct {
	ID        int64     `json:"id"`
	TeacherNo string    `json:"teacherNo"` // 对外的教师编号，全局唯一
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	SetupDone bool      `json:"setupDone"` // 初始课表设置是否已完成
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
