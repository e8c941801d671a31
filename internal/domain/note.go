package domain

// DayNote 是教师按星期维护的地点和说明，随课表一起返回给学生。
type DayNote struct {
	ID          int64  `json:"id"`
	TeacherID   int64  `json:"-"`
	Day         string `json:"day"` // MON ~ SUN
	Venue       string `json:"venue"`
	Description string `json:"description"`
	Version     int32  `json:"-"`
}
