package timetable

import (
	"fmt"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

// 教学日固定为周一到周六。
var Days = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT"}

// 一个教学日的固定课时划分，上午 10:10 和下午 14:10 前各有一次课间休息。
var Periods = [][2]string{
	{"08:00", "08:55"},
	{"08:55", "09:50"},
	{"10:10", "11:05"},
	{"11:05", "12:00"},
	{"12:00", "12:55"},
	{"12:55", "13:50"},
	{"14:10", "15:05"},
	{"15:05", "16:00"},
	{"16:00", "16:55"},
	{"16:55", "17:50"},
}

// DefaultGrid 生成一位教师的完整一周课表。
// 新生成的时段全部是 occupied 且非固定忙碌，直到初始设置完成前都不可被预约。
func DefaultGrid(teacherID int64, capacity int32) []*domain.Slot {
	slots := make([]*domain.Slot, 0, len(Days)*len(Periods))
	for _, day := range Days {
		for _, period := range Periods {
			slots = append(slots, &domain.Slot{
				TeacherID:    teacherID,
				Day:          day,
				StartTime:    period[0],
				EndTime:      period[1],
				Status:       domain.SlotOccupied,
				Capacity:     capacity,
				CurrentCount: 0,
			})
		}
	}
	return slots
}

// SlotKey 是初始设置接口中标识一个时段的键。
func SlotKey(day, start, end string) string {
	return fmt.Sprintf("%s|%s|%s", day, start, end)
}

// ApplySetup 把初始设置的结果写到一个时段上。
// 这是全量覆盖：不在忙碌集合中的时段一律恢复为可预约且非固定忙碌。
// 容量和当前人数不受影响。
func ApplySetup(slot *domain.Slot, busy bool) {
	slot.PermanentlyBusy = busy
	if busy {
		slot.Status = domain.SlotOccupied
	} else {
		slot.Status = domain.SlotAvailable
	}
}
