package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/timetable"
)

// ValidateSlotKeys 检查初始设置提交的每一个键都落在固定课表网格内。
func ValidateSlotKeys(keys []string) error {
	valid := make(map[string]bool, len(timetable.Days)*len(timetable.Periods))
	for _, day := range timetable.Days {
		for _, period := range timetable.Periods {
			valid[timetable.SlotKey(day, period[0], period[1])] = true
		}
	}

	for i, key := range keys {
		if !valid[key] {
			return fmt.Errorf("第 %d 个时段键不合法: %s", i+1, key)
		}
	}

	return nil
}
