package timetable

import (
	"fmt"
	"time"
)

// 星期符号到整数的唯一映射，周日为 0，与 time.Weekday 一致。
// 所有需要判断时段是否已过期的地方都必须使用这个映射，不允许各自定义。
var dayIndexes = map[string]int{
	"SUN": 0,
	"MON": 1,
	"TUE": 2,
	"WED": 3,
	"THU": 4,
	"FRI": 5,
	"SAT": 6,
}

func DayIndex(day string) int {
	idx, ok := dayIndexes[day]
	if !ok {
		return -1
	}
	return idx
}

func IsValidDay(day string) bool {
	_, ok := dayIndexes[day]
	return ok
}

func ClockHM(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// IsPast 判断某个时段在本周的排期是否已经过去。
// 时间都是零填充的 "HH:MM"，所以字符串比较即是时间上的全序。
// 比今天靠后的星期永远不算过去。
func IsPast(day string, end string, now time.Time) bool {
	slotDay := DayIndex(day)
	if slotDay < 0 {
		return false
	}

	today := int(now.Weekday())
	if slotDay < today {
		return true
	}
	if slotDay > today {
		return false
	}

	return end <= ClockHM(now)
}
