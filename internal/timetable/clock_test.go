package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2026-09-02 是星期三
var wednesdayNoon = time.Date(2026, 9, 2, 12, 0, 0, 0, time.Local)

func TestDayIndex(t *testing.T) {
	assert.Equal(t, 0, DayIndex("SUN"))
	assert.Equal(t, 1, DayIndex("MON"))
	assert.Equal(t, 6, DayIndex("SAT"))
	assert.Equal(t, -1, DayIndex("FOO"))
	assert.Equal(t, -1, DayIndex("mon"))
}

func TestIsValidDay(t *testing.T) {
	for _, day := range []string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"} {
		assert.True(t, IsValidDay(day))
	}
	assert.False(t, IsValidDay(""))
	assert.False(t, IsValidDay("Mon"))
}

func TestClockHM(t *testing.T) {
	assert.Equal(t, "12:00", ClockHM(wednesdayNoon))
	assert.Equal(t, "08:05", ClockHM(time.Date(2026, 9, 2, 8, 5, 59, 0, time.Local)))
	assert.Equal(t, "00:00", ClockHM(time.Date(2026, 9, 2, 0, 0, 0, 0, time.Local)))
}

func TestIsPast(t *testing.T) {
	t.Run("更早的星期已经过去", func(t *testing.T) {
		assert.True(t, IsPast("MON", "17:50", wednesdayNoon))
		assert.True(t, IsPast("SUN", "08:55", wednesdayNoon))
	})

	t.Run("更晚的星期永远不算过去", func(t *testing.T) {
		assert.False(t, IsPast("THU", "08:55", wednesdayNoon))
		assert.False(t, IsPast("SAT", "08:55", wednesdayNoon))
	})

	t.Run("当天按结束时间判断", func(t *testing.T) {
		assert.True(t, IsPast("WED", "11:05", wednesdayNoon))
		assert.False(t, IsPast("WED", "12:55", wednesdayNoon))
	})

	t.Run("结束时间等于当前时间算过去", func(t *testing.T) {
		assert.True(t, IsPast("WED", "12:00", wednesdayNoon))
	})

	t.Run("非法星期不算过去", func(t *testing.T) {
		assert.False(t, IsPast("FOO", "08:55", wednesdayNoon))
	})
}
