package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

func TestNeedsReset(t *testing.T) {
	t.Run("未过期的时段不处理", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Day = "FRI"
		slot.CurrentCount = 3
		assert.False(t, NeedsReset(slot, wednesdayNoon))
	})

	t.Run("过期且有预约", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Day = "MON"
		slot.CurrentCount = 3
		assert.True(t, NeedsReset(slot, wednesdayNoon))
	})

	t.Run("过期且已约满", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Day = "MON"
		slot.Status = domain.SlotOccupied
		slot.CurrentCount = 5
		assert.True(t, NeedsReset(slot, wednesdayNoon))
	})

	t.Run("过期但没有残留状态", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Day = "MON"
		assert.False(t, NeedsReset(slot, wednesdayNoon))
	})

	t.Run("过期的固定忙碌时段只在有计数时处理", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Day = "MON"
		slot.Status = domain.SlotOccupied
		slot.PermanentlyBusy = true
		assert.False(t, NeedsReset(slot, wednesdayNoon))

		slot.CurrentCount = 1
		assert.True(t, NeedsReset(slot, wednesdayNoon))
	})
}

func TestReset(t *testing.T) {
	t.Run("普通时段恢复为可预约", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Status = domain.SlotOccupied
		slot.CurrentCount = 5
		Reset(slot)

		assert.Equal(t, domain.SlotAvailable, slot.Status)
		assert.Equal(t, int32(0), slot.CurrentCount)
	})

	t.Run("固定忙碌时段保持忙碌", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Status = domain.SlotOccupied
		slot.PermanentlyBusy = true
		slot.CurrentCount = 2
		Reset(slot)

		assert.Equal(t, domain.SlotOccupied, slot.Status)
		assert.Equal(t, int32(0), slot.CurrentCount)
	})
}

// 回收是幂等的：第一趟之后再扫任意多趟都不会改变任何时段。
func TestSweepIsIdempotent(t *testing.T) {
	slots := DefaultGrid(1, 5)
	for _, slot := range slots {
		ApplySetup(slot, slot.Day == "MON" && slot.StartTime == "08:00")
	}
	slots[1].CurrentCount = 3
	slots[1].Status = domain.SlotOccupied

	sweep := func() int {
		n := 0
		for _, slot := range slots {
			if NeedsReset(slot, wednesdayNoon) {
				Reset(slot)
				n++
			}
		}
		return n
	}

	assert.Greater(t, sweep(), 0)
	assert.Equal(t, 0, sweep())
	assert.Equal(t, 0, sweep())
}

// 完整走一遍一周的生命周期：生成、设置、预约、过期回收、下周复用。
func TestWeeklyLifecycle(t *testing.T) {
	slots := DefaultGrid(1, 2)

	// 初始设置：周一第一节固定忙碌，其余可预约
	for _, slot := range slots {
		ApplySetup(slot, slot.Day == "MON" && slot.StartTime == "08:00")
	}

	var target *domain.Slot
	for _, slot := range slots {
		if slot.Day == "TUE" && slot.StartTime == "08:00" {
			target = slot
			break
		}
	}
	require.NotNil(t, target)

	// 周一时两名学生约满周二的第一节
	monday := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	for i := 0; i < 2; i++ {
		require.NoError(t, Admit(target, false, false, monday))
		ApplyBooking(target)
	}
	assert.Equal(t, domain.SlotOccupied, target.Status)
	assert.ErrorIs(t, Admit(target, false, false, monday), domain.ErrSlotFull)

	// 周三扫一遍，周二的时段被回收，固定忙碌的时段不受影响
	for _, slot := range slots {
		if NeedsReset(slot, wednesdayNoon) {
			Reset(slot)
		}
	}
	assert.Equal(t, domain.SlotAvailable, target.Status)
	assert.Equal(t, int32(0), target.CurrentCount)

	for _, slot := range slots {
		if slot.PermanentlyBusy {
			assert.Equal(t, domain.SlotOccupied, slot.Status)
		}
	}

	// 下一周的周一，周二的时段又可以被预约了
	nextMonday := time.Date(2026, 9, 7, 12, 0, 0, 0, time.Local)
	require.NoError(t, Admit(target, false, false, nextMonday))
}
