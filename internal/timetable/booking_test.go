package timetable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

func newAvailableSlot(capacity int32) *domain.Slot {
	return &domain.Slot{
		ID:        1,
		TeacherID: 1,
		Day:       "FRI",
		StartTime: "08:00",
		EndTime:   "08:55",
		Status:    domain.SlotAvailable,
		Capacity:  capacity,
	}
}

func TestAdmit(t *testing.T) {
	t.Run("通过所有检查", func(t *testing.T) {
		slot := newAvailableSlot(5)
		assert.NoError(t, Admit(slot, false, false, wednesdayNoon))
	})

	t.Run("时段不存在", func(t *testing.T) {
		assert.ErrorIs(t, Admit(nil, false, false, wednesdayNoon), domain.ErrSlotNotFound)
	})

	t.Run("时段已过期", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Day = "MON"
		assert.ErrorIs(t, Admit(slot, false, false, wednesdayNoon), domain.ErrSlotExpired)
	})

	t.Run("时段不可预约", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Status = domain.SlotOccupied
		assert.ErrorIs(t, Admit(slot, false, false, wednesdayNoon), domain.ErrSlotNotAvailable)
	})

	t.Run("时段已满", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.CurrentCount = 5
		assert.ErrorIs(t, Admit(slot, false, false, wednesdayNoon), domain.ErrSlotFull)
	})

	t.Run("约满翻转后的时段报已满而不是不可预约", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.CurrentCount = 5
		slot.Status = domain.SlotOccupied
		assert.ErrorIs(t, Admit(slot, false, false, wednesdayNoon), domain.ErrSlotFull)
	})

	t.Run("固定忙碌的时段永远是不可预约", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Status = domain.SlotOccupied
		slot.PermanentlyBusy = true
		slot.CurrentCount = 5
		assert.ErrorIs(t, Admit(slot, false, false, wednesdayNoon), domain.ErrSlotNotAvailable)
	})

	t.Run("重复预约同一时段", func(t *testing.T) {
		slot := newAvailableSlot(5)
		assert.ErrorIs(t, Admit(slot, true, false, wednesdayNoon), domain.ErrAlreadyBooked)
	})

	t.Run("达到当日上限", func(t *testing.T) {
		slot := newAvailableSlot(5)
		assert.ErrorIs(t, Admit(slot, false, true, wednesdayNoon), domain.ErrDailyLimitReached)
	})

	t.Run("过期优先于其他所有检查", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.Day = "MON"
		slot.Status = domain.SlotOccupied
		slot.CurrentCount = 5
		assert.ErrorIs(t, Admit(slot, true, true, wednesdayNoon), domain.ErrSlotExpired)
	})

	t.Run("已满优先于重复预约", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.CurrentCount = 5
		assert.ErrorIs(t, Admit(slot, true, true, wednesdayNoon), domain.ErrSlotFull)
	})

	t.Run("重复预约优先于当日上限", func(t *testing.T) {
		slot := newAvailableSlot(5)
		assert.ErrorIs(t, Admit(slot, true, true, wednesdayNoon), domain.ErrAlreadyBooked)
	})
}

func TestApplyBooking(t *testing.T) {
	t.Run("未满时保持可预约", func(t *testing.T) {
		slot := newAvailableSlot(5)
		ApplyBooking(slot)

		assert.Equal(t, int32(1), slot.CurrentCount)
		assert.Equal(t, domain.SlotAvailable, slot.Status)
	})

	t.Run("达到容量时翻转为忙碌", func(t *testing.T) {
		slot := newAvailableSlot(2)
		slot.CurrentCount = 1
		ApplyBooking(slot)

		assert.Equal(t, int32(2), slot.CurrentCount)
		assert.Equal(t, domain.SlotOccupied, slot.Status)
	})
}

// 并发预约时成功数量不能超过容量，串行化由调用方的临界区保证。
func TestConcurrentBookingNeverExceedsCapacity(t *testing.T) {
	const capacity = 5
	const attempts = 100

	slot := newAvailableSlot(capacity)

	var mu sync.Mutex
	var wg sync.WaitGroup
	succeeded := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			mu.Lock()
			defer mu.Unlock()

			if err := Admit(slot, false, false, wednesdayNoon); err != nil {
				return
			}
			ApplyBooking(slot)
			succeeded++
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, int32(capacity), slot.CurrentCount)
	assert.Equal(t, domain.SlotOccupied, slot.Status)
}

// 同一个学生并发预约同一教师的不同时段，当天最多成功一次。
func TestConcurrentBookingRespectsDailyLimit(t *testing.T) {
	const attempts = 20

	slots := make([]*domain.Slot, attempts)
	for i := range slots {
		slots[i] = newAvailableSlot(5)
		slots[i].ID = int64(i + 1)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	bookedToday := false
	succeeded := 0

	for _, slot := range slots {
		wg.Add(1)
		go func(slot *domain.Slot) {
			defer wg.Done()

			mu.Lock()
			defer mu.Unlock()

			if err := Admit(slot, false, bookedToday, wednesdayNoon); err != nil {
				return
			}
			ApplyBooking(slot)
			bookedToday = true
			succeeded++
		}(slot)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestCheckCapacityEdit(t *testing.T) {
	t.Run("合法修改", func(t *testing.T) {
		slot := newAvailableSlot(5)
		require.NoError(t, CheckCapacityEdit(slot, 8, 5))
	})

	t.Run("时段不存在", func(t *testing.T) {
		assert.ErrorIs(t, CheckCapacityEdit(nil, 8, 5), domain.ErrSlotNotFound)
	})

	t.Run("固定忙碌时段不允许修改", func(t *testing.T) {
		slot := newAvailableSlot(5)
		slot.PermanentlyBusy = true
		assert.ErrorIs(t, CheckCapacityEdit(slot, 8, 5), domain.ErrLockedSlot)
	})

	t.Run("容量低于下限", func(t *testing.T) {
		slot := newAvailableSlot(5)
		assert.ErrorIs(t, CheckCapacityEdit(slot, 4, 5), domain.ErrInvalidCapacity)
	})

	t.Run("允许低于当前预约人数", func(t *testing.T) {
		slot := newAvailableSlot(10)
		slot.CurrentCount = 8
		assert.NoError(t, CheckCapacityEdit(slot, 5, 5))
	})
}
