package timetable

import (
	"time"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

// Admit 按固定顺序检查一次预约请求的全部前置条件，返回第一个不满足的条件。
// 顺序上先做便宜的通用检查，最后才做依赖预约历史的检查，
// hasSlotBooking 和 hasBookedToday 由存储层按 (学生, 教师) 查询得到。
// 任何检查失败时都不会有任何状态被修改。
func Admit(slot *domain.Slot, hasSlotBooking bool, hasBookedToday bool, now time.Time) error {
	if slot == nil {
		return domain.ErrSlotNotFound
	}
	if IsPast(slot.Day, slot.EndTime, now) {
		return domain.ErrSlotExpired
	}
	// 固定忙碌的时段永远不会是 available，这里一并被排除。
	// 因约满而翻转为 occupied 的时段单独报已满，和固定忙碌区分开。
	if slot.Status != domain.SlotAvailable {
		if !slot.PermanentlyBusy && slot.CurrentCount >= slot.Capacity {
			return domain.ErrSlotFull
		}
		return domain.ErrSlotNotAvailable
	}
	if slot.CurrentCount >= slot.Capacity {
		return domain.ErrSlotFull
	}
	if hasSlotBooking {
		return domain.ErrAlreadyBooked
	}
	if hasBookedToday {
		return domain.ErrDailyLimitReached
	}
	return nil
}

// ApplyBooking 在 Admit 通过后把一次预约落到时段上。
// 检查和落账必须在同一个临界区（或同一个事务）内执行，否则并发请求会超卖。
func ApplyBooking(slot *domain.Slot) {
	slot.CurrentCount++
	if slot.CurrentCount >= slot.Capacity {
		slot.Status = domain.SlotOccupied
	}
}

// CheckCapacityEdit 检查教师对某个时段的容量修改是否允许。
func CheckCapacityEdit(slot *domain.Slot, capacity int32, minCapacity int32) error {
	if slot == nil {
		return domain.ErrSlotNotFound
	}
	if slot.PermanentlyBusy {
		return domain.ErrLockedSlot
	}
	if capacity < minCapacity {
		return domain.ErrInvalidCapacity
	}
	return nil
}
