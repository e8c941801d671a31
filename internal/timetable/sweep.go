package timetable

import (
	"time"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

// NeedsReset 判断一个时段是否需要被回收。
// 只有排期已经过去、且确实残留了有效状态（有预约计数，或是非固定忙碌
// 却处于 occupied）的时段才需要处理，这保证了扫描的幂等性。
func NeedsReset(slot *domain.Slot, now time.Time) bool {
	if !IsPast(slot.Day, slot.EndTime, now) {
		return false
	}
	return slot.CurrentCount > 0 || (slot.Status == domain.SlotOccupied && !slot.PermanentlyBusy)
}

// Reset 把一个过期时段恢复为下周可复用的状态。
// 固定忙碌的时段无论过期与否都保持 occupied，只清零计数。
func Reset(slot *domain.Slot) {
	slot.CurrentCount = 0
	if slot.PermanentlyBusy {
		slot.Status = domain.SlotOccupied
	} else {
		slot.Status = domain.SlotAvailable
	}
}
