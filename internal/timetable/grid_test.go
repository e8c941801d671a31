package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

func TestDefaultGrid(t *testing.T) {
	slots := DefaultGrid(42, 5)

	require.Len(t, slots, len(Days)*len(Periods))

	seen := make(map[string]bool)
	for _, slot := range slots {
		assert.Equal(t, int64(42), slot.TeacherID)
		assert.Equal(t, domain.SlotOccupied, slot.Status)
		assert.False(t, slot.PermanentlyBusy)
		assert.Equal(t, int32(5), slot.Capacity)
		assert.Equal(t, int32(0), slot.CurrentCount)

		key := SlotKey(slot.Day, slot.StartTime, slot.EndTime)
		assert.False(t, seen[key], "重复的时段: %s", key)
		seen[key] = true
	}
}

func TestDefaultGridDoesNotIncludeSunday(t *testing.T) {
	for _, slot := range DefaultGrid(1, 5) {
		assert.NotEqual(t, "SUN", slot.Day)
	}
}

func TestPeriodsAreOrderedAndDisjoint(t *testing.T) {
	for i, period := range Periods {
		assert.Less(t, period[0], period[1], "第 %d 个课时开始时间应早于结束时间", i)
		if i > 0 {
			assert.LessOrEqual(t, Periods[i-1][1], period[0], "第 %d 个课时与前一个课时重叠", i)
		}
	}
}

func TestSlotKey(t *testing.T) {
	assert.Equal(t, "MON|08:00|08:55", SlotKey("MON", "08:00", "08:55"))
}

func TestApplySetup(t *testing.T) {
	t.Run("标记为忙碌", func(t *testing.T) {
		slot := &domain.Slot{Status: domain.SlotAvailable, Capacity: 5, CurrentCount: 2}
		ApplySetup(slot, true)

		assert.Equal(t, domain.SlotOccupied, slot.Status)
		assert.True(t, slot.PermanentlyBusy)
		assert.Equal(t, int32(5), slot.Capacity)
		assert.Equal(t, int32(2), slot.CurrentCount)
	})

	t.Run("恢复为可预约", func(t *testing.T) {
		slot := &domain.Slot{Status: domain.SlotOccupied, PermanentlyBusy: true}
		ApplySetup(slot, false)

		assert.Equal(t, domain.SlotAvailable, slot.Status)
		assert.False(t, slot.PermanentlyBusy)
	})

	t.Run("重复设置是全量覆盖", func(t *testing.T) {
		slot := &domain.Slot{Status: domain.SlotOccupied, PermanentlyBusy: true}
		ApplySetup(slot, true)
		ApplySetup(slot, false)

		assert.Equal(t, domain.SlotAvailable, slot.Status)
		assert.False(t, slot.PermanentlyBusy)
	})
}

// 第二次提交的忙碌集合完全取代第一次的。
func TestSetupOverwriteSemantics(t *testing.T) {
	slots := DefaultGrid(1, 5)

	apply := func(busyKeys map[string]bool) {
		for _, slot := range slots {
			ApplySetup(slot, busyKeys[SlotKey(slot.Day, slot.StartTime, slot.EndTime)])
		}
	}

	keyA := SlotKey("MON", "08:00", "08:55")
	keyB := SlotKey("TUE", "08:00", "08:55")
	keyC := SlotKey("WED", "08:00", "08:55")

	apply(map[string]bool{keyA: true, keyB: true})
	apply(map[string]bool{keyC: true})

	for _, slot := range slots {
		key := SlotKey(slot.Day, slot.StartTime, slot.EndTime)
		if key == keyC {
			assert.True(t, slot.PermanentlyBusy)
			assert.Equal(t, domain.SlotOccupied, slot.Status)
		} else {
			assert.False(t, slot.PermanentlyBusy, "时段 %s 应已恢复", key)
			assert.Equal(t, domain.SlotAvailable, slot.Status)
		}
	}
}
