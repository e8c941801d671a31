package domain

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotOccupied  SlotStatus = "occupied"
)

// Slot 是教师一周课表中的一个可预约单元，按周循环使用而不是每周重新生成。
type Slot struct {
	ID              int64      `json:"id"`
	TeacherID       int64      `json:"-"`
	Day             string     `json:"day"`       // MON ~ SUN
	StartTime       string     `json:"startTime"` // HH:MM
	EndTime         string     `json:"endTime"`   // HH:MM
	Status          SlotStatus `json:"status"`
	Capacity        int32      `json:"capacity"`
	CurrentCount    int32      `json:"currentCount"`
	PermanentlyBusy bool       `json:"permanentlyBusy"` // 初始设置时固定为忙碌的时段，永远不可被预约
	Version         int32      `json:"-"`
}
