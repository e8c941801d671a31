package domain

import "errors"

// 预约状态机中所有可预期的业务失败。这些错误会原样返回给调用方，
// 由上层决定如何提示用户，核心逻辑不做任何重试。
var (
	ErrSlotNotFound      = errors.New("时段不存在")
	ErrSlotExpired       = errors.New("时段时间已过")
	ErrSlotNotAvailable  = errors.New("时段不可预约")
	ErrSlotFull          = errors.New("时段预约人数已满")
	ErrAlreadyBooked     = errors.New("已预约过该时段")
	ErrDailyLimitReached = errors.New("今天已预约过该教师的时段")
	ErrLockedSlot        = errors.New("固定忙碌时段不允许修改")
	ErrInvalidCapacity   = errors.New("容量低于允许的最小值")
)
