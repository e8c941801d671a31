package domain

import "time"

type BookingStatus string

const (
	BookingBooked    BookingStatus = "booked"
	BookingCancelled BookingStatus = "cancelled"
	BookingExpired   BookingStatus = "expired"
)

type Booking struct {
	ID            int64         `json:"id"`
	StudentUserID int64         `json:"studentUserID"`
	TeacherID     int64         `json:"teacherID"`
	SlotID        int64         `json:"slotID"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	Version       int32         `json:"-"`
}

// BookingDetail 在教师查看预约列表和导出 CSV 时使用。
type BookingDetail struct {
	Booking
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
	StudentNo    string `json:"studentNo"`
	SlotDay      string `json:"slotDay"`
	SlotStart    string `json:"slotStart"`
	SlotEnd      string `json:"slotEnd"`
}
