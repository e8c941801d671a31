package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

// GetAssignedTimetables 返回学生被分配的每位教师的课表视图，
// 包含时段、按星期的备注以及今天是否已在该教师处预约过。
func (h *Handler) GetAssignedTimetables(w http.ResponseWriter, r *http.Request) {
	me := r.Context().Value(MyInfoCtx).(*domain.User)
	student := r.Context().Value(StudentInfoCtx).(*domain.Student)

	teachers, err := h.repository.GetTeachersByTeacherNos(student.TeacherNos)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	type timetableView struct {
		Teacher        *domain.Teacher   `json:"teacher"`
		Slots          []*domain.Slot    `json:"slots"`
		Notes          []*domain.DayNote `json:"notes"`
		HasBookedToday bool              `json:"hasBookedToday"`
	}

	views := make([]*timetableView, 0, len(teachers))
	for _, teacher := range teachers {
		if err := h.prepareTimetable(teacher.ID); err != nil {
			h.internalServerError(w, r, err)
			return
		}

		slots, err := h.repository.GetSlotsByTeacherID(teacher.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		notes, err := h.repository.GetDayNotes(teacher.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		hasBookedToday, err := h.repository.HasBookedToday(me.ID, teacher.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		views = append(views, &timetableView{
			Teacher:        teacher,
			Slots:          slots,
			Notes:          notes,
			HasBookedToday: hasBookedToday,
		})
	}

	h.successResponse(w, r, "获取课表成功", views)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	me := r.Context().Value(MyInfoCtx).(*domain.User)
	student := r.Context().Value(StudentInfoCtx).(*domain.Student)

	var req struct {
		TeacherNo string `json:"teacherNo" validate:"required"`
		SlotID    int64  `json:"slotID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 学生只能预约被分配到的教师
	assigned := false
	for _, teacherNo := range student.TeacherNos {
		if teacherNo == req.TeacherNo {
			assigned = true
			break
		}
	}
	if !assigned {
		h.errorResponse(w, r, "你没有被分配给该教师")
		return
	}

	teacher, err := h.repository.GetTeacherByTeacherNo(req.TeacherNo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	booking, err := h.repository.ReserveSlot(me.ID, teacher.ID, req.SlotID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSlotNotFound):
			h.errorResponse(w, r, "时段不存在")
		case errors.Is(err, domain.ErrSlotExpired):
			h.errorResponse(w, r, "该时段已过期，无法预约")
		case errors.Is(err, domain.ErrSlotNotAvailable):
			h.errorResponse(w, r, "该时段不可预约")
		case errors.Is(err, domain.ErrSlotFull):
			h.errorResponse(w, r, "该时段已约满")
		case errors.Is(err, domain.ErrAlreadyBooked):
			h.errorResponse(w, r, "你已经预约过该时段")
		case errors.Is(err, domain.ErrDailyLimitReached):
			h.errorResponse(w, r, "你今天已在该教师处预约过，每天最多预约一次")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "预约成功", booking)
}

func (h *Handler) GetStudentBookings(w http.ResponseWriter, r *http.Request) {
	me := r.Context().Value(MyInfoCtx).(*domain.User)
	student := r.Context().Value(StudentInfoCtx).(*domain.Student)

	// 先回收所有相关教师的课表，保证预约状态是最新的
	teachers, err := h.repository.GetTeachersByTeacherNos(student.TeacherNos)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	for _, teacher := range teachers {
		if err := h.repository.SweepTimetable(teacher.ID); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	bookings, err := h.repository.GetBookingsByStudentUserID(me.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取预约记录成功", bookings)
}
