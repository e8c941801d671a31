package handler

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// prepareTimetable 是教师课表所有读写路径的公共入口：
// 先保证课表存在，再执行一趟回收，让调用方看到的状态相对当前时间不过期。
func (h *Handler) prepareTimetable(teacherID int64) error {
	if err := h.repository.EnsureTimetable(teacherID); err != nil {
		return err
	}
	return h.repository.SweepTimetable(teacherID)
}

func (h *Handler) GetMyTimetable(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	if err := h.prepareTimetable(teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slots, err := h.repository.GetSlotsByTeacherID(teacher.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取课表成功", map[string]any{
		"slots":     slots,
		"mustSetup": !teacher.SetupDone,
	})
}

func (h *Handler) GetSetupTimetable(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	if err := h.prepareTimetable(teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slots, err := h.repository.GetSlotsByTeacherID(teacher.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取初始设置课表成功", map[string]any{
		"slots":     slots,
		"mustSetup": !teacher.SetupDone,
	})
}

// SaveSetupTimetable 保存初始设置，可重复调用，以最后一次提交的忙碌集合为准。
func (h *Handler) SaveSetupTimetable(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	var req struct {
		BusyKeys []string `json:"busyKeys" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateSlotKeys(req.BusyKeys); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.prepareTimetable(teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	busyKeys := make(map[string]bool, len(req.BusyKeys))
	for _, key := range req.BusyKeys {
		busyKeys[key] = true
	}

	if err := h.repository.SaveSetupTimetable(teacher, busyKeys); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slots, err := h.repository.GetSlotsByTeacherID(teacher.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "保存初始设置成功", slots)
}

func (h *Handler) UpdateSlotCapacity(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	slotIDParam := chi.URLParam(r, "id")
	slotID, err := strconv.ParseInt(slotIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "时段ID无效")
		return
	}

	var req struct {
		Capacity int32 `json:"capacity" validate:"required,gte=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.prepareTimetable(teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slot, err := h.repository.UpdateSlotCapacity(teacher.ID, slotID, req.Capacity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSlotNotFound):
			h.errorResponse(w, r, "时段不存在")
		case errors.Is(err, domain.ErrLockedSlot):
			h.errorResponse(w, r, "固定忙碌的时段不允许修改容量")
		case errors.Is(err, domain.ErrInvalidCapacity):
			h.errorResponse(w, r, fmt.Sprintf("容量不能低于 %d", h.config.Timetable.MinCapacity))
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新容量成功", slot)
}

func (h *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	if err := h.prepareTimetable(teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	bookings, err := h.repository.GetBookedDetailsByTeacherID(teacher.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取预约列表成功", bookings)
}

func (h *Handler) ExportBookingsCSV(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	if err := h.prepareTimetable(teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	bookings, err := h.repository.GetAllBookingDetailsByTeacherID(teacher.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings-history.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"bookingId", "studentName", "studentEmail", "studentNo", "day", "start", "end", "status", "createdAt"})
	for _, booking := range bookings {
		record := []string{
			strconv.FormatInt(booking.ID, 10),
			booking.StudentName,
			booking.StudentEmail,
			booking.StudentNo,
			booking.SlotDay,
			booking.SlotStart,
			booking.SlotEnd,
			string(booking.Status),
			booking.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			h.logInternalServerError(r, err)
			return
		}
	}
	writer.Flush()

	if err := writer.Error(); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) GetDayNotes(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	notes, err := h.repository.GetDayNotes(teacher.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取备注成功", notes)
}

func (h *Handler) SaveDayNotes(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	var req struct {
		Notes []struct {
			Day         string `json:"day" validate:"required,oneof=MON TUE WED THU FRI SAT SUN"`
			Venue       string `json:"venue"`
			Description string `json:"description"`
		} `json:"notes" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	for _, item := range req.Notes {
		note := &domain.DayNote{
			TeacherID:   teacher.ID,
			Day:         item.Day,
			Venue:       item.Venue,
			Description: item.Description,
		}
		if err := h.repository.SaveDayNote(note); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	notes, err := h.repository.GetDayNotes(teacher.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "保存备注成功", notes)
}

func (h *Handler) GetMyStudents(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	students, err := h.repository.GetStudentsByTeacherID(teacher.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取学生列表成功", students)
}

// ImportMyStudents 通过 CSV 批量导入学生并分配给当前教师。
// 已存在的学生只补充分配关系，不修改密码。
func (h *Handler) ImportMyStudents(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherInfoCtx).(*domain.Teacher)

	rows, err := readCSVRows(r, "file", []string{"name", "email", "studentNo", "password"})
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	added, linked := 0, 0
	importErrors := make([]string, 0)
	for i, row := range rows {
		name, email, studentNo, password := row["name"], row["email"], row["studentno"], row["password"]
		if name == "" || email == "" || studentNo == "" || password == "" {
			importErrors = append(importErrors, fmt.Sprintf("第 %d 行缺少必填字段", i+1))
			continue
		}

		student, err := h.repository.GetStudentByStudentNo(studentNo)
		if err == nil {
			if err := h.repository.LinkStudentTeacher(student.ID, teacher.ID); err != nil {
				importErrors = append(importErrors, fmt.Sprintf("第 %d 行分配教师失败", i+1))
				continue
			}
			linked++
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			h.internalServerError(w, r, err)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		user := &domain.User{
			Username:           studentNo,
			PasswordHash:       string(hashedPassword),
			FullName:           name,
			Email:              email,
			Role:               domain.RoleStudent,
			MustChangePassword: true,
		}
		newStudent := &domain.Student{
			StudentNo:  studentNo,
			Name:       name,
			Email:      email,
			TeacherNos: []string{teacher.TeacherNo},
		}
		if err := h.repository.CreateStudent(user, newStudent); err != nil {
			importErrors = append(importErrors, fmt.Sprintf("第 %d 行创建学生失败", i+1))
			continue
		}
		added++
	}

	h.successResponse(w, r, fmt.Sprintf("导入完成：新增 %d 人，补充分配 %d 人，失败 %d 行", added, linked, len(importErrors)), map[string]any{
		"added":  added,
		"linked": linked,
		"errors": importErrors,
	})
}
