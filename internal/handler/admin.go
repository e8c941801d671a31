package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有用户信息成功", users)
}

// createTeacherAccount 创建教师账号并通过邮件下发随机初始密码。
func (h *Handler) createTeacherAccount(name string, email string, teacherNo string) error {
	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		Username:           teacherNo,
		PasswordHash:       string(hashedPassword),
		FullName:           name,
		Email:              email,
		Role:               domain.RoleTeacher,
		MustChangePassword: true,
	}
	teacher := &domain.Teacher{
		TeacherNo: teacherNo,
		Name:      name,
		Email:     email,
	}

	if err := h.repository.CreateTeacher(user, teacher); err != nil {
		return err
	}

	mailMessage := domain.MailMessage{
		Type: "create_user",
		To:   email,
		Data: domain.CreateUserMailData{
			FullName: name,
			Username: teacherNo,
			Password: password,
		},
	}
	if err := h.publishMailMessage(mailMessage); err != nil {
		// 账号已经创建成功，邮件投递失败只记录，不回滚
		slog.Error("投递新账号邮件失败", "email", email, "error", err)
	}

	return nil
}

func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		TeacherNo string `json:"teacherNo" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.createTeacherAccount(req.Name, req.Email, req.TeacherNo); err != nil {
		h.handleUniqueViolation(w, r, err)
		return
	}

	h.successResponse(w, r, "创建教师成功，初始密码已发送至教师邮箱", nil)
}

func (h *Handler) ImportTeachers(w http.ResponseWriter, r *http.Request) {
	rows, err := readCSVRows(r, "file", []string{"name", "email", "teacherNo"})
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	added := 0
	importErrors := make([]string, 0)
	for i, row := range rows {
		name, email, teacherNo := row["name"], row["email"], row["teacherno"]
		if name == "" || email == "" || teacherNo == "" {
			importErrors = append(importErrors, fmt.Sprintf("第 %d 行缺少必填字段", i+1))
			continue
		}

		if err := h.createTeacherAccount(name, email, teacherNo); err != nil {
			importErrors = append(importErrors, fmt.Sprintf("第 %d 行创建教师失败", i+1))
			continue
		}
		added++
	}

	h.successResponse(w, r, fmt.Sprintf("导入完成：新增 %d 人，失败 %d 行", added, len(importErrors)), map[string]any{
		"added":  added,
		"errors": importErrors,
	})
}

// ResetTeacherPassword 为教师重置一个随机密码并邮件下发，
// 教师下次登录时必须修改密码。
func (h *Handler) ResetTeacherPassword(w http.ResponseWriter, r *http.Request) {
	teacherNo := chi.URLParam(r, "teacherNo")

	teacher, err := h.repository.GetTeacherByTeacherNo(teacherNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "教师不存在")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	user, err := h.repository.GetUserByID(teacher.UserID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user.PasswordHash = string(hashedPassword)
	user.MustChangePassword = true
	if err := h.repository.UpdateUser(user); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "create_user",
		To:   user.Email,
		Data: domain.CreateUserMailData{
			FullName: user.FullName,
			Username: user.Username,
			Password: password,
		},
	}
	if err := h.publishMailMessage(mailMessage); err != nil {
		slog.Error("投递重置密码邮件失败", "email", user.Email, "error", err)
	}

	h.successResponse(w, r, "重置密码成功，新密码已发送至教师邮箱", nil)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string   `json:"name" validate:"required"`
		Email      string   `json:"email" validate:"required,email"`
		StudentNo  string   `json:"studentNo" validate:"required"`
		Password   string   `json:"password" validate:"required,min=8"`
		TeacherNos []string `json:"teacherNos"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.StudentNo,
		PasswordHash: string(hashedPassword),
		FullName:     req.Name,
		Email:        req.Email,
		Role:         domain.RoleStudent,
	}
	student := &domain.Student{
		StudentNo:  req.StudentNo,
		Name:       req.Name,
		Email:      req.Email,
		TeacherNos: req.TeacherNos,
	}

	if err := h.repository.CreateStudent(user, student); err != nil {
		h.handleUniqueViolation(w, r, err)
		return
	}

	h.successResponse(w, r, "创建学生成功", nil)
}

func (h *Handler) ImportStudents(w http.ResponseWriter, r *http.Request) {
	rows, err := readCSVRows(r, "file", []string{"name", "email", "studentNo", "password", "teacherNo"})
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	added := 0
	importErrors := make([]string, 0)
	for i, row := range rows {
		name, email, studentNo, password := row["name"], row["email"], row["studentno"], row["password"]
		if name == "" || email == "" || studentNo == "" || password == "" {
			importErrors = append(importErrors, fmt.Sprintf("第 %d 行缺少必填字段", i+1))
			continue
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
		student := &domain.Student{
			StudentNo: studentNo,
			Name:      name,
			Email:     email,
		}
		if teacherNo := row["teacherno"]; teacherNo != "" {
			student.TeacherNos = []string{teacherNo}
		}

		if err := h.repository.CreateStudent(user, student); err != nil {
			importErrors = append(importErrors, fmt.Sprintf("第 %d 行创建学生失败", i+1))
			continue
		}
		added++
	}

	h.successResponse(w, r, fmt.Sprintf("导入完成：新增 %d 人，失败 %d 行", added, len(importErrors)), map[string]any{
		"added":  added,
		"errors": importErrors,
	})
}

// SweepTeacherTimetable 手动触发一次课表回收。
// 正常情况下回收在每次读写前自动执行，这个入口用于维护和排查。
func (h *Handler) SweepTeacherTimetable(w http.ResponseWriter, r *http.Request) {
	teacherNo := chi.URLParam(r, "teacherNo")

	teacher, err := h.repository.GetTeacherByTeacherNo(teacherNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "教师不存在")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.SweepTimetable(teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "回收完成", nil)
}

// LinkStudentTeacher 把已有学生分配给已有教师。
func (h *Handler) LinkStudentTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentNo string `json:"studentNo" validate:"required"`
		TeacherNo string `json:"teacherNo" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	student, err := h.repository.GetStudentByStudentNo(req.StudentNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "学生不存在")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	teacher, err := h.repository.GetTeacherByTeacherNo(req.TeacherNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "教师不存在")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.LinkStudentTeacher(student.ID, teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "分配成功", nil)
}
