package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/config"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/register", h.RegisterStudent)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/teacher", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleTeacher}))
			r.Use(h.myInfo)
			r.Use(h.teacherInfo)
			r.Get("/timetable", h.GetMyTimetable)
			r.Route("/timetable/setup", func(r chi.Router) {
				r.Get("/", h.GetSetupTimetable)
				r.Post("/", h.SaveSetupTimetable)
			})
			r.Patch("/slots/{id}/capacity", h.UpdateSlotCapacity)
			r.Get("/bookings", h.GetMyBookings)
			r.Get("/bookings/export", h.ExportBookingsCSV)
			r.Route("/day-notes", func(r chi.Router) {
				r.Get("/", h.GetDayNotes)
				r.Post("/", h.SaveDayNotes)
			})
			r.Get("/students", h.GetMyStudents)
			r.Post("/students/import", h.ImportMyStudents)
		})

		r.Route("/student", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleStudent}))
			r.Use(h.myInfo)
			r.Use(h.studentInfo)
			r.Get("/timetable", h.GetAssignedTimetables)
			r.Route("/bookings", func(r chi.Router) {
				r.Post("/", h.CreateBooking)
				r.Get("/", h.GetStudentBookings)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/users", h.GetAllUserInfo)
			r.Route("/teachers", func(r chi.Router) {
				r.Post("/", h.CreateTeacher)
				r.Post("/import", h.ImportTeachers)
				r.Post("/{teacherNo}/reset-password", h.ResetTeacherPassword)
				r.Post("/{teacherNo}/sweep", h.SweepTeacherTimetable)
			})
			r.Route("/students", func(r chi.Router) {
				r.Post("/", h.CreateStudent)
				r.Post("/import", h.ImportStudents)
			})
			r.Post("/links", h.LinkStudentTeacher)
		})
	})
}
