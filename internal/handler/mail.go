package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

// publishMailMessage 把邮件序列化后投递到消息队列，由 mail worker 异步发送。
func (h *Handler) publishMailMessage(mailMessage domain.MailMessage) error {
	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	)
}

// handleUniqueViolation 把账号相关表的唯一约束冲突翻译成用户可读的提示。
func (h *Handler) handleUniqueViolation(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "users_username_key":
			h.errorResponse(w, r, "用户名已存在")
		case "users_email_key":
			h.errorResponse(w, r, "邮箱已存在")
		case "teachers_teacher_no_key":
			h.errorResponse(w, r, "教师编号已存在")
		case "teachers_email_key":
			h.errorResponse(w, r, "教师邮箱已存在")
		case "students_student_no_key":
			h.errorResponse(w, r, "学号已存在")
		case "students_email_key":
			h.errorResponse(w, r, "学生邮箱已存在")
		default:
			h.internalServerError(w, r, err)
		}
	default:
		h.internalServerError(w, r, err)
	}
}
