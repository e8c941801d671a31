package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/timetable"
)

// ReserveSlot 是预约状态机的入口。检查和落账在同一个事务内完成：
// 先用行锁读出时段，使并发的检查-写入串行化；写入时再用条件更新
// current_count < capacity 兜底，配合 bookings 上的两个部分唯一索引，
// 保证并发请求不会超卖，也不会绕过每日一次的限制。
// 任何前置条件失败都会让整个事务回滚，不留下部分状态。
func (r *Repository) ReserveSlot(studentUserID int64, teacherID int64, slotID int64) (*domain.Booking, error) {
	// 先执行一趟回收，保证接下来读到的状态相对当前时间不是过期的
	if err := r.SweepTimetable(teacherID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT day, start_time, end_time, status, capacity, current_count, permanently_busy, version
		FROM slots
		WHERE id = $1 AND teacher_id = $2
		FOR UPDATE
	`

	slot := &domain.Slot{
		ID:        slotID,
		TeacherID: teacherID,
	}
	dst := []any{&slot.Day, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.Capacity, &slot.CurrentCount, &slot.PermanentlyBusy, &slot.Version}
	if err := tx.QueryRowContext(ctx, query, slotID, teacherID).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, err
	}

	query = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE student_user_id = $1 AND teacher_id = $2 AND slot_id = $3 AND status = $4
		)
	`
	var hasSlotBooking bool
	if err := tx.QueryRowContext(ctx, query, studentUserID, teacherID, slotID, domain.BookingBooked).Scan(&hasSlotBooking); err != nil {
		return nil, err
	}

	// 每日限制针对该教师的任何时段，和这次预约的是哪个时段无关
	query = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE student_user_id = $1 AND teacher_id = $2 AND status = $3 AND created_on = CURRENT_DATE
		)
	`
	var hasBookedToday bool
	if err := tx.QueryRowContext(ctx, query, studentUserID, teacherID, domain.BookingBooked).Scan(&hasBookedToday); err != nil {
		return nil, err
	}

	if err := timetable.Admit(slot, hasSlotBooking, hasBookedToday, time.Now()); err != nil {
		return nil, err
	}

	query = `
		INSERT INTO bookings (student_user_id, teacher_id, slot_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`
	booking := &domain.Booking{
		StudentUserID: studentUserID,
		TeacherID:     teacherID,
		SlotID:        slotID,
		Status:        domain.BookingBooked,
	}
	if err := tx.QueryRowContext(ctx, query, studentUserID, teacherID, slotID, domain.BookingBooked).Scan(&booking.ID, &booking.CreatedAt, &booking.Version); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// 唯一索引是并发竞争下的第二道防线
			switch pgErr.ConstraintName {
			case "bookings_booked_slot_key":
				return nil, domain.ErrAlreadyBooked
			case "bookings_booked_daily_key":
				return nil, domain.ErrDailyLimitReached
			}
		}
		return nil, err
	}

	query = `
		UPDATE slots
		SET
			current_count = current_count + 1,
			status = CASE WHEN current_count + 1 >= capacity THEN $1 ELSE status END,
			version = version + 1
		WHERE id = $2 AND current_count < capacity
		RETURNING current_count, status, version
	`
	if err := tx.QueryRowContext(ctx, query, domain.SlotOccupied, slotID).Scan(&slot.CurrentCount, &slot.Status, &slot.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSlotFull
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return booking, nil
}

// HasBookedToday 即预约前置条件中的每日限制判断，单独暴露给课表投影使用。
func (r *Repository) HasBookedToday(studentUserID int64, teacherID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE student_user_id = $1 AND teacher_id = $2 AND status = $3 AND created_on = CURRENT_DATE
		)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var hasBookedToday bool
	if err := r.dbpool.QueryRowContext(ctx, query, studentUserID, teacherID, domain.BookingBooked).Scan(&hasBookedToday); err != nil {
		return false, err
	}

	return hasBookedToday, nil
}

// GetBookedDetailsByTeacherID 返回教师当前有效的预约，带上学生和时段信息。
func (r *Repository) GetBookedDetailsByTeacherID(teacherID int64) ([]*domain.BookingDetail, error) {
	return r.getBookingDetails(teacherID, true)
}

// GetAllBookingDetailsByTeacherID 返回教师的全部预约历史，CSV 导出使用。
func (r *Repository) GetAllBookingDetailsByTeacherID(teacherID int64) ([]*domain.BookingDetail, error) {
	return r.getBookingDetails(teacherID, false)
}

func (r *Repository) getBookingDetails(teacherID int64, bookedOnly bool) ([]*domain.BookingDetail, error) {
	query := `
		SELECT
			b.id,
			b.student_user_id,
			b.slot_id,
			b.status,
			b.created_at,
			b.version,
			u.full_name,
			u.email,
			COALESCE(s.student_no, ''),
			sl.day,
			sl.start_time,
			sl.end_time
		FROM bookings b
		JOIN users u ON b.student_user_id = u.id
		LEFT JOIN students s ON s.user_id = u.id
		JOIN slots sl ON b.slot_id = sl.id
		WHERE b.teacher_id = $1 AND ($2 OR b.status = $3)
		ORDER BY b.created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, teacherID, !bookedOnly, domain.BookingBooked)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]*domain.BookingDetail, 0)
	for rows.Next() {
		detail := &domain.BookingDetail{}
		detail.TeacherID = teacherID
		dst := []any{
			&detail.ID,
			&detail.StudentUserID,
			&detail.SlotID,
			&detail.Status,
			&detail.CreatedAt,
			&detail.Version,
			&detail.StudentName,
			&detail.StudentEmail,
			&detail.StudentNo,
			&detail.SlotDay,
			&detail.SlotStart,
			&detail.SlotEnd,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

// GetBookingsByStudentUserID 返回学生自己的预约记录。
func (r *Repository) GetBookingsByStudentUserID(studentUserID int64) ([]*domain.Booking, error) {
	query := `
		SELECT id, teacher_id, slot_id, status, created_at, version
		FROM bookings
		WHERE student_user_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, studentUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking := &domain.Booking{
			StudentUserID: studentUserID,
		}
		dst := []any{&booking.ID, &booking.TeacherID, &booking.SlotID, &booking.Status, &booking.CreatedAt, &booking.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}
