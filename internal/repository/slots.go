package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/timetable"
)

// EnsureTimetable 保证教师拥有完整的一周课表，只在课表为空时生成，幂等。
func (r *Repository) EnsureTimetable(teacherID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先锁住教师行，防止两个请求同时发现课表为空而重复生成
	query := `SELECT id FROM teachers WHERE id = $1 FOR UPDATE`
	var id int64
	if err := tx.QueryRowContext(ctx, query, teacherID).Scan(&id); err != nil {
		return err
	}

	query = `SELECT EXISTS (SELECT 1 FROM slots WHERE teacher_id = $1)`
	var hasSlots bool
	if err := tx.QueryRowContext(ctx, query, teacherID).Scan(&hasSlots); err != nil {
		return err
	}
	if hasSlots {
		return tx.Commit()
	}

	query = `
		INSERT INTO slots (teacher_id, day, start_time, end_time, status, capacity, permanently_busy)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, slot := range timetable.DefaultGrid(teacherID, r.cfg.Timetable.DefaultCapacity) {
		args := []any{slot.TeacherID, slot.Day, slot.StartTime, slot.EndTime, slot.Status, slot.Capacity, slot.PermanentlyBusy}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSlotsByTeacherID(teacherID int64) ([]*domain.Slot, error) {
	query := `
		SELECT id, day, start_time, end_time, status, capacity, current_count, permanently_busy, version
		FROM slots
		WHERE teacher_id = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot := &domain.Slot{
			TeacherID: teacherID,
		}
		dst := []any{&slot.ID, &slot.Day, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.Capacity, &slot.CurrentCount, &slot.PermanentlyBusy, &slot.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *Repository) GetSlotByID(teacherID int64, slotID int64) (*domain.Slot, error) {
	query := `
		SELECT day, start_time, end_time, status, capacity, current_count, permanently_busy, version
		FROM slots
		WHERE id = $1 AND teacher_id = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	slot := &domain.Slot{
		ID:        slotID,
		TeacherID: teacherID,
	}

	dst := []any{&slot.Day, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.Capacity, &slot.CurrentCount, &slot.PermanentlyBusy, &slot.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, slotID, teacherID).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, err
	}

	return slot, nil
}

// SaveSetupTimetable 保存初始设置：busyKeys 中的时段固定为忙碌，
// 其余时段全部恢复为可预约。这是全量覆盖，重复调用以最后一次为准。
// 容量和预约计数不受影响。保存成功后教师标记为已完成设置。
func (r *Repository) SaveSetupTimetable(teacher *domain.Teacher, busyKeys map[string]bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT id, day, start_time, end_time, status, capacity, current_count, permanently_busy, version
		FROM slots
		WHERE teacher_id = $1
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.QueryContext(ctx, query, teacher.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot := &domain.Slot{
			TeacherID: teacher.ID,
		}
		dst := []any{&slot.ID, &slot.Day, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.Capacity, &slot.CurrentCount, &slot.PermanentlyBusy, &slot.Version}
		if err := rows.Scan(dst...); err != nil {
			return err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	query = `
		UPDATE slots
		SET status = $1, permanently_busy = $2, version = version + 1
		WHERE id = $3
	`
	for _, slot := range slots {
		timetable.ApplySetup(slot, busyKeys[timetable.SlotKey(slot.Day, slot.StartTime, slot.EndTime)])
		if _, err := tx.ExecContext(ctx, query, slot.Status, slot.PermanentlyBusy, slot.ID); err != nil {
			return err
		}
	}

	query = `
		UPDATE teachers
		SET setup_done = TRUE, version = version + 1
		WHERE id = $1
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, query, teacher.ID).Scan(&teacher.Version); err != nil {
		return err
	}
	teacher.SetupDone = true

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateSlotCapacity 修改时段容量。固定忙碌的时段拒绝修改，
// 低于配置下限的容量拒绝修改，二者都不会改变任何状态。
func (r *Repository) UpdateSlotCapacity(teacherID int64, slotID int64, capacity int32) (*domain.Slot, error) {
	slot, err := r.GetSlotByID(teacherID, slotID)
	if err != nil {
		return nil, err
	}

	if err := timetable.CheckCapacityEdit(slot, capacity, r.cfg.Timetable.MinCapacity); err != nil {
		return nil, err
	}

	query := `
		UPDATE slots
		SET capacity = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, capacity, slot.ID, slot.Version).Scan(&slot.Version); err != nil {
		return nil, err
	}
	slot.Capacity = capacity

	return slot, nil
}

// SweepTimetable 回收教师课表中所有排期已过的时段：过期其未完成的预约、
// 清零计数、恢复非固定忙碌时段为可预约。课表按周复用，这趟扫描就是
// 上周的时段在本周重新变为可预约的唯一途径，因此所有读写路径进入前都会先执行它。
// 没有任何时段需要处理时不产生写入，重复执行也不会产生进一步变化。
func (r *Repository) SweepTimetable(teacherID int64) error {
	slots, err := r.GetSlotsByTeacherID(teacherID)
	if err != nil {
		return err
	}

	now := time.Now()
	stale := make([]*domain.Slot, 0)
	for _, slot := range slots {
		if timetable.NeedsReset(slot, now) {
			stale = append(stale, slot)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	expireQuery := `
		UPDATE bookings
		SET status = $1, version = version + 1
		WHERE teacher_id = $2 AND slot_id = $3 AND status = $4
	`
	resetQuery := `
		UPDATE slots
		SET current_count = 0, status = $1, version = version + 1
		WHERE id = $2
	`

	for _, slot := range stale {
		if _, err := tx.ExecContext(ctx, expireQuery, domain.BookingExpired, teacherID, slot.ID, domain.BookingBooked); err != nil {
			return err
		}

		timetable.Reset(slot)
		if _, err := tx.ExecContext(ctx, resetQuery, slot.Status, slot.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
