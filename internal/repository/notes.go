package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/timetable"
)

// GetDayNotes 返回教师每个教学日的备注，缺失的天会补成空备注。
func (r *Repository) GetDayNotes(teacherID int64) ([]*domain.DayNote, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO day_notes (teacher_id, day)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (teacher_id, day) DO NOTHING
	`
	if _, err := r.dbpool.ExecContext(ctx, query, teacherID, timetable.Days); err != nil {
		return nil, err
	}

	query = `
		SELECT id, day, venue, description, version
		FROM day_notes
		WHERE teacher_id = $1
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]*domain.DayNote, 0)
	for rows.Next() {
		note := &domain.DayNote{
			TeacherID: teacherID,
		}
		dst := []any{&note.ID, &note.Day, &note.Venue, &note.Description, &note.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *Repository) SaveDayNote(note *domain.DayNote) error {
	if !timetable.IsValidDay(note.Day) {
		return fmt.Errorf("星期符号不合法: %s", note.Day)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO day_notes (teacher_id, day, venue, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (teacher_id, day)
		DO UPDATE SET venue = $3, description = $4, version = day_notes.version + 1
		RETURNING id, version
	`

	args := []any{note.TeacherID, note.Day, note.Venue, note.Description}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&note.ID, &note.Version); err != nil {
		return err
	}

	return nil
}
