package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

// CreateTeacher 在同一个事务内创建登录账号和教师档案。
func (r *Repository) CreateTeacher(user *domain.User, teacher *domain.Teacher) error {
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
		INSERT INTO users (username, password_hash, full_name, email, role, must_change_password)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, version
	`
	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Role, user.MustChangePassword}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	query = `
		INSERT INTO teachers (teacher_no, user_id, name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, setup_done, created_at, version
	`
	teacher.UserID = user.ID
	if err := tx.QueryRowContext(ctx, query, teacher.TeacherNo, teacher.UserID, teacher.Name, teacher.Email).Scan(&teacher.ID, &teacher.SetupDone, &teacher.CreatedAt, &teacher.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTeacherByUserID(userID int64) (*domain.Teacher, error) {
	query := `
		SELECT id, teacher_no, name, email, setup_done, created_at, version
		FROM teachers WHERE user_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	teacher := &domain.Teacher{
		UserID: userID,
	}

	dst := []any{&teacher.ID, &teacher.TeacherNo, &teacher.Name, &teacher.Email, &teacher.SetupDone, &teacher.CreatedAt, &teacher.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(dst...); err != nil {
		return nil, err
	}

	return teacher, nil
}

func (r *Repository) GetTeacherByTeacherNo(teacherNo string) (*domain.Teacher, error) {
	query := `
		SELECT id, user_id, name, email, setup_done, created_at, version
		FROM teachers WHERE teacher_no = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	teacher := &domain.Teacher{
		TeacherNo: teacherNo,
	}

	dst := []any{&teacher.ID, &teacher.UserID, &teacher.Name, &teacher.Email, &teacher.SetupDone, &teacher.CreatedAt, &teacher.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, teacherNo).Scan(dst...); err != nil {
		return nil, err
	}

	return teacher, nil
}

// GetTeachersByTeacherNos 按传入顺序返回教师档案，学生端课表依赖这个顺序。
func (r *Repository) GetTeachersByTeacherNos(teacherNos []string) ([]*domain.Teacher, error) {
	query := `
		SELECT id, teacher_no, user_id, name, email, setup_done, created_at, version
		FROM teachers WHERE teacher_no = ANY($1)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, teacherNos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teachersByNo := make(map[string]*domain.Teacher)
	for rows.Next() {
		teacher := &domain.Teacher{}
		dst := []any{&teacher.ID, &teacher.TeacherNo, &teacher.UserID, &teacher.Name, &teacher.Email, &teacher.SetupDone, &teacher.CreatedAt, &teacher.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		teachersByNo[teacher.TeacherNo] = teacher
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	teachers := make([]*domain.Teacher, 0, len(teachersByNo))
	for _, no := range teacherNos {
		if teacher, exists := teachersByNo[no]; exists {
			teachers = append(teachers, teacher)
		}
	}

	return teachers, nil
}
