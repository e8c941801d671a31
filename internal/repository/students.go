package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
)

// CreateStudent 在同一个事务内创建登录账号、学生档案以及和教师的关联。
func (r *Repository) CreateStudent(user *domain.User, student *domain.Student) error {
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
		INSERT INTO students (student_no, user_id, name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`
	student.UserID = user.ID
	if err := tx.QueryRowContext(ctx, query, student.StudentNo, student.UserID, student.Name, student.Email).Scan(&student.ID, &student.CreatedAt, &student.Version); err != nil {
		return err
	}

	for _, teacherNo := range student.TeacherNos {
		query = `
			INSERT INTO student_teachers (student_id, teacher_id)
			SELECT $1, id FROM teachers WHERE teacher_no = $2
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, student.ID, teacherNo); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetStudentByUserID(userID int64) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, student_no, name, email, created_at, version
		FROM students WHERE user_id = $1
	`

	student := &domain.Student{
		UserID: userID,
	}

	dst := []any{&student.ID, &student.StudentNo, &student.Name, &student.Email, &student.CreatedAt, &student.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(dst...); err != nil {
		return nil, err
	}

	query = `
		SELECT t.teacher_no
		FROM student_teachers st
		JOIN teachers t ON st.teacher_id = t.id
		WHERE st.student_id = $1
		ORDER BY st.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, student.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	student.TeacherNos = make([]string, 0)
	for rows.Next() {
		var teacherNo string
		if err := rows.Scan(&teacherNo); err != nil {
			return nil, err
		}
		student.TeacherNos = append(student.TeacherNos, teacherNo)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return student, nil
}

func (r *Repository) GetStudentByStudentNo(studentNo string) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT user_id FROM students WHERE student_no = $1
	`

	var userID int64
	if err := r.dbpool.QueryRowContext(ctx, query, studentNo).Scan(&userID); err != nil {
		return nil, err
	}

	return r.GetStudentByUserID(userID)
}

// LinkStudentTeacher 把学生分配给教师，重复分配不报错。
func (r *Repository) LinkStudentTeacher(studentID int64, teacherID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO student_teachers (student_id, teacher_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.dbpool.ExecContext(ctx, query, studentID, teacherID); err != nil {
		return err
	}

	return nil
}

// GetStudentsByTeacherID 返回分配给某个教师的所有学生。
func (r *Repository) GetStudentsByTeacherID(teacherID int64) ([]*domain.Student, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT s.id, s.student_no, s.user_id, s.name, s.email, s.created_at, s.version
		FROM student_teachers st
		JOIN students s ON st.student_id = s.id
		WHERE st.teacher_id = $1
		ORDER BY s.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]*domain.Student, 0)
	for rows.Next() {
		student := &domain.Student{}
		dst := []any{&student.ID, &student.StudentNo, &student.UserID, &student.Name, &student.Email, &student.CreatedAt, &student.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}
