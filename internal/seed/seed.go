package seed

import (
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/config"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/repository"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/timetable"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/utils"
)

// SeedTeachers 插入 n 个随机教师账号。
func SeedTeachers(cfg *config.Config, repo *repository.Repository, n int) {
	cnt := 0
	for i := 0; i < n; i++ {
		user, teacher, err := utils.GenerateRandomTeacher(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("无法生成随机教师", slog.String("error", err.Error()))
			continue
		}

		if err := repo.CreateTeacher(user, teacher); err != nil {
			slog.Error("无法插入教师", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("插入教师成功", slog.Int("count", cnt))
}

// SeedStudents 插入 n 个随机学生账号，每个学生随机分配给已有的若干教师。
func SeedStudents(cfg *config.Config, repo *repository.Repository, n int) {
	teacherNos, err := allTeacherNos(repo)
	if err != nil {
		slog.Error("无法获取教师列表", slog.String("error", err.Error()))
		return
	}
	if len(teacherNos) == 0 {
		slog.Error("数据库中没有教师，请先插入教师")
		return
	}

	cnt := 0
	for i := 0; i < n; i++ {
		user, student, err := utils.GenerateRandomStudent(cfg.Seed.User.Password, cfg.Email.UserDomain, teacherNos)
		if err != nil {
			slog.Error("无法生成随机学生", slog.String("error", err.Error()))
			continue
		}

		if err := repo.CreateStudent(user, student); err != nil {
			slog.Error("无法插入学生", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("插入学生成功", slog.Int("count", cnt))
}

// SeedTimetables 为所有教师生成课表并随机完成初始设置。
// 每个时段有两成概率被标记为固定忙碌。
func SeedTimetables(repo *repository.Repository) {
	teachers, err := allTeachers(repo)
	if err != nil {
		slog.Error("无法获取教师列表", slog.String("error", err.Error()))
		return
	}

	cnt := 0
	for _, teacher := range teachers {
		if err := repo.EnsureTimetable(teacher.ID); err != nil {
			slog.Error("无法生成课表", slog.String("teacherNo", teacher.TeacherNo), slog.String("error", err.Error()))
			continue
		}

		busyKeys := make(map[string]bool)
		for _, day := range timetable.Days {
			for _, period := range timetable.Periods {
				if rand.Intn(5) == 0 {
					busyKeys[timetable.SlotKey(day, period[0], period[1])] = true
				}
			}
		}

		if err := repo.SaveSetupTimetable(teacher, busyKeys); err != nil {
			slog.Error("无法完成初始设置", slog.String("teacherNo", teacher.TeacherNo), slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("生成课表成功", slog.Int("count", cnt))
}

// SeedBookings 让每个学生尝试在自己的一位教师处随机预约一个时段。
// 预约走正常的业务路径，被规则拒绝的预约会被跳过。
func SeedBookings(repo *repository.Repository) {
	students, err := allStudents(repo)
	if err != nil {
		slog.Error("无法获取学生列表", slog.String("error", err.Error()))
		return
	}

	cnt := 0
	for _, student := range students {
		if len(student.TeacherNos) == 0 {
			continue
		}

		teacherNo := student.TeacherNos[rand.Intn(len(student.TeacherNos))]
		teacher, err := repo.GetTeacherByTeacherNo(teacherNo)
		if err != nil {
			slog.Error("无法获取教师", slog.String("teacherNo", teacherNo), slog.String("error", err.Error()))
			continue
		}

		slots, err := repo.GetSlotsByTeacherID(teacher.ID)
		if err != nil {
			slog.Error("无法获取课表", slog.String("teacherNo", teacherNo), slog.String("error", err.Error()))
			continue
		}

		candidates := make([]*domain.Slot, 0, len(slots))
		for _, slot := range slots {
			if slot.Status == domain.SlotAvailable {
				candidates = append(candidates, slot)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		slot := candidates[rand.Intn(len(candidates))]
		if _, err := repo.ReserveSlot(student.UserID, teacher.ID, slot.ID); err != nil {
			slog.Info("预约被拒绝", slog.String("studentNo", student.StudentNo), slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("插入预约成功", slog.Int("count", cnt))
}

func allTeachers(repo *repository.Repository) ([]*domain.Teacher, error) {
	users, err := repo.GetAllUsers()
	if err != nil {
		return nil, err
	}

	teachers := make([]*domain.Teacher, 0)
	for _, user := range users {
		if user.Role != domain.RoleTeacher {
			continue
		}
		teacher, err := repo.GetTeacherByUserID(user.ID)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, teacher)
	}

	return teachers, nil
}

func allTeacherNos(repo *repository.Repository) ([]string, error) {
	teachers, err := allTeachers(repo)
	if err != nil {
		return nil, err
	}

	teacherNos := make([]string, 0, len(teachers))
	for _, teacher := range teachers {
		teacherNos = append(teacherNos, teacher.TeacherNo)
	}

	return teacherNos, nil
}

func allStudents(repo *repository.Repository) ([]*domain.Student, error) {
	users, err := repo.GetAllUsers()
	if err != nil {
		return nil, err
	}

	students := make([]*domain.Student, 0)
	for _, user := range users {
		if user.Role != domain.RoleStudent {
			continue
		}
		student, err := repo.GetStudentByUserID(user.ID)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	return students, nil
}
