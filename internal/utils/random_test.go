package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateRandomOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp := GenerateRandomOTP()
		assert.Len(t, otp, 6)
		for _, c := range otp {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	assert.Len(t, GenerateRandomPassword(12), 12)
	assert.Len(t, GenerateRandomPassword(0), 0)
}

func TestGenerateRandomTeacher(t *testing.T) {
	user, teacher, err := GenerateRandomTeacher("test-password", "example.edu.cn")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleTeacher, user.Role)
	assert.Equal(t, teacher.TeacherNo, user.Username)
	assert.Equal(t, teacher.Name, user.FullName)
	assert.Equal(t, teacher.Email, user.Email)
	assert.True(t, strings.HasPrefix(teacher.TeacherNo, "T"))
	assert.True(t, strings.HasSuffix(user.Email, "@example.edu.cn"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("test-password")))
}

func TestGenerateRandomStudent(t *testing.T) {
	teacherNos := []string{"T20260001", "T20260002", "T20260003"}

	user, student, err := GenerateRandomStudent("test-password", "example.edu.cn", teacherNos)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.Equal(t, student.StudentNo, user.Username)
	assert.True(t, strings.HasPrefix(student.StudentNo, "S"))
	assert.NotEmpty(t, student.TeacherNos)
	for _, teacherNo := range student.TeacherNos {
		assert.Contains(t, teacherNos, teacherNo)
	}
}

func TestGenerateRandomStudentWithoutTeachers(t *testing.T) {
	_, student, err := GenerateRandomStudent("test-password", "example.edu.cn", nil)
	require.NoError(t, err)
	assert.Empty(t, student.TeacherNos)
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("王伟")
	assert.NotEmpty(t, username)
	// 用户名只包含拼音字母和数字
	for _, c := range username {
		assert.True(t, (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'), "非法字符: %c", c)
	}
}
