package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/tutor-booking/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomTeacherNo 生成形如 T2026xxxx 的教师编号。
func GenerateRandomTeacherNo() string {
	return fmt.Sprintf("T2026%04d", rand.Intn(10000))
}

// GenerateRandomStudentNo 生成形如 S2026xxxxxx 的学号。
func GenerateRandomStudentNo() string {
	return fmt.Sprintf("S2026%06d", rand.Intn(1000000))
}

// GenerateRandomTeacher 给种子数据生成一个完整的教师账号。
func GenerateRandomTeacher(password string, emailDomainName string) (*domain.User, *domain.Teacher, error) {
	fullName := GenerateRandomChineseName()
	teacherNo := GenerateRandomTeacherNo()
	email := GenerateUsernameFromChineseName(fullName) + "@" + emailDomainName

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Username:     teacherNo,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        email,
		Role:         domain.RoleTeacher,
	}
	teacher := &domain.Teacher{
		TeacherNo: teacherNo,
		Name:      fullName,
		Email:     email,
	}

	return user, teacher, nil
}

// GenerateRandomStudent 给种子数据生成一个完整的学生账号，并随机分配给若干教师。
func GenerateRandomStudent(password string, emailDomainName string, teacherNos []string) (*domain.User, *domain.Student, error) {
	fullName := GenerateRandomChineseName()
	studentNo := GenerateRandomStudentNo()
	email := GenerateUsernameFromChineseName(fullName) + "@" + emailDomainName

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	shuffled := make([]string, len(teacherNos))
	copy(shuffled, teacherNos)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	n := 0
	if len(shuffled) > 0 {
		n = rand.Intn(len(shuffled)) + 1
	}

	user := &domain.User{
		Username:     studentNo,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        email,
		Role:         domain.RoleStudent,
	}
	student := &domain.Student{
		StudentNo:  studentNo,
		Name:       fullName,
		Email:      email,
		TeacherNos: shuffled[:n],
	}

	return user, student, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}
