package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/shopspring/decimal"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
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

var positions = []string{"咖啡师", "收银员", "面包师", "服务员", "保洁员"}

func GenerateRandomPosition() string {
	return positions[rand.Intn(len(positions))]
}

// GenerateRandomHourlyRate 生成 20.0 到 45.5 之间的时薪，步长 0.5 元
func GenerateRandomHourlyRate() decimal.Decimal {
	halves := rand.Intn(52) + 40 // 40 至 91 个 0.5
	return decimal.New(int64(halves*5), -1)
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

func GenerateRandomEmployee(password string, emailDomainName string) (*domain.Employee, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	employee := &domain.Employee{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleStaff,
		Position:     GenerateRandomPosition(),
		HourlyRate:   GenerateRandomHourlyRate(),
		Status:       domain.EmployeeActive,
	}

	return employee, nil
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

// DefaultShiftTemplates 返回门店默认的早中晚三个班次模板
func DefaultShiftTemplates() []*domain.ShiftTemplate {
	return []*domain.ShiftTemplate{
		{
			Name:          "早班",
			ShiftType:     domain.ShiftTypeOpen,
			StartTime:     "09:00",
			EndTime:       "14:00",
			RequiredStaff: 2,
			Color:         "#fde047",
			Positions:     map[string]int{"咖啡师": 1, "收银员": 1},
		},
		{
			Name:          "中班",
			ShiftType:     domain.ShiftTypeMiddle,
			StartTime:     "14:00",
			EndTime:       "18:00",
			RequiredStaff: 2,
			Color:         "#86efac",
		},
		{
			Name:          "晚班",
			ShiftType:     domain.ShiftTypeClose,
			StartTime:     "18:00",
			EndTime:       "22:00",
			RequiredStaff: 3,
			Color:         "#93c5fd",
			// 周五周六晚上客流大，多排一人
			DayOverrides: map[int]int{5: 4, 6: 4},
		},
	}
}
