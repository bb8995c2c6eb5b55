package utils

import (
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
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

	for _, p := range pinyinArray {
		length := rand.Intn(len(p)) + 1
		username += p[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	password := make([]rune, length)
	for i := range password {
		password[i] = letters[rand.Intn(len(letters))]
	}
	return string(password)
}

// GenerateRandomUser 生成演示用户，用户名由中文姓名的拼音派生
func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleMember,
	}, nil
}

// GenerateRandomPlan 生成随机的演示财务计划
func GenerateRandomPlan(userID int64) *domain.Plan {
	plan := &domain.Plan{
		UserID:              userID,
		Name:                "演示计划" + GenerateRandomID(3, 3),
		Description:         "随机生成的演示财务计划",
		StartingBalance:     float64(rand.Intn(2000)),
		TargetEndingBalance: float64(rand.Intn(3000) + 1000),
		MinimumBalance:      0,
	}

	// 随机生成几笔支出和存入
	expenseCount := rand.Intn(4) + 1
	for i := 0; i < expenseCount; i++ {
		// 支出从第二天开始，避免随机生成出第一天就不可满足的计划
		plan.Expenses = append(plan.Expenses, domain.PlanEntry{
			Day:    int32(rand.Intn(domain.HorizonLength-1) + 2),
			Amount: float64(rand.Intn(500) + 50),
		})
	}

	depositCount := rand.Intn(3)
	for i := 0; i < depositCount; i++ {
		plan.Deposits = append(plan.Deposits, domain.PlanEntry{
			Day:    int32(rand.Intn(domain.HorizonLength) + 1),
			Amount: float64(rand.Intn(800) + 100),
		})
	}

	return plan
}

func GenerateRandomID(letterLength int, digitLength int) string {
	id := make([]rune, letterLength+digitLength)
	for i := range id {
		if i < letterLength {
			id[i] = letters[rand.Intn(len(letters))]
		} else {
			id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(id)
}
