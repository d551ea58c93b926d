package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleManager Role = "店长"
	RoleStaff   Role = "店员"
)

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
	EmployeePending  EmployeeStatus = "pending"
)

type Employee struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	Role         Role            `json:"role"`
	Position     string          `json:"position"` // 岗位，如 咖啡师、收银员，自由文本
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
	Status       EmployeeStatus  `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	Version      int32           `json:"-"`
}
