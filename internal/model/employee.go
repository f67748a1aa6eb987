package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	Base
	EmployeeCode  string     `json:"employee_code" gorm:"type:varchar(50);not null"`
	EmployeeName  string     `json:"employee_name" gorm:"type:varchar(150);not null"`
	Email         string     `json:"email" gorm:"type:varchar(150)"`
	Mobile        string     `json:"mobile" gorm:"type:varchar(20);not null"`
	RoleID        *uint      `json:"role_id" gorm:"index"`
	DepartmentID  *uint      `json:"department_id" gorm:"index"`
	BranchID      *uint      `json:"branch_id" gorm:"index"`
	DateOfJoining *time.Time `json:"date_of_joining"`
	PasswordHash  string     `json:"-" gorm:"type:varchar(100)"`
	Status        string     `json:"status" gorm:"type:varchar(20);default:'Active'"`
}

type EmployeeIncentive struct {
	Base
	EmployeeID    uint            `json:"employee_id" gorm:"not null;index"`
	IncentiveType string          `json:"incentive_type" gorm:"type:varchar(50)"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	PeriodMonth   string          `json:"period_month" gorm:"type:varchar(7)"` // YYYY-MM
	Remarks       string          `json:"remarks" gorm:"type:text"`
}
