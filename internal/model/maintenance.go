package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MaintenanceType struct {
	Base
	MaintenanceType string `json:"maintenance_type" gorm:"type:varchar(100);not null"`
	Description     string `json:"description" gorm:"type:text"`
}

const (
	MaintenanceStatusScheduled  = "Scheduled"
	MaintenanceStatusInProgress = "In Progress"
	MaintenanceStatusCompleted  = "Completed"
	MaintenanceStatusCancelled  = "Cancelled"
)

// MaintenanceStatuses lists the values accepted for Maintenance.Status
var MaintenanceStatuses = []string{
	MaintenanceStatusScheduled,
	MaintenanceStatusInProgress,
	MaintenanceStatusCompleted,
	MaintenanceStatusCancelled,
}

// Maintenance is an upkeep record for a branch (AC service, locker repair...)
type Maintenance struct {
	Base
	MaintenanceTypeID uint            `json:"maintenance_type_id" gorm:"not null;index"`
	BranchID          *uint           `json:"branch_id" gorm:"index"`
	Title             string          `json:"title" gorm:"type:varchar(200);not null"`
	Description       string          `json:"description" gorm:"type:text"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);default:0"`
	MaintenanceDate   *time.Time      `json:"maintenance_date"`
	Status            string          `json:"status" gorm:"type:varchar(20);default:'Scheduled'"`
}

func (Maintenance) TableName() string {
	return "maintenance"
}
