package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferPlan groups offers under a savings or promotion scheme
type OfferPlan struct {
	Base
	PlanName       string `json:"plan_name" gorm:"type:varchar(150);not null"`
	Description    string `json:"description" gorm:"type:text"`
	DurationMonths int    `json:"duration_months"`
	Status         string `json:"status" gorm:"type:varchar(20);default:'Active'"`
}

// OfferApplicableType says what an offer applies to (making charge, metal value, stone...)
type OfferApplicableType struct {
	Base
	TypeName    string `json:"type_name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`
}

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFlat       = "flat"
)

type Offer struct {
	Base
	OfferCode        string          `json:"offer_code" gorm:"type:varchar(50);not null"`
	OfferName        string          `json:"offer_name" gorm:"type:varchar(150);not null"`
	OfferPlanID      *uint           `json:"offer_plan_id" gorm:"index"`
	ApplicableTypeID *uint           `json:"applicable_type_id" gorm:"index"`
	DiscountType     string          `json:"discount_type" gorm:"type:varchar(20);default:'percentage'"`
	DiscountValue    decimal.Decimal `json:"discount_value" gorm:"type:numeric(14,2);not null"`
	ValidFrom        *time.Time      `json:"valid_from"`
	ValidTo          *time.Time      `json:"valid_to"`
	Status           string          `json:"status" gorm:"type:varchar(20);default:'Active'"`
}
