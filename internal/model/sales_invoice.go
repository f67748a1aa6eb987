package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoiceStatusOnHold        = "On Hold"
	InvoiceStatusPending       = "Pending"
	InvoiceStatusPartiallyPaid = "Partially Paid"
	InvoiceStatusPaid          = "Paid"
	InvoiceStatusCancelled     = "Cancelled"
)

// InvoiceStatuses lists the values accepted for SalesInvoiceBill.Status
var InvoiceStatuses = []string{
	InvoiceStatusOnHold,
	InvoiceStatusPending,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
}

// IsInvoiceStatus reports whether s is a known invoice status.
func IsInvoiceStatus(s string) bool {
	for _, status := range InvoiceStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// SalesInvoiceBill is the header of a sales invoice. Items, adjustments and
// payments reference it through invoice_id.
type SalesInvoiceBill struct {
	Base
	InvoiceNumber   string          `json:"invoice_number" gorm:"type:varchar(30);not null"`
	CustomerID      uint            `json:"customer_id" gorm:"not null;index"`
	BranchID        *uint           `json:"branch_id" gorm:"index"`
	EmployeeID      *uint           `json:"employee_id" gorm:"index"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	Status          string          `json:"status" gorm:"type:varchar(20);not null;index"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:numeric(14,2);default:0"`
	TaxTotal        decimal.Decimal `json:"tax_total" gorm:"type:numeric(14,2);default:0"`
	AdjustmentTotal decimal.Decimal `json:"adjustment_total" gorm:"type:numeric(14,2);default:0"`
	GrandTotal      decimal.Decimal `json:"grand_total" gorm:"type:numeric(14,2);default:0"`
	PaidAmount      decimal.Decimal `json:"paid_amount" gorm:"type:numeric(14,2);default:0"`
	BalanceAmount   decimal.Decimal `json:"balance_amount" gorm:"type:numeric(14,2);default:0"`
	Remarks         string          `json:"remarks" gorm:"type:text"`

	Items       []SalesInvoiceItem       `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`
	Adjustments []SalesInvoiceAdjustment `json:"adjustments,omitempty" gorm:"foreignKey:InvoiceID"`
	Payments    []Payment                `json:"payments,omitempty" gorm:"foreignKey:InvoiceID"`
}

func (SalesInvoiceBill) TableName() string {
	return "sales_invoice_bills"
}

type SalesInvoiceItem struct {
	Base
	InvoiceID    uint            `json:"invoice_id" gorm:"not null;index"`
	ProductID    *uint           `json:"product_id" gorm:"index"`
	ItemDetailID *uint           `json:"item_detail_id" gorm:"index"`
	Description  string          `json:"description" gorm:"type:varchar(255)"`
	Quantity     int             `json:"quantity"`
	Weight       decimal.Decimal `json:"weight" gorm:"type:numeric(12,3);default:0"`
	Rate         decimal.Decimal `json:"rate" gorm:"type:numeric(14,2);default:0"`
	MakingCharge decimal.Decimal `json:"making_charge" gorm:"type:numeric(14,2);default:0"`
	TaxPercent   decimal.Decimal `json:"tax_percent" gorm:"type:numeric(5,2);default:0"`
	TaxAmount    decimal.Decimal `json:"tax_amount" gorm:"type:numeric(14,2);default:0"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);default:0"`
}

func (SalesInvoiceItem) TableName() string {
	return "sales_invoice_items"
}

// SalesInvoiceAdjustment reduces the invoice total (old gold exchange, special discount...)
type SalesInvoiceAdjustment struct {
	Base
	InvoiceID      uint            `json:"invoice_id" gorm:"not null;index"`
	AdjustmentType string          `json:"adjustment_type" gorm:"type:varchar(50)"`
	Description    string          `json:"description" gorm:"type:varchar(255)"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);default:0"`
}

func (SalesInvoiceAdjustment) TableName() string {
	return "sales_invoice_adjustments"
}

type Payment struct {
	Base
	InvoiceID   uint            `json:"invoice_id" gorm:"not null;index"`
	PaymentMode string          `json:"payment_mode" gorm:"type:varchar(30)"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	ReferenceNo string          `json:"reference_no" gorm:"type:varchar(100)"`
	PaidAt      *time.Time      `json:"paid_at"`
}

func (Payment) TableName() string {
	return "payments"
}
