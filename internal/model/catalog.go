package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MaterialType is a metal or material sold by weight (gold, silver, platinum...)
type MaterialType struct {
	Base
	MaterialType  string          `json:"material_type" gorm:"type:varchar(100);not null"`
	MaterialPrice decimal.Decimal `json:"material_price" gorm:"type:numeric(14,2);default:0"`
	Description   string          `json:"description" gorm:"type:text"`
	ImageURL      string          `json:"image_url" gorm:"type:varchar(500)"`
}

type Category struct {
	Base
	CategoryName   string `json:"category_name" gorm:"type:varchar(150);not null"`
	MaterialTypeID *uint  `json:"material_type_id" gorm:"index"`
	Description    string `json:"description" gorm:"type:text"`
	ImageURL       string `json:"image_url" gorm:"type:varchar(500)"`
}

type Subcategory struct {
	Base
	SubcategoryName string `json:"subcategory_name" gorm:"type:varchar(150);not null"`
	CategoryID      uint   `json:"category_id" gorm:"not null;index"`
	MaterialTypeID  *uint  `json:"material_type_id" gorm:"index"`
	Description     string `json:"description" gorm:"type:text"`
	ImageURL        string `json:"image_url" gorm:"type:varchar(500)"`
	ReorderLevel    int    `json:"reorder_level"`
}

// Product is a catalogue design; stocked pieces are ProductItemDetail rows
type Product struct {
	Base
	ProductCode    string `json:"product_code" gorm:"type:varchar(50);not null"`
	ProductName    string `json:"product_name" gorm:"type:varchar(200);not null"`
	MaterialTypeID *uint  `json:"material_type_id" gorm:"index"`
	CategoryID     *uint  `json:"category_id" gorm:"index"`
	SubcategoryID  *uint  `json:"subcategory_id" gorm:"index"`
	VendorID       *uint  `json:"vendor_id" gorm:"index"`
	BranchID       *uint  `json:"branch_id" gorm:"index"`
	Purity         string `json:"purity" gorm:"type:varchar(20)"`
	HSNCode        string `json:"hsn_code" gorm:"type:varchar(20)"`
	Description    string `json:"description" gorm:"type:text"`
	ImageURL       string `json:"image_url" gorm:"type:varchar(500)"`
	IsActive       bool   `json:"is_active"`
}

// ProductItemDetail is one tagged, weighed piece of a product
type ProductItemDetail struct {
	Base
	ProductID    uint            `json:"product_id" gorm:"not null;index"`
	TagNumber    string          `json:"tag_number" gorm:"type:varchar(50)"`
	SKU          string          `json:"sku" gorm:"type:varchar(100)"`
	GrossWeight  decimal.Decimal `json:"gross_weight" gorm:"type:numeric(12,3);default:0"`
	NetWeight    decimal.Decimal `json:"net_weight" gorm:"type:numeric(12,3);default:0"`
	StoneWeight  decimal.Decimal `json:"stone_weight" gorm:"type:numeric(12,3);default:0"`
	MakingCharge decimal.Decimal `json:"making_charge" gorm:"type:numeric(14,2);default:0"`
	Quantity     int             `json:"quantity"`
}

type ProductVariation struct {
	Base
	ProductID     uint            `json:"product_id" gorm:"not null;index"`
	VariationName string          `json:"variation_name" gorm:"type:varchar(150);not null"`
	Attributes    datatypes.JSON  `json:"attributes"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(14,2);default:0"`
}
