package model

import "gorm.io/datatypes"

// Vendor is a supplier of finished goods or raw material
type Vendor struct {
	Base
	VendorCode   string `json:"vendor_code" gorm:"type:varchar(50);not null"`
	VendorName   string `json:"vendor_name" gorm:"type:varchar(200);not null"`
	GSTNo        string `json:"gst_no" gorm:"type:varchar(20)"`
	Mobile       string `json:"mobile" gorm:"type:varchar(20);not null"`
	Email        string `json:"email" gorm:"type:varchar(150)"`
	Address      string `json:"address" gorm:"type:text"`
	DistrictID   *uint  `json:"district_id" gorm:"index"`
	StateID      *uint  `json:"state_id" gorm:"index"`
	CountryID    *uint  `json:"country_id" gorm:"index"`
	PaymentTerms string `json:"payment_terms" gorm:"type:varchar(100)"`
	Status       string `json:"status" gorm:"type:varchar(20);default:'Active'"`
}

// VendorMaterialType links a vendor to a material type it supplies
type VendorMaterialType struct {
	Base
	VendorID       uint `json:"vendor_id" gorm:"not null;index"`
	MaterialTypeID uint `json:"material_type_id" gorm:"not null;index"`
}

// SpocContact is a single point of contact at a vendor
type SpocContact struct {
	Base
	VendorID    uint   `json:"vendor_id" gorm:"not null;index"`
	ContactName string `json:"contact_name" gorm:"type:varchar(150);not null"`
	Designation string `json:"designation" gorm:"type:varchar(100)"`
	Mobile      string `json:"mobile" gorm:"type:varchar(20);not null"`
	Email       string `json:"email" gorm:"type:varchar(150)"`
}

// BankAccount belongs to a vendor, employee or branch, identified by entity_type/entity_id
type BankAccount struct {
	Base
	EntityType        string `json:"entity_type" gorm:"type:varchar(30);not null;index:idx_bank_accounts_entity"`
	EntityID          uint   `json:"entity_id" gorm:"not null;index:idx_bank_accounts_entity"`
	AccountHolderName string `json:"account_holder_name" gorm:"type:varchar(150);not null"`
	AccountNumber     string `json:"account_number" gorm:"type:varchar(50);not null"`
	IFSCCode          string `json:"ifsc_code" gorm:"type:varchar(20);not null"`
	BankName          string `json:"bank_name" gorm:"type:varchar(150)"`
	BranchName        string `json:"branch_name" gorm:"type:varchar(150)"`
}

// KycDocument is an identity document attached to a vendor, employee or customer
type KycDocument struct {
	Base
	EntityType     string         `json:"entity_type" gorm:"type:varchar(30);not null;index:idx_kyc_documents_entity"`
	EntityID       uint           `json:"entity_id" gorm:"not null;index:idx_kyc_documents_entity"`
	DocumentType   string         `json:"document_type" gorm:"type:varchar(50);not null"`
	DocumentNumber string         `json:"document_number" gorm:"type:varchar(100);not null"`
	DocumentURL    string         `json:"document_url" gorm:"type:varchar(500)"`
	Metadata       datatypes.JSON `json:"metadata"`
}
