package model

import "fmt"

// All returns every model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Country{}, &State{}, &District{},
		&Role{}, &Department{}, &Branch{},
		&MaterialType{}, &Category{}, &Subcategory{},
		&Vendor{}, &VendorMaterialType{}, &SpocContact{}, &BankAccount{}, &KycDocument{},
		&Employee{}, &EmployeeIncentive{},
		&Customer{},
		&Product{}, &ProductItemDetail{}, &ProductVariation{},
		&OfferPlan{}, &OfferApplicableType{}, &Offer{},
		&MaintenanceType{}, &Maintenance{},
		&SalesInvoiceBill{}, &SalesInvoiceItem{}, &SalesInvoiceAdjustment{}, &Payment{},
	}
}

// NaturalKey is a business key that must be unique among rows that are not soft-deleted.
type NaturalKey struct {
	Table  string
	Column string
}

func (k NaturalKey) IndexName() string {
	return fmt.Sprintf("uq_%s_%s_active", k.Table, k.Column)
}

// NaturalKeys returns the keys backed by partial unique indexes.
func NaturalKeys() []NaturalKey {
	return []NaturalKey{
		{"countries", "name"},
		{"roles", "role_name"},
		{"departments", "department_name"},
		{"branches", "branch_code"},
		{"material_types", "material_type"},
		{"categories", "category_name"},
		{"vendors", "vendor_code"},
		{"employees", "employee_code"},
		{"employees", "email"},
		{"customers", "mobile"},
		{"products", "product_code"},
		{"product_item_details", "tag_number"},
		{"offer_plans", "plan_name"},
		{"offer_applicable_types", "type_name"},
		{"offers", "offer_code"},
		{"maintenance_types", "maintenance_type"},
		{"sales_invoice_bills", "invoice_number"},
	}
}
