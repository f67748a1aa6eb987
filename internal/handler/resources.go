package handler

import (
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var (
	countriesRef     = Reference{Field: "country_id", Table: "countries"}
	statesRef        = Reference{Field: "state_id", Table: "states"}
	districtsRef     = Reference{Field: "district_id", Table: "districts"}
	materialTypesRef = Reference{Field: "material_type_id", Table: "material_types"}
	categoriesRef    = Reference{Field: "category_id", Table: "categories"}
	vendorsRef       = Reference{Field: "vendor_id", Table: "vendors"}
	branchesRef      = Reference{Field: "branch_id", Table: "branches"}
	productsRef      = Reference{Field: "product_id", Table: "products"}
)

func activeStatus() map[string]interface{} {
	return map[string]interface{}{"status": "Active"}
}

// registerResources mounts every generic CRUD resource and its auxiliaries.
func (h *Handler) registerResources(api *echo.Group) {
	registerResource(h, api, Resource[model.Country]{
		Name:     "Country",
		Path:     "countries",
		Required: []string{"name"},
		Unique:   []string{"name"},
		Search:   []string{"name", "code"},
		Label:    "name",
	})
	registerResource(h, api, Resource[model.State]{
		Name:       "State",
		Path:       "states",
		Required:   []string{"name", "country_id"},
		Search:     []string{"name", "code"},
		Filters:    []string{"country_id"},
		References: []Reference{countriesRef},
		Label:      "name",
	})
	registerResource(h, api, Resource[model.District]{
		Name:       "District",
		Path:       "districts",
		Required:   []string{"name", "state_id"},
		Search:     []string{"name"},
		Filters:    []string{"state_id"},
		References: []Reference{statesRef},
		Label:      "name",
	})

	registerResource(h, api, Resource[model.Role]{
		Name:     "Role",
		Path:     "roles",
		Required: []string{"role_name"},
		Unique:   []string{"role_name"},
		Search:   []string{"role_name"},
		Label:    "role_name",
	})
	registerResource(h, api, Resource[model.Department]{
		Name:     "Department",
		Path:     "departments",
		Required: []string{"department_name"},
		Unique:   []string{"department_name"},
		Search:   []string{"department_name"},
		Label:    "department_name",
	})
	registerResource(h, api, Resource[model.Branch]{
		Name:       "Branch",
		Path:       "branches",
		Required:   []string{"branch_name"},
		Unique:     []string{"branch_code"},
		Search:     []string{"branch_name", "branch_code", "phone"},
		Filters:    []string{"is_active", "state_id"},
		References: []Reference{districtsRef, statesRef, countriesRef},
		Label:      "branch_name",
		Defaults:   map[string]interface{}{"is_active": true},
	})

	registerResource(h, api, Resource[model.MaterialType]{
		Name:     "Material type",
		Path:     "material-types",
		Required: []string{"material_type"},
		Unique:   []string{"material_type"},
		Search:   []string{"material_type"},
		Label:    "material_type",
	})
	registerResource(h, api, Resource[model.Category]{
		Name:       "Category",
		Path:       "categories",
		Required:   []string{"category_name"},
		Unique:     []string{"category_name"},
		Search:     []string{"category_name"},
		Filters:    []string{"material_type_id"},
		References: []Reference{materialTypesRef},
		Label:      "category_name",
	})
	registerResource(h, api, Resource[model.Subcategory]{
		Name:       "Subcategory",
		Path:       "subcategories",
		Required:   []string{"subcategory_name", "category_id"},
		Search:     []string{"subcategory_name"},
		Filters:    []string{"category_id"},
		References: []Reference{categoriesRef, materialTypesRef},
		Label:      "subcategory_name",
	})

	h.registerVendors(api)

	registerResource(h, api, Resource[model.SpocContact]{
		Name:       "SPOC contact",
		Path:       "spoc-contacts",
		Required:   []string{"vendor_id", "contact_name", "mobile"},
		Search:     []string{"contact_name", "mobile", "email"},
		Filters:    []string{"vendor_id"},
		References: []Reference{vendorsRef},
	})
	registerResource(h, api, Resource[model.BankAccount]{
		Name:     "Bank account",
		Path:     "bank-accounts",
		Required: []string{"entity_type", "entity_id", "account_holder_name", "account_number", "ifsc_code"},
		Search:   []string{"account_holder_name", "account_number", "bank_name"},
		Filters:  []string{"entity_type", "entity_id"},
	})
	registerResource(h, api, Resource[model.KycDocument]{
		Name:     "KYC document",
		Path:     "kyc-documents",
		Required: []string{"entity_type", "entity_id", "document_type", "document_number"},
		Search:   []string{"document_type", "document_number"},
		Filters:  []string{"entity_type", "entity_id"},
	})

	h.registerEmployees(api)

	registerResource(h, api, Resource[model.EmployeeIncentive]{
		Name:       "Employee incentive",
		Path:       "employee-incentives",
		Required:   []string{"employee_id", "amount"},
		Search:     []string{"incentive_type", "remarks"},
		Filters:    []string{"employee_id", "period_month"},
		References: []Reference{{Field: "employee_id", Table: "employees"}},
	})

	registerResource(h, api, Resource[model.Customer]{
		Name:       "Customer",
		Path:       "customers",
		Required:   []string{"customer_name", "mobile"},
		Unique:     []string{"mobile"},
		Search:     []string{"customer_name", "mobile", "email"},
		References: []Reference{districtsRef, statesRef, countriesRef},
		Label:      "customer_name",
	})

	registerResource(h, api, Resource[model.Product]{
		Name:       "Product",
		Path:       "products",
		Required:   []string{"product_name", "product_code"},
		Unique:     []string{"product_code"},
		Search:     []string{"product_name", "product_code", "hsn_code"},
		Filters:    []string{"material_type_id", "category_id", "subcategory_id", "vendor_id", "branch_id", "is_active"},
		References: []Reference{materialTypesRef, categoriesRef, {Field: "subcategory_id", Table: "subcategories"}, vendorsRef, branchesRef},
		Label:      "product_name",
		Defaults:   map[string]interface{}{"is_active": true},
	})
	registerResource(h, api, Resource[model.ProductItemDetail]{
		Name:       "Product item",
		Path:       "product-item-details",
		Required:   []string{"product_id"},
		Unique:     []string{"tag_number"},
		Search:     []string{"tag_number", "sku"},
		Filters:    []string{"product_id"},
		References: []Reference{productsRef},
		Defaults:   map[string]interface{}{"quantity": 1},
	})
	registerResource(h, api, Resource[model.ProductVariation]{
		Name:       "Product variation",
		Path:       "product-variations",
		Required:   []string{"product_id", "variation_name"},
		Search:     []string{"variation_name"},
		Filters:    []string{"product_id"},
		References: []Reference{productsRef},
	})

	registerResource(h, api, Resource[model.OfferPlan]{
		Name:     "Offer plan",
		Path:     "offer-plans",
		Required: []string{"plan_name"},
		Unique:   []string{"plan_name"},
		Search:   []string{"plan_name"},
		Filters:  []string{"status"},
		Label:    "plan_name",
		Defaults: activeStatus(),
	})
	registerResource(h, api, Resource[model.OfferApplicableType]{
		Name:     "Offer applicable type",
		Path:     "offer-applicable-types",
		Required: []string{"type_name"},
		Unique:   []string{"type_name"},
		Search:   []string{"type_name"},
		Label:    "type_name",
	})
	registerResource(h, api, Resource[model.Offer]{
		Name:       "Offer",
		Path:       "offers",
		Required:   []string{"offer_code", "offer_name", "discount_value"},
		Unique:     []string{"offer_code"},
		Search:     []string{"offer_code", "offer_name"},
		Filters:    []string{"status", "offer_plan_id", "applicable_type_id"},
		References: []Reference{{Field: "offer_plan_id", Table: "offer_plans"}, {Field: "applicable_type_id", Table: "offer_applicable_types"}},
		Label:      "offer_name",
		Defaults:   map[string]interface{}{"status": "Active", "discount_type": model.DiscountTypePercentage},
		Prepare:    prepareOffer,
	})

	h.registerMaintenance(api)
}

func prepareOffer(_ *gorm.DB, offer *model.Offer, _ map[string]interface{}) error {
	if offer.DiscountType != model.DiscountTypePercentage && offer.DiscountType != model.DiscountTypeFlat {
		return apperr.InvalidInput("discount_type must be %q or %q", model.DiscountTypePercentage, model.DiscountTypeFlat)
	}
	if offer.DiscountValue.IsNegative() {
		return apperr.InvalidInput("discount_value must not be negative")
	}
	if offer.ValidFrom != nil && offer.ValidTo != nil && offer.ValidTo.Before(*offer.ValidFrom) {
		return apperr.InvalidInput("valid_to must not be before valid_from")
	}
	return nil
}
