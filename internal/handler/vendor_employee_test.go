package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVendorCodes(t *testing.T) {
	s := newTestServer(t)

	var code struct {
		Code string `json:"code"`
	}
	decodeData(t, s.do(http.MethodGet, "/api/v1/vendors/code", nil), &code)
	assert.Equal(t, "VEN001", code.Code)

	var first model.Vendor
	s.create("/api/v1/vendors", map[string]interface{}{"vendor_name": "Lakshmi Bullion", "mobile": "9000000001"}, &first)
	assert.Equal(t, "VEN001", first.VendorCode)
	assert.Equal(t, "Active", first.Status)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, fmt.Sprintf("/api/v1/vendors/%d", first.ID), nil).Code)

	decodeData(t, s.do(http.MethodGet, "/api/v1/vendors/code", nil), &code)
	assert.Equal(t, "VEN002", code.Code, "codes of deleted vendors are not reissued")

	var second model.Vendor
	s.create("/api/v1/vendors", map[string]interface{}{"vendor_name": "Sri Gems", "mobile": "9000000002"}, &second)
	assert.Equal(t, "VEN002", second.VendorCode)

	var custom model.Vendor
	s.create("/api/v1/vendors", map[string]interface{}{"vendor_name": "Custom", "mobile": "9000000003", "vendor_code": "SUP-9"}, &custom)
	assert.Equal(t, "SUP-9", custom.VendorCode)

	rec := s.do(http.MethodPost, "/api/v1/vendors", map[string]interface{}{"vendor_name": "Dup", "mobile": "9000000004", "vendor_code": "VEN002"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkVendorMaterialTypes(t *testing.T) {
	s := newTestServer(t)

	var vendor model.Vendor
	s.create("/api/v1/vendors", map[string]interface{}{"vendor_name": "Lakshmi Bullion", "mobile": "9000000001"}, &vendor)

	var gold, silver, platinum model.MaterialType
	s.create("/api/v1/material-types", map[string]interface{}{"material_type": "Gold"}, &gold)
	s.create("/api/v1/material-types", map[string]interface{}{"material_type": "Silver"}, &silver)
	s.create("/api/v1/material-types", map[string]interface{}{"material_type": "Platinum"}, &platinum)

	materialIDs := func(links []model.VendorMaterialType) []uint {
		ids := make([]uint, len(links))
		for i, l := range links {
			ids[i] = l.MaterialTypeID
		}
		return ids
	}

	var links []model.VendorMaterialType
	rec := s.do(http.MethodPut, "/api/v1/vendor-material-types/bulk", map[string]interface{}{
		"vendor_id": vendor.ID, "material_type_ids": []uint{gold.ID, silver.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &links)
	assert.Equal(t, []uint{gold.ID, silver.ID}, materialIDs(links))

	rec = s.do(http.MethodPut, "/api/v1/vendor-material-types/bulk", map[string]interface{}{
		"vendor_id": vendor.ID, "material_type_ids": []uint{silver.ID, platinum.ID, platinum.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &links)
	assert.Equal(t, []uint{silver.ID, platinum.ID}, materialIDs(links))

	var listed []model.VendorMaterialType
	decodeData(t, s.do(http.MethodGet, fmt.Sprintf("/api/v1/vendor-material-types?vendor_id=%d", vendor.ID), nil), &listed)
	assert.Len(t, listed, 2)

	rec = s.do(http.MethodPut, "/api/v1/vendor-material-types/bulk", map[string]interface{}{
		"vendor_id": vendor.ID, "material_type_ids": []uint{gold.ID, 999},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decodeData(t, s.do(http.MethodGet, fmt.Sprintf("/api/v1/vendor-material-types?vendor_id=%d", vendor.ID), nil), &listed)
	assert.Len(t, listed, 2, "a rejected replacement changes nothing")

	rec = s.do(http.MethodPut, "/api/v1/vendor-material-types/bulk", map[string]interface{}{"vendor_id": vendor.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Message, "material_type_ids")

	rec = s.do(http.MethodPut, "/api/v1/vendor-material-types/bulk", map[string]interface{}{
		"vendor_id": vendor.ID, "material_type_ids": []uint{},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &links)
	assert.Empty(t, links)
}

func TestEmployeePasswordIsHashed(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/employees", map[string]interface{}{
		"employee_name": "Anu", "mobile": "9000000010", "email": " Anu@Shop.in ", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.False(t, strings.Contains(rec.Body.String(), "password"))
	assert.False(t, strings.Contains(rec.Body.String(), "secret1"))

	var created model.Employee
	decodeData(t, rec, &created)
	assert.Equal(t, "EMP001", created.EmployeeCode)
	assert.Equal(t, "anu@shop.in", created.Email)

	var stored model.Employee
	require.NoError(t, s.db.First(&stored, created.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	rec = s.do(http.MethodPost, "/api/v1/employees", map[string]interface{}{
		"employee_name": "Ravi", "mobile": "9000000011", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/employees", map[string]interface{}{
		"employee_name": "Other Anu", "mobile": "9000000012", "email": "anu@shop.in",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/v1/employees/%d", created.ID), map[string]interface{}{"employee_name": "Anu K"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, s.db.First(&stored, created.ID).Error)
	assert.Equal(t, "Anu K", stored.EmployeeName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")), "hash survives updates without a password")
}
