package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apidocs"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/logger"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	vendorCodePrefix = "VEN"
	codeWidth        = 3
)

func (h *Handler) registerVendors(api *echo.Group) {
	vendors := registerResource(h, api, Resource[model.Vendor]{
		Name:       "Vendor",
		Path:       "vendors",
		Required:   []string{"vendor_name", "mobile"},
		Unique:     []string{"vendor_code"},
		Search:     []string{"vendor_name", "vendor_code", "mobile", "email"},
		Filters:    []string{"status"},
		References: []Reference{districtsRef, statesRef, countriesRef},
		Label:      "vendor_name",
		Defaults:   activeStatus(),
		Prepare: func(tx *gorm.DB, v *model.Vendor, _ map[string]interface{}) error {
			if strings.TrimSpace(v.VendorCode) != "" {
				return nil
			}
			code, err := nextCode(tx, "vendors", "vendor_code", vendorCodePrefix, codeWidth)
			if err != nil {
				return err
			}
			v.VendorCode = code
			return nil
		},
	})
	vendors.GET("/code", h.codeHandler("vendors", "vendor_code", vendorCodePrefix))
	h.docs.AddOperation(apidocs.Operation{
		Method:   http.MethodGet,
		Path:     "/vendors/code",
		Tag:      "vendors",
		Summary:  "Next vendor code",
		Response: apidocs.Schema{"type": "object", "properties": apidocs.Schema{"code": apidocs.Schema{"type": "string"}}},
	})

	links := registerResource(h, api, Resource[model.VendorMaterialType]{
		Name:       "Vendor material type",
		Path:       "vendor-material-types",
		Required:   []string{"vendor_id", "material_type_id"},
		Filters:    []string{"vendor_id"},
		References: []Reference{vendorsRef, materialTypesRef},
	})
	links.PUT("/bulk", h.BulkUpdateVendorMaterialTypes)
	h.docs.AddOperation(apidocs.Operation{
		Method:   http.MethodPut,
		Path:     "/vendor-material-types/bulk",
		Tag:      "vendor-material-types",
		Summary:  "Replace the material types supplied by a vendor",
		Body:     apidocs.SchemaOf(bulkMaterialTypesRequest{}),
		Response: apidocs.Schema{"type": "array", "items": apidocs.SchemaOf(model.VendorMaterialType{})},
	})
}

// codeHandler serves the next code for a table whose codes look like PREFIX001.
func (h *Handler) codeHandler(table, column, prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		code, err := nextCode(h.db.WithContext(c.Request().Context()), table, column, prefix, codeWidth)
		if err != nil {
			return h.handleError(c, err)
		}
		return respond(c, http.StatusOK, "Code generated successfully", echo.Map{"code": code})
	}
}

// nextCode returns prefix followed by one more than the highest numeric suffix
// ever issued in column, soft-deleted rows included, zero-padded to width.
// Codes are read longest first, so only the top of the column is scanned.
func nextCode(tx *gorm.DB, table, column, prefix string, width int) (string, error) {
	rows, err := tx.Table(table).
		Select(column).
		Where(column+" LIKE ?", prefix+"%").
		Order("LENGTH(" + column + ") DESC, " + column + " DESC").
		Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(code, prefix)); err == nil && n >= 0 {
			highest = n
			break
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", prefix, width, highest+1), nil
}

// withCodeRetry runs fn a second time when the first attempt lost a race for
// a generated code to a concurrent insert.
func withCodeRetry(fn func() error) error {
	err := fn()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = fn()
	}
	return err
}

type bulkMaterialTypesRequest struct {
	VendorID        uint   `json:"vendor_id"`
	MaterialTypeIDs []uint `json:"material_type_ids"`
}

// BulkUpdateVendorMaterialTypes replaces the set of material types linked to a vendor.
func (h *Handler) BulkUpdateVendorMaterialTypes(c echo.Context) error {
	log := logger.FromContext(c)

	var req bulkMaterialTypesRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, apperr.InvalidInput("Invalid request body"))
	}
	if req.VendorID == 0 || req.MaterialTypeIDs == nil {
		var missing []string
		if req.VendorID == 0 {
			missing = append(missing, "vendor_id")
		}
		if req.MaterialTypeIDs == nil {
			missing = append(missing, "material_type_ids")
		}
		return h.handleError(c, apperr.RequiredFields(missing...))
	}

	wanted := make(map[uint]bool, len(req.MaterialTypeIDs))
	for _, id := range req.MaterialTypeIDs {
		wanted[id] = true
	}

	defer prometheus.TrackDBOperation("bulk_update")(time.Now())
	var links []model.VendorMaterialType
	err := h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, []Reference{vendorsRef}, map[string]interface{}{"vendor_id": req.VendorID}); err != nil {
			return err
		}
		for id := range wanted {
			if err := checkReferences(tx, []Reference{materialTypesRef}, map[string]interface{}{"material_type_id": id}); err != nil {
				return err
			}
		}

		var existing []model.VendorMaterialType
		if err := tx.Where("vendor_id = ?", req.VendorID).Find(&existing).Error; err != nil {
			return err
		}

		have := make(map[uint]bool, len(existing))
		var removed []uint
		for _, link := range existing {
			if !wanted[link.MaterialTypeID] || have[link.MaterialTypeID] {
				removed = append(removed, link.ID)
				continue
			}
			have[link.MaterialTypeID] = true
		}
		if len(removed) > 0 {
			if err := tx.Delete(&model.VendorMaterialType{}, removed).Error; err != nil {
				return err
			}
		}

		for _, id := range req.MaterialTypeIDs {
			if have[id] {
				continue
			}
			have[id] = true
			if err := tx.Create(&model.VendorMaterialType{VendorID: req.VendorID, MaterialTypeID: id}).Error; err != nil {
				return err
			}
		}

		return tx.Where("vendor_id = ?", req.VendorID).Order("id").Find(&links).Error
	})
	if err != nil {
		return h.handleError(c, err)
	}

	prometheus.RecordEntityOperation("vendor-material-types", "bulk_update")
	log.Info("Vendor material types replaced",
		zap.Uint("vendor_id", req.VendorID),
		zap.Int("count", len(links)))
	return respond(c, http.StatusOK, "Vendor material types updated successfully", links)
}
