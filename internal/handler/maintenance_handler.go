package handler

import (
	"net/http"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apidocs"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func (h *Handler) registerMaintenance(api *echo.Group) {
	registerResource(h, api, Resource[model.MaintenanceType]{
		Name:     "Maintenance type",
		Path:     "maintenance-types",
		Required: []string{"maintenance_type"},
		Unique:   []string{"maintenance_type"},
		Search:   []string{"maintenance_type"},
		Label:    "maintenance_type",
	})

	maintenance := registerResource(h, api, Resource[model.Maintenance]{
		Name:       "Maintenance",
		Path:       "maintenance",
		Required:   []string{"maintenance_type_id", "title"},
		Search:     []string{"title", "description"},
		Filters:    []string{"status", "branch_id", "maintenance_type_id"},
		References: []Reference{{Field: "maintenance_type_id", Table: "maintenance_types"}, branchesRef},
		Defaults:   map[string]interface{}{"status": model.MaintenanceStatusScheduled},
		Prepare: func(_ *gorm.DB, m *model.Maintenance, _ map[string]interface{}) error {
			if !contains(model.MaintenanceStatuses, m.Status) {
				return apperr.InvalidInput("Invalid status: %s", m.Status)
			}
			return nil
		},
	})
	maintenance.GET("/status-options", statusOptions(model.MaintenanceStatuses))
	h.docs.AddOperation(statusOptionsDoc("/maintenance/status-options", "maintenance"))
}

// statusOptions serves a fixed list of statuses as dropdown entries.
func statusOptions(statuses []string) echo.HandlerFunc {
	type option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	options := make([]option, len(statuses))
	for i, s := range statuses {
		options[i] = option{Value: s, Label: s}
	}
	return func(c echo.Context) error {
		return respond(c, http.StatusOK, "Status options fetched successfully", options)
	}
}

func statusOptionsDoc(path, tag string) apidocs.Operation {
	return apidocs.Operation{
		Method:  http.MethodGet,
		Path:    path,
		Tag:     tag,
		Summary: "Allowed status values",
		Response: apidocs.Schema{"type": "array", "items": apidocs.Schema{
			"type":       "object",
			"properties": apidocs.Schema{"value": apidocs.Schema{"type": "string"}, "label": apidocs.Schema{"type": "string"}},
		}},
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
