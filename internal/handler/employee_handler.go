package handler

import (
	"net/http"
	"strings"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apidocs"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	employeeCodePrefix = "EMP"
	minPasswordLength  = 6
)

func (h *Handler) registerEmployees(api *echo.Group) {
	employees := registerResource(h, api, Resource[model.Employee]{
		Name:       "Employee",
		Path:       "employees",
		Required:   []string{"employee_name", "mobile"},
		Unique:     []string{"employee_code", "email"},
		Search:     []string{"employee_name", "employee_code", "mobile", "email"},
		Filters:    []string{"status", "branch_id", "role_id", "department_id"},
		References: []Reference{{Field: "role_id", Table: "roles"}, {Field: "department_id", Table: "departments"}, branchesRef},
		Label:      "employee_name",
		Defaults:   activeStatus(),
		Prepare:    prepareEmployee,
	})
	employees.GET("/code", h.codeHandler("employees", "employee_code", employeeCodePrefix))
	h.docs.AddOperation(apidocs.Operation{
		Method:   http.MethodGet,
		Path:     "/employees/code",
		Tag:      "employees",
		Summary:  "Next employee code",
		Response: apidocs.Schema{"type": "object", "properties": apidocs.Schema{"code": apidocs.Schema{"type": "string"}}},
	})
}

// prepareEmployee issues a code when none is given and hashes a plain
// "password" from the body into PasswordHash.
func prepareEmployee(tx *gorm.DB, e *model.Employee, body map[string]interface{}) error {
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))

	if strings.TrimSpace(e.EmployeeCode) == "" {
		code, err := nextCode(tx, "employees", "employee_code", employeeCodePrefix, codeWidth)
		if err != nil {
			return err
		}
		e.EmployeeCode = code
	}

	raw, ok := body["password"]
	if !ok || raw == nil {
		return nil
	}
	password, ok := raw.(string)
	if !ok || len(password) < minPasswordLength {
		return apperr.InvalidInput("password must be a string of at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	e.PasswordHash = string(hash)
	return nil
}
