package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apidocs"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/jwtutil"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/logger"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Employee  *model.Employee `json:"employee"`
}

func (h *Handler) registerAuth(api *echo.Group) {
	api.POST("/auth/login", h.Login)
	h.docs.AddOperation(apidocs.Operation{
		Method:   http.MethodPost,
		Path:     "/auth/login",
		Tag:      "auth",
		Summary:  "Exchange employee credentials for a bearer token",
		Body:     apidocs.SchemaOf(loginRequest{}),
		Response: apidocs.SchemaOf(loginResponse{}),
	})
}

// Login verifies an employee's email and password and issues a JWT.
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthAttempt("invalid_request")
		return h.handleError(c, apperr.InvalidInput("Invalid request body"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var missing []string
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		prometheus.RecordAuthAttempt("invalid_request")
		return h.handleError(c, apperr.RequiredFields(missing...))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var employee model.Employee
	err := h.db.WithContext(c.Request().Context()).
		Where("email = ? AND password_hash <> ''", req.Email).
		First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Login for unknown employee", zap.String("email", req.Email))
			prometheus.RecordAuthAttempt("unknown_employee")
			return h.handleError(c, apperr.Unauthorized("Invalid credentials"))
		}
		return h.handleError(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthAttempt("invalid_password")
		return h.handleError(c, apperr.Unauthorized("Invalid credentials"))
	}
	if employee.Status != "" && employee.Status != "Active" {
		prometheus.RecordAuthAttempt("inactive")
		return h.handleError(c, apperr.Unauthorized("Employee is not active"))
	}

	token, expiresAt, err := h.jwt.GenerateToken(jwtutil.EmployeeClaims{
		Email:        employee.Email,
		EmployeeID:   employee.ID,
		EmployeeCode: employee.EmployeeCode,
		RoleID:       employee.RoleID,
		BranchID:     employee.BranchID,
	})
	if err != nil {
		prometheus.RecordAuthAttempt("token_error")
		return h.handleError(c, err)
	}

	prometheus.RecordAuthAttempt("success")
	log.Info("Employee logged in",
		zap.Uint("employee_id", employee.ID),
		zap.String("employee_code", employee.EmployeeCode))
	return respond(c, http.StatusOK, "Login successful", loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Employee:  &employee,
	})
}
