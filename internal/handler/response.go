package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{StatusCode: status, Message: message, Data: data})
}

// handleError writes the error envelope for err. Unknown errors become 500.
func (h *Handler) handleError(c echo.Context, err error) error {
	log := logger.FromContext(c)

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = &apperr.Error{Kind: apperr.KindAlreadyExists, Message: "Record already exists", Err: err}
	}

	appErr := apperr.As(err)
	status := appErr.Status()
	message := appErr.Message

	var data interface{}
	if len(appErr.Fields) > 0 {
		data = echo.Map{"fields": appErr.Fields}
	}

	if appErr.Kind == apperr.KindInternal {
		log.Error("Request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		if !h.cfg.Server.IsProduction() && appErr.Err != nil {
			message = appErr.Err.Error()
		}
	} else {
		log.Warn("Request rejected",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.String("error", message))
	}

	return respond(c, status, message, data)
}

// HTTPErrorHandler renders errors that escape handlers and middleware, including
// router errors, with the same envelope.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if httpErr.Message != nil {
			message = fmt.Sprint(httpErr.Message)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(httpErr.Code)
			return
		}
		_ = respond(c, httpErr.Code, message, nil)
		return
	}

	_ = h.handleError(c, err)
}
