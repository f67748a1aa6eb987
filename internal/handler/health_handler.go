package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness. With ?check=db it also pings the database.
func (h *Handler) HealthCheck(c echo.Context) error {
	data := echo.Map{
		"status":  "healthy",
		"service": h.cfg.ServiceName,
	}

	if c.QueryParam("check") == "db" {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			data["status"] = "unhealthy"
			data["database"] = err.Error()
			return respond(c, http.StatusServiceUnavailable, "Database unreachable", data)
		}
		data["database"] = "ok"
	}

	return respond(c, http.StatusOK, "OK", data)
}
