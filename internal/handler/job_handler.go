package handler

import (
	"net/http"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apidocs"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/job"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (h *Handler) registerJobs(api *echo.Group) {
	if h.cleanup == nil {
		return
	}
	path := "/jobs/" + job.OnHoldCleanupName + "/run"
	api.POST(path, h.RunOnHoldCleanup)
	h.docs.AddOperation(apidocs.Operation{
		Method:   http.MethodPost,
		Path:     path,
		Tag:      "jobs",
		Summary:  "Run the on-hold invoice cleanup now",
		Response: apidocs.SchemaOf(job.Result{}),
	})
}

// RunOnHoldCleanup triggers the cleanup outside its schedule.
func (h *Handler) RunOnHoldCleanup(c echo.Context) error {
	logger.FromContext(c).Info("Manual cleanup requested", zap.String("job", job.OnHoldCleanupName))

	result, err := h.cleanup.Run(c.Request().Context())
	if err != nil {
		return h.handleError(c, err)
	}
	return respond(c, http.StatusOK, "Cleanup completed", result)
}
