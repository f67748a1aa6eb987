package handler

import (
	"net/http"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apidocs"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/cache"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/job"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/middleware"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/config"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	APIPrefix = "/api/v1"
	loginPath = APIPrefix + "/auth/login"
)

// Handler serves the ERP REST API.
type Handler struct {
	db      *gorm.DB
	cache   cache.Cache
	cfg     *config.Config
	jwt     *jwtutil.JWTUtil
	cleanup *job.OnHoldInvoiceCleanup
	docs    *apidocs.Spec
	log     *zap.Logger
}

func New(db *gorm.DB, c cache.Cache, cfg *config.Config, jwt *jwtutil.JWTUtil, cleanup *job.OnHoldInvoiceCleanup, log *zap.Logger) *Handler {
	if c == nil {
		c = cache.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	docs := apidocs.NewSpec("Retail ERP API", "1.0.0", APIPrefix)
	docs.Description = "Masters, vendors, employees, offers, maintenance and sales invoices"
	docs.BearerAuth = cfg.Auth.Enabled

	return &Handler{
		db:      db,
		cache:   c,
		cfg:     cfg,
		jwt:     jwt,
		cleanup: cleanup,
		docs:    docs,
		log:     log,
	}
}

// Register mounts every route on e and installs the envelope error handler.
func (h *Handler) Register(e *echo.Echo) {
	e.HTTPErrorHandler = h.HTTPErrorHandler

	e.GET("/health", h.HealthCheck)

	api := e.Group(APIPrefix)
	if h.cfg.Auth.Enabled {
		api.Use(middleware.JWTAuthMiddleware(h.jwt, loginPath))
	}

	h.registerAuth(api)
	h.registerResources(api)
	h.registerSalesInvoices(api)
	h.registerJobs(api)

	doc, err := h.docs.JSON()
	if err != nil {
		h.log.Error("Failed to build API documentation", zap.Error(err))
		return
	}
	apidocs.Publish(doc)

	redirect := func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/api-docs/index.html")
	}
	e.GET("/api-docs", redirect)
	e.GET("/api-docs/", redirect)
	e.GET("/api-docs/*", echo.WrapHandler(httpSwagger.Handler(httpSwagger.URL("/api-docs/doc.json"))))
}
