package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/auth"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	authService    *auth.Service
	catalogService *service.CatalogService
	orderService   *service.OrderService
	licenseService *service.LicenseService
	reviewService  *service.ReviewService
	accountService *service.AccountService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authService *auth.Service,
	catalogService *service.CatalogService,
	orderService *service.OrderService,
	licenseService *service.LicenseService,
	reviewService *service.ReviewService,
	accountService *service.AccountService,
) *Handler {
	return &Handler{
		authService:    authService,
		catalogService: catalogService,
		orderService:   orderService,
		licenseService: licenseService,
		reviewService:  reviewService,
		accountService: accountService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		api.GET("/products", h.listProducts)
		api.GET("/products/:slug", h.getProduct)
		// the reviews segment is the numeric product id; gin requires
		// the shared param name with the sibling route
		api.GET("/products/:slug/reviews", h.listReviews)
		api.GET("/categories", h.listCategories)
		api.GET("/categories/:slug/products", h.listCategoryProducts)
		api.GET("/accounts", h.listAccounts)
	}

	authed := api.Group("", auth.Middleware(h.authService))
	{
		authed.POST("/auth/logout", h.logout)

		authed.POST("/reviews", h.createReview)

		authed.GET("/orders", h.listOrders)
		authed.GET("/orders/:id", h.getOrder)
		authed.POST("/orders", h.createOrder)

		authed.POST("/hwid/register", h.registerHwid)
		authed.POST("/hwid/activate", h.activateHwid)
		authed.POST("/hwid/validate", h.validateHwid)
		authed.GET("/hwid/logs", h.listHwidLogs)

		authed.POST("/accounts", h.createAccount)
	}

	admin := api.Group("/admin", auth.Middleware(h.authService), auth.RequireAdmin())
	{
		admin.POST("/products", h.adminCreateProduct)
		admin.PATCH("/products/:id", h.adminUpdateProduct)
		admin.POST("/categories", h.adminCreateCategory)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps domain errors onto HTTP statuses: validation
// errors to 400, forbidden to 403, missing entities to 404, anything
// else to an opaque 500.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not permitted"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
