package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/konveksi/internal/metrics"
	"github.com/Skotchmaster/konveksi/internal/middleware/auth"
	"github.com/Skotchmaster/konveksi/internal/middleware/csrf"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/pkg/logging"
	loggingmw "github.com/Skotchmaster/konveksi/pkg/middleware/logging"
)

type Deps struct {
	Auth     *AuthHTTP
	Catalog  *CatalogHTTP
	Orders   *OrderHTTP
	Designs  *DesignHTTP
	Messages *MessageHTTP
	Assets   *AssetsHTTP

	Gate    *auth.Gate
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// Ready reports whether the backing store answers.
	Ready func(ctx context.Context) error

	ClientURLs    []string
	BodyLimit     string
	SecureCookies bool
	CSRF          bool
}

// New builds the echo instance with the middleware chain and every route.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = transport.Validator{}
	e.HTTPErrorHandler = ErrorHandler

	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.BodyLimit == "" {
		d.BodyLimit = "25M"
	}

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(d.Metrics.Middleware())
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     d.ClientURLs,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "X-CSRF-Token",
		},
		ExposeHeaders: []string{echo.HeaderXRequestID, "X-CSRF-Token"},
	}))
	e.Use(middleware.BodyLimit(d.BodyLimit))
	if d.CSRF {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:         d.SecureCookies,
			TrustedOrigins: d.ClientURLs,
		}))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	e.GET("/uploads/*", d.Assets.Serve)

	api := e.Group("/api")
	api.GET("/health", health)

	authg := api.Group("/auth")
	authg.POST("/register", d.Auth.Register)
	authg.POST("/login", d.Auth.Login)
	authg.POST("/logout", d.Auth.Logout)
	authg.GET("/profile", d.Auth.Profile, d.Gate.RequireAuth)

	categories := api.Group("/categories")
	categories.GET("", d.Catalog.ListCategories)
	categories.GET("/:id", d.Catalog.GetCategory)
	categories.POST("", d.Catalog.CreateCategory, d.Gate.RequireAdmin)
	categories.PUT("/:id", d.Catalog.UpdateCategory, d.Gate.RequireAdmin)
	categories.DELETE("/:id", d.Catalog.DeleteCategory, d.Gate.RequireAdmin)

	products := api.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/categories", d.Catalog.ListCategories)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, d.Gate.RequireAdmin)
	products.PUT("/:id", d.Catalog.UpdateProduct, d.Gate.RequireAdmin)
	products.DELETE("/:id", d.Catalog.DeleteProduct, d.Gate.RequireAdmin)

	orders := api.Group("/orders", d.Gate.RequireAuth)
	orders.POST("", d.Orders.CreateOrder)
	orders.GET("", d.Orders.ListOrders)
	orders.GET("/:id", d.Orders.GetOrder)
	api.PUT("/orders/:id/status", d.Orders.UpdateOrderStatus, d.Gate.RequireAdmin)

	designs := api.Group("/designs", d.Gate.RequireAuth)
	designs.POST("", d.Designs.SaveDesign)
	designs.GET("", d.Designs.ListDesigns)
	designs.GET("/:id", d.Designs.GetDesign)
	designs.DELETE("/:id", d.Designs.DeleteDesign)

	messages := api.Group("/messages")
	messages.POST("", d.Messages.CreateMessage, d.Gate.Optional)
	messages.GET("", d.Messages.ListMessages, d.Gate.RequireAdmin)

	e.RouteNotFound("/*", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "route not found")
	})
}

func health(c echo.Context) error {
	return respond(c, http.StatusOK, echo.Map{
		"message":   "server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (d *Deps) ready(c echo.Context) error {
	if d.Ready == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := d.Ready(ctx); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "status", http.StatusServiceUnavailable, "error", err)
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
