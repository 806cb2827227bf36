// routes.go - Route registration helpers
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/th2-export/backend/internal/config"
	"github.com/th2-export/backend/internal/export"
	"github.com/th2-export/backend/internal/parser"
	"github.com/th2-export/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store    storage.Store
	Registry *parser.Registry
	Exporter *export.Exporter
	Config   *config.AppConfig
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Export ExportHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	registry := deps.Registry
	if registry == nil {
		registry = parser.GetGlobalRegistry()
	}
	return &Handlers{
		Health: NewHealthHandler(deps.Version, registry.Names()),
		Export: NewExportHandler(deps.Store, registry, deps.Exporter, deps.Config.Export),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, cfg *config.AppConfig) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Conversion
	apiGroup.POST("/export", handlers.Export.HandleExport)
	apiGroup.POST("/export/upload", handlers.Export.HandleUploadProject)

	// Stored exports
	apiGroup.GET("/exports/recent", handlers.Export.HandleGetRecentExports)
	apiGroup.GET("/exports/:id", handlers.Export.HandleDownloadExport)
	apiGroup.PUT("/exports/:id", handlers.Export.HandleRenameExport)

	// Conditional delete based on config
	if cfg.Security.AllowFileDeletion {
		apiGroup.DELETE("/exports/:id", handlers.Export.HandleDeleteExport)
	}
}

// SetupMiddleware installs the error handler and the middleware chain
// configured in cfg
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig) {
	e.HTTPErrorHandler = ErrorHandler

	level := ParseLogLevel(cfg.Advanced.LogLevel)
	e.Logger.SetLevel(level)
	ShowErrorDetails = level == log.DEBUG

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.Server.ReadTimeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Request().URL.Path, "/upload")
			},
			ErrorMessage: "Request timeout - export took too long",
		}))
	}

	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  origins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			ExposeHeaders: []string{echo.HeaderContentDisposition},
		}))
	}
}

// ParseLogLevel maps a config log level name to echo's logger level.
// Unknown names fall back to info.
func ParseLogLevel(name string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
