// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// ExportHandler converts projects to th2 and manages stored exports
type ExportHandler interface {
	HandleExport(c echo.Context) error
	HandleUploadProject(c echo.Context) error
	HandleGetRecentExports(c echo.Context) error
	HandleDownloadExport(c echo.Context) error
	HandleRenameExport(c echo.Context) error
	HandleDeleteExport(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
