// handlers_export.go - Project export and stored export handlers
package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/th2-export/backend/internal/config"
	"github.com/th2-export/backend/internal/export"
	"github.com/th2-export/backend/internal/models"
	"github.com/th2-export/backend/internal/parser"
	"github.com/th2-export/backend/internal/storage"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	store    storage.Store
	registry *parser.Registry
	exporter *export.Exporter
	cfg      config.ExportConfig
}

// NewExportHandler creates a new export handler instance
func NewExportHandler(store storage.Store, registry *parser.Registry, exporter *export.Exporter, cfg config.ExportConfig) ExportHandler {
	if registry == nil {
		registry = parser.GetGlobalRegistry()
	}
	if exporter == nil {
		exporter = export.NewExporter(nil)
	}
	return &ExportHandlerImpl{
		store:    store,
		registry: registry,
		exporter: exporter,
		cfg:      cfg,
	}
}

// HandleExport converts the project in the request body. The result is sent
// back as a th2 attachment, or stored when store=true.
func (h *ExportHandlerImpl) HandleExport(c echo.Context) error {
	name := c.QueryParam("name")
	store := false
	if v := c.QueryParam("store"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return NewValidationError("store")
		}
		store = b
	}

	if name != "" && !h.cfg.AllowsInput(name) {
		return NewUnsupportedFormatError(fmt.Errorf("file type not allowed: %s", name))
	}

	d, err := h.registry.FindDecoder(c.Request().Header.Get(echo.HeaderContentType), name)
	if err != nil {
		return decoderError(err)
	}

	text, err := h.convert(c, d, c.Request().Body, name)
	if err != nil {
		return err
	}

	outName := outputName(name, h.cfg.DefaultFileName)
	if store {
		info, err := h.store.SaveBytes(outName, []byte(text))
		if err != nil {
			return NewInternalError("failed to save export", err)
		}
		return c.JSON(http.StatusCreated, info)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", outName))
	return c.String(http.StatusOK, text)
}

// HandleUploadProject accepts a project file (multipart/form-data), exports
// it and stores the result
func (h *ExportHandlerImpl) HandleUploadProject(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	if !h.cfg.AllowsInput(file.Filename) {
		return NewUnsupportedFormatError(fmt.Errorf("file type not allowed: %s", file.Filename))
	}

	d, err := h.registry.FindDecoder("", file.Filename)
	if err != nil {
		return decoderError(err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	text, err := h.convert(c, d, src, file.Filename)
	if err != nil {
		return err
	}

	info, err := h.store.SaveBytes(outputName(file.Filename, h.cfg.DefaultFileName), []byte(text))
	if err != nil {
		return NewInternalError("failed to save export", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleGetRecentExports returns the most recently stored exports
func (h *ExportHandlerImpl) HandleGetRecentExports(c echo.Context) error {
	limit := defaultRecentLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = min(n, maxRecentLimit)
	}

	files, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list exports", err)
	}
	if files == nil {
		files = []*models.FileInfo{}
	}

	return c.JSON(http.StatusOK, files)
}

// HandleDownloadExport sends a stored export as an attachment
func (h *ExportHandlerImpl) HandleDownloadExport(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return storeError(err, id)
	}

	path, err := h.store.GetFilePath(id)
	if err != nil {
		return storeError(err, id)
	}

	return c.Attachment(path, info.Name)
}

// HandleRenameExport updates the display name of a stored export
func (h *ExportHandlerImpl) HandleRenameExport(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return storeError(err, id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDeleteExport removes a stored export
func (h *ExportHandlerImpl) HandleDeleteExport(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return storeError(err, id)
	}

	return c.NoContent(http.StatusNoContent)
}

type renameRequest struct {
	Name string `json:"name"`
}

// convert decodes r and exports it, logging the outcome.
func (h *ExportHandlerImpl) convert(c echo.Context, d parser.Decoder, r io.Reader, name string) (string, error) {
	project, err := d.Decode(r)
	if err != nil {
		return "", NewBadRequestError("invalid "+d.Name()+" project", err)
	}

	if h.cfg.MaxLayers > 0 && project.LayerCount() > h.cfg.MaxLayers {
		return "", NewBadRequestError(
			fmt.Sprintf("project has %d layers, limit is %d", project.LayerCount(), h.cfg.MaxLayers), nil)
	}

	lines, stats, err := h.exporter.Export(project)
	if err != nil {
		c.Logger().Warnf("export of %q failed: %v", name, err)
		return "", exportError(err)
	}

	c.Logger().Infof("exported %q (%s): %d scraps, %d points, %d lines, %d areas, %d generated ids",
		name, d.Name(), stats.Layers, stats.Points, stats.Lines, stats.Areas, stats.GeneratedIDs)
	return export.Render(lines), nil
}

// outputName derives the th2 file name for an input name.
func outputName(name, fallback string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == "/" {
		return fallback
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".th2"
}
