package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/roadmap-api/internal/api/shared"
	"github.com/phrazzld/roadmap-api/internal/importer"
)

// SpreadsheetImporter imports a roadmap spreadsheet from disk.
type SpreadsheetImporter interface {
	ImportFile(ctx context.Context, path, sheet string) (*importer.Result, error)
}

// ImportHandler triggers the configured spreadsheet import.
type ImportHandler struct {
	importer SpreadsheetImporter
	path     string
	sheet    string
	logger   *slog.Logger
}

// NewImportHandler creates an ImportHandler for the spreadsheet at path.
func NewImportHandler(imp SpreadsheetImporter, path, sheet string, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		importer: imp,
		path:     path,
		sheet:    sheet,
		logger:   logger.With(slog.String("component", "import_handler")),
	}
}

// Parse handles GET /api/parse.
func (h *ImportHandler) Parse(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "spreadsheet import requested", slog.String("sheet", h.sheet))
	result, err := h.importer.ImportFile(r.Context(), h.path, h.sheet)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
