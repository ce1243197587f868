package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/export"
	"superstore-dashboard/internal/services"
)

// ExportHandlers serve the filtered orders as downloadable files.
type ExportHandlers struct {
	base
}

func NewExportHandlers(dashboard *services.Dashboard, logger *slog.Logger) *ExportHandlers {
	return &ExportHandlers{
		base: newBase(dashboard, logger),
	}
}

// Handle returns the download handler for one export format.
func (h *ExportHandlers) Handle(format export.Format) http.HandlerFunc {
	exporter, ok := export.For(format)
	return func(w http.ResponseWriter, r *http.Request) {
		if !ok {
			h.writeError(w, r, errors.NotFound(fmt.Sprintf("Unsupported export format %q", format)))
			return
		}

		res, err := h.run(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := exporter.Export(&buf, res.Filtered); err != nil {
			h.writeError(w, r, errors.InternalWrap(err, "Failed to export orders"))
			return
		}

		size := buf.Len()
		filename := fmt.Sprintf("orders_%s_%s%s",
			formatDay(res.Selection.Start), formatDay(res.Selection.End), exporter.FileExtension())

		w.Header().Set("Content-Type", exporter.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(size))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.Warn("write export", "format", format, "error", err)
		}

		h.logger.Info("orders exported",
			"format", format,
			"rows", len(res.Filtered),
			"bytes", size)
	}
}
