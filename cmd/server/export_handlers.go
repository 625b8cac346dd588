package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/teekalk/internal/export"
	"github.com/Simplici0/teekalk/internal/products"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "csv", "text/csv; charset=utf-8", export.WriteCSV)
}

func (s *server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "xlsx", xlsxContentType, export.WriteXLSX)
}

func (s *server) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(io.Writer, []products.Product) error) {
	list, err := s.tracker.Products(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// Buffered so a failed write can still produce an error status.
	var buf bytes.Buffer
	if err := write(&buf, export.Select(list, parseIDs(r.URL.Query().Get("ids")))); err != nil {
		s.fail(w, r, fmt.Errorf("write %s export: %w", ext, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(s.now(), ext)))
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write export", zap.String("format", ext), zap.Error(err))
	}
}

func parseIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
