package api

import (
	"io"
	"net/http"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/storage"
)

// handleExport returns every matter and client as one snapshot document.
// ?format=yaml selects YAML; JSON is the default.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := storage.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := storage.ParseFormat(q)
		if err != nil {
			HandleError(w, fincherrors.ErrInvalidInput("format", err.Error()))
			return
		}
		format = f
	}

	snap, err := s.svc.Export(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	data, err := storage.EncodeSnapshot(snap, format)
	if err != nil {
		HandleError(w, err)
		return
	}

	contentType := "application/json"
	if format == storage.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// handleImport replaces every matter with the posted snapshot (JSON or
// YAML).
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		HandleError(w, fincherrors.ErrInvalidInput("body", err.Error()))
		return
	}
	snap, err := storage.DecodeSnapshot(data)
	if err != nil {
		HandleError(w, fincherrors.ErrInvalidInput("body", err.Error()))
		return
	}

	res, err := s.svc.Import(r.Context(), snap)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, map[string]any{"success": true, "imported": res})
}
