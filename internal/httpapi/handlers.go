package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"osassist/internal/auth"
	"osassist/internal/logging"
	"osassist/internal/logs"
	"osassist/internal/settings"
)

const maxBodyBytes = 1 << 20

func errorAttrs(r *http.Request, err error) []any {
	return logging.Args(
		logging.Error(err),
		logging.String(logging.FieldCorrelationID, middleware.GetReqID(r.Context())),
		logging.String("path", r.URL.Path),
	)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.panel.Status(r.Context()))
}

// parseTailRequest reads offset, max_bytes, and last_lines. Absent values
// keep their zero meaning; max_bytes absent selects the default cap.
func parseTailRequest(r *http.Request) (logs.TailRequest, error) {
	query := r.URL.Query()
	var req logs.TailRequest
	if value := strings.TrimSpace(query.Get("offset")); value != "" {
		offset, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid offset %q", value)
		}
		req.Offset = offset
	}
	if value := strings.TrimSpace(query.Get("max_bytes")); value != "" {
		limit, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid max_bytes %q", value)
		}
		req.MaxBytes = logs.Cap(limit)
	}
	if value := strings.TrimSpace(query.Get("last_lines")); value != "" {
		lines, err := strconv.Atoi(value)
		if err != nil || lines < 0 {
			return req, fmt.Errorf("invalid last_lines %q", value)
		}
		req.LastLines = lines
	}
	return req, nil
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	req, err := parseTailRequest(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	chunk, err := s.panel.TailLog(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chunk)
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleLoadSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := s.panel.LoadSettings()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	doc := settings.Default()
	if err := decodeBody(r, &doc); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	result, err := s.panel.SaveSettings(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExportSettings(w http.ResponseWriter, r *http.Request) {
	format, err := settings.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	data, err := s.panel.ExportSettings(format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	contentType := "application/json"
	if format == settings.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImportSettings(w http.ResponseWriter, r *http.Request) {
	format, err := settings.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.badRequest(w, "read request body: "+err.Error())
		return
	}
	result, err := s.panel.ImportSettings(r.Context(), data, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func listParams(r *http.Request, withIndex bool) (settings.List, int, error) {
	list, err := settings.ParseList(chi.URLParam(r, "list"))
	if err != nil {
		return "", 0, err
	}
	if !withIndex {
		return list, 0, nil
	}
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, fmt.Errorf("invalid index %q", raw)
	}
	return list, index, nil
}

func (s *Server) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	list, _, err := listParams(r, false)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	var item json.RawMessage
	if err := decodeBody(r, &item); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if err := s.panel.AddListItem(r.Context(), list, item); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (s *Server) handleUpdateListItem(w http.ResponseWriter, r *http.Request) {
	list, index, err := listParams(r, true)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	var item json.RawMessage
	if err := decodeBody(r, &item); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if err := s.panel.UpdateListItem(r.Context(), list, index, item); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveListItem(w http.ResponseWriter, r *http.Request) {
	list, index, err := listParams(r, true)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if err := s.panel.RemoveListItem(r.Context(), list, index); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.panel.Health(r.Context()))
}

func (s *Server) handleStopAssistant(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.panel.StopAssistant(r.Context()))
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	msg, err := s.panel.Cleanup(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: msg})
}

func (s *Server) handleStartupStatus(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.panel.StartupEnabled()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, startupBody{Enabled: enabled})
}

func (s *Server) handleSetStartup(w http.ResponseWriter, r *http.Request) {
	var body startupBody
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if err := s.panel.SetStartup(body.Enabled); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleUpdateAuth(w http.ResponseWriter, r *http.Request) {
	var data auth.Data
	if err := decodeBody(r, &data); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	msg, err := s.panel.UpdateAuthCache(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: msg})
}

func (s *Server) handleClearAuth(w http.ResponseWriter, r *http.Request) {
	msg, err := s.panel.ClearAuthCache()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: msg})
}
