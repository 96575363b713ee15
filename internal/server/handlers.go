package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/schedule"
	"github.com/julianstephens/confsched/internal/validation"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type validateResponse struct {
	HasConflicts bool                  `json:"has_conflicts"`
	Report       string                `json:"report"`
	Conflicts    []validation.Conflict `json:"conflicts"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Detail: msg})
}

// statusFor maps service errors to HTTP status codes. Conflicts keep the
// 400 the API has always returned.
func statusFor(err error) int {
	switch {
	case errors.Is(err, schedule.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, schedule.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": constants.AppTitle})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Schedule(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAddDay(w http.ResponseWriter, r *http.Request) {
	var in models.DayInput
	if !decodeBody(w, r, &in) {
		return
	}
	result, err := s.svc.AddDay(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.DeleteDay(r.Context(), r.PathValue("dayID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if !decodeBody(w, r, &in) {
		return
	}
	result, err := s.svc.AddEvent(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if !decodeBody(w, r, &in) {
		return
	}
	result, err := s.svc.UpdateEvent(r.Context(), r.PathValue("dayID"), r.PathValue("eventID"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.DeleteEvent(r.Context(), r.PathValue("dayID"), r.PathValue("eventID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Initialize(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUploadOutline(w http.ResponseWriter, r *http.Request) {
	if limit := s.cfg.MaxUploadBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "upload failed: file exceeds the upload limit")
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusUnprocessableEntity, "multipart field 'file' is required")
		default:
			writeError(w, http.StatusUnprocessableEntity, "invalid multipart body: "+err.Error())
		}
		return
	}
	defer file.Close()

	event, err := s.svc.AttachOutline(r.Context(), r.PathValue("dayID"), r.PathValue("eventID"), header.Filename, file)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.Error("Outline upload failed", "event", r.PathValue("eventID"), "error", err)
			writeError(w, status, "upload failed: "+err.Error())
			return
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	name := r.PathValue("file")
	if !safeSegment(eventID) || !safeSegment(name) || s.files == nil {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.files.Dir(), eventID, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	current, err := s.svc.Schedule(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	result := s.validator.ValidateSchedule(current)
	writeJSON(w, http.StatusOK, validateResponse{
		HasConflicts: result.HasConflicts(),
		Report:       result.FormatReport(),
		Conflicts:    result.Conflicts,
	})
}

// safeSegment rejects path values that would leave the outline directory.
func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && filepath.Base(s) == s
}
