package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
	"github.com/Kerhoff/dayplan/internal/schedule"
	"github.com/Kerhoff/dayplan/internal/service"
)

// Server provides the HTTP API.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/users", s.handleCreateUser)

	// Ordered lists
	s.mux.HandleFunc("GET /api/users/{user}/scopes/{scope}", s.handleView)
	s.mux.HandleFunc("PUT /api/users/{user}/scopes/{scope}/order", s.handleReorder)
	s.mux.HandleFunc("GET /api/users/{user}/mode", s.handleGetMode)
	s.mux.HandleFunc("PUT /api/users/{user}/mode", s.handleSetMode)

	// Items
	s.mux.HandleFunc("GET /api/users/{user}/items", s.handleListItems)
	s.mux.HandleFunc("POST /api/users/{user}/items", s.handleCreateItem)
	s.mux.HandleFunc("GET /api/users/{user}/items/{id}", s.handleGetItem)
	s.mux.HandleFunc("PUT /api/users/{user}/items/{id}", s.handleUpdateItem)
	s.mux.HandleFunc("DELETE /api/users/{user}/items/{id}", s.handleDeleteItem)
	s.mux.HandleFunc("PUT /api/users/{user}/items/{id}/completed", s.handleSetCompleted)
	s.mux.HandleFunc("PUT /api/users/{user}/items/{id}/skip", s.handleSkip)
	s.mux.HandleFunc("DELETE /api/users/{user}/items/{id}/skip", s.handleRestore)
	s.mux.HandleFunc("GET /api/users/{user}/items/{id}/exclusions", s.handleGetExclusion)
	s.mux.HandleFunc("PUT /api/users/{user}/items/{id}/exclusions", s.handleSetExclusion)
	s.mux.HandleFunc("PUT /api/users/{user}/items/{id}/week", s.handleMoveToWeek)

	// Lock
	s.mux.HandleFunc("GET /api/users/{user}/lock", s.handleLockStatus)
	s.mux.HandleFunc("PUT /api/users/{user}/lock", s.handleLock)
	s.mux.HandleFunc("DELETE /api/users/{user}/lock", s.handleUnlock)

	// Templates
	s.mux.HandleFunc("GET /api/users/{user}/templates", s.handleListTemplates)
	s.mux.HandleFunc("POST /api/users/{user}/templates", s.handleCapture)
	s.mux.HandleFunc("PUT /api/users/{user}/templates/default", s.handleSetDefault)
	s.mux.HandleFunc("POST /api/users/{user}/templates/default/apply", s.handleApplyDefault)
	s.mux.HandleFunc("POST /api/users/{user}/templates/{id}/apply", s.handleApply)
	s.mux.HandleFunc("DELETE /api/users/{user}/templates/{id}", s.handleDeleteTemplate)

	// Programs
	s.mux.HandleFunc("GET /api/users/{user}/programs", s.handleListPrograms)
	s.mux.HandleFunc("POST /api/users/{user}/programs", s.handleCreateProgram)
	s.mux.HandleFunc("PUT /api/users/{user}/programs/{id}", s.handleUpdateProgram)
	s.mux.HandleFunc("GET /api/users/{user}/programs/{id}/buckets", s.handleBuckets)
	s.mux.HandleFunc("GET /api/users/{user}/programs/{id}/today", s.handleProgramToday)
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondFailure maps a planner error onto a status code. Persistence
// failures are retryable, so they answer 503.
func (s *Server) respondFailure(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, schedule.ErrValidation):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, schedule.ErrLocked):
		s.respondError(w, http.StatusLocked, "ordering is locked")
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, schedule.ErrPersistence):
		s.logger.WithError(err).Warnf("failed to %s", action)
		s.respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("failed to %s, please retry", action))
	default:
		s.logger.WithError(err).Errorf("failed to %s", action)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to %s", action))
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// planner resolves the {user} path value.  It writes an error response and
// returns nil when the user is unknown.
func (s *Server) planner(w http.ResponseWriter, r *http.Request) *service.Planner {
	userID, err := strconv.ParseInt(r.PathValue("user"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "user must be an integer")
		return nil
	}
	p, err := s.svc.Planner(r.Context(), userID)
	if err != nil {
		s.respondFailure(w, "load user", err)
		return nil
	}
	return p
}

// ---------------------------------------------------------------------------
// Health & users
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createUserRequest struct {
	FirstName string `json:"first_name"`
	ChatID    int64  `json:"chat_id"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	user, err := s.svc.CreateUser(r.Context(), req.FirstName, req.ChatID)
	if err != nil {
		s.respondFailure(w, "create user", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, user)
}

// ---------------------------------------------------------------------------
// Ordered lists
// ---------------------------------------------------------------------------

type reorderRequest struct {
	IDs []string `json:"ids"`
}

type modeRequest struct {
	Mode models.SortMode `json:"mode"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	view, err := p.View(r.Context(), models.Scope(r.PathValue("scope")))
	if err != nil {
		s.respondFailure(w, "load view", err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req reorderRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	scope := models.Scope(r.PathValue("scope"))
	if err := p.Reorder(r.Context(), scope, req.IDs); err != nil {
		s.respondFailure(w, "reorder", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	mode, err := p.SortMode(r.Context())
	if err != nil {
		s.respondFailure(w, "load sort mode", err)
		return
	}
	s.respondJSON(w, http.StatusOK, modeRequest{Mode: mode})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req modeRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if err := p.SetSortMode(r.Context(), req.Mode); err != nil {
		s.respondFailure(w, "set sort mode", err)
		return
	}
	s.respondJSON(w, http.StatusOK, req)
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

type itemRequest struct {
	Title           string                 `json:"title"`
	Context         models.GroupingContext `json:"context"`
	Kind            models.ScheduleKind    `json:"kind"`
	Weekdays        []int                  `json:"weekdays"`
	Dates           []string               `json:"dates"`
	CycleWeek       int                    `json:"cycle_week"`
	ProgramID       *string                `json:"program_id"`
	StartTime       *string                `json:"start_time"` // HH:MM
	ReminderMinutes *int                   `json:"reminder_minutes"`
}

func (req *itemRequest) item() *models.Item {
	return &models.Item{
		Title:           strings.TrimSpace(req.Title),
		Context:         req.Context,
		Kind:            req.Kind,
		Weekdays:        req.Weekdays,
		Dates:           req.Dates,
		CycleWeek:       req.CycleWeek,
		ProgramID:       req.ProgramID,
		StartTime:       req.StartTime,
		ReminderMinutes: req.ReminderMinutes,
	}
}

type completedRequest struct {
	Completed bool `json:"completed"`
}

type weekdaysRequest struct {
	Weekdays []int `json:"weekdays"`
}

type weekRequest struct {
	Week int `json:"week"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	items, err := p.Items(r.Context())
	if err != nil {
		s.respondFailure(w, "get items", err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req itemRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	created, err := p.CreateItem(r.Context(), req.item())
	if err != nil {
		s.respondFailure(w, "create item", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	item, err := p.Item(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondFailure(w, "get item", err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req itemRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	item := req.item()
	item.ID = r.PathValue("id")
	updated, err := p.UpdateItem(r.Context(), item)
	if err != nil {
		s.respondFailure(w, "update item", err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	if err := p.DeleteItem(r.Context(), r.PathValue("id")); err != nil {
		s.respondFailure(w, "delete item", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSetCompleted(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req completedRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if err := p.SetCompleted(r.Context(), r.PathValue("id"), req.Completed); err != nil {
		s.respondFailure(w, "update completion", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	if err := p.Skip(r.Context(), r.PathValue("id")); err != nil {
		s.respondFailure(w, "skip item", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	if err := p.Restore(r.Context(), r.PathValue("id")); err != nil {
		s.respondFailure(w, "restore item", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetExclusion(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	days, err := p.DayExclusion(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondFailure(w, "get exclusions", err)
		return
	}
	s.respondJSON(w, http.StatusOK, weekdaysRequest{Weekdays: days})
}

func (s *Server) handleSetExclusion(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req weekdaysRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if err := p.SetDayExclusion(r.Context(), r.PathValue("id"), req.Weekdays); err != nil {
		s.respondFailure(w, "set exclusions", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMoveToWeek(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req weekRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if err := p.MoveToWeek(r.Context(), r.PathValue("id"), req.Week); err != nil {
		s.respondFailure(w, "move item", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// ---------------------------------------------------------------------------
// Lock
// ---------------------------------------------------------------------------

type lockRequest struct {
	Kind     models.LockKind `json:"kind"`
	Weekdays []int           `json:"weekdays"`
}

func (s *Server) handleLockStatus(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	status, err := p.LockStatus(r.Context())
	if err != nil {
		s.respondFailure(w, "get lock", err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req lockRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	status, err := p.Lock(r.Context(), req.Kind, req.Weekdays)
	if err != nil {
		s.respondFailure(w, "lock ordering", err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	if err := p.Unlock(r.Context()); err != nil {
		s.respondFailure(w, "unlock ordering", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

type captureRequest struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

type defaultRequest struct {
	ID string `json:"id"` // empty clears the default
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	templates, err := p.Templates(r.Context())
	if err != nil {
		s.respondFailure(w, "get templates", err)
		return
	}
	s.respondJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req captureRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	tmpl, err := p.Capture(r.Context(), req.Name, req.IsDefault)
	if err != nil {
		s.respondFailure(w, "save template", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, tmpl)
}

func (s *Server) handleSetDefault(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req defaultRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if err := p.SetDefault(r.Context(), req.ID); err != nil {
		s.respondFailure(w, "set default template", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	if err := p.Apply(r.Context(), r.PathValue("id")); err != nil {
		s.respondFailure(w, "apply template", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleApplyDefault(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	if err := p.ApplyDefault(r.Context()); err != nil {
		s.respondFailure(w, "apply default template", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	if err := p.DeleteTemplate(r.Context(), r.PathValue("id")); err != nil {
		s.respondFailure(w, "delete template", err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// ---------------------------------------------------------------------------
// Programs
// ---------------------------------------------------------------------------

type programRequest struct {
	Name        string             `json:"name"`
	Type        models.ProgramType `json:"type"`
	StartDate   string             `json:"start_date"` // YYYY-MM-DD, optional
	LengthWeeks int                `json:"length_weeks"`
}

func (req *programRequest) program() (*models.CycleProgram, error) {
	prog := &models.CycleProgram{
		Name:        req.Name,
		Type:        req.Type,
		LengthWeeks: req.LengthWeeks,
	}
	if req.StartDate != "" {
		start, err := time.ParseInLocation(models.DateLayout, req.StartDate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("start_date must be YYYY-MM-DD")
		}
		prog.StartDate = &start
	}
	return prog, nil
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	programs, err := p.Programs(r.Context())
	if err != nil {
		s.respondFailure(w, "get programs", err)
		return
	}
	s.respondJSON(w, http.StatusOK, programs)
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req programRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	prog, err := req.program()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := p.CreateProgram(r.Context(), prog)
	if err != nil {
		s.respondFailure(w, "create program", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateProgram(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	var req programRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	prog, err := req.program()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	prog.ID = r.PathValue("id")
	updated, err := p.UpdateProgram(r.Context(), prog)
	if err != nil {
		s.respondFailure(w, "update program", err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	buckets, err := p.Buckets(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondFailure(w, "get buckets", err)
		return
	}
	s.respondJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleProgramToday(w http.ResponseWriter, r *http.Request) {
	p := s.planner(w, r)
	if p == nil {
		return
	}
	items, err := p.ProgramToday(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondFailure(w, "get program items", err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}
