package employeehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"marina/internal/domain/agreement"
	"marina/internal/domain/audit"
	"marina/internal/domain/auth"
	"marina/internal/domain/employee"
	"marina/internal/transport/http/api"
	"marina/internal/transport/http/middleware"
	"marina/internal/transport/http/shared"
)

const listPath = "/employees"

type Handler struct {
	Service    *employee.Service
	Agreements *agreement.Service
	Identity   auth.IdentityResolver
	Audit      audit.Recorder
}

func NewHandler(service *employee.Service, agreements *agreement.Service, identity auth.IdentityResolver, auditRec audit.Recorder) *Handler {
	return &Handler{Service: service, Agreements: agreements, Identity: identity, Audit: auditRec}
}

// RegisterRoutes mounts the employee routes on the /employees subrouter.
func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)
	user := middleware.RequireRole(auth.RoleUser)

	r.With(admin).Get("/", h.handleList)
	r.With(admin).Post("/", h.handleCreate)
	r.With(admin).Get("/email", h.handleGetByEmail)
	r.With(user).Get("/user", h.handleGetForUser)
	r.With(user).Post("/user", h.handleCreateForUser)
	r.With(admin).Get("/{id}", h.handleGet)
	r.With(admin).Put("/{id}", h.handleUpdate)
	r.With(admin).Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, employees)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.NotFound(w)
		return
	}
	emp, err := h.Service.Get(r.Context(), id)
	h.writeOne(w, r, emp, err)
}

func (h *Handler) handleGetByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		api.NotFound(w)
		return
	}
	emp, err := h.Service.GetByEmail(r.Context(), email)
	h.writeOne(w, r, emp, err)
}

func (h *Handler) handleGetForUser(w http.ResponseWriter, r *http.Request) {
	principal, err := h.Identity.Resolve(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if principal == nil {
		api.NotFound(w)
		return
	}
	emp, err := h.Service.GetByEmail(r.Context(), principal.Email)
	h.writeOne(w, r, emp, err)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, audit.ActionEmployeeCreate, created.ID, created)
	api.Created(w, h.location(r, created.ID))
}

func (h *Handler) handleCreateForUser(w http.ResponseWriter, r *http.Request) {
	principal, err := h.Identity.Resolve(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if principal == nil {
		api.NotFound(w)
		return
	}
	created, err := h.Service.CreateFromUser(r.Context(), *principal)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, audit.ActionEmployeeRegister, created.ID, created)
	api.Created(w, h.location(r, created.ID))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.NotFound(w)
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.Service.Update(r.Context(), id, payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, audit.ActionEmployeeUpdate, id, updated)
	api.NoContent(w)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.NoContent(w)
		return
	}
	removed, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if removed != nil {
		if h.Agreements != nil {
			h.Agreements.Discard(removed)
		}
		h.audit(r, audit.ActionEmployeeDelete, id, nil)
	}
	api.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (employee.Employee, bool) {
	reqID := middleware.GetRequestID(r.Context())
	var payload employee.Employee
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return payload, false
	}
	v := shared.NewValidator()
	v.Struct("", payload)
	if v.Reject(w, reqID) {
		return payload, false
	}
	return payload, true
}

func (h *Handler) writeOne(w http.ResponseWriter, r *http.Request, emp *employee.Employee, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if emp == nil {
		api.NotFound(w)
		return
	}
	api.Success(w, api.NewResource(emp).WithLink("all-employees", shared.AbsoluteURL(r, listPath)))
}

func (h *Handler) location(r *http.Request, id int64) string {
	return shared.AbsoluteURL(r, listPath+"/"+strconv.FormatInt(id, 10))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, employee.ErrNotFound):
		api.NotFound(w)
	case errors.Is(err, employee.ErrConflict):
		api.Fail(w, http.StatusConflict, "employee_exists", "employee email or username already exists", reqID)
	case errors.Is(err, employee.ErrInUse):
		api.Fail(w, http.StatusConflict, "employee_in_use", "employee has recorded payouts", reqID)
	default:
		slog.Error("employee request failed", "err", err, "path", r.URL.Path, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "employee request failed", reqID)
	}
}

func (h *Handler) audit(r *http.Request, action string, id int64, after any) {
	if h.Audit == nil {
		return
	}
	actor := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actor = user.Username
	}
	evt := audit.Event{
		Actor:      actor,
		Action:     action,
		EntityType: "employee",
		EntityID:   strconv.FormatInt(id, 10),
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         shared.ClientIP(r),
	}
	if err := h.Audit.Record(r.Context(), evt, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}
