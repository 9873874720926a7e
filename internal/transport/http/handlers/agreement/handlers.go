package agreementhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marina/internal/domain/agreement"
	"marina/internal/domain/audit"
	"marina/internal/domain/auth"
	"marina/internal/domain/employee"
	"marina/internal/transport/http/api"
	"marina/internal/transport/http/middleware"
	"marina/internal/transport/http/shared"
)

const formField = "file"

type Handler struct {
	Service   *agreement.Service
	Employees *employee.Service
	Identity  auth.IdentityResolver
	Audit     audit.Recorder
}

func NewHandler(service *agreement.Service, employees *employee.Service, identity auth.IdentityResolver, auditRec audit.Recorder) *Handler {
	return &Handler{Service: service, Employees: employees, Identity: identity, Audit: auditRec}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)
	user := middleware.RequireRole(auth.RoleUser)

	r.With(admin).Post("/{id}/agreement", h.handleUpload)
	r.With(admin).Get("/{id}/agreement", h.handleDownload)
	r.With(user).Get("/user/agreement", h.handleDownloadForUser)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.NotFound(w)
		return
	}

	file, _, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "file_too_large", "agreement exceeds upload limit", reqID)
			return
		}
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: formField, Reason: "is required"}})
		return
	}
	defer file.Close()

	emp, err := h.Service.Upload(r.Context(), id, file)
	if errors.Is(err, employee.ErrNotFound) {
		api.NotFound(w)
		return
	}
	if err != nil {
		slog.Error("agreement upload failed", "err", err, "employeeId", id, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "agreement_upload_failed", "failed to store agreement", reqID)
		return
	}

	if h.Audit != nil {
		actor := ""
		if user, ok := middleware.GetUser(r.Context()); ok {
			actor = user.Username
		}
		evt := audit.Event{
			Actor:      actor,
			Action:     audit.ActionAgreementUpload,
			EntityType: "employee",
			EntityID:   strconv.FormatInt(emp.ID, 10),
			RequestID:  reqID,
			IP:         shared.ClientIP(r),
		}
		if err := h.Audit.Record(r.Context(), evt, emp.Agreement); err != nil {
			slog.Warn("audit agreement.upload failed", "err", err)
		}
	}
	api.NoContent(w)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.NotFound(w)
		return
	}
	emp, err := h.Employees.Get(r.Context(), id)
	h.send(w, r, emp, err)
}

func (h *Handler) handleDownloadForUser(w http.ResponseWriter, r *http.Request) {
	principal, err := h.Identity.Resolve(r.Context())
	if err != nil || principal == nil {
		h.send(w, r, nil, err)
		return
	}
	emp, err := h.Employees.GetByEmail(r.Context(), principal.Email)
	h.send(w, r, emp, err)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request, emp *employee.Employee, err error) {
	if err == nil {
		var doc *agreement.Document
		doc, err = h.Service.Load(emp)
		if err == nil {
			api.Binary(w, agreement.ContentType, doc.FileName, doc.Content)
			return
		}
	}
	if errors.Is(err, employee.ErrNotFound) || errors.Is(err, agreement.ErrNoAgreement) {
		api.NotFound(w)
		return
	}
	reqID := middleware.GetRequestID(r.Context())
	slog.Error("agreement download failed", "err", err, "path", r.URL.Path, "requestId", reqID)
	api.Fail(w, http.StatusInternalServerError, "agreement_read_failed", "failed to read agreement", reqID)
}
