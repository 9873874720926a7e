package payouthandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marina/internal/domain/agreement"
	"marina/internal/domain/audit"
	"marina/internal/domain/auth"
	"marina/internal/domain/employee"
	"marina/internal/domain/payout"
	"marina/internal/transport/http/api"
	"marina/internal/transport/http/middleware"
	"marina/internal/transport/http/shared"
)

const batchEndpoint = "employees.payouts"

type Handler struct {
	Service     *payout.Service
	Employees   *employee.Service
	Identity    auth.IdentityResolver
	Audit       audit.Recorder
	Idempotency middleware.IdempotencyStore
}

func NewHandler(service *payout.Service, employees *employee.Service, identity auth.IdentityResolver, auditRec audit.Recorder, idem middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Employees: employees, Identity: identity, Audit: auditRec, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)
	user := middleware.RequireRole(auth.RoleUser)

	r.With(admin, middleware.Idempotent(h.Idempotency, batchEndpoint)).Post("/payouts", h.handleRecord)
	r.With(admin).Get("/payouts/{payoutId}/receipt", h.handleReceipt)
	r.With(admin).Get("/{id}/payouts", h.handleListForEmployee)
	r.With(user).Get("/user/payouts", h.handleListForUser)
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var inputs []payout.Input
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	for i, in := range inputs {
		v.Struct(fmt.Sprintf("[%d].", i), in)
	}
	if v.Reject(w, reqID) {
		return
	}

	recorded, err := h.Service.Record(r.Context(), inputs)
	if errors.Is(err, payout.ErrUnknownEmployee) {
		api.Fail(w, http.StatusBadRequest, "unknown_employee", err.Error(), reqID)
		return
	}
	if err != nil {
		slog.Error("payout batch failed", "err", err, "count", len(inputs), "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "payout_failed", "failed to record payouts", reqID)
		return
	}

	if len(recorded) > 0 && h.Audit != nil {
		evt := audit.Event{
			Actor:      actor(r),
			Action:     audit.ActionPayoutBatchRecord,
			EntityType: "monthly_payout",
			EntityID:   strconv.FormatInt(recorded[0].ID, 10),
			RequestID:  reqID,
			IP:         shared.ClientIP(r),
		}
		if err := h.Audit.Record(r.Context(), evt, recorded); err != nil {
			slog.Warn("audit payout.batch failed", "err", err)
		}
	}
	api.NoContent(w)
}

func (h *Handler) handleListForEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.NotFound(w)
		return
	}
	emp, err := h.Employees.Get(r.Context(), id)
	h.writePayouts(w, r, emp, err)
}

func (h *Handler) handleListForUser(w http.ResponseWriter, r *http.Request) {
	principal, err := h.Identity.Resolve(r.Context())
	if err != nil || principal == nil {
		h.writePayouts(w, r, nil, err)
		return
	}
	emp, err := h.Employees.GetByEmail(r.Context(), principal.Email)
	h.writePayouts(w, r, emp, err)
}

func (h *Handler) writePayouts(w http.ResponseWriter, r *http.Request, emp *employee.Employee, err error) {
	reqID := middleware.GetRequestID(r.Context())
	if err != nil {
		slog.Error("payout lookup failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "payout_failed", "failed to load payouts", reqID)
		return
	}
	if emp == nil {
		api.NotFound(w)
		return
	}
	payouts, err := h.Service.ForEmployee(r.Context(), emp.ID)
	if err != nil {
		slog.Error("payout list failed", "err", err, "employeeId", emp.ID, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "payout_failed", "failed to load payouts", reqID)
		return
	}
	api.Success(w, payouts)
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "payoutId")
	if !ok {
		api.NotFound(w)
		return
	}
	p, pdf, err := h.Service.Receipt(r.Context(), id)
	if errors.Is(err, payout.ErrNotFound) {
		api.NotFound(w)
		return
	}
	if err != nil {
		reqID := middleware.GetRequestID(r.Context())
		slog.Error("payout receipt failed", "err", err, "payoutId", id, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "receipt_failed", "failed to render receipt", reqID)
		return
	}
	api.Binary(w, agreement.ContentType, payout.ReceiptFileName(*p), pdf)
}

func actor(r *http.Request) string {
	if user, ok := middleware.GetUser(r.Context()); ok {
		return user.Username
	}
	return ""
}
