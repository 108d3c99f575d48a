package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"reservio/internal/reservations/service"
	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	httputil "reservio/pkg/http"
	"reservio/pkg/interval"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	cfg     *config.Config
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, cfg *config.Config) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

// createReservationRequest carries timestamps as strings because callers may
// send either an RFC 3339 instant or a naive venue-local wall time. Naive
// times are resolved against the configured venue timezone.
type createReservationRequest struct {
	TableID        string `json:"table_id"`
	StartAt        string `json:"start_at"`
	EndAt          string `json:"end_at"`
	CustomerName   string `json:"customer_name"`
	IdempotencyKey string `json:"idempotency_key"`
}

const wallClockLayout = "2006-01-02T15:04"

func (h *ReservationHandler) parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	wall, err := time.Parse(wallClockLayout, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf(
			"time %q must be RFC 3339 or %s", value, wallClockLayout))
	}
	resolved, err := interval.NormalizeToUTC(wall, h.cfg.Timezone)
	if err != nil {
		return time.Time{}, apperrors.Internal("Failed to resolve venue timezone", err)
	}
	return resolved, nil
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	startAt, err := h.parseTime(req.StartAt)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	endAt, err := h.parseTime(req.EndAt)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	requesterID, _ := httputil.ExtractRequester(r)
	reservation := &model.Reservation{
		TableID:        req.TableID,
		StartAt:        startAt,
		EndAt:          endAt,
		CustomerName:   req.CustomerName,
		RequesterID:    requesterID,
		IdempotencyKey: req.IdempotencyKey,
	}

	created, err := h.service.Create(r.Context(), reservation)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	requesterID, privileged := httputil.ExtractRequester(r)
	reservations, total, err := h.service.List(r.Context(), requesterID, privileged, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

// Cancel is the soft delete: the document survives with status cancelled.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID, privileged := httputil.ExtractRequester(r)

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), requesterID, privileged); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) HardDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, privileged := httputil.ExtractRequester(r)

	if err := h.service.HardDelete(r.Context(), ps.ByName("id"), privileged); err != nil {
		h.writeError(w, "HardDelete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.List)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.DELETE("/api/v1/reservations/id/:id", h.Cancel)
	router.DELETE("/api/v1/reservations/id/:id/hard", h.HardDelete)
}
