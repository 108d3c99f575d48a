package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"reservio/internal/availability/service"
	apperrors "reservio/pkg/errors"
	httputil "reservio/pkg/http"
	"reservio/pkg/logger"
)

const dateLayout = "2006-01-02"

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) GetForTable(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	day, duration, _, err := parseQuery(r)
	if err != nil {
		h.writeError(w, "GetForTable", err)
		return
	}

	slots, err := h.service.ListSlots(r.Context(), ps.ByName("id"), day, duration)
	if err != nil {
		h.writeError(w, "GetForTable", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForTable", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) GetForFloor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	day, duration, partySize, err := parseQuery(r)
	if err != nil {
		h.writeError(w, "GetForFloor", err)
		return
	}

	availability, err := h.service.ListByTable(r.Context(), day, partySize, duration)
	if err != nil {
		h.writeError(w, "GetForFloor", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForFloor", "operation", "WriteSuccess", "error", err)
	}
}

func parseQuery(r *http.Request) (day time.Time, duration, partySize int, err error) {
	query := r.URL.Query()

	day = time.Now().UTC()
	if s := query.Get("date"); s != "" {
		day, err = time.Parse(dateLayout, s)
		if err != nil {
			return time.Time{}, 0, 0, apperrors.InvalidInput(fmt.Sprintf(
				"date %q must use the %s layout", s, dateLayout))
		}
	}

	if s := query.Get("duration_minutes"); s != "" {
		duration, err = strconv.Atoi(s)
		if err != nil {
			return time.Time{}, 0, 0, apperrors.InvalidInput(fmt.Sprintf("invalid duration_minutes parameter: %s", s))
		}
	}

	if s := query.Get("party_size"); s != "" {
		partySize, err = strconv.Atoi(s)
		if err != nil {
			return time.Time{}, 0, 0, apperrors.InvalidInput(fmt.Sprintf("invalid party_size parameter: %s", s))
		}
	}

	return day, duration, partySize, nil
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/by-table", h.GetForFloor)
	router.GET("/api/v1/availability/tables/:id", h.GetForTable)
}
