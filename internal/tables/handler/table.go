package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"reservio/internal/tables/service"
	apperrors "reservio/pkg/errors"
	httputil "reservio/pkg/http"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type TableHandler struct {
	service service.TableService
	log     *logger.Logger
}

func NewTableHandler(service service.TableService, log *logger.Logger) *TableHandler {
	return &TableHandler{
		service: service,
		log:     log,
	}
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var table model.Table
	if err := json.NewDecoder(r.Body).Decode(&table); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	_, privileged := httputil.ExtractRequester(r)
	created, err := h.service.Create(r.Context(), &table, privileged)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *TableHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	table, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, table); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s := r.URL.Query().Get("party_size"); s != "" {
		partySize, err := strconv.Atoi(s)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput(fmt.Sprintf("invalid party_size parameter: %s", s)))
			return
		}

		tables, err := h.service.GetByMinSeats(r.Context(), partySize)
		if err != nil {
			h.writeError(w, "List", err)
			return
		}
		if err := httputil.WriteSuccess(w, tables); err != nil {
			h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	tables, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, tables, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.TableUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	_, privileged := httputil.ExtractRequester(r)
	if err := h.service.Update(r.Context(), ps.ByName("id"), &update, privileged); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, privileged := httputil.ExtractRequester(r)

	if err := h.service.Delete(r.Context(), ps.ByName("id"), privileged); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TableHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *TableHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/tables", h.Create)
	router.GET("/api/v1/tables", h.List)
	router.GET("/api/v1/tables/id/:id", h.GetByID)
	router.PATCH("/api/v1/tables/id/:id", h.Update)
	router.DELETE("/api/v1/tables/id/:id", h.Delete)
}
