package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"reservio/pkg/client"
	httputil "reservio/pkg/http"
	"reservio/pkg/logger"
)

const probeTimeout = 2 * time.Second

type HealthHandler struct {
	clients *client.Client
	log     *logger.Logger
}

func NewHealthHandler(clients *client.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		clients: clients,
		log:     log,
	}
}

// Liveness answers as long as the process serves requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		h.log.Error("failed to write health response", "error", err)
	}
}

// Readiness pings both stores; a reservation service that cannot reach the
// lease store must not receive traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	checks := map[string]string{"mongo": "ok", "redis": "ok"}
	healthy := true

	if h.clients.Mongo == nil {
		checks["mongo"] = "not configured"
		healthy = false
	} else if err := h.clients.Mongo.Ping(ctx, nil); err != nil {
		checks["mongo"] = err.Error()
		healthy = false
	}

	if h.clients.Redis == nil {
		checks["redis"] = "not configured"
		healthy = false
	} else if err := h.clients.Redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	if err := httputil.WriteJSON(w, status, checks); err != nil {
		h.log.Error("failed to write readiness response", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Liveness)
	router.GET("/ready", h.Readiness)
}
