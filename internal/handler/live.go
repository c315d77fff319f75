package handler

import (
	"log/slog"
	"net/http"
	"time"

	"chatterhub/internal/handler/sse"
	"chatterhub/internal/httputil"
	"chatterhub/internal/live"
	"chatterhub/internal/service/livequery"
)

// LiveHandler streams live query results over Server-Sent Events
type LiveHandler struct {
	engine  *live.Engine
	catalog *livequery.Catalog
	config  *sse.Config
	logger  *slog.Logger
}

// NewLiveHandler creates a new live query handler
func NewLiveHandler(engine *live.Engine, catalog *livequery.Catalog, config *sse.Config, logger *slog.Logger) *LiveHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &LiveHandler{
		engine:  engine,
		catalog: catalog,
		config:  config,
		logger:  logger,
	}
}

// ListQueries returns the names of the available live queries
// GET /api/live
func (h *LiveHandler) ListQueries(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"queries": h.catalog.Names()})
}

// Stream sends a "snapshot" event with the query result, then another each
// time the result changes, until the client disconnects
// GET /api/live/{query}
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("query")

	sub, err := h.catalog.Subscribe(r.Context(), h.engine, name, r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}
	defer sub.Close()

	stream, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("live stream opened", "query", sub.Name(), "client_ip", r.RemoteAddr)
	defer h.logger.Info("live stream closed", "query", sub.Name())

	if err := stream.WriteRetry(h.config.RetryInterval.Milliseconds()); err != nil {
		return
	}

	keepAlive := time.NewTicker(h.config.KeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case v, ok := <-sub.Updates():
			if !ok {
				// Engine shut down
				return
			}
			if err := stream.WriteEvent("snapshot", v); err != nil {
				h.logger.Warn("live stream write failed", "query", sub.Name(), "error", err)
				return
			}

		case <-keepAlive.C:
			if err := stream.WriteKeepAlive(); err != nil {
				h.logger.Warn("keep-alive write failed, stopping", "query", sub.Name(), "error", err)
				return
			}
		}
	}
}
