package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/obsidianstack/hostbridge/pkg/types"
	"github.com/obsidianstack/hostbridge/server/internal/app"
	"github.com/obsidianstack/hostbridge/server/internal/dispatch"
	"github.com/obsidianstack/hostbridge/server/internal/metrics"
)

// maxBodyBytes caps an invoke request body.
const maxBodyBytes = 1 << 20

// ClientCounter reports connected WebSocket clients for the health endpoint.
type ClientCounter interface {
	Count() int
}

// Handler is the HTTP handler for /api/v1/* and /metrics.
type Handler struct {
	state   *app.State
	clients ClientCounter
	mux     *http.ServeMux
}

// New creates a Handler dispatching against st and registers all routes.
// clients may be nil.
func New(st *app.State, clients ClientCounter) http.Handler {
	h := &Handler{state: st, clients: clients, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/invoke", h.invoke)
	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/metrics", h.metrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// invoke serves POST /api/v1/invoke.
func (h *Handler) invoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req types.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		slog.Debug("api: undecodable invoke body", "remote", r.RemoteAddr, "err", err)
		jsonResp(w, http.StatusBadRequest, types.Fail("", types.CodeInvalidRequest, types.MsgMalformed))
		return
	}

	jsonResp(w, http.StatusOK, dispatch.Dispatch(r.Context(), h.state, &req))
}

// health serves GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats := h.state.StoreStats()
	resp := HealthResponse{
		Status:         "ok",
		StoreKeys:      stats.Keys,
		StoreCapacity:  stats.Capacity,
		StoreEvictions: stats.Evictions,
	}
	if h.clients != nil {
		resp.WSClients = h.clients.Count()
	}
	jsonResp(w, http.StatusOK, resp)
}

// metrics serves GET /metrics.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.state.Metrics == nil {
		jsonErr(w, http.StatusNotFound, "metrics disabled")
		return
	}

	w.Header().Set("Content-Type", metrics.ContentType)
	if err := h.state.Metrics.WriteText(w, h.state.StoreStats()); err != nil {
		slog.Warn("api: write metrics failed", "err", err)
	}
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
