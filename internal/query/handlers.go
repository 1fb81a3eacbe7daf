package query

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"TxLedger/internal/observability"
)

const defaultLimit = 100
const maxLimit = 1000

// Handler exposes the query service over HTTP/JSON.
type Handler struct {
	service *QueryService
	metrics *observability.Metrics
}

func NewHandler(service *QueryService, metrics *observability.Metrics) *Handler {
	return &Handler{service: service, metrics: metrics}
}

// Register installs the query routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/statements", h.listStatements)
	mux.HandleFunc("GET /v1/statements/{client}", h.getStatement)
	mux.HandleFunc("GET /v1/rejections", h.listRejections)
}

func (h *Handler) getStatement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	client64, err := strconv.ParseUint(r.PathValue("client"), 10, 16)
	if err != nil {
		h.writeError(w, "statement", http.StatusBadRequest, "invalid client id")
		return
	}

	s, err := h.service.GetStatement(r.Context(), uint16(client64))
	if errors.Is(err, ErrNotFound) {
		h.writeError(w, "statement", http.StatusNotFound, "no statement for client")
		return
	}
	if err != nil {
		h.writeError(w, "statement", http.StatusInternalServerError, "query failed")
		return
	}

	h.writeJSON(w, "statement", s, start)
}

func (h *Handler) listStatements(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, "statements", http.StatusBadRequest, err.Error())
		return
	}

	var afterClient *uint16
	if after := r.URL.Query().Get("after_client"); after != "" {
		v, err := strconv.ParseUint(after, 10, 16)
		if err != nil {
			h.writeError(w, "statements", http.StatusBadRequest, "invalid after_client")
			return
		}
		c := uint16(v)
		afterClient = &c
	}

	statements, err := h.service.ListStatements(r.Context(), afterClient, limit)
	if err != nil {
		h.writeError(w, "statements", http.StatusInternalServerError, "query failed")
		return
	}
	if statements == nil {
		statements = []StatementResponse{}
	}

	h.writeJSON(w, "statements", statements, start)
}

func (h *Handler) listRejections(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, "rejections", http.StatusBadRequest, err.Error())
		return
	}

	var client *uint16
	if c := r.URL.Query().Get("client"); c != "" {
		v, err := strconv.ParseUint(c, 10, 16)
		if err != nil {
			h.writeError(w, "rejections", http.StatusBadRequest, "invalid client")
			return
		}
		id := uint16(v)
		client = &id
	}

	var reason *string
	if rs := r.URL.Query().Get("reason"); rs != "" {
		reason = &rs
	}

	rejections, err := h.service.ListRejections(r.Context(), client, reason, limit)
	if err != nil {
		h.writeError(w, "rejections", http.StatusInternalServerError, "query failed")
		return
	}
	if rejections == nil {
		rejections = []RejectionResponse{}
	}

	h.writeJSON(w, "rejections", rejections, start)
}

func (h *Handler) writeJSON(w http.ResponseWriter, endpoint string, v interface{}, start time.Time) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
	if h.metrics != nil {
		h.metrics.QueryRequests.WithLabelValues(endpoint, "200").Inc()
		h.metrics.QueryDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, endpoint string, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
	if h.metrics != nil {
		h.metrics.QueryRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	}
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 1 {
		return 0, errors.New("invalid limit")
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, nil
}
