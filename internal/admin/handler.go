package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/clinicdesk/medibot/internal/bookings"
	"github.com/clinicdesk/medibot/pkg/logging"
)

// BookingReader exposes the reporting reads the admin surface needs.
type BookingReader interface {
	ListAll(ctx context.Context) ([]bookings.Record, error)
	QuickStats(ctx context.Context) (*bookings.Stats, error)
}

// DocumentIngestor adds clinic documents to the retrieval index.
type DocumentIngestor interface {
	AddDocuments(ctx context.Context, contents []string) error
}

// Handler serves the staff-facing reporting and ingestion endpoints.
type Handler struct {
	bookings BookingReader
	ingestor DocumentIngestor
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// StatsResponse is the admin quick-stats payload. TurnsByRoute is a
// point-in-time snapshot from the metrics registry and resets with the
// process; the booking counters come from Postgres.
type StatsResponse struct {
	Bookings     bookings.Stats   `json:"bookings"`
	TurnsByRoute map[string]int64 `json:"turns_by_route"`
}

// NewHandler creates the admin handler. A nil gatherer falls back to the
// default registry.
func NewHandler(reader BookingReader, ingestor DocumentIngestor, gatherer prometheus.Gatherer, logger *logging.Logger) *Handler {
	if reader == nil {
		panic("admin: booking reader required")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{bookings: reader, ingestor: ingestor, gatherer: gatherer, logger: logger}
}

// ListBookings returns every booking, newest first.
// GET /admin/bookings
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	records, err := h.bookings.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if records == nil {
		records = []bookings.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": records,
		"count":    len(records),
	})
}

// GetStats returns the booking counters plus a turn-count snapshot.
// GET /admin/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bookings.QuickStats(r.Context())
	if err != nil {
		h.logger.Error("failed to query booking stats", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Bookings:     *stats,
		TurnsByRoute: snapshotTurnCounts(h.gatherer),
	})
}

// IngestDocuments chunks and indexes the posted clinic documents.
// POST /admin/documents
func (h *Handler) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	if h.ingestor == nil {
		writeError(w, http.StatusServiceUnavailable, "document ingestion disabled (no embedder configured)")
		return
	}

	var req struct {
		Documents []string `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	docs := make([]string, 0, len(req.Documents))
	for _, doc := range req.Documents {
		if strings.TrimSpace(doc) != "" {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		writeError(w, http.StatusBadRequest, "documents are required")
		return
	}

	if err := h.ingestor.AddDocuments(r.Context(), docs); err != nil {
		h.logger.Error("document ingestion failed", "count", len(docs), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to index documents")
		return
	}
	h.logger.Info("documents ingested", "count", len(docs))
	writeJSON(w, http.StatusOK, map[string]any{"status": "ingested", "count": len(docs)})
}

// snapshotTurnCounts aggregates medibot_chat_turns_total by route from the
// metrics registry.
func snapshotTurnCounts(gatherer prometheus.Gatherer) map[string]int64 {
	out := map[string]int64{}
	mfs, err := gatherer.Gather()
	if err != nil {
		return out
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == "medibot_chat_turns_total" {
			family = mf
			break
		}
	}
	if family == nil {
		return out
	}

	for _, metric := range family.Metric {
		if metric == nil || metric.GetCounter() == nil {
			continue
		}
		route := ""
		for _, label := range metric.Label {
			if label.GetName() == "route" {
				route = label.GetValue()
				break
			}
		}
		if route == "" {
			continue
		}
		out[route] += int64(metric.GetCounter().GetValue())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
