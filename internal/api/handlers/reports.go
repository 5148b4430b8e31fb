package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-tracker/internal/api/middleware"
	"github.com/dvloznov/receipt-tracker/internal/report"
	"github.com/dvloznov/receipt-tracker/internal/store"
)

// ReportsHandler serves period summaries and CSV exports. Both are derived
// views over the record store; nothing here is persisted.
type ReportsHandler struct {
	store store.RecordStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(s store.RecordStore, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{store: s, log: log, now: time.Now}
}

// Summary handles GET /api/summary?period=. The All selector (or an absent
// one) disables aggregation and returns the raw chronological list instead
// of category totals.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	p, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown period")
		return
	}

	records, err := h.store.List(r.Context(), middleware.UserID(r))
	if err != nil {
		writeStoreError(w, h.log, err, "load records")
		return
	}

	now := h.now()
	if p == report.All {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"period":  p.String(),
			"title":   p.Title(now),
			"records": records,
			"count":   len(records),
		})
		return
	}

	s := report.Summarize(records, p, now)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"period": p.String(),
		"title":  s.Title,
		"totals": s.Totals,
		"total":  s.Total(),
	})
}

// Export handles GET /api/export?period=. The response is a CSV attachment:
// category totals for a bounded period, the raw record list for All.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	p, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown period")
		return
	}

	records, err := h.store.List(r.Context(), middleware.UserID(r))
	if err != nil {
		writeStoreError(w, h.log, err, "load records")
		return
	}

	now := h.now()
	var body string
	if p == report.All {
		body, err = report.RecordsCSV(records)
	} else {
		body, err = report.SummaryCSV(report.Summarize(records, p, now))
	}
	if err != nil {
		h.log.Error().Err(err).Str("period", p.String()).Msg("CSV export failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.ExportFilename(p, now)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
