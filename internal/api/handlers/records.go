package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-tracker/internal/api/middleware"
	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/store"
)

var upgrader = websocket.Upgrader{
	// Cross-origin is already handled by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RecordsHandler handles saved-record CRUD and the live snapshot feed.
type RecordsHandler struct {
	store store.RecordStore
	log   zerolog.Logger
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(s store.RecordStore, log zerolog.Logger) *RecordsHandler {
	return &RecordsHandler{store: s, log: log}
}

// ListRecords handles GET /api/records
func (h *RecordsHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context(), middleware.UserID(r))
	if err != nil {
		writeStoreError(w, h.log, err, "list records")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// CreateRecord handles POST /api/records. The body is a candidate record;
// partial candidates are rejected with a validation error, never completed
// with defaults here.
func (h *RecordsHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var cand domain.CandidateRecord
	if err := json.NewDecoder(r.Body).Decode(&cand); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := cand.Validate()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Incomplete data")
		return
	}

	id, err := h.store.Create(r.Context(), middleware.UserID(r), rec)
	if err != nil {
		writeStoreError(w, h.log, err, "save record")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateRecord handles PUT /api/records/{id}. Edit flows re-supply all four
// fields; the stored document is overwritten whole.
func (h *RecordsHandler) UpdateRecord(w http.ResponseWriter, r *http.Request, id string) {
	var cand domain.CandidateRecord
	if err := json.NewDecoder(r.Body).Decode(&cand); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := cand.Validate()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Incomplete data")
		return
	}

	if err := h.store.Update(r.Context(), middleware.UserID(r), id, rec); err != nil {
		writeStoreError(w, h.log, err, "update record")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

// DeleteRecord handles DELETE /api/records/{id}
func (h *RecordsHandler) DeleteRecord(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Delete(r.Context(), middleware.UserID(r), id); err != nil {
		writeStoreError(w, h.log, err, "delete record")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

// WatchRecords handles GET /api/records/watch. It upgrades to a websocket
// and writes the complete record set on subscribe and after every store
// mutation. Each frame is a full replacement; clients must not merge.
func (h *RecordsHandler) WatchRecords(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	// The store may notify from concurrent mutating goroutines, and a
	// gorilla connection supports only one writer at a time.
	var writeMu sync.Mutex

	stop, err := h.store.Subscribe(r.Context(), userID, func(records []domain.SavedRecord) {
		writeMu.Lock()
		defer writeMu.Unlock()
		// A dead connection surfaces on the read loop below.
		if err := conn.WriteJSON(map[string]interface{}{
			"records": records,
			"count":   len(records),
		}); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			h.log.Debug().Err(err).Msg("Websocket write failed")
		}
	})
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"error": "Failed to subscribe"})
		return
	}
	defer stop()

	// Block until the client goes away; reads only consume control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
