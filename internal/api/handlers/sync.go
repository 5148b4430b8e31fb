package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-tracker/internal/api/middleware"
	"github.com/dvloznov/receipt-tracker/internal/store"
	"github.com/dvloznov/receipt-tracker/internal/syncbridge"
)

// SyncHandler pushes the user's record set to the configured spreadsheet
// webhook. The push is one-way; nothing is read back from the sheet.
type SyncHandler struct {
	bridge *syncbridge.Bridge
	store  store.RecordStore
	log    zerolog.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(b *syncbridge.Bridge, s store.RecordStore, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{bridge: b, store: s, log: log}
}

// Push handles POST /api/sync
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context(), middleware.UserID(r))
	if err != nil {
		writeStoreError(w, h.log, err, "load records")
		return
	}

	if err := h.bridge.Push(r.Context(), records); err != nil {
		if errors.Is(err, syncbridge.ErrPushInFlight) {
			middleware.WriteError(w, http.StatusConflict, "Sync already in progress")
			return
		}
		h.log.Error().Err(err).Msg("Spreadsheet sync failed")
		middleware.WriteError(w, http.StatusBadGateway, "Sync failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"state": h.bridge.Status(),
		"count": len(records),
	})
}

// Status handles GET /api/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"state": h.bridge.Status(),
	})
}
