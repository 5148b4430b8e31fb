// Package handlers implements the HTTP surface of the receipt tracker. Every
// remote-call failure is converted here into a user-facing message plus a
// reset of in-flight state; nothing propagates far enough to crash the
// service, and the client is never left without an actionable response.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-tracker/internal/api/middleware"
	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/store"
)

// Extractor is the AI extraction client surface the handlers depend on.
// This interface enables mocking the remote model in tests.
type Extractor interface {
	FromImage(ctx context.Context, blob []byte, mimeType string) (domain.CandidateRecord, error)
	FromVoice(ctx context.Context, blob []byte, mimeType string, today civil.Date) (domain.CandidateRecord, error)
	Answer(ctx context.Context, records []domain.SavedRecord, question string) (string, error)
	FindLeaks(ctx context.Context, records []domain.SavedRecord) (string, error)
}

// BlobKeeper retains original capture blobs. Retention is best-effort: a
// failed upload is logged, never surfaced to the user mid-extraction.
type BlobKeeper interface {
	Put(ctx context.Context, userID, filename, contentType string, data []byte) (string, error)
}

// CategoriesHandler serves the fixed category taxonomy so entry forms render
// the same single source of truth the extraction validator uses.
type CategoriesHandler struct{}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": domain.Categories,
		"fallback":   domain.CategoryOther,
	})
}

// writeStoreError maps record-store failures onto the API error taxonomy.
// Store errors stay distinguishable from extraction errors.
func writeStoreError(w http.ResponseWriter, log zerolog.Logger, err error, action string) {
	switch {
	case errors.Is(err, store.ErrUnauthenticated):
		middleware.WriteError(w, http.StatusUnauthorized, "Sign in to manage your expenses")
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Record not found")
	default:
		log.Error().Err(err).Msg("Record store operation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
