package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-tracker/internal/api/middleware"
	"github.com/dvloznov/receipt-tracker/internal/blobstore"
	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/store"
)

// maxCaptureSize bounds uploaded receipt images and voice clips.
const maxCaptureSize = 20 << 20 // 20 MiB

// AssistantHandler handles the AI-backed endpoints: extraction from receipt
// images and voice clips, spending questions, and cash-leak analysis.
type AssistantHandler struct {
	extractor Extractor
	store     store.RecordStore
	blobs     BlobKeeper
	busy      *busyGuard
	log       zerolog.Logger
}

// writeAssistantUnavailable rejects AI-backed requests when no extraction
// client is configured. The rest of the service keeps working.
func writeAssistantUnavailable(w http.ResponseWriter) {
	middleware.WriteError(w, http.StatusServiceUnavailable, "AI assistant is not configured")
}

// NewAssistantHandler creates a new assistant handler. ex may be nil when no
// model credentials are configured; the AI endpoints then respond 503 while
// record keeping stays available. blobs may be nil, in which case original
// captures are not retained.
func NewAssistantHandler(ex Extractor, s store.RecordStore, blobs BlobKeeper, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		extractor: ex,
		store:     s,
		blobs:     blobs,
		busy:      newBusyGuard(),
		log:       log,
	}
}

// ExtractReceipt handles POST /api/extract/receipt. The multipart "file"
// part carries the receipt image; the response is a candidate record for
// the client to confirm, never a saved one.
func (h *AssistantHandler) ExtractReceipt(w http.ResponseWriter, r *http.Request) {
	h.extractCapture(w, r, false)
}

// ExtractVoice handles POST /api/extract/voice. The multipart "file" part
// carries the audio clip; an optional "date" field supplies the caller's
// local today for relative phrases like "yesterday".
func (h *AssistantHandler) ExtractVoice(w http.ResponseWriter, r *http.Request) {
	h.extractCapture(w, r, true)
}

func (h *AssistantHandler) extractCapture(w http.ResponseWriter, r *http.Request, voice bool) {
	if h.extractor == nil {
		writeAssistantUnavailable(w)
		return
	}
	userID := middleware.UserID(r)
	if !h.busy.acquire(userID) {
		middleware.WriteError(w, http.StatusConflict, "Still working on the previous capture")
		return
	}
	defer h.busy.release(userID)

	blob, filename, contentType, ok := h.readCapture(w, r)
	if !ok {
		return
	}

	if h.blobs != nil {
		// Retention is best-effort: extraction proceeds even if the
		// original capture cannot be stored.
		uri, err := h.blobs.Put(r.Context(), userID, filename, contentType, blob)
		if err != nil {
			h.log.Warn().Err(err).Str("filename", filename).Msg("Failed to retain capture")
		} else {
			h.log.Debug().Str("object", blobstore.Filename(uri)).Msg("Retained capture")
		}
	}

	var (
		cand domain.CandidateRecord
		err  error
	)
	if voice {
		today := callerToday(r)
		cand, err = h.extractor.FromVoice(r.Context(), blob, contentType, today)
	} else {
		cand, err = h.extractor.FromImage(r.Context(), blob, contentType)
	}
	if err != nil {
		h.log.Error().Err(err).Bool("voice", voice).Msg("Extraction failed")
		middleware.WriteError(w, http.StatusBadGateway, "Couldn't read that, try again")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"candidate": cand})
}

// readCapture pulls the uploaded blob out of the multipart form and replies
// on failure. The boolean reports whether the caller should continue.
func (h *AssistantHandler) readCapture(w http.ResponseWriter, r *http.Request) ([]byte, string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCaptureSize)
	if err := r.ParseMultipartForm(maxCaptureSize); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid upload")
		return nil, "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Missing file")
		return nil, "", "", false
	}
	defer file.Close()

	blob, err := io.ReadAll(file)
	if err != nil || len(blob) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Empty upload")
		return nil, "", "", false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return blob, header.Filename, contentType, true
}

// callerToday resolves the reference date for relative spoken dates. The
// client's "date" form field wins so "yesterday" follows the caller's clock,
// not the server's.
func callerToday(r *http.Request) civil.Date {
	if raw := strings.TrimSpace(r.FormValue("date")); raw != "" {
		if d, err := civil.ParseDate(raw); err == nil {
			return d
		}
	}
	return civil.DateOf(time.Now())
}

// Ask handles POST /api/assistant/ask. The answer is grounded on the user's
// complete record set at the time of the question.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		writeAssistantUnavailable(w)
		return
	}
	userID := middleware.UserID(r)

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Missing question")
		return
	}

	if !h.busy.acquire(userID) {
		middleware.WriteError(w, http.StatusConflict, "Still working on the previous question")
		return
	}
	defer h.busy.release(userID)

	records, err := h.store.List(r.Context(), userID)
	if err != nil {
		writeStoreError(w, h.log, err, "load records")
		return
	}

	answer, err := h.extractor.Answer(r.Context(), records, req.Question)
	if err != nil {
		h.log.Error().Err(err).Msg("Assistant answer failed")
		middleware.WriteError(w, http.StatusBadGateway, "Couldn't answer that, try again")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// FindLeaks handles POST /api/assistant/leaks
func (h *AssistantHandler) FindLeaks(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		writeAssistantUnavailable(w)
		return
	}
	userID := middleware.UserID(r)

	if !h.busy.acquire(userID) {
		middleware.WriteError(w, http.StatusConflict, "Still working on the previous request")
		return
	}
	defer h.busy.release(userID)

	records, err := h.store.List(r.Context(), userID)
	if err != nil {
		writeStoreError(w, h.log, err, "load records")
		return
	}

	tips, err := h.extractor.FindLeaks(r.Context(), records)
	if err != nil {
		h.log.Error().Err(err).Msg("Leak analysis failed")
		middleware.WriteError(w, http.StatusBadGateway, "Couldn't analyze spending, try again")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"tips": tips})
}
