// Package syncbridge pushes the full record set to the legacy spreadsheet
// webhook. The integration is push-only and unverifiable: the endpoint does
// not support reading a result, so the response body is discarded and no
// partial retry exists. A future per-user OAuth spreadsheet integration will
// replace this bridge under the same contract.
package syncbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// ErrPushInFlight is returned when a push is requested while another one is
// still running. Pushes are never run concurrently.
var ErrPushInFlight = errors.New("sync already in flight")

// State is the observable bridge state the UI renders.
type State string

const (
	StateIdle      State = "idle"
	StateInFlight  State = "in_flight"
	StateCompleted State = "completed"
)

// Bridge serializes pushes to the webhook and tracks the UI state machine:
// idle → in-flight → completed → (after the revert delay) idle. A failed
// push reverts to idle immediately.
type Bridge struct {
	url         string
	client      *http.Client
	revertDelay time.Duration
	log         zerolog.Logger

	mu    sync.Mutex
	state State
}

// New creates a bridge for the given webhook URL. revertDelay controls how
// long the completed state lingers before reverting to idle.
func New(url string, revertDelay time.Duration, timeout time.Duration, log zerolog.Logger) *Bridge {
	return &Bridge{
		url:         url,
		client:      &http.Client{Timeout: timeout},
		revertDelay: revertDelay,
		log:         log,
		state:       StateIdle,
	}
}

// Status returns the current observable state.
func (b *Bridge) Status() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Push posts the complete current record set as {"records": [...]} and
// ignores the response body. Any transport error or non-2xx status is total
// failure; there is no partial-success reporting.
func (b *Bridge) Push(ctx context.Context, records []domain.SavedRecord) error {
	if b.url == "" {
		return fmt.Errorf("syncbridge: no webhook URL configured")
	}

	b.mu.Lock()
	if b.state == StateInFlight {
		b.mu.Unlock()
		return ErrPushInFlight
	}
	b.state = StateInFlight
	b.mu.Unlock()

	err := b.push(ctx, records)
	if err != nil {
		b.setState(StateIdle)
		return err
	}

	b.setState(StateCompleted)
	time.AfterFunc(b.revertDelay, func() {
		b.mu.Lock()
		if b.state == StateCompleted {
			b.state = StateIdle
		}
		b.mu.Unlock()
	})

	b.log.Info().Int("records", len(records)).Msg("Pushed records to spreadsheet webhook")
	return nil
}

func (b *Bridge) push(ctx context.Context, records []domain.SavedRecord) error {
	if records == nil {
		records = []domain.SavedRecord{}
	}
	body, err := json.Marshal(map[string]interface{}{"records": records})
	if err != nil {
		return fmt.Errorf("syncbridge: marshal records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("syncbridge: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("syncbridge: post records: %w", err)
	}
	defer resp.Body.Close()

	// Response body ignored by contract; drain it so the connection can be
	// reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("syncbridge: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}
