package telecall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// AutomationState is the client's view of the backend-driven autonomous
// calling process.
type AutomationState struct {
	Online      bool
	Doctor      string
	PhoneNumber string
}

type automationStatusResponse struct {
	CallStatus  bool   `json:"call_status"`
	DoctorName  string `json:"doctor_name"`
	PhoneNumber string `json:"phone_number"`
}

type automationToggleRequest struct {
	// Status carries the current (pre-toggle) state; the backend infers
	// the requested transition from it.
	Status bool `json:"status"`
}

type automationEvent struct {
	Doctor      string `json:"doctor"`
	PhoneNumber string `json:"phone_number"`
}

// AutomationMonitor tracks the backend's autonomous calling process over
// its own status stream, independent of any call placed from this client.
//
// The monitor never trusts a stale channel: when the stream drops, the
// local state is forced offline until the next successful status query.
// The stream is redialed under exponential backoff for as long as the
// monitor is running.
type AutomationMonitor struct {
	client *Client
	logger *slog.Logger

	// OnCall, when set before Start, is invoked for every inbound stream
	// event. The dashboard uses it to refresh the call log, since an event
	// means an autonomous call just began or concluded.
	OnCall func(AutomationState)

	mu      sync.Mutex
	state   AutomationState
	running bool
	conn    *websocket.Conn

	cancel context.CancelFunc
	done   chan struct{}
}

func newAutomationMonitor(c *Client) *AutomationMonitor {
	return &AutomationMonitor{
		client: c,
		logger: c.logger.With("monitor_id", uuid.NewString()),
	}
}

// State returns the current automation state.
func (m *AutomationMonitor) State() AutomationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start queries the current automation status once, then keeps the status
// stream open in the background until Stop or ctx cancellation. Calling
// Start on a running monitor is an error.
//
// The teardown handles are published before any I/O so a Stop racing the
// initial status query cancels it instead of no-opping.
func (m *AutomationMonitor) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		cancel()
		return NewInvalidRequestError("automation monitor already started")
	}
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	if err := m.refreshStatus(runCtx); err != nil {
		// Degraded start: the stream loop will re-query on connect.
		m.logger.Warn("initial automation status query failed", "error", err)
	}

	go m.run(runCtx)
	return nil
}

// Stop tears the monitor down, closing the stream synchronously.
func (m *AutomationMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	conn := m.conn
	m.running = false
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	if done != nil {
		<-done
	}
}

// Toggle requests the opposite of the current automation state. The
// request body carries the pre-toggle state, per the backend contract.
// Local state flips only after the backend confirms; on any failure it is
// left unchanged. A 404 while turning off from online is the distinguished
// refusal ErrAutomationBusy.
func (m *AutomationMonitor) Toggle(ctx context.Context) (bool, error) {
	m.mu.Lock()
	current := m.state.Online
	m.mu.Unlock()

	err := m.client.postJSON(ctx, "/handle_automation", automationToggleRequest{Status: current}, nil)
	if err != nil {
		var apiErr *Error
		if current && errors.As(err, &apiErr) && apiErr.Type == ErrNotFound {
			m.logger.Warn("automation stop refused, call in progress")
			return current, ErrAutomationBusy
		}
		return current, fmt.Errorf("toggle automation: %w", err)
	}

	m.mu.Lock()
	m.state.Online = !current
	next := m.state.Online
	m.mu.Unlock()
	m.logger.Info("automation toggled", "online", next)
	return next, nil
}

// refreshStatus re-queries the backend's authoritative automation status.
func (m *AutomationMonitor) refreshStatus(ctx context.Context) error {
	var resp automationStatusResponse
	if err := m.client.postJSON(ctx, "/get_current_call_status", struct{}{}, &resp); err != nil {
		return err
	}
	m.mu.Lock()
	m.state = AutomationState{
		Online:      resp.CallStatus,
		Doctor:      resp.DoctorName,
		PhoneNumber: resp.PhoneNumber,
	}
	m.mu.Unlock()
	return nil
}

// setOffline forces the local state offline after stream loss. The backend
// may well still be running calls, but without a channel of truth the
// client must not claim so.
func (m *AutomationMonitor) setOffline() {
	m.mu.Lock()
	m.state.Online = false
	m.mu.Unlock()
}

func (m *AutomationMonitor) run(ctx context.Context) {
	defer close(m.done)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0

	for {
		if ctx.Err() != nil {
			return
		}

		connected, err := m.streamOnce(ctx)
		if err != nil && ctx.Err() == nil {
			m.logger.Warn("automation stream lost", "error", err)
		}
		m.setOffline()
		if connected {
			policy.Reset()
		}

		next := policy.NextBackOff()
		select {
		case <-ctx.Done():
			return
		case <-time.After(next):
		}
	}
}

// streamOnce dials the automation stream and consumes events until the
// connection drops or ctx is canceled. The returned bool reports whether a
// connection was established at all, so the caller can reset its backoff.
func (m *AutomationMonitor) streamOnce(ctx context.Context) (bool, error) {
	wsURL, err := m.client.wsEndpoint("/automation_ws")
	if err != nil {
		return false, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	conn, _, err := m.client.dialer.DialContext(dialCtx, wsURL, nil)
	cancel()
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
	defer func() {
		_ = conn.Close()
		m.mu.Lock()
		m.conn = nil
		m.mu.Unlock()
	}()

	m.logger.Info("automation stream connected")

	// The stream only pushes deltas; re-sync the authoritative state on
	// every (re)connect.
	if err := m.refreshStatus(ctx); err != nil {
		m.logger.Warn("automation status re-query failed", "error", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}

		var event automationEvent
		if err := json.Unmarshal(data, &event); err != nil {
			m.logger.Warn("discarding malformed automation event", "error", err)
			continue
		}

		m.mu.Lock()
		m.state = AutomationState{
			Online:      true,
			Doctor:      event.Doctor,
			PhoneNumber: event.PhoneNumber,
		}
		snapshot := m.state
		onCall := m.OnCall
		m.mu.Unlock()

		m.logger.Info("autonomous call event", "doctor", event.Doctor, "phone_number", event.PhoneNumber)
		if onCall != nil {
			onCall(snapshot)
		}
	}
}
