package telecall

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/samodrei/telecaller/pkg/telecall/status"
)

const closeGracePeriod = 2 * time.Second

// AIModel selects the voice persona for an outbound call.
type AIModel string

const (
	AIModelZach   AIModel = "Zach"
	AIModelSophia AIModel = "Sophia"
)

func (m AIModel) valid() bool {
	return m == AIModelZach || m == AIModelSophia
}

// CallRequest describes one operator-placed outbound call.
type CallRequest struct {
	Name        string
	PhoneNumber string
	AIModel     AIModel
}

type makeCallRequest struct {
	Name              string `json:"name"`
	PhoneNumberToCall string `json:"phone_number_to_call"`
	AIModel           string `json:"ai_model"`
}

type statusFrame struct {
	Status string `json:"status"`
}

// CallSession tracks one operator-placed call through its lifecycle. The
// session owns its status stream connection: it is opened by StartCall and
// guaranteed released when a terminal state is reached, Close is called,
// or the stream drops.
//
// Transitions are monotonic toward a terminal state. Frames that arrive
// after termination (late or duplicate delivery) are ignored.
type CallSession struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	states chan status.State
	done   chan struct{}

	closeOnce sync.Once
	closed    atomic.Bool

	mu      sync.Mutex
	state   status.State
	raw     string
	callErr error
}

// StartCall opens the status stream, transitions to Dialing, and issues
// the placement request.
//
// A WebSocket dial failure means no session exists and is returned as an
// error. A placement request failure after the stream is open yields a
// session already terminal in LineInUse: the stream was reachable but the
// call could never be placed, which is a distinct outcome from any
// telephony-level result.
func (c *Client) StartCall(ctx context.Context, req CallRequest) (*CallSession, error) {
	if req.Name == "" || req.PhoneNumber == "" {
		return nil, NewInvalidRequestError("name and phone number must not be empty")
	}
	if !req.AIModel.valid() {
		return nil, NewInvalidRequestError(fmt.Sprintf("unknown ai model %q", req.AIModel))
	}

	wsURL, err := c.wsEndpoint("/ws")
	if err != nil {
		return nil, err
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, defaultDialTimeout)
		defer cancel()
	}

	conn, resp, err := c.dialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, &TransportError{Op: http.MethodGet, URL: wsURL, Err: fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)}
		}
		return nil, &TransportError{Op: http.MethodGet, URL: wsURL, Err: err}
	}

	id := uuid.NewString()
	s := &CallSession{
		id:     id,
		conn:   conn,
		logger: c.logger.With("session_id", id, "phone_number", req.PhoneNumber),
		states: make(chan status.State, 8),
		done:   make(chan struct{}),
		state:  status.Dialing,
	}
	s.logger.Info("placing call", "name", req.Name, "ai_model", req.AIModel)

	go s.readLoop()

	body := makeCallRequest{
		Name:              req.Name,
		PhoneNumberToCall: req.PhoneNumber,
		AIModel:           string(req.AIModel),
	}
	if err := c.postJSON(ctx, "/make_call", body, nil); err != nil {
		s.logger.Error("call placement failed", "error", err)
		s.fail(err)
		return s, nil
	}

	return s, nil
}

// ID returns the client-generated session identifier.
func (s *CallSession) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *CallSession) State() status.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RawStatus returns the last raw backend token, for verbatim display of
// voice-mail detections.
func (s *CallSession) RawStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

// States yields lifecycle transitions as they are applied. The channel is
// closed when the session ends.
func (s *CallSession) States() <-chan status.State {
	return s.states
}

// Dismissible reports whether the session's status view may be dismissed
// by outside interaction. Dismissal is refused while a call is in flight
// so an accidental click cannot lose the live status of the call.
func (s *CallSession) Dismissible() bool {
	return !s.State().Active()
}

// Done is closed once the session has fully shut down.
func (s *CallSession) Done() <-chan struct{} { return s.done }

// Err returns the session's terminal error, if any, once it has shut down.
func (s *CallSession) Err() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callErr
}

// Close releases the status stream connection. It is safe to call on every
// exit path and any number of times; it returns once the read loop has
// drained.
func (s *CallSession) Close() error {
	s.closeConn()
	<-s.done
	return nil
}

func (s *CallSession) closeConn() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeGracePeriod))
		_ = s.conn.Close()
	})
}

func (s *CallSession) setErr(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callErr == nil {
		s.callErr = err
	}
}

// fail marks the session terminal in LineInUse after a placement failure
// and releases the stream.
func (s *CallSession) fail(err error) {
	s.setErr(err)
	s.apply(status.LineInUse, "")
	s.closeConn()
}

// apply performs one classified transition. Returns false when the session
// is already terminal and the frame was ignored.
func (s *CallSession) apply(next status.State, raw string) bool {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.raw = raw
	s.mu.Unlock()

	select {
	case s.states <- next:
	default:
		// Never block the read loop on a slow consumer.
	}
	return true
}

func (s *CallSession) readLoop() {
	defer close(s.done)
	defer close(s.states)
	defer s.closeConn()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			if !s.State().Terminal() {
				// The stream dropped mid-call: no outcome will ever arrive,
				// so the attempt terminates as Failed rather than leaving
				// the session stuck in an active state.
				s.setErr(err)
				s.apply(status.Failed, "")
				s.logger.Warn("status stream dropped mid-call", "error", err)
			}
			return
		}

		var frame statusFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Warn("discarding malformed status frame", "error", err)
			continue
		}

		next := status.Classify(frame.Status)
		if !s.apply(next, frame.Status) {
			s.logger.Debug("ignoring status after terminal state", "status", frame.Status)
			continue
		}
		s.logger.Info("call status", "status", frame.Status, "state", next)

		if next.Terminal() {
			return
		}
	}
}
