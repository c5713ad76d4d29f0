package telecall

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samodrei/telecaller/pkg/telecall/status"
)

// Dashboard composes the live call session, the automation monitor, and
// the call log store, and owns the transient view state (form and modal
// visibility). It is the only place that sequences the three against each
// other; the components themselves stay independent.
type Dashboard struct {
	client  *Client
	logger  *slog.Logger
	logs    *CallLogStore
	monitor *AutomationMonitor

	mu        sync.Mutex
	formOpen  bool
	modalOpen bool
	recording *RecordingDetail
	session   *CallSession
	placing   bool
}

// NewDashboard builds a dashboard controller over a client.
func NewDashboard(c *Client) *Dashboard {
	d := &Dashboard{
		client:  c,
		logger:  c.logger.With("component", "dashboard"),
		logs:    c.Logs(),
		monitor: c.Automation(),
	}
	// An automation event means an autonomous call just began or
	// concluded, so the log may have a new row.
	d.monitor.OnCall = func(AutomationState) {
		if err := d.logs.Refresh(context.Background()); err != nil {
			d.logger.Warn("log refresh after automation event failed", "error", err)
		}
	}
	return d
}

// Logs exposes the call log store for rendering and sort selection.
func (d *Dashboard) Logs() *CallLogStore { return d.logs }

// Automation exposes the automation monitor.
func (d *Dashboard) Automation() *AutomationMonitor { return d.monitor }

// Start performs the initial log fetch and brings up the automation
// monitor. A failed initial fetch degrades to an empty table; it does not
// prevent the dashboard from starting.
func (d *Dashboard) Start(ctx context.Context) error {
	if err := d.logs.Refresh(ctx); err != nil {
		d.logger.Warn("initial call log fetch failed", "error", err)
	}
	return d.monitor.Start(ctx)
}

// Shutdown tears down the live session (if any) and the monitor. Both
// connections are closed synchronously; nothing outlives the dashboard.
func (d *Dashboard) Shutdown() {
	d.mu.Lock()
	session := d.session
	d.mu.Unlock()

	if session != nil {
		_ = session.Close()
	}
	d.monitor.Stop()
}

// OpenForm shows the call form. While a session is active the form surface
// shows the in-progress view instead, so opening is always allowed.
func (d *Dashboard) OpenForm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.formOpen = true
}

// FormOpen reports whether the call form surface is visible.
func (d *Dashboard) FormOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.formOpen
}

// PlaceCall starts a live call session from the form. At most one session
// exists at a time; placing while a call is in flight is refused. The
// placing flag stays set across the StartCall round trip so two
// concurrent placements cannot both pass the active-session check and
// leak the losing session's stream.
func (d *Dashboard) PlaceCall(ctx context.Context, req CallRequest) (*CallSession, error) {
	d.mu.Lock()
	if d.placing || (d.session != nil && d.session.State().Active()) {
		d.mu.Unlock()
		return nil, NewInvalidRequestError("a call is already in progress")
	}
	d.placing = true
	d.mu.Unlock()

	session, err := d.client.StartCall(ctx, req)

	d.mu.Lock()
	d.placing = false
	if err == nil {
		d.session = session
		d.formOpen = true
	}
	d.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return session, nil
}

// Session returns the current live call session, or nil.
func (d *Dashboard) Session() *CallSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// CloseForm dismisses the call form. While a call is in flight the
// dismissal is refused, so an outside click cannot lose the live status
// view. A successful close releases the session and always refreshes the
// call log: a call attempt may have just completed.
func (d *Dashboard) CloseForm(ctx context.Context) bool {
	d.mu.Lock()
	session := d.session
	if session != nil && !session.Dismissible() {
		d.mu.Unlock()
		return false
	}
	d.session = nil
	d.formOpen = false
	d.mu.Unlock()

	if session != nil {
		_ = session.Close()
	}
	if err := d.logs.Refresh(ctx); err != nil {
		d.logger.Warn("log refresh after form close failed", "error", err)
	}
	return true
}

// OpenRecording loads the recording detail for one log row and shows the
// modal. The detail is held only while the modal is open.
func (d *Dashboard) OpenRecording(ctx context.Context, id string) (RecordingDetail, error) {
	detail, err := d.logs.FetchRecording(ctx, id)
	if err != nil {
		return RecordingDetail{}, err
	}

	d.mu.Lock()
	d.recording = &detail
	d.modalOpen = true
	d.mu.Unlock()
	return detail, nil
}

// CloseRecording hides the modal and discards the loaded detail.
func (d *Dashboard) CloseRecording() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modalOpen = false
	d.recording = nil
}

// Recording returns the detail for the open modal, or nil.
func (d *Dashboard) Recording() *RecordingDetail {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.modalOpen {
		return nil
	}
	return d.recording
}

// View is a render-ready snapshot of everything the dashboard shows.
type View struct {
	FormOpen   bool
	ModalOpen  bool
	CallState  status.State
	CallLabel  string
	CallDetail string
	Automation AutomationState
	Records    []CallRecord
	Recording  *RecordingDetail
}

// Snapshot assembles the current view state.
func (d *Dashboard) Snapshot() View {
	d.mu.Lock()
	session := d.session
	v := View{
		FormOpen:  d.formOpen,
		ModalOpen: d.modalOpen,
		CallState: status.Idle,
		Recording: d.recording,
	}
	d.mu.Unlock()

	if session != nil {
		v.CallState = session.State()
		v.CallLabel = v.CallState.Label(session.RawStatus())
		v.CallDetail = v.CallState.Describe()
	}
	v.Automation = d.monitor.State()
	v.Records = d.logs.Records()
	return v
}
