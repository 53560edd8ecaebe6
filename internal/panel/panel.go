package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/control"
	"greenhouse_console/internal/logger"
	"greenhouse_console/internal/realtime"
	"greenhouse_console/internal/reconcile"
	"greenhouse_console/internal/session"
	"greenhouse_console/internal/thresholds"
)

// Panel owns the session-to-channel wiring. It is the single consumer of
// token changes: on every change it closes the superseded channel instance
// before a new one may exist, and it binds event handlers so that an event
// from a closed instance can never reach the reconciler.
type Panel struct {
	sess   *session.Manager
	rec    *reconcile.Reconciler
	modes  *control.Controller
	thr    *thresholds.Sync
	notify Notifier
	log    *logger.Logger
	wsURL  string

	mu     sync.Mutex
	ch     *realtime.Channel
	ctx    context.Context
	cancel context.CancelFunc
}

// Deps are the collaborators the panel wires together.
type Deps struct {
	Session    *session.Manager
	Reconciler *reconcile.Reconciler
	Modes      *control.Controller
	Thresholds *thresholds.Sync
	Notifier   Notifier
	Log        *logger.Logger
	WSURL      string
}

func New(d Deps) *Panel {
	p := &Panel{
		sess:   d.Session,
		rec:    d.Reconciler,
		modes:  d.Modes,
		thr:    d.Thresholds,
		notify: d.Notifier,
		log:    d.Log,
		wsURL:  d.WSURL,
	}
	// Registered before Init so a restored token opens a channel too.
	p.sess.OnTokenChange(p.handleToken)
	return p
}

// Start restores any persisted session. The context bounds every channel
// the panel will ever open.
func (p *Panel) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.ctx = ctx
	p.cancel = cancel
	p.mu.Unlock()

	p.sess.Init(ctx)
}

// Teardown closes the current channel and stops the panel. Safe on every
// exit path.
func (p *Panel) Teardown() {
	p.mu.Lock()
	ch := p.ch
	p.ch = nil
	cancel := p.cancel
	p.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
	if cancel != nil {
		cancel()
	}
}

// Channel exposes the current instance, mainly for connection status.
func (p *Panel) Channel() *realtime.Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch
}

// handleToken runs synchronously inside every token write. Teardown of the
// old instance happens before the new one is created; that ordering is the
// whole defense against a stale in-flight event landing in a new session.
func (p *Panel) handleToken(token string) {
	p.mu.Lock()
	old := p.ch
	p.ch = nil
	ctx := p.ctx
	p.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if token == "" || ctx == nil {
		return
	}

	ch := realtime.New(p.wsURL, token, p.log)
	p.bind(ch)

	p.mu.Lock()
	p.ch = ch
	p.mu.Unlock()

	ch.Connect(ctx)
	go p.initialPull(ctx, ch)
}

// initialPull fetches the snapshot, the chart series and the thresholds
// that the push channel will keep current from here on.
func (p *Panel) initialPull(ctx context.Context, ch *realtime.Channel) {
	if err := p.rec.Refresh(ctx); err != nil && p.isCurrent(ch) {
		p.notify.Error("failed to fetch sensor data")
	}
	if err := p.rec.LoadToday(ctx); err != nil && p.isCurrent(ch) {
		p.notify.Error("failed to fetch chart data")
	}
	if err := p.thr.Fetch(ctx); err != nil && p.isCurrent(ch) {
		p.notify.Error("failed to fetch thresholds")
	}
	if reading, ok := p.rec.Current(); ok && reading.Actuators != nil {
		p.modes.ObserveOverride(reading.Actuators.ManualOverride)
	}
}

func (p *Panel) isCurrent(ch *realtime.Channel) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch == ch
}

// bind registers one named handler per event kind on this instance. Each
// handler re-checks instance identity before touching shared state.
func (p *Panel) bind(ch *realtime.Channel) {
	guard := func(apply func(json.RawMessage)) realtime.Handler {
		return func(data json.RawMessage) {
			if !p.isCurrent(ch) {
				return
			}
			apply(data)
		}
	}

	ch.Subscribe(realtime.EventConnected, guard(func(json.RawMessage) {
		p.log.Infow("channel_connected")
	}))
	ch.Subscribe(realtime.EventDisconnected, guard(func(json.RawMessage) {
		p.log.Infow("channel_disconnected")
	}))
	ch.Subscribe(realtime.EventConnectError, guard(func(data json.RawMessage) {
		var ev realtime.ConnectErrorEvent
		_ = json.Unmarshal(data, &ev)
		p.log.Infow("channel_connect_error", "reason", ev.Reason)
	}))

	ch.Subscribe(realtime.EventNewReading, guard(p.onNewReading))
	ch.Subscribe(realtime.EventManualControl, guard(p.onManualControl))
	ch.Subscribe(realtime.EventThresholdUpdate, guard(p.onThresholdUpdate))
	ch.Subscribe(realtime.EventAutoModeResumed, guard(p.onAutoModeResumed))
	ch.Subscribe(realtime.EventSystemAlert, guard(p.onSystemAlert))

	// Deliberately unguarded wrapper-wise: the force kill must win even if
	// a successor is mid-flight, and ForceLogout is idempotent.
	ch.Subscribe(realtime.EventForceDisconnect, p.onForceDisconnect)
}

func (p *Panel) onNewReading(data json.RawMessage) {
	var reading greenhouse.EnvironmentReading
	if err := json.Unmarshal(data, &reading); err != nil {
		p.log.Infow("bad_new_reading_payload", "err", err)
		return
	}
	p.rec.Apply(reading)
	if reading.Actuators != nil {
		p.modes.ObserveOverride(reading.Actuators.ManualOverride)
	}
}

func (p *Panel) onManualControl(data json.RawMessage) {
	var ev realtime.ManualControlEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		p.log.Infow("bad_manual_control_payload", "err", err)
		return
	}
	if err := p.rec.ApplyManualControl(ev); err != nil {
		p.log.Infow("manual_control_patch_refused", "actuator", ev.Actuator, "err", err)
		return
	}
	state := "OFF"
	if ev.State {
		state = "ON"
	}
	p.notify.Info(fmt.Sprintf("%s %s by %s", ev.Actuator, state, ev.ControlledBy))
}

// onThresholdUpdate never applies the payload as a value: it carries
// attribution only, so the confirmed set is re-pulled instead.
func (p *Panel) onThresholdUpdate(data json.RawMessage) {
	var ev realtime.ThresholdUpdateEvent
	_ = json.Unmarshal(data, &ev)
	p.notify.Info(fmt.Sprintf("thresholds updated by %s", ev.UpdatedBy))

	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx == nil {
		return
	}
	go func() { _ = p.thr.Fetch(ctx) }()
}

func (p *Panel) onAutoModeResumed(data json.RawMessage) {
	var ev realtime.AutoModeResumedEvent
	_ = json.Unmarshal(data, &ev)
	p.modes.ObserveAutoResumed()
	p.notify.Info(fmt.Sprintf("automation resumed by %s", ev.ResumedBy))
}

func (p *Panel) onSystemAlert(data json.RawMessage) {
	var ev realtime.SystemAlertEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return
	}
	switch ev.Level {
	case greenhouse.AlertCritical:
		p.notify.Critical(ev.Message)
	case greenhouse.AlertError:
		p.notify.Error(ev.Message)
	case greenhouse.AlertWarning:
		p.notify.Warning(ev.Message)
	default:
		p.notify.Info(ev.Message)
	}
}

// onForceDisconnect kills the session in the same dispatch turn: the token
// is cleared and the channel closed before this handler returns, so no
// further authenticated call can follow.
func (p *Panel) onForceDisconnect(data json.RawMessage) {
	var ev realtime.ForceDisconnectEvent
	_ = json.Unmarshal(data, &ev)
	p.notify.Error(ev.Reason)
	p.sess.ForceLogout(ev.Reason)
}
