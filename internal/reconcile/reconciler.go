package reconcile

import (
	"context"
	"errors"
	"sync"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/logger"
	"greenhouse_console/internal/realtime"

	"github.com/google/uuid"
)

// SensorAPI is the pull side of reconciliation.
type SensorAPI interface {
	GetLatest(ctx context.Context) (*greenhouse.EnvironmentReading, error)
	Get24Hours(ctx context.Context) ([]greenhouse.EnvironmentReading, error)
	GetByDate(ctx context.Context, date string) ([]greenhouse.EnvironmentReading, error)
}

var (
	// ErrUnknownActuator means a manual_control event named a field that
	// does not exist; the patch is refused rather than inventing state.
	ErrUnknownActuator = errors.New("unknown actuator in manual_control event")
	// ErrNoSnapshot means a patch arrived before any full reading.
	ErrNoSnapshot = errors.New("no snapshot to patch")
)

// Reconciler merges full-snapshot pulls with push deltas into one canonical
// current reading, plus one history series for charting. A failed refresh
// never blanks data that is already displayed; only first load may be
// absent.
type Reconciler struct {
	sensors SensorAPI
	log     *logger.Logger

	mu         sync.Mutex
	current    *greenhouse.EnvironmentReading
	series     []greenhouse.EnvironmentReading
	seriesDate string
	seriesReq  string // key of the latest requested series pull
}

func New(sensors SensorAPI, log *logger.Logger) *Reconciler {
	return &Reconciler{sensors: sensors, log: log}
}

// Refresh pulls the latest reading. On failure the prior snapshot stays
// untouched and the error is surfaced to the caller.
func (r *Reconciler) Refresh(ctx context.Context) error {
	reading, err := r.sensors.GetLatest(ctx)
	if err != nil {
		r.log.Infow("latest_pull_failed", "err", err)
		return err
	}
	if reading != nil {
		r.Apply(*reading)
	}
	return nil
}

// LoadToday pulls the rolling 24-hour series.
func (r *Reconciler) LoadToday(ctx context.Context) error {
	key := r.beginSeriesRequest()
	series, err := r.sensors.Get24Hours(ctx)
	if err != nil {
		r.log.Infow("series_pull_failed", "err", err)
		return err
	}
	r.finishSeriesRequest(key, "", series)
	return nil
}

// LoadDate pulls the series for one calendar date. Responses that are no
// longer the latest requested are discarded, so a slow answer for an old
// date can never overwrite a newer selection.
func (r *Reconciler) LoadDate(ctx context.Context, date string) error {
	key := r.beginSeriesRequest()
	series, err := r.sensors.GetByDate(ctx, date)
	if err != nil {
		r.log.Infow("series_pull_failed", "date", date, "err", err)
		return err
	}
	r.finishSeriesRequest(key, date, series)
	return nil
}

// Apply replaces the canonical snapshot wholesale. Last writer wins by
// arrival order; sensor fields are never merged across readings.
func (r *Reconciler) Apply(reading greenhouse.EnvironmentReading) {
	r.mu.Lock()
	r.current = &reading
	r.mu.Unlock()
}

// ApplyManualControl patches exactly one actuator field of the snapshot,
// leaving every sensor field and every other actuator untouched. The event
// never carries manual_override, so that field keeps its last authoritative
// value.
func (r *Reconciler) ApplyManualControl(ev realtime.ManualControlEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return ErrNoSnapshot
	}
	if r.current.Actuators == nil {
		r.current.Actuators = &greenhouse.ActuatorSet{}
	}
	if !r.current.Actuators.SetState(ev.Actuator, ev.State) {
		return ErrUnknownActuator
	}
	if ev.PWM != nil {
		r.current.Actuators.SetPWM(ev.Actuator, *ev.PWM)
	}
	return nil
}

// Current returns a copy of the canonical snapshot, with ok=false before
// the first load.
func (r *Reconciler) Current() (greenhouse.EnvironmentReading, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return greenhouse.EnvironmentReading{}, false
	}
	out := *r.current
	if r.current.Actuators != nil {
		acts := *r.current.Actuators
		out.Actuators = &acts
	}
	return out, true
}

// Series returns the current chart series and the date it was loaded for
// ("" for the rolling 24-hour window).
func (r *Reconciler) Series() ([]greenhouse.EnvironmentReading, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]greenhouse.EnvironmentReading, len(r.series))
	copy(out, r.series)
	return out, r.seriesDate
}

// beginSeriesRequest marks a new latest-requested key and returns it.
func (r *Reconciler) beginSeriesRequest() string {
	key := uuid.NewString()
	r.mu.Lock()
	r.seriesReq = key
	r.mu.Unlock()
	return key
}

// finishSeriesRequest installs the response only if its key is still the
// latest requested one.
func (r *Reconciler) finishSeriesRequest(key, date string, series []greenhouse.EnvironmentReading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seriesReq != key {
		r.log.Debugw("stale_series_response_dropped", "date", date)
		return
	}
	r.series = series
	r.seriesDate = date
}
