package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/sim/repository"
)

// Environment drift bounds for the synthetic greenhouse.
const (
	baseTemp         = 24.0
	baseHum          = 60.0
	baseLight        = 400.0
	baseSoil         = 45.0
	baseNPK          = 50.0
	driftStep        = 0.6  // max random walk per tick
	peltierPullPerS  = 0.4  // °C per second of cooling when peltier runs
	exhaustPullPerS  = 0.5  // % humidity per second when exhaust fan runs
	overheatMarginC  = 5.0  // past temp_high before a CRITICAL alert
	alertCooldownSec = 300  // seconds between repeated overheat alerts
)

var errUnknownActuator = errors.New("unknown actuator")

// EngineService is the simulated control loop: it drifts sensor values,
// applies threshold automation while manual override is off, persists a
// reading per tick and broadcasts it.
type EngineService struct {
	repos *repository.Repository
	hub   Broadcaster

	mu        sync.Mutex
	reading   greenhouse.EnvironmentReading
	lastAlert time.Time
	rng       *rand.Rand
}

func NewEngineService(repos *repository.Repository, hub Broadcaster) *EngineService {
	e := &EngineService{
		repos: repos,
		hub:   hub,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.reading = greenhouse.EnvironmentReading{
		Temp: baseTemp, Hum: baseHum, Light: baseLight,
		SoilMoisture: baseSoil, Soil1: baseSoil, Soil2: baseSoil,
		NPKN: baseNPK, NPKP: baseNPK, NPKK: baseNPK,
		Actuators: &greenhouse.ActuatorSet{},
	}
	return e
}

// Run ticks until the context is canceled.
func (e *EngineService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			e.step(ctx, now, tick.Seconds())
		}
	}
}

func (e *EngineService) step(ctx context.Context, now time.Time, elapsed float64) {
	e.mu.Lock()
	e.drift(elapsed)
	if !e.reading.Actuators.ManualOverride {
		e.automate(ctx)
	}
	e.reading.Timestamp = now.UTC()
	reading := e.snapshotLocked()
	e.mu.Unlock()

	_ = e.repos.Readings.Append(ctx, reading)
	e.hub.Broadcast("new_reading", reading)
	e.checkOverheat(ctx, reading, now)
}

// drift moves each sensor with a bounded random walk plus actuator pull.
func (e *EngineService) drift(elapsed float64) {
	walk := func(v, base, spread float64) float64 {
		v += (e.rng.Float64()*2 - 1) * driftStep
		// gentle regression toward the base keeps values plausible
		v += (base - v) * 0.01
		if v < base-spread {
			v = base - spread
		}
		if v > base+spread {
			v = base + spread
		}
		return v
	}
	r := &e.reading
	r.Temp = walk(r.Temp, baseTemp, 15)
	r.Hum = walk(r.Hum, baseHum, 35)
	r.Light = walk(r.Light, baseLight, 350)
	r.SoilMoisture = walk(r.SoilMoisture, baseSoil, 30)
	r.Soil1 = walk(r.Soil1, baseSoil, 30)
	r.Soil2 = walk(r.Soil2, baseSoil, 30)
	r.NPKN = walk(r.NPKN, baseNPK, 25)
	r.NPKP = walk(r.NPKP, baseNPK, 25)
	r.NPKK = walk(r.NPKK, baseNPK, 25)

	if r.Actuators.Peltier {
		r.Temp -= peltierPullPerS * elapsed
	}
	if r.Actuators.FanExhaust {
		r.Hum -= exhaustPullPerS * elapsed
	}
	if r.Actuators.PumpWater {
		r.SoilMoisture += exhaustPullPerS * elapsed
	}
}

// automate applies the confirmed thresholds to the actuators.
func (e *EngineService) automate(ctx context.Context) {
	t, err := e.repos.Thresholds.Load(ctx)
	if err != nil {
		return
	}
	a := e.reading.Actuators
	a.Peltier = e.reading.Temp > t.TempHigh
	a.FanPeltierHot = a.Peltier
	a.FanPeltierCold = a.Peltier
	a.FanExhaust = e.reading.Hum > t.HumHigh
	a.PumpWater = e.reading.Soil1 < t.Soil1 || e.reading.Soil2 < t.Soil2
	a.PumpNutrient = e.reading.NPKN < t.NPKN || e.reading.NPKP < t.NPKP || e.reading.NPKK < t.NPKK
	if a.Peltier {
		a.PeltierPWM = 255
	} else {
		a.PeltierPWM = 0
	}
	if a.FanExhaust {
		a.FanExhaustPWM = 180
	} else {
		a.FanExhaustPWM = 0
	}
}

func (e *EngineService) checkOverheat(ctx context.Context, reading greenhouse.EnvironmentReading, now time.Time) {
	t, err := e.repos.Thresholds.Load(ctx)
	if err != nil {
		return
	}
	if reading.Temp <= t.TempHigh+overheatMarginC {
		return
	}
	e.mu.Lock()
	due := now.Sub(e.lastAlert).Seconds() >= alertCooldownSec
	if due {
		e.lastAlert = now
	}
	e.mu.Unlock()
	if !due {
		return
	}
	alert := greenhouse.Alert{
		Level:     greenhouse.AlertCritical,
		Message:   fmt.Sprintf("temperature %.1f°C exceeds safe limit", reading.Temp),
		Timestamp: now.UTC(),
	}
	_ = e.repos.Alerts.Append(ctx, alert)
	e.hub.Broadcast("system_alert", alert)
}

// Control applies one manual actuator command. Any command suspends the
// automation loop by switching manual override on.
func (e *EngineService) Control(ctx context.Context, actuator string, state bool, pwm *int, by string) error {
	if pwm != nil && (*pwm < 0 || *pwm > 255) {
		return fmt.Errorf("pwm %d out of range 0..255", *pwm)
	}
	e.mu.Lock()
	a := e.reading.Actuators
	if !a.SetState(actuator, state) {
		e.mu.Unlock()
		return errUnknownActuator
	}
	if pwm != nil {
		a.SetPWM(actuator, *pwm)
	}
	a.ManualOverride = true
	e.mu.Unlock()

	e.hub.Broadcast("manual_control", map[string]any{
		"actuator":     actuator,
		"state":        state,
		"pwm":          pwm,
		"controlledBy": by,
	})
	return nil
}

// ResumeAutomatic hands control back to the loop.
func (e *EngineService) ResumeAutomatic(ctx context.Context, by string) error {
	e.mu.Lock()
	e.reading.Actuators.ManualOverride = false
	e.mu.Unlock()

	e.hub.Broadcast("auto_mode_resumed", map[string]any{"resumedBy": by})
	return nil
}

// UpdateThresholds merges a partial field set into the confirmed values.
func (e *EngineService) UpdateThresholds(ctx context.Context, fields map[string]float64, by string) (greenhouse.ThresholdSet, error) {
	t, err := e.repos.Thresholds.Load(ctx)
	if err != nil {
		return greenhouse.ThresholdSet{}, err
	}
	for key, v := range fields {
		if err := setThresholdField(&t, key, v); err != nil {
			return greenhouse.ThresholdSet{}, err
		}
	}
	t.UpdatedAt = time.Now().UTC()
	if err := e.repos.Thresholds.Save(ctx, t); err != nil {
		return greenhouse.ThresholdSet{}, err
	}
	e.hub.Broadcast("threshold_update", map[string]any{"updatedBy": by})
	return t, nil
}

func setThresholdField(t *greenhouse.ThresholdSet, key string, v float64) error {
	if v < 0 || v > 1000 {
		return fmt.Errorf("%s: value %.1f out of range", key, v)
	}
	switch key {
	case "soil1":
		t.Soil1 = v
	case "soil2":
		t.Soil2 = v
	case "temp_high":
		t.TempHigh = v
	case "temp_low":
		t.TempLow = v
	case "hum_high":
		t.HumHigh = v
	case "hum_low":
		t.HumLow = v
	case "npk_n":
		t.NPKN = v
	case "npk_p":
		t.NPKP = v
	case "npk_k":
		t.NPKK = v
	default:
		return fmt.Errorf("unknown threshold field %q", key)
	}
	return nil
}

// snapshotLocked deep-copies the reading; callers hold the mutex.
func (e *EngineService) snapshotLocked() greenhouse.EnvironmentReading {
	out := e.reading
	acts := *e.reading.Actuators
	out.Actuators = &acts
	return out
}
