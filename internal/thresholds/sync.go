package thresholds

import (
	"context"
	"strconv"
	"sync"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/api"
	"greenhouse_console/internal/logger"
)

// ThresholdAPI is the REST slice that reads and writes thresholds.
type ThresholdAPI interface {
	GetThresholds(ctx context.Context) (*greenhouse.ThresholdSet, error)
	UpdateThresholds(ctx context.Context, fields map[string]float64) error
}

// Sync keeps two parallel copies of the threshold set: the confirmed one
// from the server and a local edit buffer that may diverge. Every
// successful fetch resets the buffer to the confirmed values, including
// after commits, which guards against writes that partially failed
// server-side or raced another operator.
type Sync struct {
	api ThresholdAPI
	log *logger.Logger

	mu        sync.Mutex
	confirmed greenhouse.ThresholdSet
	buffer    map[string]float64
	loaded    bool
}

func NewSync(thresholdsAPI ThresholdAPI, log *logger.Logger) *Sync {
	return &Sync{api: thresholdsAPI, log: log, buffer: make(map[string]float64)}
}

// Fetch pulls the confirmed set and resets the edit buffer to it.
func (s *Sync) Fetch(ctx context.Context) error {
	set, err := s.api.GetThresholds(ctx)
	if err != nil {
		s.log.Infow("threshold_pull_failed", "err", err)
		return err
	}
	s.mu.Lock()
	s.confirmed = *set
	s.buffer = set.Values()
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// SetField parses and stores one edit in the buffer. The only client-side
// validation is numeric parsing; semantic range checks belong to the
// server.
func (s *Sync) SetField(key, raw string) error {
	if _, ok := (&greenhouse.ThresholdSet{}).Field(key); !ok {
		return &api.ValidationError{Field: key, Reason: "unknown threshold field"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return &api.ValidationError{Field: key, Reason: "not a number"}
	}
	s.mu.Lock()
	s.buffer[key] = v
	s.mu.Unlock()
	return nil
}

// CommitField sends a single-field update and, on success, re-fetches the
// confirmed set. The whole buffer resets, dropping unsaved edits to other
// fields.
func (s *Sync) CommitField(ctx context.Context, key string) error {
	s.mu.Lock()
	v, ok := s.buffer[key]
	s.mu.Unlock()
	if !ok {
		return &api.ValidationError{Field: key, Reason: "unknown threshold field"}
	}
	if err := s.api.UpdateThresholds(ctx, map[string]float64{key: v}); err != nil {
		return err
	}
	return s.Fetch(ctx)
}

// CommitAll sends the full field set and re-fetches on success.
func (s *Sync) CommitAll(ctx context.Context) error {
	s.mu.Lock()
	fields := make(map[string]float64, len(s.buffer))
	for k, v := range s.buffer {
		fields[k] = v
	}
	s.mu.Unlock()
	if err := s.api.UpdateThresholds(ctx, fields); err != nil {
		return err
	}
	return s.Fetch(ctx)
}

// Confirmed returns the last server-confirmed set, with ok=false before
// the first successful fetch.
func (s *Sync) Confirmed() (greenhouse.ThresholdSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed, s.loaded
}

// Buffer returns a copy of the edit buffer.
func (s *Sync) Buffer() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.buffer))
	for k, v := range s.buffer {
		out[k] = v
	}
	return out
}
