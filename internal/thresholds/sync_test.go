package thresholds

import (
	"context"
	"errors"
	"testing"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/api"
	"greenhouse_console/internal/logger"
)

// thresholdAPIStub is a minimal stub for ThresholdAPI. The server merges
// whatever fields it receives into its stored set, like the real backend.
type thresholdAPIStub struct {
	stored    greenhouse.ThresholdSet
	fetchErr  error
	updateErr error
	updates   []map[string]float64
}

func (s *thresholdAPIStub) GetThresholds(ctx context.Context) (*greenhouse.ThresholdSet, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	set := s.stored
	return &set, nil
}

func (s *thresholdAPIStub) UpdateThresholds(ctx context.Context, fields map[string]float64) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, fields)
	for k, v := range fields {
		switch k {
		case "soil1":
			s.stored.Soil1 = v
		case "soil2":
			s.stored.Soil2 = v
		case "temp_high":
			s.stored.TempHigh = v
		case "temp_low":
			s.stored.TempLow = v
		case "hum_high":
			s.stored.HumHigh = v
		case "hum_low":
			s.stored.HumLow = v
		case "npk_n":
			s.stored.NPKN = v
		case "npk_p":
			s.stored.NPKP = v
		case "npk_k":
			s.stored.NPKK = v
		}
	}
	return nil
}

func TestFetch_ResetsBufferToConfirmed(t *testing.T) {
	stub := &thresholdAPIStub{stored: greenhouse.ThresholdSet{TempHigh: 30, TempLow: 18}}
	s := NewSync(stub, logger.Nop())

	if _, ok := s.Confirmed(); ok {
		t.Fatalf("confirmed must be absent before first fetch")
	}
	if err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, ok := s.Confirmed()
	if !ok || set.TempHigh != 30 {
		t.Fatalf("confirmed = %+v ok=%v", set, ok)
	}
	if buf := s.Buffer(); buf["temp_high"] != 30 || buf["temp_low"] != 18 {
		t.Fatalf("buffer not reset to confirmed values: %v", buf)
	}
}

func TestSetField_Validation(t *testing.T) {
	s := NewSync(&thresholdAPIStub{}, logger.Nop())

	if err := s.SetField("temp_high", "31.5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf := s.Buffer(); buf["temp_high"] != 31.5 {
		t.Fatalf("buffer = %v", buf)
	}

	var verr *api.ValidationError
	if err := s.SetField("temp_high", "warm"); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if err := s.SetField("boiler_max", "5"); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError for unknown field", err)
	}
}

func TestCommitField_FullBufferReset(t *testing.T) {
	stub := &thresholdAPIStub{stored: greenhouse.ThresholdSet{TempHigh: 30, HumHigh: 80}}
	s := NewSync(stub, logger.Nop())
	if err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// One committed edit plus one unsaved edit to another field.
	if err := s.SetField("temp_high", "32"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetField("hum_high", "85"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.CommitField(context.Background(), "temp_high"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if len(stub.updates) != 1 || len(stub.updates[0]) != 1 || stub.updates[0]["temp_high"] != 32 {
		t.Fatalf("update payload = %v, want single-field", stub.updates)
	}

	// The unsaved hum_high edit is gone: the whole buffer snapped back to
	// the server-confirmed set.
	buf := s.Buffer()
	if buf["temp_high"] != 32 {
		t.Fatalf("temp_high = %v, want committed value", buf["temp_high"])
	}
	if buf["hum_high"] != 80 {
		t.Fatalf("hum_high = %v, want confirmed value 80 (unsaved edit dropped)", buf["hum_high"])
	}
}

func TestCommitField_FailureKeepsBuffer(t *testing.T) {
	stub := &thresholdAPIStub{stored: greenhouse.ThresholdSet{TempHigh: 30}}
	s := NewSync(stub, logger.Nop())
	if err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	_ = s.SetField("temp_high", "32")

	stub.updateErr = errors.New("rejected")
	if err := s.CommitField(context.Background(), "temp_high"); err == nil {
		t.Fatalf("expected error")
	}
	if buf := s.Buffer(); buf["temp_high"] != 32 {
		t.Fatalf("failed commit must not reset the edit: %v", buf)
	}
	if set, _ := s.Confirmed(); set.TempHigh != 30 {
		t.Fatalf("confirmed changed on failed commit: %+v", set)
	}
}

func TestCommitAll_SendsEveryField(t *testing.T) {
	stub := &thresholdAPIStub{stored: greenhouse.ThresholdSet{Soil1: 40, Soil2: 40}}
	s := NewSync(stub, logger.Nop())
	if err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	_ = s.SetField("soil1", "45")

	if err := s.CommitAll(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(stub.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(stub.updates))
	}
	if got := len(stub.updates[0]); got != len(greenhouse.ThresholdFields) {
		t.Fatalf("payload has %d fields, want %d", got, len(greenhouse.ThresholdFields))
	}
	if set, _ := s.Confirmed(); set.Soil1 != 45 {
		t.Fatalf("confirmed soil1 = %v, want 45", set.Soil1)
	}
}
