package control

import (
	"context"
	"errors"
	"testing"

	"greenhouse_console/internal/api"
	"greenhouse_console/internal/logger"
)

// commandAPIStub is a minimal stub for CommandAPI.
type commandAPIStub struct {
	controlErr error
	resumeErr  error
	controls   []api.ControlRequest
	resumes    int
}

func (s *commandAPIStub) Control(ctx context.Context, req api.ControlRequest) error {
	if s.controlErr != nil {
		return s.controlErr
	}
	s.controls = append(s.controls, req)
	return nil
}

func (s *commandAPIStub) ResumeAutomatic(ctx context.Context) error {
	if s.resumeErr != nil {
		return s.resumeErr
	}
	s.resumes++
	return nil
}

func TestControl_SuccessEntersManualOptimistically(t *testing.T) {
	stub := &commandAPIStub{}
	c := NewController(stub, logger.Nop())

	if c.Mode() != Automatic {
		t.Fatalf("initial mode = %s, want %s", c.Mode(), Automatic)
	}
	if err := c.Control(context.Background(), "fan_circulation", true, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Mode() != Manual {
		t.Fatalf("mode after command = %s, want %s", c.Mode(), Manual)
	}
	if len(stub.controls) != 1 || stub.controls[0].Actuator != "fan_circulation" {
		t.Fatalf("unexpected sent commands: %+v", stub.controls)
	}
}

func TestControl_FailureLeavesModeUnchanged(t *testing.T) {
	stub := &commandAPIStub{controlErr: errors.New("boom")}
	c := NewController(stub, logger.Nop())

	if err := c.Control(context.Background(), "pump_water", true, nil); err == nil {
		t.Fatalf("expected error")
	}
	if c.Mode() != Automatic {
		t.Fatalf("mode after failed command = %s, want %s", c.Mode(), Automatic)
	}
}

func TestResumeAutomatic_OnlyConfirmedCommandTransitions(t *testing.T) {
	stub := &commandAPIStub{resumeErr: errors.New("unreachable")}
	c := NewController(stub, logger.Nop())
	c.ObserveOverride(true)

	if err := c.ResumeAutomatic(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if c.Mode() != Manual {
		t.Fatalf("mode after failed resume = %s, want %s", c.Mode(), Manual)
	}

	stub.resumeErr = nil
	if err := c.ResumeAutomatic(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Mode() != Automatic {
		t.Fatalf("mode after confirmed resume = %s, want %s", c.Mode(), Automatic)
	}
}

func TestObserveOverride_ServerStaysAuthoritative(t *testing.T) {
	stub := &commandAPIStub{}
	c := NewController(stub, logger.Nop())

	// Local command moves the machine optimistically.
	_ = c.Control(context.Background(), "humidifier", true, nil)
	if c.Mode() != Manual {
		t.Fatalf("mode = %s, want %s", c.Mode(), Manual)
	}

	// A later reading reporting no override reverts the machine.
	c.ObserveOverride(false)
	if c.Mode() != Automatic {
		t.Fatalf("mode after override_off = %s, want %s", c.Mode(), Automatic)
	}

	c.ObserveOverride(true)
	c.ObserveAutoResumed()
	if c.Mode() != Automatic {
		t.Fatalf("mode after auto_mode_resumed = %s, want %s", c.Mode(), Automatic)
	}
}
