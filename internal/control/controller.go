package control

import (
	"context"
	"sync"

	"greenhouse_console/internal/api"
	"greenhouse_console/internal/logger"
)

// CommandAPI is the REST slice that carries actuator commands.
type CommandAPI interface {
	Control(ctx context.Context, req api.ControlRequest) error
	ResumeAutomatic(ctx context.Context) error
}

// Controller drives the Automatic/Manual machine. Local commands move it
// optimistically; the server stays authoritative through the
// manual_override it reports with every reading, fed back via Observe.
type Controller struct {
	api CommandAPI
	log *logger.Logger

	mu   sync.Mutex
	mode Mode
}

func NewController(commands CommandAPI, log *logger.Logger) *Controller {
	return &Controller{api: commands, log: log, mode: Automatic}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Control issues one actuator command. Issuing a command is itself the
// request to enter manual override, so success transitions to Manual
// optimistically. A failed command leaves the mode unchanged.
func (c *Controller) Control(ctx context.Context, actuator string, on bool, pwm *int) error {
	err := c.api.Control(ctx, api.ControlRequest{Actuator: actuator, State: on, PWM: pwm})
	if err != nil {
		c.log.Infow("actuator_command_failed", "actuator", actuator, "err", err)
		return err
	}
	c.apply(TriggerCommand)
	c.log.Infow("actuator_command_ok", "actuator", actuator, "state", on)
	return nil
}

// ResumeAutomatic hands control back to the automation loop. Only a
// confirmed command transitions the machine.
func (c *Controller) ResumeAutomatic(ctx context.Context) error {
	if err := c.api.ResumeAutomatic(ctx); err != nil {
		c.log.Infow("resume_automatic_failed", "err", err)
		return err
	}
	c.apply(TriggerResumeConfirmed)
	return nil
}

// ObserveOverride feeds the manual_override value from an authoritative
// reading back into the machine.
func (c *Controller) ObserveOverride(on bool) {
	if on {
		c.apply(TriggerOverrideOn)
	} else {
		c.apply(TriggerOverrideOff)
	}
}

// ObserveAutoResumed feeds an auto_mode_resumed push into the machine.
func (c *Controller) ObserveAutoResumed() {
	c.apply(TriggerAutoResumed)
}

func (c *Controller) apply(t Trigger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = Next(c.mode, t)
}
