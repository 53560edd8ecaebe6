package control

// Mode is the two-state actuator control machine.
type Mode string

const (
	Automatic Mode = "automatic"
	Manual    Mode = "manual"
)

// Trigger is an input to the machine: either a local command or a
// server-reported fact.
type Trigger string

const (
	// TriggerCommand is any locally issued actuator command.
	TriggerCommand Trigger = "command"
	// TriggerOverrideOn is a server report of manual_override=true.
	TriggerOverrideOn Trigger = "override_on"
	// TriggerOverrideOff is a server report of manual_override=false.
	TriggerOverrideOff Trigger = "override_off"
	// TriggerResumeConfirmed is a successful resume-automation command.
	TriggerResumeConfirmed Trigger = "resume_confirmed"
	// TriggerAutoResumed is an auto_mode_resumed push.
	TriggerAutoResumed Trigger = "auto_resumed"
)

// Next is the whole transition table. A failed command never reaches this
// function, so there is no error state: failure simply leaves the mode
// where it was.
func Next(current Mode, t Trigger) Mode {
	switch t {
	case TriggerCommand, TriggerOverrideOn:
		return Manual
	case TriggerOverrideOff, TriggerResumeConfirmed, TriggerAutoResumed:
		return Automatic
	}
	return current
}
