package realtime

// EventKind names one message type on the push channel. The lifecycle kinds
// (connected, disconnected, connect_error) are synthesized locally from
// transport callbacks; the rest arrive from the server.
type EventKind string

const (
	EventConnected       EventKind = "connected"
	EventDisconnected    EventKind = "disconnected"
	EventConnectError    EventKind = "connect_error"
	EventNewReading      EventKind = "new_reading"
	EventThresholdUpdate EventKind = "threshold_update"
	EventManualControl   EventKind = "manual_control"
	EventAutoModeResumed EventKind = "auto_mode_resumed"
	EventSystemAlert     EventKind = "system_alert"
	EventForceDisconnect EventKind = "force_disconnect"
)

// ManualControlEvent is a single-actuator patch with attribution.
type ManualControlEvent struct {
	Actuator     string `json:"actuator"`
	State        bool   `json:"state"`
	PWM          *int   `json:"pwm,omitempty"`
	ControlledBy string `json:"controlledBy"`
}

// ThresholdUpdateEvent is a notification only. The payload carries
// attribution, not data; consumers must re-pull the threshold set.
type ThresholdUpdateEvent struct {
	UpdatedBy string `json:"updatedBy"`
}

// AutoModeResumedEvent announces the transition back to automation.
type AutoModeResumedEvent struct {
	ResumedBy string `json:"resumedBy"`
}

// SystemAlertEvent surfaces a server alert for immediate display.
type SystemAlertEvent struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ForceDisconnectEvent is a hard session kill.
type ForceDisconnectEvent struct {
	Reason string `json:"reason"`
}

// ConnectErrorEvent carries the transport failure reason.
type ConnectErrorEvent struct {
	Reason string `json:"reason"`
}
