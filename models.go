package greenhouse_console

import "time"

// Roles a user account can hold.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleHeadAdmin = "head_admin"
)

// Account statuses.
const (
	StatusActive     = "active"
	StatusBanned     = "banned"
	StatusRestricted = "restricted"
)

// Theme preferences.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// User is the identity attached to a session.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`   // user | admin | head_admin
	Status    string    `json:"status"` // active | banned | restricted
	Theme     string    `json:"theme"`  // light | dark | auto
	CreatedAt time.Time `json:"createdAt"`
}

// ActuatorSet is the controllable output state reported with every reading.
// ManualOverride mirrors the server-side control mode: true means the
// autonomous loop is suspended and actuators follow operator commands.
type ActuatorSet struct {
	PumpWater      bool `json:"pump_water"`
	PumpNutrient   bool `json:"pump_nutrient"`
	FanExhaust     bool `json:"fan_exhaust"`
	Peltier        bool `json:"peltier"`
	FanPeltierHot  bool `json:"fan_peltier_hot"`
	FanPeltierCold bool `json:"fan_peltier_cold"`
	FanExhaustPWM  int  `json:"fan_exhaust_pwm"` // 0..255
	PeltierPWM     int  `json:"peltier_pwm"`     // 0..255
	ManualOverride bool `json:"manual_override"`
}

// Actuator names as they appear on the wire.
const (
	ActuatorPumpWater      = "pump_water"
	ActuatorPumpNutrient   = "pump_nutrient"
	ActuatorFanExhaust     = "fan_exhaust"
	ActuatorPeltier        = "peltier"
	ActuatorFanPeltierHot  = "fan_peltier_hot"
	ActuatorFanPeltierCold = "fan_peltier_cold"
)

// SetState flips a single actuator by wire name. Returns false for an
// unknown name so callers can refuse to invent fields.
func (a *ActuatorSet) SetState(name string, on bool) bool {
	switch name {
	case ActuatorPumpWater:
		a.PumpWater = on
	case ActuatorPumpNutrient:
		a.PumpNutrient = on
	case ActuatorFanExhaust:
		a.FanExhaust = on
	case ActuatorPeltier:
		a.Peltier = on
	case ActuatorFanPeltierHot:
		a.FanPeltierHot = on
	case ActuatorFanPeltierCold:
		a.FanPeltierCold = on
	default:
		return false
	}
	return true
}

// SetPWM sets the power level for the two PWM-capable actuators.
func (a *ActuatorSet) SetPWM(name string, value int) bool {
	switch name {
	case ActuatorFanExhaust:
		a.FanExhaustPWM = value
	case ActuatorPeltier:
		a.PeltierPWM = value
	default:
		return false
	}
	return true
}

// State reports the on/off state of a single actuator by wire name.
func (a *ActuatorSet) State(name string) (bool, bool) {
	switch name {
	case ActuatorPumpWater:
		return a.PumpWater, true
	case ActuatorPumpNutrient:
		return a.PumpNutrient, true
	case ActuatorFanExhaust:
		return a.FanExhaust, true
	case ActuatorPeltier:
		return a.Peltier, true
	case ActuatorFanPeltierHot:
		return a.FanPeltierHot, true
	case ActuatorFanPeltierCold:
		return a.FanPeltierCold, true
	}
	return false, false
}

// EnvironmentReading is one timestamped sample of all sensors plus the
// actuator state at that instant. Pulls and new_reading pushes both carry
// the full struct; a new reading always replaces the previous one wholesale.
type EnvironmentReading struct {
	Timestamp    time.Time    `json:"timestamp"`
	Temp         float64      `json:"temp"`          // °C
	Hum          float64      `json:"hum"`           // %
	Light        float64      `json:"light"`         // lux
	SoilMoisture float64      `json:"soil_moisture"` // %
	Soil1        float64      `json:"soil1"`
	Soil2        float64      `json:"soil2"`
	NPKN         float64      `json:"npk_n"`
	NPKP         float64      `json:"npk_p"`
	NPKK         float64      `json:"npk_k"`
	Actuators    *ActuatorSet `json:"actuators,omitempty"`
}

// ThresholdSet holds the numeric boundaries driving server-side automation.
type ThresholdSet struct {
	Soil1                 float64   `json:"soil1"`
	Soil2                 float64   `json:"soil2"`
	TempHigh              float64   `json:"temp_high"`
	TempLow               float64   `json:"temp_low"`
	HumHigh               float64   `json:"hum_high"`
	HumLow                float64   `json:"hum_low"`
	NPKN                  float64   `json:"npk_n"`
	NPKP                  float64   `json:"npk_p"`
	NPKK                  float64   `json:"npk_k"`
	LastSyncedWithArduino time.Time `json:"lastSyncedWithArduino,omitempty"`
	UpdatedAt             time.Time `json:"updatedAt,omitempty"`
}

// ThresholdFields lists the editable field keys in display order.
var ThresholdFields = []string{
	"soil1", "soil2",
	"temp_high", "temp_low",
	"hum_high", "hum_low",
	"npk_n", "npk_p", "npk_k",
}

// Field returns one threshold value by key.
func (t *ThresholdSet) Field(key string) (float64, bool) {
	switch key {
	case "soil1":
		return t.Soil1, true
	case "soil2":
		return t.Soil2, true
	case "temp_high":
		return t.TempHigh, true
	case "temp_low":
		return t.TempLow, true
	case "hum_high":
		return t.HumHigh, true
	case "hum_low":
		return t.HumLow, true
	case "npk_n":
		return t.NPKN, true
	case "npk_p":
		return t.NPKP, true
	case "npk_k":
		return t.NPKK, true
	}
	return 0, false
}

// Values flattens the editable fields into a key→value map.
func (t *ThresholdSet) Values() map[string]float64 {
	out := make(map[string]float64, len(ThresholdFields))
	for _, key := range ThresholdFields {
		v, _ := t.Field(key)
		out[key] = v
	}
	return out
}

// Alert levels.
const (
	AlertInfo     = "INFO"
	AlertWarning  = "WARNING"
	AlertError    = "ERROR"
	AlertCritical = "CRITICAL"
)

// Alert is a server-owned notification; the client only reads it and may
// mark it acknowledged.
type Alert struct {
	ID           int       `json:"id"`
	Level        string    `json:"level"` // INFO | WARNING | ERROR | CRITICAL
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
}

// SensorEvent is an automation log entry (actuator switched, threshold hit).
type SensorEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

// ActivityEntry is one row of the admin activity log.
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

// OnlineUser is a currently connected operator as the admin panel sees it.
type OnlineUser struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// PasswordRequest is a pending forgot-password ticket awaiting admin review.
type PasswordRequest struct {
	ID                 int       `json:"id"`
	Username           string    `json:"username"`
	Message            string    `json:"message"`
	RememberedPassword string    `json:"rememberedPassword,omitempty"`
	RequestedAt        time.Time `json:"requestedAt"`
}
