package smartcast

import "time"

// Key identifies a virtual remote key. The set is closed: dispatching an
// unknown key returns ErrUnknownKey rather than reaching the device.
type Key string

// Virtual remote keys.
const (
	KeyPowerOn     Key = "POW_ON"
	KeyPowerOff    Key = "POW_OFF"
	KeyPowerToggle Key = "POW_TOGGLE"

	KeyVolumeUp   Key = "VOL_UP"
	KeyVolumeDown Key = "VOL_DOWN"
	KeyMuteToggle Key = "MUTE_TOGGLE"

	KeyChannelUp   Key = "CH_UP"
	KeyChannelDown Key = "CH_DOWN"
	KeyChannelPrev Key = "CH_PREV"

	KeyPlay  Key = "PLAY"
	KeyPause Key = "PAUSE"

	KeyUp    Key = "UP"
	KeyDown  Key = "DOWN"
	KeyLeft  Key = "LEFT"
	KeyRight Key = "RIGHT"
	KeyOK    Key = "OK"
	KeyBack  Key = "BACK"
	KeyExit  Key = "EXIT"
)

// keyCode is a (codeset, code) pair from the device's key command table.
type keyCode struct {
	Codeset int
	Code    int
}

// keyCodes maps virtual keys to their wire codes. Navigation and transport
// keys share codesets; power, volume and channel each have their own.
var keyCodes = map[Key]keyCode{
	KeyPowerOff:    {11, 0},
	KeyPowerOn:     {11, 1},
	KeyPowerToggle: {11, 2},

	KeyVolumeDown: {5, 0},
	KeyVolumeUp:   {5, 1},
	KeyMuteToggle: {5, 4},

	KeyChannelDown: {8, 0},
	KeyChannelUp:   {8, 1},
	KeyChannelPrev: {8, 2},

	KeyPause: {2, 2},
	KeyPlay:  {2, 3},

	KeyDown:  {3, 0},
	KeyLeft:  {3, 1},
	KeyOK:    {3, 2},
	KeyBack:  {3, 4},
	KeyRight: {3, 7},
	KeyUp:    {3, 8},

	KeyExit: {9, 0},
}

// IsValid reports whether k is a recognised remote key.
func (k Key) IsValid() bool {
	_, ok := keyCodes[k]
	return ok
}

// Target identifies the device a Controller talks to.
type Target struct {
	// Host is the device's IP address or hostname.
	Host string

	// Port is the device's API port (typically 7345 for TVs, 9000 on
	// older firmware).
	Port int

	// Name is the device's advertised friendly name. Informational only.
	Name string

	// AuthToken authorises control calls. Empty until pairing completes;
	// pairing endpoints themselves work without it.
	AuthToken string

	// DeviceClass is "tv", "speaker" or "crave360". Selects the settings
	// tree root ("tv_settings" vs "audio_settings") on the device API.
	DeviceClass string
}

// PairChallenge carries the state of an in-flight pairing exchange between
// StartPair and FinishPair/CancelPair.
type PairChallenge struct {
	// ChallengeType is echoed back when completing or cancelling.
	ChallengeType int

	// Token is the pairing request token issued by the device.
	Token int
}

// Input describes one entry in the device's input list.
type Input struct {
	// Name is the internal input identifier (e.g. "HDMI-1").
	Name string

	// FriendlyName is the user-assigned label (e.g. "PlayStation").
	FriendlyName string
}

// App identifies a launchable SmartCast app by its platform coordinates.
type App struct {
	// Name is the human-readable app name used throughout castdeck.
	Name string

	// ID is the platform app identifier.
	ID string

	// Namespace selects the app store namespace the ID lives in.
	Namespace int

	// Message is an optional launch payload; empty for most apps.
	Message string
}

// Status is a point-in-time snapshot of device state. Fields are pointers so
// a failed or unsupported probe leaves the field nil rather than zeroed.
type Status struct {
	PowerOn      *bool   `json:"power_on,omitempty"`
	Volume       *int    `json:"volume,omitempty"`
	Muted        *bool   `json:"muted,omitempty"`
	CurrentInput *string `json:"current_input,omitempty"`
	CurrentApp   *string `json:"current_app,omitempty"`
	Charging     *bool   `json:"charging,omitempty"`
	BatteryLevel *int    `json:"battery_level,omitempty"`
	SerialNumber *string `json:"serial_number,omitempty"`
	ESN          *string `json:"esn,omitempty"`
	Version      *string `json:"version,omitempty"`

	// CollectedAt records when the snapshot was taken.
	CollectedAt time.Time `json:"collected_at"`
}
