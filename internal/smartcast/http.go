package smartcast

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Device API endpoint paths. Settings paths are parameterised on the
// settings tree root, which differs between TVs and soundbars.
const (
	pathKeyCommand   = "/key_command/"
	pathPowerMode    = "/state/device/power_mode"
	pathPairStart    = "/pairing/start"
	pathPairFinish   = "/pairing/pair"
	pathPairCancel   = "/pairing/cancel"
	pathCurrentApp   = "/app/current"
	pathLaunchApp    = "/app/launch"
	pathChargingStat = "/state/device/charging_status"
	pathBatteryLevel = "/state/device/battery_level"

	fmtVolume       = "/menu_native/dynamic/%s/audio/volume"
	fmtMute         = "/menu_native/dynamic/%s/audio/mute"
	fmtInputList    = "/menu_native/dynamic/%s/devices/name_input"
	fmtCurrentInput = "/menu_native/dynamic/%s/devices/current_input"
	fmtSerialNumber = "/menu_native/dynamic/%s/system/system_information/tv_information/serial_number"
	fmtVersion      = "/menu_native/dynamic/%s/system/system_information/tv_information/version"
	fmtESN          = "/menu_native/dynamic/%s/system/system_information/uli_information/esn"
)

// Device API result codes.
const (
	resultSuccess       = "SUCCESS"
	resultBlocked       = "BLOCKED"
	resultPairingDenied = "PAIRING_DENIED"
	resultChallengeMax  = "MAX_CHALLENGES_EXCEEDED"
	resultInvalidToken  = "INVALID_AUTH_TOKEN"
)

// envelope is the common response shape of the device API. Single-item
// responses populate Item; list responses populate Items.
type envelope struct {
	Status struct {
		Result string `json:"RESULT"`
		Detail string `json:"DETAIL"`
	} `json:"STATUS"`
	Item  item   `json:"ITEM"`
	Items []item `json:"ITEMS"`
}

type item struct {
	Name    string          `json:"NAME"`
	CName   string          `json:"CNAME"`
	Type    string          `json:"TYPE"`
	Value   json.RawMessage `json:"VALUE"`
	HashVal int             `json:"HASHVAL"`
}

// httpDialer builds HTTPControllers sharing one transport.
type httpDialer struct {
	cfg    DialerConfig
	client *http.Client
}

// NewDialer creates a Dialer backed by the device HTTP API.
//
// Devices present self-signed certificates, so the underlying transport
// skips certificate verification. Control traffic never leaves the LAN.
func NewDialer(cfg DialerConfig) Dialer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &httpDialer{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // Devices use self-signed certs
				},
				MaxIdleConnsPerHost: 2,
			},
		},
	}
}

// Dial validates the target and returns a controller for it. No network
// traffic happens until the first operation.
func (d *httpDialer) Dial(_ context.Context, target Target) (Controller, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	return &HTTPController{
		target: target,
		cfg:    d.cfg,
		client: d.client,
	}, nil
}

// HTTPController implements Controller against the device's REST API.
type HTTPController struct {
	target Target
	cfg    DialerConfig
	client *http.Client
}

// Target returns the device this controller talks to.
func (c *HTTPController) Target() Target {
	return c.target
}

// settingsRoot selects the settings tree for the device class. Soundbars
// and portable speakers expose "audio_settings"; TVs expose "tv_settings".
func (c *HTTPController) settingsRoot() string {
	switch c.target.DeviceClass {
	case "speaker", "crave360":
		return "audio_settings"
	default:
		return "tv_settings"
	}
}

// do issues one request and decodes the response envelope, translating
// transport and device-level failures into package errors.
func (c *HTTPController) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}

	url := fmt.Sprintf("https://%s%s", net.JoinHostPort(c.target.Host, strconv.Itoa(c.target.Port)), path)
	req, err := http.NewRequestWithContext(ctx, method, url, &reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.target.AuthToken != "" {
		req.Header.Set("AUTH", c.target.AuthToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreachable, c.target.Host, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-side close

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorised, c.target.Host)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch env.Status.Result {
	case resultSuccess:
		return &env, nil
	case resultBlocked, resultInvalidToken:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorised, env.Status.Result)
	case resultPairingDenied, resultChallengeMax:
		return nil, fmt.Errorf("%w: %s", ErrPairingDenied, env.Status.Result)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrRequestFailed, env.Status.Result, env.Status.Detail)
	}
}

// getItem fetches a single settings item.
func (c *HTTPController) getItem(ctx context.Context, path string) (*item, error) {
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if len(env.Items) > 0 {
		return &env.Items[0], nil
	}
	return &env.Item, nil
}

// modifyItem writes a settings item. The device rejects writes whose
// HASHVAL does not match the current item, so each write re-reads first.
func (c *HTTPController) modifyItem(ctx context.Context, path string, value any) error {
	cur, err := c.getItem(ctx, path)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, path, map[string]any{
		"REQUEST": "MODIFY",
		"VALUE":   value,
		"HASHVAL": cur.HashVal,
	})
	return err
}

// Key sends a single virtual remote key press.
func (c *HTTPController) Key(ctx context.Context, key Key) error {
	code, ok := keyCodes[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	_, err := c.do(ctx, http.MethodPut, pathKeyCommand, map[string]any{
		"KEYLIST": []map[string]any{{
			"CODESET": code.Codeset,
			"CODE":    code.Code,
			"ACTION":  "KEYPRESS",
		}},
	})
	return err
}

// PowerState reports whether the device is powered on.
func (c *HTTPController) PowerState(ctx context.Context) (bool, error) {
	it, err := c.getItem(ctx, pathPowerMode)
	if err != nil {
		return false, err
	}
	var mode int
	if err := json.Unmarshal(it.Value, &mode); err != nil {
		return false, fmt.Errorf("decoding power mode: %w", err)
	}
	return mode == 1, nil
}

// Volume returns the current volume level.
func (c *HTTPController) Volume(ctx context.Context) (int, error) {
	it, err := c.getItem(ctx, fmt.Sprintf(fmtVolume, c.settingsRoot()))
	if err != nil {
		return 0, err
	}
	var level int
	if err := json.Unmarshal(it.Value, &level); err != nil {
		return 0, fmt.Errorf("decoding volume: %w", err)
	}
	return level, nil
}

// SetVolume sets the volume to an absolute level.
func (c *HTTPController) SetVolume(ctx context.Context, level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: volume %d out of range 0-100", ErrRequestFailed, level)
	}
	return c.modifyItem(ctx, fmt.Sprintf(fmtVolume, c.settingsRoot()), level)
}

// Muted reports whether audio is muted.
func (c *HTTPController) Muted(ctx context.Context) (bool, error) {
	it, err := c.getItem(ctx, fmt.Sprintf(fmtMute, c.settingsRoot()))
	if err != nil {
		return false, err
	}
	var state string
	if err := json.Unmarshal(it.Value, &state); err != nil {
		return false, fmt.Errorf("decoding mute state: %w", err)
	}
	return strings.EqualFold(state, "On"), nil
}

// CurrentInput returns the name of the active input.
func (c *HTTPController) CurrentInput(ctx context.Context) (string, error) {
	it, err := c.getItem(ctx, fmt.Sprintf(fmtCurrentInput, c.settingsRoot()))
	if err != nil {
		return "", err
	}
	var name string
	if err := json.Unmarshal(it.Value, &name); err != nil {
		return "", fmt.Errorf("decoding current input: %w", err)
	}
	return name, nil
}

// Inputs lists the device's available inputs.
func (c *HTTPController) Inputs(ctx context.Context) ([]Input, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf(fmtInputList, c.settingsRoot()), nil)
	if err != nil {
		return nil, err
	}

	inputs := make([]Input, 0, len(env.Items))
	for _, it := range env.Items {
		in := Input{Name: it.Name, FriendlyName: it.Name}
		// The user-assigned label rides in VALUE.NAME when one is set.
		var val struct {
			Name string `json:"NAME"`
		}
		if len(it.Value) > 0 && json.Unmarshal(it.Value, &val) == nil && val.Name != "" {
			in.FriendlyName = val.Name
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// SetInput switches to the named input, resolving friendly names to their
// internal identifiers.
func (c *HTTPController) SetInput(ctx context.Context, name string) error {
	inputs, err := c.Inputs(ctx)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		if strings.EqualFold(in.Name, name) || strings.EqualFold(in.FriendlyName, name) {
			return c.modifyItem(ctx, fmt.Sprintf(fmtCurrentInput, c.settingsRoot()), in.Name)
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownInput, name)
}

// CurrentApp returns the name of the running app, resolved through the
// known-apps catalogue. Unknown app IDs report as "" without error.
func (c *HTTPController) CurrentApp(ctx context.Context) (string, error) {
	it, err := c.getItem(ctx, pathCurrentApp)
	if err != nil {
		return "", err
	}
	var val struct {
		AppID     string `json:"APP_ID"`
		Namespace int    `json:"NAME_SPACE"`
	}
	if err := json.Unmarshal(it.Value, &val); err != nil {
		return "", fmt.Errorf("decoding current app: %w", err)
	}
	if app, ok := LookupAppID(val.AppID, val.Namespace); ok {
		return app.Name, nil
	}
	return "", nil
}

// LaunchApp launches an app from the known-apps catalogue by name.
func (c *HTTPController) LaunchApp(ctx context.Context, name string) error {
	app, ok := LookupApp(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownApp, name)
	}
	_, err := c.do(ctx, http.MethodPut, pathLaunchApp, map[string]any{
		"VALUE": map[string]any{
			"APP_ID":     app.ID,
			"NAME_SPACE": app.Namespace,
			"MESSAGE":    app.Message,
		},
	})
	return err
}

// stringItem fetches a settings item whose value is a plain string.
func (c *HTTPController) stringItem(ctx context.Context, path string) (string, error) {
	it, err := c.getItem(ctx, path)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(it.Value, &s); err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return s, nil
}

// SerialNumber returns the device serial number.
func (c *HTTPController) SerialNumber(ctx context.Context) (string, error) {
	return c.stringItem(ctx, fmt.Sprintf(fmtSerialNumber, c.settingsRoot()))
}

// ESN returns the device's electronic serial number.
func (c *HTTPController) ESN(ctx context.Context) (string, error) {
	return c.stringItem(ctx, fmt.Sprintf(fmtESN, c.settingsRoot()))
}

// Version returns the firmware version string.
func (c *HTTPController) Version(ctx context.Context) (string, error) {
	return c.stringItem(ctx, fmt.Sprintf(fmtVersion, c.settingsRoot()))
}

// ChargingStatus reports whether a portable device is on charge.
func (c *HTTPController) ChargingStatus(ctx context.Context) (bool, error) {
	it, err := c.getItem(ctx, pathChargingStat)
	if err != nil {
		return false, err
	}
	var charging int
	if err := json.Unmarshal(it.Value, &charging); err != nil {
		return false, fmt.Errorf("decoding charging status: %w", err)
	}
	return charging == 1, nil
}

// BatteryLevel returns the battery percentage for portable devices.
func (c *HTTPController) BatteryLevel(ctx context.Context) (int, error) {
	it, err := c.getItem(ctx, pathBatteryLevel)
	if err != nil {
		return 0, err
	}
	var level int
	if err := json.Unmarshal(it.Value, &level); err != nil {
		return 0, fmt.Errorf("decoding battery level: %w", err)
	}
	return level, nil
}

// StartPair begins a pairing exchange. The device displays a PIN on screen
// (TVs) or pairs immediately (soundbars, which return an empty PIN step).
func (c *HTTPController) StartPair(ctx context.Context) (*PairChallenge, error) {
	env, err := c.do(ctx, http.MethodPut, pathPairStart, map[string]any{
		"DEVICE_ID":   c.cfg.DeviceID,
		"DEVICE_NAME": c.cfg.DeviceName,
	})
	if err != nil {
		return nil, err
	}
	var val struct {
		ChallengeType int `json:"CHALLENGE_TYPE"`
		ReqToken      int `json:"PAIRING_REQ_TOKEN"`
	}
	if err := json.Unmarshal(env.Item.Value, &val); err != nil {
		return nil, fmt.Errorf("decoding pairing challenge: %w", err)
	}
	return &PairChallenge{ChallengeType: val.ChallengeType, Token: val.ReqToken}, nil
}

// FinishPair completes a pairing exchange and returns the auth token.
func (c *HTTPController) FinishPair(ctx context.Context, ch *PairChallenge, pin string) (string, error) {
	if ch == nil {
		return "", fmt.Errorf("%w: no challenge in flight", ErrPairingDenied)
	}
	// Soundbars skip the PIN; the device accepts "0000" for that flow.
	pin = strings.TrimSpace(pin)
	if pin == "" {
		pin = "0000"
	}
	env, err := c.do(ctx, http.MethodPut, pathPairFinish, map[string]any{
		"DEVICE_ID":         c.cfg.DeviceID,
		"CHALLENGE_TYPE":    ch.ChallengeType,
		"RESPONSE_VALUE":    pin,
		"PAIRING_REQ_TOKEN": ch.Token,
	})
	if err != nil {
		return "", err
	}
	var val struct {
		AuthToken string `json:"AUTH_TOKEN"`
	}
	if err := json.Unmarshal(env.Item.Value, &val); err != nil {
		return "", fmt.Errorf("decoding auth token: %w", err)
	}
	if val.AuthToken == "" {
		return "", fmt.Errorf("%w: device returned empty auth token", ErrPairingDenied)
	}
	return val.AuthToken, nil
}

// CancelPair abandons an in-flight pairing exchange.
func (c *HTTPController) CancelPair(ctx context.Context, ch *PairChallenge) error {
	if ch == nil {
		return nil
	}
	_, err := c.do(ctx, http.MethodPut, pathPairCancel, map[string]any{
		"DEVICE_ID":         c.cfg.DeviceID,
		"CHALLENGE_TYPE":    ch.ChallengeType,
		"RESPONSE_VALUE":    "1111",
		"PAIRING_REQ_TOKEN": ch.Token,
	})
	return err
}
