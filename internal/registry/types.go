package registry

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// MaxFavorites is the capacity of a record's favourites list.
const MaxFavorites = 6

// DeviceClass categorises a saved device. It selects the settings tree used
// when talking to the device and which status probes apply.
type DeviceClass string

// Supported device classes.
const (
	// DeviceClassTV is a SmartCast television.
	DeviceClassTV DeviceClass = "tv"

	// DeviceClassSpeaker is a soundbar or fixed speaker.
	DeviceClassSpeaker DeviceClass = "speaker"

	// DeviceClassCrave360 is a battery-powered portable speaker.
	DeviceClassCrave360 DeviceClass = "crave360"
)

// IsValid reports whether the device class is recognised.
func (c DeviceClass) IsValid() bool {
	switch c {
	case DeviceClassTV, DeviceClassSpeaker, DeviceClassCrave360:
		return true
	}
	return false
}

// DeviceRecord is one saved device. The JSON field names are the on-disk
// store format and must not change.
type DeviceRecord struct {
	// Name is the device's friendly name as saved by the user.
	Name string `json:"name"`

	// Host is the device's IP address or hostname.
	Host string `json:"ip"`

	// Port is the device's API port. A nil port means the device was
	// saved without one and needs re-discovery before connecting.
	Port *int `json:"port"`

	// DeviceType categorises the device.
	DeviceType DeviceClass `json:"device_type"`

	// AuthToken is the pairing token authorising control calls. Empty
	// until the device has been paired.
	AuthToken string `json:"auth_token"`

	// SavedAt records when the device was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Favorites is the ordered list of favourite app names, at most
	// MaxFavorites entries.
	Favorites []string `json:"favorites"`

	// SerialNumber, ESN and Version are enrichment fields captured
	// best-effort at save time; any of them may be empty.
	SerialNumber string `json:"serial_number,omitempty"`
	ESN          string `json:"esn,omitempty"`
	Version      string `json:"version,omitempty"`

	// UDN is the unique device name reported by discovery, when known.
	UDN string `json:"udn,omitempty"`
}

// Key returns the record's identity, formed from host and port. Two records
// with the same key refer to the same device.
func (r *DeviceRecord) Key() string {
	return deviceKey(r.Host, r.PortValue())
}

// PortValue returns the port, or 0 when none is recorded.
func (r *DeviceRecord) PortValue() int {
	if r.Port == nil {
		return 0
	}
	return *r.Port
}

// Address returns the host:port form used in logs and display.
func (r *DeviceRecord) Address() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.PortValue()))
}

// Validate checks the record is storable.
func (r *DeviceRecord) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidRecord)
	}
	if r.Port != nil && (*r.Port <= 0 || *r.Port > 65535) {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidRecord, *r.Port)
	}
	if r.DeviceType != "" && !r.DeviceType.IsValid() {
		return fmt.Errorf("%w: unrecognised device type %q", ErrInvalidRecord, r.DeviceType)
	}
	if len(r.Favorites) > MaxFavorites {
		return fmt.Errorf("%w: %d favourites exceeds limit of %d",
			ErrInvalidRecord, len(r.Favorites), MaxFavorites)
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *DeviceRecord) Clone() *DeviceRecord {
	out := *r
	if r.Port != nil {
		p := *r.Port
		out.Port = &p
	}
	if r.Favorites != nil {
		out.Favorites = make([]string, len(r.Favorites))
		copy(out.Favorites, r.Favorites)
	}
	return &out
}

// deviceKey builds the identity key shared by lookup and upsert.
func deviceKey(host string, port int) string {
	return net.JoinHostPort(strings.TrimSpace(host), strconv.Itoa(port))
}
