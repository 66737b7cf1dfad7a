package discovery

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/koron/go-ssdp"
)

// ssdpSearchTarget matches the DIAL service SmartCast devices expose. The
// response does not carry the control API port; callers fall back to the
// default port when connecting to an SSDP-discovered device.
const ssdpSearchTarget = "urn:dial-multiscreen-org:device:dial:1"

// SSDPStrategy discovers devices via SSDP M-SEARCH. It is the fallback for
// networks where multicast DNS is filtered.
type SSDPStrategy struct {
	// search is swappable for tests.
	search func(waitSec int) ([]ssdp.Service, error)
}

// NewSSDPStrategy creates the SSDP strategy.
func NewSSDPStrategy() *SSDPStrategy {
	return &SSDPStrategy{
		search: func(waitSec int) ([]ssdp.Service, error) {
			return ssdp.Search(ssdpSearchTarget, waitSec, "")
		},
	}
}

// Name returns the strategy identifier used in traces and results.
func (s *SSDPStrategy) Name() string {
	return "ssdp"
}

// Discover issues an M-SEARCH and collects responses until the deadline
// derived from ctx. SSDP waits are whole seconds, minimum one.
func (s *SSDPStrategy) Discover(ctx context.Context) ([]DiscoveredDevice, error) {
	waitSec := 1
	if deadline, ok := ctx.Deadline(); ok {
		// Round up so a budget just under N seconds still waits N.
		if secs := int((time.Until(deadline) + time.Second - 1) / time.Second); secs > waitSec {
			waitSec = secs
		}
	}

	services, err := s.search(waitSec)
	if err != nil {
		return nil, fmt.Errorf("ssdp search: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found []DiscoveredDevice
	for _, svc := range services {
		if dev, ok := deviceFromService(svc); ok {
			found = append(found, dev)
		}
	}
	return found, nil
}

// deviceFromService converts one SSDP response into a device. The host
// comes from the description URL; the control port is unknown at this
// point, so it is left zero.
func deviceFromService(svc ssdp.Service) (DiscoveredDevice, bool) {
	loc, err := url.Parse(svc.Location)
	if err != nil || loc.Host == "" {
		return DiscoveredDevice{}, false
	}
	host := loc.Hostname()
	if net.ParseIP(host) == nil {
		return DiscoveredDevice{}, false
	}

	return DiscoveredDevice{
		Name:   host,
		Host:   host,
		UDN:    udnFromUSN(svc.USN),
		Source: "ssdp",
	}, true
}

// udnFromUSN extracts the bare device UUID from a USN header value such as
// "uuid:abc-123::urn:dial-multiscreen-org:device:dial:1".
func udnFromUSN(usn string) string {
	usn = strings.TrimPrefix(usn, "uuid:")
	if idx := strings.Index(usn, "::"); idx != -1 {
		usn = usn[:idx]
	}
	return usn
}
