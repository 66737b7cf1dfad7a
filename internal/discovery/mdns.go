package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/grandcat/zeroconf"
)

// SmartCast devices announce their API endpoint over multicast DNS.
const (
	mdnsService = "_viziocast._tcp"
	mdnsDomain  = "local."
)

// MDNSStrategy discovers devices via multicast DNS. It is the primary
// strategy: the announcement carries the API port directly, so devices it
// finds can be connected to without guessing.
type MDNSStrategy struct {
	// newResolver is swappable for tests.
	newResolver func() (*zeroconf.Resolver, error)
}

// NewMDNSStrategy creates the multicast DNS strategy.
func NewMDNSStrategy() *MDNSStrategy {
	return &MDNSStrategy{
		newResolver: func() (*zeroconf.Resolver, error) {
			return zeroconf.NewResolver(nil)
		},
	}
}

// Name returns the strategy identifier used in traces and results.
func (s *MDNSStrategy) Name() string {
	return "mdns"
}

// Discover browses for SmartCast announcements until ctx expires and
// returns every device that answered.
func (s *MDNSStrategy) Discover(ctx context.Context) ([]DiscoveredDevice, error) {
	resolver, err := s.newResolver()
	if err != nil {
		return nil, fmt.Errorf("initialising mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan []DiscoveredDevice, 1)

	go func() {
		var found []DiscoveredDevice
		for entry := range entries {
			if dev, ok := deviceFromEntry(entry); ok {
				found = append(found, dev)
			}
		}
		done <- found
	}()

	if err := resolver.Browse(ctx, mdnsService, mdnsDomain, entries); err != nil {
		return nil, fmt.Errorf("browsing %s: %w", mdnsService, err)
	}

	// The resolver closes entries once ctx expires.
	<-ctx.Done()
	return <-done, nil
}

// deviceFromEntry converts one mDNS answer into a device, skipping entries
// without an IPv4 address.
func deviceFromEntry(entry *zeroconf.ServiceEntry) (DiscoveredDevice, bool) {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return DiscoveredDevice{}, false
	}

	dev := DiscoveredDevice{
		Name:   entry.Instance,
		Host:   entry.AddrIPv4[0].String(),
		Port:   entry.Port,
		Source: "mdns",
	}

	// TXT records may carry a cleaner name and the device ID.
	for _, txt := range entry.Text {
		key, value, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "name":
			if value != "" {
				dev.Name = value
			}
		case "id", "uuid":
			if dev.UDN == "" {
				dev.UDN = value
			}
		}
	}
	return dev, true
}
