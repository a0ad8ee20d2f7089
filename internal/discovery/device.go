package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jsoutter/golyngdorf/internal/descriptor"
)

// Device represents a discovered Lyngdorf processor on the network.
type Device struct {
	// Name is the mDNS service instance name (e.g., "MP-60 Living Room").
	Name string

	// Hostname is the mDNS hostname (e.g., "lyngdorf-mp60.local.").
	Hostname string

	// IP is the resolved address, IPv4 preferred.
	IP string

	// Port is the control protocol port (typically 84).
	Port int

	// Model is the device model, when the advertisement carried one.
	Model descriptor.DeviceModel

	// Metadata contains the remaining mDNS TXT record data.
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered.
	DiscoveredAt time.Time
}

// String returns a human-readable description of the device.
func (d *Device) String() string {
	model := "unknown model"
	if d.Model != "" {
		model = string(d.Model)
	}
	return fmt.Sprintf("Lyngdorf %s %q at %s:%d", model, d.Name, d.IP, d.Port)
}

// Addr returns the host:port address of the control interface.
func (d *Device) Addr() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// GetMetadata retrieves a TXT metadata value, or "" if absent.
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
