package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/jsoutter/golyngdorf/internal/descriptor"
	"github.com/jsoutter/golyngdorf/internal/protocol"
)

const (
	// ServiceType is the mDNS service type Lyngdorf processors
	// advertise their control interface under.
	ServiceType = "_lyngdorf._tcp"

	// ServiceDomain is the mDNS domain (typically "local.").
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery.
	DefaultScanTimeout = 10 * time.Second
)

// Scanner handles mDNS device discovery.
type Scanner struct {
	// Timeout is the maximum time to wait for device discovery.
	Timeout time.Duration
}

// NewScanner creates a scanner with default settings.
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// ScanForDevices discovers all Lyngdorf processors on the local network.
func (s *Scanner) ScanForDevices() ([]*Device, error) {
	return s.ScanForDevicesWithContext(context.Background())
}

// ScanForDevicesWithContext discovers devices with a custom context.
func (s *Scanner) ScanForDevicesWithContext(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	devices := make([]*Device, 0)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for entry := range entries {
			if device := s.parseServiceEntry(entry); device != nil {
				devices = append(devices, device)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-collected

	return devices, nil
}

// WaitForDevice waits for a device whose instance name or hostname
// contains the given fragment (case-insensitive).
func (s *Scanner) WaitForDevice(name string) (*Device, error) {
	return s.WaitForDeviceWithContext(context.Background(), name)
}

// WaitForDeviceWithContext waits for a matching device with a custom context.
func (s *Scanner) WaitForDeviceWithContext(ctx context.Context, name string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	deviceChan := make(chan *Device, 1)
	needle := strings.ToLower(name)

	go func() {
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device == nil {
				continue
			}
			if strings.Contains(strings.ToLower(device.Name), needle) ||
				strings.Contains(strings.ToLower(device.Hostname), needle) {
				deviceChan <- device
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-deviceChan:
		return device, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("device matching %q not found within timeout", name)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil when the entry carries no usable address.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = protocol.DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Device{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Model:        extractModel(entry.Instance, metadata),
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// extractModel finds the device model in the TXT records or, failing
// that, in the service instance name ("MP-60 Living Room").
func extractModel(instance string, metadata map[string]string) descriptor.DeviceModel {
	for _, key := range []string{"model", "md"} {
		if value, ok := metadata[key]; ok {
			if model, ok := descriptor.ModelByName(value); ok {
				return model
			}
		}
	}
	for _, word := range strings.Fields(instance) {
		if model, ok := descriptor.ModelByName(word); ok {
			return model
		}
	}
	return ""
}

// ScanForDevices scans for devices with a custom timeout.
func ScanForDevices(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForDevices()
}

// QuickScan performs a fast scan with a 3-second timeout.
func QuickScan() ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForDevices()
}

// FindDevice searches for a named device with the default timeout.
func FindDevice(name string) (*Device, error) {
	return NewScanner().WaitForDevice(name)
}
