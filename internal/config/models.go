package config

import (
	"fmt"
	"time"

	"github.com/jsoutter/golyngdorf/internal/descriptor"
	"github.com/jsoutter/golyngdorf/internal/protocol"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // keyed by user-chosen name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device is one registered processor.
type Device struct {
	Host     string    `yaml:"host"`
	Port     int       `yaml:"port,omitempty"`      // 0 means the protocol default
	Model    string    `yaml:"model,omitempty"`     // e.g. "MP-60"; empty waits for announcement
	LastSeen time.Time `yaml:"last_seen,omitempty"` // last discovery or connection time
}

// Preferences holds application-wide settings.
type Preferences struct {
	AutoDiscover    bool   `yaml:"auto_discover"`
	DiscoverTimeout int    `yaml:"discover_timeout"` // seconds
	DefaultDevice   string `yaml:"default_device,omitempty"`
}

// NewRegistry creates a registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
		},
	}
}

// GetDevice retrieves a device entry by name, nil if unknown.
func (r *Registry) GetDevice(name string) *Device {
	return r.Devices[name]
}

// SetDevice adds or replaces a device entry. A non-empty model must be
// one of the supported device models.
func (r *Registry) SetDevice(name, host string, port int, model string) (*Device, error) {
	if name == "" {
		return nil, fmt.Errorf("device name must not be empty")
	}
	if host == "" {
		return nil, fmt.Errorf("device host must not be empty")
	}
	if model != "" {
		if _, ok := descriptor.ModelByName(model); !ok {
			return nil, fmt.Errorf("unknown device model %q", model)
		}
	}
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	device := &Device{Host: host, Port: port, Model: model}
	r.Devices[name] = device
	return device, nil
}

// RemoveDevice deletes a device entry, reporting whether it existed.
func (r *Registry) RemoveDevice(name string) bool {
	if _, ok := r.Devices[name]; !ok {
		return false
	}
	delete(r.Devices, name)
	if r.Preferences != nil && r.Preferences.DefaultDevice == name {
		r.Preferences.DefaultDevice = ""
	}
	return true
}

// UpdateDeviceLastSeen records that a device was reachable now.
func (r *Registry) UpdateDeviceLastSeen(name string) {
	if device, ok := r.Devices[name]; ok {
		device.LastSeen = time.Now()
	}
}

// EffectivePort returns the configured port or the protocol default.
func (d *Device) EffectivePort() int {
	if d.Port != 0 {
		return d.Port
	}
	return protocol.DefaultPort
}

// DeviceModel resolves the configured model string. ok is false when no
// model is configured or the string is not a supported model.
func (d *Device) DeviceModel() (descriptor.DeviceModel, bool) {
	if d.Model == "" {
		return "", false
	}
	return descriptor.ModelByName(d.Model)
}
