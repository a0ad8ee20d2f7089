package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir == "" {
		t.Fatal("GetConfigDir() returned empty string")
	}
	if !strings.Contains(configDir, appName) {
		t.Errorf("GetConfigDir() = %v, should contain %q", configDir, appName)
	}
	if runtime.GOOS != "windows" && !strings.Contains(configDir, ".config") {
		t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != configFile {
		t.Errorf("GetConfigPath() should end with %q, got: %v", configFile, configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg.Version != 1 {
		t.Errorf("Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("Devices should not be nil")
	}
	if reg.Preferences == nil || !reg.Preferences.AutoDiscover || reg.Preferences.DiscoverTimeout != 10 {
		t.Errorf("Preferences = %+v, want auto_discover=true, discover_timeout=10", reg.Preferences)
	}
}

func TestRegistrySetDevice(t *testing.T) {
	reg := NewRegistry()

	device, err := reg.SetDevice("living-room", "192.168.1.40", 0, "MP-60")
	if err != nil {
		t.Fatalf("SetDevice() error = %v", err)
	}
	if device.EffectivePort() != 84 {
		t.Errorf("EffectivePort() = %v, want protocol default 84", device.EffectivePort())
	}
	if model, ok := device.DeviceModel(); !ok || string(model) != "MP-60" {
		t.Errorf("DeviceModel() = %v, %v", model, ok)
	}

	if _, err := reg.SetDevice("", "192.168.1.40", 0, ""); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := reg.SetDevice("x", "", 0, ""); err == nil {
		t.Error("empty host accepted")
	}
	if _, err := reg.SetDevice("x", "192.168.1.41", 0, "CD-1"); err == nil {
		t.Error("unknown model accepted")
	}

	// No configured model: wait for the device announcement.
	device, err = reg.SetDevice("office", "192.168.1.42", 7000, "")
	if err != nil {
		t.Fatalf("SetDevice() error = %v", err)
	}
	if device.EffectivePort() != 7000 {
		t.Errorf("EffectivePort() = %v, want 7000", device.EffectivePort())
	}
	if _, ok := device.DeviceModel(); ok {
		t.Error("DeviceModel() reported ok for empty model")
	}
}

func TestRegistryRemoveDevice(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.SetDevice("living-room", "192.168.1.40", 0, ""); err != nil {
		t.Fatalf("SetDevice() error = %v", err)
	}
	reg.Preferences.DefaultDevice = "living-room"

	if !reg.RemoveDevice("living-room") {
		t.Error("RemoveDevice() = false for existing device")
	}
	if reg.RemoveDevice("living-room") {
		t.Error("RemoveDevice() = true for removed device")
	}
	if reg.Preferences.DefaultDevice != "" {
		t.Error("removing the default device should clear the default")
	}
}

func TestRegistryUpdateDeviceLastSeen(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.SetDevice("living-room", "192.168.1.40", 0, ""); err != nil {
		t.Fatalf("SetDevice() error = %v", err)
	}

	before := time.Now()
	reg.UpdateDeviceLastSeen("living-room")
	after := time.Now()

	seen := reg.GetDevice("living-room").LastSeen
	if seen.Before(before) || seen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", seen, before, after)
	}

	// Unknown names are ignored.
	reg.UpdateDeviceLastSeen("missing")
}

func TestRegistrySaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFile)

	reg := NewRegistry()
	if _, err := reg.SetDevice("living-room", "192.168.1.40", 0, "MP-60"); err != nil {
		t.Fatalf("SetDevice() error = %v", err)
	}
	reg.Preferences.DefaultDevice = "living-room"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadRegistryFromPath(path)
	if err != nil {
		t.Fatalf("LoadRegistryFromPath() error = %v", err)
	}
	device := loaded.GetDevice("living-room")
	if device == nil {
		t.Fatal("loaded registry missing device")
	}
	if device.Host != "192.168.1.40" || device.Model != "MP-60" {
		t.Errorf("loaded device = %+v", device)
	}
	if loaded.Preferences.DefaultDevice != "living-room" {
		t.Errorf("DefaultDevice = %q, want living-room", loaded.Preferences.DefaultDevice)
	}
}

func TestLoadRegistryFromPathMissingFile(t *testing.T) {
	loaded, err := LoadRegistryFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFromPath() error = %v", err)
	}
	if loaded.Version != 1 || len(loaded.Devices) != 0 {
		t.Errorf("missing file should yield a fresh default registry, got %+v", loaded)
	}
}
