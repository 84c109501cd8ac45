package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	// Should not be empty
	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	// Should contain "budsctl"
	if !strings.Contains(configDir, "budsctl") {
		t.Errorf("GetConfigDir() = %v, should contain 'budsctl'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	// Should end with config.yaml
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	t.Logf("Config path: %s", configPath)
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}

	if reg.Preferences == nil {
		t.Error("NewRegistry().Preferences should not be nil")
	}

	if reg.Preferences.AckTimeoutSeconds != 10 {
		t.Errorf("NewRegistry().Preferences.AckTimeoutSeconds = %v, want 10", reg.Preferences.AckTimeoutSeconds)
	}
}

func TestRegistryEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	// First call should create device
	device1 := reg.EnsureDevice("80:7B:3E:21:79:EA")
	if device1 == nil {
		t.Fatal("EnsureDevice() returned nil")
	}

	// Second call should return same device
	device2 := reg.EnsureDevice("80:7B:3E:21:79:EA")
	if device1 != device2 {
		t.Error("EnsureDevice() should return same instance for same address")
	}

	// Different address should create new device
	device3 := reg.EnsureDevice("80:7B:3E:00:00:01")
	if device1 == device3 {
		t.Error("EnsureDevice() should create new instance for different address")
	}
}

func TestRegistryUpdateLastConnected(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateLastConnected("80:7B:3E:21:79:EA")
	after := time.Now()

	device := reg.GetDevice("80:7B:3E:21:79:EA")
	if device == nil {
		t.Fatal("Device should exist after UpdateLastConnected()")
	}

	if device.LastConnected.Before(before) || device.LastConnected.After(after) {
		t.Errorf("LastConnected = %v, should be between %v and %v", device.LastConnected, before, after)
	}

	if reg.Preferences.DefaultAddress != "80:7B:3E:21:79:EA" {
		t.Errorf("DefaultAddress = %v, want the connected address", reg.Preferences.DefaultAddress)
	}
}

func TestRegistrySetSerialNumbers(t *testing.T) {
	reg := NewRegistry()

	reg.SetSerialNumbers("80:7B:3E:21:79:EA", "R3AL1234567L", "R3AL1234567R")

	device := reg.GetDevice("80:7B:3E:21:79:EA")
	if device == nil {
		t.Fatal("Device should exist after SetSerialNumbers()")
	}

	if device.SerialLeft != "R3AL1234567L" {
		t.Errorf("SerialLeft = %v, want 'R3AL1234567L'", device.SerialLeft)
	}

	if device.SerialRight != "R3AL1234567R" {
		t.Errorf("SerialRight = %v, want 'R3AL1234567R'", device.SerialRight)
	}
}

func TestRegistrySetNickname(t *testing.T) {
	reg := NewRegistry()

	reg.SetNickname("80:7B:3E:21:79:EA", "My Buds Pro")

	device := reg.GetDevice("80:7B:3E:21:79:EA")
	if device == nil {
		t.Fatal("Device should exist after SetNickname()")
	}

	if device.Nickname != "My Buds Pro" {
		t.Errorf("Nickname = %v, want 'My Buds Pro'", device.Nickname)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "budsctl-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	testConfigPath := filepath.Join(tmpDir, "config.yaml")

	// Create and populate registry
	reg := NewRegistry()
	reg.SetNickname("80:7B:3E:21:79:EA", "My Buds Pro")
	reg.SetSerialNumbers("80:7B:3E:21:79:EA", "R3AL1234567L", "R3AL1234567R")
	reg.UpdateLastConnected("80:7B:3E:21:79:EA")

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("Failed to marshal registry: %v", err)
	}

	if err := os.WriteFile(testConfigPath, data, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	raw, err := os.ReadFile(testConfigPath)
	if err != nil {
		t.Fatalf("Failed to read test config: %v", err)
	}

	var loaded Registry
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("Failed to parse test config: %v", err)
	}

	device := loaded.GetDevice("80:7B:3E:21:79:EA")
	if device == nil {
		t.Fatal("Device should exist in loaded registry")
	}

	if device.Nickname != "My Buds Pro" {
		t.Errorf("Loaded nickname = %v, want 'My Buds Pro'", device.Nickname)
	}

	if device.SerialLeft != "R3AL1234567L" {
		t.Errorf("Loaded serial = %v, want 'R3AL1234567L'", device.SerialLeft)
	}

	if loaded.Preferences == nil || loaded.Preferences.DefaultAddress != "80:7B:3E:21:79:EA" {
		t.Error("Loaded registry should keep the default address")
	}
}

// Benchmark tests

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkEnsureDevice(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureDevice("80:7B:3E:21:79:EA")
	}
}
