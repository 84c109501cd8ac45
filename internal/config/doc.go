// Package config provides user configuration management for budsctl.
//
// This package manages a YAML-based configuration file that stores
// metadata for paired Galaxy Buds (nicknames, RFCOMM channel, serial
// numbers) and application preferences such as the default device. The
// configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/budsctl/config.yaml or $HOME/.config/budsctl/config.yaml
//   - macOS: $HOME/.config/budsctl/config.yaml
//   - Windows: %LOCALAPPDATA%\budsctl\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Record a successful connection; the address becomes the default
//	registry.UpdateLastConnected("80:7B:3E:21:79:EA")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
