package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for paired earbuds and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Devices     map[string]*Earbuds `yaml:"devices,omitempty"` // Keyed by Bluetooth address
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Earbuds represents user-defined metadata for one paired set of earbuds.
// This is keyed by the Bluetooth address ("80:7B:3E:21:79:EA") in the Registry.
type Earbuds struct {
	Nickname      string    `yaml:"nickname,omitempty"`       // User-friendly name
	Channel       int       `yaml:"channel,omitempty"`        // RFCOMM channel (0 = default)
	LastConnected time.Time `yaml:"last_connected,omitempty"` // Last successful connection time
	SerialLeft    string    `yaml:"serial_left,omitempty"`    // Last known left serial number
	SerialRight   string    `yaml:"serial_right,omitempty"`   // Last known right serial number
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultAddress    string `yaml:"default_address,omitempty"` // Earbuds used when --address is omitted
	AckTimeoutSeconds int    `yaml:"ack_timeout_seconds"`       // Per-request acknowledgement timeout
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Earbuds),
		Preferences: &Preferences{
			AckTimeoutSeconds: 10,
		},
	}
}

// GetDevice retrieves earbuds metadata by Bluetooth address.
// Returns nil if the address isn't in the registry.
func (r *Registry) GetDevice(address string) *Earbuds {
	return r.Devices[address]
}

// EnsureDevice ensures an earbuds entry exists in the registry.
// If there is none for the address, creates a new entry with default values.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureDevice(address string) *Earbuds {
	if r.Devices == nil {
		r.Devices = make(map[string]*Earbuds)
	}

	if device, exists := r.Devices[address]; exists {
		return device
	}

	device := &Earbuds{}
	r.Devices[address] = device
	return device
}

// UpdateLastConnected records a successful connection to the earbuds
// and makes them the default for future invocations.
func (r *Registry) UpdateLastConnected(address string) {
	device := r.EnsureDevice(address)
	device.LastConnected = time.Now()
	if r.Preferences == nil {
		r.Preferences = &Preferences{AckTimeoutSeconds: 10}
	}
	r.Preferences.DefaultAddress = address
}

// SetSerialNumbers stores the per-earbud serial numbers read from the device.
func (r *Registry) SetSerialNumbers(address, left, right string) {
	device := r.EnsureDevice(address)
	device.SerialLeft = left
	device.SerialRight = right
}

// SetNickname sets a user-friendly nickname for a set of earbuds.
func (r *Registry) SetNickname(address, nickname string) {
	device := r.EnsureDevice(address)
	device.Nickname = nickname
}
