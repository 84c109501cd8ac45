package device

import "fmt"

// EqualizerType selects the sound equalizing preset.
type EqualizerType uint8

const (
	EqualizerNormal      EqualizerType = 0
	EqualizerBassBoost   EqualizerType = 1
	EqualizerSoft        EqualizerType = 2
	EqualizerDynamic     EqualizerType = 3
	EqualizerClear       EqualizerType = 4
	EqualizerTrebleBoost EqualizerType = 5
)

func (t EqualizerType) String() string {
	switch t {
	case EqualizerNormal:
		return "normal"
	case EqualizerBassBoost:
		return "bass-boost"
	case EqualizerSoft:
		return "soft"
	case EqualizerDynamic:
		return "dynamic"
	case EqualizerClear:
		return "clear"
	case EqualizerTrebleBoost:
		return "treble-boost"
	default:
		return fmt.Sprintf("equalizer(%d)", uint8(t))
	}
}

// ParseEqualizerType maps a preset name back to its code.
func ParseEqualizerType(s string) (EqualizerType, error) {
	for t := EqualizerNormal; t <= EqualizerTrebleBoost; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown equalizer type %q", s)
}

// NoiseControls selects the noise reduction mode.
type NoiseControls uint8

const (
	NoiseControlsOff           NoiseControls = 0
	NoiseControlsAnc           NoiseControls = 1
	NoiseControlsAmbientSounds NoiseControls = 2
)

func (n NoiseControls) String() string {
	switch n {
	case NoiseControlsOff:
		return "off"
	case NoiseControlsAnc:
		return "anc"
	case NoiseControlsAmbientSounds:
		return "ambient-sounds"
	default:
		return fmt.Sprintf("noise-controls(%d)", uint8(n))
	}
}

// ParseNoiseControls maps a mode name back to its code.
func ParseNoiseControls(s string) (NoiseControls, error) {
	for n := NoiseControlsOff; n <= NoiseControlsAmbientSounds; n++ {
		if n.String() == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown noise controls mode %q", s)
}

// TouchpadOption is a touch-and-hold action assignable to an earbud.
type TouchpadOption uint8

const (
	// TouchpadAnc toggles between ANC and ambient sounds.
	TouchpadAnc TouchpadOption = 2
	// TouchpadVolume: right is up, left is down.
	TouchpadVolume TouchpadOption = 3
	// TouchpadSpotify is hard-coded in the vendor app.
	TouchpadSpotify TouchpadOption = 4
	// TouchpadApp5 and TouchpadApp6 are configurable in the vendor app.
	TouchpadApp5 TouchpadOption = 5
	TouchpadApp6 TouchpadOption = 6
)

func (o TouchpadOption) String() string {
	switch o {
	case TouchpadAnc:
		return "anc"
	case TouchpadVolume:
		return "volume"
	case TouchpadSpotify:
		return "spotify"
	case TouchpadApp5:
		return "app5"
	case TouchpadApp6:
		return "app6"
	default:
		return fmt.Sprintf("touchpad-option(%d)", uint8(o))
	}
}

// ParseTouchpadOption maps an option name back to its code.
func ParseTouchpadOption(s string) (TouchpadOption, error) {
	for o := TouchpadAnc; o <= TouchpadApp6; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown touchpad option %q", s)
}
