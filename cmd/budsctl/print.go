package main

import (
	"fmt"

	"github.com/galaxybuds/budspro/internal/device"
	"github.com/galaxybuds/budspro/internal/message"
)

func placementName(p uint8) string {
	switch p {
	case message.PlacementWearing:
		return "wearing"
	case message.PlacementTable:
		return "outside"
	case message.PlacementCase:
		return "in case"
	default:
		return fmt.Sprintf("unknown (%d)", p)
	}
}

func batteryCaseString(level int) string {
	if level < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d%%", level)
}

func printVersionInfo(v *message.VersionInfo) {
	fmt.Println("Firmware:")
	fmt.Printf("  Hardware:  left %d, right %d\n", v.LeftHWVersion, v.RightHWVersion)
	fmt.Printf("  Software:  left %d.%d.%d, right %d.%d.%d\n",
		v.LeftSWVersionFlags, v.LeftSWVersionDate, v.LeftSWVersionVer,
		v.RightSWVersionFlags, v.RightSWVersionDate, v.RightSWVersionVer)
	fmt.Printf("  Touch:     left %d, right %d\n", v.LeftTouchFWVersion, v.RightTouchFWVersion)
}

func printExtendedStatus(s *message.ExtendedStatusUpdated) {
	fmt.Println("Status:")
	fmt.Printf("  Battery:        left %d%%, right %d%%, case %s\n",
		s.BatteryLeft, s.BatteryRight, batteryCaseString(s.BatteryCase()))
	fmt.Printf("  Placement:      left %s, right %s\n",
		placementName(s.PlacementLeft), placementName(s.PlacementRight))
	fmt.Printf("  Coupled:        %v\n", s.Coupled)
	fmt.Printf("  Noise controls: %s\n", device.NoiseControls(s.NoiseControls))
	fmt.Printf("  Equalizer:      %s\n", device.EqualizerType(s.EqualizerType))
	fmt.Printf("  Touchpad:       enabled=%v, hold: left %s, right %s\n",
		s.TouchpadConfig,
		device.TouchpadOption(s.TouchpadOptionLeft),
		device.TouchpadOption(s.TouchpadOptionRight))
	fmt.Printf("  Voice wake-up:  %v\n", s.VoiceWakeUp)
	fmt.Printf("  Seamless conn:  %v\n", s.SeamlessConnection())
	fmt.Printf("  Ambient level:  %d\n", s.AmbientSoundLevel)
	fmt.Printf("  ANC level:      %d\n", s.NoiseReductionLevel)
	if s.SpatialAudio != nil {
		fmt.Printf("  Spatial audio:  %v\n", *s.SpatialAudio)
	}
	if s.SideTone != nil {
		fmt.Printf("  Side tone:      %v\n", *s.SideTone)
	}
	if s.CallPathControl != nil {
		fmt.Printf("  Call path ctl:  %v\n", *s.CallPathControl)
	}
}

// statusSnapshot is the subset of status that 'listen status' watches.
type statusSnapshot struct {
	batteryLeft    uint8
	batteryRight   uint8
	batteryCase    int
	placementLeft  uint8
	placementRight uint8
	noiseControls  uint8
}

func snapshotStatus(s *message.ExtendedStatusUpdated) *statusSnapshot {
	if s == nil {
		return nil
	}
	return &statusSnapshot{
		batteryLeft:    s.BatteryLeft,
		batteryRight:   s.BatteryRight,
		batteryCase:    s.BatteryCase(),
		placementLeft:  s.PlacementLeft,
		placementRight: s.PlacementRight,
		noiseControls:  s.NoiseControls,
	}
}

func (s *statusSnapshot) equal(o *statusSnapshot) bool {
	return o != nil && *s == *o
}

// printStatusDiff prints the fields that changed between two
// snapshots; with no previous snapshot everything is printed.
func printStatusDiff(prev, next *statusSnapshot) {
	if prev == nil {
		fmt.Printf("battery left %d%% right %d%% case %s; left %s, right %s; noise controls %s\n",
			next.batteryLeft, next.batteryRight, batteryCaseString(next.batteryCase),
			placementName(next.placementLeft), placementName(next.placementRight),
			device.NoiseControls(next.noiseControls))
		return
	}

	if next.batteryLeft != prev.batteryLeft || next.batteryRight != prev.batteryRight ||
		next.batteryCase != prev.batteryCase {
		fmt.Printf("battery: left %d%%, right %d%%, case %s\n",
			next.batteryLeft, next.batteryRight, batteryCaseString(next.batteryCase))
	}
	if next.placementLeft != prev.placementLeft {
		fmt.Printf("left earbud: %s\n", placementName(next.placementLeft))
	}
	if next.placementRight != prev.placementRight {
		fmt.Printf("right earbud: %s\n", placementName(next.placementRight))
	}
	if next.noiseControls != prev.noiseControls {
		fmt.Printf("noise controls: %s\n", device.NoiseControls(next.noiseControls))
	}
}
