package device

import (
	"testing"
	"time"

	"github.com/galaxybuds/budspro/internal/message"
	"github.com/galaxybuds/budspro/internal/protocol"
)

// extStatusBody builds a revision-1 extended status body (22-byte
// fixed prefix plus 6 tail bytes) with the given battery levels.
func extStatusBody(batteryLeft, batteryRight byte) []byte {
	body := make([]byte, 28)
	body[0] = 1 // revision
	body[2] = batteryLeft
	body[3] = batteryRight
	body[4] = 1    // coupled
	body[6] = 0x11 // both wearing
	body[7] = 80   // case battery
	body[9] = 2    // equalizer
	return body
}

func statusBody(batteryLeft, batteryRight, placement byte) []byte {
	return []byte{1, batteryLeft, batteryRight, 1, 0, placement, 80}
}

func pushFrame(tr *fakeTransport, id byte, body []byte) {
	tr.push(protocol.MakeFrame(id, body, false, false).Encode())
}

// waitCached blocks until the predicate holds or fails the test.
func waitCached(t *testing.T, c *StatusCache, what string, pred func() bool) {
	t.Helper()
	done := make(chan bool, 1)
	go func() { done <- c.WaitFor(pred) }()
	select {
	case ok := <-done:
		if !ok {
			t.Fatalf("cache closed while waiting for %s", what)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestCacheStoresLatest(t *testing.T) {
	dev, tr := newTestDevice(t)
	cache := dev.Status

	pushFrame(tr, message.IDVersionInfo, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	pushFrame(tr, message.IDNoiseControlsUpdate, []byte{2, 1})

	waitCached(t, cache, "version info", func() bool { return cache.VersionInfo() != nil })
	waitCached(t, cache, "noise controls update", func() bool { return cache.LatestNoiseControlsUpdate() != nil })

	if v := cache.VersionInfo(); v.LeftHWVersion != 2 {
		t.Errorf("LeftHWVersion = %d, want 2", v.LeftHWVersion)
	}
	if u := cache.LatestNoiseControlsUpdate(); u.NoiseControls != 2 {
		t.Errorf("NoiseControls = %d, want 2", u.NoiseControls)
	}
	if cache.LatestUsageReport() != nil {
		t.Error("LatestUsageReport should be nil before any report arrived")
	}
}

func TestCacheLatestReplacedByNewer(t *testing.T) {
	dev, tr := newTestDevice(t)
	cache := dev.Status

	pushFrame(tr, message.IDStatusUpdated, statusBody(50, 50, 0x11))
	pushFrame(tr, message.IDStatusUpdated, statusBody(49, 50, 0x11))

	waitCached(t, cache, "second status", func() bool {
		s := cache.LatestStatus()
		return s != nil && s.BatteryLeft == 49
	})
}

func TestCacheMergesStatusIntoExtended(t *testing.T) {
	dev, tr := newTestDevice(t)
	cache := dev.Status

	pushFrame(tr, message.IDExtendedStatusUpdated, extStatusBody(70, 75))
	waitCached(t, cache, "extended status", func() bool { return cache.MergedExtendedStatus() != nil })

	// A periodic update folds its fields onto the last full snapshot.
	pushFrame(tr, message.IDStatusUpdated, statusBody(60, 65, 0x13))
	waitCached(t, cache, "merged update", func() bool {
		return cache.MergedExtendedStatus().BatteryLeft == 60
	})

	merged := cache.MergedExtendedStatus()
	if merged.BatteryRight != 65 {
		t.Errorf("merged BatteryRight = %d, want 65", merged.BatteryRight)
	}
	if merged.PlacementLeft != message.PlacementWearing || merged.PlacementRight != message.PlacementCase {
		t.Errorf("merged placement = %d/%d, want 1/3", merged.PlacementLeft, merged.PlacementRight)
	}
	// Extended-only fields survive the merge untouched.
	if merged.EqualizerType != 2 {
		t.Errorf("merged EqualizerType = %d, want 2", merged.EqualizerType)
	}
	if merged.Revision != 1 {
		t.Errorf("merged Revision = %d, want the extended snapshot's 1", merged.Revision)
	}

	// The raw latest extended status is not rewritten by the merge.
	if raw := cache.LatestExtendedStatus(); raw.BatteryLeft != 70 {
		t.Errorf("LatestExtendedStatus().BatteryLeft = %d, want the original 70", raw.BatteryLeft)
	}
}

func TestCacheStatusBeforeExtendedIsNotMerged(t *testing.T) {
	dev, tr := newTestDevice(t)
	cache := dev.Status

	pushFrame(tr, message.IDStatusUpdated, statusBody(50, 50, 0x11))
	waitCached(t, cache, "status", func() bool { return cache.LatestStatus() != nil })

	if cache.MergedExtendedStatus() != nil {
		t.Error("merged snapshot should stay nil until a full extended status arrives")
	}
}

func TestCacheExtendedStatusReplacesMergedWholesale(t *testing.T) {
	dev, tr := newTestDevice(t)
	cache := dev.Status

	pushFrame(tr, message.IDExtendedStatusUpdated, extStatusBody(70, 75))
	waitCached(t, cache, "first extended status", func() bool { return cache.MergedExtendedStatus() != nil })

	pushFrame(tr, message.IDStatusUpdated, statusBody(60, 65, 0x11))
	waitCached(t, cache, "merge", func() bool { return cache.MergedExtendedStatus().BatteryLeft == 60 })

	// A fresh full snapshot supersedes everything merged so far.
	pushFrame(tr, message.IDExtendedStatusUpdated, extStatusBody(90, 91))
	waitCached(t, cache, "replacement", func() bool { return cache.MergedExtendedStatus().BatteryLeft == 90 })

	if merged := cache.MergedExtendedStatus(); merged.BatteryRight != 91 {
		t.Errorf("merged BatteryRight = %d, want 91", merged.BatteryRight)
	}
}

func TestWaitForReturnsFalseOnClose(t *testing.T) {
	tr := newFakeTransport()
	dev := NewDevice(tr)

	done := make(chan bool, 1)
	go func() {
		done <- dev.Status.WaitFor(func() bool { return false })
	}()

	// Give the waiter a moment to block, then tear the device down.
	time.Sleep(10 * time.Millisecond)
	if err := dev.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case ok := <-done:
		if ok {
			t.Error("WaitFor = true, want false after close")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitFor still blocked after device close")
	}
}

func TestWaitForAlreadySatisfied(t *testing.T) {
	dev, _ := newTestDevice(t)

	if !dev.Status.WaitFor(func() bool { return true }) {
		t.Error("WaitFor with an already-true predicate should return immediately")
	}
}
