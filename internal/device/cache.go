package device

import (
	"sync"

	"github.com/galaxybuds/budspro/internal/message"
	"github.com/galaxybuds/budspro/internal/protocol"
)

// cachedIDs are the message IDs the status cache remembers the latest
// value for.
var cachedIDs = []byte{
	message.IDUsageReport,
	message.IDMeteringReport,
	message.IDStatusUpdated,
	message.IDExtendedStatusUpdated,
	message.IDVersionInfo,
	message.IDNoiseControlsUpdate,
	message.IDVoiceWakeupListeningStatus,
	message.IDFotaResult,
}

// StatusCache listens for common messages and stores the last one per
// ID. It additionally maintains a merged extended-status snapshot: the
// earbuds burst full extended status at connection time but then send
// smaller periodic updates, so the merged snapshot folds those updates
// onto the last full one.
//
// All methods are safe for concurrent use. WaitFor predicates run
// under the cache lock on the dispatcher's delivery goroutine and must
// be cheap and side-effect-free.
type StatusCache struct {
	dispatcher *protocol.FrameDispatcher

	mu     sync.Mutex
	cond   *sync.Cond
	latest map[byte]message.Message
	merged *message.ExtendedStatusUpdated
	closed bool

	unlistens []func()
}

// NewStatusCache registers listeners on the dispatcher for the fixed
// set of cached IDs.
func NewStatusCache(d *protocol.FrameDispatcher) *StatusCache {
	c := &StatusCache{
		dispatcher: d,
		latest:     make(map[byte]message.Message),
	}
	c.cond = sync.NewCond(&c.mu)

	for _, id := range cachedIDs {
		c.unlistens = append(c.unlistens, c.listen(id))
	}
	return c
}

func (c *StatusCache) listen(id byte) func() {
	l := protocol.NewListener(func(frame *protocol.Frame, msg message.Message) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if frame == nil {
			// Dispatcher shut down; release every blocked WaitFor.
			c.closed = true
			c.cond.Broadcast()
			return
		}
		if msg == nil {
			return
		}

		switch id {
		case message.IDStatusUpdated:
			if c.merged != nil {
				c.mergeStatus(msg.(*message.StatusUpdated))
			}
		case message.IDExtendedStatusUpdated:
			// Full snapshot replaces the merged state wholesale.
			snapshot := *msg.(*message.ExtendedStatusUpdated)
			c.merged = &snapshot
		}

		c.latest[id] = msg
		c.cond.Broadcast()
	})

	c.dispatcher.Listen(id, l)
	return func() { c.dispatcher.Unlisten(id, l) }
}

// mergeStatus folds a periodic status update onto the merged extended
// snapshot, touching only the fields the small message carries (its
// revision stays out; extended-only fields stay untouched). Called
// with the lock held.
func (c *StatusCache) mergeStatus(s *message.StatusUpdated) {
	merged := *c.merged
	merged.BatteryLeft = s.BatteryLeft
	merged.BatteryRight = s.BatteryRight
	merged.Coupled = s.Coupled
	merged.PrimaryEarbud = s.PrimaryEarbud
	merged.PlacementLeft = s.PlacementLeft
	merged.PlacementRight = s.PlacementRight
	merged.BatteryCaseRaw = s.BatteryCaseRaw
	c.merged = &merged
}

// Close deregisters the cache from the dispatcher and releases any
// blocked WaitFor. Deliveries already in flight are silently dropped.
func (c *StatusCache) Close() {
	for _, unlisten := range c.unlistens {
		unlisten()
	}
	c.unlistens = nil

	c.mu.Lock()
	c.closed = true
	c.cond.Broadcast()
	c.mu.Unlock()
}

// WaitFor blocks until predicate returns true, re-checking on every
// cache update. It returns false if the cache (or the connection
// behind it) was closed before the predicate was satisfied.
//
// The predicate runs under the cache lock; it must not call back into
// the cache's locking methods and must be side-effect-free.
func (c *StatusCache) WaitFor(predicate func() bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if predicate() {
			return true
		}
		if c.closed {
			return false
		}
		c.cond.Wait()
	}
}

// LatestUsageReport returns the last usage report, or nil.
func (c *StatusCache) LatestUsageReport() *message.UsageReport {
	if m, ok := c.get(message.IDUsageReport).(*message.UsageReport); ok {
		return m
	}
	return nil
}

// LatestMeteringReport returns the last metering report, or nil.
func (c *StatusCache) LatestMeteringReport() *message.MeteringReport {
	if m, ok := c.get(message.IDMeteringReport).(*message.MeteringReport); ok {
		return m
	}
	return nil
}

// LatestStatus returns the last small status update, or nil.
func (c *StatusCache) LatestStatus() *message.StatusUpdated {
	if m, ok := c.get(message.IDStatusUpdated).(*message.StatusUpdated); ok {
		return m
	}
	return nil
}

// LatestExtendedStatus returns the last full extended status, or nil.
// Prefer MergedExtendedStatus, which also reflects the smaller
// periodic updates received since.
func (c *StatusCache) LatestExtendedStatus() *message.ExtendedStatusUpdated {
	if m, ok := c.get(message.IDExtendedStatusUpdated).(*message.ExtendedStatusUpdated); ok {
		return m
	}
	return nil
}

// MergedExtendedStatus returns the best known current status: the last
// full extended status with later periodic updates folded in. Nil
// until the first extended status arrives.
func (c *StatusCache) MergedExtendedStatus() *message.ExtendedStatusUpdated {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.merged
}

// VersionInfo returns the device version info, or nil.
func (c *StatusCache) VersionInfo() *message.VersionInfo {
	if m, ok := c.get(message.IDVersionInfo).(*message.VersionInfo); ok {
		return m
	}
	return nil
}

// LatestNoiseControlsUpdate returns the last noise controls update, or
// nil.
func (c *StatusCache) LatestNoiseControlsUpdate() *message.NoiseControlsUpdate {
	if m, ok := c.get(message.IDNoiseControlsUpdate).(*message.NoiseControlsUpdate); ok {
		return m
	}
	return nil
}

// LatestVoiceWakeupListeningStatus returns the last voice wakeup
// listening status, or nil.
func (c *StatusCache) LatestVoiceWakeupListeningStatus() *message.VoiceWakeupListeningStatus {
	if m, ok := c.get(message.IDVoiceWakeupListeningStatus).(*message.VoiceWakeupListeningStatus); ok {
		return m
	}
	return nil
}

// LatestFotaResult returns the last firmware update result, or nil.
func (c *StatusCache) LatestFotaResult() *message.FotaResult {
	if m, ok := c.get(message.IDFotaResult).(*message.FotaResult); ok {
		return m
	}
	return nil
}

func (c *StatusCache) get(id byte) message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest[id]
}
