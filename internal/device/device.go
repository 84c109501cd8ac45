package device

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/galaxybuds/budspro/internal/logging"
	"github.com/galaxybuds/budspro/internal/message"
	"github.com/galaxybuds/budspro/internal/protocol"
	"github.com/galaxybuds/budspro/internal/transport"
)

// ErrNoReply is returned when the earbuds did not acknowledge a
// request within the configured timeout.
var ErrNoReply = errors.New("device: no reply from earbuds")

// DefaultAckTimeout bounds how long operations wait for the earbuds to
// acknowledge a request.
const DefaultAckTimeout = 10 * time.Second

// Device is the high-level client for a connected pair of earbuds. It
// owns the transport, runs the frame dispatcher on top of it and keeps
// a StatusCache subscribed for the lifetime of the connection.
//
// Outgoing writes are serialized; concurrent operations are safe.
type Device struct {
	transport  transport.Transport
	dispatcher *protocol.FrameDispatcher
	ackTimeout time.Duration

	sendMu sync.Mutex

	// Status caches the latest periodic reports from the earbuds.
	Status *StatusCache
}

// NewDevice wraps an open transport. The dispatcher's read loop starts
// immediately; callers should Close the device rather than the
// transport.
func NewDevice(t transport.Transport) *Device {
	d := protocol.NewFrameDispatcher(protocol.NewFrameReceiver(t))
	return &Device{
		transport:  t,
		dispatcher: d,
		ackTimeout: DefaultAckTimeout,
		Status:     NewStatusCache(d),
	}
}

// SetAckTimeout overrides the per-operation acknowledgement timeout.
// Non-positive values are ignored.
func (d *Device) SetAckTimeout(timeout time.Duration) {
	if timeout > 0 {
		d.ackTimeout = timeout
	}
}

// Close shuts the connection down and waits for the read loop to
// finish. Blocked WaitFor calls on the status cache are released.
func (d *Device) Close() error {
	err := d.dispatcher.Close()
	d.Status.Close()
	return err
}

// Dispatcher exposes the underlying frame dispatcher for callers that
// need to listen on message IDs the Device has no helper for.
func (d *Device) Dispatcher() *protocol.FrameDispatcher {
	return d.dispatcher
}

func (d *Device) send(frame *protocol.Frame) error {
	data := frame.Encode()
	logging.LogRawBytes("sending frame", data)

	d.sendMu.Lock()
	defer d.sendMu.Unlock()
	if err := d.transport.Send(data); err != nil {
		return fmt.Errorf("sending frame %s: %w", frame.Header, err)
	}
	return nil
}

// sendAcked registers an acknowledgement waiter before writing so the
// reply cannot race the registration, then blocks until the earbuds
// acknowledge or the timeout fires.
func (d *Device) sendAcked(frame *protocol.Frame) (message.RedirectMessage, error) {
	waiter := d.dispatcher.OneShotAcknowledged(frame.Header.MsgID, d.ackTimeout)
	defer waiter.Cancel()

	if err := d.send(frame); err != nil {
		return nil, err
	}
	redirect, ok := waiter.Get()
	if !ok {
		return nil, fmt.Errorf("%w: request %#02x", ErrNoReply, frame.Header.MsgID)
	}
	return redirect, nil
}

// requestStringPair sends a bodyless request whose reply arrives on
// the same message ID as a per-earbud string pair.
func (d *Device) requestStringPair(frame *protocol.Frame) (*message.StringPair, error) {
	waiter := d.dispatcher.OneShot(frame.Header.MsgID, d.ackTimeout, nil)
	defer waiter.Cancel()

	if err := d.send(frame); err != nil {
		return nil, err
	}
	msg := waiter.Get()
	if msg == nil {
		return nil, fmt.Errorf("%w: request %#02x", ErrNoReply, frame.Header.MsgID)
	}
	pair, ok := msg.(*message.StringPair)
	if !ok {
		return nil, fmt.Errorf("unexpected reply %T to request %#02x", msg, frame.Header.MsgID)
	}
	return pair, nil
}

// GetDebugSKU asks both earbuds for their model/SKU string.
func (d *Device) GetDebugSKU() (*message.StringPair, error) {
	return d.requestStringPair(DebugSKURequest())
}

// GetDebugSerialNumber asks both earbuds for their serial number.
func (d *Device) GetDebugSerialNumber() (*message.StringPair, error) {
	return d.requestStringPair(DebugSerialNumberRequest())
}

// StartFindMyEarbuds makes the earbuds chirp until stopped.
func (d *Device) StartFindMyEarbuds() error {
	_, err := d.sendAcked(StartFindMyEarbudsRequest())
	return err
}

// StopFindMyEarbuds stops the find-my-earbuds chirp.
func (d *Device) StopFindMyEarbuds() error {
	_, err := d.sendAcked(StopFindMyEarbudsRequest())
	return err
}

// MuteEarbud mutes or unmutes the chirp per earbud while
// find-my-earbuds is running.
func (d *Device) MuteEarbud(left, right bool) error {
	_, err := d.sendAcked(MuteEarbudRequest(left, right))
	return err
}

// SetEqualizerType selects the active equalizer preset.
func (d *Device) SetEqualizerType(eq EqualizerType) error {
	frame, err := SetEqualizerTypeRequest(eq)
	if err != nil {
		return err
	}
	_, err = d.sendAcked(frame)
	return err
}

// SetNoiseControls switches between off, active noise cancellation and
// ambient sound. The acknowledgement redirect carries the mode the
// earbuds settled on; a mismatch is reported as an error.
func (d *Device) SetNoiseControls(mode NoiseControls) error {
	frame, err := NoiseControlsRequest(mode)
	if err != nil {
		return err
	}
	redirect, err := d.sendAcked(frame)
	if err != nil {
		return err
	}
	if r, ok := redirect.(*message.NoiseControlsRedirect); ok && NoiseControls(r.NoiseControls) != mode {
		return fmt.Errorf("earbuds applied noise controls %s instead of %s",
			NoiseControls(r.NoiseControls), mode)
	}
	return nil
}

// SetTouchpadEnabled enables or disables the touchpads on both
// earbuds.
func (d *Device) SetTouchpadEnabled(enabled bool) error {
	_, err := d.sendAcked(LockTouchpadRequest(!enabled))
	return err
}

// SetTouchpadOption configures the touch-and-hold action for each
// earbud.
func (d *Device) SetTouchpadOption(left, right TouchpadOption) error {
	frame, err := SetTouchpadOptionRequest(left, right)
	if err != nil {
		return err
	}
	_, err = d.sendAcked(frame)
	return err
}

// SetNoiseReduction toggles active noise cancellation. The earbuds do
// not acknowledge this request; instead they confirm it with a noise
// controls update reflecting the new state.
func (d *Device) SetNoiseReduction(enabled bool) error {
	want := byte(0)
	if enabled {
		want = 1
	}
	waiter := d.dispatcher.OneShot(message.IDNoiseControlsUpdate, d.ackTimeout,
		func(msg message.Message) bool {
			update, ok := msg.(*message.NoiseControlsUpdate)
			return ok && update.NoiseControls == want
		})
	defer waiter.Cancel()

	if err := d.send(SetNoiseReductionRequest(enabled)); err != nil {
		return err
	}
	if waiter.Get() == nil {
		return fmt.Errorf("%w: noise reduction not confirmed", ErrNoReply)
	}
	return nil
}

// UpdateTime pushes the current wall clock and timezone offset to the
// earbuds. No acknowledgement is sent.
func (d *Device) UpdateTime(now time.Time) error {
	return d.send(UpdateTimeRequest(now))
}

// AcknowledgeUsageReport answers a usage report; the earbuds keep
// re-sending the report until it is acknowledged.
func (d *Device) AcknowledgeUsageReport(code byte) error {
	return d.send(UsageReportResponse(code))
}

// ListenForTouchAndHoldApp registers fn for touch-and-hold events that
// target a companion app rather than a built-in action. The returned
// function cancels the registration.
func (d *Device) ListenForTouchAndHoldApp(fn func(option byte)) func() {
	l := protocol.NewListener(func(frame *protocol.Frame, msg message.Message) {
		other, ok := msg.(*message.TouchPadOther)
		if !ok {
			return
		}
		fn(other.OtherOption)
	})
	d.dispatcher.Listen(message.IDTouchPadOther, l)
	return func() { d.dispatcher.Unlisten(message.IDTouchPadOther, l) }
}
