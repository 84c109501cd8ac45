package device

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/galaxybuds/budspro/internal/message"
	"github.com/galaxybuds/budspro/internal/protocol"
)

// fakeTransport is a scriptable duplex channel: frames the device
// under test sends come out of sent, and push feeds bytes to its
// receive side.
type fakeTransport struct {
	mu      sync.Mutex
	cond    *sync.Cond
	recvBuf []byte
	closed  bool

	sent chan []byte
}

func newFakeTransport() *fakeTransport {
	t := &fakeTransport{sent: make(chan []byte, 16)}
	t.cond = sync.NewCond(&t.mu)
	return t
}

func (t *fakeTransport) push(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recvBuf = append(t.recvBuf, data...)
	t.cond.Broadcast()
}

func (t *fakeTransport) Send(data []byte) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return errors.New("send on closed transport")
	}
	t.sent <- append([]byte(nil), data...)
	return nil
}

func (t *fakeTransport) Recv(max int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for len(t.recvBuf) == 0 && !t.closed {
		t.cond.Wait()
	}
	if t.closed {
		return nil, nil
	}
	n := len(t.recvBuf)
	if n > max {
		n = max
	}
	out := append([]byte(nil), t.recvBuf[:n]...)
	t.recvBuf = t.recvBuf[n:]
	return out, nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.cond.Broadcast()
	return nil
}

func newTestDevice(t *testing.T) (*Device, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport()
	dev := NewDevice(tr)
	dev.SetAckTimeout(time.Second)
	t.Cleanup(func() { dev.Close() })
	return dev, tr
}

// expectSent reads the next frame the device wrote and checks its ID.
func expectSent(t *testing.T, tr *fakeTransport, id byte) *protocol.Frame {
	t.Helper()
	select {
	case wire := <-tr.sent:
		header, n, err := protocol.ParseFrameHeader(wire)
		if err != nil {
			t.Fatalf("device sent an unparseable frame: %v", err)
		}
		frame, err := protocol.DecodeBody(header, wire[n:len(wire)-1])
		if err != nil {
			t.Fatalf("device sent a corrupt frame: %v", err)
		}
		if frame.Header.MsgID != id {
			t.Fatalf("device sent 0x%02X, want 0x%02X", frame.Header.MsgID, id)
		}
		return frame
	case <-time.After(time.Second):
		t.Fatalf("device never sent frame 0x%02X", id)
		return nil
	}
}

// ack pushes the universal acknowledgement for a request ID, with an
// optional redirect body.
func ack(tr *fakeTransport, redirectID byte, redirectBody ...byte) {
	body := append([]byte{redirectID}, redirectBody...)
	tr.push(protocol.MakeFrame(message.IDUniversalAcknowledgement, body, true, false).Encode())
}

func TestSetEqualizerType(t *testing.T) {
	dev, tr := newTestDevice(t)

	done := make(chan error, 1)
	go func() { done <- dev.SetEqualizerType(EqualizerDynamic) }()

	frame := expectSent(t, tr, message.IDSetEqualizerType)
	if !bytes.Equal(frame.Body, []byte{byte(EqualizerDynamic)}) {
		t.Errorf("request body = %v, want [3]", frame.Body)
	}
	if frame.Header.IsResponse() {
		t.Error("set request should not carry the response flag")
	}

	ack(tr, message.IDSetEqualizerType)
	if err := <-done; err != nil {
		t.Errorf("SetEqualizerType: %v", err)
	}
}

func TestSetEqualizerTypeRange(t *testing.T) {
	dev, _ := newTestDevice(t)
	if err := dev.SetEqualizerType(EqualizerType(6)); err == nil {
		t.Error("out-of-range preset should fail before anything is sent")
	}
}

func TestSetNoiseControls(t *testing.T) {
	dev, tr := newTestDevice(t)

	done := make(chan error, 1)
	go func() { done <- dev.SetNoiseControls(NoiseControlsAnc) }()

	frame := expectSent(t, tr, message.IDSetNoiseControls)
	if !bytes.Equal(frame.Body, []byte{1}) {
		t.Errorf("request body = %v, want [1]", frame.Body)
	}

	ack(tr, message.IDSetNoiseControls, byte(NoiseControlsAnc))
	if err := <-done; err != nil {
		t.Errorf("SetNoiseControls: %v", err)
	}
}

func TestSetNoiseControlsModeMismatch(t *testing.T) {
	dev, tr := newTestDevice(t)

	done := make(chan error, 1)
	go func() { done <- dev.SetNoiseControls(NoiseControlsAnc) }()

	expectSent(t, tr, message.IDSetNoiseControls)
	// Earbuds echo a different mode than requested.
	ack(tr, message.IDSetNoiseControls, byte(NoiseControlsOff))

	if err := <-done; err == nil {
		t.Error("mode mismatch in the redirect should surface as an error")
	}
}

func TestNoReply(t *testing.T) {
	dev, tr := newTestDevice(t)
	dev.SetAckTimeout(30 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- dev.StartFindMyEarbuds() }()

	expectSent(t, tr, message.IDFindMyEarbudsStart)
	// No acknowledgement.
	if err := <-done; !errors.Is(err, ErrNoReply) {
		t.Errorf("error = %v, want ErrNoReply", err)
	}
}

func TestAckForOtherRequestIgnored(t *testing.T) {
	dev, tr := newTestDevice(t)
	dev.SetAckTimeout(50 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- dev.StopFindMyEarbuds() }()

	expectSent(t, tr, message.IDFindMyEarbudsStop)
	// Acknowledgement for an unrelated request must not resolve this one.
	ack(tr, message.IDSetEqualizerType)

	if err := <-done; !errors.Is(err, ErrNoReply) {
		t.Errorf("error = %v, want ErrNoReply", err)
	}
}

func TestGetDebugSKU(t *testing.T) {
	dev, tr := newTestDevice(t)

	type result struct {
		pair *message.StringPair
		err  error
	}
	done := make(chan result, 1)
	go func() {
		pair, err := dev.GetDebugSKU()
		done <- result{pair, err}
	}()

	expectSent(t, tr, message.IDDebugSKU)
	tr.push(protocol.MakeFrame(message.IDDebugSKU, []byte("SM-R190NZKASEKSM-R190NZKASEK"), true, false).Encode())

	res := <-done
	if res.err != nil {
		t.Fatalf("GetDebugSKU: %v", res.err)
	}
	if res.pair.Left != "SM-R190NZKASEK" || res.pair.Right != "SM-R190NZKASEK" {
		t.Errorf("pair = %q/%q, want the SKU on both sides", res.pair.Left, res.pair.Right)
	}
}

func TestSetNoiseReductionConfirmedByUpdate(t *testing.T) {
	dev, tr := newTestDevice(t)

	done := make(chan error, 1)
	go func() { done <- dev.SetNoiseReduction(true) }()

	frame := expectSent(t, tr, message.IDSetNoiseReduction)
	if !bytes.Equal(frame.Body, []byte{1}) {
		t.Errorf("request body = %v, want [1]", frame.Body)
	}

	// The earbuds confirm with an update reflecting the old state
	// first; the waiter must hold out for the requested one.
	tr.push(protocol.MakeFrame(message.IDNoiseControlsUpdate, []byte{0, 1}, false, false).Encode())
	tr.push(protocol.MakeFrame(message.IDNoiseControlsUpdate, []byte{1, 1}, false, false).Encode())

	if err := <-done; err != nil {
		t.Errorf("SetNoiseReduction: %v", err)
	}
}

func TestMuteEarbudBody(t *testing.T) {
	dev, tr := newTestDevice(t)

	done := make(chan error, 1)
	go func() { done <- dev.MuteEarbud(true, false) }()

	frame := expectSent(t, tr, message.IDMuteEarbud)
	if !bytes.Equal(frame.Body, []byte{1, 0}) {
		t.Errorf("request body = %v, want [1 0]", frame.Body)
	}
	ack(tr, message.IDMuteEarbud)
	if err := <-done; err != nil {
		t.Errorf("MuteEarbud: %v", err)
	}
}

func TestSetTouchpadEnabledSendsLock(t *testing.T) {
	dev, tr := newTestDevice(t)

	done := make(chan error, 1)
	go func() { done <- dev.SetTouchpadEnabled(true) }()

	// Enabling the touchpad means unlocking it.
	frame := expectSent(t, tr, message.IDLockTouchpad)
	if !bytes.Equal(frame.Body, []byte{0}) {
		t.Errorf("request body = %v, want [0]", frame.Body)
	}
	ack(tr, message.IDLockTouchpad)
	if err := <-done; err != nil {
		t.Errorf("SetTouchpadEnabled: %v", err)
	}
}

func TestAcknowledgeUsageReport(t *testing.T) {
	dev, tr := newTestDevice(t)

	if err := dev.AcknowledgeUsageReport(0); err != nil {
		t.Fatalf("AcknowledgeUsageReport: %v", err)
	}
	frame := expectSent(t, tr, message.IDUsageReport)
	if !frame.Header.IsResponse() {
		t.Error("usage report acknowledgement must carry the response flag")
	}
}

func TestListenForTouchAndHoldApp(t *testing.T) {
	dev, tr := newTestDevice(t)

	got := make(chan byte, 2)
	cancel := dev.ListenForTouchAndHoldApp(func(option byte) { got <- option })

	tr.push(protocol.MakeFrame(message.IDTouchPadOther, []byte{5}, false, false).Encode())
	select {
	case option := <-got:
		if option != 5 {
			t.Errorf("option = %d, want 5", option)
		}
	case <-time.After(time.Second):
		t.Fatal("touch event never delivered")
	}

	cancel()
	tr.push(protocol.MakeFrame(message.IDTouchPadOther, []byte{6}, false, false).Encode())
	select {
	case option := <-got:
		t.Errorf("received option %d after cancel", option)
	case <-time.After(50 * time.Millisecond):
	}
}
