package protocol

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/galaxybuds/budspro/internal/logging"
	"github.com/galaxybuds/budspro/internal/message"
)

// A Listener receives every decoded frame for one message ID, in wire
// order. When the dispatcher shuts down, each registered listener is
// invoked once with a nil frame so nothing waits forever.
//
// Listeners run serially on the dispatcher's reader goroutine and must
// not block for long: one stalled listener stalls delivery for every
// ID.
type Listener struct {
	fn func(frame *Frame, msg message.Message)
}

// NewListener wraps a callback so it can be registered and later
// deregistered by identity.
func NewListener(fn func(frame *Frame, msg message.Message)) *Listener {
	return &Listener{fn: fn}
}

// FrameDispatcher owns a FrameReceiver, consumes it on a dedicated
// goroutine, and fans each decoded frame out to the listeners
// registered for its message ID.
//
// All methods are safe for concurrent use, including from inside a
// listener callback.
type FrameDispatcher struct {
	receiver *FrameReceiver

	mu        sync.Mutex
	listeners map[byte]map[*Listener]struct{}

	done chan struct{}
}

// NewFrameDispatcher starts the reader goroutine and returns the
// dispatcher. The dispatcher assumes ownership of the receiver.
func NewFrameDispatcher(r *FrameReceiver) *FrameDispatcher {
	d := &FrameDispatcher{
		receiver:  r,
		listeners: make(map[byte]map[*Listener]struct{}),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

// Close closes the underlying receiver and waits for the reader
// goroutine to exit. By then every registered listener has seen the
// nil close sentinel, so no waiter is left hanging.
func (d *FrameDispatcher) Close() error {
	err := d.receiver.Close()
	<-d.done
	return err
}

// Listen registers a listener for a message ID. It is idempotent.
func (d *FrameDispatcher) Listen(id byte, l *Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.listeners[id]
	if !ok {
		set = make(map[*Listener]struct{})
		d.listeners[id] = set
	}
	set[l] = struct{}{}
}

// Unlisten removes a listener previously registered with Listen. It is
// idempotent.
func (d *FrameDispatcher) Unlisten(id byte, l *Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if set, ok := d.listeners[id]; ok {
		delete(set, l)
	}
}

func (d *FrameDispatcher) run() {
	for {
		frame, err := d.receiver.Next()
		if err != nil {
			if !errors.Is(err, ErrClosed) {
				// Transport failure is fatal to this connection; the
				// shutdown path below releases all pending waiters.
				logging.Error("frame receive failed, terminating reader", zap.Error(err))
			}
			break
		}

		msg, err := frame.Message()
		if err != nil {
			// Contract violation in the body. Drop the frame, keep
			// the stream.
			logging.Warn("dropping undecodable frame",
				zap.String("frame", frame.String()),
				zap.Error(err),
			)
			continue
		}

		listeners := d.snapshot(frame.Header.MsgID)
		for _, l := range listeners {
			d.invoke(l, frame, msg)
		}
		logging.Debug("dispatched frame",
			zap.String("frame", frame.String()),
			zap.Int("listeners", len(listeners)),
		)
	}

	// Deliver the close sentinel to everything still registered,
	// across every ID.
	for _, l := range d.snapshotAll() {
		d.invoke(l, nil, nil)
	}
	close(d.done)
}

// snapshot copies the listener set for one ID so listeners run outside
// the registry lock and may re-register freely.
func (d *FrameDispatcher) snapshot(id byte) []*Listener {
	d.mu.Lock()
	defer d.mu.Unlock()
	set := d.listeners[id]
	out := make([]*Listener, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	return out
}

func (d *FrameDispatcher) snapshotAll() []*Listener {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Listener
	for _, set := range d.listeners {
		for l := range set {
			out = append(out, l)
		}
	}
	return out
}

// invoke runs one listener, containing any panic so delivery continues
// for the remaining listeners and future frames.
func (d *FrameDispatcher) invoke(l *Listener, frame *Frame, msg message.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("listener panicked (ignored)", zap.Any("panic", rec))
		}
	}()
	l.fn(frame, msg)
}

// Waiter is a one-shot listener handle returned by OneShot. Get blocks
// for the first matching message; Cancel guarantees the listener is
// removed on every exit path:
//
//	w := dispatcher.OneShot(id, timeout, nil)
//	defer w.Cancel()
//	// ... send the request ...
//	msg := w.Get()
type Waiter struct {
	d       *FrameDispatcher
	id      byte
	timeout time.Duration
	l       *Listener

	once sync.Once
	msg  message.Message
	done chan struct{}
}

// OneShot registers a listener for id that resolves on the first
// message accepted by predicate and then removes itself. A nil
// predicate accepts everything. A timeout of zero waits until the
// message arrives or the dispatcher closes.
func (d *FrameDispatcher) OneShot(id byte, timeout time.Duration, predicate func(message.Message) bool) *Waiter {
	if predicate == nil {
		predicate = func(message.Message) bool { return true }
	}

	w := &Waiter{d: d, id: id, timeout: timeout, done: make(chan struct{})}
	w.l = NewListener(func(frame *Frame, msg message.Message) {
		if frame != nil && !predicate(msg) {
			// Not ours; keep listening.
			return
		}
		w.once.Do(func() {
			if frame != nil {
				w.msg = msg
			}
			close(w.done)
		})
		d.Unlisten(id, w.l)
	})
	d.Listen(id, w.l)
	return w
}

// Get blocks until the waiter resolves and returns the matched
// message. It returns nil on timeout or when the dispatcher closed
// before a match arrived.
func (w *Waiter) Get() message.Message {
	if w.timeout > 0 {
		select {
		case <-w.done:
		case <-time.After(w.timeout):
			w.Cancel()
			return nil
		}
	} else {
		<-w.done
	}
	return w.msg
}

// Cancel removes the waiter's listener. It is idempotent and safe to
// call after the waiter has resolved.
func (w *Waiter) Cancel() {
	w.d.Unlisten(w.id, w.l)
}

// AckWaiter is a Waiter specialized for the protocol's two-level
// request/response correlation: a "set" request with ID X is answered
// by a UniversalAcknowledgement (0x42) whose redirect ID equals X.
type AckWaiter struct {
	w *Waiter
}

// OneShotAcknowledged registers a one-shot waiter for the universal
// acknowledgement of a request with the given ID. The resolved value
// is the unwrapped redirect message, not the raw acknowledgement.
func (d *FrameDispatcher) OneShotAcknowledged(redirectID byte, timeout time.Duration) *AckWaiter {
	predicate := func(msg message.Message) bool {
		ack, ok := msg.(*message.UniversalAcknowledgement)
		return ok && ack.RedirectID == redirectID
	}
	return &AckWaiter{w: d.OneShot(message.IDUniversalAcknowledgement, timeout, predicate)}
}

// Get blocks until the acknowledgement arrives and returns its decoded
// redirect message (nil when the acknowledged ID has no redirect
// decoder). ok is false on timeout or dispatcher shutdown.
func (a *AckWaiter) Get() (redirect message.RedirectMessage, ok bool) {
	msg := a.w.Get()
	if msg == nil {
		return nil, false
	}
	ack := msg.(*message.UniversalAcknowledgement)
	redirect, err := ack.Redirect()
	if err != nil {
		logging.Warn("undecodable acknowledgement redirect", zap.Error(err))
		return nil, true
	}
	return redirect, true
}

// Cancel removes the waiter's listener; see Waiter.Cancel.
func (a *AckWaiter) Cancel() {
	a.w.Cancel()
}
