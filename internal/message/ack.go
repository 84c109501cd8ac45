package message

import "fmt"

// UniversalAcknowledgement (0x42) is the generic reply to "set" style
// requests. The device does not answer on the request's own ID;
// instead the acknowledgement carries the original request ID as its
// redirect ID, plus an embedded redirect body decoded through a
// separate, smaller message table.
type UniversalAcknowledgement struct {
	RedirectID   byte
	RedirectBody []byte
}

func (m *UniversalAcknowledgement) ID() byte { return IDUniversalAcknowledgement }

func (m *UniversalAcknowledgement) String() string {
	return fmt.Sprintf("UniversalAcknowledgement{redirect=0x%02X, body=%d bytes}", m.RedirectID, len(m.RedirectBody))
}

// Redirect decodes the embedded redirect body. A nil RedirectMessage
// with a nil error means no redirect decoder is defined for the
// acknowledged ID, which is the common case.
func (m *UniversalAcknowledgement) Redirect() (RedirectMessage, error) {
	return DecodeRedirect(m.RedirectID, m.RedirectBody)
}

func decodeUniversalAcknowledgement(id byte, body []byte) (Message, error) {
	if len(body) < 1 {
		return nil, decodeErrf(id, len(body), "expected at least 1 byte for universal acknowledgement")
	}
	rbody := make([]byte, len(body)-1)
	copy(rbody, body[1:])
	return &UniversalAcknowledgement{RedirectID: body[0], RedirectBody: rbody}, nil
}

// RedirectMessage is a message embedded in a UniversalAcknowledgement,
// keyed by the acknowledged request's original ID.
type RedirectMessage interface {
	RedirectID() byte
	String() string
}

// NoiseControlsRedirect is the redirect reply to a 0x78 noise controls
// set request, echoing the applied mode.
type NoiseControlsRedirect struct {
	NoiseControls uint8
}

func (m *NoiseControlsRedirect) RedirectID() byte { return IDSetNoiseControls }

func (m *NoiseControlsRedirect) String() string {
	return fmt.Sprintf("NoiseControlsRedirect{mode=%d}", m.NoiseControls)
}

// redirectDecoders is the secondary message table for acknowledgement
// redirect bodies. Only the noise-controls redirect is currently
// defined.
var redirectDecoders = map[byte]func(id byte, body []byte) (RedirectMessage, error){
	IDSetNoiseControls: decodeNoiseControlsRedirect,
}

// DecodeRedirect parses an acknowledgement redirect body based on the
// acknowledged ID. IDs without a redirect decoder yield (nil, nil).
func DecodeRedirect(id byte, body []byte) (RedirectMessage, error) {
	dec, ok := redirectDecoders[id]
	if !ok {
		return nil, nil
	}
	return dec(id, body)
}

func decodeNoiseControlsRedirect(id byte, body []byte) (RedirectMessage, error) {
	if len(body) < 1 {
		return nil, decodeErrf(id, len(body), "expected at least 1 byte for noise controls redirect")
	}
	return &NoiseControlsRedirect{NoiseControls: body[0]}, nil
}
