package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestCrc16CheckValue(t *testing.T) {
	// Standard CRC-16/XMODEM check value (poly 0x1021, init 0).
	if got := crc16([]byte("123456789")); got != 0x31C3 {
		t.Errorf("crc16(123456789) = 0x%04X, want 0x31C3", got)
	}

	// Splitting the input across slices must not change the result.
	if got := crc16([]byte("1234"), []byte("56789")); got != 0x31C3 {
		t.Errorf("crc16 over split input = 0x%04X, want 0x31C3", got)
	}
}

func TestParseFrameHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
		verify  func(t *testing.T, h FrameHeader)
	}{
		{
			name: "plain request header",
			data: []byte{
				0xFD,       // start-of-frame
				0x05, 0x00, // flags: length 5
				0x78, // message ID
			},
			verify: func(t *testing.T, h FrameHeader) {
				if h.MsgID != 0x78 {
					t.Errorf("MsgID = 0x%02X, want 0x78", h.MsgID)
				}
				if h.Length() != 5 {
					t.Errorf("Length() = %d, want 5", h.Length())
				}
				if h.IsResponse() || h.IsFragment() {
					t.Error("plain header should be neither response nor fragment")
				}
			},
		},
		{
			name: "response and fragment flags",
			data: []byte{
				0xFD,
				0x03, 0x30, // flags: length 3, response + fragment bits
				0x42,
			},
			verify: func(t *testing.T, h FrameHeader) {
				if !h.IsResponse() {
					t.Error("response bit should be set")
				}
				if !h.IsFragment() {
					t.Error("fragment bit should be set")
				}
				if h.Length() != 3 {
					t.Errorf("Length() = %d, want 3", h.Length())
				}
			},
		},
		{
			name:    "too short",
			data:    []byte{0xFD, 0x05, 0x00},
			wantErr: true,
		},
		{
			name:    "missing start marker",
			data:    []byte{0x00, 0x05, 0x00, 0x78},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, n, err := ParseFrameHeader(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var malformed *MalformedHeaderError
				if !errors.As(err, &malformed) {
					t.Errorf("error = %T, want *MalformedHeaderError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != 4 {
				t.Errorf("consumed = %d, want 4", n)
			}
			tt.verify(t, h)
		})
	}
}

func TestFrameHeaderEncodeRoundTrip(t *testing.T) {
	h := MakeFrameHeader(0x61, 41, true, false)
	got, n, err := ParseFrameHeader(h.Encode())
	if err != nil {
		t.Fatalf("ParseFrameHeader: %v", err)
	}
	if n != 4 {
		t.Errorf("consumed = %d, want 4", n)
	}
	if got != h {
		t.Errorf("round trip = %+v, want %+v", got, h)
	}
}

func TestFrameEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		id       byte
		payload  []byte
		response bool
	}{
		{"empty body", 0xA0, nil, false},
		{"small body", 0x78, []byte{0x01}, false},
		{"response frame", 0x40, []byte{0x00}, true},
		{"longer body", 0x61, bytes.Repeat([]byte{0x5A}, 40), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := MakeFrame(tt.id, tt.payload, tt.response, false).Encode()

			if wire[0] != StartOfFrame {
				t.Errorf("wire[0] = 0x%02X, want start marker", wire[0])
			}
			if wire[len(wire)-1] != EndOfFrame {
				t.Errorf("last byte = 0x%02X, want end marker", wire[len(wire)-1])
			}

			header, n, err := ParseFrameHeader(wire)
			if err != nil {
				t.Fatalf("ParseFrameHeader: %v", err)
			}
			if header.MsgID != tt.id {
				t.Errorf("MsgID = 0x%02X, want 0x%02X", header.MsgID, tt.id)
			}
			if header.IsResponse() != tt.response {
				t.Errorf("IsResponse = %v, want %v", header.IsResponse(), tt.response)
			}
			if want := 1 + len(tt.payload) + 2; header.Length() != want {
				t.Errorf("Length() = %d, want %d", header.Length(), want)
			}

			frame, err := DecodeBody(header, wire[n:len(wire)-1])
			if err != nil {
				t.Fatalf("DecodeBody: %v", err)
			}
			if !bytes.Equal(frame.Body, tt.payload) {
				t.Errorf("body = %v, want %v", frame.Body, tt.payload)
			}
		})
	}
}

func TestDecodeBodyRejectsCorruption(t *testing.T) {
	wire := MakeFrame(0x78, []byte{0x01, 0x02, 0x03}, false, false).Encode()
	header, n, err := ParseFrameHeader(wire)
	if err != nil {
		t.Fatalf("ParseFrameHeader: %v", err)
	}

	t.Run("flipped body bit", func(t *testing.T) {
		corrupted := append([]byte(nil), wire...)
		corrupted[n] ^= 0x80
		_, err := DecodeBody(header, corrupted[n:len(corrupted)-1])
		var mismatch *CrcMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("error = %v, want *CrcMismatchError", err)
		}
		if mismatch.MsgID != 0x78 {
			t.Errorf("MsgID = 0x%02X, want 0x78", mismatch.MsgID)
		}
	})

	t.Run("flipped crc bit", func(t *testing.T) {
		corrupted := append([]byte(nil), wire...)
		corrupted[len(corrupted)-2] ^= 0x01
		_, err := DecodeBody(header, corrupted[n:len(corrupted)-1])
		var mismatch *CrcMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("error = %v, want *CrcMismatchError", err)
		}
	})

	t.Run("truncated span", func(t *testing.T) {
		_, err := DecodeBody(header, wire[n:len(wire)-2])
		var malformed *MalformedFrameError
		if !errors.As(err, &malformed) {
			t.Fatalf("error = %v, want *MalformedFrameError", err)
		}
	})

	t.Run("span shorter than crc", func(t *testing.T) {
		_, err := DecodeBody(header, []byte{0x01})
		var malformed *MalformedFrameError
		if !errors.As(err, &malformed) {
			t.Fatalf("error = %v, want *MalformedFrameError", err)
		}
	})
}

func TestDecodeBodyCopiesBody(t *testing.T) {
	wire := MakeFrame(0x78, []byte{0x01, 0x02}, false, false).Encode()
	header, n, _ := ParseFrameHeader(wire)

	frame, err := DecodeBody(header, wire[n:len(wire)-1])
	if err != nil {
		t.Fatalf("DecodeBody: %v", err)
	}

	// Mutating the input buffer afterwards must not reach the frame.
	wire[n] = 0xFF
	if frame.Body[0] != 0x01 {
		t.Error("frame body aliases the input buffer")
	}
}
