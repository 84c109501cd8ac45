//go:build ignore

// Decode-capture replays a Bluetooth traffic capture through the frame
// receiver and prints every decoded message.
//
// The input is a text file with one hex string per line, e.g. the ACL
// payloads extracted from a btmon or Wireshark capture of the earbuds'
// SPP channel. Blank lines and lines starting with '#' are skipped.
//
// Usage:
//
//	go run tools/decode-capture.go capture.hex
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/galaxybuds/budspro/internal/protocol"
)

// fileTransport feeds the capture bytes to the receiver and reports a
// clean end-of-stream when they run out.
type fileTransport struct {
	data []byte
}

func (t *fileTransport) Send(data []byte) error { return nil }

func (t *fileTransport) Recv(max int) ([]byte, error) {
	if len(t.data) == 0 {
		return nil, nil
	}
	n := len(t.data)
	if n > max {
		n = max
	}
	out := t.data[:n]
	t.data = t.data[n:]
	return out, nil
}

func (t *fileTransport) Close() error { return nil }

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: decode-capture <hex-file>")
		fmt.Println("Example: go run tools/decode-capture.go captures/status-burst.hex")
		os.Exit(1)
	}

	data, err := loadCapture(os.Args[1])
	if err != nil {
		fmt.Printf("Error reading capture: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Frame decoder ===\n")
	fmt.Printf("File:  %s\n", os.Args[1])
	fmt.Printf("Bytes: %d\n\n", len(data))

	receiver := protocol.NewFrameReceiver(&fileTransport{data: data})

	frames := 0
	decoded := 0
	byID := make(map[byte]int)

	for {
		frame, err := receiver.Next()
		if errors.Is(err, protocol.ErrClosed) {
			break
		}
		if err != nil {
			fmt.Printf("receiver failed: %v\n", err)
			os.Exit(1)
		}

		frames++
		byID[frame.Header.MsgID]++

		msg, err := frame.Message()
		switch {
		case err != nil:
			fmt.Printf("%4d  %s  DECODE ERROR: %v\n", frames, frame, err)
		case msg == nil:
			fmt.Printf("%4d  %s  (no decoder)\n", frames, frame)
		default:
			decoded++
			fmt.Printf("%4d  %s\n", frames, msg)
		}
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Frames:  %d\n", frames)
	fmt.Printf("Decoded: %d\n", decoded)
	fmt.Printf("By message ID:\n")
	for id, count := range byID {
		fmt.Printf("  0x%02X: %d\n", id, count)
	}
}

func loadCapture(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data []byte
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		text = strings.NewReplacer(" ", "", ":", "").Replace(text)
		chunk, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		data = append(data, chunk...)
	}
	return data, scanner.Err()
}
