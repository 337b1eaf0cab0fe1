package mcping

import (
	"bytes"
	"fmt"
	"io"
)

// Packet ids for the status flow. Handshake and status request share 0x00;
// they live in different protocol states.
const (
	packetHandshake      = 0x00
	packetStatusRequest  = 0x00
	packetStatusResponse = 0x00
	packetPing           = 0x01

	stateStatus = 1
)

// writePacket frames id plus payload with a VarInt length prefix and writes
// the whole frame in one call.
func writePacket(w io.Writer, id int32, payload []byte) error {
	body := appendVarInt(nil, id)
	body = append(body, payload...)
	frame := appendVarInt(nil, int32(len(body)))
	frame = append(frame, body...)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write packet 0x%02x: %w", id, err)
	}
	return nil
}

// readPacket reads one length-prefixed packet and returns its id and payload.
// Frames longer than maxLen are rejected before any allocation so a rogue
// server cannot make the client buffer arbitrary amounts.
func readPacket(r io.Reader, maxLen int32) (int32, []byte, error) {
	length, err := readVarInt(r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read packet length: %w", err)
	}
	if length <= 0 || length > maxLen {
		return 0, nil, fmt.Errorf("invalid packet length %d", length)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, fmt.Errorf("failed to read packet body: %w", err)
	}
	br := bytes.NewReader(body)
	id, err := readVarInt(br)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read packet id: %w", err)
	}
	return id, body[len(body)-br.Len():], nil
}

// appendString appends the protocol string encoding (VarInt byte length,
// then UTF-8 bytes) of s to buf.
func appendString(buf []byte, s string) []byte {
	buf = appendVarInt(buf, int32(len(s)))
	return append(buf, s...)
}

// readString decodes one protocol string from r, rejecting lengths above max.
func readString(r io.Reader, max int32) (string, error) {
	n, err := readVarInt(r)
	if err != nil {
		return "", fmt.Errorf("failed to read string length: %w", err)
	}
	if n < 0 || n > max {
		return "", fmt.Errorf("invalid string length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to read string body: %w", err)
	}
	return string(buf), nil
}
