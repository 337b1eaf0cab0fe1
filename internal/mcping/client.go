package mcping

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	// DefaultTimeout bounds the whole exchange when neither the context
	// nor the client carries an earlier deadline.
	DefaultTimeout = 5 * time.Second

	// maxStatusBytes caps the status response frame. Real responses are a
	// few KiB even with a favicon embedded.
	maxStatusBytes = 1 << 20

	// protocolUnknown is the handshake protocol number a client sends when
	// it only wants status.
	protocolUnknown = -1
)

// Client performs status queries. The zero value is usable; fields tune
// individual concerns.
type Client struct {
	// Timeout bounds one query when the context has no earlier deadline.
	// Zero means DefaultTimeout.
	Timeout time.Duration

	// Dialer, when set, replaces the default TCP dialer.
	Dialer *net.Dialer

	// Resolver, when set, replaces the default SRV resolver.
	Resolver *net.Resolver
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Ping dials addr, performs the status exchange and the trailing ping/pong,
// and returns the decoded status.
func (c *Client) Ping(ctx context.Context, addr string) (*Status, error) {
	a, err := ParseAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse address %q: %w", addr, err)
	}
	return c.PingAddr(ctx, a)
}

// PingAddr is Ping for a pre-parsed address.
func (c *Client) PingAddr(ctx context.Context, a Addr) (*Status, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	target := resolveTarget(ctx, c.Resolver, a)
	d := c.Dialer
	if d == nil {
		d = &net.Dialer{}
	}
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	payload := appendVarInt(nil, protocolUnknown)
	payload = appendString(payload, a.Host)
	payload = binary.BigEndian.AppendUint16(payload, a.Port)
	payload = appendVarInt(payload, stateStatus)
	if err := writePacket(conn, packetHandshake, payload); err != nil {
		return nil, err
	}
	if err := writePacket(conn, packetStatusRequest, nil); err != nil {
		return nil, err
	}

	br := bufio.NewReader(conn)
	start := time.Now()
	id, body, err := readPacket(br, maxStatusBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read status response: %w", err)
	}
	elapsed := time.Since(start)
	if id != packetStatusResponse {
		return nil, fmt.Errorf("unexpected packet 0x%02x in status response", id)
	}
	blob, err := readString(bytes.NewReader(body), maxStatusBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read status payload: %w", err)
	}
	st := &Status{}
	if err := json.Unmarshal([]byte(blob), st); err != nil {
		return nil, fmt.Errorf("failed to decode status json: %w", err)
	}
	st.Latency = elapsed
	st.Resolved = target

	// Some servers hang up right after the status response; keep the
	// status exchange time in that case.
	if rtt, err := pingPong(conn, br); err == nil {
		st.Latency = rtt
	}
	return st, nil
}

// pingPong sends the 0x01 ping carrying a millisecond token and times the
// echo.
func pingPong(w io.Writer, r io.Reader) (time.Duration, error) {
	token := time.Now().UnixMilli()
	payload := binary.BigEndian.AppendUint64(nil, uint64(token))
	start := time.Now()
	if err := writePacket(w, packetPing, payload); err != nil {
		return 0, err
	}
	id, body, err := readPacket(r, 64)
	if err != nil {
		return 0, err
	}
	if id != packetPing || len(body) != 8 {
		return 0, errors.New("malformed pong")
	}
	if int64(binary.BigEndian.Uint64(body)) != token {
		return 0, errors.New("pong token mismatch")
	}
	return time.Since(start), nil
}
