package mcping

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Version identifies the server software generation.
type Version struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

// Player is one entry of the advertised player sample.
type Player struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Players carries the occupancy numbers and the sample list. The sample is
// whatever the server chooses to advertise; busy servers truncate it.
type Players struct {
	Max    int      `json:"max"`
	Online int      `json:"online"`
	Sample []Player `json:"sample,omitempty"`
}

// Status is a decoded Server List Ping response plus client-side
// measurements.
type Status struct {
	Version            Version `json:"version"`
	Players            Players `json:"players"`
	Description        Message `json:"description"`
	FaviconURL         string  `json:"favicon,omitempty"`
	EnforcesSecureChat bool    `json:"enforcesSecureChat,omitempty"`

	// Latency is measured by the client: the ping/pong round trip when the
	// server answers it, the status exchange time otherwise.
	Latency time.Duration `json:"-"`

	// Resolved is the host:port actually dialed after SRV resolution.
	Resolved string `json:"-"`
}

// MOTD returns the description with all formatting stripped.
func (s *Status) MOTD() string { return s.Description.Plain() }

// Favicon decodes the data URL the server embeds its 64x64 icon in. It
// returns nil bytes without error when the server sent no icon. Line breaks
// inside the base64 payload, which some server forks emit, are tolerated.
func (s *Status) Favicon() ([]byte, error) {
	if s.FaviconURL == "" {
		return nil, nil
	}
	const marker = ";base64,"
	i := strings.Index(s.FaviconURL, marker)
	if i < 0 || !strings.HasPrefix(s.FaviconURL, "data:") {
		return nil, fmt.Errorf("unrecognized favicon data url")
	}
	payload := strings.NewReplacer("\n", "", "\r", "").Replace(s.FaviconURL[i+len(marker):])
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode favicon: %w", err)
	}
	return raw, nil
}
