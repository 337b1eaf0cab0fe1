package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/craftwatch/craftwatch/internal/mcping"
)

// SchemaVersion is the document layout written by this package.
const SchemaVersion = 1

// maxNameLen bounds server names in runes.
const maxNameLen = 32

// Sentinel errors the command layer maps to user-facing messages.
var (
	ErrNotFound    = errors.New("registry: server not found")
	ErrNameTaken   = errors.New("registry: name already taken")
	ErrInvalidName = errors.New("registry: invalid name")
	ErrInvalidHost = errors.New("registry: invalid host")
	ErrNoChange    = errors.New("registry: nothing to update")
)

// Record is one saved server.
type Record struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Host            string     `json:"host"`
	CreatedTime     time.Time  `json:"created_time"`
	LastSuccessTime *time.Time `json:"last_success_time,omitempty"`
	LastFailedTime  *time.Time `json:"last_failed_time,omitempty"`
	FailedCount     int        `json:"failed_count"`
}

// Document is the per-group registry file.
type Document struct {
	Version     int                `json:"version"`
	NextID      int64              `json:"next_id"`
	Servers     map[string]*Record `json:"servers"`
	LastCleanup *time.Time         `json:"last_cleanup,omitempty"`
}

func newDocument() *Document {
	return &Document{Version: SchemaVersion, NextID: 1, Servers: map[string]*Record{}}
}

func cloneRecord(r *Record) *Record {
	c := *r
	if r.LastSuccessTime != nil {
		t := *r.LastSuccessTime
		c.LastSuccessTime = &t
	}
	if r.LastFailedTime != nil {
		t := *r.LastFailedTime
		c.LastFailedTime = &t
	}
	return &c
}

// CheckName enforces registry naming: 1..32 runes, no whitespace or path
// separators. All-digit names are rejected so a name can never shadow an id.
func CheckName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return fmt.Errorf("%w: must be 1..%d characters", ErrInvalidName, maxNameLen)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, err := strconv.ParseInt(name, 10, 64); err == nil {
		return fmt.Errorf("%w: %q looks like an id", ErrInvalidName, name)
	}
	return nil
}

// CheckHost validates host syntax with the ping address grammar.
func CheckHost(host string) error {
	if _, err := mcping.ParseAddr(host); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHost, err)
	}
	return nil
}
