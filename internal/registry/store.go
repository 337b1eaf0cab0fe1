package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Store keeps one JSON document per chat group under a data directory.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore builds a store rooted at dir. The directory is created lazily on
// the first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir, locks: make(map[string]*sync.Mutex)}
}

// lock returns the mutex guarding a group's file. Locks key off the
// sanitized group so two raw ids that map to the same file share one lock.
func (s *Store) lock(group string) *sync.Mutex {
	key := sanitizeGroup(group)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *Store) path(group string) string {
	return filepath.Join(s.dir, sanitizeGroup(group)+".json")
}

// sanitizeGroup maps a chat group id to a safe file stem.
func sanitizeGroup(group string) string {
	var b strings.Builder
	for _, r := range group {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}

// load reads the group document. A missing or empty file yields a fresh
// document; files in the original name-keyed layout are migrated in memory.
func (s *Store) load(group string) (*Document, error) {
	raw, err := os.ReadFile(s.path(group))
	if errors.Is(err, os.ErrNotExist) {
		return newDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return newDocument(), nil
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err == nil && doc.Version > 0 {
		if doc.Version > SchemaVersion {
			return nil, fmt.Errorf("unsupported registry version %d", doc.Version)
		}
		if doc.Servers == nil {
			doc.Servers = map[string]*Record{}
		}
		for id, r := range doc.Servers {
			r.ID = id
		}
		if doc.NextID < 1 {
			doc.NextID = 1
		}
		return &doc, nil
	}
	return migrateLegacy(raw)
}

// migrateLegacy converts the original name-keyed layout {name: {name, host}}
// into a versioned document, assigning ids in name order.
func migrateLegacy(raw []byte) (*Document, error) {
	var legacy map[string]struct {
		Name string `json:"name"`
		Host string `json:"host"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}

	names := make([]string, 0, len(legacy))
	for name := range legacy {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := newDocument()
	now := time.Now().UTC()
	for _, name := range names {
		host := legacy[name].Host
		if host == "" {
			continue
		}
		rec := &Record{
			ID:          strconv.FormatInt(doc.NextID, 10),
			Name:        name,
			Host:        host,
			CreatedTime: now,
		}
		doc.Servers[rec.ID] = rec
		doc.NextID++
	}
	return doc, nil
}

// save writes doc to a temp file in the data directory and renames it over
// the group file so readers never observe a partial document.
func (s *Store) save(group string, doc *Document) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".registry-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod registry: %w", err)
	}
	if err := os.Rename(tmpName, s.path(group)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}

func findByName(doc *Document, name string) *Record {
	for _, r := range doc.Servers {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// findByKey resolves names before ids.
func findByKey(doc *Document, key string) *Record {
	if r := findByName(doc, key); r != nil {
		return r
	}
	if r, ok := doc.Servers[key]; ok {
		return r
	}
	return nil
}

// Add registers a new server under name. With force, an existing record of
// the same name keeps its id and creation time but takes the new host and a
// clean failure slate.
func (s *Store) Add(group, name, host string, force bool) (*Record, error) {
	name = strings.TrimSpace(name)
	host = strings.TrimSpace(host)
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if err := CheckHost(host); err != nil {
		return nil, err
	}

	l := s.lock(group)
	l.Lock()
	defer l.Unlock()

	doc, err := s.load(group)
	if err != nil {
		return nil, err
	}

	if existing := findByName(doc, name); existing != nil {
		if !force {
			return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
		}
		existing.Host = host
		existing.LastSuccessTime = nil
		existing.LastFailedTime = nil
		existing.FailedCount = 0
		if err := s.save(group, doc); err != nil {
			return nil, err
		}
		return cloneRecord(existing), nil
	}

	rec := &Record{
		ID:          strconv.FormatInt(doc.NextID, 10),
		Name:        name,
		Host:        host,
		CreatedTime: time.Now().UTC(),
	}
	doc.Servers[rec.ID] = rec
	doc.NextID++
	if err := s.save(group, doc); err != nil {
		return nil, err
	}
	return cloneRecord(rec), nil
}

// Delete removes the record key resolves to and returns it.
func (s *Store) Delete(group, key string) (*Record, error) {
	key = strings.TrimSpace(key)

	l := s.lock(group)
	l.Lock()
	defer l.Unlock()

	doc, err := s.load(group)
	if err != nil {
		return nil, err
	}
	rec := findByKey(doc, key)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(doc.Servers, rec.ID)
	if err := s.save(group, doc); err != nil {
		return nil, err
	}
	return cloneRecord(rec), nil
}

// Update renames and/or re-hosts a record. "-" or an empty string keeps the
// current value; changing the host resets the failure bookkeeping.
func (s *Store) Update(group, key, newName, newHost string) (*Record, error) {
	key = strings.TrimSpace(key)
	newName = strings.TrimSpace(newName)
	newHost = strings.TrimSpace(newHost)
	if newName == "-" {
		newName = ""
	}
	if newHost == "-" {
		newHost = ""
	}
	if newName == "" && newHost == "" {
		return nil, ErrNoChange
	}
	if newName != "" {
		if err := CheckName(newName); err != nil {
			return nil, err
		}
	}
	if newHost != "" {
		if err := CheckHost(newHost); err != nil {
			return nil, err
		}
	}

	l := s.lock(group)
	l.Lock()
	defer l.Unlock()

	doc, err := s.load(group)
	if err != nil {
		return nil, err
	}
	rec := findByKey(doc, key)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if newName != "" && newName != rec.Name {
		if other := findByName(doc, newName); other != nil && other.ID != rec.ID {
			return nil, fmt.Errorf("%w: %s", ErrNameTaken, newName)
		}
		rec.Name = newName
	}
	if newHost != "" && newHost != rec.Host {
		rec.Host = newHost
		rec.LastSuccessTime = nil
		rec.LastFailedTime = nil
		rec.FailedCount = 0
	}
	if err := s.save(group, doc); err != nil {
		return nil, err
	}
	return cloneRecord(rec), nil
}

// List returns the group's records ordered by numeric id.
func (s *Store) List(group string) ([]*Record, error) {
	l := s.lock(group)
	l.Lock()
	defer l.Unlock()

	doc, err := s.load(group)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(doc.Servers))
	for _, r := range doc.Servers {
		out = append(out, cloneRecord(r))
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseInt(out[i].ID, 10, 64)
		b, _ := strconv.ParseInt(out[j].ID, 10, 64)
		return a < b
	})
	return out, nil
}

// Resolve finds a record by name, then by id.
func (s *Store) Resolve(group, key string) (*Record, error) {
	key = strings.TrimSpace(key)

	l := s.lock(group)
	l.Lock()
	defer l.Unlock()

	doc, err := s.load(group)
	if err != nil {
		return nil, err
	}
	rec := findByKey(doc, key)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return cloneRecord(rec), nil
}

// RecordPing updates the ping bookkeeping for a record by id. A success
// stamps last_success_time and clears the failure streak; a failure stamps
// last_failed_time and extends it. A record deleted underneath a ping is
// silently ignored.
func (s *Store) RecordPing(group, id string, ok bool, at time.Time) error {
	at = at.UTC()

	l := s.lock(group)
	l.Lock()
	defer l.Unlock()

	doc, err := s.load(group)
	if err != nil {
		return err
	}
	rec, found := doc.Servers[id]
	if !found {
		return nil
	}
	if ok {
		rec.LastSuccessTime = &at
		rec.FailedCount = 0
	} else {
		rec.LastFailedTime = &at
		rec.FailedCount++
	}
	return s.save(group, doc)
}
