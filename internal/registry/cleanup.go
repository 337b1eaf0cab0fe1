package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// CleanupPolicy decides which records the janitor removes. A record is stale
// when its failure streak has reached MaxFailures and its last success
// (creation time when it never succeeded) is older than StaleAfter. A zero
// value disables the corresponding criterion; the zero policy removes
// nothing.
type CleanupPolicy struct {
	MaxFailures int
	StaleAfter  time.Duration
}

func (p CleanupPolicy) enabled() bool {
	return p.MaxFailures > 0 || p.StaleAfter > 0
}

func (p CleanupPolicy) stale(r *Record, now time.Time) bool {
	if !p.enabled() {
		return false
	}
	if p.MaxFailures > 0 && r.FailedCount < p.MaxFailures {
		return false
	}
	if p.StaleAfter > 0 {
		ref := r.CreatedTime
		if r.LastSuccessTime != nil {
			ref = *r.LastSuccessTime
		}
		if now.Sub(ref) < p.StaleAfter {
			return false
		}
	}
	return true
}

// Cleanup removes stale records from one group, stamps last_cleanup, and
// returns what was removed.
func (s *Store) Cleanup(group string, policy CleanupPolicy) ([]*Record, error) {
	now := time.Now().UTC()

	l := s.lock(group)
	l.Lock()
	defer l.Unlock()

	doc, err := s.load(group)
	if err != nil {
		return nil, err
	}
	var removed []*Record
	for id, r := range doc.Servers {
		if policy.stale(r, now) {
			removed = append(removed, cloneRecord(r))
			delete(doc.Servers, id)
		}
	}
	doc.LastCleanup = &now
	if err := s.save(group, doc); err != nil {
		return nil, err
	}
	return removed, nil
}

// Groups lists the group ids that currently have a registry file. The
// returned ids are the sanitized file stems, which feed straight back into
// the other operations.
func (s *Store) Groups() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data dir: %w", err)
	}
	var groups []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		groups = append(groups, strings.TrimSuffix(name, ".json"))
	}
	return groups, nil
}

// CleanupAll sweeps every group file and reports how many records fell.
func (s *Store) CleanupAll(policy CleanupPolicy) (int, error) {
	groups, err := s.Groups()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, g := range groups {
		removed, err := s.Cleanup(g, policy)
		if err != nil {
			return total, fmt.Errorf("failed to clean group %s: %w", g, err)
		}
		total += len(removed)
	}
	return total, nil
}
