package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestAddAndResolve(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Add("g1", "survival", "mc.example.com", false)
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID)
	assert.Equal(t, "survival", rec.Name)
	assert.Equal(t, "mc.example.com", rec.Host)
	assert.False(t, rec.CreatedTime.IsZero())
	assert.Nil(t, rec.LastSuccessTime)
	assert.Zero(t, rec.FailedCount)

	byName, err := s.Resolve("g1", "survival")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, byName.ID)

	byID, err := s.Resolve("g1", "1")
	require.NoError(t, err)
	assert.Equal(t, "survival", byID.Name)

	_, err = s.Resolve("g1", "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Resolve("other-group", "survival")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddTrimsInput(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.Add("g1", "  lobby  ", "  mc.example.com:25566  ", false)
	require.NoError(t, err)
	assert.Equal(t, "lobby", rec.Name)
	assert.Equal(t, "mc.example.com:25566", rec.Host)
}

func TestAddDuplicateAndForce(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Add("g1", "survival", "a.example.com", false)
	require.NoError(t, err)

	_, err = s.Add("g1", "survival", "b.example.com", false)
	assert.ErrorIs(t, err, ErrNameTaken)

	require.NoError(t, s.RecordPing("g1", first.ID, false, time.Now()))

	forced, err := s.Add("g1", "survival", "b.example.com", true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, forced.ID, "force keeps the id")
	assert.Equal(t, first.CreatedTime, forced.CreatedTime, "force keeps the creation time")
	assert.Equal(t, "b.example.com", forced.Host)
	assert.Zero(t, forced.FailedCount, "force resets the failure streak")
	assert.Nil(t, forced.LastFailedTime)
}

func TestAddValidation(t *testing.T) {
	s := newTestStore(t)

	nameCases := []string{"", "has space", "12345", strings.Repeat("x", 33), `a/b`, `a\b`}
	for _, name := range nameCases {
		_, err := s.Add("g1", name, "mc.example.com", false)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}

	hostCases := []string{"", "bad host", "x.example.com:99999", "x.example.com:0"}
	for _, host := range hostCases {
		_, err := s.Add("g1", "valid", host, false)
		assert.ErrorIs(t, err, ErrInvalidHost, "host %q", host)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	s.Add("g1", "alpha", "a.example.com", false)
	s.Add("g1", "beta", "b.example.com", false)

	rec, err := s.Delete("g1", "2")
	require.NoError(t, err)
	assert.Equal(t, "beta", rec.Name)

	_, err = s.Resolve("g1", "beta")
	assert.ErrorIs(t, err, ErrNotFound)

	rec, err = s.Delete("g1", "alpha")
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID)

	_, err = s.Delete("g1", "alpha")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIDsNeverReused(t *testing.T) {
	s := newTestStore(t)
	s.Add("g1", "alpha", "a.example.com", false)
	s.Add("g1", "beta", "b.example.com", false)

	_, err := s.Delete("g1", "beta")
	require.NoError(t, err)

	rec, err := s.Add("g1", "gamma", "c.example.com", false)
	require.NoError(t, err)
	assert.Equal(t, "3", rec.ID)
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	s.Add("g1", "alpha", "a.example.com", false)
	s.Add("g1", "beta", "b.example.com", false)

	renamed, err := s.Update("g1", "alpha", "lobby", "-")
	require.NoError(t, err)
	assert.Equal(t, "lobby", renamed.Name)
	assert.Equal(t, "a.example.com", renamed.Host)

	require.NoError(t, s.RecordPing("g1", renamed.ID, false, time.Now()))

	rehosted, err := s.Update("g1", "1", "-", "new.example.com")
	require.NoError(t, err)
	assert.Equal(t, "lobby", rehosted.Name)
	assert.Equal(t, "new.example.com", rehosted.Host)
	assert.Zero(t, rehosted.FailedCount, "re-host resets the failure streak")

	_, err = s.Update("g1", "lobby", "beta", "-")
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = s.Update("g1", "lobby", "-", "-")
	assert.ErrorIs(t, err, ErrNoChange)

	_, err = s.Update("g1", "ghost", "x", "-")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update("g1", "lobby", "9000", "-")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestListNumericOrder(t *testing.T) {
	s := newTestStore(t)
	for i := 1; i <= 12; i++ {
		_, err := s.Add("g1", fmt.Sprintf("server-%02d", i), "mc.example.com", false)
		require.NoError(t, err)
	}

	recs, err := s.List("g1")
	require.NoError(t, err)
	require.Len(t, recs, 12)
	for i, r := range recs {
		assert.Equal(t, fmt.Sprintf("%d", i+1), r.ID)
	}
}

func TestRecordPing(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.Add("g1", "alpha", "a.example.com", false)
	require.NoError(t, err)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordPing("g1", rec.ID, false, at))
	require.NoError(t, s.RecordPing("g1", rec.ID, false, at.Add(time.Minute)))

	got, err := s.Resolve("g1", "alpha")
	require.NoError(t, err)
	assert.Equal(t, 2, got.FailedCount)
	require.NotNil(t, got.LastFailedTime)
	assert.Equal(t, at.Add(time.Minute), *got.LastFailedTime)
	assert.Nil(t, got.LastSuccessTime)

	require.NoError(t, s.RecordPing("g1", rec.ID, true, at.Add(2*time.Minute)))
	got, err = s.Resolve("g1", "alpha")
	require.NoError(t, err)
	assert.Zero(t, got.FailedCount)
	require.NotNil(t, got.LastSuccessTime)
	assert.Equal(t, at.Add(2*time.Minute), *got.LastSuccessTime)
	assert.NotNil(t, got.LastFailedTime, "failure history is kept")

	// unknown ids are a no-op, not an error
	require.NoError(t, s.RecordPing("g1", "404", true, at))
}

func TestPersistenceAcrossStores(t *testing.T) {
	dir := t.TempDir()

	s1 := NewStore(dir)
	_, err := s1.Add("g1", "alpha", "a.example.com", false)
	require.NoError(t, err)

	s2 := NewStore(dir)
	recs, err := s2.List("g1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "alpha", recs[0].Name)
}

func TestLegacyMigration(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"old":{"name":"old","host":"old.example.com"},"second":{"name":"second","host":"two.example.com"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "g1.json"), []byte(legacy), 0o600))

	s := NewStore(dir)
	recs, err := s.List("g1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0].ID)
	assert.Equal(t, "old", recs[0].Name)
	assert.Equal(t, "old.example.com", recs[0].Host)
	assert.Equal(t, "2", recs[1].ID)
	assert.Equal(t, "second", recs[1].Name)

	// first mutation persists the migrated layout
	_, err = s.Add("g1", "third", "three.example.com", false)
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(dir, "g1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": 1`)
	assert.Contains(t, string(raw), `"next_id": 4`)
}

func TestUnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	doc := `{"version": 99, "next_id": 1, "servers": {}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "g1.json"), []byte(doc), 0o600))

	s := NewStore(dir)
	_, err := s.List("g1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported registry version")
}

func TestEmptyFileIsFreshDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "g1.json"), []byte("  \n"), 0o600))

	s := NewStore(dir)
	recs, err := s.List("g1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSanitizeGroup(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"123456789", "123456789"},
		{"group-42_x.y", "group-42_x.y"},
		{"a/b", "a_b"},
		{`a\b`, "a_b"},
		{"", "default"},
		{"emoji🐢id", "emoji_id"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeGroup(tt.in), "sanitizeGroup(%q)", tt.in)
	}
}

func TestConcurrentAdds(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Add("g", fmt.Sprintf("server-%02d", i), "mc.example.com", false)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	recs, err := s.List("g")
	require.NoError(t, err)
	require.Len(t, recs, 16, "no adds may be lost")

	seen := map[string]bool{}
	for _, r := range recs {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}
