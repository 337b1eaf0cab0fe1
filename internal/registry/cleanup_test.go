package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyStale(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-time.Hour)

	tests := []struct {
		name   string
		policy CleanupPolicy
		rec    Record
		want   bool
	}{
		{
			name:   "zero policy removes nothing",
			policy: CleanupPolicy{},
			rec:    Record{FailedCount: 100, CreatedTime: old},
			want:   false,
		},
		{
			name:   "failure streak below threshold",
			policy: CleanupPolicy{MaxFailures: 10},
			rec:    Record{FailedCount: 9, CreatedTime: old},
			want:   false,
		},
		{
			name:   "failure streak at threshold",
			policy: CleanupPolicy{MaxFailures: 10},
			rec:    Record{FailedCount: 10, CreatedTime: old},
			want:   true,
		},
		{
			name:   "recent success saves a failing record",
			policy: CleanupPolicy{MaxFailures: 10, StaleAfter: 30 * 24 * time.Hour},
			rec:    Record{FailedCount: 50, CreatedTime: old, LastSuccessTime: &recent},
			want:   false,
		},
		{
			name:   "old success with failure streak",
			policy: CleanupPolicy{MaxFailures: 10, StaleAfter: 30 * 24 * time.Hour},
			rec:    Record{FailedCount: 10, CreatedTime: old, LastSuccessTime: &old},
			want:   true,
		},
		{
			name:   "never succeeded falls back to creation time",
			policy: CleanupPolicy{MaxFailures: 1, StaleAfter: 30 * 24 * time.Hour},
			rec:    Record{FailedCount: 1, CreatedTime: old},
			want:   true,
		},
		{
			name:   "fresh record survives staleness window",
			policy: CleanupPolicy{MaxFailures: 1, StaleAfter: 30 * 24 * time.Hour},
			rec:    Record{FailedCount: 1, CreatedTime: recent},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			assert.Equal(t, tt.want, tt.policy.stale(&rec, now))
		})
	}
}

func TestCleanup(t *testing.T) {
	s := newTestStore(t)
	keep, err := s.Add("g1", "healthy", "a.example.com", false)
	require.NoError(t, err)
	drop, err := s.Add("g1", "flaky", "b.example.com", false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordPing("g1", drop.ID, false, time.Now()))
	}

	removed, err := s.Cleanup("g1", CleanupPolicy{MaxFailures: 3})
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "flaky", removed[0].Name)

	recs, err := s.List("g1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, keep.ID, recs[0].ID)

	raw, err := os.ReadFile(filepath.Join(s.dir, "g1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"last_cleanup"`)
}

func TestCleanupAll(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Add("group-a", "one", "a.example.com", false)
	require.NoError(t, err)
	b, err := s.Add("group-b", "two", "b.example.com", false)
	require.NoError(t, err)
	_, err = s.Add("group-b", "three", "c.example.com", false)
	require.NoError(t, err)

	require.NoError(t, s.RecordPing("group-a", a.ID, false, time.Now()))
	require.NoError(t, s.RecordPing("group-b", b.ID, false, time.Now()))

	groups, err := s.Groups()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"group-a", "group-b"}, groups)

	total, err := s.CleanupAll(CleanupPolicy{MaxFailures: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	recs, err := s.List("group-b")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "three", recs[0].Name)
}

func TestGroupsEmptyDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing"))
	groups, err := s.Groups()
	require.NoError(t, err)
	assert.Empty(t, groups)
}
