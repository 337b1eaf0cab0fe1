package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFacesEmbeddedFallback(t *testing.T) {
	faces, err := LoadFaces(nil, nil)
	if err != nil {
		t.Fatalf("LoadFaces: %v", err)
	}
	f, err := faces.Face(20, false)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if f == nil {
		t.Fatal("nil face")
	}
}

func TestLoadFacesSkipsBadCandidates(t *testing.T) {
	junk := filepath.Join(t.TempDir(), "junk.ttf")
	if err := os.WriteFile(junk, []byte("not a font"), 0o600); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	faces, err := LoadFaces(
		[]string{"/definitely/missing.ttf", junk},
		[]string{"/also/missing.ttf"},
	)
	if err != nil {
		t.Fatalf("LoadFaces should fall back, got %v", err)
	}
	if _, err := faces.Face(18, true); err != nil {
		t.Fatalf("Face: %v", err)
	}
}

func TestFaceCacheReuses(t *testing.T) {
	faces, err := LoadFaces(nil, nil)
	if err != nil {
		t.Fatalf("LoadFaces: %v", err)
	}
	a, err := faces.Face(20, false)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	b, err := faces.Face(20, false)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if a != b {
		t.Error("same size should return the cached face")
	}

	bold, err := faces.Face(20, true)
	if err != nil {
		t.Fatalf("Face bold: %v", err)
	}
	if bold == a {
		t.Error("bold face should differ from regular")
	}
}
