package render

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FaceSet loads the TrueType fonts the renderer draws with and hands out
// size-specific faces from a cache. Safe for concurrent use.
type FaceSet struct {
	regular *sfnt.Font
	bold    *sfnt.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

// LoadFaces tries each candidate font file in order, regular and bold
// independently, and falls back to the embedded Go fonts when no candidate
// can be read or parsed.
func LoadFaces(regularPaths, boldPaths []string) (*FaceSet, error) {
	regular, err := loadFirst(regularPaths, goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := loadFirst(boldPaths, gobold.TTF)
	if err != nil {
		return nil, err
	}
	return &FaceSet{
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

func loadFirst(paths []string, fallback []byte) (*sfnt.Font, error) {
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := opentype.Parse(raw)
		if err != nil {
			continue
		}
		return f, nil
	}
	f, err := opentype.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	return f, nil
}

// Face returns a cached face for the given point size.
func (fs *FaceSet) Face(size float64, bold bool) (font.Face, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := faceKey{bold: bold, size: size}
	if f, ok := fs.faces[key]; ok {
		return f, nil
	}
	src := fs.regular
	if bold {
		src = fs.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build %gpt face: %w", size, err)
	}
	fs.faces[key] = face
	return face, nil
}
