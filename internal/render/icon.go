package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

const (
	iconSize   = 64
	iconRadius = 10
)

// DecodeIcon turns raw favicon bytes into a 64x64 rounded-corner tile.
// Non-square icons are center-cropped before scaling.
func DecodeIcon(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon: %w", err)
	}
	fitted := imaging.Fill(img, iconSize, iconSize, imaging.Center, imaging.Lanczos)
	return roundIcon(fitted), nil
}

// PlaceholderIcon paints the tile shown when a server advertises no favicon:
// a grass block reduced to two flat fields.
func PlaceholderIcon() image.Image {
	dc := gg.NewContext(iconSize, iconSize)
	dc.SetRGB255(0x6B, 0x46, 0x2E)
	dc.Clear()
	dc.SetRGB255(0x4C, 0xA1, 0x4C)
	dc.DrawRectangle(0, 0, iconSize, iconSize/3)
	dc.Fill()
	return roundIcon(dc.Image())
}

// roundIcon masks img with a rounded rectangle.
func roundIcon(img image.Image) image.Image {
	dc := gg.NewContext(iconSize, iconSize)
	dc.DrawRoundedRectangle(0, 0, iconSize, iconSize, iconRadius)
	dc.Clip()
	dc.DrawImage(img, 0, 0)
	return dc.Image()
}

// banner stretches the icon across the header, blurs it, and dims it so the
// title stays readable on top.
func banner(icon image.Image, width, height int) image.Image {
	stretched := imaging.Resize(icon, width, height, imaging.Lanczos)
	blurred := blur.Gaussian(stretched, 8)
	dc := gg.NewContextForRGBA(blurred)
	dc.SetRGBA255(0x22, 0x22, 0x22, 0xB4)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()
	return dc.Image()
}
