package render

import (
	"image/color"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Card palette, inherited from the bot's original look.
var (
	colorBackground = color.RGBA{0x22, 0x22, 0x22, 0xFF}
	colorText       = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	colorAccent     = color.RGBA{0x55, 0xFF, 0x55, 0xFF}
	colorWarning    = color.RGBA{0xFF, 0xAA, 0x00, 0xFF}
	colorError      = color.RGBA{0xFF, 0x55, 0x55, 0xFF}
	colorMuted      = color.RGBA{0xAA, 0xAA, 0xAA, 0xFF}
)

// chatColors maps canonical chat color names to their vanilla values.
var chatColors = map[string]string{
	"black":        "#000000",
	"dark_blue":    "#0000AA",
	"dark_green":   "#00AA00",
	"dark_aqua":    "#00AAAA",
	"dark_red":     "#AA0000",
	"dark_purple":  "#AA00AA",
	"gold":         "#FFAA00",
	"gray":         "#AAAAAA",
	"dark_gray":    "#555555",
	"blue":         "#5555FF",
	"green":        "#55FF55",
	"aqua":         "#55FFFF",
	"red":          "#FF5555",
	"light_purple": "#FF55FF",
	"yellow":       "#FFFF55",
	"white":        "#FFFFFF",
}

// SpanColor resolves a chat span color (canonical name or #rrggbb literal)
// to a concrete color, falling back to the default text color for anything
// it does not recognize.
func SpanColor(name string) color.Color {
	if name == "" {
		return colorText
	}
	hex := name
	if mapped, ok := chatColors[strings.ToLower(name)]; ok {
		hex = mapped
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorText
	}
	return c
}

// latencyColor grades a round trip: under 100ms healthy, under 200ms
// warning, anything slower an error.
func latencyColor(d time.Duration) color.Color {
	switch ms := d.Milliseconds(); {
	case ms < 100:
		return colorAccent
	case ms < 200:
		return colorWarning
	default:
		return colorError
	}
}

// dim blends c toward the card background for secondary strokes.
func dim(c color.Color, amount float64) color.Color {
	a, ok := colorful.MakeColor(c)
	if !ok {
		return c
	}
	b, _ := colorful.MakeColor(colorBackground)
	return a.BlendLab(b, amount).Clamped()
}
