// Package render composes server status cards as PNG images.
//
// A card is a 600 px wide dark panel: the server icon (favicon or a
// procedural placeholder) over a blurred banner strip, the display name,
// the MOTD in its chat colors, a version/latency row, the player sample in
// rows of four, and a footer naming the resolved address. Height grows with
// the number of player rows and MOTD lines.
//
// Text is drawn with TrueType faces. Configured font files are tried in
// order and the embedded Go fonts serve as the fallback, so rendering works
// on machines with no fonts installed at all.
//
// Renderer and FaceSet are safe for concurrent use.
package render
