package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/fogleman/gg"

	"github.com/craftwatch/craftwatch/internal/mcping"
)

// Layout metrics. The card width is fixed; height follows the content.
const (
	cardWidth = 600

	padX       = 20
	headerPadY = 20
	titleH     = 36
	motdLineH  = 26
	sepGap     = 8
	minHeaderH = 104
	infoH      = 30
	headingH   = 30
	rowH       = 30
	footerH    = 26
	bottomPad  = 14

	titleSize = 30
	textSize  = 20
	smallSize = 18

	playersPerRow = 4
	playerSep     = " • "

	maxMOTDLines = 2
)

// Result carries one encoded card.
type Result struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Renderer composes status cards. Safe for concurrent use.
type Renderer struct {
	faces      *FaceSet
	maxPlayers int
	now        func() time.Time
}

// NewRenderer builds a renderer drawing with faces. maxPlayers caps how many
// sample entries one card shows; zero or negative means the default of 40.
func NewRenderer(faces *FaceSet, maxPlayers int) *Renderer {
	if maxPlayers <= 0 {
		maxPlayers = 40
	}
	return &Renderer{faces: faces, maxPlayers: maxPlayers, now: time.Now}
}

func headerHeight(motdLines int) int {
	h := headerPadY + titleH + motdLines*motdLineH + sepGap
	if h < minHeaderH {
		h = minHeaderH
	}
	return h
}

func cardHeight(motdLines, rows int) int {
	return headerHeight(motdLines) + infoH + headingH + rows*rowH + footerH + bottomPad
}

// Card renders the status of one server. title is the display name shown in
// the header; when empty the resolved address stands in.
func (r *Renderer) Card(st *mcping.Status, title string) (*Result, error) {
	if st == nil {
		return nil, errors.New("render: nil status")
	}
	if title == "" {
		title = st.Resolved
	}

	motdLines := splitSpanLines(st.Description.Spans(), maxMOTDLines)
	names, extra := sampleNames(&st.Players, r.maxPlayers)
	rows := playerRows(names, extra)
	if len(rows) == 0 {
		rows = []string{occupancyNote(&st.Players)}
	}

	headerH := headerHeight(len(motdLines))
	height := cardHeight(len(motdLines), len(rows))

	dc := gg.NewContext(cardWidth, height)
	dc.SetColor(colorBackground)
	dc.Clear()

	icon := r.icon(st)
	dc.DrawImage(banner(icon, cardWidth, headerH), 0, 0)
	dc.DrawImage(icon, padX, headerPadY)

	textX := float64(padX + iconSize + padX)
	maxX := float64(cardWidth - padX)

	// header: name and MOTD beside the icon
	titleSpan := []mcping.Span{{Text: title, Color: "green", Bold: true}}
	if err := r.drawSpans(dc, titleSpan, textX, headerPadY+30, maxX, titleSize); err != nil {
		return nil, err
	}
	for i, line := range motdLines {
		baseline := float64(headerPadY + titleH + (i+1)*motdLineH - 6)
		if err := r.drawSpans(dc, line, textX, baseline, maxX, textSize); err != nil {
			return nil, err
		}
	}

	dc.SetColor(dim(colorAccent, 0.5))
	dc.SetLineWidth(1)
	dc.DrawLine(padX, float64(headerH), float64(cardWidth-padX), float64(headerH))
	dc.Stroke()

	// info row: version left, latency right
	infoBase := float64(headerH + 22)
	verSpan := []mcping.Span{{Text: "Version " + versionName(st)}}
	if err := r.drawSpans(dc, verSpan, padX, infoBase, float64(cardWidth-160), textSize); err != nil {
		return nil, err
	}
	face, err := r.faces.Face(textSize, false)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)
	dc.SetColor(latencyColor(st.Latency))
	dc.DrawStringAnchored(fmt.Sprintf("%d ms", st.Latency.Milliseconds()), maxX, infoBase, 1, 0)

	// players block
	headingBase := float64(headerH + infoH + 22)
	heading := fmt.Sprintf("Players (%d/%d)", st.Players.Online, st.Players.Max)
	headingSpan := []mcping.Span{{Text: heading, Color: "green", Bold: true}}
	if err := r.drawSpans(dc, headingSpan, padX, headingBase, maxX, textSize); err != nil {
		return nil, err
	}
	bodyTop := headerH + infoH + headingH
	for i, row := range rows {
		baseline := float64(bodyTop + i*rowH + 21)
		if err := r.drawSpans(dc, []mcping.Span{{Text: row}}, padX, baseline, maxX, textSize); err != nil {
			return nil, err
		}
	}

	// footer: resolved address and query time
	small, err := r.faces.Face(smallSize, false)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(small)
	dc.SetColor(colorMuted)
	footer := fmt.Sprintf("%s  ·  %s", st.Resolved, r.now().Format("2006-01-02 15:04:05"))
	dc.DrawString(footer, padX, float64(bodyTop+len(rows)*rowH+18))

	dc.SetColor(colorAccent)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(10, 10, cardWidth-20, float64(height-20), 10)
	dc.Stroke()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode card: %w", err)
	}
	return &Result{
		Width:       cardWidth,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// icon returns the header tile for st: the decoded favicon, or the
// placeholder when the server sent none or sent garbage.
func (r *Renderer) icon(st *mcping.Status) image.Image {
	raw, err := st.Favicon()
	if err != nil || len(raw) == 0 {
		return PlaceholderIcon()
	}
	img, err := DecodeIcon(raw)
	if err != nil {
		return PlaceholderIcon()
	}
	return img
}

func versionName(st *mcping.Status) string {
	if st.Version.Name == "" {
		return "unknown"
	}
	return st.Version.Name
}

// occupancyNote describes an empty player area.
func occupancyNote(p *mcping.Players) string {
	if p.Online <= 0 {
		return "No players online"
	}
	return "Player list not advertised"
}

// sampleNames extracts up to limit names from the advertised sample and
// reports how many were cut.
func sampleNames(p *mcping.Players, limit int) ([]string, int) {
	names := make([]string, 0, len(p.Sample))
	for _, s := range p.Sample {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) > limit {
		return names[:limit], len(names) - limit
	}
	return names, 0
}

// playerRows joins names into display rows of four, appending a note for
// entries the cap cut away.
func playerRows(names []string, extra int) []string {
	var rows []string
	for i := 0; i < len(names); i += playersPerRow {
		end := i + playersPerRow
		if end > len(names) {
			end = len(names)
		}
		rows = append(rows, strings.Join(names[i:end], playerSep))
	}
	if extra > 0 {
		rows = append(rows, fmt.Sprintf("and %d more...", extra))
	}
	return rows
}

// splitSpanLines breaks spans at newlines and keeps the first limit
// non-empty lines.
func splitSpanLines(spans []mcping.Span, limit int) [][]mcping.Span {
	var lines [][]mcping.Span
	var cur []mcping.Span
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, cur)
			cur = nil
		}
	}
	for _, s := range spans {
		parts := strings.Split(s.Text, "\n")
		for i, p := range parts {
			if i > 0 {
				flush()
			}
			if p == "" {
				continue
			}
			ns := s
			ns.Text = p
			cur = append(cur, ns)
		}
	}
	flush()
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return lines
}

// drawSpans draws one line of styled runs starting at x, ellipsizing at
// maxX. Underline and strikethrough are drawn as hairlines since TrueType
// faces carry no decoration.
func (r *Renderer) drawSpans(dc *gg.Context, line []mcping.Span, x, baseline, maxX float64, size float64) error {
	for _, s := range line {
		if s.Text == "" {
			continue
		}
		face, err := r.faces.Face(size, s.Bold)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.SetColor(SpanColor(s.Color))

		text := s.Text
		w, _ := dc.MeasureString(text)
		truncated := false
		for w > maxX-x && text != "" {
			truncated = true
			runes := []rune(text)
			text = string(runes[:len(runes)-1])
			w, _ = dc.MeasureString(text + "…")
		}
		if truncated {
			text += "…"
		}
		if text == "" {
			break
		}
		dc.DrawString(text, x, baseline)
		w, _ = dc.MeasureString(text)
		if s.Underlined {
			dc.SetLineWidth(1)
			dc.DrawLine(x, baseline+2, x+w, baseline+2)
			dc.Stroke()
		}
		if s.Strikethrough {
			dc.SetLineWidth(1)
			dc.DrawLine(x, baseline-size*0.3, x+w, baseline-size*0.3)
			dc.Stroke()
		}
		x += w
		if truncated {
			break
		}
	}
	return nil
}
