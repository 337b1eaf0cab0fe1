package mcping

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const sectionSign = '§'

// legacyColors maps the classic formatting codes to canonical color names.
var legacyColors = map[rune]string{
	'0': "black", '1': "dark_blue", '2': "dark_green", '3': "dark_aqua",
	'4': "dark_red", '5': "dark_purple", '6': "gold", '7': "gray",
	'8': "dark_gray", '9': "blue", 'a': "green", 'b': "aqua",
	'c': "red", 'd': "light_purple", 'e': "yellow", 'f': "white",
}

// Message is one node of the chat component tree used by the status
// description. The wire form may be a bare JSON string, an object with
// optional formatting and "extra" children, or an array of sibling
// components.
type Message struct {
	Text          string
	Color         string
	Bold          bool
	Italic        bool
	Underlined    bool
	Strikethrough bool
	Obfuscated    bool
	Extra         []Message
}

// Span is a styled run of text ready for drawing. Color is a canonical name
// ("red", "dark_aqua", ...) or a "#rrggbb" literal; empty means the default
// text color.
type Span struct {
	Text          string
	Color         string
	Bold          bool
	Italic        bool
	Underlined    bool
	Strikethrough bool
	Obfuscated    bool
}

// UnmarshalJSON accepts the three wire forms of a chat component. Arrays
// fold into the first sibling with the rest appended as children, which is
// how vanilla clients treat them for display purposes.
func (m *Message) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty chat component")
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &m.Text)
	case '[':
		var list []Message
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("failed to decode chat component list: %w", err)
		}
		if len(list) == 0 {
			*m = Message{}
			return nil
		}
		*m = list[0]
		m.Extra = append(m.Extra, list[1:]...)
		return nil
	}

	var raw struct {
		Text          string    `json:"text"`
		Translate     string    `json:"translate"`
		Color         string    `json:"color"`
		Bold          bool      `json:"bold"`
		Italic        bool      `json:"italic"`
		Underlined    bool      `json:"underlined"`
		Strikethrough bool      `json:"strikethrough"`
		Obfuscated    bool      `json:"obfuscated"`
		Extra         []Message `json:"extra"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode chat component: %w", err)
	}
	m.Text = raw.Text
	if m.Text == "" && raw.Translate != "" {
		m.Text = raw.Translate
	}
	m.Color = raw.Color
	m.Bold = raw.Bold
	m.Italic = raw.Italic
	m.Underlined = raw.Underlined
	m.Strikethrough = raw.Strikethrough
	m.Obfuscated = raw.Obfuscated
	m.Extra = raw.Extra
	return nil
}

// Spans flattens the component tree into styled runs, resolving legacy
// formatting codes embedded in any text node. Runs with no text are dropped.
func (m Message) Spans() []Span {
	var out []Span
	m.appendSpans(&out, Span{})
	return out
}

func (m Message) appendSpans(out *[]Span, inherited Span) {
	base := inherited
	if m.Color != "" {
		base.Color = normalizeColor(m.Color)
	}
	if m.Bold {
		base.Bold = true
	}
	if m.Italic {
		base.Italic = true
	}
	if m.Underlined {
		base.Underlined = true
	}
	if m.Strikethrough {
		base.Strikethrough = true
	}
	if m.Obfuscated {
		base.Obfuscated = true
	}
	appendLegacy(out, base, m.Text)
	for _, e := range m.Extra {
		e.appendSpans(out, base)
	}
}

// appendLegacy runs the classic § state machine over text. A color code
// resets the active styles, a style code accumulates, and §r restores the
// component's inherited formatting. Unknown codes are dropped the way
// vanilla clients drop them.
func appendLegacy(out *[]Span, base Span, text string) {
	cur := base
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		s := cur
		s.Text = b.String()
		*out = append(*out, s)
		b.Reset()
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != sectionSign || i+size >= len(text) {
			b.WriteRune(r)
			i += size
			continue
		}
		code, csize := utf8.DecodeRuneInString(text[i+size:])
		i += size + csize
		code = unicode.ToLower(code)
		if name, ok := legacyColors[code]; ok {
			flush()
			cur = Span{Color: name}
			continue
		}
		switch code {
		case 'k':
			flush()
			cur.Obfuscated = true
		case 'l':
			flush()
			cur.Bold = true
		case 'm':
			flush()
			cur.Strikethrough = true
		case 'n':
			flush()
			cur.Underlined = true
		case 'o':
			flush()
			cur.Italic = true
		case 'r':
			flush()
			cur = base
		}
	}
	flush()
}

// Plain returns the message text with all component structure and legacy
// codes stripped.
func (m Message) Plain() string {
	var b strings.Builder
	for _, s := range m.Spans() {
		b.WriteString(s.Text)
	}
	return b.String()
}

func (m Message) String() string { return m.Plain() }

// normalizeColor lowercases color names and hex literals; unknown names pass
// through for the renderer to fall back on.
func normalizeColor(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
