package synth

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"
)

// DefaultLayout is used for formats without a layout of their own.
const DefaultLayout = "document"

type layout struct {
	template       string
	chat           bool
	conversational bool
}

var layouts = map[string]layout{
	"document": {
		template: "CONFIDENTIAL - Document {doc_id}\n\n{sits_block}\n\nGenerated at: {timestamp}\n",
	},
	"email": {
		template:       "From: {from}\nTo: {to}\nSubject: {subject}\n\n{sits_block}\n\nRegards,\n{sender}\n",
		conversational: true,
	},
	"email_with_attachment": {
		template:       "From: {from}\nTo: {to}\nSubject: {subject}\n\n{sits_block}\n\nAttached: report.xlsx\n\nRegards,\n{sender}\n",
		conversational: true,
	},
	"chat": {
		template: "{sits_block}\n",
		chat:     true,
	},
}

// Layouts returns the known layout names, sorted.
func Layouts() []string {
	names := make([]string, 0, len(layouts))
	for n := range layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HasLayout reports whether format has a dedicated layout.
func HasLayout(format string) bool {
	_, ok := layouts[format]
	return ok
}

func layoutFor(format string) layout {
	if l, ok := layouts[format]; ok {
		return l
	}
	return layouts[DefaultLayout]
}

// epoch anchors footer timestamps so they depend only on the seed.
var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func timestamp(r *rand.Rand) string {
	offset := time.Duration(r.Int64N(365*24*3600)) * time.Second
	return epoch.Add(offset).Format(time.RFC3339)
}

// expand walks tmpl left to right, writing literals and calling fill for each
// {placeholder}. Placeholders are filled in the order they appear.
func expand(b *builder, tmpl string, fill func(name string) error) error {
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			return nil
		}
		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			return fmt.Errorf("unterminated placeholder in layout %q", tmpl)
		}
		b.WriteString(tmpl[:open])
		if err := fill(tmpl[open+1 : open+end]); err != nil {
			return err
		}
		tmpl = tmpl[open+end+1:]
	}
}

// chatClock hands out monotonically increasing HH:MM stamps.
type chatClock struct{ minute int }

func newChatClock(r *rand.Rand) *chatClock {
	return &chatClock{minute: 8*60 + r.IntN(9*60)}
}

func (c *chatClock) next(r *rand.Rand) string {
	c.minute += r.IntN(4)
	m := c.minute % (24 * 60)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
