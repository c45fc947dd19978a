package synth

import (
	"strings"
	"unicode"
)

// builder assembles document text append-only. Spans are recorded at the
// moment a value is written, so their offsets already refer to the final text.
type builder struct {
	sb     strings.Builder
	spans  []GroundTruthSpan
	decoys []GroundTruthSpan
	words  int
	inWord bool
}

func (b *builder) WriteString(s string) {
	for _, r := range s {
		space := unicode.IsSpace(r)
		if !space && !b.inWord {
			b.words++
		}
		b.inWord = !space
	}
	b.sb.WriteString(s)
}

// value appends v and records it as ground truth for sitID.
func (b *builder) value(sitID, v string) {
	b.spans = append(b.spans, b.record(sitID, v))
}

// plant writes an occurrence, recording it as ground truth or as a decoy.
func (b *builder) plant(o occurrence) {
	if o.decoy {
		b.decoys = append(b.decoys, b.record(o.def.ID(), o.value))
		return
	}
	b.value(o.def.ID(), o.value)
}

func (b *builder) record(sitID, v string) GroundTruthSpan {
	start := b.sb.Len()
	b.WriteString(v)
	return GroundTruthSpan{SITID: sitID, Start: start, End: b.sb.Len(), Value: v}
}

// Words returns the whitespace-separated word count written so far.
func (b *builder) Words() int { return b.words }

func (b *builder) String() string { return b.sb.String() }
