// Package synth turns a planned DocumentSpec into text with planted SIT
// values and an exact record of where each value landed.
package synth

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/gzhole/sitbench/internal/plan"
	"github.com/gzhole/sitbench/internal/sit"
)

// synthStream separates the synthesizer's PCG stream from the planner's.
const synthStream = 0x73796e74

var (
	// ErrEmptyValue is wrapped by GenerationError when a generator returns "".
	ErrEmptyValue = errors.New("generator returned an empty value")
	// ErrUnknownSIT is wrapped by GenerationError when a spec names a SIT the
	// registry does not hold.
	ErrUnknownSIT = errors.New("SIT not in registry")
	// ErrNoDecoy is wrapped by GenerationError when a decoy entry names a SIT
	// without a decoy generator.
	ErrNoDecoy = errors.New("SIT has no decoy generator")
)

// GroundTruthSpan records one planted value. Offsets are byte offsets into
// Document.Text.
type GroundTruthSpan struct {
	SITID string `json:"sit_id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Value string `json:"value"`
}

func (g GroundTruthSpan) Span() sit.Span { return sit.Span{Start: g.Start, End: g.End} }

// Document is a synthesized document. Renderers fill Rendered; nothing else
// is modified after synthesis. Decoys are planted lookalike values; they are
// not ground truth, so any match on them is a false positive.
type Document struct {
	DocID       string            `json:"doc_id"`
	Format      string            `json:"format"`
	Text        string            `json:"text"`
	GroundTruth []GroundTruthSpan `json:"ground_truth"`
	Decoys      []GroundTruthSpan `json:"decoys,omitempty"`
	Rendered    map[string][]byte `json:"-"`
}

// WithText returns a copy of d whose Text is replaced, for scoring extracted
// text. Ground truth is shared, not copied.
func (d Document) WithText(text string) Document {
	d.Text = text
	d.Rendered = nil
	return d
}

// GenerationError reports a failed value generation. No document is produced.
type GenerationError struct {
	DocID string
	SITID string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error: %s: %s: %v", e.DocID, e.SITID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Synthesizer builds documents from plan specs. It is safe for concurrent use:
// all randomness comes from the per-call seed.
type Synthesizer struct {
	reg *sit.Registry
}

func New(reg *sit.Registry) *Synthesizer {
	return &Synthesizer{reg: reg}
}

type occurrence struct {
	def   *sit.Definition
	value string
	decoy bool
}

// Synthesize produces the document for spec. The same spec and seed always
// yield a byte-identical document.
func (s *Synthesizer) Synthesize(spec plan.DocumentSpec, seed uint64) (*Document, error) {
	r := rand.New(rand.NewPCG(seed, synthStream))

	occs, err := s.generate(spec, r)
	if err != nil {
		return nil, err
	}
	r.Shuffle(len(occs), func(i, j int) { occs[i], occs[j] = occs[j], occs[i] })

	l := layoutFor(spec.Format)
	b := &builder{}
	var clock *chatClock
	var users [2]string
	if l.chat {
		clock = newChatClock(r)
		users[0] = capitalize(choose(r, firstNames))
		users[1] = capitalize(choose(r, firstNames))
	}

	err = expand(b, l.template, func(name string) error {
		switch name {
		case "doc_id":
			b.WriteString(spec.DocID)
		case "timestamp":
			b.WriteString(timestamp(r))
		case "from", "to":
			b.WriteString(emailAddress(r))
		case "subject":
			b.WriteString(subject(r))
		case "sender":
			b.WriteString(personName(r))
		case "sits_block":
			if l.chat {
				writeChatBlock(b, r, occs, clock, users)
			} else {
				writeProseBlock(b, r, occs, l.conversational)
			}
		default:
			return fmt.Errorf("unknown layout placeholder %q", name)
		}
		return nil
	})
	if err != nil {
		return nil, &GenerationError{DocID: spec.DocID, Err: err}
	}

	for b.Words() < spec.WordTarget {
		if l.chat {
			b.WriteString("[" + clock.next(r) + "] " + users[r.IntN(2)] + ": " + sentence(r) + "\n")
		} else {
			b.WriteString("\n" + paragraph(r, 2+r.IntN(5)) + "\n")
		}
	}

	spans := b.spans
	if spans == nil {
		spans = []GroundTruthSpan{}
	}
	return &Document{
		DocID:       spec.DocID,
		Format:      spec.Format,
		Text:        b.String(),
		GroundTruth: spans,
		Decoys:      b.decoys,
	}, nil
}

// generate draws every value up front so a failure leaves nothing behind.
func (s *Synthesizer) generate(spec plan.DocumentSpec, r *rand.Rand) ([]occurrence, error) {
	var occs []occurrence
	for _, sc := range spec.SITs {
		def, ok := s.reg.Get(sc.SITID)
		if !ok {
			return nil, &GenerationError{DocID: spec.DocID, SITID: sc.SITID, Err: ErrUnknownSIT}
		}
		gen := def.Generator()
		if sc.Decoy() {
			if gen = def.Decoy(); gen == nil {
				return nil, &GenerationError{DocID: spec.DocID, SITID: sc.SITID, Err: ErrNoDecoy}
			}
		}
		for i := 0; i < sc.Count; i++ {
			v, err := gen.Generate(r)
			if err != nil {
				return nil, &GenerationError{DocID: spec.DocID, SITID: sc.SITID, Err: err}
			}
			if v == "" {
				return nil, &GenerationError{DocID: spec.DocID, SITID: sc.SITID, Err: ErrEmptyValue}
			}
			occs = append(occs, occurrence{def: def, value: v, decoy: sc.Decoy()})
		}
	}
	return occs, nil
}

// writeProseBlock writes one context sentence per occurrence with filler
// sentences between them. Emails use a conversational phrasing.
func writeProseBlock(b *builder, r *rand.Rand, occs []occurrence, conversational bool) {
	if len(occs) == 0 {
		b.WriteString(paragraph(r, 2+r.IntN(3)))
		return
	}
	for i, o := range occs {
		if i > 0 {
			b.WriteString("\n\n")
			if n := r.IntN(3); n > 0 {
				b.WriteString(paragraph(r, n) + "\n\n")
			}
		}
		if conversational {
			b.WriteString(choose(r, leadIns) + " the " + o.def.DisplayName() + " is ")
			b.plant(o)
			b.WriteString(".\nContext: " + sentence(r))
		} else {
			b.WriteString(o.def.DisplayName() + ": ")
			b.plant(o)
			b.WriteString("\nDetails: " + sentence(r))
		}
	}
}

// writeChatBlock writes a request line and an answer line per occurrence,
// with small talk in between.
func writeChatBlock(b *builder, r *rand.Rand, occs []occurrence, clock *chatClock, users [2]string) {
	line := func(user, msg string) {
		b.WriteString("[" + clock.next(r) + "] " + user + ": " + msg)
	}
	if len(occs) == 0 {
		n := 2 + r.IntN(3)
		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteString("\n")
			}
			line(users[i%2], sentence(r))
		}
		return
	}
	for i, o := range occs {
		if i > 0 {
			b.WriteString("\n")
			if r.IntN(2) == 0 {
				line(users[r.IntN(2)], sentence(r))
				b.WriteString("\n")
			}
		}
		line(users[0], "Please share the "+o.def.DisplayName()+".")
		b.WriteString("\n")
		line(users[1], "The "+o.def.DisplayName()+" is ")
		b.plant(o)
		b.WriteString(".")
	}
}
