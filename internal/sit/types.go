package sit

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
)

// Matcher is the detection capability every SIT exposes to the scoring engine.
// Matches returns leftmost-first, non-overlapping spans in ascending order.
type Matcher interface {
	// ID returns the SIT identifier (e.g., "SIT_SSN").
	ID() string

	// Matches scans text and returns every match span.
	Matches(text string) []Span
}

// Generator produces one synthetic instance value for a SIT.
// Implementations must draw all randomness from r so runs are reproducible.
type Generator interface {
	Generate(r *rand.Rand) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(r *rand.Rand) (string, error)

func (f GeneratorFunc) Generate(r *rand.Rand) (string, error) { return f(r) }

// Span is a half-open byte range [Start, End) within a document's text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Definition is a single Sensitive Information Type: a detection pattern plus
// a generator for realistic instance values. Definitions are value objects and
// are never mutated after construction.
type Definition struct {
	id        string
	pattern   *regexp.Regexp
	generator Generator
	decoy     Generator

	Name        string
	Description string
	Tags        []string
}

// Option customizes a Definition at construction time.
type Option func(*Definition)

// WithName sets the human-readable SIT name used in synthesized prose.
func WithName(name string) Option { return func(d *Definition) { d.Name = name } }

// WithDescription sets the free-text description shown by `sits show`.
func WithDescription(desc string) Option { return func(d *Definition) { d.Description = desc } }

// WithDecoy sets the generator for near-miss lookalike values. Decoys are
// planted but never recorded as ground truth.
func WithDecoy(g Generator) Option { return func(d *Definition) { d.decoy = g } }

// WithTags attaches classification tags (e.g., "financial", "us").
func WithTags(tags ...string) Option { return func(d *Definition) { d.Tags = tags } }

// NewDefinition validates and builds a Definition. The pattern must compile
// and the generator must be non-nil.
func NewDefinition(id string, pattern *regexp.Regexp, gen Generator, opts ...Option) (*Definition, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ConfigError{Key: "<unnamed>", Reason: "SIT id is empty"}
	}
	if pattern == nil {
		return nil, &ConfigError{Key: id, Reason: "missing detection pattern"}
	}
	if gen == nil {
		return nil, &ConfigError{Key: id, Reason: "missing value generator"}
	}
	d := &Definition{id: id, pattern: pattern, generator: gen}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// MustDefinition is NewDefinition for static tables. It panics on error.
func MustDefinition(id, expr string, gen Generator, opts ...Option) *Definition {
	d, err := NewDefinition(id, regexp.MustCompile(expr), gen, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Definition) ID() string { return d.id }

// Pattern returns the compiled detection regex.
func (d *Definition) Pattern() *regexp.Regexp { return d.pattern }

// Generator returns the value generator.
func (d *Definition) Generator() Generator { return d.generator }

// Decoy returns the lookalike generator, or nil when the SIT has none.
func (d *Definition) Decoy() Generator { return d.decoy }

// Matches returns all non-overlapping pattern matches in text.
func (d *Definition) Matches(text string) []Span {
	idx := d.pattern.FindAllStringIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	spans := make([]Span, 0, len(idx))
	for _, m := range idx {
		spans = append(spans, Span{Start: m[0], End: m[1]})
	}
	return spans
}

// DisplayName returns Name, falling back to the ID.
func (d *Definition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.id
}

// ConfigError reports an invalid SIT definition, target, or planning policy.
// Key names the offending unit (a SIT id, a pack path, or a policy field).
type ConfigError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error: %s: %s", e.Key, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }
