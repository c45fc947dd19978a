package sit

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

const (
	digitChars = "0123456789"
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	alnumChars = upperChars + "abcdefghijklmnopqrstuvwxyz" + digitChars
)

// GeneratorSpec is the declarative form of a value generation rule, as it
// appears in SIT pack YAML. Exactly one of Builtin or Template must be set.
// Decoy is an optional template for near-miss values such as "XXX-XX-XXXX".
type GeneratorSpec struct {
	Builtin  string `yaml:"builtin,omitempty" json:"builtin,omitempty"`
	Template string `yaml:"template,omitempty" json:"template,omitempty"`
	MinLen   int    `yaml:"min_len,omitempty" json:"min_len,omitempty"`
	MaxLen   int    `yaml:"max_len,omitempty" json:"max_len,omitempty"`
	Decoy    string `yaml:"decoy,omitempty" json:"decoy,omitempty"`
}

// Build resolves the spec into a Generator.
func (s GeneratorSpec) Build() (Generator, error) {
	switch {
	case s.Builtin != "" && s.Template != "":
		return nil, fmt.Errorf("generator sets both builtin %q and template %q", s.Builtin, s.Template)
	case s.Builtin != "":
		factory, ok := builtinGenerators[s.Builtin]
		if !ok {
			return nil, fmt.Errorf("unknown builtin generator %q (available: %s)",
				s.Builtin, strings.Join(BuiltinGeneratorNames(), ", "))
		}
		return factory(s)
	case s.Template != "":
		return Template(s.Template), nil
	default:
		return nil, fmt.Errorf("generator has neither builtin nor template")
	}
}

// BuildDecoy returns the decoy generator, or nil when no decoy is set.
func (s GeneratorSpec) BuildDecoy() Generator {
	if s.Decoy == "" {
		return nil
	}
	return Template(s.Decoy)
}

// Template returns a "bothify" generator:
//
//	#  digit 0-9
//	?  upper-case letter A-Z
//	*  letter or digit (mixed case)
//	\  emit the next character literally
//
// Every other character is copied as-is.
func Template(tmpl string) Generator {
	return GeneratorFunc(func(r *rand.Rand) (string, error) {
		var b strings.Builder
		b.Grow(len(tmpl))
		escaped := false
		for _, ch := range tmpl {
			if escaped {
				b.WriteRune(ch)
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				escaped = true
			case '#':
				b.WriteByte(pick(r, digitChars))
			case '?':
				b.WriteByte(pick(r, upperChars))
			case '*':
				b.WriteByte(pick(r, alnumChars))
			default:
				b.WriteRune(ch)
			}
		}
		return b.String(), nil
	})
}

// Static returns a generator that always yields value. Mostly useful in tests.
func Static(value string) Generator {
	return GeneratorFunc(func(*rand.Rand) (string, error) { return value, nil })
}

type generatorFactory func(GeneratorSpec) (Generator, error)

var builtinGenerators = map[string]generatorFactory{
	"ssn":          simple(genSSN),
	"luhn_card":    simple(genLuhnCard),
	"iban":         simple(genIBAN),
	"nino":         simple(genNINO),
	"cpf":          simple(genCPF),
	"br_rg":        simple(genBRRG),
	"ipv4":         simple(genIPv4),
	"aba":          simple(genABA),
	"can_sin":      simple(genCanSIN),
	"icd9":         simple(genICD9),
	"bank_account": bankAccount,
}

// BuiltinGeneratorNames lists the registered builtin generator names, sorted.
func BuiltinGeneratorNames() []string {
	names := make([]string, 0, len(builtinGenerators))
	for n := range builtinGenerators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func simple(fn func(r *rand.Rand) string) generatorFactory {
	return func(GeneratorSpec) (Generator, error) {
		return GeneratorFunc(func(r *rand.Rand) (string, error) { return fn(r), nil }), nil
	}
}

func bankAccount(s GeneratorSpec) (Generator, error) {
	lo, hi := s.MinLen, s.MaxLen
	if lo == 0 {
		lo = 6
	}
	if hi == 0 {
		hi = 17
	}
	if lo < 1 || hi < lo {
		return nil, fmt.Errorf("bank_account: invalid length range %d-%d", lo, hi)
	}
	return GeneratorFunc(func(r *rand.Rand) (string, error) {
		n := lo + r.IntN(hi-lo+1)
		return digits(r, n), nil
	}), nil
}

// ---------------------------------------------------------------------------
// Builtin value generators
// ---------------------------------------------------------------------------

func genSSN(r *rand.Rand) string {
	return fmt.Sprintf("%03d-%02d-%04d", 100+r.IntN(800), 10+r.IntN(90), 1000+r.IntN(9000))
}

// genLuhnCard emits a 16-digit Visa/MasterCard-shaped number with a valid
// Luhn check digit, grouped in fours.
func genLuhnCard(r *rand.Rand) string {
	prefix := "4"
	if r.IntN(2) == 1 {
		prefix = fmt.Sprintf("5%d", 1+r.IntN(5))
	}
	body := prefix + digits(r, 15-len(prefix))
	full := body + string(rune('0'+luhnCheckDigit(body)))

	groups := make([]string, 0, 4)
	for i := 0; i < len(full); i += 4 {
		groups = append(groups, full[i:i+4])
	}
	return strings.Join(groups, " ")
}

// luhnCheckDigit returns the digit that makes body+digit pass the Luhn test.
func luhnCheckDigit(body string) int {
	sum := 0
	double := true
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// luhnValid reports whether a digit string passes the Luhn checksum.
func luhnValid(number string) bool {
	if len(number) < 2 {
		return false
	}
	return luhnCheckDigit(number[:len(number)-1]) == int(number[len(number)-1]-'0')
}

// genIBAN emits a GB-shaped IBAN with correct ISO 7064 mod-97 check digits.
func genIBAN(r *rand.Rand) string {
	const country = "GB"
	bban := digits(r, 16)
	return fmt.Sprintf("%s%02d%s", country, 98-mod97(bban+country+"00"), bban)
}

// mod97 computes the IBAN remainder, expanding letters to 10..35.
func mod97(s string) int {
	rem := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			rem = (rem*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			rem = (rem*100 + int(c-'A') + 10) % 97
		}
	}
	return rem
}

// ibanValid checks the mod-97 checksum of a compact IBAN.
func ibanValid(iban string) bool {
	if len(iban) < 5 {
		return false
	}
	return mod97(iban[4:]+iban[:4]) == 1
}

// NINO prefix letters never include D, F, I, Q, U or V.
const ninoLetters = "ABCEGHJKLMNOPRSTWXYZ"

func genNINO(r *rand.Rand) string {
	return string([]byte{pick(r, ninoLetters), pick(r, ninoLetters)}) + digits(r, 6) + string(pick(r, "ABCD"))
}

// genCPF emits a Brazilian CPF with both verification digits computed.
func genCPF(r *rand.Rand) string {
	base := make([]int, 9, 11)
	for i := range base {
		base[i] = r.IntN(10)
	}
	base = append(base, cpfDigit(base))
	base = append(base, cpfDigit(base))

	var b strings.Builder
	for i, d := range base {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

func cpfDigit(ds []int) int {
	sum := 0
	weight := len(ds) + 1
	for _, d := range ds {
		sum += d * weight
		weight--
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func genBRRG(r *rand.Rand) string {
	return fmt.Sprintf("%02d.%03d.%03d-%d", 10+r.IntN(90), 100+r.IntN(900), 100+r.IntN(900), r.IntN(10))
}

func genIPv4(r *rand.Rand) string {
	return fmt.Sprintf("%d.%d.%d.%d", 1+r.IntN(223), r.IntN(256), r.IntN(256), 1+r.IntN(254))
}

// genABA emits a 9-digit routing number whose weighted (3,7,1) sum is a
// multiple of 10.
func genABA(r *rand.Rand) string {
	d := make([]int, 9)
	for i := 0; i < 8; i++ {
		d[i] = r.IntN(10)
	}
	partial := 3*(d[0]+d[3]+d[6]) + 7*(d[1]+d[4]+d[7]) + (d[2] + d[5])
	d[8] = (10 - partial%10) % 10

	out := make([]byte, 9)
	for i, v := range d {
		out[i] = byte('0' + v)
	}
	return string(out)
}

func abaValid(s string) bool {
	if len(s) != 9 {
		return false
	}
	sum := 0
	weights := [3]int{3, 7, 1}
	for i := 0; i < 9; i++ {
		sum += int(s[i]-'0') * weights[i%3]
	}
	return sum%10 == 0
}

func genCanSIN(r *rand.Rand) string {
	return fmt.Sprintf("%03d-%03d-%03d", 100+r.IntN(900), 100+r.IntN(900), 100+r.IntN(900))
}

func genICD9(r *rand.Rand) string {
	return fmt.Sprintf("%d.%d", 100+r.IntN(900), r.IntN(100))
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func pick(r *rand.Rand, set string) byte {
	return set[r.IntN(len(set))]
}

func digits(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = pick(r, digitChars)
	}
	return string(b)
}
