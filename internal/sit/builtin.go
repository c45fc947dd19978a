package sit

import (
	"fmt"
	"regexp"
	"strings"
)

// CompilePattern compiles a SIT regex the way the validator always has:
// multi-line, and case-insensitive unless caseSensitive is set.
func CompilePattern(expr string, caseSensitive bool) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty regex")
	}
	flags := "(?m)"
	if !caseSensitive {
		flags = "(?im)"
	}
	return regexp.Compile(flags + expr)
}

type builtinSIT struct {
	id      string
	name    string
	regex   string
	gen     GeneratorSpec
	tags    []string
	summary string
}

var builtinSITs = []builtinSIT{
	{
		id: "SIT_SSN", name: "U.S. Social Security Number",
		regex: `\b\d{3}-\d{2}-\d{4}\b`, gen: GeneratorSpec{Builtin: "ssn", Decoy: "XXX-XX-XXXX"},
		tags: []string{"us", "national-id"}, summary: "Nine digits in the AAA-GG-SSSS layout.",
	},
	{
		id: "SIT_CCN", name: "Credit Card Number",
		regex: `\b(?:\d{4}[ -]?){3}\d{4}\b`, gen: GeneratorSpec{Builtin: "luhn_card", Decoy: "0000 0000 0000 0000"},
		tags: []string{"financial", "pci"}, summary: "16-digit Luhn-valid card number, optionally grouped.",
	},
	{
		id: "SIT_IBAN", name: "International Banking Account Number",
		regex: `\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`, gen: GeneratorSpec{Builtin: "iban", Decoy: "XX00 XXXX XXXX XXXX XXXX"},
		tags: []string{"financial", "eu"}, summary: "Compact IBAN with mod-97 check digits.",
	},
	{
		id: "SIT_UK_NINO", name: "U.K. National Insurance Number",
		regex: `\b[A-CEGHJ-PR-TW-Z]{2}\d{6}[A-D]\b`, gen: GeneratorSpec{Builtin: "nino", Decoy: "QQ000000C"},
		tags: []string{"uk", "national-id"}, summary: "Two prefix letters, six digits, suffix A-D.",
	},
	{
		id: "SIT_BR_CPF", name: "Brazil CPF Number",
		regex: `\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`, gen: GeneratorSpec{Builtin: "cpf", Decoy: "000.000.000-00"},
		tags: []string{"br", "national-id"}, summary: "Formatted CPF with verification digits.",
	},
	{
		id: "SIT_BR_RG", name: "Brazil RG Number",
		regex: `\b\d{2}\.\d{3}\.\d{3}-\d\b`, gen: GeneratorSpec{Builtin: "br_rg", Decoy: "00.000.000-0"},
		tags: []string{"br", "national-id"}, summary: "Formatted Registro Geral number.",
	},
	{
		id: "SIT_IP", name: "IP Address",
		regex: `\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`, gen: GeneratorSpec{Builtin: "ipv4", Decoy: "999.999.999.999"},
		tags: []string{"network"}, summary: "Dotted-quad IPv4 address.",
	},
	{
		id: "SIT_ABA", name: "ABA Routing Number",
		regex: `\b\d{9}\b`, gen: GeneratorSpec{Builtin: "aba", Decoy: "000000000"},
		tags: []string{"financial", "us"}, summary: "Nine-digit routing number with ABA checksum.",
	},
	{
		id: "SIT_DEA", name: "Drug Enforcement Agency Number",
		regex: `\b[A-Z]{2}\d{7}\b`, gen: GeneratorSpec{Template: "??#######", Decoy: "ZZ0000000"},
		tags: []string{"us", "medical"}, summary: "Two letters followed by seven digits.",
	},
	{
		id: "SIT_DRIVER_US", name: "U.S. Driver's License Number",
		regex: `\b[A-Z]\d{6}[A-Z]\b`, gen: GeneratorSpec{Template: "?######?", Decoy: "XXXXXXX"},
		tags: []string{"us", "license"}, summary: "Letter, six digits, letter.",
	},
	{
		id: "SIT_PASSPORT_US_UK", name: "U.S. / U.K. Passport Number",
		regex: `\b[A-Z]\d{7}\b`, gen: GeneratorSpec{Template: "?#######", Decoy: "XXXXXXXX"},
		tags: []string{"us", "uk", "passport"}, summary: "Letter followed by seven digits.",
	},
	{
		id: "SIT_CAN_SIN", name: "Canada Social Insurance Number",
		regex: `\b\d{3}-\d{3}-\d{3}\b`, gen: GeneratorSpec{Builtin: "can_sin", Decoy: "000-000-000"},
		tags: []string{"ca", "national-id"}, summary: "Nine digits in three dash-separated groups.",
	},
	{
		id: "SIT_AZURE_SAS", name: "Azure Shared Access Signature",
		regex: `\bsig=[A-Za-z0-9%]{43,}`, gen: GeneratorSpec{Template: "sig=" + strings.Repeat("*", 43), Decoy: "sig=XXXXX"},
		tags: []string{"cloud", "credential"}, summary: "SAS token signature parameter.",
	},
	{
		id: "SIT_ICD10", name: "ICD-10 Diagnosis Code",
		regex: `\b[A-Z]\d{2}\.\d{1,2}\b`, gen: GeneratorSpec{Template: "?##.#", Decoy: "X00"},
		tags: []string{"medical"}, summary: "Letter, two digits, dot, sub-classification.",
	},
}

// Builtin returns the default SIT registry shipped with sitbench.
func Builtin() *Registry {
	defs := make([]*Definition, 0, len(builtinSITs))
	for _, b := range builtinSITs {
		re, err := CompilePattern(b.regex, false)
		if err != nil {
			panic(fmt.Sprintf("builtin SIT %s: %v", b.id, err))
		}
		gen, err := b.gen.Build()
		if err != nil {
			panic(fmt.Sprintf("builtin SIT %s: %v", b.id, err))
		}
		d, err := NewDefinition(b.id, re, gen,
			WithName(b.name), WithTags(b.tags...), WithDescription(b.summary),
			WithDecoy(b.gen.BuildDecoy()))
		if err != nil {
			panic(err)
		}
		defs = append(defs, d)
	}
	reg, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return reg
}
