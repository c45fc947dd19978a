package redact

import (
	"regexp"
)

// Credentials are replaced outright.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(aws_access_key_id|aws_secret_access_key|aws_session_token)\s*[=:]\s*['"]?[A-Za-z0-9/+=]{20,}['"]?`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`(?i)(api_key|apikey|api-key|secret_key|access_token|auth_token)\s*[=:]\s*['"]?[A-Za-z0-9_-]{16,}['"]?`),
	regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`https?://[^:\s]+:[^@\s]+@`),
	regexp.MustCompile(`(?i)(password|passwd|pwd|secret)\s*[=:]\s*['"]?[^\s'"]{8,}['"]?`),
}

// Identifier-shaped values are masked but keep their tail, so a log reader
// can still tell two samples apart.
var valuePatterns = []*regexp.Regexp{
	// SAS signatures
	regexp.MustCompile(`\bsig=[A-Za-z0-9%]{16,}`),
	// IBAN
	regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`),
	// card numbers, grouped or not
	regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`),
	// SSN, SIN, CPF, RG
	regexp.MustCompile(`\b\d{2,3}[-.]\d{2,3}[-.]\d{3,4}(?:-\d{1,2})?\b`),
	// letter-prefixed ids: passport, DEA, NINO, driver's license
	regexp.MustCompile(`\b[A-Z]{1,2}\d{6,7}[A-Z]?\b`),
	// IPv4
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
	// bare digit runs: routing and account numbers
	regexp.MustCompile(`\b\d{6,}\b`),
}

const (
	redactedPlaceholder = "[REDACTED]"
	keepTail            = 4
)

// Redact removes credentials and masks identifier-shaped values in input.
func Redact(input string) string {
	result := input
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, redactedPlaceholder)
	}
	for _, pattern := range valuePatterns {
		result = pattern.ReplaceAllStringFunc(result, Mask)
	}
	return result
}

// Mask replaces digits with '#' and letters with 'X', except for the last
// four characters. Separators are kept.
func Mask(value string) string {
	b := []byte(value)
	for i := 0; i < len(b)-keepTail; i++ {
		switch c := b[i]; {
		case c >= '0' && c <= '9':
			b[i] = '#'
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			b[i] = 'X'
		}
	}
	return string(b)
}

// RedactAll applies Redact to every value.
func RedactAll(values []string) []string {
	if values == nil {
		return nil
	}
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = Redact(v)
	}
	return result
}
