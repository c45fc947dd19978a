package score

import (
	"regexp"
	"strings"
	"unicode"
)

var placeholderWords = []string{
	"xxx", "placeholder", "redacted", "example", "sample", "please", "share",
	"confidential", "document", "subject", "generated", "fake", "n/a",
	"number", "account",
}

var (
	maskRun    = regexp.MustCompile(`^[xX*_-]{3,}$`)
	shortToken = regexp.MustCompile(`(?i)^[a-z0-9._-]{1,6}$`)
	ocrRun     = regexp.MustCompile(`[ilIoO0]{6,}`)
)

// IsPlaceholder reports whether a matched value looks like a mask, a dummy
// or a fragment rather than real data.
func IsPlaceholder(value string) bool {
	s := strings.TrimSpace(value)
	if s == "" {
		return true
	}
	low := strings.ToLower(s)
	for _, w := range placeholderWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	if maskRun.MatchString(s) {
		return true
	}

	runes := []rune(s)
	if len(runes) >= 6 && strings.Count(s, string(runes[0])) == len(runes) {
		return true
	}

	var digits, nonAlnum int
	zeros := true
	for _, r := range runes {
		switch {
		case unicode.IsDigit(r):
			digits++
			zeros = zeros && r == '0'
		case !unicode.IsLetter(r):
			nonAlnum++
		}
	}
	if digits > 0 && (zeros || digits < 4 && digits < len(runes)) {
		return true
	}

	if len([]rune(strings.Join(strings.Fields(s), ""))) <= 2 {
		return true
	}
	if shortToken.MatchString(s) {
		return true
	}
	if float64(nonAlnum)/float64(len(runes)) > 0.6 {
		return true
	}
	return ocrRun.MatchString(s)
}
