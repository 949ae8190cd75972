package domain

import (
	"regexp"
	"strings"
)

// Market suffixes appended to equity symbols for structured-endpoint calls.
// The canonical form used everywhere else is upper-cased with no suffix.
const (
	SuffixNSE = ".NS"
	SuffixBSE = ".BO"
)

var marketSuffixes = []string{SuffixNSE, SuffixBSE}

var identifierRe = regexp.MustCompile(`^[A-Z0-9&._-]+$`)

// Canonical upper-cases a raw identifier and strips a known market suffix.
func Canonical(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suf := range marketSuffixes {
		if strings.HasSuffix(s, suf) {
			return strings.TrimSuffix(s, suf)
		}
	}
	return s
}

// WireSymbol returns the symbol as sent to a structured endpoint: canonical
// form plus the market suffix it carried on input, or defaultSuffix when the
// input was bare.
func WireSymbol(symbol, defaultSuffix string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suf := range marketSuffixes {
		if strings.HasSuffix(s, suf) {
			return s
		}
	}
	return s + defaultSuffix
}

// MarketSuffix extracts the suffix carried by a raw identifier, empty when bare.
func MarketSuffix(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suf := range marketSuffixes {
		if strings.HasSuffix(s, suf) {
			return suf
		}
	}
	return ""
}

// ValidIdentifier checks the canonical form of a ticker, scheme code or ISIN.
func ValidIdentifier(s string) bool {
	c := Canonical(s)
	return c != "" && identifierRe.MatchString(c)
}

// CanonicalSet upper-cases, strips suffixes and de-duplicates, preserving
// first-seen order so batch calls are deterministic.
func CanonicalSet(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		c := Canonical(s)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
