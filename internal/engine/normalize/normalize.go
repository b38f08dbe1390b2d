// Package normalize canonicalizes the free-text fields of a listing so that
// records from different providers can be compared. Every function is pure,
// deterministic and idempotent.
package normalize

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// corporateSuffixes are trailing tokens that do not change which business a
// name refers to.
var corporateSuffixes = map[string]bool{
	"llc":          true,
	"inc":          true,
	"incorporated": true,
	"corp":         true,
	"corporation":  true,
	"ltd":          true,
	"co":           true,
	"company":      true,
}

var nameReplacer = strings.NewReplacer("&", " and ", "'", "", "’", "")

// Name lowercases, folds accents, drops punctuation and strips trailing
// corporate suffixes. A suffix is kept when it is the only token left.
func Name(s string) string {
	tokens := tokenize(nameReplacer.Replace(fold(s)))
	for len(tokens) > 1 && corporateSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// Tokens splits a normalized name or address into its tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// Phone keeps digits only and drops the US country code from 11-digit
// numbers. Other lengths are returned as-is; see ValidPhone.
func Phone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	return d
}

// ValidPhone reports whether a normalized phone is a usable 10-digit number.
func ValidPhone(p string) bool {
	return len(p) == 10
}

// Domain returns the registrable domain of a website URL, ignoring scheme,
// subdomain, port and path. Empty input gives an empty result.
func Domain(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return strings.TrimPrefix(host, "www.")
}

// fold lowercases s and strips combining marks ("Café" -> "cafe").
func fold(s string) string {
	s = strings.ToLower(s)
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
