package similarity

import (
	"strings"

	"github.com/a-deal/gym-finder/internal/engine/normalize"
)

const (
	addressSameUnit   = 0.9
	addressOtherUnit  = 0.8
	addressStreetOnly = 0.5
	addressLooseScale = 0.1
)

type addressParts struct {
	number string
	street []string
	unit   string
	tokens []string
}

// parseAddress splits a normalized address into house number, street key
// (up to and including the street type, or just the first token when no type
// is found) and unit.
func parseAddress(s string) addressParts {
	toks := strings.Fields(s)
	p := addressParts{tokens: toks}
	rest := toks
	if len(rest) > 0 && isDigit(rest[0][0]) {
		p.number = rest[0]
		rest = rest[1:]
	}

	end := -1
	for i := 0; i < len(rest) && i < 4; i++ {
		if normalize.UnitMarkers[rest[i]] {
			break
		}
		if normalize.StreetTypes[rest[i]] {
			end = i
			break
		}
	}
	switch {
	case end >= 0:
		p.street = rest[:end+1]
	case len(rest) > 0 && !normalize.UnitMarkers[rest[0]]:
		p.street = rest[:1]
	}

	for i := 0; i+1 < len(rest); i++ {
		if !normalize.UnitMarkers[rest[i]] {
			continue
		}
		next := rest[i+1]
		// "fl 33139" is a state and ZIP, not a floor.
		if rest[i] == "fl" && len(next) == 5 && allDigits(next) {
			continue
		}
		p.unit = next
		break
	}
	return p
}

// AddressSimilarity compares two normalized addresses. Identical strings
// score 1; the same house number and street score high, a little less when
// the unit differs; the same street alone scores half; anything else gets a
// small share of token overlap.
func AddressSimilarity(a, b string) (float64, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	if a == b {
		return 1, true
	}
	pa, pb := parseAddress(a), parseAddress(b)
	sameStreet := len(pa.street) > 0 && equalTokens(pa.street, pb.street)
	switch {
	case sameStreet && pa.number != "" && pa.number == pb.number:
		if pa.unit == pb.unit {
			return addressSameUnit, true
		}
		return addressOtherUnit, true
	case sameStreet:
		return addressStreetOnly, true
	}
	return addressLooseScale * jaccard(toSet(pa.tokens), toSet(pb.tokens)), true
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}
