package normalize

import "strings"

// addressTokens maps single address tokens to their canonical form. An empty
// value drops the token. Every value must be a fixpoint of this table and of
// addressPhrases, which keeps Address idempotent.
var addressTokens = map[string]string{
	// street types
	"street":     "st",
	"str":        "st",
	"avenue":     "ave",
	"av":         "ave",
	"boulevard":  "blvd",
	"road":       "rd",
	"drive":      "dr",
	"drv":        "dr",
	"lane":       "ln",
	"court":      "ct",
	"place":      "pl",
	"parkway":    "pkwy",
	"pky":        "pkwy",
	"highway":    "hwy",
	"square":     "sq",
	"terrace":    "ter",
	"circle":     "cir",
	"expressway": "expy",
	"freeway":    "fwy",
	"turnpike":   "tpke",
	"plaza":      "plz",
	"alley":      "aly",
	"trail":      "trl",
	"crossing":   "xing",
	"center":     "ctr",
	"centre":     "ctr",

	// directionals
	"north":     "n",
	"south":     "s",
	"east":      "e",
	"west":      "w",
	"northeast": "ne",
	"northwest": "nw",
	"southeast": "se",
	"southwest": "sw",

	// unit designators
	"suite":     "ste",
	"apartment": "apt",
	"floor":     "fl",
	"flr":       "fl",
	"building":  "bldg",
	"bld":       "bldg",
	"room":      "rm",

	// ordinal words
	"first":    "1st",
	"second":   "2nd",
	"third":    "3rd",
	"fourth":   "4th",
	"fifth":    "5th",
	"sixth":    "6th",
	"seventh":  "7th",
	"eighth":   "8th",
	"ninth":    "9th",
	"tenth":    "10th",
	"eleventh": "11th",
	"twelfth":  "12th",

	"usa": "",
}

// addressPhrases run after addressTokens, in token space. Every rewrite is
// shorter than its match, so applying them repeatedly terminates.
var addressPhrases = []struct {
	from []string
	to   []string
}{
	{from: []string{"ave", "of", "the", "americas"}, to: []string{"6th", "ave"}},
	{from: []string{"united", "states", "of", "america"}, to: nil},
	{from: []string{"united", "states"}, to: nil},
}

// UnitMarkers are the canonical tokens that introduce a unit number.
var UnitMarkers = map[string]bool{
	"ste":  true,
	"apt":  true,
	"unit": true,
	"fl":   true,
	"rm":   true,
	"bldg": true,
}

// StreetTypes are the canonical street-type tokens.
var StreetTypes = map[string]bool{}

func init() {
	for _, k := range []string{"street", "avenue", "boulevard", "road", "drive", "lane", "court",
		"place", "parkway", "highway", "square", "terrace", "circle", "expressway", "freeway",
		"turnpike", "plaza", "alley", "trail", "crossing"} {
		StreetTypes[addressTokens[k]] = true
	}
	StreetTypes["way"] = true
}

var addressReplacer = strings.NewReplacer("#", " unit ", "&", " and ")

// Address canonicalizes street types, directionals, unit designators and
// ordinal words, strips punctuation and collapses whitespace.
//
//	Address("123 Main Street")       == "123 main st"
//	Address("55 W. 21st St., Ste #4") == "55 w 21st st ste unit 4"
func Address(s string) string {
	tokens := tokenize(addressReplacer.Replace(fold(s)))
	out := tokens[:0]
	for _, t := range tokens {
		if r, ok := addressTokens[t]; ok {
			if r == "" {
				continue
			}
			t = r
		}
		out = append(out, t)
	}
	return strings.Join(applyPhrases(out), " ")
}

// applyPhrases rewrites until no phrase matches.
func applyPhrases(tokens []string) []string {
	for {
		changed := false
		var out []string
		for i := 0; i < len(tokens); {
			matched := false
			for _, p := range addressPhrases {
				if hasPrefix(tokens[i:], p.from) {
					out = append(out, p.to...)
					i += len(p.from)
					matched, changed = true, true
					break
				}
			}
			if !matched {
				out = append(out, tokens[i])
				i++
			}
		}
		tokens = out
		if !changed {
			return tokens
		}
	}
}

func hasPrefix(tokens, prefix []string) bool {
	if len(tokens) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if tokens[i] != p {
			return false
		}
	}
	return true
}
