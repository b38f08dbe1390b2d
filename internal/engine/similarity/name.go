package similarity

import "strings"

// genericNameTokens appear in many unrelated gym names and count half.
var genericNameTokens = map[string]bool{
	"gym":       true,
	"gyms":      true,
	"fitness":   true,
	"center":    true,
	"club":      true,
	"studio":    true,
	"studios":   true,
	"health":    true,
	"wellness":  true,
	"training":  true,
	"sports":    true,
	"athletic":  true,
	"athletics": true,
	"the":       true,
	"and":       true,
	"of":        true,
}

const (
	prefixCredit    = 0.8
	minPrefixLength = 3
	minEditCredit   = 0.75
)

// NameSimilarity aligns two token sets. Each token earns the score of its
// best counterpart on the other side, weighted so generic words count half;
// the two directions are averaged by total weight. Order does not matter.
func NameSimilarity(a, b []string) (float64, bool) {
	a, b = uniqueTokens(a), uniqueTokens(b)
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	sumA, wA := alignTokens(a, b)
	sumB, wB := alignTokens(b, a)
	return (sumA + sumB) / (wA + wB), true
}

func alignTokens(from, to []string) (sum, weight float64) {
	for _, t := range from {
		w := tokenWeight(t)
		best := 0.0
		for _, u := range to {
			if s := tokenScore(t, u); s > best {
				best = s
			}
		}
		sum += w * best
		weight += w
	}
	return sum, weight
}

func tokenWeight(t string) float64 {
	if genericNameTokens[t] {
		return 0.5
	}
	return 1
}

// tokenScore credits exact tokens fully, abbreviations ("gym" for
// "gymnasium") by prefix, and near spellings by edit distance.
func tokenScore(a, b string) float64 {
	if a == b {
		return 1
	}
	best := 0.0
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) >= minPrefixLength && strings.HasPrefix(long, short) {
		best = prefixCredit
	}
	if sim := editSimilarity(a, b); sim >= minEditCredit && sim > best {
		best = sim
	}
	return best
}

// editSimilarity is 1 - levenshtein/maxLen over runes.
func editSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
