package mapping

import "github.com/adrg/strutil"

// JaroWinkler is a [strutil.StringMetric] comparing strings rune by rune.
//
// The match window is floor(max(len)/2)-1 and the common-prefix bonus covers
// at most PrefixLimit runes, scaled by PrefixScale. Comparison is case sensitive.
type JaroWinkler struct {
	PrefixLimit int
	PrefixScale float64
}

var _ strutil.StringMetric = (*JaroWinkler)(nil)

// NewJaroWinkler returns the metric with the standard 4 rune prefix and 0.1 scale.
func NewJaroWinkler() *JaroWinkler {
	return &JaroWinkler{PrefixLimit: 4, PrefixScale: 0.1}
}

// Compare returns the similarity of a and b in the 0..1 range.
func (m *JaroWinkler) Compare(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	j := jaro(ra, rb)
	prefix := 0
	for prefix < m.PrefixLimit && prefix < len(ra) && prefix < len(rb) && ra[prefix] == rb[prefix] {
		prefix++
	}
	return j + float64(prefix)*m.PrefixScale*(1-j)
}

func jaro(a, b []rune) float64 {
	window := max(len(a), len(b))/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, len(a))
	bMatched := make([]bool, len(b))
	matches := 0
	for i := range a {
		lo := max(0, i-window)
		hi := min(i+window+1, len(b))
		for k := lo; k < hi; k++ {
			if bMatched[k] || a[i] != b[k] {
				continue
			}
			aMatched[i], bMatched[k] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := range a {
		if !aMatched[i] {
			continue
		}
		for !bMatched[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(len(a)) + m/float64(len(b)) + (m-float64(transpositions)/2)/m) / 3
}
