package mapping

import (
	"math"

	"github.com/adrg/strutil"
	"github.com/desertthunder/listbridge/internal/models"
)

// Factor caps.
const (
	MaxTitleScore    = 50
	MaxArtistScore   = 30
	MaxDurationScore = 10
	MaxYearScore     = 5
	ExplicitScore    = 5
)

const (
	durationExactMs  = 2000
	durationCutoffMs = 20000
)

// Scorer compares a source track with a candidate from another catalog.
type Scorer struct {
	locale string
	metric strutil.StringMetric
}

// NewScorer returns a scorer normalizing with locale and comparing titles with [JaroWinkler].
func NewScorer(locale string) *Scorer {
	if locale == "" {
		locale = DefaultLocale
	}
	return &Scorer{locale: locale, metric: NewJaroWinkler()}
}

// Score rates candidate against source. The result is always within 0..100.
func (s *Scorer) Score(source, candidate models.Track) models.CandidateScore {
	ns := NormalizeTrack(source, s.locale)
	nc := NormalizeTrack(candidate, s.locale)

	b := models.Breakdown{
		models.FactorTitle:    s.titleScore(ns.Title, nc.Title),
		models.FactorArtist:   artistScore(ns.Artists, nc.Artists),
		models.FactorDuration: durationScore(source.DurationMs, candidate.DurationMs),
		models.FactorYear:     yearScore(source.ReleaseYear, candidate.ReleaseYear),
		models.FactorExplicit: explicitScore(source.Explicit, candidate.Explicit),
	}
	return models.CandidateScore{Track: candidate, Score: b.Sum(), Breakdown: b}
}

// ScoreMatch scores candidate against source with a one-off [Scorer].
func ScoreMatch(source, candidate models.Track, locale string) models.CandidateScore {
	return NewScorer(locale).Score(source, candidate)
}

func (s *Scorer) titleScore(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	jw := strutil.Similarity(a, b, s.metric)
	return round((jw*0.6 + s.tokenSetRatio(a, b, jw)*0.4) * MaxTitleScore)
}

// tokenSetRatio blends token intersection-over-union with the precomputed Jaro-Winkler similarity.
func (s *Scorer) tokenSetRatio(a, b string, jw float64) float64 {
	return jaccard(Tokenize(a), Tokenize(b))*0.5 + jw*0.5
}

func artistScore(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return round(jaccard(toSet(a), toSet(b)) * MaxArtistScore)
}

func durationScore(a, b *int) int {
	if a == nil || b == nil || *a <= 0 || *b <= 0 {
		return 0
	}
	diff := abs(*a - *b)
	switch {
	case diff <= durationExactMs:
		return MaxDurationScore
	case diff >= durationCutoffMs:
		return 0
	}
	return max(0, round(MaxDurationScore-float64(diff)/durationExactMs))
}

func yearScore(a, b *int) int {
	if a == nil || b == nil || *a <= 0 || *b <= 0 {
		return 0
	}
	diff := abs(*a - *b)
	if diff > YearTolerance {
		return 0
	}
	return round(MaxYearScore - float64(diff)*2.5)
}

func explicitScore(a, b *bool) int {
	if a == nil || b == nil || *a != *b {
		return 0
	}
	return ExplicitScore
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func round(f float64) int {
	return int(math.Round(f))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
