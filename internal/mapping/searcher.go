package mapping

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listbridge/internal/models"
)

// SearchFunc queries a target catalog.
type SearchFunc func(ctx context.Context, query string) ([]models.Track, error)

// SearchContext names the target catalog and how to query it.
type SearchContext struct {
	ProviderName string
	Search       SearchFunc
	Locale       string
}

// Thresholds are the score boundaries for automatic acceptance and for review display.
type Thresholds struct {
	AutoAccept int
	Review     int
}

// DefaultThresholds returns the 75/60 acceptance boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{AutoAccept: DefaultAutoAccept, Review: DefaultReview}
}

// Result holds every scored candidate, best first, and the auto-accepted one if any.
type Result struct {
	Best       *models.CandidateScore
	Candidates []models.CandidateScore
	Queries    []string
	review     int
}

// ReviewCandidates returns the candidates scoring at least the review threshold.
func (r Result) ReviewCandidates() []models.CandidateScore {
	var out []models.CandidateScore
	for _, c := range r.Candidates {
		if c.Score >= r.review {
			out = append(out, c)
		}
	}
	return out
}

// SearcherOpts configures a [Searcher]. Zero values fall back to defaults.
type SearcherOpts struct {
	Cache      *SearchCache
	Thresholds Thresholds
	Logger     *log.Logger
}

// Searcher finds and ranks target-catalog candidates for a source track.
type Searcher struct {
	cache      *SearchCache
	thresholds Thresholds
	logger     *log.Logger
}

// NewSearcher creates a Searcher. A cache of [DefaultCacheSize] is created when none is given.
func NewSearcher(opts SearcherOpts) (*Searcher, error) {
	cache := opts.Cache
	if cache == nil {
		var err error
		if cache, err = NewSearchCache(DefaultCacheSize); err != nil {
			return nil, err
		}
	}
	th := opts.Thresholds
	if th.AutoAccept == 0 {
		th = DefaultThresholds()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Searcher{cache: cache, thresholds: th, logger: logger}, nil
}

// Thresholds reports the configured boundaries.
func (s *Searcher) Thresholds() Thresholds {
	return s.thresholds
}

// Cache exposes the underlying search cache.
func (s *Searcher) Cache() *SearchCache {
	return s.cache
}

// FindCandidates runs the prioritized queries for track, merges and scores the results.
//
// Search errors are returned unchanged; nothing is retried here.
func (s *Searcher) FindCandidates(ctx context.Context, track models.Track, sc SearchContext) (Result, error) {
	locale := sc.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	scorer := NewScorer(locale)
	queries := BuildQueries(NormalizeTrack(track, locale))

	seen := make(map[string]struct{})
	var pool []models.CandidateScore
	for _, q := range queries {
		key := CacheKey(sc.ProviderName, q)
		results, ok := s.cache.Get(key)
		if !ok {
			var err error
			if results, err = sc.Search(ctx, q); err != nil {
				return Result{}, err
			}
			s.cache.Set(key, results)
		} else {
			s.logger.Debug("search cache hit", "key", key)
		}

		for _, r := range results {
			id := r.SourceID(sc.ProviderName)
			if id == "" {
				id = r.ID
			}
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			pool = append(pool, scorer.Score(track, r))
		}
	}

	slices.SortStableFunc(pool, func(a, b models.CandidateScore) int { return b.Score - a.Score })

	res := Result{Candidates: pool, Queries: queries, review: s.thresholds.Review}
	if len(pool) > 0 && pool[0].Score >= s.thresholds.AutoAccept {
		best := pool[0]
		res.Best = &best
	}
	return res, nil
}

// BuildQueries lists search queries in priority order, deduplicated and without empties:
// "<primary artist> - <title>", every artist followed by the title, the title
// followed by featured artists, and the bare title.
func BuildQueries(n NormalizedTrack) []string {
	var queries []string
	if artist := n.PrimaryArtist(); artist != "" {
		queries = append(queries, strings.TrimSpace(artist+" - "+n.Title))
	}
	if len(n.Artists) > 1 {
		queries = append(queries, strings.TrimSpace(strings.Join(n.Artists, " ")+" "+n.Title))
	}
	if features := ExtractFeaturing(n.Track.Title); len(features) > 0 {
		queries = append(queries, strings.TrimSpace(n.Title+" "+strings.Join(features, " ")))
	}
	queries = append(queries, n.Title)

	out := make([]string, 0, len(queries))
	for _, q := range queries {
		if q != "" && !slices.Contains(out, q) {
			out = append(out, q)
		}
	}
	return out
}
