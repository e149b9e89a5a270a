package mapping

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/listbridge/internal/models"
)

type fakeCatalog struct {
	queries  []string
	results  map[string][]models.Track
	fallback []models.Track
	err      error
}

func (f *fakeCatalog) search(_ context.Context, q string) ([]models.Track, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[q]; ok {
		return r, nil
	}
	return f.fallback, nil
}

func catalogTracks() []models.Track {
	return []models.Track{
		{ID: "v2", SourceIDs: map[string]string{"youtube": "v2"}, Title: "Another Song", Artists: []string{"Nobody"}},
		{
			ID:          "v1",
			SourceIDs:   map[string]string{"youtube": "v1"},
			Title:       "City Lights (Official Video)",
			Artists:     []string{"Dreamstatic", "Feather"},
			DurationMs:  models.IntPtr(199000),
			ReleaseYear: models.IntPtr(2020),
			Explicit:    models.BoolPtr(false),
		},
		{Title: "No identifiers at all"},
	}
}

func newTestSearcher(t *testing.T) *Searcher {
	t.Helper()
	s, err := NewSearcher(SearcherOpts{})
	if err != nil {
		t.Fatalf("NewSearcher failed: %v", err)
	}
	return s
}

func TestBuildQueries(t *testing.T) {
	tc := []struct {
		name  string
		track models.Track
		want  []string
	}{
		{
			name:  "multiple artists",
			track: models.Track{Title: "City Lights", Artists: []string{"Dreamstatic", "Feather"}},
			want:  []string{"dreamstatic - city lights", "dreamstatic feather city lights", "city lights"},
		},
		{
			name:  "single artist with featuring",
			track: models.Track{Title: "Song (feat. Guest)", Artists: []string{"Main"}},
			want:  []string{"main - song feat guest", "song feat guest guest", "song feat guest"},
		},
		{
			name:  "no artists",
			track: models.Track{Title: "Lonely"},
			want:  []string{"lonely"},
		},
		{
			name:  "nothing usable",
			track: models.Track{Title: "(Live)"},
			want:  []string{},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQueries(NormalizeTrack(tt.track, "en"))
			if !slices.Equal(got, tt.want) {
				t.Errorf("BuildQueries() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearcher(t *testing.T) {
	t.Run("ranks and accepts the best candidate", func(t *testing.T) {
		s := newTestSearcher(t)
		cat := &fakeCatalog{fallback: catalogTracks()}

		res, err := s.FindCandidates(context.Background(), cityLights(), SearchContext{ProviderName: "youtube", Search: cat.search, Locale: "en"})
		if err != nil {
			t.Fatalf("FindCandidates failed: %v", err)
		}

		if len(res.Candidates) != 2 {
			t.Fatalf("expected 2 deduplicated candidates, got %d", len(res.Candidates))
		}
		if res.Best == nil || res.Best.Track.ID != "v1" {
			t.Fatalf("expected v1 to be accepted, got %+v", res.Best)
		}
		if res.Candidates[0].Score < res.Candidates[1].Score {
			t.Error("candidates should be sorted by descending score")
		}
		if len(cat.queries) != 3 {
			t.Errorf("expected 3 searches, got %q", cat.queries)
		}
	})

	t.Run("cache prevents repeated searches", func(t *testing.T) {
		s := newTestSearcher(t)
		cat := &fakeCatalog{fallback: catalogTracks()}
		sc := SearchContext{ProviderName: "youtube", Search: cat.search}

		if _, err := s.FindCandidates(context.Background(), cityLights(), sc); err != nil {
			t.Fatalf("first search failed: %v", err)
		}
		first := len(cat.queries)

		if _, err := s.FindCandidates(context.Background(), cityLights(), sc); err != nil {
			t.Fatalf("second search failed: %v", err)
		}
		if len(cat.queries) != first {
			t.Errorf("expected no new searches, got %q", cat.queries[first:])
		}
		if !s.Cache().Contains(CacheKey("youtube", "city lights")) {
			t.Error("expected bare-title query to be cached")
		}
	})

	t.Run("cache is keyed by provider", func(t *testing.T) {
		s := newTestSearcher(t)
		cat := &fakeCatalog{fallback: catalogTracks()}

		s.FindCandidates(context.Background(), cityLights(), SearchContext{ProviderName: "youtube", Search: cat.search})
		before := len(cat.queries)
		s.FindCandidates(context.Background(), cityLights(), SearchContext{ProviderName: "spotify", Search: cat.search})
		if len(cat.queries) != before*2 {
			t.Errorf("expected a fresh search per provider, got %d then %d", before, len(cat.queries))
		}
	})

	t.Run("below threshold has no best", func(t *testing.T) {
		s := newTestSearcher(t)
		cat := &fakeCatalog{fallback: []models.Track{{ID: "x", Title: "Unrelated", Artists: []string{"Someone"}}}}

		res, err := s.FindCandidates(context.Background(), cityLights(), SearchContext{ProviderName: "youtube", Search: cat.search})
		if err != nil {
			t.Fatalf("FindCandidates failed: %v", err)
		}
		if res.Best != nil {
			t.Errorf("expected no best candidate, got %+v", res.Best)
		}
		if len(res.Candidates) != 1 {
			t.Errorf("expected candidate to be listed, got %d", len(res.Candidates))
		}
		if len(res.ReviewCandidates()) != 0 {
			t.Error("low scoring candidate should not be offered for review")
		}
	})

	t.Run("custom threshold", func(t *testing.T) {
		s, err := NewSearcher(SearcherOpts{Thresholds: Thresholds{AutoAccept: 101, Review: 90}})
		if err != nil {
			t.Fatalf("NewSearcher failed: %v", err)
		}
		cat := &fakeCatalog{fallback: catalogTracks()}
		res, _ := s.FindCandidates(context.Background(), cityLights(), SearchContext{ProviderName: "youtube", Search: cat.search})
		if res.Best != nil {
			t.Error("no candidate can clear a threshold above 100")
		}
		if got := res.ReviewCandidates(); len(got) != 1 || got[0].Track.ID != "v1" {
			t.Errorf("expected v1 for review, got %+v", got)
		}
	})

	t.Run("search errors propagate", func(t *testing.T) {
		s := newTestSearcher(t)
		boom := errors.New("boom")
		cat := &fakeCatalog{err: boom}

		_, err := s.FindCandidates(context.Background(), cityLights(), SearchContext{ProviderName: "youtube", Search: cat.search})
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if len(cat.queries) != 1 {
			t.Errorf("expected to stop after the first failure, got %d searches", len(cat.queries))
		}
	})
}
