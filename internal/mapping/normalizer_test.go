package mapping

import (
	"slices"
	"testing"

	"github.com/desertthunder/listbridge/internal/models"
)

func TestNormalizeText(t *testing.T) {
	tc := []struct {
		name   string
		text   string
		locale string
		want   string
	}{
		{name: "version tag in parentheses", text: "Song Title (Remastered 2011)", locale: "en", want: "song title"},
		{name: "version tag in brackets", text: "City Lights [Official Video]", locale: "en", want: "city lights"},
		{name: "korean stop-words only", text: "라이브 버전", locale: "ko", want: ""},
		{name: "empty", text: "", locale: "en", want: ""},
		{name: "ampersand", text: "Love & Hate", locale: "en", want: "love and hate"},
		{name: "featuring variants", text: "Track feat. Someone", locale: "en", want: "track feat someone"},
		{name: "featuring spelled out", text: "Track Featuring Someone", locale: "en", want: "track feat someone"},
		{name: "quotes stripped", text: `Don't "Stop"`, locale: "en", want: "dont stop"},
		{name: "non-version brackets kept as tokens", text: "Hello (Piano Mix)", locale: "en", want: "hello piano mix"},
		{name: "english stop-word", text: "Live Forever", locale: "en", want: "forever"},
		{name: "unknown locale keeps words", text: "Live Forever", locale: "fr", want: "live forever"},
		{name: "default locale", text: "Official Song", locale: "", want: "song"},
		{name: "separators collapse", text: "A-B/C;D:E,  F", locale: "en", want: "a b c d e f"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.text, tt.locale); got != tt.want {
				t.Errorf("NormalizeText(%q, %q) = %q, want %q", tt.text, tt.locale, got, tt.want)
			}
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"Song Title (Remastered 2011)",
		"City Lights (Official Video) feat. Feather & Friends",
		`"Quoted" ft.Someone`,
		"fe'at. weird",
		"Left. Right.",
		"Mr. Brightside [Live at Wembley]",
		"Track (Acoustic) - Radio Edit",
		"라이브 버전 노래",
		"  spaced   out  ",
		"A&B&&C",
		"Ünïcödé Tïtle (MV)",
	}

	for _, locale := range []string{"en", "ko"} {
		for _, in := range inputs {
			once := NormalizeText(in, locale)
			twice := NormalizeText(once, locale)
			if once != twice {
				t.Errorf("not idempotent for %q (%s): %q then %q", in, locale, once, twice)
			}
		}
	}
}

func TestNormalizeArtists(t *testing.T) {
	tc := []struct {
		name    string
		artists []string
		want    []string
	}{
		{
			name:    "featuring split",
			artists: []string{"Dreamstatic feat. Feather", "Analog Horizon"},
			want:    []string{"dreamstatic", "feather", "analog horizon"},
		},
		{
			name:    "ampersand and pipes",
			artists: []string{"A & B | C"},
			want:    []string{"a", "b", "c"},
		},
		{
			name:    "dedupe keeps first seen",
			artists: []string{"Foo", "Bar, foo", "FOO ft. Baz"},
			want:    []string{"foo", "bar", "baz"},
		},
		{
			name:    "empties dropped",
			artists: []string{"", " , "},
			want:    nil,
		},
		{name: "nil", artists: nil, want: nil},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeArtists(tt.artists); !slices.Equal(got, tt.want) {
				t.Errorf("NormalizeArtists(%q) = %q, want %q", tt.artists, got, tt.want)
			}
		})
	}
}

func TestExtractFeaturing(t *testing.T) {
	tc := []struct {
		title string
		want  []string
	}{
		{"Song (feat. A & B)", []string{"a", "b"}},
		{"Song ft. X, Y", []string{"x", "y"}},
		{"Song featuring Zed", []string{"zed"}},
		{"Dancing With Myself", []string{"myself"}},
		{"Featherweight", nil},
		{"Lofter (feat. X)", []string{"x"}},
		{"Swift Kick (feat. X)", []string{"x"}},
		{"Song", nil},
	}

	for _, tt := range tc {
		t.Run(tt.title, func(t *testing.T) {
			if got := ExtractFeaturing(tt.title); !slices.Equal(got, tt.want) {
				t.Errorf("ExtractFeaturing(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("a b-c  a")
	if len(got) != 3 {
		t.Fatalf("expected 3 tokens, got %v", got)
	}
	for _, tok := range []string{"a", "b", "c"} {
		if _, ok := got[tok]; !ok {
			t.Errorf("missing token %q", tok)
		}
	}
	if len(Tokenize("")) != 0 {
		t.Error("empty text should have no tokens")
	}
}

func TestNormalizeTrack(t *testing.T) {
	n := NormalizeTrack(models.Track{Title: "Song (Live)", Artists: []string{"X & Y"}}, "en")
	if n.Title != "song" {
		t.Errorf("expected title song, got %q", n.Title)
	}
	if n.PrimaryArtist() != "x" || len(n.Artists) != 2 {
		t.Errorf("unexpected artists %q", n.Artists)
	}
	if (NormalizedTrack{}).PrimaryArtist() != "" {
		t.Error("empty track should have no primary artist")
	}
}
