package mapping

import (
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/desertthunder/listbridge/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizedTrack is the comparable view of a track. It is derived on demand and never stored.
type NormalizedTrack struct {
	Track   models.Track
	Title   string
	Artists []string
}

// NormalizeText canonicalizes a title for comparison.
//
// Bracketed spans naming a version tag are removed, quotes are stripped,
// featuring variants become " feat ", "&" becomes " and ", and the result is
// re-tokenized with locale stop-words dropped. Empty input yields "".
func NormalizeText(text, locale string) string {
	if text == "" {
		return ""
	}
	if locale == "" {
		locale = DefaultLocale
	}

	s := lower(text, locale)
	s = bracketRe.ReplaceAllStringFunc(s, func(span string) string {
		if containsVersionTag(span) {
			return ""
		}
		return span
	})
	s = quoteRe.ReplaceAllString(s, "")
	s = featTitleRe.ReplaceAllString(s, " feat ")
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))

	stop := StopWords(locale)
	kept := make([]string, 0, 8)
	for _, tok := range separatorRe.Split(s, -1) {
		if tok == "" || strutil.SliceContains(stop, tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// NormalizeArtists splits credits on "&", featuring variants, commas and pipes,
// then lower-cases and deduplicates them in first-seen order.
func NormalizeArtists(artists []string) []string {
	var names []string
	for _, artist := range artists {
		s := strings.ReplaceAll(artist, "&", ",")
		s = featTitleRe.ReplaceAllString(s, ",")
		for _, part := range artistSplitRe.Split(s, -1) {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, strings.ToLower(part))
			}
		}
	}
	if len(names) == 0 {
		return nil
	}
	return strutil.UniqueSlice(names)
}

// Tokenize splits normalized text on the separator class, dropping empties.
func Tokenize(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range separatorRe.Split(text, -1) {
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

// ExtractFeaturing returns the artists credited after the first featuring keyword of a raw title.
func ExtractFeaturing(title string) []string {
	s := strings.ToLower(title)
	loc := featKeywordRe.FindStringIndex(s)
	if loc == nil {
		return nil
	}

	var names []string
	for _, part := range featSplitRe.Split(s[loc[1]:], -1) {
		part = strings.TrimSpace(featDisallowRe.ReplaceAllString(part, ""))
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// NormalizeTrack derives the comparable view of t.
func NormalizeTrack(t models.Track, locale string) NormalizedTrack {
	return NormalizedTrack{
		Track:   t,
		Title:   NormalizeText(t.Title, locale),
		Artists: NormalizeArtists(t.Artists),
	}
}

// PrimaryArtist returns the first normalized artist or "".
func (n NormalizedTrack) PrimaryArtist() string {
	if len(n.Artists) == 0 {
		return ""
	}
	return n.Artists[0]
}

func containsVersionTag(span string) bool {
	for _, tag := range versionTags {
		if strings.Contains(span, tag) {
			return true
		}
	}
	return false
}

func lower(s, locale string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return cases.Lower(tag).String(s)
}
