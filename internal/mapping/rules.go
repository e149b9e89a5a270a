package mapping

import (
	"regexp"
	"strings"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

// YearTolerance is the largest release-year difference that still earns points.
const YearTolerance = 2

// Default acceptance thresholds.
const (
	DefaultAutoAccept = 75
	DefaultReview     = 60
)

// stopWords are dropped from normalized titles, per locale.
var stopWords = map[string][]string{
	"en": {"remastered", "remaster", "live", "version", "official", "audio", "video"},
	"ko": {"라이브", "버전", "공식", "오디오"},
}

// featureWords introduce featured artists in a raw title.
var featureWords = []string{"feat", "featuring", "ft", "with"}

// versionTags mark a bracketed span as an edition note rather than part of the title.
var versionTags = []string{
	"remaster",
	"remastered",
	"remastering",
	"live",
	"acoustic",
	"instrumental",
	"official video",
	"official audio",
	"lyrics",
	"lyric",
	"mv",
	"m/v",
}

var (
	separatorRe    = regexp.MustCompile(`[\s,;:\-/\[\]()]+`)
	bracketRe      = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	quoteRe        = regexp.MustCompile("[\"'`]")
	featTitleRe    = regexp.MustCompile(`(?i)feat\.|ft\.|featuring`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	artistSplitRe  = regexp.MustCompile(`[,|]`)
	featKeywordRe  = regexp.MustCompile(`\b(?:` + strings.Join(featureWords, "|") + `)\b`)
	featSplitRe    = regexp.MustCompile(`[,&]`)
	featDisallowRe = regexp.MustCompile(`[^a-z0-9가-힣 ]`)
)

// StopWords returns the stop-word list for locale. Unknown locales have none.
func StopWords(locale string) []string {
	return stopWords[locale]
}
