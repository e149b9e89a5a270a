// Package mapping resolves a track from one catalog against another catalog's search results.
//
// # Normalization
//
// [NormalizeText] and [NormalizeArtists] reduce free text to comparable tokens: lower-cased,
// version tags such as "(Remastered 2011)" removed, featuring variants collapsed, and locale
// stop-words dropped. Both are pure and idempotent.
//
// # Scoring
//
// [Scorer] sums five independently capped factors into a 0..100 score:
//
//	title     0-50  Jaro-Winkler blended with a token-set ratio
//	artist    0-30  Jaccard index over normalized artist sets
//	duration  0-10  full within 2s, nothing beyond 20s
//	year      0-5   within a two year tolerance
//	explicit  0/5   both flags present and equal
//
// Missing fields contribute nothing.
//
// # Searching
//
// [Searcher] builds prioritized queries, consults a bounded LRU [SearchCache], merges and scores
// the results and reports the best candidate when it clears the auto-accept threshold.
package mapping
