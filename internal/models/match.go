package models

import "time"

// Factor names one component of a match score.
type Factor string

const (
	FactorTitle    Factor = "title"
	FactorArtist   Factor = "artist"
	FactorDuration Factor = "duration"
	FactorYear     Factor = "year"
	FactorExplicit Factor = "explicit"
)

// Factors lists the score components in display order.
var Factors = []Factor{FactorTitle, FactorArtist, FactorDuration, FactorYear, FactorExplicit}

// Breakdown holds the points each factor contributed.
type Breakdown map[Factor]int

// Sum adds every factor.
func (b Breakdown) Sum() int {
	total := 0
	for _, v := range b {
		total += v
	}
	return total
}

// CandidateScore is a target-provider track scored against a source track.
type CandidateScore struct {
	Track     Track     `json:"track" yaml:"track"`
	Score     int       `json:"score" yaml:"score"`
	Breakdown Breakdown `json:"breakdown" yaml:"breakdown"`
}

// MatchDecision maps a source track key to an accepted target track.
type MatchDecision struct {
	TrackKey       string    `json:"track_key"`
	SourceProvider string    `json:"source_provider"`
	TargetProvider string    `json:"target_provider"`
	Target         Track     `json:"target"`
	Score          int       `json:"score"`
	Manual         bool      `json:"manual"`
	DecidedAt      time.Time `json:"decided_at"`
}

// PendingReview is a source track whose best candidate fell below the auto-accept threshold.
type PendingReview struct {
	ID             string           `json:"id"`
	TargetProvider string           `json:"target_provider"`
	TrackKey       string           `json:"track_key"`
	Track          Track            `json:"track"`
	Candidates     []CandidateScore `json:"candidates"`
	CreatedAt      time.Time        `json:"created_at"`
}

// MatchBook is the in-memory view of accepted decisions for one target provider, keyed by track key.
type MatchBook map[string]Track

// Lookup returns the accepted target for key.
func (b MatchBook) Lookup(key string) (Track, bool) {
	t, ok := b[key]
	return t, ok
}
