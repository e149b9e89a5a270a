// Package models defines the domain records shared by the ListBridge matching and transfer engine.
//
// The package contains three groups of types:
//
// 1. Catalog records read from or written to providers
//   - [Track] : provider-local song metadata plus the cross-provider [Track.SourceIDs] map
//   - [Playlist] : playlist metadata with its ordered tracks
//   - [Collection] : the set of playlists fetched or imported in one go
//
// 2. Matching records
//   - [CandidateScore] : a scored target-provider candidate with its per-factor [Breakdown]
//   - [MatchDecision] : an accepted mapping from a track key to a target track
//   - [PendingReview] : a track awaiting a manual decision
//
// 3. Transfer records
//   - [TransferCheckpoint] : the single live resume point of a run
//   - [FailureRecord] : a track that could not be transferred
//   - [TransferReport] : the summary of a completed run
//
// Optional numeric and boolean track fields are pointers so "missing" stays distinct from zero.
// A track's identity across providers is established only through [TrackKey] and accepted decisions.
package models
