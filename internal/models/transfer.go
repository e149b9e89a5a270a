package models

import "time"

// ReasonNoConfidentMatch is recorded when no candidate reached the auto-accept threshold.
const ReasonNoConfidentMatch = "No confident match"

// ReasonSearchFailed prefixes the reason of a track whose search errored.
const ReasonSearchFailed = "Search failed"

// TransferStatus is the orchestrator state.
type TransferStatus string

const (
	StatusIdle      TransferStatus = "idle"
	StatusRunning   TransferStatus = "running"
	StatusCompleted TransferStatus = "completed"
	StatusFailed    TransferStatus = "failed"
)

// FailureRecord describes a track that was not transferred.
type FailureRecord struct {
	Track      Track            `json:"track"`
	Reason     string           `json:"reason"`
	Candidates []CandidateScore `json:"candidates,omitempty"`
}

// TransferCheckpoint is the resume point written after each playlist.
type TransferCheckpoint struct {
	RunID            string          `json:"run_id"`
	PlaylistID       string          `json:"playlist_id"`
	TargetPlaylistID string          `json:"target_playlist_id"`
	Processed        int             `json:"processed"`
	Total            int             `json:"total"`
	Failures         []FailureRecord `json:"failures"`
	SavedAt          time.Time       `json:"saved_at"`
}

// Percent reports progress in the 0..100 range.
func (c TransferCheckpoint) Percent() int {
	if c.Total <= 0 {
		return 0
	}
	return c.Processed * 100 / c.Total
}

// TransferReport summarises a completed run.
type TransferReport struct {
	RunID          string          `json:"run_id"`
	Source         string          `json:"source"`
	TargetProvider string          `json:"target_provider"`
	Processed      int             `json:"processed"`
	Total          int             `json:"total"`
	Failures       []FailureRecord `json:"failures"`
	CompletedAt    time.Time       `json:"completed_at"`
}
