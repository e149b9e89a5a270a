package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/listbridge/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Observer receives progress updates synchronously, in emission order.
type Observer func(ProgressUpdate)

// Operation phase enumeration
type Phase int

const (
	TransferStarted Phase = iota
	CreatePlaylist
	MatchTrack
	AddItems
	SaveCheckpoint
	TransferCompleted
	TransferFailed
	AutoMap
	FetchPlaylist
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case TransferStarted:
		return "transfer_started"
	case CreatePlaylist:
		return "create_playlist"
	case MatchTrack:
		return "match_track"
	case AddItems:
		return "add_items"
	case SaveCheckpoint:
		return "save_checkpoint"
	case TransferCompleted:
		return "transfer_completed"
	case TransferFailed:
		return "transfer_failed"
	case AutoMap:
		return "auto_map"
	case FetchPlaylist:
		return "fetch_playlist"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

// TrackOutcome is the Data payload of a [MatchTrack] update.
type TrackOutcome struct {
	Track   models.Track
	Matched *models.Track
	Reused  bool
	Failure *models.FailureRecord
}

func transferStartedUpdate(processed, total int, runID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransferStarted,
		Step:    processed,
		Total:   total,
		Message: fmt.Sprintf("Transfer %s started (%d tracks)", runID, total),
	}
}

func createPlaylistUpdate(processed, total int, name, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    processed,
		Total:   total,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", name, id),
		Data:    id,
	}
}

func matchTrackUpdate(processed, total int, outcome TrackOutcome) ProgressUpdate {
	t := outcome.Track
	label := fmt.Sprintf("%s - %s", strings.Join(t.Artists, ", "), t.Title)
	var msg string
	switch {
	case outcome.Failure != nil:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %s", processed, total, label, outcome.Failure.Reason)
	case outcome.Reused:
		msg = fmt.Sprintf("[%d/%d] ↺ %s", processed, total, label)
	default:
		msg = fmt.Sprintf("[%d/%d] ✓ %s", processed, total, label)
	}
	return ProgressUpdate{Phase: MatchTrack, Step: processed, Total: total, Message: msg, Data: outcome}
}

func addItemsUpdate(processed, total, count int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddItems,
		Step:    processed,
		Total:   total,
		Message: fmt.Sprintf("Added %d tracks to %s", count, playlistID),
	}
}

func checkpointUpdate(cp models.TransferCheckpoint) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveCheckpoint,
		Step:    cp.Processed,
		Total:   cp.Total,
		Message: fmt.Sprintf("Checkpoint saved (%d%%)", cp.Percent()),
		Data:    cp,
	}
}

func transferCompletedUpdate(r *models.TransferReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransferCompleted,
		Step:    r.Processed,
		Total:   r.Total,
		Message: fmt.Sprintf("Transfer completed: %d tracks, %d failures", r.Processed, len(r.Failures)),
		Data:    r,
	}
}

func transferFailedUpdate(processed, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransferFailed,
		Step:    processed,
		Total:   total,
		Message: fmt.Sprintf("Transfer failed: %v", err),
	}
}

func autoMapUpdate(step, total int, outcome TrackOutcome) ProgressUpdate {
	u := matchTrackUpdate(step, total, outcome)
	u.Phase = AutoMap
	return u
}

func fetchPlaylistUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching: %s...", step, total, id),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
