package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
)

var (
	_ list.Item = reviewItem{}
	_ list.Item = candidateItem{}
)

// reviewItem wraps [models.PendingReview] to implement [list.Item].
type reviewItem struct {
	review *models.PendingReview
}

func (i reviewItem) FilterValue() string {
	return i.review.Track.Title + " " + strings.Join(i.review.Track.Artists, " ")
}
func (i reviewItem) Title() string { return i.review.Track.Title }
func (i reviewItem) Description() string {
	desc := artistLine(i.review.Track)
	switch n := len(i.review.Candidates); n {
	case 0:
		desc += " • no candidates"
	default:
		desc = fmt.Sprintf("%s • %d candidates, best %d", desc, n, i.review.Candidates[0].Score)
	}
	return fmt.Sprintf("%s • %s", desc, i.review.TargetProvider)
}

// candidateItem wraps [models.CandidateScore] to implement [list.Item].
type candidateItem struct {
	candidate models.CandidateScore
}

func (i candidateItem) FilterValue() string { return i.candidate.Track.Title }
func (i candidateItem) Title() string {
	return fmt.Sprintf("[%3d] %s", i.candidate.Score, i.candidate.Track.Title)
}
func (i candidateItem) Description() string {
	parts := make([]string, 0, len(models.Factors))
	for _, f := range models.Factors {
		parts = append(parts, fmt.Sprintf("%s %d", f, i.candidate.Breakdown[f]))
	}
	return fmt.Sprintf("%s • %s", artistLine(i.candidate.Track), strings.Join(parts, " · "))
}

func artistLine(t models.Track) string {
	artists := "Unknown artist"
	if len(t.Artists) > 0 {
		artists = strings.Join(t.Artists, ", ")
	}
	if t.DurationMs != nil {
		artists += " (" + shared.FormatDuration(*t.DurationMs) + ")"
	}
	return artists
}
