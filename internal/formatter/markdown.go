package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
)

// ExportToMarkdown renders a collection as a Markdown document with one section per playlist.
func ExportToMarkdown(c *models.Collection) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Playlists from %s\n\n", c.Source)
	for _, p := range c.Playlists {
		fmt.Fprintf(&buf, "## %s\n\n", p.Name)
		if p.CoverURL != "" {
			fmt.Fprintf(&buf, "![Cover](%s)\n\n", p.CoverURL)
		}
		if p.Description != "" {
			fmt.Fprintf(&buf, "**Description**: %s\n\n", p.Description)
		}
		fmt.Fprintf(&buf, "**Tracks**: %d\n", len(p.Tracks))
		fmt.Fprintf(&buf, "**Visibility**: %s\n\n", visibility(p))

		for i, t := range p.Tracks {
			album := ""
			if t.Album != "" {
				album = fmt.Sprintf(" (%s)", t.Album)
			}
			fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, artists(t), t.Title, album, duration(t))
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// ExportToText renders a collection as a plain-text listing.
func ExportToText(c *models.Collection) []byte {
	var buf bytes.Buffer
	for i, p := range c.Playlists {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
		if p.Description != "" {
			fmt.Fprintf(&buf, "Description: %s\n", p.Description)
		}
		fmt.Fprintf(&buf, "Tracks: %d\n\n", len(p.Tracks))
		for j, t := range p.Tracks {
			fmt.Fprintf(&buf, "%d. %s - %s\n", j+1, artists(t), t.Title)
		}
	}
	return buf.Bytes()
}

// ReportToMarkdown summarises a completed transfer.
func ReportToMarkdown(r *models.TransferReport) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Transfer %s\n\n", r.RunID)
	fmt.Fprintf(&buf, "- **Source**: %s\n", r.Source)
	fmt.Fprintf(&buf, "- **Target**: %s\n", r.TargetProvider)
	fmt.Fprintf(&buf, "- **Processed**: %d/%d\n", r.Processed, r.Total)
	fmt.Fprintf(&buf, "- **Failures**: %d\n", len(r.Failures))
	fmt.Fprintf(&buf, "- **Completed**: %s\n", r.CompletedAt.Format("2006-01-02 15:04:05"))

	if len(r.Failures) > 0 {
		buf.WriteString("\n## Failures\n\n| # | Title | Artists | Reason |\n|---|---|---|---|\n")
		for i, f := range r.Failures {
			fmt.Fprintf(&buf, "| %d | %s | %s | %s |\n", i+1, escapeCell(f.Track.Title), escapeCell(artists(f.Track)), escapeCell(f.Reason))
		}
	}
	return buf.Bytes()
}

func artists(t models.Track) string {
	if len(t.Artists) == 0 {
		return "Unknown"
	}
	return strings.Join(t.Artists, ", ")
}

func duration(t models.Track) string {
	if t.DurationMs == nil {
		return shared.FormatDuration(0)
	}
	return shared.FormatDuration(*t.DurationMs)
}

func visibility(p models.Playlist) string {
	if p.Visibility == "" {
		return string(models.VisibilityPrivate)
	}
	return string(p.Visibility)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
