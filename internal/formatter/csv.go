package formatter

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
)

// CSV pair file names.
const (
	PlaylistsFile = "playlists.csv"
	TracksFile    = "tracks.csv"
)

// SourceCSV is the source recorded on collections imported from a CSV pair.
const SourceCSV = "csv"

var (
	playlistHeader = []string{"playlist_name", "description", "visibility", "source_name"}
	trackHeader    = []string{"playlist_name", "position", "title", "artists", "album", "duration_ms", "isrc", "release_year", "explicit", "cover_url"}
	failureHeader  = []string{"index", "title", "artists", "reason"}
)

// ExportPlaylistsCSV renders the playlists.csv half of the pair.
func ExportPlaylistsCSV(c *models.Collection) ([]byte, error) {
	source := c.Source
	if source == "" {
		source = "unknown"
	}
	rows := make([][]string, 0, len(c.Playlists))
	for _, p := range c.Playlists {
		visibility := p.Visibility
		if visibility == "" {
			visibility = models.VisibilityPrivate
		}
		rows = append(rows, []string{p.Name, p.Description, string(visibility), source})
	}
	return writeCSV(playlistHeader, rows)
}

// ExportTracksCSV renders the tracks.csv half of the pair. Positions are 1-based.
func ExportTracksCSV(c *models.Collection) ([]byte, error) {
	var rows [][]string
	for _, p := range c.Playlists {
		for i, t := range p.Tracks {
			rows = append(rows, []string{
				p.Name,
				strconv.Itoa(i + 1),
				t.Title,
				strings.Join(t.Artists, "; "),
				t.Album,
				optionalInt(t.DurationMs),
				t.ISRC,
				optionalInt(t.ReleaseYear),
				optionalBool(t.Explicit),
				t.CoverURL,
			})
		}
	}
	return writeCSV(trackHeader, rows)
}

// WriteCSVPair writes playlists.csv and tracks.csv into dir.
func WriteCSVPair(c *models.Collection, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	playlists, err := ExportPlaylistsCSV(c)
	if err != nil {
		return nil, err
	}
	tracks, err := ExportTracksCSV(c)
	if err != nil {
		return nil, err
	}

	files := []string{filepath.Join(dir, PlaylistsFile), filepath.Join(dir, TracksFile)}
	for i, data := range [][]byte{playlists, tracks} {
		if err := os.WriteFile(files[i], data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", files[i], err)
		}
	}
	return files, nil
}

// ReadCSVPair loads playlists.csv and tracks.csv from dir.
func ReadCSVPair(dir string) (*models.Collection, error) {
	playlists, err := os.Open(filepath.Join(dir, PlaylistsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	defer playlists.Close()

	tracks, err := os.Open(filepath.Join(dir, TracksFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	defer tracks.Close()

	return ImportCSV(playlists, tracks)
}

// ImportCSV parses a CSV pair. Playlists are keyed by name; track rows naming an
// unknown playlist are ignored and tracks are ordered by their position column.
func ImportCSV(playlistsR, tracksR io.Reader) (*models.Collection, error) {
	playlistRows, err := readCSV(playlistsR)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", PlaylistsFile, err)
	}
	trackRows, err := readCSV(tracksR)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TracksFile, err)
	}

	c := &models.Collection{Source: SourceCSV, FetchedAt: time.Now().UTC()}
	index := make(map[string]int, len(playlistRows))
	for _, row := range playlistRows {
		name := row["playlist_name"]
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = len(c.Playlists)
		c.Playlists = append(c.Playlists, models.Playlist{
			ID:          name,
			Name:        name,
			Description: row["description"],
			Visibility:  models.ParseVisibility(row["visibility"]),
			Tracks:      []models.Track{},
		})
	}

	type positioned struct {
		pos   int
		track models.Track
	}
	byPlaylist := make(map[int][]positioned)
	for i, row := range trackRows {
		pi, ok := index[row["playlist_name"]]
		if !ok {
			continue
		}
		pos, err := strconv.Atoi(row["position"])
		if err != nil {
			pos = i + 1
		}
		byPlaylist[pi] = append(byPlaylist[pi], positioned{pos: pos, track: trackFromRow(row)})
	}

	for pi, rows := range byPlaylist {
		slices.SortStableFunc(rows, func(a, b positioned) int { return cmp.Compare(a.pos, b.pos) })
		for _, r := range rows {
			c.Playlists[pi].Tracks = append(c.Playlists[pi].Tracks, r.track)
		}
	}
	for i := range c.Playlists {
		c.Playlists[i].TrackCount = len(c.Playlists[i].Tracks)
	}
	return c, nil
}

func trackFromRow(row map[string]string) models.Track {
	t := models.Track{
		Title:    row["title"],
		Artists:  splitArtists(row["artists"]),
		Album:    row["album"],
		ISRC:     row["isrc"],
		CoverURL: row["cover_url"],
	}
	if n, err := strconv.Atoi(row["duration_ms"]); err == nil && n > 0 {
		t.DurationMs = models.IntPtr(n)
	}
	if n, err := strconv.Atoi(row["release_year"]); err == nil && n > 0 {
		t.ReleaseYear = models.IntPtr(n)
	}
	if b, err := strconv.ParseBool(row["explicit"]); err == nil {
		t.Explicit = models.BoolPtr(b)
	}
	return t
}

func splitArtists(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ";")
	artists := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			artists = append(artists, p)
		}
	}
	return artists
}

// ExportFailuresCSV renders the failure report with 1-based indexes.
func ExportFailuresCSV(failures []models.FailureRecord) ([]byte, error) {
	rows := make([][]string, 0, len(failures))
	for i, f := range failures {
		rows = append(rows, []string{strconv.Itoa(i + 1), f.Track.Title, strings.Join(f.Track.Artists, ", "), f.Reason})
	}
	return writeCSV(failureHeader, rows)
}

// WriteFailuresCSV writes the failure report to path.
func WriteFailuresCSV(failures []models.FailureRecord, path string) error {
	data, err := ExportFailuresCSV(failures)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write failures file: %w", err)
	}
	return nil
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}
	return buf.Bytes(), nil
}

// readCSV returns every row keyed by the header names.
func readCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
