// package formatter reads and writes playlist collections and transfer reports
// in the supported file formats (JSON, YAML, a CSV pair, Markdown and plain text).
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format is a collection file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Formats lists every format accepted by [ParseFormat].
var Formats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat maps a flag value or file extension to a [Format].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrUnknownFormat, s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Importable reports whether collections can be read back from f.
func (f Format) Importable() bool {
	return f == FormatJSON || f == FormatYAML || f == FormatCSV
}

// MarshalJSON encodes v as JSON, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// EncodeCollection writes c to w as JSON or YAML.
func EncodeCollection(w io.Writer, c *models.Collection, f Format) error {
	switch f {
	case FormatJSON:
		data, err := MarshalJSON(c, true)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := w.Write(ExportToMarkdown(c))
		return err
	case FormatText:
		_, err := w.Write(ExportToText(c))
		return err
	default:
		return fmt.Errorf("%w: %s cannot be written as a single stream", shared.ErrUnknownFormat, f)
	}
}

// DecodeCollection reads a JSON or YAML collection. A missing source defaults to "unknown".
func DecodeCollection(r io.Reader, f Format) (*models.Collection, error) {
	var c models.Collection
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&c); err != nil {
			return nil, fmt.Errorf("%w: failed to decode JSON: %w", shared.ErrInvalidInput, err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&c); err != nil {
			return nil, fmt.Errorf("%w: failed to decode YAML: %w", shared.ErrInvalidInput, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s cannot be read as a single stream", shared.ErrUnknownFormat, f)
	}
	normalizeCollection(&c)
	return &c, nil
}

// normalizeCollection fills defaults on an imported collection.
func normalizeCollection(c *models.Collection) {
	if c.Source == "" {
		c.Source = "unknown"
	}
	if c.FetchedAt.IsZero() {
		c.FetchedAt = time.Now().UTC()
	}
	for i := range c.Playlists {
		p := &c.Playlists[i]
		if p.ID == "" {
			p.ID = p.Name
		}
		if p.Visibility == "" {
			p.Visibility = models.VisibilityPrivate
		}
		if p.TrackCount == 0 {
			p.TrackCount = len(p.Tracks)
		}
	}
}

// WriteCollection writes c to path. CSV collections are written as a
// playlists.csv/tracks.csv pair inside the directory path; the written files are returned.
func WriteCollection(c *models.Collection, path string, f Format) ([]string, error) {
	if f == FormatCSV {
		return WriteCSVPair(c, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := EncodeCollection(file, c, f); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// ReadCollection loads a collection from path. A directory is read as a CSV pair.
func ReadCollection(path string) (*models.Collection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if info.IsDir() {
		return ReadCSVPair(path)
	}

	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if f == FormatCSV {
		return ReadCSVPair(filepath.Dir(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return DecodeCollection(file, f)
}
