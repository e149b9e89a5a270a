package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/listbridge/internal/formatter"
	"github.com/desertthunder/listbridge/internal/models"
	th "github.com/desertthunder/listbridge/internal/testing"
)

func exportSource(count int) *th.MockProvider {
	p := th.NewMockProvider("spotify")
	for i := range count {
		id := string(rune('a'+i)) + ":list"
		p.Playlists = append(p.Playlists, models.Playlist{
			ID:     id,
			Name:   "Playlist " + id,
			Tracks: []models.Track{cityLights(), morningRun()},
		})
	}
	return p
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		format         formatter.Format
		playlistCount  int
		wantSuccess    int
		validateResult func(t *testing.T, result *BulkExportResult, dir string)
	}{
		{
			name:          "single playlist json export",
			format:        formatter.FormatJSON,
			playlistCount: 1,
			wantSuccess:   1,
			validateResult: func(t *testing.T, result *BulkExportResult, dir string) {
				path := filepath.Join(dir, "a_list.json")
				th.AssertFileExists(t, path)
				c, err := formatter.ReadCollection(path)
				if err != nil {
					t.Fatalf("failed to read export: %v", err)
				}
				if c.Source != "spotify" || c.TotalTracks() != 2 {
					t.Errorf("unexpected collection: %+v", c)
				}
			},
		},
		{
			name:          "multiple playlists csv export",
			format:        formatter.FormatCSV,
			playlistCount: 3,
			wantSuccess:   3,
			validateResult: func(t *testing.T, result *BulkExportResult, dir string) {
				for _, res := range result.Results {
					if len(res.Files) != 2 {
						t.Errorf("CSV export should create 2 files, got %d", len(res.Files))
					}
				}
				th.AssertDirExists(t, filepath.Join(dir, "b_list"))
			},
		},
		{
			name:          "markdown export",
			format:        formatter.FormatMarkdown,
			playlistCount: 2,
			wantSuccess:   2,
			validateResult: func(t *testing.T, result *BulkExportResult, dir string) {
				content := th.MustReadFile(t, filepath.Join(dir, "a_list.md"))
				if !strings.Contains(content, "## Playlist a:list") {
					t.Errorf("unexpected markdown:\n%s", content)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var updates []ProgressUpdate

			result, err := BulkExport(ctx, exportSource(tt.playlistCount), nil, BulkExportOpts{
				Format:    tt.format,
				OutputDir: dir,
				RateLimit: 1000,
				Observer:  func(u ProgressUpdate) { updates = append(updates, u) },
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}
			if result.SuccessfulExports != tt.wantSuccess || result.FailedExports != 0 {
				t.Errorf("expected %d successes, got %d (%d failed)", tt.wantSuccess, result.SuccessfulExports, result.FailedExports)
			}
			if len(updates) != tt.playlistCount*2 {
				t.Errorf("expected a fetch and an export update per playlist, got %d", len(updates))
			}
			th.AssertFileExists(t, result.ManifestPath)
			tt.validateResult(t, result, dir)
		})
	}

	t.Run("partial failure", func(t *testing.T) {
		dir := t.TempDir()
		src := exportSource(2)
		src.ReadErrs = map[string]error{"b:list": errors.New("gone")}

		result, err := BulkExport(ctx, src, []string{"a:list", "b:list"}, BulkExportOpts{OutputDir: dir, RateLimit: 1000})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("expected 1 success and 1 failure, got %d/%d", result.SuccessfulExports, result.FailedExports)
		}

		var manifest BulkExportResult
		if err := json.Unmarshal([]byte(th.MustReadFile(t, filepath.Join(dir, ManifestFile))), &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if manifest.TotalPlaylists != 2 || manifest.Format != formatter.FormatJSON {
			t.Errorf("unexpected manifest: %+v", manifest)
		}
		var failed *PlaylistExportResult
		for i := range manifest.Results {
			if !manifest.Results[i].Success {
				failed = &manifest.Results[i]
			}
		}
		if failed == nil || !strings.Contains(failed.ErrorMessage, "gone") {
			t.Errorf("expected failure message in manifest, got %+v", manifest.Results)
		}
	})

	t.Run("list failure", func(t *testing.T) {
		src := exportSource(1)
		src.ListErr = errors.New("unauthorized")
		if _, err := BulkExport(ctx, src, nil, BulkExportOpts{OutputDir: t.TempDir()}); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := BulkExport(cctx, exportSource(2), nil, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestSafeFileName(t *testing.T) {
	tc := []struct {
		in, want string
	}{
		{"37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"spotify:playlist:abc", "spotify_playlist_abc"},
		{"../etc", "_etc"},
		{"", "playlist"},
	}
	for _, tt := range tc {
		if got := safeFileName(tt.in); got != tt.want {
			t.Errorf("safeFileName(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
