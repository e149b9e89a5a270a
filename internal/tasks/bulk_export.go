package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/desertthunder/listbridge/internal/formatter"
	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/services"
	"github.com/desertthunder/listbridge/internal/shared"
	"golang.org/x/time/rate"
)

// ManifestFile is written into the output directory after a bulk export.
const ManifestFile = "export_manifest.json"

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: json)
	OutputDir  string           // Base output directory (default: <provider>_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 5, max 10)
	RateLimit  float64          // Playlist reads per second (default: 5)
	Observer   Observer         // Progress receiver, called on the caller's goroutine
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	TrackCount   int      `json:"track_count"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarises a bulk export and is written as the manifest.
type BulkExportResult struct {
	Source            string                 `json:"source"`
	Format            formatter.Format       `json:"format"`
	ExportedAt        time.Time              `json:"exported_at"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

type playlistExportJob struct {
	source   string
	playlist models.Playlist
}

// BulkExport exports playlists of src concurrently with rate limiting and progress tracking.
//
// Reads are serialized through a rate limiter; a pool of workers writes the files.
// Failed playlists are reported in the result and never stop the others. A manifest
// summarizing the export is written to the output directory.
func BulkExport(ctx context.Context, src services.Provider, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: source provider", shared.ErrMissingArgument)
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("%s_export_%d", src.Name(), time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	notify := func(u ProgressUpdate) {
		if opts.Observer != nil {
			opts.Observer(u)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summaries, err := src.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s playlists: %w", src.Name(), err)
	}
	if len(ids) == 0 {
		for _, p := range summaries {
			ids = append(ids, p.ID)
		}
	}
	byID := make(map[string]models.Playlist, len(summaries))
	for _, p := range summaries {
		byID[p.ID] = p
	}

	result := &BulkExportResult{
		Source:          src.Name(),
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan playlistExportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))
	fetched := make(chan ProgressUpdate, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(&wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		defer close(fetched)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			playlist, ok := byID[id]
			if !ok {
				playlist = models.Playlist{ID: id, Name: id}
			}
			tracks, err := src.ReadTracks(ctx, id)
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID:   id,
					PlaylistName: playlist.Name,
					Error:        fmt.Errorf("failed to fetch playlist: %w", err),
				}
				continue
			}
			playlist.Tracks = tracks
			playlist.TrackCount = len(tracks)

			fetched <- fetchPlaylistUpdate(i+1, len(ids), playlist.Name)
			jobs <- playlistExportJob{source: src.Name(), playlist: playlist}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for results != nil || fetched != nil {
		select {
		case u, ok := <-fetched:
			if !ok {
				fetched = nil
				continue
			}
			notify(u)
		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			completed++
			if res.Error != nil {
				res.ErrorMessage = res.Error.Error()
			}
			result.Results = append(result.Results, res)

			if res.Success {
				result.SuccessfulExports++
				notify(exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
			} else {
				result.FailedExports++
				notify(exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestFile)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes playlists received on jobs until the channel closes.
func exportWorker(wg *sync.WaitGroup, jobs <-chan playlistExportJob, results chan<- PlaylistExportResult, opts BulkExportOpts) {
	defer wg.Done()
	for job := range jobs {
		results <- exportSinglePlaylist(job, opts)
	}
}

// exportSinglePlaylist writes one playlist as a single-playlist collection.
func exportSinglePlaylist(j playlistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   j.playlist.ID,
		PlaylistName: j.playlist.Name,
		TrackCount:   len(j.playlist.Tracks),
		Files:        []string{},
	}

	c := &models.Collection{Source: j.source, Playlists: []models.Playlist{j.playlist}, FetchedAt: time.Now().UTC()}
	path := filepath.Join(opts.OutputDir, safeFileName(j.playlist.ID))
	if opts.Format != formatter.FormatCSV {
		path += "." + extension(opts.Format)
	}

	files, err := formatter.WriteCollection(c, path, opts.Format)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	result.Files = files
	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := formatter.MarshalJSON(result, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func extension(f formatter.Format) string {
	if f == formatter.FormatMarkdown {
		return "md"
	}
	return string(f)
}

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func safeFileName(id string) string {
	if name := unsafeNameRe.ReplaceAllString(id, "_"); name != "" {
		return name
	}
	return "playlist"
}
