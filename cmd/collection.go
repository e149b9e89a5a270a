package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/listbridge/internal/formatter"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/desertthunder/listbridge/internal/tasks"
	"github.com/urfave/cli/v3"
)

func formatList() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// CollectionExport writes the selected collection to --output.
func (r *Runner) CollectionExport(ctx context.Context, cmd *cli.Command) error {
	output := cmd.String("output")

	var (
		format formatter.Format
		err    error
	)
	if f := cmd.String("format"); f != "" {
		format, err = formatter.ParseFormat(f)
	} else {
		format, err = formatter.FormatFromPath(output)
	}
	if err != nil {
		return err
	}

	collection, err := r.sourceCollection(ctx, cmd)
	if err != nil {
		return err
	}

	files, err := formatter.WriteCollection(collection, output, format)
	if err != nil {
		return err
	}

	r.logger.Info("collection exported", "format", format, "playlists", len(collection.Playlists))
	r.writePlain("✓ Exported %d playlists (%d tracks) from %s\n", len(collection.Playlists), collection.TotalTracks(), collection.Source)
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// CollectionBackup exports each playlist of a provider to its own file.
func (r *Runner) CollectionBackup(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ids := cmd.StringSlice("playlist")
	src, err := r.provider(ctx, cmd.String("from"), ids)
	if err != nil {
		return err
	}

	result, err := tasks.BulkExport(ctx, src, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		Observer:   func(u tasks.ProgressUpdate) {
			r.writePlain("%s\n", u.Message)
		},
	})
	if err != nil {
		return err
	}

	r.writePlainHeader("Export Complete")
	r.writePlain("Playlists: %d/%d exported\n", result.SuccessfulExports, result.TotalPlaylists)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d playlists:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.PlaylistID, res.ErrorMessage)
			}
		}
	}
	return nil
}

// CollectionShow validates a collection file and prints a summary.
func (r *Runner) CollectionShow(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	collection, err := formatter.ReadCollection(path)
	if err != nil {
		return err
	}

	r.writePlain("Source: %s\n", collection.Source)
	r.writePlain("Playlists: %d, tracks: %d\n\n", len(collection.Playlists), collection.TotalTracks())

	if cmd.Bool("tracks") {
		return r.writePlain("%s", formatter.ExportToText(collection))
	}

	rows := make([][]string, 0, len(collection.Playlists))
	for i, p := range collection.Playlists {
		rows = append(rows, []string{strconv.Itoa(i + 1), p.Name, strconv.Itoa(len(p.Tracks)), string(p.Visibility)})
	}
	return r.writeTable([]string{"#", "Name", "Tracks", "Visibility"}, rows, alignRight, alignLeft, alignRight)
}
