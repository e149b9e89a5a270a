package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList lists the playlists of a provider with an optional limit.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	src, err := r.provider(ctx, cmd.String("from"), cmd.StringSlice("playlist"))
	if err != nil {
		return err
	}

	r.logger.Infof("listing %v playlists with limit %v", src.Name(), limit)

	playlists, err := src.ListPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found on %s\n", src.Capabilities().DisplayName)
	}

	rows := make([][]string, 0, len(playlists))
	for i, p := range playlists {
		rows = append(rows, []string{strconv.Itoa(i + 1), p.Name, p.ID, strconv.Itoa(p.TrackCount), string(p.Visibility)})
	}
	return r.writeTable([]string{"#", "Name", "ID", "Tracks", "Visibility"}, rows, alignRight, alignLeft, alignLeft, alignRight)
}

// PlaylistsShow prints the tracks of one playlist.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	src, err := r.provider(ctx, cmd.String("from"), []string{id})
	if err != nil {
		return err
	}

	tracks, err := src.ReadTracks(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}

	rows := make([][]string, 0, len(tracks))
	for i, t := range tracks {
		rows = append(rows, trackRow(i+1, t))
	}
	r.writePlain("%d tracks in %s\n", len(tracks), id)
	return r.writeTable([]string{"#", "Title", "Artists", "Album", "Duration"}, rows, alignRight, alignLeft, alignLeft, alignLeft, alignRight)
}

func trackRow(n int, t models.Track) []string {
	duration := "--:--"
	if t.DurationMs != nil {
		duration = shared.FormatDuration(*t.DurationMs)
	}
	return []string{strconv.Itoa(n), t.Title, strings.Join(t.Artists, ", "), t.Album, duration}
}
