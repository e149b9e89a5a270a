// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/listbridge/internal/formatter"
	"github.com/urfave/cli/v3"
)

// sourceFlags select the collection a command reads: a file, or playlists of a provider.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "Source provider (spotify, youtube or youtube-public)",
		},
		&cli.StringSliceFlag{
			Name:    "playlist",
			Aliases: []string{"p"},
			Usage:   "Playlist ID, name or URL to read (repeatable, default: all)",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Read the collection from a JSON/YAML file or a CSV directory instead",
		},
	}
}

func targetFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "to",
		Usage: "Target provider (spotify or youtube)",
		Value: "youtube",
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the embedded template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.action(r.SetupDatabase),
			},
		},
	}
}

// authCommand handles OAuth logins per provider.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage provider authentication",
		Commands: []*cli.Command{
			{
				Name:      "login",
				Usage:     "Authorize a provider through the browser (OAuth2 + PKCE)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "provider"}},
				Action:    r.action(r.AuthLogin),
			},
			{
				Name:      "logout",
				Usage:     "Forget the stored tokens of a provider",
				Arguments: []cli.Argument{&cli.StringArg{Name: "provider"}},
				Action:    r.action(r.AuthLogout),
			},
			{
				Name:   "status",
				Usage:  "Show which providers are authorized",
				Action: r.action(r.AuthStatus),
			},
		},
	}
}

// playlistsCommand lists and inspects provider playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Browse provider playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the playlists of a provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Usage: "Provider to list",
						Value: "spotify",
					},
					&cli.StringSliceFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "Playlist URL (youtube-public only)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to show",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.action(r.PlaylistsList),
			},
			{
				Name:      "show",
				Usage:     "Show the tracks of one playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Usage: "Provider to read",
						Value: "spotify",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.action(r.PlaylistsShow),
			},
		},
	}
}

// collectionCommand imports and exports collections.
func collectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "collection",
		Aliases: []string{"col"},
		Usage:   "Import and export playlist collections",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Write a collection to a single file or CSV directory",
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output path; the extension selects the format unless --format is set",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (" + formatList() + ")",
					},
				),
				Action: r.action(r.CollectionExport),
			},
			{
				Name:  "backup",
				Usage: "Export every playlist to its own file with a worker pool",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Usage: "Source provider",
						Value: "spotify",
					},
					&cli.StringSliceFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "Playlist IDs to export (default: all)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (" + formatList() + ")",
						Value: string(formatter.FormatJSON),
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 5,
					},
				},
				Action: r.action(r.CollectionBackup),
			},
			{
				Name:      "show",
				Usage:     "Validate and summarize a collection file or CSV directory",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "tracks",
						Usage: "List every track",
					},
				},
				Action: r.action(r.CollectionShow),
			},
		},
	}
}

// matchCommand runs and reviews track matching without writing playlists.
func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Match tracks and review ambiguous candidates",
		Commands: []*cli.Command{
			{
				Name:   "auto",
				Usage:  "Record confident matches and queue the rest for review",
				Flags:  append(sourceFlags(), targetFlag()),
				Action: r.action(r.MatchAuto),
			},
			{
				Name:   "review",
				Usage:  "Review pending matches in an interactive TUI",
				Flags:  []cli.Flag{targetFlag()},
				Action: r.action(r.MatchReview),
			},
			{
				Name:  "pending",
				Usage: "List tracks waiting for review",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "to",
						Usage: "Target provider (default: all)",
					},
				},
				Action: r.action(r.MatchPending),
			},
			{
				Name:   "list",
				Usage:  "List recorded match decisions",
				Flags:  []cli.Flag{targetFlag()},
				Action: r.action(r.MatchList),
			},
			{
				Name:      "forget",
				Usage:     "Delete a recorded decision so the track is searched again",
				Arguments: []cli.Argument{&cli.StringArg{Name: "key"}},
				Flags:     []cli.Flag{targetFlag()},
				Action:    r.action(r.MatchForget),
			},
		},
	}
}

// transferCommand handles playlist transfer operations
func transferCommand(r *Runner) *cli.Command {
	runFlags := func() []cli.Flag {
		return append(sourceFlags(),
			targetFlag(),
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show progress in an interactive TUI",
			},
			&cli.StringFlag{
				Name:  "failures",
				Usage: "Write unmatched tracks to this CSV file",
			},
		)
	}

	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer playlists between services",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Copy a collection to the target provider",
				Flags: append(runFlags(), &cli.BoolFlag{
					Name:  "force",
					Usage: "Start over even when an interrupted run exists",
				}),
				Action: r.action(r.TransferRun),
			},
			{
				Name:   "resume",
				Usage:  "Continue the interrupted run from its checkpoint",
				Flags:  runFlags(),
				Action: r.action(r.TransferResume),
			},
			{
				Name:   "status",
				Usage:  "Show the checkpoint of an interrupted run",
				Action: r.action(r.TransferStatus),
			},
			{
				Name:   "discard",
				Usage:  "Delete the checkpoint of an interrupted run",
				Action: r.action(r.TransferDiscard),
			},
		},
	}
}

// reportsCommand shows completed transfer reports.
func reportsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "Inspect completed transfers",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent transfer reports",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of reports",
						Value: 20,
					},
				},
				Action: r.action(r.ReportsList),
			},
			{
				Name:      "show",
				Usage:     "Show one report (default: the latest)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "run-id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "markdown",
						Usage: "Render as Markdown",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:  "failures",
						Usage: "Write unmatched tracks to this CSV file",
					},
				},
				Action: r.action(r.ReportsShow),
			},
		},
	}
}

// quotaCommand prints the advisory YouTube quota usage.
func quotaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "quota",
		Usage:  "Show today's YouTube Data API unit usage",
		Action: r.action(r.Quota),
	}
}
