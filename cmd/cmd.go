// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// setupCommand creates the config file and the token database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage: "Create config.toml if missing, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Revert and reapply all migrations, removing the stored login",
			},
		},
		Action: r.Setup,
	}
}

// serveCommand runs the API proxy and static file server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web client and proxy /api requests to the Spotify Web API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config and PORT)",
			},
			&cli.StringFlag{
				Name:  "static-dir",
				Usage: "Directory holding the built client",
			},
		},
		Action: r.Serve,
	}
}

// authCommand handles the login session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify login",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in through the browser (implicit grant)",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the redirect",
						Value: 2 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL without opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "capture",
				Usage: "Store the token from a redirect URL or its fragment",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "redirect"},
				},
				Action: r.AuthCapture,
			},
			{
				Name:  "status",
				Usage: "Show whether a valid token is stored",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Call the profile endpoint to check the token",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored token",
				Action: r.AuthLogout,
			},
			{
				Name:   "url",
				Usage:  "Print the authorization URL",
				Action: r.AuthURL,
			},
		},
	}
}

// statsCommand loads and prints the dashboard for one time range.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show profile, top artists, top tracks and recommendations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "time-range",
				Aliases: []string{"t"},
				Usage:   "short_term, medium_term or long_term",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of top artists and tracks (1-50)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, csv or json",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Stats,
	}
}

// exportCommand writes dashboards for several time ranges to disk.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export dashboards for one or more time ranges",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown or text",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: spotiverse_export_<epoch>)",
			},
			&cli.StringSliceFlag{
				Name:    "time-range",
				Aliases: []string{"t"},
				Usage:   "Time range to export, repeatable (default: all)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent loads",
				Value: 3,
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Dashboard loads per second",
				Value: 2,
			},
			&cli.BoolFlag{
				Name:  "images",
				Usage: "Download the profile image next to markdown exports",
			},
		},
		Action: r.Export,
	}
}

// apiCommand handles raw authenticated calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw authenticated calls to the Web API (or the proxy in [client] base_url)",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a path, prints the JSON answer",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST a JSON body to a path",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "time-range",
				Aliases: []string{"t"},
				Usage:   "Initial time range",
			},
		},
		Action: r.TUI,
	}
}
