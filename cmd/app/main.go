// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/openaccel/beamauth/cmd/app/commands"
	"github.com/openaccel/beamauth/internal/app"
	"github.com/openaccel/beamauth/internal/config"
)

var version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "beamauth",
		Usage:   "Beam authorization consistency and revocation engine",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server and the periodic expiration scanner",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunMigrations(
						container.Logger(),
						cfg.DBDriver,
						cfg.DBConnectionString,
					)
				},
			},
			{
				Name:  "expiration-check",
				Usage: "Run one expiration check and report what it found",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "include-upcoming",
						Aliases: []string{"u"},
						Value:   true,
						Usage:   "Also report permissions expiring soon",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunExpirationCheck(
						ctx,
						cmd.Bool("include-upcoming"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "toggle-verification",
				Usage: "Create or delete the verification row for a (control, destination) pair",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "control-id",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Credited control ID",
					},
					&cli.Int64Flag{
						Name:     "destination-id",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "Beam destination ID",
					},
					&cli.StringFlag{
						Name:     "actor",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Username of the administrator performing the toggle",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunToggleVerification(
						ctx,
						cmd.Int64("control-id"),
						cmd.Int64("destination-id"),
						cmd.String("actor"),
						commands.DefaultIO(),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
