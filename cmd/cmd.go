// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// runCommand starts the tracker daemon
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Start the listening tracker and report scheduler",
		Flags:  []cli.Flag{configFlag()},
		Action: r.RunDaemon,
	}
}

// reportCommand sends all report windows on demand
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Build and send all report windows immediately",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Render reports to stdout instead of sending them",
			},
		},
		Action: r.ReportAll,
	}
}

// authCommand bootstraps the Spotify refresh token
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Spotify using OAuth2",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "code",
				Usage: "Authorization code from the redirect URL",
			},
		},
		Action: r.Auth,
	}
}

// migrateCommand manages the database schema
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Database schema management",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply pending migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.MigrateUp,
			},
			{
				Name:   "down",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.MigrateDown,
			},
		},
	}
}

// setupCommand creates a starter configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a starter config.toml in the current directory",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}
