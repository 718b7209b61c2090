package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/garterdb/garter"
	"github.com/garterdb/garter/internal/cli"
	"github.com/garterdb/garter/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of a database",
	Long: `Check the health of a database.

Runs the engine's integrity and foreign key checks, verifies that every
declared foreign key resolves against the loaded schema, and reports row
counts. Exits non-zero when any check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cfg.DatabasePath(dbPath)
		if err != nil {
			return cli.ConfigError("resolving database path", err)
		}
		db, err := garter.Open(path)
		if err != nil {
			return cli.DBConnectError("opening database", err)
		}
		defer func() { _ = db.Close() }()

		report, err := doctor.New(db, path).Run(cmd.Context())
		if err != nil {
			return cli.StatementError("running health checks", err)
		}
		report.Print(os.Stdout, verbose)
		if report.HasErrors() {
			return &cli.ExitError{Code: cli.ExitGeneral, Message: "health checks failed"}
		}
		return nil
	},
}
