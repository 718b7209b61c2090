package main

import (
	"github.com/spf13/cobra"

	"github.com/garterdb/garter"
	"github.com/garterdb/garter/internal/cli"

	_ "modernc.org/sqlite"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string

	// Persistent flags
	cfgFile string
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "garter",
	Short: "SQLite query construction and inspection",
	Long: `garter - SQLite query construction and inspection

Garter is an embedded query-construction layer: it builds SQL statements
from composable expression objects, parameterizes every literal, and infers
JOIN clauses from declared foreign keys. This CLI inspects and queries the
database files the library manages.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupSchema  = "schema"
	groupData    = "data"
	groupUtility = "utility"
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover garter.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every executed statement")

	// Define command groups
	rootCmd.AddGroup(
		&cobra.Group{ID: groupSchema, Title: "Schema:"},
		&cobra.Group{ID: groupData, Title: "Data:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	// Schema commands
	tablesCmd.GroupID = groupSchema
	schemaCmd.GroupID = groupSchema
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(schemaCmd)

	// Data commands
	queryCmd.GroupID = groupData
	execCmd.GroupID = groupData
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(execCmd)

	// Utility commands
	doctorCmd.GroupID = groupUtility
	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// openDatabase resolves the database path from flag and config and opens it.
func openDatabase() (*garter.Database, error) {
	path, err := cfg.DatabasePath(dbPath)
	if err != nil {
		return nil, cli.ConfigError("resolving database path", err)
	}
	var opts []garter.Option
	if verbose || cfg.Database.Verbose {
		opts = append(opts, garter.Verbose())
	}
	db, err := garter.Open(path, opts...)
	if err != nil {
		return nil, cli.DBConnectError("opening database", err)
	}
	return db, nil
}
