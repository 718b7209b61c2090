package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garterdb/garter/internal/cli"
)

var execCmd = &cobra.Command{
	Use:   "exec <sql>",
	Short: "Run a SQL statement for its side effects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		result, err := db.ExecStatement(context.Background(), args[0], nil)
		if err != nil {
			return cli.StatementError("running statement", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		fmt.Printf("%d row(s) affected\n", affected)
		return nil
	},
}
