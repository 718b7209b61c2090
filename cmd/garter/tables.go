package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		for _, t := range db.Tables() {
			cols := t.Columns()
			fmt.Printf("%s (%d columns)\n", t.Name(), len(cols))
		}
		return nil
	},
}
