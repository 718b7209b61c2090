package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [table]",
	Short: "Print CREATE TABLE text",
	Long: `Print the stored CREATE TABLE text for one table, or for every
table when no name is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if len(args) == 1 {
			t, err := db.TableByName(args[0])
			if err != nil {
				return err
			}
			fmt.Println(t.Schema())
			return nil
		}

		for _, t := range db.Tables() {
			fmt.Println(t.Schema() + ";")
		}
		return nil
	},
}
