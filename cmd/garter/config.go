package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			fmt.Println("Config file: ", configPath)
		} else {
			fmt.Println("Config file:  (none found, using defaults)")
		}
		fmt.Println("database.path:   ", orUnset(cfg.Database.Path))
		fmt.Println("database.verbose:", cfg.Database.Verbose)
		fmt.Println("query.format:    ", cfg.Query.Format)
		fmt.Println("query.limit:     ", cfg.Query.Limit)
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
