// Package main provides a CLI for inspecting and querying garter databases.
//
// The CLI supports:
//   - tables: List the tables in a database file
//   - schema: Print a table's CREATE TABLE text
//   - query: Run a SQL query and print the resulting rows
//   - exec: Run a SQL statement for its side effects
//   - doctor: Check the health of a database
//
// Usage:
//
//	garter [flags] <command>
//
// All commands need a database file, set via --db, GARTER_DATABASE_PATH, or
// database.path in garter.yaml.
package main

func main() {
	Execute()
}
