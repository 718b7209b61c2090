package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garterdb/garter/internal/cli"
)

var queryFormat string

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SQL query and print the rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		rows, err := db.Execute(context.Background(), args[0], nil)
		if err != nil {
			return cli.StatementError("running query", err)
		}
		defer func() { _ = rows.Close() }()

		format := queryFormat
		if format == "" {
			format = cfg.Query.Format
		}
		limit := cfg.Query.Limit
		switch format {
		case "csv":
			return printCSV(rows, limit)
		case "json":
			return printJSON(rows, limit)
		default:
			return printTable(rows, limit)
		}
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryFormat, "format", "", "output format: table, csv, or json")
}

func scanRow(rows *sql.Rows, width int) ([]any, error) {
	vals := make([]any, width)
	ptrs := make([]any, width)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func printTable(rows *sql.Rows, limit int64) error {
	names, err := rows.Columns()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, name := range names {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, name)
	}
	fmt.Fprintln(w)
	var printed int64
	for rows.Next() {
		if limit > 0 && printed == limit {
			break
		}
		printed++
		vals, err := scanRow(rows, len(names))
		if err != nil {
			return err
		}
		for i, v := range vals {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cellString(v))
		}
		fmt.Fprintln(w)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return w.Flush()
}

func printCSV(rows *sql.Rows, limit int64) error {
	names, err := rows.Columns()
	if err != nil {
		return err
	}
	w := csv.NewWriter(os.Stdout)
	if err := w.Write(names); err != nil {
		return err
	}
	var printed int64
	for rows.Next() {
		if limit > 0 && printed == limit {
			break
		}
		printed++
		vals, err := scanRow(rows, len(names))
		if err != nil {
			return err
		}
		record := make([]string, len(vals))
		for i, v := range vals {
			record[i] = cellString(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func printJSON(rows *sql.Rows, limit int64) error {
	names, err := rows.Columns()
	if err != nil {
		return err
	}
	var out []map[string]any
	var printed int64
	for rows.Next() {
		if limit > 0 && printed == limit {
			break
		}
		printed++
		vals, err := scanRow(rows, len(names))
		if err != nil {
			return err
		}
		record := make(map[string]any, len(vals))
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[names[i]] = v
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
