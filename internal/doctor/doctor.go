// Package doctor provides health checks for a garter database.
//
// The doctor command validates that a database file is usable before queries
// are built against it: the file itself, engine integrity, foreign key
// enforcement and violations, and whether every declared foreign key resolves
// to a registered table and column.
//
// Example usage:
//
//	d := doctor.New(db, path)
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/garterdb/garter"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "database", "schema").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor performs health checks on a garter database.
type Doctor struct {
	db   *garter.Database
	path string
}

// New creates a new Doctor instance. path is the database file as given to
// Open; ":memory:" skips the file checks.
func New(db *garter.Database, path string) *Doctor {
	return &Doctor{db: db, path: path}
}

// Run executes all health checks and returns a report.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkFile(report)
	if err := d.checkIntegrity(ctx, report); err != nil {
		return nil, fmt.Errorf("checking integrity: %w", err)
	}
	if err := d.checkForeignKeys(ctx, report); err != nil {
		return nil, fmt.Errorf("checking foreign keys: %w", err)
	}
	d.checkSchema(report)
	if err := d.checkData(ctx, report); err != nil {
		return nil, fmt.Errorf("checking data: %w", err)
	}

	return report, nil
}

// checkFile validates the database file exists and is a regular file.
func (d *Doctor) checkFile(report *Report) {
	if d.path == "" || d.path == ":memory:" || strings.HasPrefix(d.path, "file::memory:") {
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "file",
			Status:   StatusPass,
			Message:  "in-memory database",
		})
		return
	}

	info, err := os.Stat(d.path)
	switch {
	case err != nil:
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "file",
			Status:   StatusFail,
			Message:  fmt.Sprintf("database file %s not accessible", d.path),
			Details:  err.Error(),
			FixHint:  "check the path given via --db, GARTER_DATABASE_PATH, or garter.yaml",
		})
	case info.IsDir():
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "file",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%s is a directory, not a database file", d.path),
		})
	case info.Size() == 0:
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "file",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("database file %s is empty", d.path),
			FixHint:  "create tables before querying",
		})
	default:
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "file",
			Status:   StatusPass,
			Message:  fmt.Sprintf("database file %s (%d bytes)", d.path, info.Size()),
		})
	}
}

// checkIntegrity runs the engine's integrity check.
func (d *Doctor) checkIntegrity(ctx context.Context, report *Report) error {
	rows, err := d.db.Conn().QueryContext(ctx, "PRAGMA integrity_check")
	if err != nil {
		return err
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return err
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(problems) > 0 {
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "integrity",
			Status:   StatusFail,
			Message:  fmt.Sprintf("integrity check reported %d problems", len(problems)),
			Details:  strings.Join(problems, "\n"),
			FixHint:  "restore the database from a backup",
		})
		return nil
	}
	report.AddCheck(CheckResult{
		Category: "database",
		Name:     "integrity",
		Status:   StatusPass,
		Message:  "integrity check ok",
	})
	return nil
}

// checkForeignKeys reports enforcement state and constraint violations.
func (d *Doctor) checkForeignKeys(ctx context.Context, report *Report) error {
	var enabled int
	if err := d.db.Conn().QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return err
	}
	if enabled == 0 {
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "fk-enforcement",
			Status:   StatusWarn,
			Message:  "foreign key enforcement is off",
			FixHint:  "enable with PRAGMA foreign_keys = ON",
		})
	} else {
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "fk-enforcement",
			Status:   StatusPass,
			Message:  "foreign key enforcement is on",
		})
	}

	rows, err := d.db.Conn().QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return err
	}
	defer rows.Close()

	violations := make(map[string]int)
	for rows.Next() {
		var table, parent string
		var rowid, fkid any
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return err
		}
		violations[table+" -> "+parent]++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(violations) == 0 {
		report.AddCheck(CheckResult{
			Category: "database",
			Name:     "fk-violations",
			Status:   StatusPass,
			Message:  "no foreign key violations",
		})
		return nil
	}
	var details []string
	for edge, n := range violations {
		details = append(details, fmt.Sprintf("%s: %d rows", edge, n))
	}
	report.AddCheck(CheckResult{
		Category: "database",
		Name:     "fk-violations",
		Status:   StatusFail,
		Message:  fmt.Sprintf("%d foreign key edges have orphaned rows", len(violations)),
		Details:  strings.Join(details, "\n"),
		FixHint:  "delete or repoint the orphaned rows",
	})
	return nil
}

// checkSchema verifies every declared foreign key resolves against the
// registered tables. An unresolvable reference means implicit joins through
// it will fail.
func (d *Doctor) checkSchema(report *Report) {
	tables := d.db.Tables()
	if len(tables) == 0 {
		report.AddCheck(CheckResult{
			Category: "schema",
			Name:     "tables",
			Status:   StatusWarn,
			Message:  "no tables registered",
			FixHint:  "create tables before querying",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "schema",
		Name:     "tables",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d tables registered", len(tables)),
	})

	var broken []string
	edges := 0
	for _, t := range tables {
		for _, c := range t.Columns() {
			target, err := c.ForeignKey()
			if err != nil {
				broken = append(broken, fmt.Sprintf("%s: %v", c, err))
				continue
			}
			if target != nil {
				edges++
			}
		}
	}
	if len(broken) > 0 {
		report.AddCheck(CheckResult{
			Category: "schema",
			Name:     "foreign-keys",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%d foreign keys do not resolve", len(broken)),
			Details:  strings.Join(broken, "\n"),
			FixHint:  "every REFERENCES target must name a registered table and column",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "schema",
		Name:     "foreign-keys",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d foreign keys resolve", edges),
	})
}

// checkData records row counts per table as verbose detail.
func (d *Doctor) checkData(ctx context.Context, report *Report) error {
	tables := d.db.Tables()
	if len(tables) == 0 {
		return nil
	}
	var details []string
	var total int64
	for _, t := range tables {
		n, err := t.Count(ctx)
		if err != nil {
			return fmt.Errorf("counting %s: %w", t.Name(), err)
		}
		details = append(details, fmt.Sprintf("%s: %d rows", t.Name(), n))
		total += n
	}
	report.AddCheck(CheckResult{
		Category: "data",
		Name:     "row-counts",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d rows across %d tables", total, len(tables)),
		Details:  strings.Join(details, "\n"),
	})
	return nil
}
