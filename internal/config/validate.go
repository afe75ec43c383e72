// Package config provides configuration models and helpers for the pipeline.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a resolved Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced but does not
	// block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "source.kind",
// "warehouse.dsn"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// SourceKinds lists the supported source store kinds.
var SourceKinds = []string{"mysql", "postgres", "sqlite"}

// WarehouseKinds lists the supported publish targets.
var WarehouseKinds = []string{"postgres", "mssql", "sqlite", "mysql"}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and log lines",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateOutput(p.Output)...)
	issues = append(issues, validateRFM(p)...)
	issues = append(issues, validateWarehouse(p.Warehouse)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	if !contains(SourceKinds, s.Kind) {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unsupported source kind %q (want one of %s)", s.Kind, strings.Join(SourceKinds, ", ")),
		})
	}

	switch s.Kind {
	case "sqlite":
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.dsn",
				Message:  "sqlite source requires a dsn (file path or file: URI)",
			})
		}
	default:
		if s.DSN != "" {
			break
		}
		if strings.TrimSpace(s.Database) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.database",
				Message:  "database name must not be empty",
			})
		}
		if strings.TrimSpace(s.Host) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.host",
				Message:  "host must not be empty",
			})
		}
		if s.Port < 0 || s.Port > 65535 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.port",
				Message:  fmt.Sprintf("port %d out of range", s.Port),
			})
		}
		if s.User == "root" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "source.user",
				Message:  "connecting as root; the pipeline only needs read access",
			})
		}
	}
	return issues
}

func validateOutput(o Output) []Issue {
	if strings.TrimSpace(o.Dir) == "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     "output.dir",
			Message:  "output directory must not be empty",
		}}
	}
	return nil
}

func validateRFM(p Pipeline) []Issue {
	if _, err := p.ReferenceTime(); err != nil {
		return []Issue{{
			Severity: SeverityError,
			Path:     "rfm.reference_date",
			Message:  fmt.Sprintf("reference date %q must be YYYY-MM-DD", p.RFM.ReferenceDate),
		}}
	}
	return nil
}

func validateWarehouse(w Warehouse) []Issue {
	var issues []Issue
	if w.Kind == "" {
		return nil
	}
	if !contains(WarehouseKinds, w.Kind) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.kind",
			Message:  fmt.Sprintf("unsupported warehouse kind %q (want one of %s)", w.Kind, strings.Join(WarehouseKinds, ", ")),
		})
	}
	if strings.TrimSpace(w.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.dsn",
			Message:  "warehouse dsn must not be empty when warehouse.kind is set",
		})
	}
	if w.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.batch_size",
			Message:  "batch_size must be >= 0",
		})
	}
	return issues
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
