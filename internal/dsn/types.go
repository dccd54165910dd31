// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn detects, parses and normalizes the data source names accepted by
// the warehouse connector: PostgreSQL URLs, Snowflake DSNs and SQLite files.
package dsn

import (
	"fmt"

	"github.com/snowflakedb/gosnowflake"
)

// DBType represents the type of database
type DBType string

const (
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeSnowflake  DBType = "snowflake"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeUnknown    DBType = "unknown"
)

// DSNInfo contains parsed information from a DSN string
type DSNInfo struct {
	Type     DBType
	Host     string // host, Snowflake account, or SQLite file path
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string

	snowflake *gosnowflake.Config
}

// String returns the DSN as it was supplied.
func (d *DSNInfo) String() string {
	return d.Original
}

// Resolver is an interface for database-specific DSN resolution
type Resolver interface {
	// Parse parses a DSN string and returns normalized DSN info
	Parse(dsn string) (*DSNInfo, error)

	// Normalize converts DSN info to a properly formatted connection string
	Normalize(info *DSNInfo) (string, error)

	// Validate checks if the DSN is valid for the database type
	Validate(dsn string) error
}

// ParseError represents an error that occurred during DSN parsing
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
