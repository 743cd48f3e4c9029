// Package db embeds the PostgreSQL schema for the key-value and catalog
// tables.
package db

import _ "embed"

// Schema is idempotent DDL for every table.
//
//go:embed migrations/001_schema.sql
var Schema string
