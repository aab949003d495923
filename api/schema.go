package api

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/pelletier/go-toml"
)

// Schema describes how the tokens of an accepted line map to named columns.
// It is shared by the record and SQLite consumers.
type Schema struct {
	// Table is the destination table name for loaders.
	Table string `toml:"table" json:"table" hcl:"table,optional"`
	// Columns names each token position, in order.
	Columns []Column `toml:"columns" json:"columns" hcl:"column,block"`
}

// Column is one token position.
type Column struct {
	Name string `toml:"name" json:"name" hcl:"name,label"`
	// Type is a SQLite column type affinity (TEXT, INTEGER, REAL). Defaults to TEXT.
	Type string `toml:"type,omitempty" json:"type,omitempty" hcl:"type,optional"`
	// Key marks the column as part of the primary key.
	Key bool `toml:"key,omitempty" json:"key,omitempty" hcl:"key,optional"`
}

// Record is one accepted line keyed by column name.
type Record map[string]string

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether name is safe to splice into SQL as a table or
// column name.
func ValidIdent(name string) bool {
	return identRE.MatchString(name)
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks that the schema can be used to build SQL statements.
func (s *Schema) Validate() error {
	if s.Table != "" && !ValidIdent(s.Table) {
		return fmt.Errorf("invalid table name %q", s.Table)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	seen := make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		if !ValidIdent(c.Name) {
			return fmt.Errorf("column %d: invalid name %q", i+1, c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("column %d: duplicate name %q", i+1, c.Name)
		}
		seen[c.Name] = true
		switch c.Type {
		case "", "TEXT", "INTEGER", "REAL":
		default:
			return fmt.Errorf("column %s: unsupported type %q", c.Name, c.Type)
		}
	}
	return nil
}

// SchemaFromNames builds a TEXT-only schema from column names, as read from
// a header line.
func SchemaFromNames(table string, names []string) *Schema {
	s := &Schema{Table: table, Columns: make([]Column, len(names))}
	for i, n := range names {
		s.Columns[i] = Column{Name: n}
	}
	return s
}

// ParseSchema decodes and validates a TOML schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseHCLSchema decodes and validates an HCL schema document, where each
// column is a labelled block:
//
//	table = "npanxx"
//	column "npa" { key = true }
//	column "lata" { type = "INTEGER" }
//
// filename is used in diagnostics and must end in .hcl.
func ParseHCLSchema(filename string, data []byte) (*Schema, error) {
	var s Schema
	if err := hclsimple.Decode(filename, data, nil, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchema reads a schema file. Files ending in .hcl are HCL, anything
// else is TOML.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	parse := ParseSchema
	if filepath.Ext(path) == ".hcl" {
		parse = func(b []byte) (*Schema, error) { return ParseHCLSchema(filepath.Base(path), b) }
	}
	s, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}
