// Package query builds parameterized PostgreSQL SELECT statements from a
// projection of view names onto table columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column expressions
// for one aliased table.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	list    []string
}

// NewProjectionMap creates a ProjectionMap for schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project selects alias.column under viewName.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	return p.add(p.alias+"."+column, viewName, true)
}

// Expression maps viewName to a SQL expression over the table alias without
// selecting it. The expression is written with "%[1]s" for the alias, for
// example "%[1]s.crop_metadata->>'crop_name'".
func (p *ProjectionMap) Expression(expr, viewName string) *ProjectionMap {
	return p.add(fmt.Sprintf(expr, p.alias), viewName, false)
}

// Computed selects a SQL expression over the table alias under viewName.
// The expression uses "%[1]s" for the alias, as with Expression.
func (p *ProjectionMap) Computed(expr, viewName string) *ProjectionMap {
	return p.add(fmt.Sprintf(expr, p.alias), viewName, true)
}

func (p *ProjectionMap) add(expr, viewName string, selected bool) *ProjectionMap {
	p.columns[viewName] = expr
	if selected {
		p.list = append(p.list, expr)
	}
	return p
}

// From returns the FROM target, "schema.table alias".
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the expression for viewName, or viewName itself when unmapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Known reports whether viewName is mapped.
func (p *ProjectionMap) Known(viewName string) bool {
	_, ok := p.columns[viewName]
	return ok
}

// Columns returns the selected columns joined for a SELECT list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.list, ", ")
}
