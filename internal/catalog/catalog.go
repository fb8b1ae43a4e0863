// Package catalog holds the static page and tab definitions that drive
// every CRUD screen, the REST resources and the database schema.
package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldDateTime FieldType = "datetime"
	FieldEmail    FieldType = "email"
	FieldSelect   FieldType = "select"
	FieldPassword FieldType = "password"
)

// Column is one table column shown in a list view.
type Column struct {
	Key    string             `json:"key" yaml:"key"`
	Label  string             `json:"label" yaml:"label"`
	Badge  bool               `json:"badge,omitempty" yaml:"badge,omitempty"`
	Render func(v any) string `json:"-" yaml:"-"`
}

// Format renders v for display using the column's renderer when set.
func (c Column) Format(v any) string {
	if c.Render != nil {
		return c.Render(v)
	}
	return Text(v)
}

// Field is one input of a create or edit form.
type Field struct {
	Key         string    `json:"key" yaml:"key"`
	Label       string    `json:"label" yaml:"label"`
	Type        FieldType `json:"type" yaml:"type"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"`
	// Decimal marks number fields stored as floating point.
	Decimal bool `json:"decimal,omitempty" yaml:"decimal,omitempty"`
	// Ref names the table this field points at.
	Ref     string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Tab is a single CRUD screen bound to one REST resource.
type Tab struct {
	Title    string `json:"title" yaml:"title"`
	Resource string `json:"resource" yaml:"resource"`
	Table    string `json:"table" yaml:"table"`
	PK       string `json:"pk" yaml:"pk"`
	// NaturalKey means the primary key is supplied by the client.
	NaturalKey bool     `json:"natural_key,omitempty" yaml:"natural_key,omitempty"`
	Columns    []Column `json:"columns" yaml:"columns"`
	Fields     []Field  `json:"fields" yaml:"fields"`
}

type Page struct {
	Slug        string `json:"slug" yaml:"slug"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Tabs        []Tab  `json:"tabs" yaml:"tabs"`
}

func (t Tab) Field(key string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func (t Tab) Column(key string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Keys lists every known attribute of the resource: the primary key,
// then form fields, then display-only columns.
func (t Tab) Keys() []string {
	seen := map[string]bool{t.PK: true}
	keys := []string{t.PK}
	for _, f := range t.Fields {
		if !seen[f.Key] {
			seen[f.Key] = true
			keys = append(keys, f.Key)
		}
	}
	for _, c := range t.Columns {
		if !seen[c.Key] {
			seen[c.Key] = true
			keys = append(keys, c.Key)
		}
	}
	return keys
}

func (t Tab) HasKey(key string) bool {
	for _, k := range t.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// ExportFilename is the CSV file name used when exporting this tab.
func (t Tab) ExportFilename() string {
	return strings.ReplaceAll(t.Resource, "/", "_") + "_export.csv"
}

// Text stringifies a record value the way list views show it. Nil becomes
// the empty string and integral floats drop their fraction.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		if math.Trunc(val) == val && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return Text(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// StatusBadge renders a status value, using a dash when it is empty.
func StatusBadge(v any) string {
	s := Text(v)
	if s == "" {
		return "—"
	}
	return s
}
