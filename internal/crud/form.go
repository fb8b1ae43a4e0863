package crud

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/internal/catalog"
)

// Form is an open create or edit dialog. Editing is nil for create.
type Form struct {
	Tab     catalog.Tab
	Editing apiclient.Record
	Values  apiclient.Record
	Open    bool
}

// OpenCreate returns a form with every field present and empty.
func (e *Engine) OpenCreate() *Form {
	values := apiclient.Record{}
	for _, f := range e.tab.Fields {
		values[f.Key] = ""
	}
	return &Form{Tab: e.tab, Values: values, Open: true}
}

// OpenEdit returns a form filled from rec.
func (e *Engine) OpenEdit(rec apiclient.Record) *Form {
	values := apiclient.Record{}
	for _, f := range e.tab.Fields {
		v, ok := rec[f.Key]
		if !ok || v == nil {
			v = ""
		}
		values[f.Key] = v
	}
	return &Form{Tab: e.tab, Editing: rec, Values: values, Open: true}
}

// Set parses raw for the field's type. Blank input stays "".
func (f *Form) Set(key, raw string) error {
	field, ok := f.Tab.Field(key)
	if !ok {
		return fmt.Errorf("unknown field %q for %s", key, f.Tab.Resource)
	}
	v, err := parseInput(field, raw)
	if err != nil {
		return err
	}
	f.Values[key] = v
	return nil
}

func parseInput(field catalog.Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || field.Type != catalog.FieldNumber {
		if field.Type == catalog.FieldSelect && raw != "" && !contains(field.Options, raw) {
			return nil, fmt.Errorf("%s must be one of %s", field.Label, strings.Join(field.Options, ", "))
		}
		return raw, nil
	}
	if !field.Decimal {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", field.Label)
	}
	return n, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Missing lists the labels of required fields that are still blank.
func (f *Form) Missing() []string {
	var out []string
	for _, field := range f.Tab.Fields {
		if field.Required && catalog.Text(f.Values[field.Key]) == "" {
			out = append(out, field.Label)
		}
	}
	return out
}

// Payload is the form's key/value pairs as sent to the server.
func (f *Form) Payload() apiclient.Record {
	out := make(apiclient.Record, len(f.Values))
	for k, v := range f.Values {
		out[k] = v
	}
	return out
}
