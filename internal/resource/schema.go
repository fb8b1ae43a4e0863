package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Mode selects the create or update variant of a resource schema.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

const (
	timePattern     = `^\d{2}:\d{2}(:\d{2})?$`
	dateTimePattern = `^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?$`
)

var printer = message.NewPrinter(language.English)

// Schemas holds one compiled JSON schema per resource and mode.
type Schemas struct {
	once     sync.Once
	err      error
	compiled map[string]*jsonschema.Schema
}

func NewSchemas() *Schemas {
	return &Schemas{}
}

func schemaURL(resource string, mode Mode) string {
	return "https://hrms.local/schemas/" + resource + "/" + string(mode) + ".json"
}

func (s *Schemas) compile() {
	s.once.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat()

		tabs := catalog.Tabs()
		for _, tab := range tabs {
			for _, mode := range []Mode{ModeCreate, ModeUpdate} {
				raw, err := json.Marshal(Document(tab, mode))
				if err != nil {
					s.err = fmt.Errorf("marshal %s schema: %w", tab.Resource, err)
					return
				}
				doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
				if err != nil {
					s.err = fmt.Errorf("unmarshal %s schema: %w", tab.Resource, err)
					return
				}
				if err := c.AddResource(schemaURL(tab.Resource, mode), doc); err != nil {
					s.err = fmt.Errorf("add %s schema: %w", tab.Resource, err)
					return
				}
			}
		}

		s.compiled = make(map[string]*jsonschema.Schema, len(tabs)*2)
		for _, tab := range tabs {
			for _, mode := range []Mode{ModeCreate, ModeUpdate} {
				url := schemaURL(tab.Resource, mode)
				sch, err := c.Compile(url)
				if err != nil {
					s.err = fmt.Errorf("compile %s schema: %w", tab.Resource, err)
					return
				}
				s.compiled[url] = sch
			}
		}
	})
}

// Document builds the JSON schema of a tab as a plain map. It is also
// embedded in the OpenAPI document.
func Document(tab catalog.Tab, mode Mode) map[string]any {
	props := map[string]any{}
	var required []string

	for _, key := range tab.Keys() {
		field, isField := tab.Field(key)
		switch {
		case isField:
			props[key] = fieldSchema(field)
			if field.Required && mode == ModeCreate {
				required = append(required, key)
			}
		case key == tab.PK:
			props[key] = map[string]any{"type": []string{"integer", "null"}}
		default:
			props[key] = map[string]any{}
		}
	}

	doc := map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                tab.Title,
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		sort.Strings(required)
		doc["required"] = required
	}
	return doc
}

func fieldSchema(f catalog.Field) map[string]any {
	s := map[string]any{}
	base := "string"

	switch f.Type {
	case catalog.FieldNumber:
		base = "integer"
		if f.Decimal {
			base = "number"
		}
	case catalog.FieldDate:
		s["format"] = "date"
	case catalog.FieldTime:
		s["pattern"] = timePattern
	case catalog.FieldDateTime:
		s["pattern"] = dateTimePattern
	case catalog.FieldEmail:
		s["format"] = "email"
	case catalog.FieldSelect:
		enum := make([]any, 0, len(f.Options)+1)
		for _, o := range f.Options {
			enum = append(enum, o)
		}
		if !f.Required {
			enum = append(enum, nil)
		}
		s["enum"] = enum
	}

	if f.Required {
		s["type"] = base
		if base == "string" {
			s["minLength"] = 1
		}
	} else {
		s["type"] = []string{base, "null"}
	}
	if f.Label != "" {
		s["title"] = f.Label
	}
	return s
}

// Validate checks body against the schema of the resource and returns the
// decoded payload. Numbers come back as int64 or float64.
func (s *Schemas) Validate(tab catalog.Tab, mode Mode, body []byte) (Record, error) {
	s.compile()
	if s.err != nil {
		return nil, internal.NewInternalError("failed to load payload schemas", s.err)
	}
	sch, ok := s.compiled[schemaURL(tab.Resource, mode)]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, internal.NewValidationError("Invalid request body", internal.ErrCodeInvalidBody).WithCause(err)
	}
	obj, ok := inst.(map[string]any)
	if !ok {
		return nil, internal.NewValidationError("Request body must be a JSON object", internal.ErrCodeInvalidBody)
	}
	blankToNull(tab, obj)

	if err := sch.Validate(obj); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, internal.NewInternalError("payload validation failed", err)
		}
		return nil, internal.NewValidationErrors(issues(tab, obj, ve)...)
	}

	return decodeNumbers(obj), nil
}

// blankToNull turns empty strings into null for fields whose column is not
// free text, so optional dates and numbers can be cleared.
func blankToNull(tab catalog.Tab, obj map[string]any) {
	for k, v := range obj {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) != "" {
			continue
		}
		f, ok := tab.Field(k)
		if !ok || f.Type == catalog.FieldText || f.Type == catalog.FieldPassword {
			continue
		}
		obj[k] = nil
	}
}

func decodeNumbers(obj map[string]any) Record {
	out := make(Record, len(obj))
	for k, v := range obj {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				out[k] = i
				continue
			}
			if f, err := n.Float64(); err == nil {
				out[k] = f
				continue
			}
		}
		out[k] = v
	}
	return out
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func label(tab catalog.Tab, key string) string {
	if f, ok := tab.Field(key); ok && f.Label != "" {
		return f.Label
	}
	if c, ok := tab.Column(key); ok && c.Label != "" {
		return c.Label
	}
	return key
}

func issues(tab catalog.Tab, obj map[string]any, ve *jsonschema.ValidationError) []internal.ValidationError {
	var out []internal.ValidationError
	seen := map[string]bool{}
	add := func(e internal.ValidationError) {
		k := e.Field + "|" + e.Message
		if !seen[k] {
			seen[k] = true
			out = append(out, e)
		}
	}

	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}

		field := strings.Join(e.InstanceLocation, "/")
		switch k := e.ErrorKind.(type) {
		case *kind.Required:
			for _, m := range k.Missing {
				add(internal.ValidationError{
					Field:   m,
					Message: label(tab, m) + " is required",
					Code:    string(internal.ErrCodeValidationFailed),
				})
			}
		case *kind.AdditionalProperties:
			for _, p := range k.Properties {
				add(internal.ValidationError{
					Field:   p,
					Message: "Unknown field: " + p,
					Code:    string(internal.ErrCodeUnknownField),
				})
			}
		default:
			if f, ok := tab.Field(field); ok && f.Required && blank(obj[field]) {
				add(internal.ValidationError{
					Field:   field,
					Message: label(tab, field) + " is required",
					Code:    string(internal.ErrCodeValidationFailed),
				})
				return
			}
			msg := e.Error()
			if e.ErrorKind != nil {
				msg = e.ErrorKind.LocalizedString(printer)
			}
			if field != "" {
				msg = label(tab, field) + ": " + msg
			}
			add(internal.ValidationError{
				Field:   field,
				Message: msg,
				Code:    string(internal.ErrCodeValidationFailed),
			})
		}
	}
	walk(ve)

	if len(out) == 0 {
		out = append(out, internal.ValidationError{Message: ve.Error(), Code: string(internal.ErrCodeValidationFailed)})
	}
	return out
}
