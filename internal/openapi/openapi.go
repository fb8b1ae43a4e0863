// Package openapi builds the OpenAPI 3 document of the REST API from the
// catalog, so every resource is described without a hand maintained file.
package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/catalog"
)

const bearerAuth = "bearerAuth"

// Build returns the full API document.
func Build() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "HRMS Pro API",
			Description: "Generic CRUD over the HR schema plus session authentication.",
			Version:     internal.Version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerAuth: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}

	doc.Components.Schemas["Error"] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("code", openapi3.NewIntegerSchema()).
		WithProperty("message", openapi3.NewStringSchema()))

	addOperational(doc)
	addAuth(doc)

	for _, page := range catalog.Pages() {
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: page.Title, Description: page.Description})
		for _, tab := range page.Tabs {
			addResource(doc, page.Title, tab)
		}
	}
	return doc
}

// ref points at a registered component schema. The target value travels with
// the reference.
func ref(doc *openapi3.T, name string) *openapi3.SchemaRef {
	target, ok := doc.Components.Schemas[name]
	if !ok {
		panic("openapi: schema " + name + " referenced before it is registered")
	}
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name, Value: target.Value}
}

func response(description string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
	r := openapi3.NewResponse().WithDescription(description)
	if schema != nil {
		r = r.WithJSONSchemaRef(schema)
	}
	return &openapi3.ResponseRef{Value: r}
}

func errorResponse(doc *openapi3.T, description string) *openapi3.ResponseRef {
	return response(description, ref(doc, "Error"))
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schema)}
}

func secured() *openapi3.SecurityRequirements {
	return openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate(bearerAuth))
}

func addOperational(doc *openapi3.T) {
	get := func(path, id, summary string, body *openapi3.Schema) {
		doc.Paths.Set(path, &openapi3.PathItem{Get: &openapi3.Operation{
			OperationID: id,
			Summary:     summary,
			Tags:        []string{"System"},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, response("OK", openapi3.NewSchemaRef("", body))),
			),
		}})
	}
	doc.Tags = append(doc.Tags, &openapi3.Tag{Name: "System"})

	get("/api/ping", "ping", "Liveness probe", openapi3.NewObjectSchema().WithProperty("status", openapi3.NewStringSchema()))
	get("/api/health", "health", "Database readiness", openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema().WithEnum("healthy", "unhealthy")))
	get("/api/version", "version", "API version", openapi3.NewObjectSchema().WithProperty("version", openapi3.NewStringSchema()))

	doc.Components.Schemas["DashboardStats"] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("total_employees", openapi3.NewIntegerSchema()).
		WithProperty("active_employees", openapi3.NewIntegerSchema()).
		WithProperty("present_today", openapi3.NewIntegerSchema()).
		WithProperty("on_leave_today", openapi3.NewIntegerSchema()))
	doc.Paths.Set("/api/dashboard/stats", &openapi3.PathItem{Get: &openapi3.Operation{
		OperationID: "dashboardStats",
		Summary:     "Headcount, presence and leave for today",
		Tags:        []string{"System"},
		Security:    secured(),
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, response("Dashboard figures", ref(doc, "DashboardStats"))),
			openapi3.WithStatus(http.StatusUnauthorized, errorResponse(doc, "Missing or invalid token")),
		),
	}})
}

func addAuth(doc *openapi3.T) {
	doc.Tags = append(doc.Tags, &openapi3.Tag{Name: "Auth"})
	s := doc.Components.Schemas

	s["User"] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("full_name", openapi3.NewStringSchema()).
		WithProperty("created_at", openapi3.NewDateTimeSchema()))
	s["Session"] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("access_token", openapi3.NewStringSchema()).
		WithProperty("refresh_token", openapi3.NewStringSchema()).
		WithProperty("expires_at", openapi3.NewInt64Schema()))
	s["AuthResponse"] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithPropertyRef("user", ref(doc, "User")).
		WithPropertyRef("session", ref(doc, "Session")))

	login := openapi3.NewObjectSchema().
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("password", openapi3.NewStringSchema())
	login.Required = []string{"email", "password"}
	s["LoginRequest"] = openapi3.NewSchemaRef("", login)

	signup := openapi3.NewObjectSchema().
		WithProperty("full_name", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
		WithProperty("password", openapi3.NewStringSchema().WithMinLength(6))
	signup.Required = []string{"email", "password"}
	s["SignupRequest"] = openapi3.NewSchemaRef("", signup)

	refresh := openapi3.NewObjectSchema().WithProperty("refresh_token", openapi3.NewStringSchema())
	refresh.Required = []string{"refresh_token"}
	s["RefreshRequest"] = openapi3.NewSchemaRef("", refresh)

	post := func(path, id, summary, body string, ok int, failures map[int]string) {
		opts := []openapi3.NewResponsesOption{openapi3.WithStatus(ok, response("Signed in", ref(doc, "AuthResponse")))}
		for status, desc := range failures {
			opts = append(opts, openapi3.WithStatus(status, errorResponse(doc, desc)))
		}
		doc.Paths.Set(path, &openapi3.PathItem{Post: &openapi3.Operation{
			OperationID: id,
			Summary:     summary,
			Tags:        []string{"Auth"},
			RequestBody: jsonBody(ref(doc, body)),
			Responses:   openapi3.NewResponses(opts...),
		}})
	}
	post("/api/auth/login", "login", "Sign in with email and password", "LoginRequest", http.StatusOK,
		map[int]string{http.StatusUnauthorized: "Invalid email or password", http.StatusTooManyRequests: "Rate limited"})
	post("/api/auth/signup", "signup", "Create an account", "SignupRequest", http.StatusCreated,
		map[int]string{http.StatusBadRequest: "Invalid payload", http.StatusConflict: "Email already registered", http.StatusTooManyRequests: "Rate limited"})
	post("/api/auth/refresh", "refresh", "Exchange a refresh token", "RefreshRequest", http.StatusOK,
		map[int]string{http.StatusUnauthorized: "Invalid or expired token"})
}

func schemaName(tab catalog.Tab, suffix string) string {
	return strings.ReplaceAll(tab.Resource, "/", ".") + suffix
}

func operationID(verb string, tab catalog.Tab) string {
	return verb + "_" + strings.NewReplacer("/", "_", "-", "_").Replace(tab.Resource)
}

func addResource(doc *openapi3.T, tag string, tab catalog.Tab) {
	recordName := schemaName(tab, ".record")
	createName := schemaName(tab, ".create")
	updateName := schemaName(tab, ".update")
	doc.Components.Schemas[recordName] = openapi3.NewSchemaRef("", recordSchema(tab))
	doc.Components.Schemas[createName] = openapi3.NewSchemaRef("", inputSchema(tab, true))
	doc.Components.Schemas[updateName] = openapi3.NewSchemaRef("", inputSchema(tab, false))

	var filters openapi3.Parameters
	table := tab.Storage()
	for _, key := range tab.Keys() {
		col, _ := table.Column(key)
		filters = append(filters, &openapi3.ParameterRef{Value: openapi3.NewQueryParameter(key).
			WithDescription("Equality filter").
			WithSchema(columnSchema(col.Type, col.Decimal))})
	}
	idParam := openapi3.Parameters{&openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").
		WithSchema(openapi3.NewInt64Schema())}}

	list := openapi3.NewArraySchema()
	list.Items = ref(doc, recordName)

	base := "/api/" + tab.Resource
	doc.Paths.Set(base, &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: operationID("list", tab),
			Summary:     "List " + tab.Title,
			Tags:        []string{tag},
			Parameters:  filters,
			Security:    secured(),
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, response("Rows ordered by "+tab.PK, openapi3.NewSchemaRef("", list))),
				openapi3.WithStatus(http.StatusBadRequest, errorResponse(doc, "Invalid filter")),
			),
		},
		Post: &openapi3.Operation{
			OperationID: operationID("create", tab),
			Summary:     "Create " + tab.Title,
			Tags:        []string{tag},
			RequestBody: jsonBody(ref(doc, createName)),
			Security:    secured(),
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusCreated, response("Created", ref(doc, recordName))),
				openapi3.WithStatus(http.StatusBadRequest, errorResponse(doc, "Validation failed")),
				openapi3.WithStatus(http.StatusConflict, errorResponse(doc, "Conflicting or dangling reference")),
			),
		},
	})
	doc.Paths.Set(base+"/{id}", &openapi3.PathItem{
		Parameters: idParam,
		Get: &openapi3.Operation{
			OperationID: operationID("get", tab),
			Summary:     "Get one " + tab.Title + " row",
			Tags:        []string{tag},
			Security:    secured(),
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, response("Row", ref(doc, recordName))),
				openapi3.WithStatus(http.StatusNotFound, errorResponse(doc, "Not found")),
			),
		},
		Put: &openapi3.Operation{
			OperationID: operationID("update", tab),
			Summary:     "Update " + tab.Title + " fields",
			Tags:        []string{tag},
			RequestBody: jsonBody(ref(doc, updateName)),
			Security:    secured(),
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, response("Updated", ref(doc, recordName))),
				openapi3.WithStatus(http.StatusBadRequest, errorResponse(doc, "Validation failed")),
				openapi3.WithStatus(http.StatusNotFound, errorResponse(doc, "Not found")),
			),
		},
		Delete: &openapi3.Operation{
			OperationID: operationID("delete", tab),
			Summary:     "Delete " + tab.Title + " row",
			Tags:        []string{tag},
			Security:    secured(),
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, response("Deleted", openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
					WithProperty("message", openapi3.NewStringSchema()).
					WithProperty("deleted", openapi3.NewInt64Schema())))),
				openapi3.WithStatus(http.StatusNotFound, errorResponse(doc, "Not found")),
				openapi3.WithStatus(http.StatusConflict, errorResponse(doc, "Still referenced")),
			),
		},
	})
}

func columnSchema(t catalog.FieldType, decimal bool) *openapi3.Schema {
	switch t {
	case catalog.FieldNumber:
		if decimal {
			return openapi3.NewFloat64Schema()
		}
		return openapi3.NewInt64Schema()
	case catalog.FieldDate:
		return openapi3.NewStringSchema().WithFormat("date")
	case catalog.FieldEmail:
		return openapi3.NewStringSchema().WithFormat("email")
	default:
		return openapi3.NewStringSchema()
	}
}

func recordSchema(tab catalog.Tab) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Title = tab.Title
	table := tab.Storage()
	for _, key := range tab.Keys() {
		col, _ := table.Column(key)
		s.WithProperty(key, columnSchema(col.Type, col.Decimal).WithNullable())
	}
	return s
}

func inputSchema(tab catalog.Tab, create bool) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	closed := false
	s.AdditionalProperties = openapi3.AdditionalProperties{Has: &closed}
	if _, ok := tab.Field(tab.PK); !ok {
		s.WithProperty(tab.PK, openapi3.NewInt64Schema().WithNullable())
	}

	for _, f := range tab.Fields {
		p := columnSchema(f.Type, f.Decimal)
		p.Title = f.Label
		switch f.Type {
		case catalog.FieldSelect:
			enum := make([]any, len(f.Options))
			for i, o := range f.Options {
				enum[i] = o
			}
			p.WithEnum(enum...)
		case catalog.FieldTime:
			p.WithPattern(`^\d{2}:\d{2}(:\d{2})?$`)
		case catalog.FieldPassword:
			p.WithFormat("password")
		}
		if f.Placeholder != "" {
			p.Description = "e.g. " + f.Placeholder
		}
		if f.Default != "" {
			p.Default = f.Default
		}
		if !f.Required {
			p.WithNullable()
		} else if create {
			s.Required = append(s.Required, f.Key)
		}
		s.WithProperty(f.Key, p)
	}
	return s
}

var (
	docOnce sync.Once
	docJSON []byte
	docErr  error
)

// Handler serves the document as JSON. The document is validated once.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docOnce.Do(func() {
			doc := Build()
			if docErr = doc.Validate(context.Background()); docErr != nil {
				return
			}
			docJSON, docErr = json.Marshal(doc)
		})
		if docErr != nil {
			http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(docJSON)))
		_, _ = w.Write(docJSON)
	}
}
