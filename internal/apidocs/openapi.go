// Package apidocs builds the OpenAPI document served under /api-docs.
package apidocs

import (
	"encoding/json"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/swaggo/swag"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Schema is a JSON schema fragment.
type Schema map[string]interface{}

// Param is a path or query parameter.
type Param struct {
	Name        string
	In          string
	Type        string
	Description string
	Required    bool
}

// Operation documents one route.
type Operation struct {
	Method      string
	Path        string
	Summary     string
	Tag         string
	Params      []Param
	Body        Schema
	Status      int
	Response    Schema
	ContentType string
}

// Resource describes a CRUD resource mounted under the API prefix.
type Resource struct {
	Tag      string
	Path     string
	Schema   Schema
	Required []string
	Filters  []string
	Search   bool
	Dropdown bool
}

// Spec accumulates operations and renders them as OpenAPI 3.0.3.
type Spec struct {
	Title       string
	Version     string
	Description string
	BasePath    string
	BearerAuth  bool

	mu         sync.Mutex
	operations []Operation
	schemas    map[string]Schema
}

func NewSpec(title, version, basePath string) *Spec {
	return &Spec{
		Title:    title,
		Version:  version,
		BasePath: basePath,
		schemas:  make(map[string]Schema),
	}
}

func (s *Spec) AddOperation(op Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op.Status == 0 {
		op.Status = http.StatusOK
	}
	s.operations = append(s.operations, op)
}

// AddResource documents the create, list, get, update, delete and dropdown routes.
func (s *Spec) AddResource(r Resource) {
	s.mu.Lock()
	s.schemas[schemaName(r.Tag)] = r.Schema
	s.mu.Unlock()

	ref := Schema{"$ref": "#/components/schemas/" + schemaName(r.Tag)}
	base := "/" + r.Path
	idParam := []Param{{Name: "id", In: "path", Type: "integer", Required: true}}

	createBody := copySchema(r.Schema)
	if len(r.Required) > 0 {
		createBody["required"] = r.Required
	}

	var listParams []Param
	if r.Search {
		listParams = append(listParams, Param{Name: "search", In: "query", Type: "string", Description: "Case-insensitive match on the searchable columns"})
	}
	for _, f := range r.Filters {
		listParams = append(listParams, Param{Name: f, In: "query", Type: "string", Description: "Exact match"})
	}
	listParams = append(listParams,
		Param{Name: "page", In: "query", Type: "integer"},
		Param{Name: "limit", In: "query", Type: "integer", Description: "Page size, at most 100"},
	)

	s.AddOperation(Operation{Method: http.MethodPost, Path: base, Tag: r.Tag, Summary: "Create " + r.Tag, Body: createBody, Status: http.StatusCreated, Response: ref})
	s.AddOperation(Operation{Method: http.MethodGet, Path: base, Tag: r.Tag, Summary: "List " + r.Tag, Params: listParams, Response: Schema{"type": "array", "items": ref}})
	s.AddOperation(Operation{Method: http.MethodGet, Path: base + "/{id}", Tag: r.Tag, Summary: "Get " + r.Tag + " by id", Params: idParam, Response: ref})
	s.AddOperation(Operation{Method: http.MethodPut, Path: base + "/{id}", Tag: r.Tag, Summary: "Update " + r.Tag, Params: idParam, Body: r.Schema, Response: ref})
	s.AddOperation(Operation{Method: http.MethodDelete, Path: base + "/{id}", Tag: r.Tag, Summary: "Delete " + r.Tag, Params: idParam, Status: http.StatusNoContent})
	if r.Dropdown {
		s.AddOperation(Operation{Method: http.MethodGet, Path: base + "/dropdown", Tag: r.Tag, Summary: r.Tag + " options", Response: Schema{
			"type":  "array",
			"items": Schema{"type": "object", "properties": Schema{"id": Schema{"type": "integer"}, "label": Schema{"type": "string"}}},
		}})
	}
}

// schemaName turns "material-types" into "MaterialTypes".
func schemaName(tag string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(tag, func(r rune) bool { return r == '-' || r == ' ' }) {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}

func copySchema(s Schema) Schema {
	out := make(Schema, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func envelope(data Schema) Schema {
	props := Schema{
		"statusCode": Schema{"type": "integer"},
		"message":    Schema{"type": "string"},
	}
	if data != nil {
		props["data"] = data
	}
	return Schema{"type": "object", "properties": props}
}

// JSON renders the document.
func (s *Spec) JSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make(map[string]map[string]interface{})
	for _, op := range s.operations {
		path := s.BasePath + op.Path
		if paths[path] == nil {
			paths[path] = make(map[string]interface{})
		}

		params := make([]Schema, 0, len(op.Params))
		for _, p := range op.Params {
			params = append(params, Schema{
				"name":        p.Name,
				"in":          p.In,
				"required":    p.Required || p.In == "path",
				"description": p.Description,
				"schema":      Schema{"type": p.Type},
			})
		}

		responses := Schema{
			"400": Schema{"description": "Validation error", "content": jsonContent(envelope(nil))},
			"404": Schema{"description": "Not found", "content": jsonContent(envelope(nil))},
			"500": Schema{"description": "Internal error", "content": jsonContent(envelope(nil))},
		}
		switch {
		case op.Status == http.StatusNoContent:
			responses["204"] = Schema{"description": "No content"}
		case op.ContentType != "":
			responses[strconv.Itoa(op.Status)] = Schema{"description": "OK", "content": Schema{op.ContentType: Schema{"schema": Schema{"type": "string", "format": "binary"}}}}
		default:
			responses[strconv.Itoa(op.Status)] = Schema{"description": "OK", "content": jsonContent(envelope(op.Response))}
		}

		operation := Schema{
			"tags":       []string{op.Tag},
			"summary":    op.Summary,
			"parameters": params,
			"responses":  responses,
		}
		if op.Body != nil {
			operation["requestBody"] = Schema{"required": true, "content": jsonContent(op.Body)}
		}
		paths[path][strings.ToLower(op.Method)] = operation
	}

	components := Schema{"schemas": s.schemas}
	doc := Schema{
		"openapi": "3.0.3",
		"info": Schema{
			"title":       s.Title,
			"version":     s.Version,
			"description": s.Description,
		},
		"servers":    []Schema{{"url": "/"}},
		"paths":      paths,
		"components": components,
		"tags":       s.tags(),
	}
	if s.BearerAuth {
		components["securitySchemes"] = Schema{"bearerAuth": Schema{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}}
		doc["security"] = []Schema{{"bearerAuth": []string{}}}
	}
	return json.Marshal(doc)
}

func (s *Spec) tags() []Schema {
	seen := make(map[string]bool)
	var names []string
	for _, op := range s.operations {
		if !seen[op.Tag] {
			seen[op.Tag] = true
			names = append(names, op.Tag)
		}
	}
	sort.Strings(names)
	out := make([]Schema, len(names))
	for i, n := range names {
		out[i] = Schema{"name": n}
	}
	return out
}

func jsonContent(schema Schema) Schema {
	return Schema{"application/json": Schema{"schema": schema}}
}

var (
	timeType      = reflect.TypeOf(time.Time{})
	decimalType   = reflect.TypeOf(decimal.Decimal{})
	deletedAtType = reflect.TypeOf(gorm.DeletedAt{})
	jsonType      = reflect.TypeOf(datatypes.JSON{})
)

// SchemaOf derives an object schema from the json tags of a struct value.
func SchemaOf(v interface{}) Schema {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return typeSchema(t)
}

func typeSchema(t reflect.Type) Schema {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case timeType, deletedAtType:
		return Schema{"type": "string", "format": "date-time"}
	case decimalType:
		return Schema{"type": "number"}
	case jsonType:
		return Schema{"type": "object"}
	}

	switch t.Kind() {
	case reflect.String:
		return Schema{"type": "string"}
	case reflect.Bool:
		return Schema{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Schema{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return Schema{"type": "number"}
	case reflect.Slice, reflect.Array:
		return Schema{"type": "array", "items": typeSchema(t.Elem())}
	case reflect.Struct:
		props := Schema{}
		collectFields(t, props)
		return Schema{"type": "object", "properties": props}
	}
	return Schema{}
}

func collectFields(t reflect.Type, props Schema) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, props)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		props[name] = typeSchema(f.Type)
	}
}

// holder satisfies swag.Swagger and always serves the latest document.
type holder struct {
	doc atomic.Value
}

func (h *holder) ReadDoc() string {
	if doc, ok := h.doc.Load().(string); ok {
		return doc
	}
	return "{}"
}

var (
	docs         = &holder{}
	registerOnce sync.Once
)

// Publish makes doc the document returned by swag.ReadDoc for the default instance.
func Publish(doc []byte) {
	docs.doc.Store(string(doc))
	registerOnce.Do(func() {
		swag.Register(swag.Name, docs)
	})
}
