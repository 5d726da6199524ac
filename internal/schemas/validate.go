// Package schemas validates collaborator payloads and persisted partitions
// against the JSON Schemas embedded in this package.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Name identifies an embedded schema.
type Name string

const (
	Questions  Name = "questions"
	Evaluation Name = "evaluation"
	Profile    Name = "profile"
	Session    Name = "session"
	Archive    Name = "archive"
)

// compiled caches parsed schemas by Name.
var compiled sync.Map

// ValidationError lists every violation found in one document.
type ValidationError struct {
	Schema Name
	Errors []FieldError
}

// FieldError is one violation, located by its dotted field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:\n", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError means the schema itself could not be read or compiled.
type SchemaLoadError struct {
	Schema Name
	Cause  error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Schema, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error { return e.Cause }

// MalformedDocumentError means the document is not JSON at all.
type MalformedDocumentError struct {
	Schema Name
	Cause  error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed %s document: %v", e.Schema, e.Cause)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Cause }

// Load returns the source of an embedded schema.
func Load(name Name) (string, error) {
	data, err := schemaFiles.ReadFile(string(name) + ".schema.json")
	if err != nil {
		return "", &SchemaLoadError{Schema: name, Cause: err}
	}
	return string(data), nil
}

func compile(name Name) (*gojsonschema.Schema, error) {
	if s, ok := compiled.Load(name); ok {
		return s.(*gojsonschema.Schema), nil
	}
	source, err := Load(name)
	if err != nil {
		return nil, err
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Cause: err}
	}
	actual, _ := compiled.LoadOrStore(name, schema)
	return actual.(*gojsonschema.Schema), nil
}

// Validate checks raw JSON against the named schema. It returns a
// *ValidationError for schema violations and a *MalformedDocumentError when
// data does not parse.
func Validate(name Name, data []byte) error {
	schema, err := compile(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &MalformedDocumentError{Schema: name, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// ValidateValue marshals v and validates it against the named schema.
func ValidateValue(name Name, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return Validate(name, data)
}
