// Package validate checks inbound prioritization payloads against the
// TestRecord schema before anything is decoded into model types.
package validate

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/autotestx/prioritizer/internal/model"
	"github.com/kaptinlin/jsonschema"
)

//go:embed testrecord.schema.json
var recordSchemaJSON []byte

// recordSchema validates a whole record. objectSchema and fields are compiled
// from the same document and evaluated one at a time to locate the fields at
// fault once a record failed.
var (
	recordSchema *jsonschema.Schema
	objectSchema *jsonschema.Schema
	fields       []fieldSchema
)

type fieldSchema struct {
	name string
	// typ is the json schema type of the field, e.g. "string".
	typ      string
	required *jsonschema.Schema
	value    *jsonschema.Schema
}

type schemaDocument struct {
	Type       string                     `json:"type"`
	Required   []string                   `json:"required"`
	Properties map[string]json.RawMessage `json:"properties"`
}

func init() {
	recordSchema = mustCompile(recordSchemaJSON)

	var doc schemaDocument
	if err := json.Unmarshal(recordSchemaJSON, &doc); err != nil {
		panic(fmt.Sprintf("unable to parse test record schema: %v", err))
	}

	objectSchema = mustCompile([]byte(fmt.Sprintf(`{"type":%q}`, doc.Type)))

	for _, name := range doc.Required {
		property, ok := doc.Properties[name]
		if !ok {
			panic(fmt.Sprintf("test record schema requires undeclared property %q", name))
		}

		var p struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(property, &p); err != nil {
			panic(fmt.Sprintf("unable to parse schema of property %q: %v", name, err))
		}

		required, err := json.Marshal(map[string][]string{"required": {name}})
		if err != nil {
			panic(err)
		}

		fields = append(fields, fieldSchema{
			name:     name,
			typ:      p.Type,
			required: mustCompile(required),
			value:    mustCompile(property),
		})
	}
}

func mustCompile(schema []byte) *jsonschema.Schema {
	s, err := jsonschema.NewCompiler().Compile(schema)
	if err != nil {
		panic(fmt.Sprintf("unable to compile test record schema %s: %v", schema, err))
	}

	return s
}

// Records validates data as a JSON array of test records and decodes it.
// If any record is invalid a model.ValidationError listing every failure
// is returned and no records are decoded.
func Records(data []byte) ([]model.TestRecord, error) {
	var raw []json.RawMessage

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, model.ValidationError{Details: []model.FieldError{payloadError(err)}}
	}

	if raw == nil {
		return nil, model.ValidationError{Details: []model.FieldError{
			{Loc: []any{"body"}, Msg: "field required", Type: "missing"},
		}}
	}

	records := make([]model.TestRecord, len(raw))
	details := []model.FieldError{}

	for i, elem := range raw {
		r, errs := record(i, elem)

		records[i] = r
		details = append(details, errs...)
	}

	if len(details) > 0 {
		return nil, model.ValidationError{Details: details}
	}

	return records, nil
}

// record validates and decodes a single array element.
func record(i int, elem json.RawMessage) (model.TestRecord, []model.FieldError) {
	result := recordSchema.ValidateJSON(elem)

	if !objectSchema.ValidateJSON(elem).IsValid() {
		return model.TestRecord{}, []model.FieldError{{
			Loc:  []any{"body", i},
			Msg:  "input should be a valid object",
			Type: "object_type",
		}}
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(elem, &values); err != nil {
		return model.TestRecord{}, []model.FieldError{decodeError(i, err)}
	}

	if !result.IsValid() {
		if details := fieldErrors(i, elem, values); len(details) > 0 {
			return model.TestRecord{}, details
		}
	}

	r, err := decode(values)
	if err != nil {
		return model.TestRecord{}, []model.FieldError{decodeError(i, err)}
	}

	if !result.IsValid() {
		return model.TestRecord{}, keywordErrors(i, result)
	}

	return r, nil
}

// fieldErrors evaluates the schema of every field separately.
func fieldErrors(i int, elem json.RawMessage, values map[string]json.RawMessage) []model.FieldError {
	details := []model.FieldError{}

	for _, f := range fields {
		loc := []any{"body", i, f.name}

		if !f.required.ValidateJSON(elem).IsValid() {
			details = append(details, model.FieldError{Loc: loc, Msg: "field required", Type: "missing"})
		} else if !f.value.ValidateJSON(values[f.name]).IsValid() {
			details = append(details, f.typeError(loc))
		}
	}

	return details
}

func (f fieldSchema) typeError(loc []any) model.FieldError {
	switch f.typ {
	case "string":
		return model.FieldError{Loc: loc, Msg: "input should be a valid string", Type: "string_type"}
	case "number":
		return model.FieldError{Loc: loc, Msg: "input should be a valid number", Type: "float_type"}
	default:
		return model.FieldError{Loc: loc, Msg: "input should be of type " + f.typ, Type: f.typ + "_type"}
	}
}

func keywordErrors(i int, result *jsonschema.EvaluationResult) []model.FieldError {
	keywords := make([]string, 0, len(result.Errors))
	for k := range result.Errors {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)

	details := make([]model.FieldError, 0, len(keywords))
	for _, k := range keywords {
		details = append(details, model.FieldError{
			Loc:  []any{"body", i},
			Msg:  fmt.Sprint(result.Errors[k]),
			Type: k,
		})
	}

	return details
}

// decode only looks at the exact field names of the schema, encoding/json
// would otherwise also match keys that differ in case.
func decode(values map[string]json.RawMessage) (model.TestRecord, error) {
	exact := make(map[string]json.RawMessage, len(fields))
	for _, f := range fields {
		if v, ok := values[f.name]; ok {
			exact[f.name] = v
		}
	}

	b, err := json.Marshal(exact)
	if err != nil {
		return model.TestRecord{}, err
	}

	var r model.TestRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return model.TestRecord{}, err
	}

	return r, nil
}

func payloadError(err error) model.FieldError {
	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) {
		return model.FieldError{
			Loc:  []any{"body"},
			Msg:  "input should be a valid array",
			Type: "list_type",
		}
	}

	return model.FieldError{
		Loc:  []any{"body"},
		Msg:  fmt.Sprintf("JSON decode error: %v", err),
		Type: "json_invalid",
	}
}

func decodeError(i int, err error) model.FieldError {
	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return model.FieldError{
			Loc:  []any{"body", i, typeErr.Field},
			Msg:  fmt.Sprintf("input %s is out of range", typeErr.Value),
			Type: "float_parsing",
		}
	}

	return model.FieldError{
		Loc:  []any{"body", i},
		Msg:  err.Error(),
		Type: "value_error",
	}
}
