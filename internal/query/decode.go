package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
)

// Document is the JSON form of a query: {"filter": {...}, "sort": {...}}.
type Document struct {
	Filter FilterSpec `json:"filter"`
	Sort   *SortSpec  `json:"sort,omitempty"`
}

// Schema returns the JSON Schema every query document must satisfy.
func Schema() map[string]any {
	amount := map[string]any{
		"oneOf": []any{
			map[string]any{"type": "number", "minimum": 0},
			map[string]any{"type": "string", "pattern": `^\d+(\.\d+)?$`},
		},
	}
	date := map[string]any{"type": "string", "format": "date"}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"filter": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"keyword":   map[string]any{"type": "string", "maxLength": 200},
					"vendor":    map[string]any{"type": "string", "maxLength": 200},
					"category":  map[string]any{"type": "string", "enum": toAny(constants.AsStringSlice())},
					"dateFrom":  date,
					"dateTo":    date,
					"amountMin": amount,
					"amountMax": amount,
				},
			},
			"sort": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"field"},
				"properties": map[string]any{
					"field":     map[string]any{"type": "string", "enum": toAny(sortFields)},
					"direction": map[string]any{"type": "string", "enum": []any{string(Asc), string(Desc)}},
				},
			},
		},
	}
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(Schema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource("query.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("query.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Decode validates data against Schema and returns the filter and sort it describes.
// A missing sort yields DefaultSort; a sort without direction is ascending.
func Decode(data []byte) (FilterSpec, SortSpec, error) {
	s, err := compiledSchema()
	if err != nil {
		return FilterSpec{}, SortSpec{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return FilterSpec{}, SortSpec{}, common.NewAppError(common.CodeValidation, "query is not valid JSON", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	if err := s.Validate(raw); err != nil {
		return FilterSpec{}, SortSpec{}, common.NewAppError(common.CodeValidation, schemaMessage(err), common.ErrValidation)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return FilterSpec{}, SortSpec{}, common.NewAppError(common.CodeValidation, "query does not decode", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	if err := doc.Filter.Validate(); err != nil {
		return FilterSpec{}, SortSpec{}, err
	}

	sortSpec := DefaultSort
	if doc.Sort != nil {
		sortSpec, err = ParseSortSpec(string(doc.Sort.Field), string(doc.Sort.Direction))
		if err != nil {
			return FilterSpec{}, SortSpec{}, err
		}
	}
	return doc.Filter, sortSpec, nil
}

// schemaMessage flattens the leaf causes into one line.
func schemaMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return "query does not match schema: " + strings.Join(msgs, "; ")
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
