package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds one validator per Schema.Name.
var compiled sync.Map // map[string]*jsonschema.Schema

// validateResponse checks a structured reply against schema. A nil schema
// accepts anything; failures are *ErrInvalidResponse carrying the reply.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	invalid := func(format string, err error) error {
		return &ErrInvalidResponse{Schema: schema.Name, Content: raw, Err: fmt.Errorf(format, err)}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid("decode JSON: %w", err)
	}
	v, err := compileSchema(schema)
	if err != nil {
		return invalid("schema: %w", err)
	}
	if err := v.Validate(doc); err != nil {
		return invalid("%w", err)
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(schema.Name); ok {
		return v.(*jsonschema.Schema), nil
	}

	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", schema.Name, err)
	}

	url := "farefit://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add %s: %w", schema.Name, err)
	}
	v, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", schema.Name, err)
	}

	actual, _ := compiled.LoadOrStore(schema.Name, v)
	return actual.(*jsonschema.Schema), nil
}
