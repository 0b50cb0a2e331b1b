package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

var compiledSchemas sync.Map // schema name -> *jsonschema.Schema

// finishContent turns a provider's raw text into Response content. With a
// schema the text must be a JSON object that validates; models sometimes
// wrap it in a markdown fence, which is stripped first. Without a schema
// the text is returned as a JSON string.
func finishContent(schema *Schema, text, stopReason string) (json.RawMessage, error) {
	if schema == nil {
		b, err := json.Marshal(text)
		if err != nil {
			return nil, fmt.Errorf("encode text response: %w", err)
		}
		return b, nil
	}

	raw := json.RawMessage(stripFence(text))
	if err := validateResponse(schema, raw); err != nil {
		if stopReason == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: raw}
		}
		return nil, err
	}
	return raw, nil
}

func stripFence(text string) []byte {
	b := bytes.TrimSpace([]byte(text))
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = b[3:]
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	}
	b = bytes.TrimSpace(b)
	return bytes.TrimSpace(bytes.TrimSuffix(b, []byte("```")))
}

// validateResponse checks raw against schema, returning *ErrInvalidResponse
// on any failure.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	invalid := func(err error) error { return &ErrInvalidResponse{Content: raw, Err: err} }

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid(fmt.Errorf("invalid JSON: %w", err))
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return invalid(err)
	}
	if err := compiled.Validate(doc); err != nil {
		return invalid(fmt.Errorf("schema %s: %w", schema.Name, err))
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if c, ok := compiledSchemas.Load(schema.Name); ok {
		return c.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so Go slices and ints become the plain
	// []any and float64 values the compiler expects.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", schema.Name, err)
	}

	url := "mem://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", schema.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}
	compiledSchemas.Store(schema.Name, compiled)
	return compiled, nil
}

// schemaWithout returns a deep copy of def with the given keywords removed
// at every level. Some providers reject keywords that the local validator
// still enforces.
func schemaWithout(def map[string]any, keywords ...string) map[string]any {
	drop := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		drop[k] = true
	}
	var walk func(v any) any
	walk = func(v any) any {
		switch t := v.(type) {
		case map[string]any:
			out := make(map[string]any, len(t))
			for k, vv := range t {
				if drop[k] {
					continue
				}
				out[k] = walk(vv)
			}
			return out
		case []any:
			out := make([]any, len(t))
			for i, vv := range t {
				out[i] = walk(vv)
			}
			return out
		}
		return v
	}
	return walk(def).(map[string]any)
}

// stringList reads a []any or []string schema value as strings.
func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
