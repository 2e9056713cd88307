package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
)

func compiled() *jsonschema.Schema {
	schemaOnce.Do(func() {
		schema = jsonschema.MustCompileString("schema.json", schemaJSON)
	})
	return schema
}

// validateSchema checks raw YAML against the embedded schema. YAML is
// converted to its JSON form first so numbers compare the way the schema
// expects.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &Error{Message: err.Error()}
	}
	if doc == nil {
		return nil
	}

	js, err := json.Marshal(doc)
	if err != nil {
		return &Error{Message: "config must be a mapping with string keys: " + err.Error()}
	}
	var inst any
	if err := json.Unmarshal(js, &inst); err != nil {
		return &Error{Message: err.Error()}
	}

	err = compiled().Validate(inst)
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		leaf := deepest(ve)
		return &Error{Path: dotted(leaf.InstanceLocation), Message: leaf.Message}
	}
	return err
}

// deepest follows the first cause down to the most specific failure.
func deepest(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// dotted turns a JSON pointer such as /towns/0/treasury into
// towns[0].treasury.
func dotted(pointer string) string {
	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if seg == "" {
			continue
		}
		seg = strings.NewReplacer("~1", "/", "~0", "~").Replace(seg)
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}
