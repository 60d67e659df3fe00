package schemagen

import (
	"reflect"
	"strconv"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects a JSON schema of `configObject`, which is expected
// to be a struct with `json` and `jsonschema` tags. Definitions are inlined
// rather than referenced, and `jsonschema_extras` flags are coerced from the
// strings that struct tags produce into booleans and integers.
func GenerateSchema(title string, configObject interface{}) *jsonschema.Schema {
	var reflector = jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	var schema = reflector.ReflectFromType(reflect.TypeOf(configObject))
	schema.AdditionalProperties = nil // Unset means additional properties are permitted on the root object.
	schema.Definitions = nil          // Since no references are used, these definitions are just noise.
	schema.Title = title
	walkSchema(
		schema,
		fixSchemaFlagBools("advanced", "multiline"),
		fixSchemaOrderingStrings,
	)

	return schema
}

// walkSchema invokes visit on every property of the root schema, and then traverses each of these
// sub-schemas recursively, including the item schemas of arrays. The visit function should modify
// the provided schema in-place to accomplish the desired transformation.
func walkSchema(root *jsonschema.Schema, visits ...func(t *jsonschema.Schema)) {
	if root.Items != nil {
		for _, visit := range visits {
			visit(root.Items)
		}
		walkSchema(root.Items, visits...)
	}
	if root.Properties != nil {
		for pair := root.Properties.Oldest(); pair != nil; pair = pair.Next() {
			for _, visit := range visits {
				visit(pair.Value)
			}

			walkSchema(pair.Value, visits...)
		}
	}
}

func fixSchemaFlagBools(flagKeys ...string) func(t *jsonschema.Schema) {
	return func(t *jsonschema.Schema) {
		for key, val := range t.Extras {
			for _, flag := range flagKeys {
				if key != flag {
					continue
				} else if val == "true" {
					t.Extras[key] = true
				} else if val == "false" {
					t.Extras[key] = false
				}
			}
		}
	}
}

func fixSchemaOrderingStrings(t *jsonschema.Schema) {
	for key, val := range t.Extras {
		if key == "order" {
			if str, ok := val.(string); ok {
				converted, err := strconv.Atoi(str)
				if err != nil {
					// Don't try to convert strings that don't look like integers.
					continue
				}
				t.Extras[key] = converted
			}
		}
	}
}
