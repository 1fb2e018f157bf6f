package persist

import (
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// importSchema constrains import payloads just enough to fail closed on
// structurally hopeless input. Fields are optional so exports from older
// versions still import; unknown fields pass through untouched.
const importSchema = `{
  "type": "object",
  "properties": {
    "tasks": {
      "type": "array",
      "items": {"type": "object"}
    },
    "nextTaskId": {"type": "integer", "minimum": 1},
    "filters": {"type": "object"},
    "theme": {"type": "object"},
    "exportedAt": {"type": "string"},
    "version": {"type": "string"}
  }
}`

var compiledImportSchema = jsonschema.MustCompileString("import.schema.json", importSchema)

// parseImport decodes and schema-checks an import payload, returning the
// decoded object on success.
func parseImport(data []byte) (map[string]any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}

	if err := compiledImportSchema.Validate(value); err != nil {
		return nil, fmt.Errorf("validate import: %w", err)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("import is not a JSON object")
	}
	return obj, nil
}
