package jobs

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fedtech/jobtracker/constants"
)

// SnapshotJSONSchema describes the persisted collection document.
func SnapshotJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}
	job := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":          map[string]any{"type": "string", "minLength": 1},
			"title":       str,
			"company":     str,
			"location":    str,
			"salary":      str,
			"status":      map[string]any{"type": "string", "enum": constants.AsStringSlice()},
			"dateApplied": map[string]any{"type": "string", "pattern": `^(\d{4}-\d{2}-\d{2})?$`},
			"notes":       str,
			"logo":        str,
		},
		"required":             []string{"id", "title", "company", "status", "dateApplied"},
		"additionalProperties": false,
	}
	return map[string]any{
		"type":  "array",
		"items": job,
	}
}

func compileSnapshotSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(SnapshotJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("jobs.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("jobs.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validateSnapshot(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("snapshot does not match schema: %w", err)
	}
	return nil
}
