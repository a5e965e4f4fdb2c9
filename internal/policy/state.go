package policy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// State is a crawler state file: the full list of entries for one source.
type State struct {
	Entries []Entry `json:"entries"`
}

// stateSchema guards the shape a batch run depends on. Malformed state is a
// configuration error, the one class that aborts a run outright.
const stateSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["entries"],
  "properties": {
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "serial": {"type": ["integer", "null"]},
          "remark": {"type": "string"},
          "documents": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "url": {"type": "string"},
                "type": {"type": "string"},
                "title": {"type": "string"},
                "local_path": {"type": "string"},
                "preferred": {"type": "boolean"},
                "downloaded": {"type": "boolean"}
              }
            }
          },
          "entry": {"type": "object"}
        }
      }
    }
  }
}`

var compiledStateSchema = jsonschema.MustCompileString("state.schema.json", stateSchema)

// LoadState reads and validates a crawler state file.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	return ParseState(data)
}

// ParseState validates raw state JSON against the schema and decodes it.
func ParseState(data []byte) (*State, error) {
	var doc any
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode state json: %w", err)
	}
	if err := compiledStateSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate state json: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state entries: %w", err)
	}
	return &state, nil
}
