package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// timestampLayout is the on-disk timestamp form. History viewers parse
// this exact format, so it is part of the journal's compatibility
// contract: UTC with microsecond precision and a literal Z suffix.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// Session is one journaled record: a set of drawn emoji prompts paired
// with the user's notes. Sessions are immutable once written.
type Session struct {
	ID        string   `json:"session_id"`
	Timestamp string   `json:"timestamp"`
	Emojis    []string `json:"emojis"`
	Notes     string   `json:"notes"`
}

// Time parses the session's creation timestamp.
func (s Session) Time() (time.Time, error) {
	return time.Parse(timestampLayout, s.Timestamp)
}

// document is the full persisted state of the journal. The whole
// document is the unit of atomic read and write.
type document struct {
	Sessions []Session `json:"sessions"`
}

// documentSchema describes the expected journal shape. Bytes that fail
// this validation are treated as corrupt and routed through the backup
// path rather than surfaced to callers.
const documentSchema = `{
  "type": "object",
  "required": ["sessions"],
  "properties": {
    "sessions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["session_id", "timestamp", "emojis", "notes"],
        "properties": {
          "session_id": {"type": "string", "minLength": 1},
          "timestamp": {"type": "string"},
          "emojis": {"type": "array", "items": {"type": "string"}},
          "notes": {"type": "string"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// parseDocument validates raw journal bytes against the document schema
// and unmarshals them. Any failure means the journal is corrupt.
func parseDocument(raw []byte) (*document, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("journal is not valid JSON: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("journal does not match expected structure: %s", result.Errors()[0])
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal journal: %w", err)
	}
	return &doc, nil
}
