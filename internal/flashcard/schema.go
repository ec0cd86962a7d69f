package flashcard

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const basicCardsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"front": {"type": "string", "minLength": 1},
			"back": {"type": "string", "minLength": 1}
		},
		"required": ["front", "back"],
		"additionalProperties": false
	}
}`

const clozeCardsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"text": {"type": "string", "minLength": 1},
			"back_extra": {"type": "string"}
		},
		"required": ["text"],
		"additionalProperties": false
	}
}`

var (
	basicSchema = jsonschema.MustCompileString("basic_cards.json", basicCardsSchema)
	clozeSchema = jsonschema.MustCompileString("cloze_cards.json", clozeCardsSchema)
)

// validateCards checks raw JSON against the compiled card schema.
func validateCards(schema *jsonschema.Schema, raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode card JSON for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("card output does not match schema: %w", err)
	}
	return nil
}
