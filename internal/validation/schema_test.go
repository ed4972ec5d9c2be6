package validation_test

import (
	"errors"
	"testing"

	"github.com/abolfazlirani/asar-backend-app/internal/validation"
)

const itemSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "count": {"type": "integer", "minimum": 1}
  }
}`

func TestSchemaValidateReportsIssues(t *testing.T) {
	schema := validation.MustCompileJSON("item.json", []byte(itemSchema))

	if err := schema.Validate(map[string]any{"name": "gold", "count": 2.0}); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	err := schema.Validate(map[string]any{"count": 0.0})
	if !errors.Is(err, validation.ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	issues := validation.Issues(err)
	if len(issues) == 0 {
		t.Fatal("expected at least one issue")
	}
}

func TestCompileRejectsBrokenSchema(t *testing.T) {
	_, err := validation.CompileJSON("broken.json", []byte(`{"type":`))
	if !errors.Is(err, validation.ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}
