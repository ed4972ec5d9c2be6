package pages

import (
	_ "embed"

	"github.com/abolfazlirani/asar-backend-app/internal/validation"
)

//go:embed layout.schema.json
var layoutSchemaJSON []byte

// layoutSchema constrains admin-authored layout documents. Rows stay open so
// the app can introduce new row types without a backend release.
var layoutSchema = validation.MustCompileJSON("asar://schemas/page-layout.json", layoutSchemaJSON)
