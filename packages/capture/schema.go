package capture

import (
	"fmt"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/request/packages/request"
	"github.com/xeipuuv/gojsonschema"
)

// ValidateSchema checks the response body against the JSON schema at
// schemaPath.
func ValidateSchema(resp *request.Response, schemaPath string) error {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	return ValidateSchemaBytes(resp, schemaData)
}

// ValidateSchemaBytes is ValidateSchema with an in-memory schema
func ValidateSchemaBytes(resp *request.Response, schema []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(resp.Body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(errors, "; "))
}
