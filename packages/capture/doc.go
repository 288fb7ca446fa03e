// Package capture extracts values from responses and checks bodies against
// JSON schemas.
//
// It supports capturing values from:
//   - Response body (gjson paths, e.g. "data.items.0.id")
//   - Response headers
//   - Response status code and duration
package capture
