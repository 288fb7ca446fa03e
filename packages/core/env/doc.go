// Package env handles variables for request command line arguments.
//
// It provides functionality for:
//   - Loading .env files
//   - Variable interpolation using {{variable}} syntax
//   - OS environment lookups using {{$NAME}}
//   - Built-in function evaluation such as {{uuid()}}
package env
