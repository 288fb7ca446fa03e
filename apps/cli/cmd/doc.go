// Package cmd implements the request CLI commands using Cobra.
//
// Available commands:
//   - get, post, put, delete: Issue a single request and print the response
//   - curl: Issue a request described by a curl command line
//   - serve: Run the local echo server
//   - history: List or clear recorded requests
//   - init: Write a default .request.yaml
//   - version: Show version information
//
// Flag defaults can be supplied through REQUEST_* environment variables.
package cmd
