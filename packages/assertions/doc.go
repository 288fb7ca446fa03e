// Package assertions checks responses against one-line expectations.
//
// An expectation reads "<subject> <operator> [expected]":
//   - status == 200
//   - header.content-type contains application/json
//   - body.user.id exists
//   - body.items length 3
//   - body.role in ["admin","user"]
//   - duration < 500
//
// Subjects are those understood by the capture package. The expected value
// is decoded as JSON when it parses as JSON and taken as a string otherwise.
package assertions
