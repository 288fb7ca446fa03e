// Package builtin provides the functions that can be called from command
// line arguments, e.g. -H "X-Request-Id: {{uuid()}}".
//
// Available functions:
//   - uuid(): random UUID v4
//   - now(): current time in RFC 3339
//   - timestamp(), timestampMs(): current Unix time
//   - date(layout): current UTC date, default layout 2006-01-02
//   - randomString(length): random alphanumeric string
//   - base64(value), basicAuth(user, pass)
//   - urlEncode(value): percent-encode a query value
//   - env(name): value of an environment variable
package builtin
