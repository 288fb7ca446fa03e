package request

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Response is the outcome of Request.End. Status is -1 when the request was
// never attempted and 0 when the transport failed before a status arrived.
// OK is true only for a completed exchange with status 200.
type Response struct {
	OK       bool
	Status   int
	Body     []byte
	Headers  map[string]string
	Err      error
	Duration time.Duration
}

func newResponse() *Response {
	return &Response{
		Status:  -1,
		Headers: make(map[string]string),
	}
}

func (r *Response) writeBody(chunk []byte) {
	r.Body = append(r.Body, chunk...)
}

func (r *Response) writeHeader(line string) {
	if key, value, ok := ParseHeaderLine(line); ok {
		r.Headers[key] = value
	}
}

func (r *Response) String() string {
	return string(r.Body)
}

// Header looks up a response header by name, ignoring case.
func (r *Response) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

func (r *Response) ContentType() string {
	return r.Header("content-type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "json")
}

// JSON evaluates a gjson path against the body.
func (r *Response) JSON(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// ParseHeaderLine splits a raw "Name: value" header line on its first colon.
// The name is trimmed and lower-cased, the value trimmed. Lines without a
// colon, such as the status line, report ok=false.
func ParseHeaderLine(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value), true
}
