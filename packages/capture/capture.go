package capture

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/request/packages/request"
	"github.com/tidwall/gjson"
)

// Source names where a value is taken from
type Source string

const (
	SourceBody     Source = "body"
	SourceHeader   Source = "header"
	SourceStatus   Source = "status"
	SourceDuration Source = "duration"
)

type Extractor struct {
	response *request.Response
	bodyJSON gjson.Result
	isJSON   bool
}

func NewExtractor(resp *request.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
		e.isJSON = true
	}
	return e
}

// ParseExpression splits "body.user.id" or "header.content-type" into a
// source and a path. A bare path is taken from the body.
func ParseExpression(expr string) (Source, string) {
	expr = strings.TrimSpace(expr)
	for _, src := range []Source{SourceBody, SourceHeader, SourceStatus, SourceDuration} {
		if expr == string(src) {
			return src, ""
		}
		if rest, ok := strings.CutPrefix(expr, string(src)+"."); ok {
			return src, rest
		}
	}
	return SourceBody, expr
}

// Get evaluates an expression accepted by ParseExpression
func (e *Extractor) Get(expr string) (any, bool) {
	source, path := ParseExpression(expr)
	return e.Extract(source, path)
}

func (e *Extractor) Extract(source Source, path string) (any, bool) {
	switch source {
	case SourceBody:
		return e.extractFromBody(path)
	case SourceHeader:
		return e.extractFromHeader(path)
	case SourceStatus:
		return e.response.Status, true
	case SourceDuration:
		return e.response.Duration.Milliseconds(), true
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.isJSON {
		if path == "" {
			return e.response.String(), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	value, ok := e.response.Headers[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return value, true
}

// Format renders an extracted value for display. Strings print bare, other
// JSON values print as compact JSON.
func Format(resp *request.Response, expr string) (string, bool) {
	source, path := ParseExpression(expr)
	if source == SourceBody && path != "" && gjson.ValidBytes(resp.Body) {
		result := gjson.GetBytes(resp.Body, path)
		if !result.Exists() {
			return "", false
		}
		if result.Type == gjson.String {
			return result.String(), true
		}
		return result.Raw, true
	}

	value, ok := NewExtractor(resp).Extract(source, path)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", value), true
}
