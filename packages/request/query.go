package request

import (
	"net/url"
	"sort"
	"strings"
)

// queryString renders the query parameters in key order. Parameters with an
// empty value are written as a bare key.
func (r *Request) queryString() string {
	if len(r.query) == 0 {
		return ""
	}

	keys := make([]string, 0, len(r.query))
	for k := range r.query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}

		sb.WriteString(k)
		if v := r.query[k]; v != "" {
			sb.WriteByte('=')
			sb.WriteString(Escape(v))
		}
	}
	return sb.String()
}

// Escape percent-encodes every byte outside the RFC 3986 unreserved set.
// Spaces become %20, not '+'.
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
