// Package curl turns curl command lines into request builders.
package curl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/abdul-hamid-achik/request/packages/request"
)

// Parsed represents a parsed curl command.
type Parsed struct {
	Method          string
	URL             string
	Headers         map[string]string // lower-cased names
	Body            string
	User            string
	Password        string
	UserAgent       string
	Insecure        bool
	FollowRedirects bool
	// GetData moves -d data into the query string (curl -G).
	GetData bool

	explicitMethod bool
	data           []string
}

// Parse parses a curl command string. The leading "curl" is optional and
// backslash line continuations are accepted.
func Parse(curlCmd string) (*Parsed, error) {
	parsed := &Parsed{
		Method:  "GET",
		Headers: make(map[string]string),
	}

	curlCmd = strings.ReplaceAll(curlCmd, "\\\r\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")

	tokens := tokenize(strings.TrimSpace(curlCmd))
	if len(tokens) > 0 && tokens[0] == "curl" {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no URL specified")
	}

	i := 0
	value := func(flag string) (string, error) {
		if i+1 >= len(tokens) {
			return "", fmt.Errorf("missing value for %s", flag)
		}
		i++
		return tokens[i], nil
	}

	for ; i < len(tokens); i++ {
		token := tokens[i]

		switch token {
		case "-X", "--request":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			parsed.Method = strings.ToUpper(v)
			parsed.explicitMethod = true

		case "-H", "--header":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			if key, val, ok := strings.Cut(v, ":"); ok {
				parsed.Headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(val)
			}

		case "-d", "--data", "--data-raw", "--data-binary", "--data-ascii":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			parsed.data = append(parsed.data, v)

		case "--data-urlencode":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			if name, content, ok := strings.Cut(v, "="); ok {
				parsed.data = append(parsed.data, name+"="+request.Escape(content))
			} else {
				parsed.data = append(parsed.data, request.Escape(v))
			}

		case "--json":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			parsed.data = append(parsed.data, v)
			for _, name := range []string{"content-type", "accept"} {
				if _, ok := parsed.Headers[name]; !ok {
					parsed.Headers[name] = "application/json"
				}
			}

		case "-u", "--user":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			parsed.User, parsed.Password, _ = strings.Cut(v, ":")

		case "-A", "--user-agent":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			parsed.UserAgent = v

		case "-e", "--referer":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			parsed.Headers["referer"] = v

		case "-b", "--cookie":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			parsed.Headers["cookie"] = v

		case "-F", "--form":
			return nil, fmt.Errorf("multipart form data (%s) is not supported", token)

		case "-I", "--head":
			parsed.Method = "HEAD"
			parsed.explicitMethod = true

		case "-G", "--get":
			parsed.GetData = true

		case "-k", "--insecure":
			parsed.Insecure = true

		case "-L", "--location":
			parsed.FollowRedirects = true

		case "--url":
			v, err := value(token)
			if err != nil {
				return nil, err
			}
			parsed.URL = v

		default:
			if strings.HasPrefix(token, "-") {
				// Skip unknown flags with potential values
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i++
				}
				continue
			}
			if parsed.URL == "" {
				parsed.URL = token
			}
		}
	}

	if parsed.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}

	if len(parsed.data) > 0 {
		data := strings.Join(parsed.data, "&")
		if parsed.GetData {
			sep := "?"
			if strings.Contains(parsed.URL, "?") {
				sep = "&"
			}
			parsed.URL += sep + data
		} else {
			parsed.Body = data
			if !parsed.explicitMethod {
				parsed.Method = "POST"
			}
			if _, ok := parsed.Headers["content-type"]; !ok {
				parsed.Headers["content-type"] = "application/x-www-form-urlencoded"
			}
		}
	}

	return parsed, nil
}

// Build translates the parsed command into a request builder. Query
// parameters in the URL are moved onto the builder.
func (p *Parsed) Build(opts ...request.Option) (*request.Request, error) {
	base, query, _ := strings.Cut(p.URL, "?")

	req := request.New(opts...)
	switch strings.ToUpper(p.Method) {
	case "GET":
		req.Get(base)
	case "POST":
		req.Post(base)
	case "PUT":
		req.Put(base)
	case "DELETE":
		req.Delete(base)
	default:
		return nil, fmt.Errorf("unsupported method %s (GET, POST, PUT and DELETE are supported)", p.Method)
	}

	if err := addQuery(req, query); err != nil {
		return nil, err
	}

	for k, v := range p.Headers {
		req.Set(k, v)
	}
	if p.UserAgent != "" {
		req.UserAgent(p.UserAgent)
	}
	if p.User != "" {
		req.Auth(p.User, p.Password)
	}
	if p.Body != "" {
		req.SendString(p.Body)
	}
	req.FollowRedirects(p.FollowRedirects)

	return req, nil
}

func addQuery(req *request.Request, raw string) error {
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, hasValue := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(key)
		if err != nil {
			return fmt.Errorf("invalid query parameter %q: %w", pair, err)
		}
		if !hasValue || value == "" {
			req.Flag(key)
			continue
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			return fmt.Errorf("invalid query parameter %q: %w", pair, err)
		}
		req.Query(key, value)
	}
	return nil
}

// tokenize splits a command into shell-like words, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false
	quoted := false

	flush := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		quoted = false
	}

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
				quoted = true
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
				quoted = true
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t', '\n', '\r':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else {
				flush()
			}
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

// isURL checks if a string looks like a URL.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "{{")
}
