package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Method is one of the HTTP methods the builder can issue.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// Request accumulates everything needed for one HTTP exchange. It is not safe
// for concurrent use and may be ended only once.
type Request struct {
	method          Method
	url             string
	headers         map[string]string
	query           map[string]string
	body            []byte
	userAgent       string
	username        string
	password        string
	followRedirects bool
	transport       Transport
	ended           bool
}

type Option func(*Request)

// WithTransport replaces the transport used by End.
func WithTransport(t Transport) Option {
	return func(r *Request) {
		r.transport = t
	}
}

func New(opts ...Option) *Request {
	r := &Request{
		headers:         make(map[string]string),
		query:           make(map[string]string),
		followRedirects: true,
		transport:       DefaultTransport,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Request) Get(url string) *Request {
	return r.target(MethodGet, url)
}

func (r *Request) Post(url string) *Request {
	return r.target(MethodPost, url)
}

func (r *Request) Put(url string) *Request {
	return r.target(MethodPut, url)
}

func (r *Request) Delete(url string) *Request {
	return r.target(MethodDelete, url)
}

func (r *Request) target(m Method, url string) *Request {
	r.method = m
	r.url = url
	return r
}

// UserAgent sets the User-Agent sent with the request. An empty value leaves
// the transport default in place.
func (r *Request) UserAgent(ua string) *Request {
	r.userAgent = ua
	return r
}

// FollowRedirects controls whether 3xx responses are followed. Defaults to true.
func (r *Request) FollowRedirects(follow bool) *Request {
	r.followRedirects = follow
	return r
}

// Set stores a header. Field names are case-insensitive; the last Set for a
// given name wins.
func (r *Request) Set(field, value string) *Request {
	r.headers[strings.ToLower(field)] = value
	return r
}

func (r *Request) Type(value string) *Request {
	return r.Set("content-type", value)
}

func (r *Request) Accept(value string) *Request {
	return r.Set("accept", value)
}

// Auth sets HTTP Basic credentials. Both user and pass must be non-empty for
// the Authorization header to be sent.
func (r *Request) Auth(user, pass string) *Request {
	r.username = user
	r.password = pass
	return r
}

// Query adds field=value to the query string.
func (r *Request) Query(field, value string) *Request {
	r.query[field] = value
	return r
}

// Flag adds a bare query parameter with no value, e.g. "?verbose". It is
// the single-argument form of Query.
func (r *Request) Flag(field string) *Request {
	r.query[field] = ""
	return r
}

// Send sets the request body. It is transmitted for POST and PUT.
func (r *Request) Send(data []byte) *Request {
	r.body = data
	return r
}

func (r *Request) SendString(data string) *Request {
	return r.Send([]byte(data))
}

// Headers returns a copy of the stored headers keyed by lower-cased name.
func (r *Request) Headers() map[string]string {
	headers := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		headers[k] = v
	}
	return headers
}

func (r *Request) Method() Method {
	return r.method
}

// URL returns the target URL followed by the serialized query string.
func (r *Request) URL() string {
	return r.url + r.queryString()
}

func (r *Request) hasAuth() bool {
	return r.username != "" && r.password != ""
}

// End performs the request and returns its response. It blocks until the
// exchange completes and never returns nil.
func (r *Request) End() *Response {
	return r.EndContext(context.Background())
}

// EndContext is End with a context passed through to the transport.
func (r *Request) EndContext(ctx context.Context) *Response {
	res := newResponse()

	call, err := r.prepare(res)
	if err != nil {
		res.Err = err
		return res
	}

	start := time.Now()
	status, err := r.transport.Perform(ctx, call)
	res.Duration = time.Since(start)

	if errors.Is(err, ErrInit) {
		res.Err = err
		return res
	}

	res.Status = status
	res.Err = err
	res.OK = status == http.StatusOK && err == nil
	return res
}

// prepare consumes the builder and translates it into a transport call whose
// callbacks write into res.
func (r *Request) prepare(res *Response) (*Call, error) {
	if r.ended {
		return nil, fmt.Errorf("%w: request already ended", ErrInit)
	}
	r.ended = true

	if r.method == "" || r.url == "" {
		return nil, fmt.Errorf("%w: method and url must be set", ErrInit)
	}
	if r.transport == nil {
		return nil, fmt.Errorf("%w: no transport", ErrInit)
	}

	call := &Call{
		Method:          r.method,
		URL:             r.URL(),
		Header:          r.headerList(),
		UserAgent:       r.userAgent,
		FollowRedirects: r.followRedirects,
		OnHeader:        res.writeHeader,
		OnBody:          res.writeBody,
	}

	if r.hasAuth() {
		call.Username = r.username
		call.Password = r.password
	}

	switch r.method {
	case MethodGet, MethodDelete:
	case MethodPost:
		call.Body = bytes.NewReader(r.body)
		call.ContentLength = int64(len(r.body))
	case MethodPut:
		call.Body = NewCursor(r.body)
		call.ContentLength = int64(len(r.body))
	default:
		return nil, fmt.Errorf("%w: unsupported method %q", ErrInit, r.method)
	}

	return call, nil
}

func (r *Request) headerList() http.Header {
	keys := make([]string, 0, len(r.headers))
	for k := range r.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	header := make(http.Header, len(keys))
	for _, k := range keys {
		header.Set(k, r.headers[k])
	}
	return header
}
