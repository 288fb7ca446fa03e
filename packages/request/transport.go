package request

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"sort"
	"time"
)

const (
	// DefaultTimeout bounds a whole exchange, body included
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

var (
	// ErrInit marks a call that could not be started. Responses carrying it
	// keep Status -1.
	ErrInit = errors.New("request: transport init failed")
	// ErrAborted marks a transfer that stopped after the status was received.
	ErrAborted = errors.New("request: transfer aborted")
)

// Call is a single exchange handed to a Transport. OnHeader receives the
// status line and then one "Name: value" line per header value. OnBody
// receives the body in chunks, in order.
type Call struct {
	Method          Method
	URL             string
	Header          http.Header
	Username        string
	Password        string
	UserAgent       string
	FollowRedirects bool
	Body            io.Reader
	ContentLength   int64
	OnHeader        func(line string)
	OnBody          func(chunk []byte)
}

// Transport performs a Call and reports the final status code. A non-nil
// error with status 0 means no response was received; a non-nil error with a
// status means the transfer broke off afterwards.
type Transport interface {
	Perform(ctx context.Context, call *Call) (int, error)
}

// DefaultTransport is used by requests created without WithTransport.
var DefaultTransport Transport = NewTransport()

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	transport    *http.Transport
	timeout      time.Duration
	maxRedirects int
	validateSSL  bool
	proxyURL     string
}

type TransportOption func(*HTTPTransport)

func NewTransport(opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		timeout:      DefaultTimeout,
		maxRedirects: DefaultMaxRedirects,
		validateSSL:  true,
	}

	for _, opt := range opts {
		opt(t)
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		MaxIdleConns:    DefaultMaxIdleConns,
		IdleConnTimeout: DefaultIdleConnTimeout,
	}

	if !t.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if t.proxyURL != "" {
		proxyURL, err := neturl.Parse(t.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	t.transport = transport
	return t
}

// WithTimeout bounds each exchange. Zero disables the limit.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		t.timeout = d
	}
}

func WithMaxRedirects(max int) TransportOption {
	return func(t *HTTPTransport) {
		t.maxRedirects = max
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) TransportOption {
	return func(t *HTTPTransport) {
		t.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) TransportOption {
	return func(t *HTTPTransport) {
		t.proxyURL = proxyURL
	}
}

func (t *HTTPTransport) Perform(ctx context.Context, call *Call) (int, error) {
	req, err := http.NewRequestWithContext(ctx, string(call.Method), call.URL, call.Body)
	if err != nil {
		return 0, err
	}

	if call.Body != nil {
		if call.ContentLength > 0 {
			req.ContentLength = call.ContentLength
		} else {
			req.Body = http.NoBody
			req.ContentLength = 0
		}
	}

	for k, vs := range call.Header {
		req.Header[k] = vs
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}

	if call.UserAgent != "" {
		req.Header.Set("User-Agent", call.UserAgent)
	}

	if call.Username != "" && call.Password != "" {
		req.SetBasicAuth(call.Username, call.Password)
	}

	client := &http.Client{
		Transport:     t.transport,
		Timeout:       t.timeout,
		CheckRedirect: t.redirectPolicy(call.FollowRedirects),
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if call.OnHeader != nil {
		emitHeaders(resp, call.OnHeader)
	}

	var sink io.Writer = io.Discard
	if call.OnBody != nil {
		sink = chunkWriter(call.OnBody)
	}

	if _, err := io.Copy(sink, resp.Body); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", ErrAborted, err)
	}

	return resp.StatusCode, nil
}

func (t *HTTPTransport) redirectPolicy(follow bool) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if !follow {
			return http.ErrUseLastResponse
		}
		if len(via) >= t.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// emitHeaders replays a parsed response as raw header lines, status line
// first, names in sorted order.
func emitHeaders(resp *http.Response, fn func(string)) {
	fn(fmt.Sprintf("%s %s\r\n", resp.Proto, resp.Status))

	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range resp.Header[k] {
			fn(k + ": " + v + "\r\n")
		}
	}
	fn("\r\n")
}

type chunkWriter func([]byte)

func (w chunkWriter) Write(p []byte) (int, error) {
	w(p)
	return len(p), nil
}
