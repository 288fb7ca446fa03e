// Package request provides a small fluent builder for issuing a single HTTP
// request and collecting its response.
//
// A Request is configured with chained setters and consumed by End:
//
//	res := request.New().
//		Get("https://api.example.com/videos").
//		Query("page", "2").
//		Set("X-ApiKey", "secret").
//		Accept("application/json").
//		End()
//	if !res.OK {
//		// inspect res.Status and res.Err
//	}
//
// Query adds a field=value parameter and Flag adds a bare parameter with no
// value; both end up in one query string serialized in sorted key order:
//
//	request.New().Get(u).Query("page", "2").Flag("verbose") // u?page=2&verbose
//
// Network I/O, TLS and redirects are handled by a Transport. The default
// transport is built on net/http.
package request
