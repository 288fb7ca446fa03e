// Package bench repeats a request and summarizes the outcomes.
//
// Each repetition ends a fresh builder from a Factory, since a builder can be
// ended only once. Requests may be paced with a rate limit and spread over a
// fixed number of workers. Latencies are recorded in an HDR histogram.
//
// Usage:
//
//	summary, err := bench.Run(ctx, bench.Config{Requests: 100, Concurrency: 4, Rate: 50},
//		func() *request.Request {
//			return request.New().Get("http://localhost:3000/get")
//		})
package bench
