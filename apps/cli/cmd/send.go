package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abdul-hamid-achik/request/packages/assertions"
	"github.com/abdul-hamid-achik/request/packages/capture"
	"github.com/abdul-hamid-achik/request/packages/core/config"
	"github.com/abdul-hamid-achik/request/packages/core/env"
	"github.com/abdul-hamid-achik/request/packages/history"
	"github.com/abdul-hamid-achik/request/packages/request"
	"github.com/spf13/cobra"
)

// requestFlags are the per-command flags shaping the request
type requestFlags struct {
	headers     []string
	query       []string
	data        string
	dataFile    string
	user        string
	userAgent   string
	contentType string
	accept      string
	noFollow    bool
	watch       bool
}

// responseFlags are the per-command flags for inspecting the response
type responseFlags struct {
	selectExpr string
	schema     string
	expect     []string
}

func (f *responseFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.selectExpr, "select", "s", "", "Print only this value (body path, header.<name>, status or duration)")
	cmd.Flags().StringVar(&f.schema, "schema", "", "Validate the JSON body against this JSON Schema file")
	cmd.Flags().StringArrayVarP(&f.expect, "expect", "e", nil, `Check the response, e.g. "status == 200" or "body.id exists" (repeatable)`)
}

func init() {
	for _, m := range []request.Method{request.MethodGet, request.MethodPost, request.MethodPut, request.MethodDelete} {
		rootCmd.AddCommand(newMethodCmd(m))
	}
}

func newMethodCmd(method request.Method) *cobra.Command {
	rf := &requestFlags{}
	of := &responseFlags{}
	name := strings.ToLower(string(method))

	cmd := &cobra.Command{
		Use:   name + " <url>",
		Short: fmt.Sprintf("Send a %s request", method),
		Long: fmt.Sprintf(`Send a %[1]s request and print the response.

Values in the URL, headers, query and body may reference variables with
{{name}}, environment variables with {{$NAME}} and functions like {{uuid()}}.

Examples:
  request %[2]s http://localhost:3000/%[2]s
  request %[2]s http://localhost:3000/%[2]s -H "Accept: application/json" -q page=2 -q debug
  request %[2]s http://localhost:3000/%[2]s -u user:pass --select headers.Authorization
  request %[2]s http://localhost:3000/%[2]s --expect "status == 200" --expect "body.headers.Host exists"`, method, name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return methodCommand(cmd, method, args[0], rf, of)
		},
	}

	rf.bind(cmd)
	cmd.Flags().BoolVarP(&rf.watch, "watch", "w", false, "Send again whenever the data, env or config file changes")
	of.bind(cmd)

	return cmd
}

func (rf *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&rf.headers, "header", "H", nil, `Request header as "Name: value" (repeatable)`)
	cmd.Flags().StringArrayVarP(&rf.query, "query", "q", nil, "Query parameter as key=value, or key alone for a flag (repeatable)")
	cmd.Flags().StringVarP(&rf.data, "data", "d", "", "Request body")
	cmd.Flags().StringVar(&rf.dataFile, "data-file", "", "Read the request body from a file")
	cmd.Flags().StringVarP(&rf.user, "user", "u", "", "Basic auth credentials as user:pass")
	cmd.Flags().StringVarP(&rf.userAgent, "user-agent", "A", "", "User agent (default from config)")
	cmd.Flags().StringVar(&rf.contentType, "type", "", "Content-Type header")
	cmd.Flags().StringVar(&rf.accept, "accept", "", "Accept header")
	cmd.Flags().BoolVar(&rf.noFollow, "no-follow", false, "Do not follow redirects")
	cmd.MarkFlagsMutuallyExclusive("data", "data-file")
}

func methodCommand(cmd *cobra.Command, method request.Method, rawURL string, rf *requestFlags, of *responseFlags) error {
	// settings and variables are reloaded on every send so --watch picks up edits
	once := func() error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		resolver, err := newResolver(cmd)
		if err != nil {
			return err
		}

		req, err := buildRequest(cfg, newTransport(cfg), resolver, method, rawURL, rf)
		if err != nil {
			return err
		}

		return send(cmd, cfg, req, of)
	}

	if !rf.watch {
		return once()
	}

	files := watchedFiles(rf.dataFile, envFileFlag, configFlag)
	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("--watch needs --data-file, --env-file or --config"))
	}

	if err := once(); err != nil && !reported(err) {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
	return watchFiles(ctx, files, func(name string) {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\n", name)
		if err := once(); err != nil && !reported(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	})
}

// buildRequest applies config defaults first, then the flags
func buildRequest(cfg *config.Config, transport request.Transport, resolver *env.Resolver, method request.Method, rawURL string, rf *requestFlags) (*request.Request, error) {
	req := request.New(request.WithTransport(transport))

	target := resolver.Resolve(rawURL)
	switch method {
	case request.MethodGet:
		req.Get(target)
	case request.MethodPost:
		req.Post(target)
	case request.MethodPut:
		req.Put(target)
	case request.MethodDelete:
		req.Delete(target)
	}

	for k, v := range resolver.ResolveAll(cfg.Headers) {
		req.Set(k, v)
	}

	for _, h := range rf.headers {
		key, value, ok := request.ParseHeaderLine(resolver.Resolve(h))
		if !ok || key == "" {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid header %q (use \"Name: value\")", h))
		}
		req.Set(key, value)
	}

	for _, q := range rf.query {
		key, value, hasValue := strings.Cut(resolver.Resolve(q), "=")
		if key == "" {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid query parameter %q", q))
		}
		if hasValue {
			req.Query(key, value)
		} else {
			req.Flag(key)
		}
	}

	if rf.contentType != "" {
		req.Type(rf.contentType)
	}
	if rf.accept != "" {
		req.Accept(rf.accept)
	}

	userAgent := cfg.UserAgent
	if rf.userAgent != "" {
		userAgent = rf.userAgent
	}
	req.UserAgent(userAgent)

	if rf.user != "" {
		user, pass, ok := strings.Cut(resolver.Resolve(rf.user), ":")
		if !ok {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid credentials: use user:pass"))
		}
		req.Auth(user, pass)
	}

	req.FollowRedirects(cfg.GetFollowRedirects() && !rf.noFollow)

	switch {
	case rf.dataFile != "":
		data, err := os.ReadFile(rf.dataFile)
		if err != nil {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("cannot read data file: %w", err))
		}
		req.Send(data)
	case rf.data != "":
		req.SendString(resolver.Resolve(rf.data))
	}

	return req, nil
}

// send ends req, reports the response and records it. The returned error
// carries the exit code.
func send(cmd *cobra.Command, cfg *config.Config, req *request.Request, of *responseFlags) error {
	expectations := make([]*assertions.Assertion, 0, len(of.expect))
	for _, expr := range of.expect {
		a, err := assertions.Parse(expr)
		if err != nil {
			return withExitCode(ExitUsageError, err)
		}
		expectations = append(expectations, a)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	method, target := string(req.Method()), req.URL()
	res := req.EndContext(ctx)

	if cfg.History != "" {
		if err := recordHistory(cmd.Context(), cfg.History, method, target, res); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to record history: %v\n", err)
		}
	}

	formatter := newFormatter(cmd, cfg)

	if of.selectExpr != "" && res.Status > 0 {
		value, ok := capture.Format(res, of.selectExpr)
		if !ok {
			formatter.FormatError(fmt.Errorf("nothing found for %q", of.selectExpr))
			return withExitCode(ExitRequestFailed, nil)
		}
		formatter.FormatValue(value)
	} else {
		formatter.FormatResponse(method, target, res)
	}

	if !res.OK {
		if res.Status == 0 {
			return withExitCode(ExitNetworkError, nil)
		}
		return withExitCode(ExitRequestFailed, nil)
	}

	if of.schema != "" {
		if err := capture.ValidateSchema(res, of.schema); err != nil {
			formatter.FormatError(err)
			return withExitCode(ExitRequestFailed, nil)
		}
	}

	failed := false
	for _, result := range assertions.EvaluateAll(res, expectations) {
		if !result.Passed {
			formatter.FormatError(fmt.Errorf("expect %s: %s", result.Assertion, result.Message))
			failed = true
		}
	}
	if failed {
		return withExitCode(ExitRequestFailed, nil)
	}

	return nil
}

func recordHistory(ctx context.Context, path, method, target string, res *request.Response) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entry := history.Entry{
		Method:   method,
		URL:      target,
		Status:   res.Status,
		OK:       res.OK,
		Duration: res.Duration,
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}

	_, err = store.Record(ctx, entry)
	return err
}
