package cmd

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/request/packages/bench"
	"github.com/abdul-hamid-achik/request/packages/request"
	"github.com/spf13/cobra"
)

var (
	benchRequestFlags = &requestFlags{}
	benchRequestsFlag int
	benchConcFlag     int
	benchRateFlag     float64
	benchDurationFlag string
)

var benchCmd = &cobra.Command{
	Use:   "bench <get|post|put|delete> <url>",
	Short: "Send the same request repeatedly and summarize latency",
	Long: `Send the same request repeatedly and print a latency summary.

Every repetition builds a fresh request, so functions such as {{uuid()}}
produce a new value each time. A repetition succeeds when its response is OK.

Examples:
  request bench get http://localhost:3000/get -n 200 -c 10
  request bench post http://localhost:3000/post -d '{"id":"{{uuid()}}"}' --rate 50 --duration 30s`,
	Args: cobra.ExactArgs(2),
	RunE: benchCommand,
}

func init() {
	benchRequestFlags.bind(benchCmd)
	benchCmd.Flags().IntVarP(&benchRequestsFlag, "requests", "n", 100, "Number of requests (0 to run for --duration)")
	benchCmd.Flags().IntVarP(&benchConcFlag, "concurrency", "c", getEnvInt("REQUEST_BENCH_CONCURRENCY", 1), "Requests in flight at once (env: REQUEST_BENCH_CONCURRENCY)")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "Target requests per second (0 for unlimited)")
	benchCmd.Flags().StringVar(&benchDurationFlag, "duration", "", "Stop scheduling after this long (e.g., 30s, 1m)")
	rootCmd.AddCommand(benchCmd)
}

func benchCommand(cmd *cobra.Command, args []string) error {
	method := request.Method(strings.ToUpper(args[0]))
	switch method {
	case request.MethodGet, request.MethodPost, request.MethodPut, request.MethodDelete:
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unsupported method %s (GET, POST, PUT and DELETE are supported)", args[0]))
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	resolver, err := newResolver(cmd)
	if err != nil {
		return err
	}

	benchCfg := bench.Config{
		Requests:    benchRequestsFlag,
		Rate:        benchRateFlag,
		Concurrency: benchConcFlag,
	}
	if benchDurationFlag != "" {
		d, err := time.ParseDuration(benchDurationFlag)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid duration value %q: %w", benchDurationFlag, err))
		}
		benchCfg.Duration = d
	}
	if err := benchCfg.Validate(); err != nil {
		return withExitCode(ExitUsageError, err)
	}

	// Surface flag errors once, before the run
	transport := newTransport(cfg)
	if _, err := buildRequest(cfg, transport, resolver, method, args[1], benchRequestFlags); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := bench.Run(ctx, benchCfg, func() *request.Request {
		req, err := buildRequest(cfg, transport, resolver, method, args[1], benchRequestFlags)
		if err != nil {
			// an unconfigured builder ends as an init failure and counts as failed
			return request.New()
		}
		return req
	})
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	newFormatter(cmd, cfg).FormatBench(string(method), args[1], summary)

	if summary.Failed > 0 {
		return withExitCode(ExitRequestFailed, nil)
	}
	return nil
}
