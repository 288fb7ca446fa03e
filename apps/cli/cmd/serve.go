package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/request/packages/echo"
	"github.com/spf13/cobra"
)

var (
	servePortFlag  int
	serveDelayFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local echo server",
	Long: `Start an httpbin-style echo server for trying requests locally.

Routes:
  /get /post /put /delete /anything   echo method, url, args, headers and body
  /headers /user-agent                echo request headers
  /status/{code}                      respond with the given status
  /basic-auth/{user}/{pass}           require basic auth
  /redirect/{n}                       redirect n times, then land on /get
  /redirect-to?url=&status_code=      redirect to url
  /bytes/{n}                          n deterministic bytes

Examples:
  request serve
  request serve --port 8080
  request serve --delay 100ms -v`,
	Args: cobra.NoArgs,
	RunE: serveCommand,
}

func init() {
	serveCmd.Flags().IntVarP(&servePortFlag, "port", "p", getEnvInt("REQUEST_SERVE_PORT", 3000), "Port to run the echo server on (env: REQUEST_SERVE_PORT)")
	serveCmd.Flags().StringVar(&serveDelayFlag, "delay", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	rootCmd.AddCommand(serveCmd)
}

func serveCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if serveDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(serveDelayFlag)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid delay value %q: %w", serveDelayFlag, err))
		}
	}

	server := echo.NewServer(
		echo.WithPort(servePortFlag),
		echo.WithDelay(delay),
		echo.WithVerbose(verboseFlag),
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down echo server...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return server.StartWithContext(ctx)
}
