package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/request/packages/core/config"
	"github.com/abdul-hamid-achik/request/packages/core/env"
	"github.com/abdul-hamid-achik/request/packages/history"
	"github.com/abdul-hamid-achik/request/packages/output"
	"github.com/abdul-hamid-achik/request/packages/request"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag   string
	envFileFlag  string
	noColorFlag  bool
	verboseFlag  bool
	timeoutFlag  string
	insecureFlag bool
	proxyFlag    string
	historyFlag  string
	outputFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "request",
	Short: "Send one HTTP request, see what came back.",
	Long: `request builds a single HTTP request from flags, sends it and prints
the response. A response counts as OK only when it completes with status 200;
anything else exits non-zero.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		if !reported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(ExitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", getEnvString("REQUEST_CONFIG", ""), "Path to config file (env: REQUEST_CONFIG)")
	flags.StringVar(&envFileFlag, "env-file", getEnvString("REQUEST_ENV_FILE", ""), "Path to .env file for variable interpolation (env: REQUEST_ENV_FILE)")
	flags.BoolVar(&noColorFlag, "no-color", getEnvBool("REQUEST_NO_COLOR", false), "Disable colored output (env: REQUEST_NO_COLOR)")
	flags.BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("REQUEST_VERBOSE", false), "Show request line, response headers and warnings (env: REQUEST_VERBOSE)")
	flags.StringVar(&timeoutFlag, "timeout", getEnvString("REQUEST_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: REQUEST_TIMEOUT)")
	flags.BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("REQUEST_INSECURE", false), "Disable SSL certificate validation (env: REQUEST_INSECURE)")
	flags.StringVar(&proxyFlag, "proxy", getEnvString("REQUEST_PROXY", ""), "Proxy URL for HTTP requests (env: REQUEST_PROXY)")
	flags.StringVar(&historyFlag, "history", getEnvString("REQUEST_HISTORY", ""), "Record requests in this SQLite database (env: REQUEST_HISTORY)")
	flags.Lookup("history").NoOptDefVal = history.DefaultPath()
	flags.StringVarP(&outputFlag, "output", "o", getEnvString("REQUEST_OUTPUT", ""), "Output format: console, json (env: REQUEST_OUTPUT)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// loadSettings reads the config file and applies the persistent flags on top
func loadSettings() (*config.Config, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	overrides := &config.Config{
		Proxy:   proxyFlag,
		History: historyFlag,
		Output:  outputFlag,
	}
	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err))
		}
		overrides.Timeout = int(timeout.Milliseconds())
	}
	if insecureFlag {
		overrides.ValidateSSL = config.BoolPtr(false)
	}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}

	cfg := fileConfig.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}
	return cfg, nil
}

func newFormatter(cmd *cobra.Command, cfg *config.Config) output.Formatter {
	if cfg.Output == "json" {
		return output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout()))
	}
	return output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(cfg.GetNoColor()),
	)
}

func newTransport(cfg *config.Config) *request.HTTPTransport {
	return request.NewTransport(
		request.WithTimeout(cfg.TimeoutDuration()),
		request.WithMaxRedirects(cfg.MaxRedirects),
		request.WithValidateSSL(cfg.GetValidateSSL()),
		request.WithProxy(cfg.Proxy),
	)
}

// newResolver builds a resolver seeded with REQUEST_VAR_* variables and the
// env file, the latter taking precedence.
func newResolver(cmd *cobra.Command) (*env.Resolver, error) {
	fileVars := map[string]string{}
	if envFileFlag != "" {
		vars, err := env.LoadDotEnv(envFileFlag)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		fileVars = vars
	}

	resolver := env.NewResolver()
	resolver.SetVariables(env.MergeVariables(env.LoadSystemEnv("REQUEST_VAR_"), fileVars))
	if verboseFlag {
		resolver.SetWarnFunc(func(format string, args ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
		})
	}
	return resolver, nil
}
