package cmd

import (
	"strings"

	"github.com/abdul-hamid-achik/request/packages/core/config"
	"github.com/abdul-hamid-achik/request/packages/curl"
	"github.com/abdul-hamid-achik/request/packages/request"
	"github.com/spf13/cobra"
)

var curlResponseFlags = &responseFlags{}

var curlCmd = &cobra.Command{
	Use:   "curl '<curl command>'",
	Short: "Send a request described by a curl command line",
	Long: `Send a request described by a curl command line. Quote the whole command
so its flags are not read as request flags. The leading "curl" is optional.

Supported curl flags: -X, -H, -d/--data*, --json, -u, -A, -e, -b, -G, -I,
-k, -L and --url. Redirects are followed only with -L, as curl does.

Examples:
  request curl 'curl -X POST http://localhost:3000/post -d "a=1"'
  request curl 'curl -L http://localhost:3000/redirect/2' --select url`,
	Args: cobra.ExactArgs(1),
	RunE: curlCommand,
}

func init() {
	curlResponseFlags.bind(curlCmd)
	rootCmd.AddCommand(curlCmd)
}

func curlCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	resolver, err := newResolver(cmd)
	if err != nil {
		return err
	}

	parsed, err := curl.Parse(resolver.Resolve(args[0]))
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	if parsed.Insecure {
		cfg.ValidateSSL = config.BoolPtr(false)
	}

	req, err := parsed.Build(request.WithTransport(newTransport(cfg)))
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	// config headers fill in what the command line leaves out
	set := req.Headers()
	for k, v := range resolver.ResolveAll(cfg.Headers) {
		if _, ok := set[strings.ToLower(k)]; !ok {
			req.Set(k, v)
		}
	}
	if parsed.UserAgent == "" {
		req.UserAgent(cfg.UserAgent)
	}

	return send(cmd, cfg, req, curlResponseFlags)
}
