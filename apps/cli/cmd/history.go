package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/request/packages/history"
	"github.com/spf13/cobra"
)

var (
	historyLimitFlag int
	historyClearFlag bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear recorded requests",
	Long: `List requests recorded with --history, newest first.

The database is the one given by --history or the config file, or
~/.request/history.db when neither is set.

Examples:
  request history
  request history --limit 5 -o json
  request history --clear`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Maximum number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClearFlag, "clear", false, "Delete all recorded requests")
	rootCmd.AddCommand(historyCmd)
}

func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	path := cfg.History
	if path == "" {
		path = history.DefaultPath()
	}

	store, err := history.Open(path)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer store.Close()

	if historyClearFlag {
		n, err := store.Clear(cmd.Context())
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries\n", n)
		return nil
	}

	entries, err := store.List(cmd.Context(), historyLimitFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	newFormatter(cmd, cfg).FormatHistory(entries)
	return nil
}
