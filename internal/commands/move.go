package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fintk-dev/fintk/internal/config"
	"github.com/fintk-dev/fintk/internal/model"
	"github.com/fintk-dev/fintk/internal/pipeline"
)

func newMoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move",
		Short: "Integrate downloaded bank exports into the finance root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			return runMove(cfg, log, cmd.OutOrStdout())
		},
	}
}

// runMove scans the download directory and, for every file matching a
// configured account, runs the account's transaction and balance
// pipelines. Exchange-rate exports are folded into the rate table. A
// decode failure is reported and the scan continues with the next file;
// failures stay visible through their omission from the final summary.
func runMove(cfg *config.Configuration, log zerolog.Logger, out io.Writer) error {
	entries, err := os.ReadDir(cfg.DownloadDir)
	if err != nil {
		return fmt.Errorf("reading download directory: %w", err)
	}

	summary := model.NewSummary(cfg.DownloadDir, "copy")
	factory := pipeline.NewFactory(cfg, log)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(cfg.DownloadDir, entry.Name())

		for _, account := range cfg.Accounts {
			if !account.Match(entry.Name()) {
				continue
			}
			log.Debug().
				Str("file", entry.Name()).
				Str("account", account.ID).
				Str("num", account.MaskedNum()).
				Msg("file matched")

			if err := factory.NewTransactionPipeline(account).Run(path, summary); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			if err := factory.NewBalancePipeline(account).Run(path, summary); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}

		if pipeline.IsExchangeRateFile(entry.Name()) {
			if err := factory.NewExchangeRatePipeline().Run(path, summary); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
	}

	fmt.Fprintln(out, summary)
	return nil
}
