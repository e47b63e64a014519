package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fintk-dev/fintk/internal/config"
	"github.com/fintk-dev/fintk/internal/model"
	"github.com/fintk-dev/fintk/internal/pipeline"
)

func newConvertCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Convert foreign-currency balance histories to EUR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			return runConvert(cfg, log, cmd.OutOrStdout())
		},
	}
}

func newConvertAndMergeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert-and-merge",
		Short: "Convert balances to EUR, then rebuild the merged reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if err := runConvert(cfg, log, cmd.OutOrStdout()); err != nil {
				return err
			}
			return runMerge(cfg, log, cmd.OutOrStdout())
		},
	}
}

// runConvert walks the balance histories in the finance root and
// produces a EUR counterpart for every native-currency file whose
// account needs conversion.
func runConvert(cfg *config.Configuration, log zerolog.Logger, out io.Writer) error {
	paths, err := filepath.Glob(filepath.Join(cfg.RootDir, "balance.*.csv"))
	if err != nil {
		return fmt.Errorf("listing balance files: %w", err)
	}

	summary := model.NewSummary(cfg.RootDir, "convert")
	factory := pipeline.NewFactory(cfg, log)
	parser := pipeline.NewAccountParser(cfg)

	for _, path := range paths {
		file, ok := parser.ParseBalancePath(filepath.Base(path))
		if !ok || !file.Original || !file.Account.NeedsConversion() {
			continue
		}
		if err := factory.NewConvertBalancePipeline(file.Account).Run(path, summary); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}

	fmt.Fprintln(out, summary)
	return nil
}
