// Package commands wires the CLI surface: categories, move, convert and
// merge, all operating on the finance root directory resolved from the
// --finance-root flag, the FINANCE_ROOT environment variable, or
// $HOME/finances.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fintk-dev/fintk/internal/buildinfo"
	"github.com/fintk-dev/fintk/internal/config"
	"github.com/fintk-dev/fintk/internal/logger"
)

// configFilename is the name of the configuration file inside the finance
// root directory.
const configFilename = "finance-tools.yml"

type rootOptions struct {
	financeRoot string
	verbose     bool
}

// load resolves the finance root, reads the configuration and builds the
// logger. Called by every subcommand.
func (o *rootOptions) load() (*config.Configuration, zerolog.Logger, error) {
	log := logger.New(o.verbose)

	root, err := resolveFinanceRoot(o.financeRoot)
	if err != nil {
		return nil, log, err
	}
	log.Debug().Str("root", root).Msg("finance root resolved")

	cfg, err := config.Load(filepath.Join(root, configFilename))
	if err != nil {
		return nil, log, err
	}
	return cfg, log, nil
}

// resolveFinanceRoot picks the finance root: explicit flag first, then the
// FINANCE_ROOT environment variable, then $HOME/finances.
func resolveFinanceRoot(flagValue string) (string, error) {
	if flagValue != "" {
		return expandUser(flagValue)
	}
	if env := os.Getenv("FINANCE_ROOT"); env != "" {
		return expandUser(env)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, "finances"), nil
}

func expandUser(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/")), nil
	}
	return path, nil
}

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "fintk",
		Short:   "Personal finance toolkit: import, merge and convert bank exports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.financeRoot, "finance-root", "",
		"folder where the configuration file is stored (default: $HOME/finances)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newCategoriesCommand(opts),
		newMoveCommand(opts),
		newConvertCommand(opts),
		newMergeCommand(opts),
		newConvertAndMergeCommand(opts),
	)

	return rootCmd
}
