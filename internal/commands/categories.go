package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fintk-dev/fintk/internal/config"
)

func newCategoriesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "categories [prefix]",
		Aliases: []string{"cat"},
		Short:   "Print the configured categories, optionally filtered by prefix",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			runCategories(cfg, prefix, cmd.OutOrStdout())
			return nil
		},
	}
}

func runCategories(cfg *config.Configuration, prefix string, out io.Writer) {
	for _, c := range cfg.Categories(func(cat string) bool {
		return strings.HasPrefix(cat, prefix)
	}) {
		fmt.Fprintln(out, c)
	}
}
