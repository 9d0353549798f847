package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malphas-lang/runefront/internal/parser"
	"github.com/malphas-lang/runefront/internal/printer"
)

func newFmtCmd(a *app) *cobra.Command {
	var (
		write bool
		check bool
	)

	cmd := &cobra.Command{
		Use:   "fmt <file>...",
		Short: "Format source files",
		Long: `Format source files in canonical layout.

Without flags the formatted source is printed. --write rewrites files in
place; --check lists files that are not formatted and fails if any are.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed, unformatted int
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return errors.Wrap(err, "read source")
				}
				src := string(data)

				formatted, err := printer.Source(src,
					parser.WithFilename(path),
					parser.WithLogger(a.logger))
				if err != nil {
					_ = a.report(cmd.ErrOrStderr(), path, src, err)
					failed++
					continue
				}

				switch {
				case check:
					if formatted != src {
						fmt.Fprintln(cmd.OutOrStdout(), path)
						unformatted++
					}
				case write:
					if formatted == src {
						continue
					}
					if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
						return errors.Wrapf(err, "write %s", path)
					}
					a.logger.Info("formatted", "path", path)
				default:
					fmt.Fprint(cmd.OutOrStdout(), formatted)
				}
			}

			if failed > 0 {
				return errors.Errorf("%d of %d files have errors", failed, len(args))
			}
			if unformatted > 0 {
				return errors.Errorf("%d of %d files are not formatted", unformatted, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite files in place")
	cmd.Flags().BoolVar(&check, "check", false, "Fail if any file is not formatted")
	cmd.MarkFlagsMutuallyExclusive("write", "check")
	return cmd
}
