package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/index"
	"github.com/malphas-lang/runefront/internal/parser"
)

func newParseCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the syntax tree outline of a source file",
		Long: `Parse a source file and print its syntax tree as JSON or YAML.

Items are numbered in pre-order before printing, so every item outline
carries its id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrap(err, "read source")
			}

			file, err := parser.ParseSource(string(data),
				parser.WithFilename(path),
				parser.WithLogger(a.logger))
			if err != nil {
				return a.report(cmd.ErrOrStderr(), path, string(data), err)
			}

			table := index.Assign(file)
			a.logger.Debug("parsed", "path", path, "items", table.Len())

			if format == "" {
				format = a.cfg.Output.Format
			}
			return encode(cmd.OutOrStdout(), format, ast.Describe(file))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json or yaml (default from manifest)")
	return cmd
}
