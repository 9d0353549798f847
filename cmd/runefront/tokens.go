package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malphas-lang/runefront/internal/lexer"
	"github.com/malphas-lang/runefront/internal/parser"
)

func newTokensCmd(a *app) *cobra.Command {
	var trivia bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrap(err, "read source")
			}

			l := lexer.New(string(data))
			if trivia {
				l = lexer.NewWithTrivia(string(data))
			}
			l.SetFilename(path)
			tokens := l.All()
			if len(l.Errors) > 0 {
				return a.report(cmd.ErrOrStderr(), path, string(data), parser.LexErrors(l.Errors))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POS\tTYPE\tTEXT")
			for _, tok := range tokens {
				fmt.Fprintf(tw, "%d:%d\t%s\t%q\n", tok.Span.Line, tok.Span.Column, tok.Type, tok.Raw)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&trivia, "trivia", false, "Include whitespace and comments")
	return cmd
}
