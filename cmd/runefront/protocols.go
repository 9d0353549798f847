package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/malphas-lang/runefront/internal/protocol"
)

func newProtocolsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "protocols",
		Short: "List the protocol catalogue with fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := protocol.All()
			infos := make([]protocol.Info, len(all))
			for i, p := range all {
				infos[i] = p.Info()
			}

			if format != "table" {
				return encode(cmd.OutOrStdout(), format, infos)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tHASH\tDOC")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Hash, info.Doc)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	return cmd
}
