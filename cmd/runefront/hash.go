package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malphas-lang/runefront/internal/dispatch"
	"github.com/malphas-lang/runefront/internal/hash"
	"github.com/malphas-lang/runefront/internal/protocol"
)

func newHashCmd(a *app) *cobra.Command {
	var (
		params []string
		owner  string
		field  string
		index  int
	)

	cmd := &cobra.Command{
		Use:   "hash <name | 0xFINGERPRINT>",
		Short: "Compute the dispatch fingerprint of an associated function",
		Long: `Compute the dispatch fingerprint of an associated function.

A protocol name (ADD, INDEX_GET, ...) resolves to the protocol's hook;
any other name is an instance function. --field and --index narrow a
protocol to one field or tuple index. --params layers a parameter
signature on top and --owner prints the key under an owning type.

A hex fingerprint is looked up in the protocol catalogue instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := args[0]
			if strings.HasPrefix(arg, "0x") {
				return lookup(cmd, arg)
			}

			p, isProtocol := protocol.ByName(arg)
			var x dispatch.ToInstance = dispatch.Name(arg)
			if isProtocol {
				x = dispatch.Hook(p)
			}

			typed := make([]dispatch.Param, len(params))
			for i, name := range params {
				typed[i] = dispatch.TypeParam(name)
			}
			name, err := dispatch.WithParams(x, typed...)
			if err != nil {
				return err
			}

			switch {
			case field != "" && index >= 0:
				return errors.New("--field and --index are mutually exclusive")
			case (field != "" || index >= 0) && !isProtocol:
				return errors.Errorf("%s is not a protocol", arg)
			case field != "":
				name.Associated = dispatch.FieldFn(p, field)
			case index >= 0:
				name.Associated = dispatch.IndexFn(p, index)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "name\t%s\n", name)
			fmt.Fprintf(tw, "kind\t%s\n", name.Associated.Kind())
			fmt.Fprintf(tw, "hash\t%s\n", name.Hash())
			if owner != "" {
				fmt.Fprintf(tw, "key\t%s\n", name.Key(hash.Ident(owner)))
			}
			a.logger.Debug("fingerprint computed", "name", name.String(), "hash", name.Hash().String())
			return tw.Flush()
		},
	}

	cmd.Flags().StringSliceVarP(&params, "params", "p", nil, "Parameter type names, in order")
	cmd.Flags().StringVar(&owner, "owner", "", "Owning type name")
	cmd.Flags().StringVar(&field, "field", "", "Field name for a field function")
	cmd.Flags().IntVar(&index, "index", -1, "Tuple index for an index function")
	return cmd
}

func lookup(cmd *cobra.Command, arg string) error {
	h, err := hash.Parse(arg)
	if err != nil {
		return err
	}
	p, ok := protocol.ByHash(h)
	if !ok {
		return errors.Errorf("%s is not a protocol fingerprint", h)
	}
	fmt.Fprintln(cmd.OutOrStdout(), p)
	return nil
}
