package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func componentsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "components",
		Short: "Inspect registered components",
	}
	cmd.AddCommand(componentsListCmd(opts))
	return cmd
}

func componentsListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and manifest components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kit, err := opts.newKit()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tTEMPLATE\tPROPS")
			for _, descriptor := range kit.Components().Descriptors() {
				kind := "inline"
				if descriptor.Block {
					kind = "block"
				}
				props := make([]string, 0, len(descriptor.Props))
				for _, prop := range descriptor.Props {
					name := prop.Name
					if prop.Required {
						name += "*"
					}
					props = append(props, name)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", descriptor.Name, kind, descriptor.Template, strings.Join(props, ","))
			}
			return w.Flush()
		},
	}
}
