package main

import (
	"github.com/spf13/cobra"
)

func renderCmd(opts *globalOptions) *cobra.Command {
	var dataPath, output string

	cmd := &cobra.Command{
		Use:   "render TEMPLATE",
		Short: "Render a template",
		Long: `Render a template from --templates with the components of the
manifests and the built-in set. The extension may be omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTemplates(opts); err != nil {
				return err
			}
			data, err := readData(dataPath)
			if err != nil {
				return err
			}
			kit, err := opts.newKit()
			if err != nil {
				return err
			}
			rendered, err := kit.RenderTemplate(args[0], data)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, rendered)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "YAML or JSON file with the template context")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func partialCmd(opts *globalOptions) *cobra.Command {
	var dataPath, output string

	cmd := &cobra.Command{
		Use:   "partial TEMPLATE NAME",
		Short: "Render a single partial of a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTemplates(opts); err != nil {
				return err
			}
			data, err := readData(dataPath)
			if err != nil {
				return err
			}
			kit, err := opts.newKit()
			if err != nil {
				return err
			}
			rendered, err := kit.RenderPartial(args[0], args[1], data)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, rendered)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "YAML or JSON file with the template context")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
