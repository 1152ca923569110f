package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-component-kit/pkg/watch"
)

func watchCmd(opts *globalOptions) *cobra.Command {
	var dataPath, output string

	cmd := &cobra.Command{
		Use:   "watch [TEMPLATE]",
		Short: "Invalidate templates on change and re-render",
		Long: `Watch --templates recursively. Changed templates are dropped from the
template and partial caches. When TEMPLATE is given it is rendered once at
start and again after every change.`,
		Args: cobra.MaximumNArgs(1),
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

			logger := opts.logger.With("component", "cli")
			rerender := func() {
				if len(args) == 0 {
					return
				}
				rendered, err := kit.RenderTemplate(args[0], data)
				if err != nil {
					logger.Error("render failed", "template", args[0], "error", err)
					return
				}
				if err := writeOutput(cmd.OutOrStdout(), output, rendered); err != nil {
					logger.Error("write failed", "error", err)
				}
			}

			config := watch.DefaultConfig()
			config.Roots = []string{opts.templates}

			watcher, err := watch.New(config, kit,
				watch.WithLogger(opts.logger),
				watch.WithOnFlush(func([]string) { rerender() }),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, watcher, rerender)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "YAML or JSON file with the template context")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func runWatch(ctx context.Context, watcher *watch.Watcher, rerender func()) error {
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	rerender()
	<-ctx.Done()
	return watcher.Stop()
}
