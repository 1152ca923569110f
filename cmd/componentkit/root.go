package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	componentkit "github.com/goliatone/go-component-kit"
	"github.com/goliatone/go-component-kit/pkg/render/template/gotemplate"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	templates string
	manifests []string
	noBuiltin bool
	debug     bool
	logLevel  string
	logFormat string

	logger *slog.Logger
}

func newRootCmd(prompter prompter) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "componentkit",
		Short: "Render and manage pongo2 component templates",
		Long: `componentkit renders pongo2 templates that use block and inline
components, slots, partials and asset tags.

Examples:
  componentkit render page --templates ./templates --data page.yaml
  componentkit partial page row --templates ./templates
  componentkit components list --templates ./templates --manifest "**/*.yaml"
  componentkit new status_badge --dir ./templates
  componentkit watch page --templates ./templates --output page.html`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.templates, "templates", "t", "", "template directory")
	flags.StringArrayVarP(&opts.manifests, "manifest", "m", nil, "component manifest glob, relative to --templates (repeatable)")
	flags.BoolVar(&opts.noBuiltin, "no-builtin", false, "skip the built-in components")
	flags.BoolVar(&opts.debug, "debug", false, "recompile templates on every load")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(
		renderCmd(opts),
		partialCmd(opts),
		componentsCmd(opts),
		newCmd(prompter),
		watchCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// newLogger builds a text or JSON slog logger writing to w.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	case "", "text":
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("invalid --log-format %q", format)
	}
	return slog.New(handler), nil
}

// newKit builds a kit from the persistent flags.
func (o *globalOptions) newKit() (*componentkit.Kit, error) {
	options := []componentkit.Option{
		componentkit.WithLogger(o.logger),
	}
	if o.templates != "" {
		options = append(options, componentkit.WithTemplatesDir(o.templates))
	}
	if len(o.manifests) > 0 {
		options = append(options, componentkit.WithManifests(o.manifests...))
	}
	if o.noBuiltin {
		options = append(options, componentkit.WithoutBuiltins())
	}
	if o.debug {
		options = append(options, componentkit.WithEngineOptions(gotemplate.WithDebug(true)))
	}
	return componentkit.New(options...)
}

// readData decodes a YAML or JSON data file into a template context.
func readData(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// writeOutput writes rendered content to path, or to w when path is empty.
func writeOutput(w io.Writer, path, content string) error {
	if path == "" {
		_, err := io.WriteString(w, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func requireTemplates(o *globalOptions) error {
	if o.templates == "" {
		return errors.New("--templates is required")
	}
	return nil
}
