package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-component-kit/pkg/component"
)

const defaultManifestFile = "components.yaml"

const blockScaffold = `{# %s #}
<div {%% merge_attrs attributes class="%s" %%}>
  {%% if slots.header %%}<header>{%% render_slot slots.header %%}</header>{%% endif %%}
  {%% render_slot slots.children %%}
</div>
`

const inlineScaffold = `{# %s #}
<span {%% merge_attrs attributes class="%s" %%}>{{ label }}</span>
`

type scaffoldOptions struct {
	name     string
	block    bool
	blockSet bool
	dir      string
	manifest string
}

func newCmd(prompter prompter) *cobra.Command {
	opts := scaffoldOptions{}

	cmd := &cobra.Command{
		Use:   "new [NAME]",
		Short: "Scaffold a component template and manifest entry",
		Long: `Create DIR/components/NAME.html and add NAME to the manifest.
Missing values are asked for interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.name = strings.TrimSpace(args[0])
			}
			opts.blockSet = cmd.Flags().Changed("block")
			if err := opts.complete(prompter); err != nil {
				return err
			}
			created, err := scaffold(opts)
			if err != nil {
				return err
			}
			for _, path := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.block, "block", false, "create a block component with slots")
	cmd.Flags().StringVar(&opts.dir, "dir", ".", "template directory")
	cmd.Flags().StringVar(&opts.manifest, "manifest-file", defaultManifestFile, "manifest file, relative to --dir")
	return cmd
}

func (o *scaffoldOptions) complete(p prompter) error {
	if o.name == "" {
		if p == nil {
			return errors.New("component name is required")
		}
		name, err := p.Input("Component name:", "lowercase identifier, for example status_badge", validateComponentName)
		if err != nil {
			return err
		}
		o.name = strings.TrimSpace(name)
		if !o.blockSet {
			block, err := p.Confirm("Block component (accepts content and slots)?", false)
			if err != nil {
				return err
			}
			o.block = block
		}
	}
	return validateComponentName(o.name)
}

func validateComponentName(name string) error {
	if !component.IsIdentifier(strings.TrimSpace(name)) {
		return fmt.Errorf("invalid component name %q: use letters, digits and underscores", name)
	}
	return nil
}

// scaffold writes the template and registers it in the manifest. It refuses
// to overwrite an existing template or manifest entry.
func scaffold(o scaffoldOptions) ([]string, error) {
	templateRel := "components/" + o.name + ".html"
	templatePath := filepath.Join(o.dir, filepath.FromSlash(templateRel))
	manifestPath := filepath.Join(o.dir, o.manifest)

	doc, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	components, _ := doc["components"].(map[string]any)
	if components == nil {
		components = map[string]any{}
	}
	if _, exists := components[o.name]; exists {
		return nil, fmt.Errorf("component %q already exists in %s", o.name, manifestPath)
	}
	if _, err := os.Stat(templatePath); err == nil {
		return nil, fmt.Errorf("template %s already exists", templatePath)
	}

	title := cases.Title(language.English).String(strings.ReplaceAll(o.name, "_", " "))
	className := strings.ReplaceAll(o.name, "_", "-")

	entry := map[string]any{"template": templateRel}
	var body string
	if o.block {
		entry["block"] = true
		body = fmt.Sprintf(blockScaffold, title, className)
	} else {
		entry["props"] = []map[string]any{{"name": "label", "required": true}}
		body = fmt.Sprintf(inlineScaffold, title, className)
	}
	components[o.name] = entry
	doc["components"] = components

	if err := os.MkdirAll(filepath.Dir(templatePath), 0o755); err != nil {
		return nil, fmt.Errorf("create template dir: %w", err)
	}
	if err := os.WriteFile(templatePath, []byte(body), 0o644); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}

	encoded, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, encoded, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return []string{templatePath, manifestPath}, nil
}

func readManifest(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return doc, nil
}
