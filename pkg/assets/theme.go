package assets

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemePrefix marks references resolved through the active theme manifest,
// for example "theme:stylesheet".
const ThemePrefix = "theme:"

// ThemeResolver resolves ThemePrefix references against a theme selection.
// Variant files win over manifest files. References without the prefix, or
// keys the theme does not define, resolve to "" so the registry keeps them.
func ThemeResolver(selection *theme.Selection) Resolver {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	return func(ref string) string {
		key, ok := strings.CutPrefix(ref, ThemePrefix)
		if !ok || key == "" {
			return ""
		}
		prefix := manifest.Assets.Prefix
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			if file := variant.Assets.Files[key]; file != "" {
				if variant.Assets.Prefix != "" {
					prefix = variant.Assets.Prefix
				}
				return joinURL(prefix, file)
			}
		}
		if file := manifest.Assets.Files[key]; file != "" {
			return joinURL(prefix, file)
		}
		return ""
	}
}

func joinURL(prefix, file string) string {
	if prefix == "" || strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
		return file
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
}
