// Package componentkit wires the pongo2 component engine with the built-in
// components, component manifests and an optional go-theme selection.
//
// Quick start:
//
//	kit, err := componentkit.New(
//		componentkit.WithTemplatesDir("templates"),
//		componentkit.WithManifests("**/components.yaml"),
//	)
//	if err != nil {
//		return err
//	}
//	html, err := kit.RenderTemplate("pages/home", map[string]any{"user": user})
//
// Templates can then use block and inline components:
//
//	{% card title="Orders" class="wide" %}
//	  {% slot footer %}{% button label="More" hx-get="/orders?page=2" %}{% endslot %}
//	  {% for order in orders %}<p>{{ order.id }}</p>{% endfor %}
//	{% endcard %}
//
// The kit embeds *gotemplate.Engine, so RenderPartial, Invalidate and the
// other engine methods are available directly and a *Kit can be handed to
// watch.New.
package componentkit
