// Package tags implements the pongo2 tags behind components.
//
// Component tags are generated per registered component:
//
//	{% card title="Hello" class="shadow" :let="row" %}
//	  {% slot header %}<h1>{{ title }}</h1>{% endslot %}
//	  <p>{{ row.name }}</p>
//	{% endcard %}
//
// The component template receives the leftover attributes as `attributes`,
// its slots as `slots` and its props as plain context values:
//
//	<div {% merge_attrs attributes class="card" %}>
//	  {% render_slot slots.header %}
//	  {% render_slot slots.children item %}
//	</div>
//
// `partial`/`render_partial` define and reuse named fragments of a template
// and `render_assets` writes the stylesheets and scripts of the registered
// components. Tags reach the engine through the Runtime stored under
// RuntimeKey in the template set globals.
package tags
