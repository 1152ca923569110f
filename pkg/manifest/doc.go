// Package manifest loads component descriptors from YAML or JSON files.
//
// A manifest maps component names to their template, kind, props and
// assets:
//
//	components:
//	  card:
//	    template: components/card.html
//	    block: true
//	    props:
//	      - name: title
//	        required: true
//	    stylesheets: [/static/card.css]
//
// Files are discovered with doublestar patterns so a tree of manifests can
// live next to the templates they describe.
package manifest
