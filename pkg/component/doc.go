// Package component describes template components: the template that renders
// them, whether they wrap content, the props they consume and the assets
// they need. Descriptors are registered by name and looked up when a
// component tag executes.
package component
