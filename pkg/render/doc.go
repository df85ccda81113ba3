// Package render turns vdom trees into HTML.
//
// The renderer is used to inspect trees and the effect of patches on them,
// not to serve pages:
//
//	r := render.NewRenderer(render.RendererConfig{Pretty: true, ShowIndices: true})
//	html, err := r.RenderToString(tree)
//
// Output follows HTML5 rules:
//
//   - Text and attribute values are escaped
//   - Void elements (input, br, img, ...) have no closing tag
//   - Boolean attributes (disabled, checked, ...) render by presence
//   - Attributes sharing a name render once, values joined (class with
//     spaces, style with "; ")
//   - Callback attributes and the key attribute are not rendered
//   - A namespaced element whose parent is in another namespace gets an
//     xmlns attribute
//
// With ShowIndices every element carries a data-vidx attribute holding its
// preorder traversal index, the address patches use to refer to it.
package render
