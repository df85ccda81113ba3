// Package vdom provides the virtual tree model and the reconciliation engine.
//
// A tree is built from VNode values: elements carrying a tag, attributes and
// children, and text nodes. Diff compares an old tree with a new tree and
// returns the ordered patch list that turns a rendering of the old tree into
// the new one.
//
// # Core Types
//
// VNode is either an element or a text node. Attr is a single name/value pair
// as it was built; several Attr values may share a name and are merged into a
// MergedAttr when compared. Callback wraps an event handler and compares by
// identity: copies of a Callback are equal, separately wrapped functions are
// not.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	    OnClick(handler),
//	)
//
// # Diffing
//
// Diff walks both trees depth-first. Nodes are addressed by their preorder
// traversal index in the old tree (root = 0); new subtrees are referenced,
// never copied. Children carrying a "key" attribute are matched by key,
// everything else by position. There is no move operation: a keyed child that
// changed position is matched and diffed in place.
package vdom
