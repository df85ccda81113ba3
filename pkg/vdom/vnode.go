package vdom

import "fmt"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// KeyAttr is the attribute name used for keyed reconciliation.
const KeyAttr = "key"

// VNode is a node of the virtual tree.
//
// An element owns its Attrs and Children. Trees handed to Diff are treated as
// immutable for the duration of the call.
type VNode struct {
	Kind      VKind    // Node type
	Namespace string   // Element namespace (e.g. the SVG namespace), empty for HTML
	Tag       string   // Element tag name (e.g., "div")
	Attrs     []Attr   // Attributes in build order, duplicates allowed
	Children  []*VNode // Child nodes
	Text      string   // For KindText
}

// IsElement reports whether v is an element node.
func (v *VNode) IsElement() bool {
	return v != nil && v.Kind == KindElement
}

// IsText reports whether v is a text node.
func (v *VNode) IsText() bool {
	return v != nil && v.Kind == KindText
}

// Key returns the value of the first key attribute rendered as a string.
func (v *VNode) Key() (string, bool) {
	if !v.IsElement() {
		return "", false
	}
	for i := range v.Attrs {
		if v.Attrs[i].Namespace == "" && v.Attrs[i].Name == KeyAttr {
			return keyString(v.Attrs[i].Value), true
		}
	}
	return "", false
}

// AttrsNamed returns every attribute of v with the given name, in build order.
func (v *VNode) AttrsNamed(name string) []Attr {
	if !v.IsElement() {
		return nil
	}
	var out []Attr
	for _, a := range v.Attrs {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// MergedAttrs returns the attributes of v merged by name.
func (v *VNode) MergedAttrs() []MergedAttr {
	if !v.IsElement() {
		return nil
	}
	return MergeAttrs(v.Attrs)
}

// Size returns the number of nodes in the subtree rooted at v.
func (v *VNode) Size() int {
	if v == nil {
		return 0
	}
	n := 1
	for _, c := range v.Children {
		n += c.Size()
	}
	return n
}

// Walk visits v and its descendants in preorder, passing each node's
// traversal index relative to v. Returning false skips the node's children.
func (v *VNode) Walk(fn func(n *VNode, idx int) bool) {
	idx := 0
	var walk func(n *VNode)
	walk = func(n *VNode) {
		if n == nil {
			return
		}
		cur := idx
		idx++
		if !fn(n, cur) {
			idx += n.Size() - 1
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(v)
}

// NodeAt returns the node at the given preorder traversal index, or nil.
func (v *VNode) NodeAt(index int) *VNode {
	var found *VNode
	v.Walk(func(n *VNode, idx int) bool {
		if found != nil {
			return false
		}
		if idx == index {
			found = n
			return false
		}
		return idx+n.Size() > index
	})
	return found
}

// Equal reports whether a and b describe the same tree: same kinds, tags,
// merged attributes and children.
func Equal(a, b *VNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == KindText {
		return a.Text == b.Text
	}
	if !sameElement(a, b) {
		return false
	}
	add, remove := diffAttrs(a.MergedAttrs(), b.MergedAttrs())
	if len(add) > 0 || len(remove) > 0 {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// sameElement reports whether a and b are elements with the same
// namespace and tag.
func sameElement(a, b *VNode) bool {
	return a.Kind == KindElement && b.Kind == KindElement &&
		a.Tag == b.Tag && a.Namespace == b.Namespace
}

// tagOf returns the tag of an element, or "" for text nodes.
func tagOf(v *VNode) string {
	if v.IsElement() {
		return v.Tag
	}
	return ""
}

// String returns a compact, HTML-like description of v for debugging.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	if v.Kind == KindText {
		return fmt.Sprintf("%q", v.Text)
	}
	s := "<" + v.Tag
	for _, a := range v.Attrs {
		s += " " + a.String()
	}
	if len(v.Children) == 0 {
		return s + "/>"
	}
	s += ">"
	for _, c := range v.Children {
		s += c.String()
	}
	return s + "</" + v.Tag + ">"
}
