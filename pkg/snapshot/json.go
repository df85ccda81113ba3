package snapshot

import (
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// anonymousHandler names callbacks missing from the registry in JSON output.
const anonymousHandler = "anonymous"

// Node is the JSON form of a tree node. It has the snapshot document shape.
type Node struct {
	Tag      string  `json:"tag,omitempty"`
	NS       string  `json:"ns,omitempty"`
	Attrs    []Attr  `json:"attrs,omitempty"`
	Children []*Node `json:"children,omitempty"`
	Text     *string `json:"text,omitempty"`
}

// Attr is the JSON form of an attribute.
type Attr struct {
	Name    string `json:"name"`
	NS      string `json:"ns,omitempty"`
	Value   any    `json:"value,omitempty"`
	Handler string `json:"handler,omitempty"`
}

// IndexedNode is the JSON form of an appended child.
type IndexedNode struct {
	NewIdx int   `json:"newIdx"`
	Node   *Node `json:"node"`
}

// Patch is the JSON form of a patch. Index and text fields are pointers so
// that zero values of the fields an op uses are still written.
type Patch struct {
	Op       string        `json:"op"`
	Tag      string        `json:"tag,omitempty"`
	OldIdx   int           `json:"oldIdx"`
	NewIdx   *int          `json:"newIdx,omitempty"`
	Pos      *int          `json:"pos,omitempty"`
	Node     *Node         `json:"node,omitempty"`
	Children []IndexedNode `json:"children,omitempty"`
	Attrs    []Attr        `json:"attrs,omitempty"`
	OldText  *string       `json:"oldText,omitempty"`
	NewText  *string       `json:"newText,omitempty"`
}

// ToNode converts a tree to its JSON form, naming callbacks through reg.
func ToNode(n *vdom.VNode, reg *Registry) *Node {
	if n == nil {
		return nil
	}
	if n.IsText() {
		text := n.Text
		return &Node{Text: &text}
	}
	out := &Node{Tag: n.Tag, NS: n.Namespace}
	for _, a := range n.Attrs {
		if !a.IsEmpty() {
			out.Attrs = append(out.Attrs, ToAttr(&a, reg))
		}
	}
	for _, c := range n.Children {
		if c != nil {
			out.Children = append(out.Children, ToNode(c, reg))
		}
	}
	return out
}

// ToAttr converts an attribute to its JSON form. Callbacks missing from reg
// are named "anonymous".
func ToAttr(a *vdom.Attr, reg *Registry) Attr {
	out := Attr{Name: a.Name, NS: a.Namespace}
	var cb vdom.Callback
	switch v := a.Value.(type) {
	case vdom.Callback:
		cb = v
	case *vdom.Callback:
		if v != nil {
			cb = *v
		}
	default:
		out.Value = a.Value
		return out
	}
	out.Handler = anonymousHandler
	if reg != nil {
		if name, ok := reg.Name(cb); ok {
			out.Handler = name
		}
	}
	return out
}

// ToPatches converts patches to their JSON form.
func ToPatches(patches []vdom.Patch, reg *Registry) []Patch {
	out := make([]Patch, len(patches))
	for i := range patches {
		out[i] = toPatch(&patches[i], reg)
	}
	return out
}

func toPatch(p *vdom.Patch, reg *Registry) Patch {
	out := Patch{Op: p.Op.String(), Tag: p.Tag, OldIdx: p.OldIdx}
	switch p.Op {
	case vdom.PatchReplaceNode:
		out.NewIdx = intPtr(p.NewIdx)
		out.Node = ToNode(p.Node, reg)
	case vdom.PatchInsertNode:
		out.NewIdx = intPtr(p.NewIdx)
		out.Pos = intPtr(p.Pos)
		out.Node = ToNode(p.Node, reg)
	case vdom.PatchAppendChildren:
		out.Children = make([]IndexedNode, len(p.Children))
		for i, c := range p.Children {
			out.Children[i] = IndexedNode{NewIdx: c.NewIdx, Node: ToNode(c.Node, reg)}
		}
	case vdom.PatchAddAttributes, vdom.PatchRemoveAttributes:
		out.NewIdx = intPtr(p.NewIdx)
		out.Attrs = make([]Attr, len(p.Attrs))
		for i, a := range p.Attrs {
			out.Attrs[i] = ToAttr(a, reg)
		}
	case vdom.PatchChangeText:
		out.NewIdx = intPtr(p.NewIdx)
		out.OldText = &p.OldText
		out.NewText = &p.NewText
	}
	return out
}

func intPtr(v int) *int { return &v }
