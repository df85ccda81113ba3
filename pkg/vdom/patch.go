package vdom

import (
	"fmt"
	"strings"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchReplaceNode      PatchOp = 0x01 // Replace a subtree
	PatchInsertNode       PatchOp = 0x02 // Insert a child under a parent
	PatchAppendChildren   PatchOp = 0x03 // Append trailing children to a parent
	PatchRemoveNode       PatchOp = 0x04 // Remove a subtree
	PatchAddAttributes    PatchOp = 0x05 // Set/overwrite attributes
	PatchRemoveAttributes PatchOp = 0x06 // Unset attributes
	PatchChangeText       PatchOp = 0x07 // Update text content
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchReplaceNode:
		return "ReplaceNode"
	case PatchInsertNode:
		return "InsertNode"
	case PatchAppendChildren:
		return "AppendChildren"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchAddAttributes:
		return "AddAttributes"
	case PatchRemoveAttributes:
		return "RemoveAttributes"
	case PatchChangeText:
		return "ChangeText"
	default:
		return "Unknown"
	}
}

// PatchOps lists every operation in wire order.
var PatchOps = []PatchOp{
	PatchReplaceNode,
	PatchInsertNode,
	PatchAppendChildren,
	PatchRemoveNode,
	PatchAddAttributes,
	PatchRemoveAttributes,
	PatchChangeText,
}

// IndexedNode is a new-tree node together with its new-tree traversal index.
type IndexedNode struct {
	NewIdx int
	Node   *VNode
}

// Patch represents a single operation against the old tree.
//
// OldIdx addresses the old tree by preorder traversal index. Node, Children
// and Attrs point into the trees passed to Diff; they are never copies.
type Patch struct {
	Op       PatchOp       // Operation type
	Tag      string        // Tag of the target (or of the parent for Insert/Append), "" if none
	OldIdx   int           // Target index in the old tree (parent index for Insert/Append)
	NewIdx   int           // Index of the corresponding node in the new tree
	Pos      int           // Child position under the parent (InsertNode)
	Node     *VNode        // For ReplaceNode/InsertNode
	Children []IndexedNode // For AppendChildren
	Attrs    []*Attr       // For AddAttributes (new attrs) / RemoveAttributes (old attrs)
	OldText  string        // For ChangeText
	NewText  string        // For ChangeText
}

// NewReplaceNode replaces the subtree at oldIdx with node.
func NewReplaceNode(tag string, oldIdx, newIdx int, node *VNode) Patch {
	return Patch{Op: PatchReplaceNode, Tag: tag, OldIdx: oldIdx, NewIdx: newIdx, Node: node}
}

// NewInsertNode inserts node as child number pos of the parent at parentIdx.
func NewInsertNode(parentTag string, parentIdx, newIdx, pos int, node *VNode) Patch {
	return Patch{Op: PatchInsertNode, Tag: parentTag, OldIdx: parentIdx, NewIdx: newIdx, Pos: pos, Node: node}
}

// NewAppendChildren appends children to the parent at parentIdx.
func NewAppendChildren(parentTag string, parentIdx int, children []IndexedNode) Patch {
	return Patch{Op: PatchAppendChildren, Tag: parentTag, OldIdx: parentIdx, Children: children}
}

// NewRemoveNode removes the subtree at oldIdx.
func NewRemoveNode(tag string, oldIdx int) Patch {
	return Patch{Op: PatchRemoveNode, Tag: tag, OldIdx: oldIdx}
}

// NewAddAttributes sets attrs on the element at oldIdx.
func NewAddAttributes(tag string, oldIdx, newIdx int, attrs []*Attr) Patch {
	return Patch{Op: PatchAddAttributes, Tag: tag, OldIdx: oldIdx, NewIdx: newIdx, Attrs: attrs}
}

// NewRemoveAttributes unsets attrs on the element at oldIdx.
func NewRemoveAttributes(tag string, oldIdx, newIdx int, attrs []*Attr) Patch {
	return Patch{Op: PatchRemoveAttributes, Tag: tag, OldIdx: oldIdx, NewIdx: newIdx, Attrs: attrs}
}

// NewChangeText replaces the content of the text node at oldIdx.
func NewChangeText(oldIdx int, oldText string, newIdx int, newText string) Patch {
	return Patch{Op: PatchChangeText, OldIdx: oldIdx, OldText: oldText, NewIdx: newIdx, NewText: newText}
}

// String returns a one-line description of the patch.
func (p Patch) String() string {
	switch p.Op {
	case PatchReplaceNode:
		return fmt.Sprintf("ReplaceNode %s@%d -> #%d %s", tagOrText(p.Tag), p.OldIdx, p.NewIdx, p.Node)
	case PatchInsertNode:
		return fmt.Sprintf("InsertNode under %s@%d pos %d #%d %s", tagOrText(p.Tag), p.OldIdx, p.Pos, p.NewIdx, p.Node)
	case PatchAppendChildren:
		parts := make([]string, len(p.Children))
		for i, c := range p.Children {
			parts[i] = fmt.Sprintf("#%d %s", c.NewIdx, c.Node)
		}
		return fmt.Sprintf("AppendChildren to %s@%d [%s]", p.Tag, p.OldIdx, strings.Join(parts, ", "))
	case PatchRemoveNode:
		return fmt.Sprintf("RemoveNode %s@%d", tagOrText(p.Tag), p.OldIdx)
	case PatchAddAttributes, PatchRemoveAttributes:
		parts := make([]string, len(p.Attrs))
		for i, a := range p.Attrs {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s %s@%d [%s]", p.Op, p.Tag, p.OldIdx, strings.Join(parts, " "))
	case PatchChangeText:
		return fmt.Sprintf("ChangeText @%d %q -> %q", p.OldIdx, p.OldText, p.NewText)
	default:
		return fmt.Sprintf("Patch(%d)", p.Op)
	}
}

func tagOrText(tag string) string {
	if tag == "" {
		return "#text"
	}
	return tag
}

// Summarize counts patches per operation.
func Summarize(patches []Patch) map[PatchOp]int {
	counts := make(map[PatchOp]int, len(PatchOps))
	for _, p := range patches {
		counts[p.Op]++
	}
	return counts
}
