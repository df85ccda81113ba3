package vdom

// Diff compares two trees and returns the patches that transform prev into
// next. Patches address the old tree by preorder traversal index and borrow
// nodes and attributes from both trees; neither tree is modified.
//
// A nil old tree yields a single root ReplaceNode, a nil new tree a single
// root RemoveNode.
func Diff(prev, next *VNode) []Patch {
	switch {
	case prev == nil && next == nil:
		return nil
	case prev == nil:
		return []Patch{NewReplaceNode("", 0, 0, next)}
	case next == nil:
		return []Patch{NewRemoveNode(tagOf(prev), 0)}
	}
	d := &differ{idx: newIndexer()}
	d.diffNode(prev, next, 0, 0)
	return d.patches
}

// differ carries the state of one Diff call.
type differ struct {
	idx     *indexer
	patches []Patch
}

func (d *differ) emit(p Patch) {
	d.patches = append(d.patches, p)
}

// diffNode compares a node pair sitting at oldIdx in the old tree and newIdx
// in the new tree.
func (d *differ) diffNode(oldNode, newNode *VNode, oldIdx, newIdx int) {
	switch {
	case oldNode.Kind == KindText && newNode.Kind == KindText:
		if oldNode.Text != newNode.Text {
			d.emit(NewChangeText(oldIdx, oldNode.Text, newIdx, newNode.Text))
		}
	case sameElement(oldNode, newNode):
		d.diffElementAttrs(oldNode, newNode, oldIdx, newIdx)
		d.diffChildren(oldNode, newNode, oldIdx, newIdx)
	default:
		// Kind or tag changed: the whole subtree goes.
		d.emit(NewReplaceNode(tagOf(oldNode), oldIdx, newIdx, newNode))
	}
}
