package vdom

// diffChildren reconciles the children of a matched element pair.
func (d *differ) diffChildren(oldNode, newNode *VNode, oldIdx, newIdx int) {
	if len(oldNode.Children) == 0 && len(newNode.Children) == 0 {
		return
	}
	oldIdxs := d.idx.childIndices(oldNode, oldIdx)
	newIdxs := d.idx.childIndices(newNode, newIdx)
	if hasKeys(oldNode.Children) || hasKeys(newNode.Children) {
		d.diffKeyedChildren(oldNode, newNode, oldIdx, oldIdxs, newIdxs)
		return
	}
	d.diffUnkeyedChildren(oldNode, newNode, oldIdx, oldIdxs, newIdxs)
}

// diffUnkeyedChildren compares children position by position.
func (d *differ) diffUnkeyedChildren(oldNode, newNode *VNode, oldIdx int, oldIdxs, newIdxs []int) {
	oldCh, newCh := oldNode.Children, newNode.Children
	common := min(len(oldCh), len(newCh))

	for i := 0; i < common; i++ {
		d.diffNode(oldCh[i], newCh[i], oldIdxs[i], newIdxs[i])
	}

	// Additions are emitted before removals under every parent, here and
	// in diffKeyedChildren.

	// Excess new children, one batch
	if len(newCh) > common {
		tail := make([]IndexedNode, 0, len(newCh)-common)
		for i := common; i < len(newCh); i++ {
			tail = append(tail, IndexedNode{NewIdx: newIdxs[i], Node: newCh[i]})
		}
		d.emit(NewAppendChildren(newNode.Tag, oldIdx, tail))
	}

	// Excess old children, one patch each
	for i := common; i < len(oldCh); i++ {
		d.emit(NewRemoveNode(tagOf(oldCh[i]), oldIdxs[i]))
	}
}

// diffKeyedChildren matches keyed children by key and the remaining
// children by their position among the unkeyed ones. Matched children are
// diffed in place whatever their new position; there is no move patch.
func (d *differ) diffKeyedChildren(oldNode, newNode *VNode, oldIdx int, oldIdxs, newIdxs []int) {
	oldCh, newCh := oldNode.Children, newNode.Children
	match, taken := matchChildren(oldCh, newCh)

	var pending []int // unmatched new positions
	last := -1        // last new position diffed in place
	for j, c := range newCh {
		if i := match[j]; i >= 0 {
			d.diffNode(oldCh[i], c, oldIdxs[i], newIdxs[j])
			last = j
			continue
		}
		// A lone unmatched child of another kind or tag at the same
		// position is replaced rather than removed and inserted.
		if j < len(oldCh) && !taken[j] && !sameShape(oldCh[j], c) {
			taken[j] = true
			d.emit(NewReplaceNode(tagOf(oldCh[j]), oldIdxs[j], newIdxs[j], c))
			last = j
			continue
		}
		pending = append(pending, j)
	}

	var tail []IndexedNode
	for _, j := range pending {
		if j < last {
			d.emit(NewInsertNode(newNode.Tag, oldIdx, newIdxs[j], j, newCh[j]))
			continue
		}
		tail = append(tail, IndexedNode{NewIdx: newIdxs[j], Node: newCh[j]})
	}
	if len(tail) > 0 {
		d.emit(NewAppendChildren(newNode.Tag, oldIdx, tail))
	}

	// Removals come last, matching diffUnkeyedChildren.
	for i, c := range oldCh {
		if !taken[i] {
			d.emit(NewRemoveNode(tagOf(c), oldIdxs[i]))
		}
	}
}

// matchChildren pairs new children with old ones. match[j] is the old
// position paired with new child j, or -1. taken[i] reports whether old
// child i is paired.
func matchChildren(oldCh, newCh []*VNode) (match []int, taken []bool) {
	match = make([]int, len(newCh))
	taken = make([]bool, len(oldCh))

	byKey := make(map[string]int, len(oldCh))
	var unkeyed []int
	for i, c := range oldCh {
		k, ok := c.Key()
		if !ok {
			unkeyed = append(unkeyed, i)
			continue
		}
		// First occurrence wins
		if _, dup := byKey[k]; !dup {
			byKey[k] = i
		}
	}

	next := 0
	for j, c := range newCh {
		match[j] = -1
		if k, ok := c.Key(); ok {
			if i, found := byKey[k]; found && !taken[i] {
				match[j] = i
				taken[i] = true
			}
			continue
		}
		if next < len(unkeyed) {
			i := unkeyed[next]
			next++
			match[j] = i
			taken[i] = true
		}
	}
	return match, taken
}

// sameShape reports whether two nodes share kind, and tag for elements.
func sameShape(a, b *VNode) bool {
	if a.Kind != b.Kind {
		return false
	}
	return a.Kind == KindText || sameElement(a, b)
}

// hasKeys reports whether any child carries a key attribute.
func hasKeys(children []*VNode) bool {
	for _, c := range children {
		if _, ok := c.Key(); ok {
			return true
		}
	}
	return false
}
