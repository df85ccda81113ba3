package vdom

// diffAttrs compares merged attribute lists. add holds every new name that
// is absent from old or carries different values; remove holds every old
// name that is absent from new. Both keep merged order.
func diffAttrs(oldAttrs, newAttrs []MergedAttr) (add, remove []MergedAttr) {
	if len(oldAttrs) == 0 && len(newAttrs) == 0 {
		return nil, nil
	}
	oldByName := make(map[attrName]int, len(oldAttrs))
	for i, m := range oldAttrs {
		oldByName[m.key()] = i
	}
	newNames := make(map[attrName]struct{}, len(newAttrs))
	for _, m := range newAttrs {
		newNames[m.key()] = struct{}{}
		j, ok := oldByName[m.key()]
		if !ok || !oldAttrs[j].Equal(m) {
			add = append(add, m)
		}
	}
	for _, m := range oldAttrs {
		if _, ok := newNames[m.key()]; !ok {
			remove = append(remove, m)
		}
	}
	return add, remove
}

// attrRefs resolves merged attributes back to the element's own Attrs.
func attrRefs(n *VNode, merged []MergedAttr) []*Attr {
	var refs []*Attr
	for _, m := range merged {
		for _, i := range m.Index {
			refs = append(refs, &n.Attrs[i])
		}
	}
	return refs
}

// diffElementAttrs appends the attribute patches for a matched element pair.
func (d *differ) diffElementAttrs(oldNode, newNode *VNode, oldIdx, newIdx int) {
	add, remove := diffAttrs(oldNode.MergedAttrs(), newNode.MergedAttrs())
	if len(add) > 0 {
		d.emit(NewAddAttributes(newNode.Tag, oldIdx, newIdx, attrRefs(newNode, add)))
	}
	if len(remove) > 0 {
		d.emit(NewRemoveAttributes(oldNode.Tag, oldIdx, newIdx, attrRefs(oldNode, remove)))
	}
}
