package vdom

// indexer computes preorder traversal indices. Subtree sizes are memoized
// for the lifetime of one Diff call.
type indexer struct {
	sizes map[*VNode]int
}

func newIndexer() *indexer {
	return &indexer{sizes: make(map[*VNode]int)}
}

// size returns the number of nodes in the subtree rooted at n.
func (x *indexer) size(n *VNode) int {
	if n == nil {
		return 0
	}
	if s, ok := x.sizes[n]; ok {
		return s
	}
	s := 1
	for _, c := range n.Children {
		s += x.size(c)
	}
	x.sizes[n] = s
	return s
}

// childIndices returns the traversal index of each child of the node at
// index idx. The i'th child sits after the parent and every earlier sibling
// subtree.
func (x *indexer) childIndices(n *VNode, idx int) []int {
	out := make([]int, len(n.Children))
	next := idx + 1
	for i, c := range n.Children {
		out[i] = next
		next += x.size(c)
	}
	return out
}
