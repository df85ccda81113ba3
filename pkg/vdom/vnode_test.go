package vdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVKindString(t *testing.T) {
	assert.Equal(t, "Element", KindElement.String())
	assert.Equal(t, "Text", KindText.String())
	assert.Equal(t, "Unknown", VKind(9).String())
}

func TestElementBuilder(t *testing.T) {
	var nilNode *VNode
	node := Div(
		ID("main"),
		nil,
		[]Attr{Class("a"), {}},
		"hello",
		nilNode,
		[]*VNode{Span(), nil},
	)

	require.True(t, node.IsElement())
	assert.Equal(t, "div", node.Tag)
	assert.Equal(t, []Attr{ID("main"), Class("a")}, node.Attrs)
	require.Len(t, node.Children, 2)
	assert.True(t, node.Children[0].IsText())
	assert.Equal(t, "hello", node.Children[0].Text)
	assert.Equal(t, "span", node.Children[1].Tag)

	assert.Panics(t, func() { Div(42) })
}

func TestNSElem(t *testing.T) {
	node := Svg(NSAttribute("xlink", "href", "#a"))
	assert.Equal(t, NamespaceSVG, node.Namespace)
	assert.Equal(t, "xlink:href", node.Attrs[0].QualifiedName())
}

func TestVNodeKey(t *testing.T) {
	k, ok := Li(Key(42)).Key()
	assert.True(t, ok)
	assert.Equal(t, "42", k)

	k, ok = Li(Attribute("key", "first"), Attribute("key", "second")).Key()
	assert.True(t, ok)
	assert.Equal(t, "first", k)

	_, ok = Li(NSAttribute("x", "key", "ns")).Key()
	assert.False(t, ok)

	_, ok = Text("key").Key()
	assert.False(t, ok)
}

func TestVNodeSizeAndNodeAt(t *testing.T) {
	// div0 [ b1 [ i2, i3 ], span4 [ "t"5 ], p6 ]
	tree := Div(B(I(), I()), Span("t"), P())

	assert.Equal(t, 7, tree.Size())
	assert.Equal(t, 0, (*VNode)(nil).Size())

	tags := map[int]string{0: "div", 1: "b", 2: "i", 3: "i", 4: "span", 6: "p"}
	for idx, tag := range tags {
		n := tree.NodeAt(idx)
		require.NotNil(t, n, "index %d", idx)
		assert.Equal(t, tag, n.Tag, "index %d", idx)
	}
	assert.Equal(t, "t", tree.NodeAt(5).Text)
	assert.Nil(t, tree.NodeAt(7))
	assert.Nil(t, tree.NodeAt(-1))
}

func TestVNodeWalk(t *testing.T) {
	tree := Div(B(I(), I()), Span("t"), P())

	var visited []int
	tree.Walk(func(n *VNode, idx int) bool {
		visited = append(visited, idx)
		return n.Tag != "b"
	})
	assert.Equal(t, []int{0, 1, 4, 5, 6}, visited)
}

func TestIndexerMatchesWalk(t *testing.T) {
	tree := Div(B(I(), I("x")), Span("t"), Ul(Li(), Li(P())))
	x := newIndexer()

	var check func(n *VNode, idx int)
	check = func(n *VNode, idx int) {
		assert.Same(t, n, tree.NodeAt(idx))
		assert.Equal(t, n.Size(), x.size(n))
		for i, ci := range x.childIndices(n, idx) {
			check(n.Children[i], ci)
		}
	}
	check(tree, 0)
}

func TestEqual(t *testing.T) {
	cb := NewCallback(nil)
	a := Div(Class("x"), OnClick(cb), Span("t"))

	assert.True(t, Equal(a, Div(Class("x"), OnClick(cb), Span("t"))))
	assert.False(t, Equal(a, Div(Class("x"), OnClick(NewCallback(nil)), Span("t"))))
	assert.False(t, Equal(a, Div(Class("x"), OnClick(cb), Span("u"))))
	assert.False(t, Equal(a, Div(Class("x"), OnClick(cb))))
	assert.False(t, Equal(a, P(Class("x"), OnClick(cb), Span("t"))))
	assert.False(t, Equal(a, Text("t")))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(a, nil))
}

func TestVNodeString(t *testing.T) {
	node := Div(ID("a"), Span("hi"), Button(OnClick(func() {})))
	assert.Equal(t, `<div id="a"><span>"hi"</span><button onclick={callback}/></div>`, node.String())
	assert.Equal(t, "<nil>", (*VNode)(nil).String())
}
