package vdom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffNil(t *testing.T) {
	n := Div()

	assert.Empty(t, Diff(nil, nil))
	assert.Equal(t, []Patch{NewReplaceNode("", 0, 0, n)}, Diff(nil, n))
	assert.Equal(t, []Patch{NewRemoveNode("div", 0)}, Diff(n, nil))
}

func TestDiffIdentical(t *testing.T) {
	cb := NewCallback(func(Event) {})
	build := func() *VNode {
		return Div(ID("app"), Class("a"), Class("b"),
			H1("Title"),
			Ul(
				Li(Key("1"), "one"),
				Li(Key("2"), "two"),
			),
			Button(OnClick(cb), "Save"),
			Svg(NSAttribute("xlink", "href", "#icon")),
			Span(Attribute("data-ratio", math.NaN()), Attribute("data-opts", []any{cb, math.NaN()})),
		)
	}

	tree := build()
	assert.Empty(t, Diff(tree, tree))
	assert.Empty(t, Diff(tree, build()))
}

func TestDiffRootText(t *testing.T) {
	patches := Diff(Text("Old"), Text("New"))
	assert.Equal(t, []Patch{NewChangeText(0, "Old", 0, "New")}, patches)
}

func TestDiffReplace(t *testing.T) {
	tests := []struct {
		name string
		prev *VNode
		next *VNode
		tag  string
	}{
		{"element to text", Div(), Text("x"), "div"},
		{"text to element", Text("x"), Div(), ""},
		{"tag change", Div(Span("deep")), P(Span("deep")), "div"},
		{"namespace change", NSElem(NamespaceSVG, "a"), Elem("a"), "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patches := Diff(tt.prev, tt.next)
			require.Len(t, patches, 1)
			assert.Equal(t, NewReplaceNode(tt.tag, 0, 0, tt.next), patches[0])
			assert.Same(t, tt.next, patches[0].Node)
		})
	}
}

func TestDiffAttributes(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		prev := Div()
		next := Div(ID("main"))
		assert.Equal(t, []Patch{
			NewAddAttributes("div", 0, 0, []*Attr{&next.Attrs[0]}),
		}, Diff(prev, next))
	})

	t.Run("change", func(t *testing.T) {
		prev := Div(ID("a"))
		next := Div(ID("b"))
		patches := Diff(prev, next)
		require.Len(t, patches, 1)
		assert.Equal(t, PatchAddAttributes, patches[0].Op)
		assert.Same(t, &next.Attrs[0], patches[0].Attrs[0])
	})

	t.Run("remove", func(t *testing.T) {
		prev := Div(ID("x"), Class("c"))
		next := Div(Class("c"))
		assert.Equal(t, []Patch{
			NewRemoveAttributes("div", 0, 0, []*Attr{&prev.Attrs[0]}),
		}, Diff(prev, next))
	})

	t.Run("add before remove", func(t *testing.T) {
		prev := Div(ID("a"))
		next := Div(Class("c"))
		assert.Equal(t, []Patch{
			NewAddAttributes("div", 0, 0, []*Attr{&next.Attrs[0]}),
			NewRemoveAttributes("div", 0, 0, []*Attr{&prev.Attrs[0]}),
		}, Diff(prev, next))
	})

	t.Run("type sensitive", func(t *testing.T) {
		prev := Input(Value(1))
		next := Input(Value("1"))
		patches := Diff(prev, next)
		require.Len(t, patches, 1)
		assert.Equal(t, PatchAddAttributes, patches[0].Op)
	})

	t.Run("before children", func(t *testing.T) {
		prev := Div(ID("a"), "t")
		next := Div(ID("b"), "u")
		assert.Equal(t, []Patch{
			NewAddAttributes("div", 0, 0, []*Attr{&next.Attrs[0]}),
			NewChangeText(1, "t", 1, "u"),
		}, Diff(prev, next))
	})
}

func TestDiffMergedAttributes(t *testing.T) {
	prev := Div(Class("a"), Class("b"))

	assert.Empty(t, Diff(prev, Div(Class("a"), Class("b"))))

	fewer := Div(Class("a"))
	assert.Equal(t, []Patch{
		NewAddAttributes("div", 0, 0, []*Attr{&fewer.Attrs[0]}),
	}, Diff(prev, fewer))

	changed := Div(Class("a"), ID("x"), Class("c"))
	assert.Equal(t, []Patch{
		NewAddAttributes("div", 0, 0, []*Attr{&changed.Attrs[0], &changed.Attrs[2], &changed.Attrs[1]}),
	}, Diff(prev, changed))

	reordered := Div(Class("b"), Class("a"))
	require.Len(t, Diff(prev, reordered), 1)
}

func TestDiffCallbacks(t *testing.T) {
	fn := func(Event) {}
	cb := NewCallback(fn)
	copied := cb

	assert.Empty(t, Diff(Button(OnClick(cb)), Button(OnClick(copied))))

	next := Button(OnClick(NewCallback(fn)))
	assert.Equal(t, []Patch{
		NewAddAttributes("button", 0, 0, []*Attr{&next.Attrs[0]}),
	}, Diff(Button(OnClick(cb)), next))

	plain := Button(Attribute("onclick", "save()"))
	patches := Diff(Button(OnClick(cb)), plain)
	require.Len(t, patches, 1)
	assert.Equal(t, PatchAddAttributes, patches[0].Op)
}

func TestDiffUnkeyedChildren(t *testing.T) {
	t.Run("remove all children", func(t *testing.T) {
		prev := Div(B(), Span())
		assert.Equal(t, []Patch{
			NewRemoveNode("b", 1),
			NewRemoveNode("span", 2),
		}, Diff(prev, Div()))
	})

	t.Run("remove grandchild and sibling", func(t *testing.T) {
		prev := Div(Span(B(), I()), Strong())
		next := Div(Span(B()))
		assert.Equal(t, []Patch{
			NewRemoveNode("i", 3),
			NewRemoveNode("strong", 4),
		}, Diff(prev, next))
	})

	t.Run("remove grandchild then replace", func(t *testing.T) {
		prev := Div(B(I(), I()), B())
		next := Div(B(I()), I())
		assert.Equal(t, []Patch{
			NewRemoveNode("i", 3),
			NewReplaceNode("b", 4, 3, next.Children[1]),
		}, Diff(prev, next))
	})

	t.Run("replace siblings", func(t *testing.T) {
		prev := Div(B("text1"), B())
		next := Div(I("text1"), I())
		assert.Equal(t, []Patch{
			NewReplaceNode("b", 1, 1, next.Children[0]),
			NewReplaceNode("b", 3, 3, next.Children[1]),
		}, Diff(prev, next))
	})

	t.Run("append", func(t *testing.T) {
		prev := Div(B())
		next := Div(B(), Span("new"), I())
		assert.Equal(t, []Patch{
			NewAppendChildren("div", 0, []IndexedNode{
				{NewIdx: 2, Node: next.Children[1]},
				{NewIdx: 4, Node: next.Children[2]},
			}),
		}, Diff(prev, next))
	})

	t.Run("append to empty", func(t *testing.T) {
		next := Ul(Li("a"))
		assert.Equal(t, []Patch{
			NewAppendChildren("ul", 0, []IndexedNode{{NewIdx: 1, Node: next.Children[0]}}),
		}, Diff(Ul(), next))
	})

	t.Run("nested text", func(t *testing.T) {
		prev := Div(P("a"), P("b"))
		next := Div(P("a"), P("c"))
		assert.Equal(t, []Patch{NewChangeText(4, "b", 4, "c")}, Diff(prev, next))
	})

	t.Run("new index shifts", func(t *testing.T) {
		prev := Div(P(), P("x"))
		next := Div(P(B(), I()), P("y"))
		assert.Equal(t, []Patch{
			NewAppendChildren("p", 1, []IndexedNode{
				{NewIdx: 2, Node: next.Children[0].Children[0]},
				{NewIdx: 3, Node: next.Children[0].Children[1]},
			}),
			NewChangeText(3, "x", 5, "y"),
		}, Diff(prev, next))
	})
}

func TestDiffKeyedChildren(t *testing.T) {
	t.Run("reorder", func(t *testing.T) {
		prev := Ul(Li(Key("k1"), "A"), Li(Key("k2"), "B"))
		next := Ul(Li(Key("k2"), "B"), Li(Key("k1"), "A"))
		assert.Empty(t, Diff(prev, next))
	})

	t.Run("reorder with change", func(t *testing.T) {
		prev := Ul(Li(Key("k1"), "A"), Li(Key("k2"), "B"))
		next := Ul(Li(Key("k2"), "B2"), Li(Key("k1"), "A"))
		assert.Equal(t, []Patch{NewChangeText(4, "B", 2, "B2")}, Diff(prev, next))
	})

	t.Run("insert in middle", func(t *testing.T) {
		prev := Ul(Li(Key("a")), Li(Key("c")))
		next := Ul(Li(Key("a")), Li(Key("b")), Li(Key("c")))
		assert.Equal(t, []Patch{
			NewInsertNode("ul", 0, 2, 1, next.Children[1]),
		}, Diff(prev, next))
	})

	t.Run("append", func(t *testing.T) {
		prev := Ul(Li(Key("a")))
		next := Ul(Li(Key("a")), Li(Key("b")))
		assert.Equal(t, []Patch{
			NewAppendChildren("ul", 0, []IndexedNode{{NewIdx: 2, Node: next.Children[1]}}),
		}, Diff(prev, next))
	})

	t.Run("remove", func(t *testing.T) {
		prev := Ul(Li(Key("a")), Li(Key("b")), Li(Key("c")))
		next := Ul(Li(Key("a")), Li(Key("c")))
		assert.Equal(t, []Patch{NewRemoveNode("li", 2)}, Diff(prev, next))
	})

	t.Run("remove all", func(t *testing.T) {
		prev := Ul(Li(Key("a")), Li(Key("b")))
		assert.Equal(t, []Patch{
			NewRemoveNode("li", 1),
			NewRemoveNode("li", 2),
		}, Diff(prev, Ul()))
	})

	t.Run("key change", func(t *testing.T) {
		prev := Div(Li(Key("a")))
		next := Div(Li(Key("b")))
		assert.Equal(t, []Patch{
			NewAppendChildren("div", 0, []IndexedNode{{NewIdx: 1, Node: next.Children[0]}}),
			NewRemoveNode("li", 1),
		}, Diff(prev, next))
	})

	t.Run("replace different tag", func(t *testing.T) {
		prev := Div(P(Key("a")), Span(Key("x")))
		next := Div(P(Key("a")), B(Key("y")))
		assert.Equal(t, []Patch{
			NewReplaceNode("span", 2, 2, next.Children[1]),
		}, Diff(prev, next))
	})

	t.Run("duplicate key in new list", func(t *testing.T) {
		prev := Ul(Li(Key("a")))
		next := Ul(Li(Key("a")), Li(Key("a")))
		assert.Equal(t, []Patch{
			NewAppendChildren("ul", 0, []IndexedNode{{NewIdx: 2, Node: next.Children[1]}}),
		}, Diff(prev, next))
	})

	t.Run("duplicate key in old list", func(t *testing.T) {
		prev := Ul(Li(Key("a"), "1"), Li(Key("a"), "2"))
		next := Ul(Li(Key("a"), "1"))
		assert.Equal(t, []Patch{NewRemoveNode("li", 3)}, Diff(prev, next))
	})

	t.Run("mixed keyed and unkeyed", func(t *testing.T) {
		prev := Ul(Li(Key("a")), "t")
		next := Ul("t2", Li(Key("a")))
		assert.Equal(t, []Patch{NewChangeText(2, "t", 1, "t2")}, Diff(prev, next))
	})

	t.Run("keyed on new side only", func(t *testing.T) {
		prev := Ul(Li("x"))
		next := Ul(Li(Key("a"), "x"))
		assert.Equal(t, []Patch{
			NewAppendChildren("ul", 0, []IndexedNode{{NewIdx: 1, Node: next.Children[0]}}),
			NewRemoveNode("li", 1),
		}, Diff(prev, next))
	})
}

func TestDiffAdditionsBeforeRemovals(t *testing.T) {
	additionsFirst := func(t *testing.T, patches []Patch) {
		t.Helper()
		removing := false
		for _, p := range patches {
			switch p.Op {
			case PatchRemoveNode:
				removing = true
			case PatchInsertNode, PatchAppendChildren:
				assert.False(t, removing, "addition after removal in %v", patches)
			}
		}
	}

	t.Run("keyed", func(t *testing.T) {
		prev := Ul(Li(Key("a")), Li(Key("b")), Li(Key("c")))
		next := Ul(Li(Key("d")), Li(Key("a")), Li(Key("e")))
		patches := Diff(prev, next)
		require.NotEmpty(t, patches)
		additionsFirst(t, patches)
		assert.Equal(t, PatchRemoveNode, patches[len(patches)-1].Op)
	})

	t.Run("nested unkeyed and keyed", func(t *testing.T) {
		prev := Div(Ul(Li(Key("a")), Li(Key("b"))), P("x"), P("y"))
		next := Div(Ul(Li(Key("c")), Li(Key("a"))), P("x"))
		patches := Diff(prev, next)
		require.NotEmpty(t, patches)
		additionsFirst(t, patches)
	})
}

func TestDiffDeterministic(t *testing.T) {
	prev := Div(Class("a"), ID("x"), Data("n", "1"),
		Ul(Li(Key("1"), "one"), Li(Key("2"), "two"), Li(Key("3"), "three")),
		P("tail"),
	)
	next := Div(Class("b"), Data("m", "2"),
		Ul(Li(Key("3"), "three"), Li(Key("4"), "four"), Li(Key("1"), "uno")),
		P("end"), Span(),
	)

	first := Diff(prev, next)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Diff(prev, next))
	}
}

func TestDiffDoesNotMutate(t *testing.T) {
	prev := Div(ID("a"), Ul(Li(Key("1"), "one")))
	next := Div(ID("b"), Ul(Li(Key("2"), "two"), Li(Key("1"), "uno")))
	prevStr, nextStr := prev.String(), next.String()

	Diff(prev, next)

	assert.Equal(t, prevStr, prev.String())
	assert.Equal(t, nextStr, next.String())
}
