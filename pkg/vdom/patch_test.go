package vdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchOpString(t *testing.T) {
	for _, op := range PatchOps {
		assert.NotEqual(t, "Unknown", op.String())
	}
	assert.Equal(t, "Unknown", PatchOp(0).String())
}

func TestPatchString(t *testing.T) {
	attrs := []Attr{ID("x")}
	node := Span("hi")

	tests := []struct {
		patch Patch
		want  string
	}{
		{NewReplaceNode("b", 4, 3, I()), "ReplaceNode b@4 -> #3 <i/>"},
		{NewReplaceNode("", 0, 0, Div()), "ReplaceNode #text@0 -> #0 <div/>"},
		{NewInsertNode("ul", 0, 2, 1, Li()), "InsertNode under ul@0 pos 1 #2 <li/>"},
		{NewAppendChildren("div", 0, []IndexedNode{{NewIdx: 2, Node: node}}), `AppendChildren to div@0 [#2 <span>"hi"</span>]`},
		{NewRemoveNode("i", 3), "RemoveNode i@3"},
		{NewAddAttributes("div", 0, 0, []*Attr{&attrs[0]}), `AddAttributes div@0 [id="x"]`},
		{NewRemoveAttributes("div", 1, 2, []*Attr{&attrs[0]}), `RemoveAttributes div@1 [id="x"]`},
		{NewChangeText(0, "Old", 0, "New"), `ChangeText @0 "Old" -> "New"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.patch.String())
	}
}

func TestSummarize(t *testing.T) {
	patches := Diff(
		Div(ID("a"), B(), Span(), "t"),
		Div(ID("b"), I(), "u"),
	)
	counts := Summarize(patches)

	assert.Equal(t, 1, counts[PatchAddAttributes])
	assert.Equal(t, 2, counts[PatchReplaceNode])
	assert.Equal(t, 1, counts[PatchRemoveNode])
	assert.Equal(t, 0, counts[PatchChangeText])
}
