package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

func TestNodeWireRoundTrip(t *testing.T) {
	node := vdom.Div(
		vdom.ID("root"), vdom.Class("a"), vdom.Class("b"),
		vdom.Value(int64(-4)), vdom.Attribute("scale", 1.25), vdom.Disabled(true),
		vdom.OnClick(func() {}),
		vdom.Svg(vdom.NSAttribute("xlink", "href", "#i")),
		vdom.P("text"),
	)

	w := NodeToWire(node)
	e := NewEncoder()
	EncodeNodeWire(e, w)

	decoded, err := DecodeNodeWire(NewDecoder(e.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, w, decoded)

	back := decoded.ToVNode()
	assert.Equal(t, vdom.NamespaceSVG, back.Children[0].Namespace)
	assert.True(t, back.Attrs[6].IsCallback())
	assert.Equal(t, int64(-4), back.Attrs[3].Value)

	// Everything but the handler lineage survives.
	assert.Empty(t, vdom.Diff(back, decoded.ToVNode()))
	assert.Len(t, vdom.Diff(node, back), 1)
}

func TestNodeWireNil(t *testing.T) {
	assert.Nil(t, NodeToWire(nil))
	assert.Nil(t, (*NodeWire)(nil).ToVNode())

	e := NewEncoder()
	EncodeNodeWire(e, nil)
	n, err := DecodeNodeWire(NewDecoder(e.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestAttrToWireFallback(t *testing.T) {
	type point struct{ X, Y int }
	w := AttrToWire(vdom.Attribute("p", point{1, 2}))
	assert.Equal(t, ValueString, w.Kind)
	assert.Equal(t, "{1 2}", w.Value)

	w = AttrToWire(vdom.Attribute("n", 7))
	assert.Equal(t, AttrWire{Name: "n", Kind: ValueInt, Value: int64(7)}, w)
}

func TestDecodeNodeWireLimits(t *testing.T) {
	t.Run("depth", func(t *testing.T) {
		node := NewTextWire("leaf")
		for i := 0; i < MaxNodeDepth+1; i++ {
			node = NewElementWire("div", nil, node)
		}
		e := NewEncoder()
		EncodeNodeWire(e, node)
		_, err := DecodeNodeWire(NewDecoder(e.Bytes()))
		assert.ErrorIs(t, err, ErrMaxDepthExceeded)
	})

	t.Run("max depth accepted", func(t *testing.T) {
		node := NewTextWire("leaf")
		for i := 0; i < MaxNodeDepth; i++ {
			node = NewElementWire("div", nil, node)
		}
		e := NewEncoder()
		EncodeNodeWire(e, node)
		_, err := DecodeNodeWire(NewDecoder(e.Bytes()))
		assert.NoError(t, err)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := DecodeNodeWire(NewDecoder([]byte{0x09}))
		assert.ErrorIs(t, err, ErrInvalidNodeKind)
	})

	t.Run("invalid value kind", func(t *testing.T) {
		e := NewEncoder()
		e.WriteByte(byte(vdom.KindElement))
		e.WriteString("")
		e.WriteString("div")
		e.WriteIndex(1)
		e.WriteString("")
		e.WriteString("id")
		e.WriteByte(0x42)
		_, err := DecodeNodeWire(NewDecoder(e.Bytes()))
		assert.ErrorIs(t, err, ErrInvalidValueKind)
	})

	t.Run("nil child", func(t *testing.T) {
		e := NewEncoder()
		e.WriteByte(byte(vdom.KindElement))
		e.WriteString("")
		e.WriteString("div")
		e.WriteIndex(0)
		e.WriteIndex(1)
		e.WriteByte(0xFF)
		_, err := DecodeNodeWire(NewDecoder(e.Bytes()))
		assert.ErrorIs(t, err, ErrNilChild)
	})

	t.Run("oversized text", func(t *testing.T) {
		e := NewEncoder()
		EncodeNodeWire(e, NewTextWire(strings.Repeat("x", 64)))
		_, err := DecodeNodeWire(NewDecoder(e.Bytes()[:10]))
		assert.Error(t, err)
	})
}
