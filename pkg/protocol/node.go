package protocol

import (
	"fmt"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// ValueKind tags the type of an attribute value on the wire.
type ValueKind uint8

const (
	ValueString  ValueKind = 0x00
	ValueBool    ValueKind = 0x01
	ValueInt     ValueKind = 0x02
	ValueFloat   ValueKind = 0x03
	ValueHandler ValueKind = 0x04 // Callback marker, no payload
)

// AttrWire is the wire form of a single attribute.
type AttrWire struct {
	Namespace string
	Name      string
	Kind      ValueKind
	Value     any // string, bool, int64 or float64; nil for handlers
}

// NodeWire is the wire format for nodes.
// Callbacks cannot cross the wire; they are sent as handler markers.
type NodeWire struct {
	Kind      vdom.VKind  // Node type
	Namespace string      // Element namespace
	Tag       string      // Element tag name
	Attrs     []AttrWire  // Attributes in build order
	Children  []*NodeWire // Child nodes
	Text      string      // For text nodes
}

// AttrToWire converts a vdom attribute to wire form. Integer values widen to
// int64; values with no native wire kind travel as their string form.
func AttrToWire(a vdom.Attr) AttrWire {
	w := AttrWire{Namespace: a.Namespace, Name: a.Name}
	switch v := a.Value.(type) {
	case string:
		w.Kind, w.Value = ValueString, v
	case bool:
		w.Kind, w.Value = ValueBool, v
	case int:
		w.Kind, w.Value = ValueInt, int64(v)
	case int32:
		w.Kind, w.Value = ValueInt, int64(v)
	case int64:
		w.Kind, w.Value = ValueInt, v
	case float32:
		w.Kind, w.Value = ValueFloat, float64(v)
	case float64:
		w.Kind, w.Value = ValueFloat, v
	case vdom.Callback, *vdom.Callback:
		w.Kind = ValueHandler
	default:
		s, _ := vdom.ValueString(v)
		w.Kind, w.Value = ValueString, s
	}
	return w
}

// NodeToWire converts a vdom.VNode to wire format.
func NodeToWire(node *vdom.VNode) *NodeWire {
	if node == nil {
		return nil
	}

	w := &NodeWire{
		Kind:      node.Kind,
		Namespace: node.Namespace,
		Tag:       node.Tag,
		Text:      node.Text,
	}

	if len(node.Attrs) > 0 {
		w.Attrs = make([]AttrWire, len(node.Attrs))
		for i, a := range node.Attrs {
			w.Attrs[i] = AttrToWire(a)
		}
	}

	if len(node.Children) > 0 {
		w.Children = make([]*NodeWire, 0, len(node.Children))
		for _, child := range node.Children {
			if child != nil {
				w.Children = append(w.Children, NodeToWire(child))
			}
		}
	}

	return w
}

func encodeAttrWire(e *Encoder, a *AttrWire) {
	e.WriteString(a.Namespace)
	e.WriteString(a.Name)
	e.WriteByte(byte(a.Kind))
	switch a.Kind {
	case ValueString:
		s, _ := a.Value.(string)
		e.WriteString(s)
	case ValueBool:
		b, _ := a.Value.(bool)
		e.WriteBool(b)
	case ValueInt:
		n, _ := a.Value.(int64)
		e.WriteSvarint(n)
	case ValueFloat:
		f, _ := a.Value.(float64)
		e.WriteFloat64(f)
	case ValueHandler:
		// Marker only
	}
}

func decodeAttrWire(d *Decoder) (AttrWire, error) {
	var a AttrWire
	var err error
	if a.Namespace, err = d.ReadString(); err != nil {
		return a, err
	}
	if a.Name, err = d.ReadString(); err != nil {
		return a, err
	}
	kind, err := d.ReadByte()
	if err != nil {
		return a, err
	}
	a.Kind = ValueKind(kind)
	switch a.Kind {
	case ValueString:
		a.Value, err = d.ReadString()
	case ValueBool:
		a.Value, err = d.ReadBool()
	case ValueInt:
		a.Value, err = d.ReadSvarint()
	case ValueFloat:
		a.Value, err = d.ReadFloat64()
	case ValueHandler:
	default:
		return a, fmt.Errorf("%w: %d", ErrInvalidValueKind, kind)
	}
	return a, err
}

// EncodeNodeWire encodes a NodeWire to bytes using the provided encoder.
func EncodeNodeWire(e *Encoder, node *NodeWire) {
	if node == nil {
		e.WriteByte(0xFF) // Null marker
		return
	}

	e.WriteByte(byte(node.Kind))

	switch node.Kind {
	case vdom.KindElement:
		e.WriteString(node.Namespace)
		e.WriteString(node.Tag)

		e.WriteIndex(len(node.Attrs))
		for i := range node.Attrs {
			encodeAttrWire(e, &node.Attrs[i])
		}

		e.WriteIndex(len(node.Children))
		for _, child := range node.Children {
			EncodeNodeWire(e, child)
		}

	case vdom.KindText:
		e.WriteString(node.Text)
	}
}

// DecodeNodeWire decodes a NodeWire from the decoder.
// Trees nested deeper than MaxNodeDepth are rejected.
func DecodeNodeWire(d *Decoder) (*NodeWire, error) {
	return decodeNodeWireWithDepth(d, 0)
}

func decodeNodeWireWithDepth(d *Decoder, depth int) (*NodeWire, error) {
	if depth > MaxNodeDepth {
		return nil, ErrMaxDepthExceeded
	}

	kindByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	if kindByte == 0xFF {
		return nil, nil
	}

	node := &NodeWire{
		Kind: vdom.VKind(kindByte),
	}

	switch node.Kind {
	case vdom.KindElement:
		if node.Namespace, err = d.ReadString(); err != nil {
			return nil, err
		}
		if node.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}

		attrCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		if attrCount > 0 {
			node.Attrs = make([]AttrWire, attrCount)
			for i := range node.Attrs {
				if node.Attrs[i], err = decodeAttrWire(d); err != nil {
					return nil, err
				}
			}
		}

		childCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		if childCount > 0 {
			node.Children = make([]*NodeWire, childCount)
			for i := range node.Children {
				child, err := decodeNodeWireWithDepth(d, depth+1)
				if err != nil {
					return nil, err
				}
				if child == nil {
					return nil, ErrNilChild
				}
				node.Children[i] = child
			}
		}

	case vdom.KindText:
		if node.Text, err = d.ReadString(); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidNodeKind, kindByte)
	}

	return node, nil
}

// ToVNode converts a NodeWire back to a vdom.VNode.
// Handler markers come back as zero Callbacks, which all compare equal.
func (w *NodeWire) ToVNode() *vdom.VNode {
	if w == nil {
		return nil
	}

	node := &vdom.VNode{
		Kind:      w.Kind,
		Namespace: w.Namespace,
		Tag:       w.Tag,
		Text:      w.Text,
	}

	if len(w.Attrs) > 0 {
		node.Attrs = make([]vdom.Attr, len(w.Attrs))
		for i, a := range w.Attrs {
			node.Attrs[i] = a.ToAttr()
		}
	}

	if len(w.Children) > 0 {
		node.Children = make([]*vdom.VNode, len(w.Children))
		for i, child := range w.Children {
			node.Children[i] = child.ToVNode()
		}
	}

	return node
}

// ToAttr converts a wire attribute back to a vdom attribute.
func (a AttrWire) ToAttr() vdom.Attr {
	if a.Kind == ValueHandler {
		return vdom.Attr{Namespace: a.Namespace, Name: a.Name, Value: vdom.Callback{}}
	}
	return vdom.Attr{Namespace: a.Namespace, Name: a.Name, Value: a.Value}
}

// NewTextWire creates a text NodeWire.
func NewTextWire(text string) *NodeWire {
	return &NodeWire{
		Kind: vdom.KindText,
		Text: text,
	}
}

// NewElementWire creates an element NodeWire.
func NewElementWire(tag string, attrs []AttrWire, children ...*NodeWire) *NodeWire {
	return &NodeWire{
		Kind:     vdom.KindElement,
		Tag:      tag,
		Attrs:    attrs,
		Children: children,
	}
}
