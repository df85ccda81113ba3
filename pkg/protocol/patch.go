package protocol

import (
	"fmt"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// PatchOp is the type of patch operation. Values match vdom.PatchOp.
type PatchOp uint8

const (
	PatchReplaceNode      = PatchOp(vdom.PatchReplaceNode)
	PatchInsertNode       = PatchOp(vdom.PatchInsertNode)
	PatchAppendChildren   = PatchOp(vdom.PatchAppendChildren)
	PatchRemoveNode       = PatchOp(vdom.PatchRemoveNode)
	PatchAddAttributes    = PatchOp(vdom.PatchAddAttributes)
	PatchRemoveAttributes = PatchOp(vdom.PatchRemoveAttributes)
	PatchChangeText       = PatchOp(vdom.PatchChangeText)
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	return vdom.PatchOp(op).String()
}

// IndexedNodeWire is an appended child with its new-tree index.
type IndexedNodeWire struct {
	NewIdx int
	Node   *NodeWire
}

// Patch is the wire form of a vdom.Patch. Fields are used per Op exactly as
// in vdom.Patch.
type Patch struct {
	Op       PatchOp
	Tag      string
	OldIdx   int
	NewIdx   int
	Pos      int
	Node     *NodeWire         // For ReplaceNode/InsertNode
	Children []IndexedNodeWire // For AppendChildren
	Attrs    []AttrWire        // For AddAttributes/RemoveAttributes
	OldText  string            // For ChangeText
	NewText  string            // For ChangeText
}

// PatchesFrame represents a batch of patches with sequence number.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// PatchFromVDOM converts one vdom patch to wire form.
func PatchFromVDOM(p vdom.Patch) Patch {
	w := Patch{
		Op:      PatchOp(p.Op),
		Tag:     p.Tag,
		OldIdx:  p.OldIdx,
		NewIdx:  p.NewIdx,
		Pos:     p.Pos,
		Node:    NodeToWire(p.Node),
		OldText: p.OldText,
		NewText: p.NewText,
	}
	if len(p.Children) > 0 {
		w.Children = make([]IndexedNodeWire, len(p.Children))
		for i, c := range p.Children {
			w.Children[i] = IndexedNodeWire{NewIdx: c.NewIdx, Node: NodeToWire(c.Node)}
		}
	}
	if len(p.Attrs) > 0 {
		w.Attrs = make([]AttrWire, len(p.Attrs))
		for i, a := range p.Attrs {
			w.Attrs[i] = AttrToWire(*a)
		}
	}
	return w
}

// FromVDOM converts a diff result to wire form.
func FromVDOM(patches []vdom.Patch) []Patch {
	out := make([]Patch, len(patches))
	for i, p := range patches {
		out[i] = PatchFromVDOM(p)
	}
	return out
}

// EncodePatches encodes a patches frame to bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame using the provided encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteIndex(len(pf.Patches))

	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
}

func encodePatch(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))

	switch p.Op {
	case PatchReplaceNode:
		e.WriteString(p.Tag)
		e.WriteIndex(p.OldIdx)
		e.WriteIndex(p.NewIdx)
		EncodeNodeWire(e, p.Node)

	case PatchInsertNode:
		e.WriteString(p.Tag)
		e.WriteIndex(p.OldIdx)
		e.WriteIndex(p.NewIdx)
		e.WriteIndex(p.Pos)
		EncodeNodeWire(e, p.Node)

	case PatchAppendChildren:
		e.WriteString(p.Tag)
		e.WriteIndex(p.OldIdx)
		e.WriteIndex(len(p.Children))
		for _, c := range p.Children {
			e.WriteIndex(c.NewIdx)
			EncodeNodeWire(e, c.Node)
		}

	case PatchRemoveNode:
		e.WriteString(p.Tag)
		e.WriteIndex(p.OldIdx)

	case PatchAddAttributes, PatchRemoveAttributes:
		e.WriteString(p.Tag)
		e.WriteIndex(p.OldIdx)
		e.WriteIndex(p.NewIdx)
		e.WriteIndex(len(p.Attrs))
		for i := range p.Attrs {
			encodeAttrWire(e, &p.Attrs[i])
		}

	case PatchChangeText:
		e.WriteIndex(p.OldIdx)
		e.WriteString(p.OldText)
		e.WriteIndex(p.NewIdx)
		e.WriteString(p.NewText)
	}
}

// DecodePatches decodes a patches frame from bytes.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	return DecodePatchesFrom(d)
}

// DecodePatchesFrom decodes a patches frame from a decoder.
func DecodePatchesFrom(d *Decoder) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	pf := &PatchesFrame{
		Seq:     seq,
		Patches: make([]Patch, count),
	}
	for i := range pf.Patches {
		if err := decodePatch(d, &pf.Patches[i]); err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
	}

	return pf, nil
}

func decodePatch(d *Decoder, p *Patch) error {
	op, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = PatchOp(op)

	switch p.Op {
	case PatchReplaceNode:
		if p.Tag, err = d.ReadString(); err != nil {
			return err
		}
		if p.OldIdx, err = d.ReadIndex(); err != nil {
			return err
		}
		if p.NewIdx, err = d.ReadIndex(); err != nil {
			return err
		}
		p.Node, err = DecodeNodeWire(d)
		return err

	case PatchInsertNode:
		if p.Tag, err = d.ReadString(); err != nil {
			return err
		}
		if p.OldIdx, err = d.ReadIndex(); err != nil {
			return err
		}
		if p.NewIdx, err = d.ReadIndex(); err != nil {
			return err
		}
		if p.Pos, err = d.ReadIndex(); err != nil {
			return err
		}
		p.Node, err = DecodeNodeWire(d)
		return err

	case PatchAppendChildren:
		if p.Tag, err = d.ReadString(); err != nil {
			return err
		}
		if p.OldIdx, err = d.ReadIndex(); err != nil {
			return err
		}
		n, err := d.ReadCollectionCount()
		if err != nil {
			return err
		}
		p.Children = make([]IndexedNodeWire, n)
		for i := range p.Children {
			if p.Children[i].NewIdx, err = d.ReadIndex(); err != nil {
				return err
			}
			if p.Children[i].Node, err = DecodeNodeWire(d); err != nil {
				return err
			}
		}
		return nil

	case PatchRemoveNode:
		if p.Tag, err = d.ReadString(); err != nil {
			return err
		}
		p.OldIdx, err = d.ReadIndex()
		return err

	case PatchAddAttributes, PatchRemoveAttributes:
		if p.Tag, err = d.ReadString(); err != nil {
			return err
		}
		if p.OldIdx, err = d.ReadIndex(); err != nil {
			return err
		}
		if p.NewIdx, err = d.ReadIndex(); err != nil {
			return err
		}
		n, err := d.ReadCollectionCount()
		if err != nil {
			return err
		}
		p.Attrs = make([]AttrWire, n)
		for i := range p.Attrs {
			if p.Attrs[i], err = decodeAttrWire(d); err != nil {
				return err
			}
		}
		return nil

	case PatchChangeText:
		if p.OldIdx, err = d.ReadIndex(); err != nil {
			return err
		}
		if p.OldText, err = d.ReadString(); err != nil {
			return err
		}
		if p.NewIdx, err = d.ReadIndex(); err != nil {
			return err
		}
		p.NewText, err = d.ReadString()
		return err

	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownPatchOp, op)
	}
}
