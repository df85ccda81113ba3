// Package protocol implements the binary wire format for vdiff patches and
// trees.
//
// A diff result travels as a PatchesFrame: a sequence number followed by the
// patch list. Trees travel as NodeWire values. Both are designed so that a
// client holding the old tree can apply the patches without any further
// context: every target is addressed by its preorder traversal index.
//
// # Frames
//
// Every WebSocket message is one Frame: [type:1][flags:1][length:2][payload].
// FrameSnapshot carries a snapshot document from client to server,
// FramePatches a PatchesFrame back and FrameError an ErrorMessage. With
// FlagCompressed set the payload is an LZ4 block prefixed by the raw size.
//
// Integers are varints (signed ones ZigZag), strings are length-prefixed and
// fixed-width values are big-endian. A patch starts with its op byte; a
// RemoveNode of <b> at index 3 is four bytes:
//
//	[0x04][0x01 'b'][0x03]
//
// # Usage
//
//	data := EncodePatches(&PatchesFrame{Seq: 1, Patches: FromVDOM(patches)})
//	frame, err := CompressFrame(FramePatches, data, 512)
//	...
//	wire, err := frame.Encode()
//
// and on the receiving side:
//
//	f, err := DecodeFrame(wire)
//	payload, err := f.Data()
//	pf, err := DecodePatches(payload)
//
// # Limits
//
// Decoding never trusts length prefixes: strings are capped at
// DefaultMaxAllocation bytes, collections at MaxCollectionCount items and
// node trees at MaxNodeDepth levels.
package protocol
