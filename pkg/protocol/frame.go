package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the maximum payload size (2^16 - 1 bytes).
	MaxPayloadSize = 65535

	// MaxUncompressedSize caps the declared raw size of compressed payloads.
	MaxUncompressedSize = DefaultMaxAllocation
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameSnapshot FrameType = 0x01 // Client → Server tree snapshot
	FramePatches  FrameType = 0x02 // Server → Client patches
	FrameError    FrameType = 0x03 // Error message
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameSnapshot:
		return "Snapshot"
	case FramePatches:
		return "Patches"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Valid reports whether ft is a known frame type.
func (ft FrameType) Valid() bool {
	return ft >= FrameSnapshot && ft <= FrameError
}

// FrameFlags are optional flags for frame processing.
type FrameFlags uint8

const (
	FlagCompressed FrameFlags = 0x01 // Payload is an LZ4 block
)

// Has returns true if the flags contain the specified flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
	ErrCorruptPayload   = errors.New("protocol: corrupt compressed payload")
)

// Frame is one WebSocket message: a 4-byte header followed by the payload.
//
//	[type:1][flags:1][payload length:2 big-endian][payload]
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

func NewFrameWithFlags(ft FrameType, flags FrameFlags, payload []byte) *Frame {
	return &Frame{Type: ft, Flags: flags, Payload: payload}
}

// Encode returns the header and payload. Payloads over MaxPayloadSize are
// rejected.
func (f *Frame) Encode() ([]byte, error) {
	if len(f.Payload) > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, FrameHeaderSize, FrameHeaderSize+len(f.Payload))
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	binary.BigEndian.PutUint16(buf[2:], uint16(len(f.Payload)))
	return append(buf, f.Payload...), nil
}

// Data returns the payload, decompressing it when FlagCompressed is set.
func (f *Frame) Data() ([]byte, error) {
	if !f.Flags.Has(FlagCompressed) {
		return f.Payload, nil
	}
	return decompress(f.Payload)
}

func parseHeader(h []byte) (*Frame, int, error) {
	ft := FrameType(h[0])
	if !ft.Valid() {
		return nil, 0, fmt.Errorf("%w: 0x%02x", ErrInvalidFrameType, h[0])
	}
	return &Frame{Type: ft, Flags: FrameFlags(h[1])}, int(binary.BigEndian.Uint16(h[2:])), nil
}

// DecodeFrame decodes one frame from data. The payload is copied.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}
	f, length, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	body := data[FrameHeaderSize:]
	if len(body) < length {
		return nil, io.ErrUnexpectedEOF
	}
	f.Payload = append([]byte(nil), body[:length]...)
	return f, nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	f, length, err := parseHeader(header[:])
	if err != nil {
		return nil, err
	}
	f.Payload = make([]byte, length)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return nil, err
	}
	return f, nil
}

func WriteFrame(w io.Writer, f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// CompressFrame builds a frame whose payload is LZ4 compressed when it is at
// least threshold bytes long and compression actually shrinks it. A negative
// threshold disables compression.
func CompressFrame(ft FrameType, payload []byte, threshold int) (*Frame, error) {
	if threshold < 0 || len(payload) < threshold {
		return NewFrame(ft, payload), nil
	}
	packed, ok, err := compress(payload)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewFrame(ft, payload), nil
	}
	return NewFrameWithFlags(ft, FlagCompressed, packed), nil
}

// compress returns [raw size varint][lz4 block]. ok is false when the input
// does not compress.
func compress(raw []byte) ([]byte, bool, error) {
	bound := lz4.CompressBlockBound(len(raw))
	out := make([]byte, binary.MaxVarintLen64+bound)
	n := binary.PutUvarint(out, uint64(len(raw)))

	written, err := lz4.CompressBlock(raw, out[n:], nil)
	if err != nil {
		return nil, false, fmt.Errorf("lz4 compress: %w", err)
	}
	if written == 0 || n+written >= len(raw) {
		return nil, false, nil
	}
	return out[:n+written], true, nil
}

func decompress(payload []byte) ([]byte, error) {
	size, n := binary.Uvarint(payload)
	if n <= 0 {
		return nil, ErrCorruptPayload
	}
	if size > MaxUncompressedSize {
		return nil, ErrAllocationTooLarge
	}
	raw := make([]byte, size)
	got, err := lz4.UncompressBlock(payload[n:], raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	if got != int(size) {
		return nil, ErrCorruptPayload
	}
	return raw, nil
}
