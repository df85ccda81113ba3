package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode classifies the failure carried by a FrameError.
type ErrorCode uint16

const (
	ErrUnknown         ErrorCode = 0x0000
	ErrInvalidFrame    ErrorCode = 0x0001 // malformed or unexpected frame
	ErrInvalidSnapshot ErrorCode = 0x0002 // snapshot document rejected
	ErrPayloadTooLarge ErrorCode = 0x0003 // reply does not fit in a frame
	ErrServerError     ErrorCode = 0x0100
)

var errorCodeNames = map[ErrorCode]string{
	ErrInvalidFrame:    "InvalidFrame",
	ErrInvalidSnapshot: "InvalidSnapshot",
	ErrPayloadTooLarge: "PayloadTooLarge",
	ErrServerError:     "ServerError",
}

func (ec ErrorCode) String() string {
	if name, ok := errorCodeNames[ec]; ok {
		return name
	}
	return "Unknown"
}

// ErrTrailingBytes is returned when a payload has data after its last field.
var ErrTrailingBytes = errors.New("protocol: trailing bytes after payload")

// ErrorMessage is the payload of a FrameError. A fatal error is followed by
// the server closing the stream.
//
//	[code:2 big-endian][message: len-prefixed][fatal:1]
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool
}

func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

func NewFatalError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message, Fatal: true}
}

func (em *ErrorMessage) Error() string {
	msg := fmt.Sprintf("%s: %s", em.Code, em.Message)
	if em.Fatal {
		return "fatal: " + msg
	}
	return msg
}

func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	em := &ErrorMessage{Code: ErrorCode(code)}
	if em.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	if !d.EOF() {
		return nil, ErrTrailingBytes
	}
	return em, nil
}
