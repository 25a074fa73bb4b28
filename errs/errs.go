// The MIT License (MIT)
//
// Copyright (c) 2024-2026 nodeforge
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// The nodeforge opcua errs package implements a single typed error that
// pairs a protocol-layer Kind with an OPC UA status code, covering the
// five error kinds the SecureChannel and its collaborators need to
// branch on.
package errs

import (
	"errors"
	"fmt"

	"github.com/nodeforge/opcua/types"
)

// Kind classifies an Error by protocol layer.
type Kind uint8

const (
	// KindTransport: peer closed, I/O failure, timeout. Recovered locally
	// where possible; the channel closes only on close/failure, not on
	// timeout by itself.
	KindTransport Kind = iota + 1
	// KindFraming: invalid message-type tag, chunk size out of range,
	// size-budget exceeded, illegal continuation sequence. Always fatal
	// for the channel.
	KindFraming
	// KindCodec: truncated buffer, unknown required type, encoding-limit
	// exceeded, array-length bounds violated. Surfaced as a service
	// fault; the channel stays open.
	KindCodec
	// KindSecurity: signature mismatch, decryption failure, unknown token
	// id, unknown channel id, unknown policy URI, certificate
	// verification failure. Always fatal for the channel.
	KindSecurity
	// KindState: message received in the wrong lifecycle state. Always
	// fatal for the channel.
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindFraming:
		return "framing"
	case KindCodec:
		return "codec"
	case KindSecurity:
		return "security"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this kind always tear down the owning
// SecureChannel.
func (k Kind) Fatal() bool {
	switch k {
	case KindFraming, KindSecurity, KindState:
		return true
	default:
		return false
	}
}

// Error is the taxonomy-tagged error type used throughout this module.
type Error struct {
	Kind    Kind
	Status  types.StatusCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("opcua: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("opcua: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, errs.KindCodec-shaped sentinel) compare on Kind
// when both sides are *Error; any other target reports false here. A
// sentinel such as ErrTimeout or ErrClosed wrapped as an *Error's Cause
// is still found by errors.Is, through Unwrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an Error of the given kind.
func New(kind Kind, status types.StatusCode, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Status: status, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an existing cause.
func Wrap(kind Kind, status types.StatusCode, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Status: status, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// ErrTimeout is returned by blocking primitives (Connection.Recv,
// receive_chunks_blocking) when their deadline elapses without data. It
// is a "non-critical timeout": callers may retry.
var ErrTimeout = errors.New("opcua: non-critical timeout")

// ErrClosed is returned when an operation is attempted on a Connection or
// SecureChannel that has already transitioned to closed.
var ErrClosed = errors.New("opcua: connection or channel closed")

// IsTimeout reports whether err is (or wraps) ErrTimeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsClosed reports whether err is (or wraps) ErrClosed.
func IsClosed(err error) bool { return errors.Is(err, ErrClosed) }
