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

package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodeforge/opcua/types"
)

func TestNewFormatsMessage(t *testing.T) {
	e := New(KindSecurity, types.StatusBadSecurityChecksFailed, "signature mismatch on token %d", 7)
	require.Equal(t, KindSecurity, e.Kind)
	require.Equal(t, types.StatusBadSecurityChecksFailed, e.Status)
	require.Nil(t, e.Cause)
	require.Contains(t, e.Error(), "signature mismatch on token 7")
	require.Contains(t, e.Error(), "security")
}

func TestWrapKeepsCauseAndUnwraps(t *testing.T) {
	cause := errors.New("short read")
	e := Wrap(KindCodec, types.StatusBadDecodingError, cause, "malformed header")
	require.Equal(t, cause, e.Cause)
	require.ErrorIs(t, e, cause)
	require.Contains(t, e.Error(), "malformed header")
	require.Contains(t, e.Error(), "short read")
}

func TestIsComparesByKindNotMessage(t *testing.T) {
	a := New(KindState, types.StatusBadInvalidState, "expected state fresh, channel is hel-sent")
	b := New(KindState, types.StatusBadInvalidState, "expected state channel-opened, channel is renewing")
	c := New(KindSecurity, types.StatusBadSecurityChecksFailed, "signature mismatch")

	require.True(t, a.Is(b))
	require.False(t, a.Is(c))
	require.False(t, a.Is(errors.New("unrelated")))
}

func TestKindFatalClassification(t *testing.T) {
	require.False(t, KindTransport.Fatal())
	require.False(t, KindCodec.Fatal())
	require.True(t, KindFraming.Fatal())
	require.True(t, KindSecurity.Fatal())
	require.True(t, KindState.Fatal())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "transport", KindTransport.String())
	require.Equal(t, "framing", KindFraming.String())
	require.Equal(t, "codec", KindCodec.String())
	require.Equal(t, "security", KindSecurity.String())
	require.Equal(t, "state", KindState.String())
}

func TestIsTimeoutAndIsClosedSentinels(t *testing.T) {
	require.True(t, IsTimeout(ErrTimeout))
	require.False(t, IsTimeout(ErrClosed))
	require.True(t, IsClosed(ErrClosed))
	require.False(t, IsClosed(ErrTimeout))

	wrapped := Wrap(KindTransport, types.StatusBadTcpInternalError, ErrTimeout, "receive deadline elapsed")
	require.True(t, IsTimeout(wrapped))
}
