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

package uatcp

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nodeforge/opcua/errs"
)

func helChunk(size int) []byte {
	b := make([]byte, size)
	copy(b, []byte("HELF"))
	binary.LittleEndian.PutUint32(b[4:8], uint32(size))
	return b
}

func TestCompleteMessagesSingleChunk(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 8192)
	chunk := helChunk(16)

	complete, err := c.CompleteMessages(chunk)
	require.NoError(t, err)
	require.Equal(t, chunk, complete)
}

func TestCompleteMessagesSplitAcrossCalls(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 8192)
	chunk := helChunk(20)

	first, err := c.CompleteMessages(chunk[:10])
	require.NoError(t, err)
	require.Empty(t, first)

	second, err := c.CompleteMessages(chunk[10:])
	require.NoError(t, err)
	require.Equal(t, chunk, second)
}

func TestCompleteMessagesValidPrefixGarbageSuffixTruncatesSilently(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 8192)
	chunk := helChunk(16)
	garbage := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

	buf := append(append([]byte{}, chunk...), garbage...)

	complete, err := c.CompleteMessages(buf)
	require.NoError(t, err)
	require.Equal(t, chunk, complete)
}

func TestCompleteMessagesMultipleValidChunksBeforeGarbageSurviveIntact(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 8192)
	first := helChunk(16)
	second := helChunk(24)
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x00, 0x00, 0x00, 0x01}

	buf := append(append(append([]byte{}, first...), second...), garbage...)

	complete, err := c.CompleteMessages(buf)
	require.NoError(t, err)
	require.Equal(t, append(append([]byte{}, first...), second...), complete)
}

func TestCompleteMessagesAllGarbageIsFramingError(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 8192)
	garbage := []byte("XYZFabcdefghijklmnop")

	_, err := c.CompleteMessages(garbage)
	require.Error(t, err)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.KindFraming, e.Kind)
}

func TestCompleteMessagesSizeBelowMinimumIsFramingError(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 8192)
	chunk := helChunk(12)

	_, err := c.CompleteMessages(chunk)
	require.Error(t, err)
}

func TestCompleteMessagesSizeAboveRecvBufferIsFramingError(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 100)
	chunk := helChunk(200)

	_, err := c.CompleteMessages(chunk)
	require.Error(t, err)
}

func TestCompleteMessagesExactlyAtRecvBufferSizeIsAccepted(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 100)
	chunk := helChunk(100)

	complete, err := c.CompleteMessages(chunk)
	require.NoError(t, err)
	require.Equal(t, chunk, complete)
}

// TestTruncatedInboundNeverReachesCodec mirrors the scenario where the peer
// sends only the first 7 bytes of a chunk header and closes: the
// connection must report closed, and no partial chunk must ever be
// surfaced as a complete one.
func TestTruncatedInboundNeverReachesCodec(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	c := NewConnection(server, 8192)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = client.Write([]byte("HELF\x10\x00\x00")[:7])
		client.Close()
	}()

	raw, err := c.Recv(time.Second)
	<-done
	require.NoError(t, err)

	complete, err := c.CompleteMessages(raw)
	require.NoError(t, err)
	require.Empty(t, complete)

	_, err = c.Recv(time.Second)
	require.ErrorIs(t, err, errs.ErrClosed)
}

func TestRecvTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 8192)
	_, err := c.Recv(10 * time.Millisecond)
	require.ErrorIs(t, err, errs.ErrTimeout)
}

func TestSendAndSendBufferRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 8192)
	chunk := helChunk(16)

	go func() {
		_ = c.Send(chunk)
	}()

	buf := make([]byte, 16)
	_, err := client.Read(buf)
	require.NoError(t, err)
	require.Equal(t, chunk, buf)
}

func TestRecvBufferHintConvergesTowardSmallMessages(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := NewConnection(server, 8192)
	require.Equal(t, 8192, c.recvBufferHint)

	small := helChunk(16)
	for i := 0; i < 10; i++ {
		go func() { _, _ = client.Write(small) }()
		_, err := c.Recv(time.Second)
		require.NoError(t, err)
	}

	require.Less(t, c.recvBufferHint, 8192)
	require.GreaterOrEqual(t, c.recvBufferHint, recvBufferHintMin)
}
