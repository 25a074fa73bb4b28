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

package dispatcher

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/securitypolicy"
	"github.com/nodeforge/opcua/uasc"
	"github.com/nodeforge/opcua/uatcp"
)

const testTimeout = 2 * time.Second

type recordingHandler struct {
	mu          sync.Mutex
	delivered   []uint32
	opened      bool
	closed      bool
	closeCause  error
	autoReplies bool
}

func (h *recordingHandler) Deliver(requestTypeID uint32, requestBody []byte, channel *uasc.SecureChannel, requestID uint32) {
	h.mu.Lock()
	h.delivered = append(h.delivered, requestTypeID)
	h.mu.Unlock()
	if h.autoReplies {
		_ = Send(channel, requestTypeID+1, requestBody, requestID)
	}
}

func (h *recordingHandler) ChannelOpened(*uasc.SecureChannel) {
	h.mu.Lock()
	h.opened = true
	h.mu.Unlock()
}

func (h *recordingHandler) ChannelClosed(_ *uasc.SecureChannel, cause error) {
	h.mu.Lock()
	h.closed = true
	h.closeCause = cause
	h.mu.Unlock()
}

func (h *recordingHandler) TokenRenewed(*uasc.SecureChannel) {}

func openedPair(t *testing.T) (client, server *uasc.SecureChannel) {
	t.Helper()
	cConn, sConn := net.Pipe()
	client = uasc.NewSecureChannel(uatcp.NewConnection(cConn, 65536), securitypolicy.None{}, uasc.RoleClient, 8192, 8192, 16384, 1)
	server = uasc.NewSecureChannel(uatcp.NewConnection(sConn, 65536), securitypolicy.None{}, uasc.RoleServer, 65536, 65536, 16777216, 0)

	serverErr := make(chan error, 1)
	go func() {
		_, err := server.ServerHandshake(testTimeout)
		serverErr <- err
	}()
	require.NoError(t, client.ClientHandshake(testTimeout, "opc.tcp://localhost:4840"))
	require.NoError(t, <-serverErr)

	go func() { serverErr <- server.AcceptOpen(testTimeout, 30000) }()
	require.NoError(t, client.Open(testTimeout, 30000))
	require.NoError(t, <-serverErr)

	return client, server
}

func TestPumpDeliversDecodedTypeIDAndReplies(t *testing.T) {
	client, server := openedPair(t)

	handler := &recordingHandler{autoReplies: true}
	pump := &Pump{Channel: server, Handler: handler, RecvTimeout: testTimeout}
	pumpDone := make(chan error, 1)
	go func() { pumpDone <- pump.Run() }()

	requestID, err := client.Send(framedBody(t, 7, []byte("ReadRequest")))
	require.NoError(t, err)

	response, respReqID, err := client.Recv(testTimeout)
	require.NoError(t, err)
	require.Equal(t, requestID, respReqID)

	typeID, payload := splitFramedBody(t, response)
	require.Equal(t, uint32(8), typeID)
	require.Equal(t, "ReadRequest", string(payload))

	require.NoError(t, client.Close("done"))
	require.ErrorIs(t, <-pumpDone, errs.ErrClosed)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	require.True(t, handler.opened)
	require.True(t, handler.closed)
	require.Equal(t, []uint32{7}, handler.delivered)
}

func TestSendRejectsNothingAndRoundTripsTypeID(t *testing.T) {
	client, server := openedPair(t)

	handler := &recordingHandler{}
	pump := &Pump{Channel: server, Handler: handler, RecvTimeout: 200 * time.Millisecond}
	pumpDone := make(chan error, 1)
	go func() { pumpDone <- pump.Run() }()

	_, err := client.Send(framedBody(t, 100, []byte("ping")))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		handler.mu.Lock()
		defer handler.mu.Unlock()
		return len(handler.delivered) == 1 && handler.delivered[0] == 100
	}, testTimeout, 10*time.Millisecond)

	require.NoError(t, client.Close("test done"))
	<-pumpDone
}

func framedBody(t *testing.T, typeID uint32, payload []byte) []byte {
	t.Helper()
	body := make([]byte, typeIDHeaderSize+len(payload))
	putUint32(body, typeID)
	copy(body[typeIDHeaderSize:], payload)
	return body
}

func splitFramedBody(t *testing.T, body []byte) (uint32, []byte) {
	t.Helper()
	typeID, payload, err := decodeTypeID(body)
	require.NoError(t, err)
	return typeID, payload
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
