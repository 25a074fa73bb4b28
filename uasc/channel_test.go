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

package uasc

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/securitypolicy"
	"github.com/nodeforge/opcua/uatcp"
)

const testTimeout = 2 * time.Second

// pipePair wires a client and a server SecureChannel over an in-memory
// net.Pipe, both using the None security policy.
type pipePair struct {
	client *SecureChannel
	server *SecureChannel
}

func newPipePair(t *testing.T) *pipePair {
	t.Helper()
	cConn, sConn := net.Pipe()
	client := NewSecureChannel(uatcp.NewConnection(cConn, 65536), securitypolicy.None{}, RoleClient, 8192, 8192, 16384, 1)
	server := NewSecureChannel(uatcp.NewConnection(sConn, 65536), securitypolicy.None{}, RoleServer, 65536, 65536, 16777216, 0)
	return &pipePair{client: client, server: server}
}

// openedPipePair drives a handshake plus OPN issue to completion on both
// ends and returns the two channels ready for symmetric traffic.
func openedPipePair(t *testing.T) *pipePair {
	t.Helper()
	p := newPipePair(t)

	serverErr := make(chan error, 1)
	go func() {
		_, err := p.server.ServerHandshake(testTimeout)
		serverErr <- err
	}()
	require.NoError(t, p.client.ClientHandshake(testTimeout, "opc.tcp://localhost:4840"))
	require.NoError(t, <-serverErr)

	go func() { serverErr <- p.server.AcceptOpen(testTimeout, 30000) }()
	require.NoError(t, p.client.Open(testTimeout, 30000))
	require.NoError(t, <-serverErr)

	return p
}

func TestHandshakeFoldsToSmallerOfBothSidesLimits(t *testing.T) {
	p := newPipePair(t)

	serverErr := make(chan error, 1)
	var endpoint string
	go func() {
		var err error
		endpoint, err = p.server.ServerHandshake(testTimeout)
		serverErr <- err
	}()

	require.NoError(t, p.client.ClientHandshake(testTimeout, "opc.tcp://localhost:4840"))
	require.NoError(t, <-serverErr)

	require.Equal(t, "opc.tcp://localhost:4840", endpoint)
	require.Equal(t, StateHelAcked, p.client.State())
	require.Equal(t, StateHelAcked, p.server.State())

	require.Equal(t, uint32(8192), p.client.effectiveSendSize)
	require.Equal(t, uint32(8192), p.client.effectiveRecvSize)
	require.Equal(t, uint32(16384), p.client.effectiveMaxMessage)
	require.Equal(t, uint32(1), p.client.effectiveMaxChunkCount)

	require.Equal(t, p.client.effectiveSendSize, p.server.effectiveRecvSize)
	require.Equal(t, p.client.effectiveRecvSize, p.server.effectiveSendSize)
}

func TestOpenIssueAssignsChannelAndMatchingToken(t *testing.T) {
	p := openedPipePair(t)

	require.Equal(t, StateChannelOpened, p.client.State())
	require.Equal(t, StateChannelOpened, p.server.State())
	require.NotZero(t, p.client.ChannelID())
	require.Equal(t, p.server.ChannelID(), p.client.ChannelID())
	require.Equal(t, p.server.current.id, p.client.current.id)

	// The None policy has zero-length key slots on both sides.
	require.Empty(t, p.client.current.keys.LocalSigningKey)
	require.Empty(t, p.server.current.keys.LocalSigningKey)
}

func TestMessageRequestResponseRoundTrip(t *testing.T) {
	p := openedPipePair(t)

	request := []byte("ReadRequest{NodeId: ns=2;i=1001}")
	serverDone := make(chan struct{})
	var gotBody []byte
	var gotReqID uint32
	var recvErr, replyErr error
	go func() {
		defer close(serverDone)
		gotBody, gotReqID, recvErr = p.server.Recv(testTimeout)
		if recvErr != nil {
			return
		}
		replyErr = p.server.Reply(gotReqID, []byte("ReadResponse{Value: 42}"))
	}()

	sentReqID, err := p.client.Send(request)
	require.NoError(t, err)

	response, respReqID, err := p.client.Recv(testTimeout)
	require.NoError(t, err)
	<-serverDone

	require.NoError(t, recvErr)
	require.NoError(t, replyErr)
	require.Equal(t, request, gotBody)
	require.Equal(t, sentReqID, gotReqID)
	require.Equal(t, sentReqID, respReqID)
	require.Equal(t, "ReadResponse{Value: 42}", string(response))
}

func TestChunkedMessageSplitsAcrossMultipleChunks(t *testing.T) {
	p := openedPipePair(t)
	// Force a small effective send size so a 100KB body must split.
	p.client.effectiveSendSize = 32 * 1024
	p.server.effectiveMaxMessage = 0
	p.server.assembler.MaxMessageSize = 0
	p.server.assembler.MaxChunkCount = 0

	body := make([]byte, 100*1024)
	for i := range body {
		body[i] = byte(i)
	}

	serverDone := make(chan struct{})
	var gotBody []byte
	var recvErr error
	go func() {
		defer close(serverDone)
		gotBody, _, recvErr = p.server.Recv(testTimeout)
	}()

	_, err := p.client.Send(body)
	require.NoError(t, err)
	<-serverDone

	require.NoError(t, recvErr)
	require.Equal(t, body, gotBody)
}

func TestTokenRenewalOverlapAcceptsThenDiscardsPreviousToken(t *testing.T) {
	p := openedPipePair(t)
	firstToken := p.client.current.id

	serverErr := make(chan error, 1)
	go func() { serverErr <- p.server.AcceptRenew(testTimeout, 30000) }()
	require.NoError(t, p.client.Renew(testTimeout, 30000))
	require.NoError(t, <-serverErr)

	require.NotEqual(t, firstToken, p.client.current.id)
	require.Equal(t, firstToken, p.server.previous.id)
	require.Equal(t, p.client.current.id, p.server.current.id)

	// A message sent under the new token is accepted, and immediately
	// discards the retained previous token on the receiving side.
	serverDone := make(chan struct{})
	var recvErr error
	go func() {
		defer close(serverDone)
		_, _, recvErr = p.server.Recv(testTimeout)
	}()
	_, err := p.client.Send([]byte("post-renewal request"))
	require.NoError(t, err)
	<-serverDone

	require.NoError(t, recvErr)
	require.Nil(t, p.server.previous)
}

func TestCloseSendsCLOAndPeerRecvReportsClosed(t *testing.T) {
	p := openedPipePair(t)

	serverDone := make(chan struct{})
	var recvErr error
	go func() {
		defer close(serverDone)
		_, _, recvErr = p.server.Recv(testTimeout)
	}()

	require.NoError(t, p.client.Close("client done"))
	<-serverDone

	require.ErrorIs(t, recvErr, errs.ErrClosed)
	require.Equal(t, StateClosed, p.client.State())
	require.Equal(t, StateClosed, p.server.State())
}

func TestServerHandshakeRejectsWrongRole(t *testing.T) {
	p := newPipePair(t)
	_, err := p.client.ServerHandshake(testTimeout)
	require.Error(t, err)
}
