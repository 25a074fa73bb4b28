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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodeforge/opcua/types"
)

func TestHelloRoundTrip(t *testing.T) {
	h := Hello{
		ProtocolVersion:   0,
		ReceiveBufferSize: 8192,
		SendBufferSize:    8192,
		MaxMessageSize:    16384,
		MaxChunkCount:     1,
		EndpointUrl:       "opc.tcp://localhost:4840",
	}
	got, err := decodeHello(encodeHello(h))
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestAcknowledgeRoundTrip(t *testing.T) {
	a := Acknowledge{ProtocolVersion: 0, ReceiveBufferSize: 65536, SendBufferSize: 65536, MaxMessageSize: 16777216, MaxChunkCount: 0}
	got, err := decodeAcknowledge(encodeAcknowledge(a))
	require.NoError(t, err)
	require.Equal(t, a, got)
}

func TestErrorMessageRoundTrip(t *testing.T) {
	m := ErrorMessage{Error: types.StatusBadSecurityChecksFailed, Reason: "signature verification failed"}
	got, err := decodeErrorMessage(encodeErrorMessage(m))
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestOpenSecureChannelRequestRoundTrip(t *testing.T) {
	r := openSecureChannelRequest{
		ClientProtocolVersion: 0,
		RequestType:           requestTypeIssue,
		SecurityMode:          securityModeNone,
		ClientNonce:           []byte{0x00},
		RequestedLifetime:     30000,
	}
	got, err := decodeOpenSecureChannelRequest(encodeOpenSecureChannelRequest(r))
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestOpenSecureChannelResponseRoundTrip(t *testing.T) {
	r := openSecureChannelResponse{
		ServerProtocolVersion: 0,
		SecurityToken: channelSecurityToken{
			ChannelId:       1,
			TokenId:         1,
			CreatedAt:       types.FromTime(types.DateTime{}.ToTime()),
			RevisedLifetime: 30000,
		},
		ServerNonce: []byte{0x00},
	}
	got, err := decodeOpenSecureChannelResponse(encodeOpenSecureChannelResponse(r))
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestAsymmetricSecurityHeaderRoundTrip(t *testing.T) {
	h := asymmetricSecurityHeader{
		SecurityPolicyURI:             "http://opcfoundation.org/UA/SecurityPolicy#None",
		SenderCertificate:             nil,
		ReceiverCertificateThumbprint: nil,
	}
	body := encodeAsymmetricSecurityHeader(h)
	got, n, err := decodeAsymmetricSecurityHeader(body)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, len(body), n)
}

func TestSymmetricSecurityHeaderRoundTrip(t *testing.T) {
	h := symmetricSecurityHeader{ChannelId: 1, TokenId: 2}
	got, n, err := decodeSymmetricSecurityHeader(encodeSymmetricSecurityHeader(h))
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, 8, n)
}

func TestSequenceHeaderRoundTrip(t *testing.T) {
	h := sequenceHeader{SequenceNumber: 51, RequestId: 1}
	got, n, err := decodeSequenceHeader(encodeSequenceHeader(h))
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, 8, n)
}

func TestMinOf32(t *testing.T) {
	require.Equal(t, uint32(8192), minOf32(8192, 65536))
	require.Equal(t, uint32(8192), minOf32(65536, 8192))
	require.Equal(t, uint32(65536), minOf32(0, 65536))
	require.Equal(t, uint32(65536), minOf32(65536, 0))
	require.Equal(t, uint32(0), minOf32(0, 0))
}
