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
	"github.com/nodeforge/opcua/codec"
	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

// Hello is the client-to-server HEL body: the client's proposed
// connection parameters plus the endpoint it wants to reach.
type Hello struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
	EndpointUrl       string
}

func encodeHello(h Hello) []byte {
	buf := make([]byte, 0, 32+len(h.EndpointUrl))
	e := codec.NewEncoder(buf, 0, nil, nil)
	e.PutUInt32(h.ProtocolVersion)
	e.PutUInt32(h.ReceiveBufferSize)
	e.PutUInt32(h.SendBufferSize)
	e.PutUInt32(h.MaxMessageSize)
	e.PutUInt32(h.MaxChunkCount)
	e.PutString(types.NewString(h.EndpointUrl))
	return e.Buffer()
}

func decodeHello(body []byte) (Hello, error) {
	d := codec.NewDecoder(body, 0, nil)
	var h Hello
	var err error
	if h.ProtocolVersion, err = d.GetUInt32(); err != nil {
		return h, err
	}
	if h.ReceiveBufferSize, err = d.GetUInt32(); err != nil {
		return h, err
	}
	if h.SendBufferSize, err = d.GetUInt32(); err != nil {
		return h, err
	}
	if h.MaxMessageSize, err = d.GetUInt32(); err != nil {
		return h, err
	}
	if h.MaxChunkCount, err = d.GetUInt32(); err != nil {
		return h, err
	}
	url, err := d.GetString()
	if err != nil {
		return h, err
	}
	h.EndpointUrl = url.Value
	return h, nil
}

// Acknowledge is the server-to-client ACK body: the server's own local
// connection limits. Each side folds them with the HEL values via minOf32.
type Acknowledge struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
}

func encodeAcknowledge(a Acknowledge) []byte {
	buf := make([]byte, 0, 20)
	e := codec.NewEncoder(buf, 0, nil, nil)
	e.PutUInt32(a.ProtocolVersion)
	e.PutUInt32(a.ReceiveBufferSize)
	e.PutUInt32(a.SendBufferSize)
	e.PutUInt32(a.MaxMessageSize)
	e.PutUInt32(a.MaxChunkCount)
	return e.Buffer()
}

func decodeAcknowledge(body []byte) (Acknowledge, error) {
	d := codec.NewDecoder(body, 0, nil)
	var a Acknowledge
	var err error
	if a.ProtocolVersion, err = d.GetUInt32(); err != nil {
		return a, err
	}
	if a.ReceiveBufferSize, err = d.GetUInt32(); err != nil {
		return a, err
	}
	if a.SendBufferSize, err = d.GetUInt32(); err != nil {
		return a, err
	}
	if a.MaxMessageSize, err = d.GetUInt32(); err != nil {
		return a, err
	}
	if a.MaxChunkCount, err = d.GetUInt32(); err != nil {
		return a, err
	}
	return a, nil
}

// ErrorMessage is the ERR body either peer may send in place of the next
// expected message, carrying the reason the channel is about to close.
type ErrorMessage struct {
	Error  types.StatusCode
	Reason string
}

func encodeErrorMessage(m ErrorMessage) []byte {
	buf := make([]byte, 0, 8+len(m.Reason))
	e := codec.NewEncoder(buf, 0, nil, nil)
	e.PutStatusCode(m.Error)
	e.PutString(types.NewString(m.Reason))
	return e.Buffer()
}

func decodeErrorMessage(body []byte) (ErrorMessage, error) {
	d := codec.NewDecoder(body, 0, nil)
	var m ErrorMessage
	var err error
	if m.Error, err = d.GetStatusCode(); err != nil {
		return m, err
	}
	reason, err := d.GetString()
	if err != nil {
		return m, err
	}
	m.Reason = reason.Value
	return m, nil
}

// openSecureChannelRequestType distinguishes issuing a brand-new channel
// from renewing the token of an existing one.
type openSecureChannelRequestType uint32

const (
	requestTypeIssue openSecureChannelRequestType = 0
	requestTypeRenew openSecureChannelRequestType = 1
)

// securityMode mirrors the three OPC UA message security modes; this
// module only ever drives None or Sign (SignAndEncrypt is structurally
// identical to Sign once a Policy does real encryption).
type securityMode uint32

const (
	securityModeInvalid securityMode = 0
	securityModeNone    securityMode = 1
	securityModeSign    securityMode = 2
	securityModeSignAndEncrypt securityMode = 3
)

// openSecureChannelRequest is the OPN service body carried inside the
// single asymmetric OPN chunk that requests a new or renewed token.
type openSecureChannelRequest struct {
	ClientProtocolVersion uint32
	RequestType           openSecureChannelRequestType
	SecurityMode          securityMode
	ClientNonce           []byte
	RequestedLifetime     uint32
}

func encodeOpenSecureChannelRequest(r openSecureChannelRequest) []byte {
	buf := make([]byte, 0, 24+len(r.ClientNonce))
	e := codec.NewEncoder(buf, 0, nil, nil)
	e.PutUInt32(r.ClientProtocolVersion)
	e.PutUInt32(uint32(r.RequestType))
	e.PutUInt32(uint32(r.SecurityMode))
	e.PutByteString(types.NewByteString(r.ClientNonce))
	e.PutUInt32(r.RequestedLifetime)
	return e.Buffer()
}

func decodeOpenSecureChannelRequest(body []byte) (openSecureChannelRequest, error) {
	d := codec.NewDecoder(body, 0, nil)
	var r openSecureChannelRequest
	var err error
	if r.ClientProtocolVersion, err = d.GetUInt32(); err != nil {
		return r, err
	}
	rt, err := d.GetUInt32()
	if err != nil {
		return r, err
	}
	r.RequestType = openSecureChannelRequestType(rt)
	sm, err := d.GetUInt32()
	if err != nil {
		return r, err
	}
	r.SecurityMode = securityMode(sm)
	nonce, err := d.GetByteString()
	if err != nil {
		return r, err
	}
	r.ClientNonce = nonce.Data
	if r.RequestedLifetime, err = d.GetUInt32(); err != nil {
		return r, err
	}
	return r, nil
}

// channelSecurityToken is the token a successful OPN exchange installs:
// it names the channel, the token within it, when the token was minted,
// and how long it is valid for.
type channelSecurityToken struct {
	ChannelId       uint32
	TokenId         uint32
	CreatedAt       types.DateTime
	RevisedLifetime uint32
}

// openSecureChannelResponse is the OPN service body the server returns,
// carrying the token the client must use for every subsequent symmetric
// chunk on this channel.
type openSecureChannelResponse struct {
	ServerProtocolVersion uint32
	SecurityToken         channelSecurityToken
	ServerNonce           []byte
}

func encodeOpenSecureChannelResponse(r openSecureChannelResponse) []byte {
	buf := make([]byte, 0, 40+len(r.ServerNonce))
	e := codec.NewEncoder(buf, 0, nil, nil)
	e.PutUInt32(r.ServerProtocolVersion)
	e.PutUInt32(r.SecurityToken.ChannelId)
	e.PutUInt32(r.SecurityToken.TokenId)
	e.PutDateTime(r.SecurityToken.CreatedAt)
	e.PutUInt32(r.SecurityToken.RevisedLifetime)
	e.PutByteString(types.NewByteString(r.ServerNonce))
	return e.Buffer()
}

func decodeOpenSecureChannelResponse(body []byte) (openSecureChannelResponse, error) {
	d := codec.NewDecoder(body, 0, nil)
	var r openSecureChannelResponse
	var err error
	if r.ServerProtocolVersion, err = d.GetUInt32(); err != nil {
		return r, err
	}
	if r.SecurityToken.ChannelId, err = d.GetUInt32(); err != nil {
		return r, err
	}
	if r.SecurityToken.TokenId, err = d.GetUInt32(); err != nil {
		return r, err
	}
	if r.SecurityToken.CreatedAt, err = d.GetDateTime(); err != nil {
		return r, err
	}
	if r.SecurityToken.RevisedLifetime, err = d.GetUInt32(); err != nil {
		return r, err
	}
	nonce, err := d.GetByteString()
	if err != nil {
		return r, err
	}
	r.ServerNonce = nonce.Data
	return r, nil
}

// asymmetricSecurityHeader is carried on every OPN chunk, identifying the
// security policy and the certificates involved in the handshake.
type asymmetricSecurityHeader struct {
	SecurityPolicyURI            string
	SenderCertificate             []byte
	ReceiverCertificateThumbprint []byte
}

func encodeAsymmetricSecurityHeader(h asymmetricSecurityHeader) []byte {
	buf := make([]byte, 0, 16+len(h.SecurityPolicyURI)+len(h.SenderCertificate)+len(h.ReceiverCertificateThumbprint))
	e := codec.NewEncoder(buf, 0, nil, nil)
	e.PutString(types.NewString(h.SecurityPolicyURI))
	for _, b := range [][]byte{h.SenderCertificate, h.ReceiverCertificateThumbprint} {
		if b == nil {
			e.PutByteString(types.NullByteString())
		} else {
			e.PutByteString(types.NewByteString(b))
		}
	}
	return e.Buffer()
}

func decodeAsymmetricSecurityHeader(body []byte) (asymmetricSecurityHeader, int, error) {
	d := codec.NewDecoder(body, 0, nil)
	var h asymmetricSecurityHeader
	uri, err := d.GetString()
	if err != nil {
		return h, 0, err
	}
	h.SecurityPolicyURI = uri.Value
	cert, err := d.GetByteString()
	if err != nil {
		return h, 0, err
	}
	h.SenderCertificate = cert.Data
	thumb, err := d.GetByteString()
	if err != nil {
		return h, 0, err
	}
	h.ReceiverCertificateThumbprint = thumb.Data
	return h, d.Offset(), nil
}

// symmetricSecurityHeader is carried on every MSG/CLO chunk: the channel
// and token it belongs to.
type symmetricSecurityHeader struct {
	ChannelId uint32
	TokenId   uint32
}

func encodeSymmetricSecurityHeader(h symmetricSecurityHeader) []byte {
	buf := make([]byte, 0, 8)
	e := codec.NewEncoder(buf, 0, nil, nil)
	e.PutUInt32(h.ChannelId)
	e.PutUInt32(h.TokenId)
	return e.Buffer()
}

func decodeSymmetricSecurityHeader(body []byte) (symmetricSecurityHeader, int, error) {
	d := codec.NewDecoder(body, 0, nil)
	var h symmetricSecurityHeader
	var err error
	if h.ChannelId, err = d.GetUInt32(); err != nil {
		return h, 0, err
	}
	if h.TokenId, err = d.GetUInt32(); err != nil {
		return h, 0, err
	}
	return h, d.Offset(), nil
}

// sequenceHeader is carried on every chunk after its security header: the
// monotonic sequence number and the request id the chunk's body answers
// or asks.
type sequenceHeader struct {
	SequenceNumber uint32
	RequestId      uint32
}

func encodeSequenceHeader(h sequenceHeader) []byte {
	buf := make([]byte, 0, 8)
	e := codec.NewEncoder(buf, 0, nil, nil)
	e.PutUInt32(h.SequenceNumber)
	e.PutUInt32(h.RequestId)
	return e.Buffer()
}

func decodeSequenceHeader(body []byte) (sequenceHeader, int, error) {
	d := codec.NewDecoder(body, 0, nil)
	var h sequenceHeader
	var err error
	if h.SequenceNumber, err = d.GetUInt32(); err != nil {
		return h, 0, err
	}
	if h.RequestId, err = d.GetUInt32(); err != nil {
		return h, 0, err
	}
	return h, d.Offset(), nil
}

// minOf32 is used throughout HEL/ACK negotiation: the effective value of
// every connection parameter is whichever side proposed the smaller one,
// with 0 meaning "no limit" and therefore losing to any finite value.
func minOf32(local, peer uint32) uint32 {
	switch {
	case local == 0:
		return peer
	case peer == 0:
		return local
	case local < peer:
		return local
	default:
		return peer
	}
}

var errShortHeader = errs.New(errs.KindCodec, types.StatusBadDecodingError, "header shorter than its fixed-size fields")
