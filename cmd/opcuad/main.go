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

// Command opcuad accepts UA-TCP connections, drives each one through the
// HEL/ACK handshake and an OPN issue, then echoes every inbound MSG body
// back to its sender until the peer closes the channel. Its connection,
// channel and policy settings come from a uaconfig file when -config is
// given and from its command-line flags otherwise, and its
// channel lifecycle is exposed as Prometheus metrics.
package main

import (
	"flag"
	"net"
	"net/http"
	"time"

	"github.com/nodeforge/opcua/dispatcher"
	"github.com/nodeforge/opcua/logging"
	"github.com/nodeforge/opcua/metrics"
	"github.com/nodeforge/opcua/securitypolicy"
	"github.com/nodeforge/opcua/uaconfig"
	"github.com/nodeforge/opcua/uasc"
	"github.com/nodeforge/opcua/uatcp"
)

var (
	listenAddr  = flag.String("listen", ":4840", "address to accept UA-TCP connections on")
	configPath  = flag.String("config", "", "path to a uaconfig YAML file; flags below are used when empty")
	metricsAddr = flag.String("metrics-listen", ":9494", "address to serve /metrics on")

	receiveBufferSize = flag.Uint("recv-buffer", 65536, "advertised receive buffer size")
	sendBufferSize    = flag.Uint("send-buffer", 65536, "advertised send buffer size")
	maxMessageSize    = flag.Uint("max-message", 16*1024*1024, "maximum reassembled message size, 0 for unlimited")
	maxChunkCount     = flag.Uint("max-chunks", 0, "maximum chunks per reassembled message, 0 for unlimited")
	tokenLifetimeMs   = flag.Uint("token-lifetime-ms", 3_600_000, "requested security token lifetime")
	handshakeTimeout  = flag.Duration("handshake-timeout", 10*time.Second, "HEL/ACK and OPN deadline")
)

func main() {
	flag.Parse()

	cfg := configFromFlags()
	if *configPath != "" {
		loaded, err := uaconfig.Load(*configPath)
		if err != nil {
			logging.Error.Println(nil, "opcuad: load config ", *configPath, ": ", err)
			return
		}
		cfg = loaded
	}

	policy := securitypolicy.Policy(securitypolicy.None{})
	if cfg.Policy.PrivateKeyPath != "" || cfg.Policy.TrustListPath != "" || cfg.Policy.RevocationListPath != "" {
		aes := securitypolicy.NewAesCtrHmacSha256()
		watcher, err := uaconfig.WatchPolicyFiles(aes, cfg.Policy)
		if err != nil {
			logging.Error.Println(nil, "opcuad: load policy files: ", err)
			return
		}
		defer watcher.Close()
		policy = aes
	}

	m := metrics.NewMetrics()
	go func() {
		logging.Trace.Println(nil, "opcuad: serving metrics on ", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, m.Handler()); err != nil {
			logging.Warn.Println(nil, "opcuad: metrics server: ", err)
		}
	}()

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		logging.Error.Println(nil, "opcuad: listen ", *listenAddr, ": ", err)
		return
	}
	logging.Trace.Println(nil, "opcuad: listening on ", *listenAddr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			logging.Error.Println(nil, "opcuad: accept: ", err)
			return
		}
		go serve(conn, cfg, policy, m)
	}
}

func configFromFlags() *uaconfig.Config {
	return &uaconfig.Config{
		Connection: uaconfig.ConnectionConfig{
			LocalReceiveBufferSize: uint32(*receiveBufferSize),
			LocalSendBufferSize:    uint32(*sendBufferSize),
			LocalMaxMessageSize:    uint32(*maxMessageSize),
			LocalMaxChunkCount:     uint32(*maxChunkCount),
			ConnectTimeout:         *handshakeTimeout,
			MessageTimeout:         *handshakeTimeout,
		},
		Channel: uaconfig.ChannelConfig{
			SecurityMode:           "None",
			RequestedTokenLifetime: uint32(*tokenLifetimeMs),
			SecurityPolicyURI:      securitypolicy.NoneURI,
		},
	}
}

func serve(rw net.Conn, cfg *uaconfig.Config, policy securitypolicy.Policy, m *metrics.Metrics) {
	defer rw.Close()

	tcpConn := uatcp.NewConnection(rw, int(cfg.Connection.LocalReceiveBufferSize))
	channel := uasc.NewSecureChannel(
		tcpConn,
		policy,
		uasc.RoleServer,
		cfg.Connection.LocalReceiveBufferSize,
		cfg.Connection.LocalSendBufferSize,
		cfg.Connection.LocalMaxMessageSize,
		cfg.Connection.LocalMaxChunkCount,
	)

	if _, err := channel.ServerHandshake(*handshakeTimeout); err != nil {
		logging.Warn.Println(channel, "opcuad: handshake failed: ", err)
		return
	}
	if err := channel.AcceptOpen(*handshakeTimeout, cfg.Channel.RequestedTokenLifetime); err != nil {
		logging.Warn.Println(channel, "opcuad: channel open failed: ", err)
		return
	}
	logging.Trace.Println(channel, "opcuad: channel ", channel.ChannelID(), " open, audit id ", channel.AuditID())

	pump := dispatcher.Pump{
		Channel:         channel,
		Handler:         metrics.InstrumentedHandler{Next: echoHandler{}, Metrics: m},
		RecvTimeout:     30 * time.Second,
		RequestLifetime: cfg.Channel.RequestedTokenLifetime,
	}
	_ = pump.Run()
}

// echoHandler answers every request with its own type id and body,
// standing in for a real service-set implementation until one is wired
// in: the Pump's job is to decode and dispatch, not to interpret bodies.
type echoHandler struct{}

func (echoHandler) Deliver(requestTypeID uint32, requestBody []byte, channel *uasc.SecureChannel, requestID uint32) {
	if err := dispatcher.Send(channel, requestTypeID, requestBody, requestID); err != nil {
		logging.Warn.Println(channel, "opcuad: reply failed: ", err)
	}
}

func (echoHandler) ChannelOpened(channel *uasc.SecureChannel) {
	logging.Trace.Println(channel, "opcuad: dispatch loop started")
}

func (echoHandler) ChannelClosed(channel *uasc.SecureChannel, cause error) {
	logging.Trace.Println(channel, "opcuad: dispatch loop ended: ", cause)
}

func (echoHandler) TokenRenewed(channel *uasc.SecureChannel) {
	logging.Trace.Println(channel, "opcuad: token renewed")
}
