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

package uaconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWhenFileOmitsThem(t *testing.T) {
	path := writeConfigFile(t, `
opcua:
  channel:
    security_policy_uri: "http://opcfoundation.org/UA/SecurityPolicy#None"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint32(65536), cfg.Connection.LocalReceiveBufferSize)
	require.Equal(t, uint32(65536), cfg.Connection.LocalSendBufferSize)
	require.Equal(t, uint32(16*1024*1024), cfg.Connection.LocalMaxMessageSize)
	require.Equal(t, "None", cfg.Channel.SecurityMode)
	require.Equal(t, uint32(3_600_000), cfg.Channel.RequestedTokenLifetime)
}

func TestLoadOverridesDefaultsFromFile(t *testing.T) {
	path := writeConfigFile(t, `
opcua:
  connection:
    local_receive_buffer_size: 8192
    local_send_buffer_size: 8192
  channel:
    security_mode: "Sign"
    requested_token_lifetime_ms: 60000
    security_policy_uri: "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256"
  policy:
    certificate_path: "/etc/opcua/cert.der"
    private_key_path: "/etc/opcua/key.pem"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint32(8192), cfg.Connection.LocalReceiveBufferSize)
	require.Equal(t, "Sign", cfg.Channel.SecurityMode)
	require.Equal(t, uint32(60000), cfg.Channel.RequestedTokenLifetime)
	require.Equal(t, "/etc/opcua/cert.der", cfg.Policy.CertificatePath)
}

func TestLoadRejectsUnknownSecurityMode(t *testing.T) {
	path := writeConfigFile(t, `
opcua:
  channel:
    security_mode: "Bogus"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNonNonePolicyWithoutCertificate(t *testing.T) {
	path := writeConfigFile(t, `
opcua:
  channel:
    security_policy_uri: "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opcuad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
