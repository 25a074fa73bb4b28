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

// The nodeforge opcua uaconfig package is the concrete Viper-backed loader
// a server wires in: it resolves the per-connection, per-channel and
// per-policy settings the core accepts as plain arguments (uatcp.Connection
// buffer sizes, uasc.SecureChannel limits, a securitypolicy.Policy's trust
// material) from a YAML/env-backed file, so the core itself never imports
// viper or knows a file format exists.
package uaconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConnectionConfig mirrors the per-connection settings a uatcp.Connection
// and the chunker.Assembler behind it are constructed with.
type ConnectionConfig struct {
	ProtocolVersion        uint32        `mapstructure:"protocol_version"`
	LocalReceiveBufferSize uint32        `mapstructure:"local_receive_buffer_size"`
	LocalSendBufferSize    uint32        `mapstructure:"local_send_buffer_size"`
	LocalMaxMessageSize    uint32        `mapstructure:"local_max_message_size"`
	LocalMaxChunkCount     uint32        `mapstructure:"local_max_chunk_count"`
	ConnectTimeout         time.Duration `mapstructure:"connect_timeout"`
	MessageTimeout         time.Duration `mapstructure:"message_timeout"`
}

// ChannelConfig mirrors the per-channel settings negotiated at OPN.
type ChannelConfig struct {
	SecurityMode            string `mapstructure:"security_mode"`
	RequestedTokenLifetime  uint32 `mapstructure:"requested_token_lifetime_ms"`
	SecurityPolicyURI       string `mapstructure:"security_policy_uri"`
}

// PolicyConfig mirrors the per-policy PKI settings, opaque to the core and
// interpreted only by the securitypolicy.Policy they feed.
type PolicyConfig struct {
	TrustListPath      string `mapstructure:"trust_list_path"`
	RevocationListPath string `mapstructure:"revocation_list_path"`
	CertificatePath    string `mapstructure:"certificate_path"`
	PrivateKeyPath     string `mapstructure:"private_key_path"`
}

// Config is the full configuration tree a server process loads at startup.
type Config struct {
	Connection ConnectionConfig `mapstructure:"connection"`
	Channel    ChannelConfig    `mapstructure:"channel"`
	Policy     PolicyConfig     `mapstructure:"policy"`
}

// configRoot wraps Config under the `opcua:` root key the YAML file uses.
type configRoot struct {
	OPCUA Config `mapstructure:"opcua"`
}

// Load reads configuration from the file at path, applying environment
// variable overrides under the OPCUA_ prefix (e.g. OPCUA_CHANNEL_SECURITY_MODE)
// and the package defaults set by setDefaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("uaconfig: read config file: %w", err)
	}

	v.SetEnvPrefix("OPCUA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("uaconfig: unmarshal config: %w", err)
	}
	cfg := root.OPCUA

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("uaconfig: validate config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets the values a fresh install should run with: generous
// buffers, an hour-long token lifetime, and no security (the None policy)
// until an operator opts into a signed/encrypted policy URI.
func setDefaults(v *viper.Viper) {
	v.SetDefault("opcua.connection.protocol_version", 0)
	v.SetDefault("opcua.connection.local_receive_buffer_size", 65536)
	v.SetDefault("opcua.connection.local_send_buffer_size", 65536)
	v.SetDefault("opcua.connection.local_max_message_size", 16*1024*1024)
	v.SetDefault("opcua.connection.local_max_chunk_count", 0)
	v.SetDefault("opcua.connection.connect_timeout", "10s")
	v.SetDefault("opcua.connection.message_timeout", "30s")

	v.SetDefault("opcua.channel.security_mode", "None")
	v.SetDefault("opcua.channel.requested_token_lifetime_ms", 3_600_000)
	v.SetDefault("opcua.channel.security_policy_uri", "http://opcfoundation.org/UA/SecurityPolicy#None")
}

// validate rejects configurations the core would otherwise fail on only
// after a handshake has already started.
func (cfg *Config) validate() error {
	if cfg.Connection.LocalReceiveBufferSize == 0 {
		return fmt.Errorf("connection.local_receive_buffer_size must be nonzero")
	}
	if cfg.Connection.LocalSendBufferSize == 0 {
		return fmt.Errorf("connection.local_send_buffer_size must be nonzero")
	}
	switch cfg.Channel.SecurityMode {
	case "None", "Sign", "SignAndEncrypt":
	default:
		return fmt.Errorf("channel.security_mode %q is not one of None, Sign, SignAndEncrypt", cfg.Channel.SecurityMode)
	}
	if cfg.Channel.SecurityPolicyURI != "http://opcfoundation.org/UA/SecurityPolicy#None" {
		if cfg.Policy.CertificatePath == "" || cfg.Policy.PrivateKeyPath == "" {
			return fmt.Errorf("policy.certificate_path and policy.private_key_path are required when channel.security_policy_uri is not the None policy")
		}
	}
	return nil
}
