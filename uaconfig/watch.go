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
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/nodeforge/opcua/logging"
	"github.com/nodeforge/opcua/securitypolicy"
)

// PolicyWatcher keeps a securitypolicy.Policy's trust list and revocation
// list current as the files backing cfg.Policy change on disk, so a
// long-lived server picks up PKI changes (a new CA added to the trust
// list, a compromised certificate revoked) without a restart. The core
// only ever sees the resulting bytes through the Policy setters; it never
// knows these paths or this watcher exist.
type PolicyWatcher struct {
	policy    securitypolicy.Policy
	watcher   *fsnotify.Watcher
	trustPath string
	revPath   string
	done      chan struct{}
}

// WatchPolicyFiles loads cfg's private key, trust list and revocation list
// once into policy via its setters, then starts a goroutine that reloads
// the trust list and revocation list whenever their files change. The
// returned PolicyWatcher must be Closed to stop that goroutine.
func WatchPolicyFiles(policy securitypolicy.Policy, cfg PolicyConfig) (*PolicyWatcher, error) {
	if cfg.PrivateKeyPath != "" {
		key, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("uaconfig: read private key: %w", err)
		}
		policy.SetServerPrivateKey(key)
	}
	if cfg.TrustListPath != "" {
		list, err := os.ReadFile(cfg.TrustListPath)
		if err != nil {
			return nil, fmt.Errorf("uaconfig: read trust list: %w", err)
		}
		policy.SetTrustList(list)
	}
	if cfg.RevocationListPath != "" {
		list, err := os.ReadFile(cfg.RevocationListPath)
		if err != nil {
			return nil, fmt.Errorf("uaconfig: read revocation list: %w", err)
		}
		policy.SetRevocationList(list)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("uaconfig: create watcher: %w", err)
	}
	for _, path := range []string{cfg.TrustListPath, cfg.RevocationListPath} {
		if path == "" {
			continue
		}
		if err := w.Add(path); err != nil {
			w.Close()
			return nil, fmt.Errorf("uaconfig: watch %s: %w", path, err)
		}
	}

	pw := &PolicyWatcher{
		policy:    policy,
		watcher:   w,
		trustPath: cfg.TrustListPath,
		revPath:   cfg.RevocationListPath,
		done:      make(chan struct{}),
	}
	go pw.run()
	return pw, nil
}

func (pw *PolicyWatcher) run() {
	for {
		select {
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pw.reload(event.Name)

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn.Println(nil, "uaconfig: watch error: ", err)

		case <-pw.done:
			return
		}
	}
}

func (pw *PolicyWatcher) reload(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn.Println(nil, "uaconfig: reload ", path, ": ", err)
		return
	}
	switch path {
	case pw.trustPath:
		pw.policy.SetTrustList(data)
		logging.Trace.Println(nil, "uaconfig: trust list reloaded from ", path)
	case pw.revPath:
		pw.policy.SetRevocationList(data)
		logging.Trace.Println(nil, "uaconfig: revocation list reloaded from ", path)
	}
}

// Close stops the watch goroutine and releases the underlying fsnotify
// watcher.
func (pw *PolicyWatcher) Close() error {
	close(pw.done)
	return pw.watcher.Close()
}
