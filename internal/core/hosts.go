// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/internal/model"
	"github.com/toeirei/stratus/internal/remote"
	"golang.org/x/crypto/ssh"
)

// LocalHost names the machine the server runs on.
const LocalHost = "local"

// ErrHostUnreachable is returned when a registered host cannot be dialed.
var ErrHostUnreachable = errors.New("host unreachable")

type remoteRunner interface {
	agent.Runner
	Close() error
}

type dialFunc func(ctx context.Context, host model.Host, keys remote.KnownHostStore, cfg remote.Config) (remoteRunner, error)

func dialRemote(ctx context.Context, host model.Host, keys remote.KnownHostStore, cfg remote.Config) (remoteRunner, error) {
	r, err := remote.Dial(ctx, host, keys, cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// fetchHostKey is replaced in tests.
var fetchHostKey = remote.GetRemoteHostKey

// AgentFor returns an agent for the named host and a release function the
// caller must invoke when done. An empty name or "local" selects this
// machine. Unknown names return db.ErrNotFound.
func (s *Service) AgentFor(ctx context.Context, hostName string) (*agent.Agent, func(), error) {
	if hostName == "" || hostName == LocalHost {
		return s.local, func() {}, nil
	}
	host, err := s.store.GetHostByName(ctx, hostName)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.dial(ctx, *host, s.store, s.ssh)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrHostUnreachable, host.Name, err)
	}
	release := func() {
		if err := r.Close(); err != nil {
			logging.Debugf("core: closing connection to %s: %v", host.Name, err)
		}
	}
	return agent.New(r, s.agentOpts), release, nil
}

// ListHosts returns the registered remote hosts.
func (s *Service) ListHosts(ctx context.Context) ([]model.Host, error) {
	return s.store.ListHosts(ctx)
}

// AddHost registers a remote host. The username defaults to root.
func (s *Service) AddHost(ctx context.Context, name, address, username string) (model.Host, error) {
	var c fieldChecker
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" {
		c.add("name", "Required")
	} else if name == LocalHost {
		c.add("name", "The name 'local' is reserved")
	}
	if address == "" {
		c.add("address", "Required")
	}
	if len(c.errs) > 0 {
		return model.Host{}, &ValidationError{Message: "Invalid host data", Errors: c.errs}
	}
	if username == "" {
		username = "root"
	}
	return s.store.CreateHost(ctx, model.Host{Name: name, Address: address, Username: username})
}

// DeleteHost removes a host by name.
func (s *Service) DeleteHost(ctx context.Context, name string) error {
	host, err := s.store.GetHostByName(ctx, name)
	if err != nil {
		return err
	}
	return s.store.DeleteHost(ctx, host.ID)
}

// TrustHost reads the SSH host key of a registered host and pins it. It
// returns the key's SHA256 fingerprint.
func (s *Service) TrustHost(ctx context.Context, name string) (string, error) {
	host, err := s.store.GetHostByName(ctx, name)
	if err != nil {
		return "", err
	}
	timeout := s.ssh.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	key, err := fetchHostKey(host.Address, timeout)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrHostUnreachable, host.Name, err)
	}
	if err := s.store.AddKnownHostKey(ctx, remote.HostKeyName(host.Address), remote.FormatHostKey(key)); err != nil {
		return "", err
	}
	return ssh.FingerprintSHA256(key), nil
}
