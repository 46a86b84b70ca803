// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package remote lets the agent probe registered hosts over SSH. Commands run
// in SSH sessions and files are read over SFTP. Host keys must be pinned in
// the known_hosts table before a connection is accepted.
package remote // import "github.com/toeirei/stratus/internal/remote"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/internal/model"
	"golang.org/x/crypto/ssh"
)

const defaultDialTimeout = 10 * time.Second

// KnownHostStore looks up pinned host keys.
type KnownHostStore interface {
	GetKnownHostKey(ctx context.Context, hostname string) (string, error)
}

// Config selects credentials and timeouts for Dial.
type Config struct {
	// PrivateKeyPath is tried first; the ssh-agent is the fallback.
	PrivateKeyPath string
	DialTimeout    time.Duration
}

// SSHRunner implements agent.Runner on a remote host.
type SSHRunner struct {
	host   model.Host
	client *ssh.Client
	sftp   *sftp.Client
}

var _ agent.Runner = (*SSHRunner)(nil)

// ErrUnknownHostKey is returned when a host has no pinned key yet.
var ErrUnknownHostKey = errors.New("unknown host key")

// ErrHostKeyMismatch is returned when the presented key differs from the pin.
var ErrHostKeyMismatch = errors.New("host key mismatch")

// hostOnly strips an optional port.
func hostOnly(hostname string) string {
	if h, _, err := net.SplitHostPort(hostname); err == nil {
		return h
	}
	return hostname
}

// dialAddr adds port 22 when address has none.
func dialAddr(address string) string {
	if _, _, err := net.SplitHostPort(address); err != nil {
		return net.JoinHostPort(address, "22")
	}
	return address
}

// HostKeyCallback accepts only keys that match the pin stored for the host.
func HostKeyCallback(ctx context.Context, keys KnownHostStore) ssh.HostKeyCallback {
	return func(hostname string, _ net.Addr, key ssh.PublicKey) error {
		host := hostOnly(hostname)
		presented := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(key)))

		known, err := keys.GetKnownHostKey(ctx, host)
		if err != nil {
			return fmt.Errorf("failed to query known_hosts: %w", err)
		}
		if known == "" {
			return fmt.Errorf("%w for %s, run 'stratus host trust' first", ErrUnknownHostKey, host)
		}
		if strings.TrimSpace(known) != presented {
			return fmt.Errorf("%w for %s: remote presented %s", ErrHostKeyMismatch, host, presented)
		}
		return nil
	}
}

// Dial connects to host, authenticating with the configured private key and
// falling back to the ssh-agent when the key is rejected.
func Dial(ctx context.Context, host model.Host, keys KnownHostStore, cfg Config) (*SSHRunner, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	addr := dialAddr(host.Address)
	callback := HostKeyCallback(ctx, keys)

	var firstErr error
	if cfg.PrivateKeyPath != "" {
		pem, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("unable to parse private key: %w", err)
		}
		client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
			User:            host.Username,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: callback,
			Timeout:         timeout,
		})
		if err == nil {
			return newRunner(host, client)
		}
		// Only authentication failures fall through to the agent.
		if !strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("connection to %s failed: %w", host.Name, err)
		}
		firstErr = err
	}

	agentClient := getSSHAgent()
	if agentClient == nil {
		if firstErr != nil {
			return nil, fmt.Errorf("private key rejected and no ssh agent available: %w", firstErr)
		}
		return nil, errors.New("no authentication method available (no private key configured and no ssh agent found)")
	}
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            host.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeysCallback(agentClient.Signers)},
		HostKeyCallback: callback,
		Timeout:         timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connection to %s with ssh agent failed: %w", host.Name, err)
	}
	return newRunner(host, client)
}

func newRunner(host model.Host, client *ssh.Client) (*SSHRunner, error) {
	sc, err := sftp.NewClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}
	return &SSHRunner{host: host, client: client, sftp: sc}, nil
}

// Run implements agent.Runner. Arguments are quoted for the remote shell.
func (r *SSHRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (agent.Output, error) {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellQuote(name))
	for _, a := range args {
		parts = append(parts, ShellQuote(a))
	}
	return r.exec(ctx, timeout, name, strings.Join(parts, " "))
}

// Shell implements agent.Runner.
func (r *SSHRunner) Shell(ctx context.Context, timeout time.Duration, command string) (agent.Output, error) {
	return r.exec(ctx, timeout, "sh", "sh -c "+ShellQuote(command))
}

func (r *SSHRunner) exec(ctx context.Context, timeout time.Duration, label, command string) (agent.Output, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	session, err := r.client.NewSession()
	if err != nil {
		return agent.Output{}, fmt.Errorf("%s: open session: %w", label, err)
	}
	defer func() { _ = session.Close() }()

	ctx, kill := context.WithCancel(ctx)
	defer kill()
	stdout := &agent.CappedBuffer{Max: agent.MaxOutputBytes, OnOverflow: kill}
	stderr := &agent.CappedBuffer{Max: agent.MaxOutputBytes, OnOverflow: kill}
	session.Stdout = stdout
	session.Stderr = stderr

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		<-done
		out := agent.Output{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: -1, Duration: time.Since(start)}
		if stdout.Overflowed() || stderr.Overflowed() {
			return out, fmt.Errorf("%s: %w (%d bytes)", label, agent.ErrOutputLimit, agent.MaxOutputBytes)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return out, fmt.Errorf("%s: %w after %s", label, agent.ErrTimeout, timeout)
		}
		return out, fmt.Errorf("%s: %w", label, ctx.Err())
	}

	out := agent.Output{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}
	if stdout.Overflowed() || stderr.Overflowed() {
		out.ExitCode = -1
		return out, fmt.Errorf("%s: %w (%d bytes)", label, agent.ErrOutputLimit, agent.MaxOutputBytes)
	}
	if err != nil {
		logging.Debugf("remote: %s on %s failed: %v", label, r.host.Name, err)
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitStatus()
		} else {
			out.ExitCode = -1
		}
		return out, fmt.Errorf("%s: %w", label, err)
	}
	return out, nil
}

// ReadFile implements agent.Runner over SFTP.
func (r *SSHRunner) ReadFile(_ context.Context, path string) ([]byte, error) {
	f, err := r.sftp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote file %s: %w", path, err)
	}
	return data, nil
}

// Close closes the SFTP and SSH clients.
func (r *SSHRunner) Close() error {
	if r.sftp != nil {
		_ = r.sftp.Close()
	}
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ShellQuote wraps s in single quotes for a POSIX shell.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, c := range s {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || strings.ContainsRune("@%+=:,./-_", c)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

const probeUser = "stratus-probe"

// errKeyCaptured stops the handshake once the host key has been seen.
var errKeyCaptured = errors.New("stratus: host key captured")

// GetRemoteHostKey connects to address only to read its host key.
func GetRemoteHostKey(address string, timeout time.Duration) (ssh.PublicKey, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	keyChan := make(chan ssh.PublicKey, 1)
	config := &ssh.ClientConfig{
		User: probeUser,
		HostKeyCallback: func(_ string, _ net.Addr, key ssh.PublicKey) error {
			keyChan <- key
			return errKeyCaptured
		},
		Timeout: timeout,
	}
	_, err := ssh.Dial("tcp", dialAddr(address), config)
	if err == nil {
		return nil, errors.New("ssh handshake completed unexpectedly, could not capture host key")
	}
	if strings.Contains(err.Error(), errKeyCaptured.Error()) {
		return <-keyChan, nil
	}
	return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
}

// FormatHostKey renders key the way it is stored in known_hosts.
func FormatHostKey(key ssh.PublicKey) string {
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(key)))
}

// HostKeyName returns the known_hosts lookup name for address.
func HostKeyName(address string) string {
	return hostOnly(address)
}
