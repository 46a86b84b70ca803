//go:build windows

// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package remote

import (
	"os"

	"github.com/Microsoft/go-winio"
	"github.com/davidmz/go-pageant"
	"golang.org/x/crypto/ssh/agent"
)

// getSSHAgent tries Pageant first, then the OpenSSH agent named pipe.
func getSSHAgent() agent.Agent {
	if pageant.Available() {
		return pageant.New()
	}
	pipe := os.Getenv("SSH_AUTH_SOCK")
	if pipe == "" {
		pipe = `\\.\pipe\openssh-ssh-agent`
	}
	conn, err := winio.DialPipe(pipe, nil)
	if err == nil && conn != nil {
		return agent.NewClient(conn)
	}
	return nil
}
