// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// ContainerLister lists running containers without the docker CLI.
type ContainerLister interface {
	Containers(ctx context.Context) ([]Container, error)
}

// engineLister talks to the Docker Engine API configured by DOCKER_HOST and
// friends. The client is created on first use.
type engineLister struct {
	once sync.Once
	cli  *client.Client
	err  error
}

func (e *engineLister) engine() (*client.Client, error) {
	e.once.Do(func() {
		e.cli, e.err = client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if e.err != nil {
			e.err = fmt.Errorf("failed to create Docker client: %w", e.err)
		}
	})
	return e.cli, e.err
}

func (e *engineLister) Containers(ctx context.Context) ([]Container, error) {
	cli, err := e.engine()
	if err != nil {
		return nil, err
	}
	list, err := cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	out := make([]Container, 0, len(list))
	for _, c := range list {
		id := c.ID
		if len(id) > 12 {
			id = id[:12]
		}
		var name string
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		ports := make([]string, 0, len(c.Ports))
		for _, p := range c.Ports {
			if p.PublicPort != 0 {
				ports = append(ports, fmt.Sprintf("%s:%d->%d/%s", p.IP, p.PublicPort, p.PrivatePort, p.Type))
				continue
			}
			ports = append(ports, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
		}
		out = append(out, Container{
			ID:      id,
			Image:   c.Image,
			Command: c.Command,
			Created: time.Unix(c.Created, 0).UTC().Format("2006-01-02 15:04:05 -0700 MST"),
			Status:  c.Status,
			Ports:   strings.Join(ports, ", "),
			Name:    name,
		})
	}
	return out, nil
}
