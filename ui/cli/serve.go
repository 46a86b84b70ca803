// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/httpserver"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/logging"
)

// serveHTTP is swapped in tests.
var serveHTTP = httpserver.Serve

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and, if enabled, the metrics monitor",
		Long: `Starts the REST API on server.listen_addr. With monitor.enabled the local
host is sampled every monitor.interval; each sample is stored as a system
metrics row and threshold breaches raise alerts.`,
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
				appConfig.Server.ListenAddr = addr
			}
			if monitor, _ := cmd.Flags().GetBool("with-monitor"); monitor {
				appConfig.Monitor.Enabled = true
			}

			svc, err := loadService(cmd)
			if err != nil {
				return err
			}
			handler, err := httpserver.NewRouter(httpserver.Deps{
				Service: svc,
				Server:  appConfig.Server,
				Agent:   appConfig.Agent,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var wg sync.WaitGroup
			if appConfig.Monitor.Enabled {
				mon := svc.NewMonitor(core.MonitorConfig{
					Interval:        appConfig.Monitor.Interval,
					CPUThreshold:    appConfig.Monitor.CPUThreshold,
					MemoryThreshold: appConfig.Monitor.MemoryThreshold,
					DiskThreshold:   appConfig.Monitor.DiskThreshold,
				})
				wg.Add(1)
				go func() {
					defer wg.Done()
					mon.Run(ctx)
				}()
			}

			logging.Infof("%s", i18n.T("serve.starting", appConfig.Server.ListenAddr))
			err = serveHTTP(ctx, appConfig.Server.ListenAddr, handler)
			stop()
			wg.Wait()
			return err
		},
	}
	cmd.Flags().String("listen", "", "Listen address, overrides server.listen_addr")
	cmd.Flags().Bool("with-monitor", false, "Enable the metrics monitor regardless of config")
	return cmd
}
