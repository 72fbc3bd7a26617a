// Copyright 2026 The Ramfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hpc-scratch/ramfs/cfg"
	"github.com/hpc-scratch/ramfs/internal/engine"
)

// newServeMetricsCmd mounts a superblock and exposes its prometheus
// registry over /metrics until interrupted. The server and the mount share
// one errgroup so a failure on either side tears down the other, the same
// coordination gcsfuse's cmd/mount.go uses for its own background
// goroutines (golang.org/x/sync/errgroup).
func newServeMetricsCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Mount a superblock and serve its metrics registry over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(c); err != nil {
				return err
			}

			e, err := engine.Mount(c)
			if err != nil {
				return fmt.Errorf("mount: %w", err)
			}
			defer e.Close()

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(e.Metr.Registerer(), promhttp.HandlerOpts{}))
			srv := &http.Server{Addr: addr, Handler: mux}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				return srv.Shutdown(context.Background())
			})

			fmt.Printf("serving metrics on %s/metrics\n", addr)
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9400", "Address to serve /metrics on")
	return cmd
}
