// Copyright 2025 The Rivaas Authors
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

package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Run serves until ctx is canceled, then shuts down gracefully within the
// configured shutdown timeout and flushes tracing. Signal handling is left
// to the caller, typically through signal.NotifyContext.
func (a *App) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Server.Addr, err)
	}

	server := &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	a.mu.Lock()
	a.addr = ln.Addr()
	a.mu.Unlock()

	a.printStartupBanner(a.bannerOutput, ln.Addr().String())
	a.logger.InfoContext(ctx, "server started",
		"addr", ln.Addr().String(),
		"version", a.version,
		"store", a.cfg.Database.Driver,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	close(a.ready)

	select {
	case err := <-serverErr:
		a.shutdownTracing(context.Background())
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		a.logger.Info("server shutting down", "reason", context.Cause(ctx))
	}

	// ctx is already done; the shutdown gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.shutdownTracing(shutdownCtx)
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.shutdownTracing(shutdownCtx)

	a.logger.Info("server exited")
	return nil
}

func (a *App) shutdownTracing(ctx context.Context) {
	if a.tracing == nil {
		return
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		a.logger.Warn("tracing shutdown failed", "error", err)
	}
}
