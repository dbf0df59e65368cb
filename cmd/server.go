package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arzg/nunitius/internal/config"
	"github.com/arzg/nunitius/internal/hub"
	"github.com/arzg/nunitius/internal/log"
	"github.com/arzg/nunitius/internal/watcher"
)

var serverListenFlag string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the broadcast chat hub",
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().StringVar(&serverListenFlag, "listen", "", "address to listen on (default: listen_addr from config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	if isDebug() {
		cleanup, err := log.Init("nunitius-server.log")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()
		log.Info(log.CatHub, "nunitius server starting", "version", version)
	}

	addr := cfg.ListenAddr
	if serverListenFlag != "" {
		addr = serverListenFlag
	}
	if addr == "" {
		addr = config.Defaults().ListenAddr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	defer func() { _ = ln.Close() }()

	fmt.Printf("nunitius server listening on %s\n", ln.Addr().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := hub.SetupTracing(ctx)
	if err != nil {
		log.ErrorErr(log.CatHub, "failed to set up tracing", err)
	} else {
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	capacity := cfg.ChannelCapacity
	if capacity < 1 {
		capacity = config.Defaults().ChannelCapacity
	}

	if w, err := watcher.New(watcher.DefaultConfig(configFilePathForWatcher())); err == nil {
		if changes, err := w.Start(); err == nil {
			go watchConfigChanges(ctx, changes)
		}
		defer func() { _ = w.Stop() }()
	}

	h := hub.New(capacity)
	if err := h.Serve(ctx, ln); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// watchConfigChanges applies the subset of config hot-reload the server
// supports: debug logging toggled on/off without a restart. The toggle only
// has an effect when the logger was initialized at startup (the server was
// started in debug mode); otherwise log.SetEnabled does nothing. Other
// fields (listen_addr, channel_capacity) take effect only on the next start,
// since the listener and hub's channels are already constructed.
func watchConfigChanges(ctx context.Context, changes <-chan config.Config) {
	for {
		select {
		case newCfg := <-changes:
			log.SetEnabled(newCfg.Debug)
			log.Info(log.CatConfig, "config reloaded", "debug", newCfg.Debug)
		case <-ctx.Done():
			return
		}
	}
}
