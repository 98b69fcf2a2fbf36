package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"outputd/internal/xrandr"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run as a daemon, re-resolving on output and config changes",
	Long: `listen resolves once at startup and then blocks, re-running the
pipeline whenever an output is connected or disconnected and reloading
the config when its file changes on disk. An invalid config edit is
logged and the previous config kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, conn, err := newApp()
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return a.Listen(ctx, conn)
	},
}

// Listen runs the daemon loop until ctx is cancelled: an initial
// resolve, then one resolve per output change and a config reload per
// file change.
func (a *App) Listen(ctx context.Context, conn *xrandr.Conn) error {
	outputEvents, err := conn.WatchOutputChanges(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to output changes: %w", err)
	}

	cfgEvents := make(chan struct{}, 1)
	errc := make(chan error, 1)
	go func() {
		if err := watchConfigChanges(ctx, a.Cfg.Path(), cfgEvents); err != nil {
			errc <- fmt.Errorf("config watcher: %w", err)
		}
	}()

	slog.Info("listening for output and config changes", "config", a.Cfg.Path())
	if err := a.Resolve(ResolveOptions{}); err != nil {
		slog.Error("initial resolve", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			return nil

		case err := <-errc:
			return err

		case <-outputEvents:
			slog.Info("output topology changed")
			if err := a.Resolve(ResolveOptions{}); err != nil {
				slog.Error("resolving after output change", "error", err)
			}

		case <-cfgEvents:
			slog.Info("config file changed; reloading")
			cfg, err := a.Cfg.Reload()
			if err != nil {
				slog.Error("reloading config; keeping previous", "error", err)
				continue
			}
			a.Cfg = cfg
			if err := a.Resolve(ResolveOptions{}); err != nil {
				slog.Error("resolving after config reload", "error", err)
			}
		}
	}
}

// watchConfigChanges watches the config file's directory and signals on
// genuine content changes. Editors replace files rather than write in
// place, so the whole directory is watched and a content hash filters
// out spurious events.
func watchConfigChanges(ctx context.Context, cfgPath string, events chan<- struct{}) error {
	lastHash, err := fileHash(cfgPath)
	if err != nil {
		return fmt.Errorf("hashing config file: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config file watcher: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			slog.Error("closing config file watcher", "error", err)
		}
	}()

	if err := w.Add(filepath.Dir(cfgPath)); err != nil {
		return fmt.Errorf("adding config directory to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if event.Name != cfgPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			h, err := fileHash(cfgPath)
			if err != nil {
				continue
			}
			if h == lastHash {
				slog.Debug("config watcher: content unchanged")
				continue
			}
			lastHash = h

			select {
			case events <- struct{}{}:
			default:
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("config watcher fsnotify error: %w", err)
		}
	}
}

func fileHash(path string) ([32]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
