package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/filestore/am"
	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/filestore"
	"github.com/teranos/filestore/logger"
	"github.com/teranos/filestore/model"
)

func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Purge expired events on a timer and reload changed files",
		Long: `Keep the store directory loaded until interrupted.

Every events.expiration_check_seconds, events past their expiration are
deleted and their files removed. When store.watch is set (or --reload is
given), kinds whose files change on disk are reloaded. Edits to the user
config (~/.filestore/am.toml) adjust the sweep interval without a restart.`,
		Args: cobra.NoArgs,
		RunE: withRuntime(runWatch),
	}
	watchCmd.Flags().Bool("reload", false, "Reload changed files (default: store.watch)")
	return watchCmd
}

func runWatch(cmd *cobra.Command, rt *runtime, args []string) error {
	ctx, stop := signal.NotifyContext(rt.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := rt.cfg.Store.Watch
	if cmd.Flags().Changed("reload") {
		reload, _ = cmd.Flags().GetBool("reload")
	}

	g, gctx := errgroup.WithContext(ctx)

	if reload {
		w, err := filestore.NewWatcher(rt.dir, rt.cfg.GetWatchDebounce())
		if err != nil {
			return err
		}
		w.OnReload(func(kind model.Kind) {
			rt.log.Infow("Reloaded from disk",
				logger.FieldKind, kind,
				logger.FieldCount, rt.dir.Stores().Counts()[kind])
		})
		g.Go(func() error { return w.Run(gctx) })
	}

	intervals := make(chan time.Duration, 1)
	if stopConfig := watchConfig(rt, intervals); stopConfig != nil {
		defer stopConfig()
	}
	g.Go(func() error {
		return sweepExpired(gctx, rt, rt.cfg.GetExpirationCheckInterval(), intervals)
	})

	pterm.Info.WithWriter(cmd.OutOrStdout()).Printfln("Watching %s (reload: %t, sweep: %s). Press Ctrl+C to stop.",
		rt.dir.Root(), reload, rt.cfg.GetExpirationCheckInterval())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// sweepExpired purges expired events every interval until ctx is done.
// A zero interval pauses the sweep until a new one arrives.
func sweepExpired(ctx context.Context, rt *runtime, interval time.Duration, intervals <-chan time.Duration) error {
	p, err := rt.events.Create(rt.session)
	if err != nil {
		return err
	}

	var tick <-chan time.Time
	var ticker *time.Ticker
	reset := func(d time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if d > 0 {
			ticker = time.NewTicker(d)
			tick = ticker.C
		}
	}
	reset(interval)
	defer reset(0)

	for {
		select {
		case <-ctx.Done():
			return nil

		case d := <-intervals:
			rt.log.Infow("Expiration sweep interval changed", "interval", d.String())
			reset(d)

		case now := <-tick:
			if n := p.ClearExpired(now.UnixMilli()); n > 0 {
				if err := rt.dir.FlushKind(ctx, model.KindEvent); err != nil {
					rt.log.Errorw("Failed to write back expired events",
						logger.FieldError, err)
				}
			}
		}
	}
}

// watchConfig follows the user config file and forwards sweep interval
// changes. It returns nil when there is no user config to watch.
func watchConfig(rt *runtime, intervals chan<- time.Duration) func() {
	path := am.UserConfigPath()
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	cw, err := am.NewConfigWatcher(path)
	if err != nil {
		rt.log.Warnw("Config watcher unavailable",
			logger.FieldFile, path,
			logger.FieldError, err)
		return nil
	}
	cw.OnReload(func(cfg *am.Config) error {
		select {
		case intervals <- cfg.GetExpirationCheckInterval():
		default:
		}
		return nil
	})
	am.SetGlobalWatcher(cw)
	cw.Start()

	return func() {
		am.SetGlobalWatcher(nil)
		if err := cw.Stop(); err != nil {
			rt.log.Warnw("Config watcher stop failed",
				logger.FieldError, err)
		}
	}
}
