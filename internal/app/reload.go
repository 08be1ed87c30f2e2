package app

import (
	"time"

	"github.com/dshills/mediator/internal/config"
	"github.com/dshills/mediator/internal/config/watcher"
	"github.com/dshills/mediator/internal/logging"
)

// reloadDebounce coalesces editor save bursts into one reload.
const reloadDebounce = 200 * time.Millisecond

func (a *App) startWatcher() error {
	w := watcher.New(
		watcher.WithDebounce(reloadDebounce),
		watcher.WithErrorHandler(func(err error) {
			a.log.Warn("config watcher: %v", err)
		}),
	)
	if err := w.Watch(a.opts.ConfigPath); err != nil {
		return err
	}
	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			a.log.Warn("config %s: %s, keeping current routes", ev.Path, ev.Op)
			return
		}
		if err := a.Reload(); err != nil {
			a.log.Error("reload %s: %v", ev.Path, err)
		}
	})
	if err := w.Start(); err != nil {
		return err
	}
	a.watcher = w
	return nil
}

// Reload rebuilds the mediator from the configuration file and swaps it
// in. On error the running generation is kept.
func (a *App) Reload() error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	if a.closed.Load() {
		return ErrClosed
	}

	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return err
	}
	rt, err := a.build(cfg)
	if err != nil {
		return err
	}

	if a.opts.LogLevel == "" {
		a.log.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	}
	a.cfg.Store(cfg)
	old := a.rt.Swap(rt)
	old.close()

	n := a.reloads.Add(1)
	a.log.Info("reloaded %s (#%d): %d routes", a.opts.ConfigPath, n, len(cfg.Routes))
	return nil
}
