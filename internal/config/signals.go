package config

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// sighupWatcher reloads the config on SIGHUP until stopped.
type sighupWatcher struct {
	signals chan os.Signal
	stop    chan struct{}
	done    chan struct{}
}

var (
	watcherMu sync.Mutex
	watcher   *sighupWatcher

	// reloading drops a SIGHUP that arrives while a reload is in progress.
	reloading sync.Mutex
)

// SetupSignalHandler reloads the config whenever the process receives
// SIGHUP, which is what `systemctl reload phoenix` sends. Calling it again
// replaces the previous handler.
func SetupSignalHandler() {
	watcherMu.Lock()
	defer watcherMu.Unlock()

	stopWatcherLocked()

	w := &sighupWatcher{
		signals: make(chan os.Signal, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	signal.Notify(w.signals, syscall.SIGHUP)
	go w.run()
	watcher = w
}

// StopSignalHandler stops the SIGHUP handler and waits for it to exit.
func StopSignalHandler() {
	watcherMu.Lock()
	defer watcherMu.Unlock()
	stopWatcherLocked()
}

func stopWatcherLocked() {
	if watcher == nil {
		return
	}
	close(watcher.stop)
	<-watcher.done
	watcher = nil
}

func (w *sighupWatcher) run() {
	defer close(w.done)
	defer signal.Stop(w.signals)

	for {
		select {
		case <-w.stop:
			return
		case <-w.signals:
			if !reloading.TryLock() {
				slog.Debug("SIGHUP received during reload; ignoring")
				continue
			}
			slog.Info("received SIGHUP; reloading config")
			// Reload logs and publishes its own failure and keeps the previous config.
			_ = Reload()
			reloading.Unlock()
		}
	}
}
