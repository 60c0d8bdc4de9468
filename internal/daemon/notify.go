package daemon

import (
	"log/slog"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"
)

// Notifier reports lifecycle transitions to a service manager.
type Notifier interface {
	Notify(state string) error
}

// systemdNotifier sends sd_notify messages. Outside systemd NOTIFY_SOCKET is
// unset and every call is a no-op.
type systemdNotifier struct {
	logger *slog.Logger
}

func (n systemdNotifier) Notify(state string) error {
	sent, err := sddaemon.SdNotify(false, state)
	if err != nil {
		return err
	}
	if sent {
		n.logger.Debug("service manager notified", "state", state)
	}
	return nil
}

const (
	notifyReady    = sddaemon.SdNotifyReady
	notifyStopping = sddaemon.SdNotifyStopping
)
