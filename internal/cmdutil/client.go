package cmdutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"time"

	"github.com/leefowlercu/phoenix/internal/config"
	"github.com/leefowlercu/phoenix/internal/daemonclient"
)

// ErrDaemonUnreachable is wrapped around connection failures so commands can
// print a single hint.
var ErrDaemonUnreachable = errors.New("daemon is not reachable; start it with `phoenix daemon start`")

// NewClient returns a daemon client for the loaded config.
func NewClient(timeout time.Duration) (*daemonclient.Client, error) {
	client, err := daemonclient.NewFromConfig(config.Get(), daemonclient.WithTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize daemon client; %w", err)
	}
	return client, nil
}

// WrapClientError replaces connection failures with ErrDaemonUnreachable and
// leaves daemon replies untouched.
func WrapClientError(err error) error {
	if err == nil {
		return nil
	}
	var se *daemonclient.StatusError
	if errors.As(err, &se) {
		return err
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w (%v)", ErrDaemonUnreachable, err)
	}
	return err
}

func isConnectionError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output; %w", err)
	}
	return nil
}
