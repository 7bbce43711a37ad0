package watchdog

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/pkg/errors"
)

var sdNotify = daemon.SdNotify

// Systemd feeds the service manager's watchdog over the notify socket
// instead of a device node. Kicks are rate limited to half the unit's
// WatchdogSec so the loop does not flood the socket.
type Systemd struct {
	every time.Duration
	last  time.Time
	now   func() time.Time
}

// NewSystemd reports READY=1 and returns a kicker. It returns nil when the
// process is not running under a unit with WatchdogSec set.
func NewSystemd() (*Systemd, error) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return nil, errors.Wrap(err, "systemd watchdog")
	}
	if interval == 0 {
		return nil, nil
	}
	if _, err := sdNotify(false, daemon.SdNotifyReady); err != nil {
		return nil, errors.Wrap(err, "notify ready")
	}
	return &Systemd{every: interval / 2, now: time.Now}, nil
}

func (s *Systemd) Kick() error {
	t := s.now()
	if !s.last.IsZero() && t.Sub(s.last) < s.every {
		return nil
	}
	s.last = t
	_, err := sdNotify(false, daemon.SdNotifyWatchdog)
	return errors.Wrap(err, "notify watchdog")
}

func (s *Systemd) Close() error {
	_, err := sdNotify(false, daemon.SdNotifyStopping)
	return errors.Wrap(err, "notify stopping")
}
