// Package watchdog feeds the Linux hardware watchdog.
package watchdog

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// DefaultPath is the kernel watchdog device.
const DefaultPath = "/dev/watchdog"

// Kicker is fed once per loop iteration.
type Kicker interface {
	Kick() error
	Close() error
}

// Device writes to a watchdog character device. Once opened, the board
// resets unless Kick is called within the driver's timeout.
type Device struct {
	w    io.WriteCloser
	path string
}

func Open(path string) (*Device, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open watchdog %s", path)
	}
	return &Device{w: f, path: path}, nil
}

// New wraps an already open device.
func New(w io.WriteCloser) *Device { return &Device{w: w} }

func (d *Device) Kick() error {
	_, err := d.w.Write([]byte{0})
	return errors.Wrap(err, "watchdog kick")
}

// Close disarms the watchdog with the magic close character.
func (d *Device) Close() error {
	if _, err := d.w.Write([]byte{'V'}); err != nil {
		_ = d.w.Close()
		return errors.Wrap(err, "watchdog disarm")
	}
	return errors.Wrap(d.w.Close(), "watchdog close")
}

// Noop is used when no watchdog is configured.
type Noop struct{ Kicks int }

func (n *Noop) Kick() error  { n.Kicks++; return nil }
func (n *Noop) Close() error { return nil }
