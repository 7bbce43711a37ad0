// Package logging builds the process logger: a console writer on stdout and
// optionally a plain-text copy on a serial port.
package logging

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/journald"
	"go.bug.st/serial"
)

type Options struct {
	Level string
	// Serial is a serial device that receives a copy of every line.
	Serial string
	Baud   int
	// Journal also sends structured entries to the systemd journal.
	Journal bool
}

var journalWriter = journald.NewJournalDWriter

var openSerial = func(dev string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(dev, mode)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns the logger and a closer for any port it opened. An invalid
// level falls back to info and is reported as an error alongside a usable
// logger.
func New(out io.Writer, opts Options) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	var lerr error
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			lerr = errors.Wrapf(err, "log level %q", opts.Level)
		} else {
			level = l
		}
	}

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	writers := []io.Writer{console}
	if opts.Journal {
		writers = append(writers, journalWriter())
	}
	var w io.Writer = zerolog.MultiLevelWriter(writers...)
	var closer io.Closer = nopCloser{}

	if opts.Serial != "" {
		baud := opts.Baud
		if baud <= 0 {
			baud = 115200
		}
		port, err := openSerial(opts.Serial, &serial.Mode{BaudRate: baud})
		if err != nil {
			log := zerolog.New(w).Level(level).With().Timestamp().Logger()
			return log, closer, errors.Wrap(err, "failed to open serial port")
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: port, NoColor: true, TimeFormat: time.RFC3339})
		w = zerolog.MultiLevelWriter(writers...)
		closer = port
	}

	log := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return log, closer, lerr
}
