package main

import (
	"io"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306"

	"github.com/coreman2200/funtimes-blinky/internal/config"
	"github.com/coreman2200/funtimes-blinky/internal/driver/fake"
	"github.com/coreman2200/funtimes-blinky/internal/input"
	"github.com/coreman2200/funtimes-blinky/internal/led"
	"github.com/coreman2200/funtimes-blinky/internal/watchdog"
)

// openDriver falls back to the console, then to the frame recorder, when the
// configured output is not available.
func openDriver(cfg *config.Config, hardware bool, log zerolog.Logger) led.Driver {
	selected := cfg.Driver
	if !hardware && selected == "spi" {
		selected = "console"
	}
	switch selected {
	case "spi":
		freq := physic.Frequency(cfg.SPI.FreqKHz) * physic.KiloHertz
		s, err := led.OpenNRZ(cfg.SPI.Dev, cfg.Strip.MaxLEDs, freq)
		if err == nil {
			log.Info().Str("driver", "spi").Str("port", s.String()).Int("capacity", s.Capacity()).Msg("LED strip ready")
			return s
		}
		log.Warn().Err(err).
			Str("driver", "spi").
			Str("dev", cfg.SPI.Dev).
			Int("freq_khz", cfg.SPI.FreqKHz).
			Msg("SPI init failed; printing at the console")
		return led.NewConsole(cfg.Strip.MaxLEDs)
	case "console":
		return led.NewConsole(cfg.Strip.MaxLEDs)
	default:
		l := log.With().Str("component", "sim").Logger()
		return &fake.Driver{Log: &l}
	}
}

func openButton(cfg *config.Config, hardware bool, log zerolog.Logger) input.Source {
	if !hardware || cfg.Button.Pin == "" {
		return nil
	}
	pin := gpioreg.ByName(cfg.Button.Pin)
	if pin == nil {
		log.Warn().Str("pin", cfg.Button.Pin).Msg("button pin not found; input disabled")
		return nil
	}
	b, err := input.NewButton(pin, input.ButtonOptions{
		Debounce:  cfg.Button.Debounce,
		LongPress: cfg.Button.LongPress,
	})
	if err != nil {
		log.Warn().Err(err).Msg("button setup failed; input disabled")
		return nil
	}
	return b
}

func openPanel(cfg *config.Config, hardware bool, log zerolog.Logger) (display.Drawer, io.Closer) {
	if !hardware || !cfg.Display.Enabled {
		return nil, nil
	}
	bus, err := i2creg.Open(cfg.Display.Bus)
	if err != nil {
		log.Warn().Err(err).Msg("I²C bus unavailable; display disabled")
		return nil, nil
	}
	opts := ssd1306.DefaultOpts
	if cfg.Display.Width > 0 && cfg.Display.Height > 0 {
		opts.W, opts.H = cfg.Display.Width, cfg.Display.Height
	}
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		log.Warn().Err(err).Msg("OLED not available")
		_ = bus.Close()
		return nil, nil
	}
	return dev, bus
}

func openWatchdog(cfg *config.Config, hardware bool, log zerolog.Logger) watchdog.Kicker {
	if cfg.Watchdog.Systemd {
		s, err := watchdog.NewSystemd()
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("systemd watchdog unavailable")
		case s == nil:
			log.Info().Msg("not running under a unit with WatchdogSec; systemd watchdog off")
		default:
			return s
		}
	}
	if hardware && cfg.Watchdog.Enabled {
		d, err := watchdog.Open(cfg.Watchdog.Path)
		if err == nil {
			return d
		}
		log.Warn().Err(err).Msg("watchdog unavailable")
	}
	return &watchdog.Noop{}
}
