package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Strip struct {
	MaxLEDs     int `yaml:"max_leds"` // physical capacity, at most render.MaxLEDs
	MinLEDs     int `yaml:"min_leds"`
	DefaultLEDs int `yaml:"default_leds"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // periph port name, "" for the first
	FreqKHz int    `yaml:"freq_khz"` // e.g. 2500
}

type Brightness struct {
	Min     uint8 `yaml:"min"`
	Max     uint8 `yaml:"max"`
	Default uint8 `yaml:"default"`
}

type Power struct {
	BudgetMA float64 `yaml:"budget_ma"`
	ChanMA   float64 `yaml:"chan_ma"`
	IdleMA   float64 `yaml:"idle_ma"`
	Knee     float64 `yaml:"knee"`
}

type Timing struct {
	Loop    time.Duration `yaml:"loop"`
	Frame   time.Duration `yaml:"frame"`
	Show    time.Duration `yaml:"show"`
	Display time.Duration `yaml:"display"`
}

type Transition struct {
	Duration time.Duration `yaml:"duration"`
	Ease     string        `yaml:"ease"` // linear | smooth | cubic
}

// Shuffle is one shuffle slot. Every wins over Min/Max.
type Shuffle struct {
	Name  string        `yaml:"name"`
	Every time.Duration `yaml:"every,omitempty"`
	Min   time.Duration `yaml:"min,omitempty"`
	Max   time.Duration `yaml:"max,omitempty"`
}

type Button struct {
	Pin            string        `yaml:"pin"`
	Debounce       time.Duration `yaml:"debounce"`
	LongPress      time.Duration `yaml:"long_press"`
	CountDown      time.Duration `yaml:"count_down"`
	CountUp        time.Duration `yaml:"count_up"`
	Repeat         time.Duration `yaml:"repeat"`
	BrightnessStep int           `yaml:"brightness_step"`
	CountDownStep  int           `yaml:"count_down_step"`
	CountUpStep    int           `yaml:"count_up_step"`
}

type Rect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type Display struct {
	Enabled bool   `yaml:"enabled"`
	Bus     string `yaml:"bus"` // periph I²C bus name, "" for the first
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	// Area is the visible window on panels smaller than the controller RAM.
	Area Rect `yaml:"area"`
}

type Settings struct {
	Path          string        `yaml:"path"`
	Namespace     string        `yaml:"namespace"`
	WriteInterval time.Duration `yaml:"write_interval"`
}

type Diagnostics struct {
	Interval   time.Duration `yaml:"interval"`
	HeapWarnMB int           `yaml:"heap_warn_mb"`
	HeapCritMB int           `yaml:"heap_crit_mb"`
	FlushWarn  time.Duration `yaml:"flush_warn"`
}

type Watchdog struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// Systemd feeds the unit's WatchdogSec over the notify socket instead
	// of opening Path.
	Systemd bool `yaml:"systemd"`
}

type SelfTest struct {
	Kind  string        `yaml:"kind"` // "" | first_red | rgb_channels | index_sweep
	Count int           `yaml:"count"`
	Hold  time.Duration `yaml:"hold"`
}

type Serial struct {
	Dev  string `yaml:"dev"`
	Baud int    `yaml:"baud"`
}

type Config struct {
	Driver     string `yaml:"driver"` // "spi" | "console" | "sim"
	LogLevel   string `yaml:"log_level"`
	LogJournal bool   `yaml:"log_journal"`

	Strip      Strip      `yaml:"strip"`
	SPI        SPI        `yaml:"spi,omitempty"`
	Brightness Brightness `yaml:"brightness"`
	Power      Power      `yaml:"power"`
	Timing     Timing     `yaml:"timing"`
	Transition Transition `yaml:"transition"`
	Shuffle    []Shuffle  `yaml:"shuffle"`

	Button      Button      `yaml:"button"`
	Display     Display     `yaml:"display"`
	Settings    Settings    `yaml:"settings"`
	Diagnostics Diagnostics `yaml:"diagnostics"`
	Watchdog    Watchdog    `yaml:"watchdog"`
	SelfTest    SelfTest    `yaml:"selftest"`
	Serial      Serial      `yaml:"serial,omitempty"`
}

func Default() *Config {
	return &Config{
		Driver:   "spi",
		LogLevel: "info",
		Strip:    Strip{MaxLEDs: 1000, MinLEDs: 1, DefaultLEDs: 100},
		SPI:      SPI{FreqKHz: 2500},
		Brightness: Brightness{
			Min:     5,
			Max:     255,
			Default: 128,
		},
		Power: Power{BudgetMA: 1000, ChanMA: 20, IdleMA: 1, Knee: 0.9},
		Timing: Timing{
			Loop:    5 * time.Millisecond,
			Frame:   50 * time.Millisecond,
			Show:    30 * time.Millisecond,
			Display: 250 * time.Millisecond,
		},
		Transition: Transition{Duration: time.Second, Ease: "linear"},
		Shuffle: []Shuffle{
			{Name: "R Shuffle", Min: 5 * time.Second, Max: 2 * time.Minute},
			{Name: "10s Shuffle", Every: 10 * time.Second},
			{Name: "5m Shuffle", Every: 5 * time.Minute},
		},
		Button: Button{
			Pin:            "GPIO17",
			Debounce:       50 * time.Millisecond,
			LongPress:      time.Second,
			CountDown:      4 * time.Second,
			CountUp:        6 * time.Second,
			Repeat:         500 * time.Millisecond,
			BrightnessStep: 25,
			CountDownStep:  50,
			CountUpStep:    100,
		},
		Display: Display{
			Enabled: true,
			Width:   128,
			Height:  64,
			Area:    Rect{X: 30, Y: 12, W: 72, H: 40},
		},
		Settings: Settings{
			Path:          "blinky-settings.toml",
			Namespace:     "jos_led_controller",
			WriteInterval: 5 * time.Second,
		},
		Diagnostics: Diagnostics{
			Interval:   5 * time.Second,
			HeapWarnMB: 32,
			HeapCritMB: 64,
			FlushWarn:  20 * time.Millisecond,
		},
		Watchdog: Watchdog{Path: "/dev/watchdog"},
		SelfTest: SelfTest{Kind: "first_red", Count: 5, Hold: 500 * time.Millisecond},
		Serial:   Serial{Baud: 115200},
	}
}

// Validate reports the first setting that cannot be used as given.
func (c *Config) Validate(maxLEDs int) error {
	switch c.Driver {
	case "spi", "console", "sim":
	default:
		return errors.Errorf("driver %q: want spi, console or sim", c.Driver)
	}
	if c.Strip.MaxLEDs <= 0 || c.Strip.MaxLEDs > maxLEDs {
		return errors.Errorf("strip.max_leds %d: want 1..%d", c.Strip.MaxLEDs, maxLEDs)
	}
	if c.Strip.MinLEDs <= 0 || c.Strip.MinLEDs > c.Strip.MaxLEDs {
		return errors.Errorf("strip.min_leds %d: want 1..%d", c.Strip.MinLEDs, c.Strip.MaxLEDs)
	}
	if c.Strip.DefaultLEDs < c.Strip.MinLEDs || c.Strip.DefaultLEDs > c.Strip.MaxLEDs {
		return errors.Errorf("strip.default_leds %d outside [%d, %d]", c.Strip.DefaultLEDs, c.Strip.MinLEDs, c.Strip.MaxLEDs)
	}
	b := c.Brightness
	if b.Min == 0 || b.Min > b.Max || b.Default < b.Min || b.Default > b.Max {
		return errors.Errorf("brightness min=%d max=%d default=%d", b.Min, b.Max, b.Default)
	}
	if c.Timing.Loop <= 0 || c.Timing.Frame <= 0 || c.Timing.Show <= 0 || c.Timing.Display <= 0 {
		return errors.New("timing intervals must be positive")
	}
	if c.Transition.Duration < 0 {
		return errors.New("transition.duration must not be negative")
	}
	seen := map[string]bool{}
	for _, s := range c.Shuffle {
		if s.Name == "" {
			return errors.New("shuffle slot without a name")
		}
		if seen[s.Name] {
			return errors.Errorf("duplicate shuffle slot %q", s.Name)
		}
		seen[s.Name] = true
		if s.Every <= 0 && (s.Min <= 0 || s.Max < s.Min) {
			return errors.Errorf("shuffle %q: set every, or 0 < min <= max", s.Name)
		}
	}
	if c.Button.LongPress <= 0 || c.Button.CountDown < c.Button.LongPress || c.Button.CountUp < c.Button.CountDown {
		return errors.New("button thresholds must satisfy 0 < long_press <= count_down <= count_up")
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create config dir")
		}
	}
	return errors.Wrap(os.WriteFile(path, b, 0o644), "write config")
}
