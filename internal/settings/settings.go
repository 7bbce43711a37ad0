package settings

import (
	"github.com/rs/zerolog"
)

// Limits bounds what may be used or persisted.
type Limits struct {
	MinBrightness     uint8
	MaxBrightness     uint8
	DefaultBrightness uint8

	MinLEDs     int
	MaxLEDs     int
	DefaultLEDs int

	// Patterns is the registry size; 0 skips the index check.
	Patterns int
}

type Settings struct {
	Pattern    int
	Brightness uint8
	NumLEDs    int
}

func (l Limits) ClampBrightness(v int) uint8 {
	if v < int(l.MinBrightness) {
		return l.MinBrightness
	}
	if v > int(l.MaxBrightness) {
		return l.MaxBrightness
	}
	return uint8(v)
}

func (l Limits) ClampLEDs(n int) int {
	if n < l.MinLEDs {
		return l.MinLEDs
	}
	if n > l.MaxLEDs {
		return l.MaxLEDs
	}
	return n
}

// Defaults returns the settings used on first boot.
func (l Limits) Defaults() Settings {
	return Settings{Pattern: 0, Brightness: l.DefaultBrightness, NumLEDs: l.DefaultLEDs}
}

// Load reads settings from s. Absent keys take defaults; out-of-range
// values are reset to defaults and logged, never fatal.
func Load(s Store, l Limits, log zerolog.Logger) Settings {
	d := l.Defaults()
	out := d

	if v := s.Get(KeyPattern, d.Pattern); v < 0 || (l.Patterns > 0 && v >= l.Patterns) {
		log.Warn().Int("stored", v).Int("patterns", l.Patterns).Msg("invalid stored pattern; using default")
	} else {
		out.Pattern = v
	}

	if v := s.Get(KeyBrightness, int(d.Brightness)); v < int(l.MinBrightness) || v > int(l.MaxBrightness) {
		log.Warn().Int("stored", v).Msg("invalid stored brightness; using default")
	} else {
		out.Brightness = uint8(v)
	}

	if v := s.Get(KeyNumLEDs, d.NumLEDs); v < l.MinLEDs || v > l.MaxLEDs {
		log.Warn().Int("stored", v).Msg("invalid stored LED count; using default")
	} else {
		out.NumLEDs = v
	}

	log.Info().
		Int("pattern", out.Pattern).
		Uint8("brightness", out.Brightness).
		Int("num_leds", out.NumLEDs).
		Msg("settings loaded")
	return out
}

// Save clamps and writes all three settings.
func Save(s Store, l Limits, v Settings) error {
	if err := s.Set(KeyPattern, v.Pattern); err != nil {
		return err
	}
	if err := s.Set(KeyBrightness, int(l.ClampBrightness(int(v.Brightness)))); err != nil {
		return err
	}
	return s.Set(KeyNumLEDs, l.ClampLEDs(v.NumLEDs))
}
