package app

import (
	"github.com/pkg/errors"

	"github.com/coreman2200/funtimes-blinky/internal/config"
	"github.com/coreman2200/funtimes-blinky/internal/render"
	"github.com/coreman2200/funtimes-blinky/internal/render/scenes/crazy"
	"github.com/coreman2200/funtimes-blinky/internal/render/scenes/highbpm"
	"github.com/coreman2200/funtimes-blinky/internal/render/scenes/intense"
	"github.com/coreman2200/funtimes-blinky/internal/render/scenes/party"
	"github.com/coreman2200/funtimes-blinky/internal/render/scenes/psychedelic"
	"github.com/coreman2200/funtimes-blinky/internal/render/scenes/solid"
	"github.com/coreman2200/funtimes-blinky/internal/render/scenes/soothing"
	"github.com/coreman2200/funtimes-blinky/internal/sequence"
	"github.com/coreman2200/funtimes-blinky/internal/settings"
)

// scenes in registration order. Persisted pattern indices depend on it, so
// append only.
var scenes = []struct {
	name     string
	register func(*render.Registry) error
}{
	{"soothing", soothing.Register},
	{"solid", solid.Register},
	{"highbpm", highbpm.Register},
	{"party", party.Register},
	{"psychedelic", psychedelic.Register},
	{"intense", intense.Register},
	{"crazy", crazy.Register},
}

// BuildRegistry registers the shuffle slots first, then every scene.
func BuildRegistry(modes []sequence.ShuffleMode) (*render.Registry, error) {
	reg := render.NewRegistry()
	for _, m := range modes {
		if err := reg.Register(m.Descriptor()); err != nil {
			return nil, errors.Wrapf(err, "shuffle slot %q", m.Name)
		}
	}
	for _, s := range scenes {
		if err := s.register(reg); err != nil {
			return nil, errors.Wrapf(err, "register %s scenes", s.name)
		}
	}
	return reg, nil
}

func ShuffleModes(cfg []config.Shuffle) []sequence.ShuffleMode {
	out := make([]sequence.ShuffleMode, 0, len(cfg))
	for _, s := range cfg {
		out = append(out, sequence.ShuffleMode{Name: s.Name, Every: s.Every, Min: s.Min, Max: s.Max})
	}
	return out
}

// Limits derives the clamping bounds. The strip capacity caps the LED count.
func Limits(cfg *config.Config, patterns int) settings.Limits {
	return settings.Limits{
		MinBrightness:     cfg.Brightness.Min,
		MaxBrightness:     cfg.Brightness.Max,
		DefaultBrightness: cfg.Brightness.Default,
		MinLEDs:           cfg.Strip.MinLEDs,
		MaxLEDs:           min(cfg.Strip.MaxLEDs, render.MaxLEDs),
		DefaultLEDs:       cfg.Strip.DefaultLEDs,
		Patterns:          patterns,
	}
}
