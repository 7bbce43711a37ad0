package sequence

import (
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"

	"github.com/coreman2200/funtimes-blinky/internal/render"
	"github.com/coreman2200/funtimes-blinky/internal/settings"
)

var (
	ErrEmptyRegistry = errors.New("pattern registry is empty")
	ErrNoRenderer    = errors.New("factory returned no renderer")
	ErrNotReady      = errors.New("controller not started")
)

// State enumerates controller states. Steady and Transitioning are the two
// sub-states of ready.
type State string

const (
	Uninitialized State = "uninitialized"
	Steady        State = "steady"
	Transitioning State = "transitioning"
)

// ShuffleMode is the timing policy of one shuffle slot. A fixed Every wins;
// otherwise each interval is drawn uniformly from [Min, Max].
type ShuffleMode struct {
	Name  string
	Every time.Duration
	Min   time.Duration
	Max   time.Duration
}

const defaultShuffleEvery = 10 * time.Second

func (m ShuffleMode) interval(r *rand.Rand) time.Duration {
	switch {
	case m.Every > 0:
		return m.Every
	case m.Max > m.Min && m.Min >= 0:
		return m.Min + time.Duration(r.Int64N(int64(m.Max-m.Min)+1))
	case m.Min > 0:
		return m.Min
	default:
		return defaultShuffleEvery
	}
}

// Descriptor is the registry entry for this shuffle slot. The slot renders
// black; the controller swaps in real patterns while it is selected.
func (m ShuffleMode) Descriptor() render.Descriptor {
	return render.Descriptor{Name: m.Name, Category: render.Shuffle, Factory: render.NewBlank(m.Name)}
}

type Options struct {
	// Transition is the cross-fade length; 0 cuts straight over.
	Transition time.Duration
	Ease       string
	Shuffle    []ShuffleMode
	Limits     settings.Limits

	Clock func() time.Time
	Rand  *rand.Rand
}

// transition exists only while state == Transitioning.
type transition struct {
	start    time.Time
	duration time.Duration
	target   int
}
