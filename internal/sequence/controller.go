package sequence

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-blinky/internal/render"
	"github.com/coreman2200/funtimes-blinky/internal/settings"
)

// Controller owns the active pattern, the live frame, shuffle timing and
// cross-fades. It is driven from a single loop and is not safe for
// concurrent use.
type Controller struct {
	reg   *render.Registry
	store settings.Store
	opts  Options
	log   zerolog.Logger
	quiet zerolog.Logger
	now   func() time.Time
	rng   *rand.Rand
	modes map[string]ShuffleMode

	state      State
	epoch      time.Time
	frame      *render.Frame
	active     render.Renderer
	selected   int // registry slot chosen by the user, possibly a shuffle slot
	shown      int // pattern actually on the strip, -1 when none
	brightness uint8
	recovering bool
	faulted    int // last pattern that failed, kept out of shuffles until the next user selection

	shuffleAt    time.Time
	shuffleEvery time.Duration

	xf      transition
	oldSnap render.Frame
	newSnap render.Frame
}

// NewController builds a controller over reg. store may be nil, in which
// case nothing is persisted.
func NewController(reg *render.Registry, store settings.Store, opts Options, log zerolog.Logger) *Controller {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Rand == nil {
		seed := uint64(opts.Clock().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	}
	if !ValidEase(opts.Ease) {
		log.Warn().Str("ease", opts.Ease).Msg("unknown ease; using linear")
		opts.Ease = EaseLinear
	}
	c := &Controller{
		reg:        reg,
		store:      store,
		opts:       opts,
		log:        log.With().Str("component", "sequence").Logger(),
		now:        opts.Clock,
		rng:        opts.Rand,
		modes:      map[string]ShuffleMode{},
		state:      Uninitialized,
		frame:      render.NewFrame(opts.Limits.DefaultLEDs),
		shown:      -1,
		faulted:    -1,
		brightness: opts.Limits.DefaultBrightness,
	}
	c.quiet = c.log.Sample(&zerolog.BurstSampler{Burst: 1, Period: 5 * time.Second})
	for _, m := range opts.Shuffle {
		c.modes[m.Name] = m
	}
	c.epoch = c.now()
	return c
}

// Begin applies loaded settings, moves to ready and selects the stored
// pattern.
func (c *Controller) Begin(s settings.Settings) error {
	lim := c.opts.Limits
	c.brightness = lim.ClampBrightness(int(s.Brightness))
	c.frame.SetLen(lim.ClampLEDs(s.NumLEDs))
	c.frame.Clear()
	c.epoch = c.now()
	c.state = Steady
	c.log.Info().
		Int("patterns", c.reg.Len()).
		Uint8("brightness", c.brightness).
		Int("num_leds", c.frame.Len()).
		Msg("pattern controller ready")
	return c.SelectPattern(s.Pattern)
}

// SelectPattern switches to registry slot i, clamped to the valid range.
// The old renderer is dropped before the new one is created and the index
// is persisted only once creation succeeded.
func (c *Controller) SelectPattern(i int) error {
	if c.state == Uninitialized {
		return ErrNotReady
	}
	c.cancelTransition()
	c.destroy()
	if !c.recovering {
		c.faulted = -1
	}

	n := c.reg.Len()
	if n == 0 {
		c.selected = 0
		c.quiet.Error().Err(ErrEmptyRegistry).Msg("cannot select pattern")
		return ErrEmptyRegistry
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		c.log.Warn().Int("requested", i).Int("clamped", n-1).Msg("pattern index out of range")
		i = n - 1
	}
	c.selected = i

	d, _ := c.reg.Get(i)
	r, err := c.create(d)
	if err != nil {
		c.log.Error().Err(err).Int("index", i).Msg("pattern creation failed")
		return err
	}
	c.active = r
	c.shown = i
	c.persist(settings.KeyPattern, i)
	c.log.Info().Int("index", i).Str("pattern", d.Name).Msg("pattern selected")

	if d.Category == render.Shuffle {
		c.shuffle(c.now())
	}
	return nil
}

// NextPattern advances the selected slot, wrapping at the end.
func (c *Controller) NextPattern() error {
	n := c.reg.Len()
	if n == 0 {
		return c.SelectPattern(0)
	}
	return c.SelectPattern((c.selected + 1) % n)
}

// Tick advances one frame: blend or commit while transitioning, otherwise
// render the active pattern once.
func (c *Controller) Tick() {
	if c.state == Uninitialized {
		return
	}
	now := c.now()

	if c.state == Steady && c.InShuffle() && now.Sub(c.shuffleAt) >= c.shuffleEvery {
		c.shuffle(now)
	}

	switch c.state {
	case Transitioning:
		elapsed := now.Sub(c.xf.start)
		if elapsed >= c.xf.duration {
			c.commit()
			return
		}
		p := easeApply(c.opts.Ease, float64(elapsed)/float64(c.xf.duration))
		render.Mix(c.frame.Pixels(), c.oldSnap.Pixels(), c.newSnap.Pixels(), p)
	case Steady:
		if c.active == nil {
			c.quiet.Warn().Msg("no active pattern; frame skipped")
			return
		}
		if err := c.active.Render(c.frame.Pixels(), now.Sub(c.epoch)); err != nil {
			c.fault(err)
		}
	}
}

// StartTransition cross-fades to target. It is a no-op while another
// transition runs.
func (c *Controller) StartTransition(target int) error {
	switch c.state {
	case Uninitialized:
		return ErrNotReady
	case Transitioning:
		c.log.Debug().Int("target", target).Int("current_target", c.xf.target).Msg("transition already in progress")
		return nil
	}
	n := c.reg.Len()
	if n == 0 {
		return ErrEmptyRegistry
	}
	if target < 0 || target >= n {
		target = n - 1
	}
	now := c.now()
	t := now.Sub(c.epoch)

	// one last frame of the outgoing pattern
	if c.active != nil {
		if err := c.active.Render(c.frame.Pixels(), t); err != nil {
			c.log.Error().Err(err).Str("pattern", c.active.Name()).Msg("outgoing pattern failed; fading from last frame")
		}
	}
	c.oldSnap.CopyFrom(c.frame)
	from := c.nameAt(c.shown)
	c.destroy()

	d, _ := c.reg.Get(target)
	r, err := c.create(d)
	if err != nil {
		c.log.Error().Err(err).Int("target", target).Msg("transition target creation failed")
		return err
	}
	c.active = r
	c.shown = target
	c.newSnap.SetLen(c.frame.Len())
	render.Fill(c.newSnap.Pixels(), render.Black)
	if err := r.Render(c.newSnap.Pixels(), t); err != nil {
		c.fault(err)
		return err
	}

	c.xf = transition{start: now, duration: c.opts.Transition, target: target}
	c.state = Transitioning
	c.log.Info().
		Str("from", from).
		Str("to", d.Name).
		Dur("duration", c.opts.Transition).
		Msg("transition started")
	return nil
}

// SetBrightness clamps, applies and persists the brightness.
func (c *Controller) SetBrightness(v int) {
	b := c.opts.Limits.ClampBrightness(v)
	if b != c.brightness {
		c.log.Info().Int("requested", v).Uint8("brightness", b).Msg("brightness changed")
	}
	c.brightness = b
	if c.active != nil {
		c.active.SetBrightness(b)
	}
	c.persist(settings.KeyBrightness, int(b))
}

// SetNumLEDs clamps and applies the active LED count. The frame is cleared,
// any transition is cancelled and the shown pattern is recreated for the
// new length.
func (c *Controller) SetNumLEDs(n int) {
	n = c.frame.SetLen(c.opts.Limits.ClampLEDs(n))
	c.cancelTransition()
	c.frame.Clear()
	c.log.Info().Int("num_leds", n).Msg("LED count changed")

	if c.state != Uninitialized && c.shown >= 0 {
		idx := c.shown
		c.destroy()
		d, _ := c.reg.Get(idx)
		if r, err := c.create(d); err != nil {
			c.log.Error().Err(err).Int("index", idx).Msg("pattern recreation failed")
		} else {
			c.active = r
			c.shown = idx
		}
	}
	c.persist(settings.KeyNumLEDs, n)
}

func (c *Controller) commit() {
	c.frame.CopyFrom(&c.newSnap)
	c.shown = c.xf.target
	c.state = Steady
	if !c.InShuffle() {
		c.selected = c.xf.target
		c.persist(settings.KeyPattern, c.selected)
	}
	c.log.Debug().Str("pattern", c.nameAt(c.shown)).Msg("transition complete")
	c.xf = transition{}
}

func (c *Controller) cancelTransition() {
	if c.state == Transitioning {
		c.state = Steady
		c.xf = transition{}
	}
}

func (c *Controller) shuffle(now time.Time) {
	d, _ := c.reg.Get(c.selected)
	m, ok := c.modes[d.Name]
	if !ok {
		m = ShuffleMode{Name: d.Name, Every: defaultShuffleEvery}
	}
	c.shuffleAt = now
	c.shuffleEvery = m.interval(c.rng)

	pool := c.reg.Eligible(c.shown)
	if c.faulted >= 0 {
		pool = slices.DeleteFunc(pool, func(i int) bool { return i == c.faulted })
	}
	if len(pool) == 0 {
		c.quiet.Warn().Str("mode", m.Name).Msg("no patterns eligible for shuffle")
		return
	}
	target := pool[c.rng.IntN(len(pool))]
	c.log.Info().
		Str("mode", m.Name).
		Int("target", target).
		Dur("next_in", c.shuffleEvery).
		Msg("shuffle")
	_ = c.StartTransition(target)
}

// fault tears down the failing pattern and falls back to slot 0. A failure
// while already recovering, or in slot 0 itself, leaves the strip black.
// When slot 0 shuffles, the failed pattern is not drawn again.
func (c *Controller) fault(err error) {
	faulted := c.shown
	c.faulted = faulted
	c.log.Error().Err(err).
		Int("index", faulted).
		Str("pattern", c.nameAt(faulted)).
		Msg("pattern fault; falling back to default")
	c.cancelTransition()
	c.destroy()

	if faulted == 0 || c.recovering {
		c.shown = -1
		c.frame.Clear()
		return
	}
	c.recovering = true
	defer func() { c.recovering = false }()
	_ = c.SelectPattern(0)
}

func (c *Controller) create(d render.Descriptor) (render.Renderer, error) {
	if d.Factory == nil {
		return nil, errors.Wrapf(ErrNoRenderer, "pattern %q", d.Name)
	}
	r, err := d.Factory(render.Env{NumLEDs: c.frame.Len(), Brightness: c.brightness, Rand: c.rng})
	if err != nil {
		return nil, errors.Wrapf(err, "create %q", d.Name)
	}
	if r == nil {
		return nil, errors.Wrapf(ErrNoRenderer, "pattern %q", d.Name)
	}
	r.SetBrightness(c.brightness)
	return r, nil
}

func (c *Controller) destroy() {
	c.active = nil
	c.shown = -1
}

func (c *Controller) persist(key string, v int) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(key, v); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("persist failed")
	}
}

func (c *Controller) nameAt(i int) string {
	if i < 0 || i >= c.reg.Len() {
		return ""
	}
	d, _ := c.reg.Get(i)
	return d.Name
}
