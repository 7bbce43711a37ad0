package app

import (
	"context"
	"image"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	conndisplay "periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-blinky/internal/config"
	"github.com/coreman2200/funtimes-blinky/internal/diagnostics"
	"github.com/coreman2200/funtimes-blinky/internal/display"
	"github.com/coreman2200/funtimes-blinky/internal/input"
	"github.com/coreman2200/funtimes-blinky/internal/led"
	"github.com/coreman2200/funtimes-blinky/internal/render"
	"github.com/coreman2200/funtimes-blinky/internal/selftest"
	"github.com/coreman2200/funtimes-blinky/internal/sequence"
	"github.com/coreman2200/funtimes-blinky/internal/settings"
	"github.com/coreman2200/funtimes-blinky/internal/watchdog"
)

// Version is shown on the boot screen.
var Version = "dev"

// Deps are the pieces the orchestrator is wired from. Only Config, Registry
// and Driver are required.
type Deps struct {
	Config   *config.Config
	Registry *render.Registry
	Driver   led.Driver
	Store    settings.Store
	Button   input.Source
	Panel    conndisplay.Drawer
	Watchdog watchdog.Kicker
	Clock    func() time.Time
	Rand     *rand.Rand
	Log      zerolog.Logger
}

// Orchestrator runs the single cooperative loop: input, pattern state,
// display, flush, watchdog.
type Orchestrator struct {
	cfg   *config.Config
	log   zerolog.Logger
	quiet zerolog.Logger
	now   func() time.Time

	limits settings.Limits
	ctrl   *sequence.Controller
	input  *input.Controller
	disp   *display.Adapter
	store  *settings.Throttled
	drv    led.Driver
	wd     watchdog.Kicker
	diag   *diagnostics.Checker
	power  render.Power

	out []render.Color
	rgb []byte

	lastFrame time.Time
	lastShow  time.Time
	flushDur  time.Duration
	powerMA   float64
	frames    uint64
}

func New(d Deps) (*Orchestrator, error) {
	if d.Config == nil || d.Registry == nil || d.Driver == nil {
		return nil, errors.New("app: config, registry and driver are required")
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Store == nil {
		d.Store = settings.NewMemStore()
	}
	if d.Watchdog == nil {
		d.Watchdog = &watchdog.Noop{}
	}
	cfg := d.Config
	log := d.Log.With().Str("component", "app").Logger()

	limits := Limits(cfg, d.Registry.Len())
	store := settings.NewThrottled(d.Store, cfg.Settings.WriteInterval, d.Log).WithClock(d.Clock)

	ctrl := sequence.NewController(d.Registry, store, sequence.Options{
		Transition: cfg.Transition.Duration,
		Ease:       cfg.Transition.Ease,
		Shuffle:    ShuffleModes(cfg.Shuffle),
		Limits:     limits,
		Clock:      d.Clock,
		Rand:       d.Rand,
	}, d.Log)

	b := cfg.Button
	in := input.NewController(d.Button, ctrl, input.Options{
		CountDown:      b.CountDown,
		CountUp:        b.CountUp,
		Repeat:         b.Repeat,
		BrightnessStep: b.BrightnessStep,
		CountDownStep:  b.CountDownStep,
		CountUpStep:    b.CountUpStep,
		Limits:         limits,
	}, d.Log)

	a := cfg.Display.Area
	disp := display.New(d.Panel, display.Options{
		Interval: cfg.Timing.Display,
		Area:     image.Rect(a.X, a.Y, a.X+a.W, a.Y+a.H),
		Size:     image.Pt(cfg.Display.Width, cfg.Display.Height),
	}, d.Log)

	dc := cfg.Diagnostics
	diag := diagnostics.NewChecker(diagnostics.Thresholds{
		HeapWarn:  uint64(dc.HeapWarnMB) << 20,
		HeapCrit:  uint64(dc.HeapCritMB) << 20,
		FlushWarn: dc.FlushWarn,
		BudgetMA:  cfg.Power.BudgetMA,
	}, dc.Interval, d.Log)

	o := &Orchestrator{
		cfg:    cfg,
		log:    log,
		now:    d.Clock,
		limits: limits,
		ctrl:   ctrl,
		input:  in,
		disp:   disp,
		store:  store,
		drv:    d.Driver,
		wd:     d.Watchdog,
		diag:   diag,
		power: render.Power{
			ChanMA:   cfg.Power.ChanMA,
			IdleMA:   cfg.Power.IdleMA,
			BudgetMA: cfg.Power.BudgetMA,
			Knee:     cfg.Power.Knee,
		},
		out: make([]render.Color, limits.MaxLEDs),
		rgb: make([]byte, 0, 3*limits.MaxLEDs),
	}
	o.quiet = log.Sample(&zerolog.BurstSampler{Burst: 1, Period: 10 * time.Second})
	return o, nil
}

// Start shows the boot screen, runs the LED self-test, restores settings and
// selects the stored pattern. An empty registry is logged, not returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.disp.Boot(Version); err != nil {
		o.log.Warn().Err(err).Msg("boot screen")
	}

	st := o.cfg.SelfTest
	plan := selftest.Plan{Kind: selftest.Kind(st.Kind), Count: st.Count, Hold: st.Hold}
	if err := selftest.Run(ctx, o.drv, plan, o.limits.MaxLEDs, o.log); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.log.Error().Err(err).Msg("LED self-test failed")
	}

	s := settings.Load(o.store, o.limits, o.log)
	if err := o.ctrl.Begin(s); err != nil {
		if errors.Is(err, sequence.ErrEmptyRegistry) {
			o.log.Error().Err(err).Msg("no patterns registered; strip stays dark")
		} else {
			o.log.Error().Err(err).Int("pattern", s.Pattern).Msg("stored pattern failed to start")
		}
	}
	o.log.Info().
		Int("patterns", o.limits.Patterns).
		Int("capacity", o.limits.MaxLEDs).
		Str("pattern", o.ctrl.ActiveName()).
		Msg("setup complete; running main loop")
	return nil
}

// Step runs one loop iteration at now.
func (o *Orchestrator) Step(now time.Time) {
	intents := o.input.Poll(now)
	input.Apply(intents, o.ctrl, o.log)

	if len(intents) > 0 || now.Sub(o.lastFrame) >= o.cfg.Timing.Frame {
		o.ctrl.Tick()
		o.lastFrame = now
	}

	if _, err := o.disp.Update(now, o.Status()); err != nil {
		o.quiet.Warn().Err(err).Msg("display update failed")
	}

	if len(intents) > 0 || now.Sub(o.lastShow) >= o.cfg.Timing.Show {
		o.flush()
		o.lastShow = now
	}

	if err := o.store.Sync(); err != nil {
		o.quiet.Warn().Err(err).Msg("settings write failed")
	}
	if err := o.wd.Kick(); err != nil {
		o.quiet.Error().Err(err).Msg("watchdog kick failed")
	}

	if o.diag.Due(now) {
		s := diagnostics.Sample{
			NumLEDs:  o.ctrl.NumLEDs(),
			Capacity: o.limits.MaxLEDs,
			MaxLEDs:  render.MaxLEDs,
			Flush:    o.flushDur,
			PowerMA:  o.powerMA,
		}
		diagnostics.ReadHeap(&s)
		o.diag.Report(now, s)
	}
}

// flush post-processes the live frame into the output buffer and writes the
// whole strip; pixels past the active count go dark.
func (o *Orchestrator) flush() {
	if !o.ctrl.Ready() {
		o.quiet.Warn().Msg("controller not ready while loop active")
		return
	}
	post := render.Post{Brightness: o.ctrl.Brightness(), Power: o.power}
	o.powerMA = post.Apply(o.out, o.ctrl.Frame().Pixels())
	o.rgb = led.Encode(o.rgb[:0], o.out)

	start := time.Now()
	err := o.drv.Write(o.rgb)
	o.flushDur = time.Since(start)
	if err != nil {
		o.quiet.Error().Err(err).Msg("strip write failed")
		return
	}
	o.frames++
}

// Run loops until ctx is done, then shuts down.
func (o *Orchestrator) Run(ctx context.Context) error {
	t := time.NewTicker(o.cfg.Timing.Loop)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			o.log.Info().Uint64("frames", o.frames).Msg("shutting down")
			return o.Shutdown()
		case <-t.C:
			o.Step(o.now())
		}
	}
}

// Shutdown flushes settings, blanks the strip and releases the hardware.
func (o *Orchestrator) Shutdown() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	keep(errors.Wrap(o.store.Flush(), "flush settings"))

	clear(o.rgb[:cap(o.rgb)])
	keep(errors.Wrap(o.drv.Write(o.rgb[:cap(o.rgb)]), "blank strip"))
	keep(o.drv.Close())
	keep(o.disp.Close())
	keep(o.wd.Close())
	if first != nil {
		o.log.Error().Err(first).Msg("shutdown")
	}
	return first
}

// Status snapshots what the display shows. While adjusting, it carries the
// pending value rather than the committed one.
func (o *Orchestrator) Status() display.Status {
	c := o.ctrl
	s := display.Status{
		Ready:         c.Ready(),
		Brightness:    c.Brightness(),
		MinBrightness: o.limits.MinBrightness,
		MaxBrightness: o.limits.MaxBrightness,
		NumLEDs:       c.NumLEDs(),
		InShuffle:     c.InShuffle(),
		Slot:          c.SelectedName(),
		Index:         c.SelectedIndex(),
		Name:          c.ActiveName(),
	}
	switch o.input.Mode() {
	case input.Brightness:
		s.AdjustBrightness = true
		s.Brightness = o.limits.ClampBrightness(o.input.Pending())
	case input.LEDCountDown, input.LEDCountUp:
		s.AdjustLEDs = true
		s.NumLEDs = o.input.Pending()
	}
	return s
}

func (o *Orchestrator) Controller() *sequence.Controller { return o.ctrl }
func (o *Orchestrator) Input() *input.Controller         { return o.input }
func (o *Orchestrator) Display() *display.Adapter        { return o.disp }
func (o *Orchestrator) Frames() uint64                   { return o.frames }
