package sequence

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-blinky/internal/render"
	"github.com/coreman2200/funtimes-blinky/internal/settings"
)

var testLimits = settings.Limits{
	MinBrightness: 5, MaxBrightness: 255, DefaultBrightness: 128,
	MinLEDs: 1, MaxLEDs: render.MaxLEDs, DefaultLEDs: 10,
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeRenderer writes a constant color for testing.
type fakeRenderer struct {
	name       string
	color      render.Color
	brightness uint8
	fail       error
	frames     int
}

func (f *fakeRenderer) Name() string          { return f.name }
func (f *fakeRenderer) SetBrightness(b uint8) { f.brightness = b }
func (f *fakeRenderer) Render(dst []render.Color, _ time.Duration) error {
	if f.fail != nil {
		return f.fail
	}
	f.frames++
	render.Fill(dst, f.color)
	return nil
}

type fixture struct {
	reg     *render.Registry
	store   *settings.MemStore
	clock   *fakeClock
	created map[string][]*fakeRenderer
}

func newFixture() *fixture {
	return &fixture{
		reg:     render.NewRegistry(),
		store:   settings.NewMemStore(),
		clock:   &fakeClock{t: time.Unix(1700000000, 0)},
		created: map[string][]*fakeRenderer{},
	}
}

func (fx *fixture) add(t *testing.T, name string, c render.Color, opts ...func(*render.Descriptor, *fakeRenderer)) {
	t.Helper()
	d := render.Descriptor{Name: name, Category: render.PartyVibe}
	proto := &fakeRenderer{name: name, color: c}
	for _, o := range opts {
		o(&d, proto)
	}
	d.Factory = func(render.Env) (render.Renderer, error) {
		r := *proto
		fx.created[name] = append(fx.created[name], &r)
		return &r, nil
	}
	require.NoError(t, fx.reg.Register(d))
}

func (fx *fixture) controller(transition time.Duration, modes ...ShuffleMode) *Controller {
	return NewController(fx.reg, fx.store, Options{
		Transition: transition,
		Shuffle:    modes,
		Limits:     testLimits,
		Clock:      fx.clock.Now,
		Rand:       rand.New(rand.NewPCG(1, 2)),
	}, zerolog.Nop())
}

func (fx *fixture) latest(name string) *fakeRenderer {
	l := fx.created[name]
	if len(l) == 0 {
		return nil
	}
	return l[len(l)-1]
}

func noShuffle(d *render.Descriptor, _ *fakeRenderer) { d.NoShuffle = true }

func failing(err error) func(*render.Descriptor, *fakeRenderer) {
	return func(_ *render.Descriptor, r *fakeRenderer) { r.fail = err }
}

func threePatterns(t *testing.T) *fixture {
	fx := newFixture()
	fx.add(t, "red", render.Red)
	fx.add(t, "green", render.Green)
	fx.add(t, "blue", render.Blue)
	return fx
}

func TestSelectValidIndices(t *testing.T) {
	fx := threePatterns(t)
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))

	for i, name := range []string{"red", "green", "blue"} {
		require.NoError(t, c.SelectPattern(i))
		assert.Equal(t, i, c.SelectedIndex())
		assert.Equal(t, i, c.ActiveIndex())
		assert.Same(t, fx.latest(name), c.Active(), "controller holds only the newest instance")
		assert.Equal(t, i, fx.store.Get(settings.KeyPattern, -1))
	}
}

func TestSelectClampsToLastIndex(t *testing.T) {
	fx := threePatterns(t)
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))

	require.NoError(t, c.SelectPattern(5))
	assert.Equal(t, 2, c.SelectedIndex())
	assert.Equal(t, "blue", c.ActiveName())

	require.NoError(t, c.SelectPattern(-4))
	assert.Equal(t, 0, c.SelectedIndex())
}

func TestNextPatternWraps(t *testing.T) {
	fx := threePatterns(t)
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(settings.Settings{Pattern: 2, Brightness: 128, NumLEDs: 10}))

	require.NoError(t, c.NextPattern())
	assert.Equal(t, 0, c.SelectedIndex())
	require.NoError(t, c.NextPattern())
	assert.Equal(t, 1, c.SelectedIndex())
}

func TestEmptyRegistryDoesNotCrash(t *testing.T) {
	fx := newFixture()
	c := fx.controller(time.Second)

	c.Tick() // before Begin
	err := c.Begin(testLimits.Defaults())
	assert.ErrorIs(t, err, ErrEmptyRegistry)
	assert.True(t, c.Ready())
	assert.Nil(t, c.Active())
	assert.Equal(t, -1, c.ActiveIndex())

	assert.ErrorIs(t, c.SelectPattern(0), ErrEmptyRegistry)
	assert.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			c.Tick()
		}
		_ = c.NextPattern()
		_ = c.StartTransition(0)
	})
	assert.Nil(t, c.Active())
}

func TestTransitionStaysBetweenSnapshots(t *testing.T) {
	fx := newFixture()
	from := render.Color{R: 200, G: 10, B: 60}
	to := render.Color{R: 20, G: 240, B: 60}
	fx.add(t, "from", from)
	fx.add(t, "to", to)

	const d = time.Second
	c := fx.controller(d)
	require.NoError(t, c.Begin(testLimits.Defaults()))
	c.Tick()

	require.NoError(t, c.StartTransition(1))
	require.True(t, c.InTransition())

	between := func(v, a, b uint8) bool {
		if a > b {
			a, b = b, a
		}
		return v >= a && v <= b
	}
	for step := 0; step < 10; step++ {
		c.Tick()
		for i, px := range c.Frame().Pixels() {
			require.True(t, between(px.R, from.R, to.R), "step %d px %d: %+v", step, i, px)
			require.True(t, between(px.G, from.G, to.G), "step %d px %d: %+v", step, i, px)
			require.Equal(t, uint8(60), px.B)
		}
		fx.clock.Advance(d / 10)
	}

	// now exactly t0+D
	c.Tick()
	assert.False(t, c.InTransition())
	for _, px := range c.Frame().Pixels() {
		require.Equal(t, to, px)
	}
	assert.Equal(t, 1, c.SelectedIndex())
	assert.Equal(t, 1, fx.store.Get(settings.KeyPattern, -1))
}

func TestTransitionMidpointIsBlend(t *testing.T) {
	fx := newFixture()
	fx.add(t, "black", render.Black)
	fx.add(t, "white", render.White)
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))

	require.NoError(t, c.StartTransition(1))
	fx.clock.Advance(500 * time.Millisecond)
	c.Tick()
	px := c.Frame().Pixels()[0]
	assert.InDelta(t, 128, int(px.R), 1)
}

func TestSecondTransitionIsNoop(t *testing.T) {
	fx := threePatterns(t)
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))

	require.NoError(t, c.StartTransition(1))
	target, start, ok := c.Transition()
	require.True(t, ok)
	created := len(fx.created["blue"])

	fx.clock.Advance(100 * time.Millisecond)
	require.NoError(t, c.StartTransition(2))

	target2, start2, ok := c.Transition()
	require.True(t, ok)
	assert.Equal(t, target, target2)
	assert.Equal(t, start, start2)
	assert.Len(t, fx.created["blue"], created, "no instance created for the rejected target")
}

func TestZeroLengthTransitionCommitsOnNextTick(t *testing.T) {
	fx := threePatterns(t)
	c := fx.controller(0)
	require.NoError(t, c.Begin(testLimits.Defaults()))
	require.NoError(t, c.StartTransition(2))
	c.Tick()
	assert.False(t, c.InTransition())
	assert.Equal(t, render.Blue, c.Frame().Pixels()[0])
}

func TestBrightnessIsClamped(t *testing.T) {
	fx := threePatterns(t)
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))

	for _, tc := range []struct{ in, want int }{
		{-50, 5}, {0, 5}, {4, 5}, {5, 5}, {77, 77}, {255, 255}, {256, 255}, {9999, 255},
	} {
		c.SetBrightness(tc.in)
		assert.Equal(t, uint8(tc.want), c.Brightness(), "input %d", tc.in)
		assert.Equal(t, tc.want, fx.store.Get(settings.KeyBrightness, -1))
		assert.Equal(t, uint8(tc.want), fx.latest("red").brightness)
	}
}

func TestNumLEDsIsClampedAndRecreates(t *testing.T) {
	fx := threePatterns(t)
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))
	first := c.Active()

	c.SetNumLEDs(0)
	assert.Equal(t, 1, c.NumLEDs())
	c.SetNumLEDs(render.MaxLEDs + 1)
	assert.Equal(t, render.MaxLEDs, c.NumLEDs())
	assert.Equal(t, render.MaxLEDs, fx.store.Get(settings.KeyNumLEDs, -1))

	c.SetNumLEDs(42)
	assert.Equal(t, 42, c.NumLEDs())
	assert.Len(t, c.Frame().Pixels(), 42)
	assert.NotSame(t, first, c.Active())
	assert.Equal(t, 0, c.ActiveIndex())
	assert.Equal(t, render.Black, c.Frame().Pixels()[0], "frame cleared")
}

func TestNumLEDsCancelsTransition(t *testing.T) {
	fx := threePatterns(t)
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))
	require.NoError(t, c.StartTransition(1))

	c.SetNumLEDs(20)
	assert.False(t, c.InTransition())
	assert.Equal(t, "green", c.ActiveName())
}

func TestShuffleNeverRepeatsAndSkipsExcluded(t *testing.T) {
	fx := newFixture()
	mode := ShuffleMode{Name: "10s Shuffle", Every: time.Second}
	require.NoError(t, fx.reg.Register(mode.Descriptor()))
	fx.add(t, "a", render.Red)
	fx.add(t, "b", render.Green)
	fx.add(t, "strobe", render.White, noShuffle)
	fx.add(t, "c", render.Blue)

	c := fx.controller(100*time.Millisecond, mode)
	require.NoError(t, c.Begin(testLimits.Defaults()))
	require.True(t, c.InShuffle())
	require.True(t, c.InTransition(), "selecting a shuffle slot starts a shuffle immediately")

	prev := -1
	for i := 0; i < 200; i++ {
		fx.clock.Advance(150 * time.Millisecond)
		c.Tick()
		require.False(t, c.InTransition())
		shown := c.ActiveIndex()
		assert.NotEqual(t, prev, shown, "iteration %d", i)
		assert.NotEqual(t, 0, shown)
		assert.NotEqual(t, 3, shown, "NoShuffle pattern picked")
		assert.Equal(t, 0, c.SelectedIndex(), "shuffle slot stays selected")
		prev = shown

		fx.clock.Advance(time.Second)
		c.Tick()
		require.True(t, c.InTransition(), "iteration %d", i)
	}
	assert.Equal(t, 0, fx.store.Get(settings.KeyPattern, -1))
}

func TestRandomShuffleIntervalWithinRange(t *testing.T) {
	fx := newFixture()
	mode := ShuffleMode{Name: "R Shuffle", Min: 2 * time.Second, Max: 5 * time.Second}
	require.NoError(t, fx.reg.Register(mode.Descriptor()))
	fx.add(t, "a", render.Red)
	fx.add(t, "b", render.Green)

	c := fx.controller(0, mode)
	require.NoError(t, c.Begin(testLimits.Defaults()))
	for i := 0; i < 50; i++ {
		next := c.NextShuffle().Sub(fx.clock.Now())
		assert.GreaterOrEqual(t, next, 2*time.Second)
		assert.LessOrEqual(t, next, 5*time.Second)
		fx.clock.Advance(next)
		c.Tick() // shuffle + zero-length transition
		c.Tick() // commit
	}
}

func TestFaultFallsBackToDefault(t *testing.T) {
	fx := threePatterns(t)
	fx.add(t, "broken", render.White, failing(errors.New("boom")))
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))

	require.NoError(t, c.SelectPattern(3))
	broken := c.Active()
	c.Tick()

	assert.Equal(t, 0, c.SelectedIndex())
	assert.Equal(t, 0, c.ActiveIndex())
	assert.NotSame(t, broken, c.Active())
	assert.Equal(t, "red", c.ActiveName())

	c.Tick()
	assert.Equal(t, render.Red, c.Frame().Pixels()[0])
}

func TestFaultWhileShufflingSkipsFailedPattern(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		fx := newFixture()
		mode := ShuffleMode{Name: "R Shuffle", Every: time.Minute}
		require.NoError(t, fx.reg.Register(mode.Descriptor()))
		fx.add(t, "good", render.Green)
		fx.add(t, "bad", render.White, failing(errors.New("boom")))

		c := NewController(fx.reg, fx.store, Options{
			Transition: 100 * time.Millisecond,
			Shuffle:    []ShuffleMode{mode},
			Limits:     testLimits,
			Clock:      fx.clock.Now,
			Rand:       rand.New(rand.NewPCG(seed, seed+1)),
		}, zerolog.Nop())
		require.NoError(t, c.Begin(testLimits.Defaults()))

		for i := 0; i < 300; i++ {
			fx.clock.Advance(100 * time.Millisecond)
			c.Tick()
		}
		require.NotNil(t, c.Active(), "seed %d", seed)
		assert.Equal(t, "good", c.ActiveName(), "seed %d", seed)
		assert.Equal(t, 0, c.SelectedIndex(), "seed %d", seed)
		assert.Equal(t, render.Green, c.Frame().Pixels()[0], "seed %d", seed)
	}
}

func TestUserSelectionClearsFaultedPattern(t *testing.T) {
	fx := newFixture()
	mode := ShuffleMode{Name: "10s Shuffle", Every: time.Second}
	require.NoError(t, fx.reg.Register(mode.Descriptor()))
	fx.add(t, "good", render.Green)
	fx.add(t, "flaky", render.Blue)
	c := fx.controller(0, mode)
	require.NoError(t, c.Begin(settings.Settings{Pattern: 2, Brightness: 128, NumLEDs: 10}))

	c.fault(errors.New("boom"))
	assert.Equal(t, 2, c.faulted)
	fx.clock.Advance(time.Millisecond)
	c.Tick()
	assert.Equal(t, "good", c.ActiveName())

	require.NoError(t, c.SelectPattern(2))
	assert.Equal(t, -1, c.faulted)
}

func TestFaultInDefaultLeavesStripBlack(t *testing.T) {
	fx := newFixture()
	fx.add(t, "broken", render.White, failing(errors.New("boom")))
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))

	c.Tick()
	assert.Nil(t, c.Active())
	for _, px := range c.Frame().Pixels() {
		assert.Equal(t, render.Black, px)
	}
	assert.NotPanics(t, c.Tick)
}

func TestCreationFailureIsNotPersisted(t *testing.T) {
	fx := threePatterns(t)
	require.NoError(t, fx.reg.Register(render.Descriptor{
		Name:    "nil",
		Factory: func(render.Env) (render.Renderer, error) { return nil, nil },
	}))
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))
	require.NoError(t, c.SelectPattern(1))

	err := c.SelectPattern(3)
	assert.ErrorIs(t, err, ErrNoRenderer)
	assert.Nil(t, c.Active())
	assert.Equal(t, 1, fx.store.Get(settings.KeyPattern, -1))
	assert.NotPanics(t, c.Tick)
}

func TestSettingsSurviveRestart(t *testing.T) {
	fx := threePatterns(t)
	c := fx.controller(time.Second)
	require.NoError(t, c.Begin(testLimits.Defaults()))
	c.SetBrightness(200)
	c.SetNumLEDs(300)
	require.NoError(t, c.SelectPattern(2))

	lim := testLimits
	lim.Patterns = fx.reg.Len()
	loaded := settings.Load(fx.store, lim, zerolog.Nop())
	c2 := fx.controller(time.Second)
	require.NoError(t, c2.Begin(loaded))

	assert.Equal(t, 2, c2.SelectedIndex())
	assert.Equal(t, uint8(200), c2.Brightness())
	assert.Equal(t, 300, c2.NumLEDs())
}

func TestEaseEndpoints(t *testing.T) {
	for _, k := range []string{"", EaseLinear, EaseSmooth, EaseCubic} {
		assert.Equal(t, 0.0, easeApply(k, 0), k)
		assert.InDelta(t, 1.0, easeApply(k, 1), 1e-9, k)
		assert.InDelta(t, 0.5, easeApply(k, 0.5), 1e-9, k)
	}
	assert.Equal(t, 1.0, easeApply(EaseSmooth, 3))
	assert.False(t, ValidEase("bounce"))
}
