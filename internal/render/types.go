package render

import (
	"math/rand/v2"
	"time"
)

// MaxLEDs is the strip capacity every frame buffer is sized for.
const MaxLEDs = 1000

// Color is one 8-bit RGB pixel, channel order independent of the strip wiring.
type Color struct{ R, G, B uint8 }

var (
	Black = Color{}
	White = Color{255, 255, 255}
	Red   = Color{255, 0, 0}
	Green = Color{0, 255, 0}
	Blue  = Color{0, 0, 255}
)

type Category string

const (
	Shuffle         Category = "shuffle"
	SlowAndSoothing Category = "slow_and_soothing"
	SolidColors     Category = "solid_colors"
	HighBPM         Category = "high_bpm"
	PartyVibe       Category = "party_vibe"
	Psychedelic     Category = "psychedelic"
	Intense         Category = "intense"
	Crazy           Category = "crazy"
)

// Renderer produces one frame per call into dst. len(dst) is the active LED
// count and never exceeds MaxLEDs. t is the time since the controller started.
type Renderer interface {
	Name() string
	SetBrightness(b uint8)
	Render(dst []Color, t time.Duration) error
}

// Env is handed to a Factory when a pattern is instantiated.
type Env struct {
	NumLEDs    int
	Brightness uint8
	Rand       *rand.Rand
}

// Factory creates a fresh Renderer. A nil Renderer with a nil error is
// treated as a failed creation by the caller.
type Factory func(env Env) (Renderer, error)

// Base carries the fields most renderers share.
type Base struct {
	PatternName string
	Bright      uint8
	Rand        *rand.Rand
}

func NewBase(name string, env Env) Base {
	r := env.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	b := env.Brightness
	if b == 0 {
		b = 128
	}
	return Base{PatternName: name, Bright: b, Rand: r}
}

func (b *Base) Name() string          { return b.PatternName }
func (b *Base) SetBrightness(v uint8) { b.Bright = v }

// Blank renders black. Shuffle slots instantiate it as their placeholder.
type Blank struct{ Base }

func NewBlank(name string) Factory {
	return func(env Env) (Renderer, error) {
		return &Blank{Base: NewBase(name, env)}, nil
	}
}

func (b *Blank) Render(dst []Color, _ time.Duration) error {
	Fill(dst, Black)
	return nil
}
