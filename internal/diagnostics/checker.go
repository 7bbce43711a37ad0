package diagnostics

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Thresholds above which a sample is reported. Zero disables a check.
type Thresholds struct {
	HeapWarn  uint64
	HeapCrit  uint64
	FlushWarn time.Duration
	BudgetMA  float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HeapWarn:  32 << 20,
		HeapCrit:  64 << 20,
		FlushWarn: 20 * time.Millisecond,
	}
}

// Sample is one health reading.
type Sample struct {
	HeapAlloc uint64
	HeapSys   uint64

	NumLEDs  int
	Capacity int
	MaxLEDs  int

	Flush   time.Duration
	PowerMA float64
}

// ReadHeap fills the heap fields from the runtime.
func ReadHeap(s *Sample) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	s.HeapAlloc = m.HeapAlloc
	s.HeapSys = m.HeapSys
}

type Checker struct {
	th       Thresholds
	interval time.Duration
	log      zerolog.Logger
	last     time.Time
}

func NewChecker(th Thresholds, interval time.Duration, log zerolog.Logger) *Checker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Checker{th: th, interval: interval, log: log.With().Str("component", "diagnostics").Logger()}
}

// Due reports whether a report should be made at now.
func (c *Checker) Due(now time.Time) bool {
	return c.last.IsZero() || now.Sub(c.last) >= c.interval
}

// Report evaluates s, logs the findings and remembers now.
func (c *Checker) Report(now time.Time, s Sample) []Diagnostic {
	c.last = now
	out := c.Check(s)
	for _, d := range out {
		var ev *zerolog.Event
		switch d.Severity {
		case Err:
			ev = c.log.Error()
		case Warn:
			ev = c.log.Warn()
		default:
			ev = c.log.Info()
		}
		ev = ev.Str("code", d.Code).Fields(d.Evidence)
		if len(d.LikelyCauses) > 0 {
			ev = ev.Strs("causes", d.LikelyCauses)
		}
		if len(d.SuggestedFixes) > 0 {
			ev = ev.Strs("fixes", d.SuggestedFixes)
		}
		ev.Msg(d.Summary)
	}
	return out
}

// Check evaluates s without logging.
func (c *Checker) Check(s Sample) []Diagnostic {
	var out []Diagnostic

	if s.Capacity > 0 && (s.NumLEDs > s.Capacity || (s.MaxLEDs > 0 && s.Capacity > s.MaxLEDs) || s.NumLEDs < 0) {
		out = append(out, Diagnostic{
			Severity: Err,
			Code:     "frame_bounds",
			Summary:  "LED count outside the frame buffer",
			Evidence: map[string]any{"num_leds": s.NumLEDs, "capacity": s.Capacity, "max_leds": s.MaxLEDs},
		})
	}

	switch {
	case c.th.HeapCrit > 0 && s.HeapAlloc >= c.th.HeapCrit:
		out = append(out, Diagnostic{
			Severity:       Err,
			Code:           "heap_critical",
			Summary:        "heap usage critical",
			SuggestedFixes: []string{"lower strip.max_leds"},
			Evidence:       map[string]any{"heap_alloc": s.HeapAlloc, "heap_sys": s.HeapSys},
		})
	case c.th.HeapWarn > 0 && s.HeapAlloc >= c.th.HeapWarn:
		out = append(out, Diagnostic{
			Severity: Warn,
			Code:     "heap_high",
			Summary:  "heap usage high",
			Evidence: map[string]any{"heap_alloc": s.HeapAlloc, "heap_sys": s.HeapSys},
		})
	}

	if c.th.FlushWarn > 0 && s.Flush >= c.th.FlushWarn {
		out = append(out, Diagnostic{
			Severity:     Warn,
			Code:         "flush_slow",
			Summary:      "strip flush is slow",
			LikelyCauses: []string{"SPI clock too low", "strip longer than configured"},
			Evidence:     map[string]any{"flush": s.Flush.String()},
		})
	}

	if c.th.BudgetMA > 0 && s.PowerMA > c.th.BudgetMA {
		out = append(out, Diagnostic{
			Severity: Warn,
			Code:     "power_budget",
			Summary:  "estimated draw above budget",
			Evidence: map[string]any{"power_ma": s.PowerMA, "budget_ma": c.th.BudgetMA},
		})
	}

	if len(out) == 0 {
		out = append(out, Diagnostic{
			Severity: Info,
			Code:     "healthy",
			Summary:  "system healthy",
			Evidence: map[string]any{
				"heap_alloc": s.HeapAlloc,
				"num_leds":   s.NumLEDs,
				"flush":      s.Flush.String(),
				"power_ma":   s.PowerMA,
			},
		})
	}
	return out
}
