package settings

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Throttled buffers writes to an inner store and flushes them at most once
// per interval, to keep flash wear down while the user is cycling values.
// Reads always see the latest value.
type Throttled struct {
	inner    Store
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger

	pending map[string]int
	last    time.Time
}

func NewThrottled(inner Store, interval time.Duration, log zerolog.Logger) *Throttled {
	return &Throttled{
		inner:    inner,
		interval: interval,
		now:      time.Now,
		log:      log.With().Str("component", "settings").Logger(),
		pending:  map[string]int{},
	}
}

// WithClock replaces the time source; tests only.
func (t *Throttled) WithClock(now func() time.Time) *Throttled {
	t.now = now
	return t
}

func (t *Throttled) Get(key string, def int) int {
	if v, ok := t.pending[key]; ok {
		return v
	}
	return t.inner.Get(key, def)
}

func (t *Throttled) Set(key string, v int) error {
	t.pending[key] = v
	return t.Sync()
}

// Dirty reports whether writes are waiting for the next Sync window.
func (t *Throttled) Dirty() bool { return len(t.pending) > 0 }

// Sync flushes pending writes when the interval has elapsed.
func (t *Throttled) Sync() error {
	if len(t.pending) == 0 {
		return nil
	}
	if now := t.now(); !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return nil
	}
	return t.Flush()
}

// Flush writes all pending values now.
func (t *Throttled) Flush() error {
	if len(t.pending) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t.pending))
	for k := range t.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := t.inner.Set(k, t.pending[k]); err != nil {
			return err
		}
		t.log.Debug().Str("key", k).Int("value", t.pending[k]).Msg("setting saved")
		delete(t.pending, k)
	}
	t.last = t.now()
	return nil
}
