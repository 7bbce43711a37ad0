package diagnostics

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(ds []Diagnostic) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func TestHealthy(t *testing.T) {
	c := NewChecker(DefaultThresholds(), 0, zerolog.Nop())
	ds := c.Check(Sample{HeapAlloc: 1 << 20, NumLEDs: 100, Capacity: 300, MaxLEDs: 1000})
	require.Len(t, ds, 1)
	assert.Equal(t, Info, ds[0].Severity)
	assert.Equal(t, "healthy", ds[0].Code)
}

func TestFindings(t *testing.T) {
	th := DefaultThresholds()
	th.BudgetMA = 1000
	c := NewChecker(th, 0, zerolog.Nop())

	ds := c.Check(Sample{
		HeapAlloc: 100 << 20,
		NumLEDs:   400,
		Capacity:  300,
		MaxLEDs:   1000,
		Flush:     50 * time.Millisecond,
		PowerMA:   1500,
	})
	assert.Equal(t, []string{"frame_bounds", "heap_critical", "flush_slow", "power_budget"}, codes(ds))
	assert.Equal(t, Err, ds[0].Severity)

	ds = c.Check(Sample{HeapAlloc: 40 << 20, NumLEDs: 10, Capacity: 10})
	assert.Equal(t, []string{"heap_high"}, codes(ds))
}

func TestReportIsThrottledAndLogged(t *testing.T) {
	var buf bytes.Buffer
	c := NewChecker(DefaultThresholds(), 5*time.Second, zerolog.New(&buf))
	t0 := time.Unix(1700000000, 0)

	assert.True(t, c.Due(t0))
	c.Report(t0, Sample{NumLEDs: 5, Capacity: 10})
	assert.False(t, c.Due(t0.Add(time.Second)))
	assert.True(t, c.Due(t0.Add(5*time.Second)))

	assert.Contains(t, buf.String(), `"code":"healthy"`)
	assert.Contains(t, buf.String(), `"component":"diagnostics"`)
}

func TestReadHeap(t *testing.T) {
	var s Sample
	ReadHeap(&s)
	assert.NotZero(t, s.HeapSys)
}
