package selftest

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-blinky/internal/driver/fake"
)

func TestFirstRed(t *testing.T) {
	r := NewRunner(Plan{Kind: FirstRed})
	rgb := make([]byte, 10*3)
	require.True(t, r.Step(10, rgb))
	for i := 0; i < 10; i++ {
		want := byte(0)
		if i < 5 {
			want = 255
		}
		assert.Equal(t, []byte{want, 0, 0}, rgb[i*3:i*3+3], "led %d", i)
	}
	assert.False(t, r.Step(10, rgb))
}

func TestRGBChannelsThreeSteps(t *testing.T) {
	r := NewRunner(Plan{Kind: RGBTest})
	rgb := make([]byte, 2*3)
	for phase := 0; phase < 3; phase++ {
		require.True(t, r.Step(2, rgb))
		want := []byte{0, 0, 0}
		want[phase] = 255
		assert.Equal(t, want, rgb[3:6])
	}
	assert.False(t, r.Step(2, rgb))
}

func TestIndexSweepLightsOneAtATime(t *testing.T) {
	r := NewRunner(Plan{Kind: IndexSweep})
	d := &fake.Driver{}
	rgb := make([]byte, 4*3)
	for i := 0; r.Step(4, rgb); i++ {
		require.NoError(t, d.Write(rgb))
		assert.Equal(t, 1, d.Lit())
		r0, _, _ := d.Pixel(i)
		assert.Equal(t, byte(255), r0)
	}
}

func TestRunLeavesStripDark(t *testing.T) {
	d := &fake.Driver{}
	require.NoError(t, Run(context.Background(), d, Plan{Kind: RGBTest}, 8, zerolog.Nop()))
	assert.Equal(t, 4, d.Count)
	assert.Zero(t, d.Lit())
}

func TestRunNone(t *testing.T) {
	d := &fake.Driver{}
	require.NoError(t, Run(context.Background(), d, Plan{}, 8, zerolog.Nop()))
	assert.Zero(t, d.Count)
}

func TestRunReportsDriverError(t *testing.T) {
	d := &fake.Driver{Err: errors.New("spi gone")}
	err := Run(context.Background(), d, Plan{Kind: FirstRed}, 8, zerolog.Nop())
	assert.ErrorContains(t, err, "spi gone")
}
