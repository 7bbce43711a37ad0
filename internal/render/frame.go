package render

// Frame is a fixed-capacity pixel buffer with an active prefix.
// Pixels beyond Len are kept black so a flush of the whole capacity
// never lights stale LEDs.
type Frame struct {
	px [MaxLEDs]Color
	n  int
}

func NewFrame(n int) *Frame {
	f := &Frame{}
	f.SetLen(n)
	return f
}

func (f *Frame) Len() int      { return f.n }
func (f *Frame) Capacity() int { return MaxLEDs }

// SetLen changes the active length, clamped to [0, MaxLEDs], and returns the
// applied value. Pixels dropped off the end are cleared.
func (f *Frame) SetLen(n int) int {
	if n < 0 {
		n = 0
	}
	if n > MaxLEDs {
		n = MaxLEDs
	}
	for i := n; i < f.n; i++ {
		f.px[i] = Black
	}
	f.n = n
	return n
}

// Pixels returns the active prefix; writes go straight into the frame.
func (f *Frame) Pixels() []Color { return f.px[:f.n] }

// All returns the full capacity, for flushing.
func (f *Frame) All() []Color { return f.px[:] }

func (f *Frame) Clear() {
	for i := range f.px {
		f.px[i] = Black
	}
}

// CopyFrom copies the active pixels and length of src.
func (f *Frame) CopyFrom(src *Frame) {
	f.SetLen(src.n)
	copy(f.px[:f.n], src.px[:src.n])
}
