package sequence

// Ease names accepted by Options.Ease.
const (
	EaseLinear = "linear"
	EaseSmooth = "smooth"
	EaseCubic  = "cubic"
)

func ValidEase(kind string) bool {
	switch kind {
	case "", EaseLinear, EaseSmooth, EaseCubic:
		return true
	}
	return false
}

// easeApply maps transition progress through the named curve. All curves
// are monotonic with f(0)=0 and f(1)=1, so blended pixels stay between the
// two snapshots.
func easeApply(kind string, x float64) float64 {
	x = min(max(x, 0), 1)
	switch kind {
	case EaseSmooth:
		return x * x * (3 - 2*x)
	case EaseCubic:
		// quintic, flat first and second derivative at both ends
		return x * x * x * (x*(x*6-15) + 10)
	default:
		return x
	}
}
