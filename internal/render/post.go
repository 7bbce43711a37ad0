package render

// Power models strip current draw for the output limiter.
//   - ChanMA: mA per colour channel at full scale (WS2812 ≈ 20)
//   - IdleMA: quiescent mA per LED
//   - BudgetMA: global budget; 0 disables the limiter
//   - Knee: fraction of budget where soft limiting begins (default 0.9)
type Power struct {
	ChanMA   float64
	IdleMA   float64
	BudgetMA float64
	Knee     float64
}

// Post is the output stage applied between the live frame and the driver.
// It never mutates the source frame.
type Post struct {
	Brightness uint8
	Power      Power
}

// Apply writes src scaled by global brightness into dst, then clamps the
// estimated draw to the power budget. It returns the estimated mA after
// limiting. Pixels of dst beyond len(src) are set to black.
func (p Post) Apply(dst, src []Color) float64 {
	n := copy(dst, src)
	for i := n; i < len(dst); i++ {
		dst[i] = Black
	}
	if p.Brightness != 255 {
		for i := 0; i < n; i++ {
			dst[i] = dst[i].Scale(p.Brightness)
		}
	}
	return p.Power.Limit(dst[:n])
}

// EstimateMA returns the modelled current for buf.
func (pw Power) EstimateMA(buf []Color) float64 {
	chanmA := pw.ChanMA
	if chanmA <= 0 {
		chanmA = 20
	}
	var sum float64
	for i := range buf {
		sum += float64(int(buf[i].R) + int(buf[i].G) + int(buf[i].B))
	}
	return sum/255*chanmA + float64(len(buf))*pw.IdleMA
}

// Limit scales buf so the estimated draw stays within BudgetMA, easing in
// between Knee*BudgetMA and BudgetMA.
func (pw Power) Limit(buf []Color) float64 {
	total := pw.EstimateMA(buf)
	if pw.BudgetMA <= 0 || total <= 0 {
		return total
	}
	knee := pw.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}
	idle := float64(len(buf)) * pw.IdleMA
	budget := pw.BudgetMA - idle
	lit := total - idle
	if budget <= 0 {
		applyGlobalScale(buf, 0)
		return pw.EstimateMA(buf)
	}
	if lit <= 0 {
		return total
	}

	ratio := lit / budget
	var s float64
	switch {
	case ratio <= knee:
		return total
	case ratio <= 1.0:
		// map ratio in [knee,1] to scale in [1, budget/lit]
		minS := budget / lit
		t := (ratio - knee) / (1.0 - knee)
		s = 1.0 - t*(1.0-minS)
	default:
		s = budget / lit
	}
	applyGlobalScale(buf, s)
	return pw.EstimateMA(buf)
}

func applyGlobalScale(buf []Color, s float64) {
	if s >= 1.0 {
		return
	}
	if s < 0 {
		s = 0
	}
	for i := range buf {
		buf[i].R = uint8(float64(buf[i].R) * s)
		buf[i].G = uint8(float64(buf[i].G) * s)
		buf[i].B = uint8(float64(buf[i].B) * s)
	}
}
