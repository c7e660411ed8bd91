package gsim

import "math"

// TruncNormal is a simple attenuation model: log ground motion is normally
// distributed around a magnitude/distance scaling law, optionally truncated.
// It stands in for a published GMPE; the engine only sees the Model interface.
type TruncNormal struct{}

func (*TruncNormal) Name() string { return "trunc_normal" }

// PoEs implements Model.
func (*TruncNormal) PoEs(ctx Context, levels []float64, truncation float64) []float64 {
	// ln median in g: grows with magnitude, decays with distance, with a
	// mild site amplification for soft soil.
	mu := -1.0 + 0.6*ctx.Mag - 1.1*math.Log(ctx.DistanceKm+10)
	if ctx.Vs30 > 0 && ctx.Vs30 < 760 {
		mu += 0.3 * math.Log(760/ctx.Vs30)
	}
	const sigma = 0.65

	poes := make([]float64, len(levels))
	for i, iml := range levels {
		z := (math.Log(iml) - mu) / sigma
		poes[i] = survival(z, truncation)
	}
	return poes
}

// survival returns P(Z > z) for a standard normal, truncated at +/- trunc
// standard deviations when trunc > 0 (with renormalization, so the truncated
// distribution still integrates to 1).
func survival(z, trunc float64) float64 {
	if trunc <= 0 {
		return 0.5 * math.Erfc(z/math.Sqrt2)
	}
	if z >= trunc {
		return 0
	}
	if z <= -trunc {
		return 1
	}
	phi := func(x float64) float64 { return 0.5 * math.Erfc(-x/math.Sqrt2) }
	return (phi(trunc) - phi(z)) / (phi(trunc) - phi(-trunc))
}

// ExpDecay is a second built-in model with a deliberately different shape,
// so logic trees exercising multiple GSIMs produce distinct curves.
type ExpDecay struct{}

func (*ExpDecay) Name() string { return "exp_decay" }

// PoEs implements Model.
func (*ExpDecay) PoEs(ctx Context, levels []float64, truncation float64) []float64 {
	// Characteristic intensity scale in g.
	scale := 0.01 * math.Exp(0.9*(ctx.Mag-5)) / (1 + ctx.DistanceKm/30)

	poes := make([]float64, len(levels))
	for i, iml := range levels {
		poes[i] = math.Exp(-iml / scale)
	}
	return poes
}
