// Package engine implements the reactive state and harmonic synthesis core:
// the state store, the series/waveform generators with their dirty-flag
// recomputation policy, the animation scheduler, the interaction controller
// and the module registry. Everything outside this package consumes the
// engine through the facade in engine.go and the interfaces in ports.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// primes holds the first MaxHarmonicCount primes for the prime series.
var primes = [domain.MaxHarmonicCount]float64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53,
	59, 61, 67, 71, 73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131,
}

// goldenRatio is the fixed ratio constant for the geometric series.
const goldenRatio = 1.618033988749895

// fallbackSeries is the degenerate single-entry series substituted when the
// requested parameters cannot produce a valid series. The animation loop
// must never halt on bad parameters.
func fallbackSeries() []domain.Harmonic {
	return []domain.Harmonic{{Ratio: 1, Phase: 0}}
}

// SeriesGenerator maps (count, seriesType, phasePolicy) to an ordered list
// of harmonic descriptors. Generation is pure and deterministic for every
// phase policy except PhaseRandom, which draws from the injected rng; call
// sites that need reproducibility must seed it themselves.
type SeriesGenerator struct {
	logger *slog.Logger
	rng    *rand.Rand
}

// NewSeriesGenerator creates a series generator. rng is only consulted for
// the random phase policy.
func NewSeriesGenerator(logger *slog.Logger, rng *rand.Rand) *SeriesGenerator {
	return &SeriesGenerator{logger: logger, rng: rng}
}

// Generate produces the harmonic series for the given parameters.
//
// Failure handling is soft: an out-of-range count yields the single-entry
// fallback series, an unknown series type falls back to the natural series,
// and an unknown phase policy falls back to flat. Each condition is logged,
// never returned.
func (g *SeriesGenerator) Generate(count int, series domain.SeriesType, phase domain.PhasePolicy) []domain.Harmonic {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("series generation panicked",
				slog.Any("panic", r),
				slog.String("series", string(series)))
		}
	}()

	if count < domain.MinHarmonicCount || count > domain.MaxHarmonicCount {
		g.logger.Warn("rejecting harmonic series parameters",
			slog.Any("error", domain.NewParameterError("harmonicCount", count, domain.ErrInvalidHarmonicCount)))
		return fallbackSeries()
	}

	ratios, ok := ratioSequence(count, series)
	if !ok {
		g.logger.Warn("falling back to natural series",
			slog.Any("error", domain.NewParameterError("seriesType", series, domain.ErrUnknownSeriesType)))
		ratios, _ = ratioSequence(count, domain.SeriesNatural)
	}

	out := make([]domain.Harmonic, len(ratios))
	n := float64(count)
	for i, ratio := range ratios {
		out[i] = domain.Harmonic{Ratio: ratio, Phase: g.phaseFor(phase, i, n)}
	}
	return out
}

// ratioSequence returns the ratio sequence for the series type, or ok=false
// when the type is not in the table.
func ratioSequence(count int, series domain.SeriesType) ([]float64, bool) {
	// The singular series ignores count as a length and uses it as the ratio.
	if series == domain.SeriesSingular {
		return []float64{float64(count)}, true
	}

	ratios := make([]float64, count)
	switch series {
	case domain.SeriesNatural:
		for i := range ratios {
			ratios[i] = float64(i + 1)
		}
	case domain.SeriesOctave:
		for i := range ratios {
			ratios[i] = math.Pow(2, float64(i))
		}
	case domain.SeriesOdd:
		for i := range ratios {
			ratios[i] = float64(2*i + 1)
		}
	case domain.SeriesEven:
		for i := range ratios {
			ratios[i] = float64(2 * (i + 1))
		}
	case domain.SeriesPrime:
		for i := range ratios {
			ratios[i] = primes[i]
		}
	case domain.SeriesFibonacci:
		a, b := 1.0, 1.0
		for i := range ratios {
			ratios[i] = a
			a, b = b, a+b
		}
	case domain.SeriesUpper:
		for i := range ratios {
			ratios[i] = math.Pow(1.5, float64(i))
		}
	case domain.SeriesLower:
		for i := range ratios {
			ratios[i] = math.Pow(1.5, -float64(i))
		}
	case domain.SeriesUnder, domain.SeriesHarmonic:
		for i := range ratios {
			ratios[i] = 1 / float64(i+1)
		}
	case domain.SeriesGeometric:
		for i := range ratios {
			ratios[i] = math.Pow(goldenRatio, float64(i))
		}
	default:
		return nil, false
	}
	return ratios, true
}

// phaseFor assigns the phase for entry i under the given policy.
func (g *SeriesGenerator) phaseFor(policy domain.PhasePolicy, i int, count float64) float64 {
	switch policy {
	case domain.PhaseFlat:
		return 0
	case domain.PhaseAscending:
		return float64(i) / count * 2 * math.Pi
	case domain.PhaseDescending:
		return (count - float64(i)) / count * 2 * math.Pi
	case domain.PhaseAlternating:
		return float64(i%2) * math.Pi
	case domain.PhaseRandom:
		// Non-deterministic by design; see SeriesGenerator doc.
		return g.rng.Float64() * 2 * math.Pi
	default:
		g.logger.Warn("falling back to flat phase policy",
			slog.Any("error", domain.NewParameterError("phasePolicy", policy, domain.ErrUnknownPhasePolicy)))
		return 0
	}
}

// describeSeries is used in debug logs for recompute traces.
func describeSeries(count int, series domain.SeriesType, phase domain.PhasePolicy) string {
	return fmt.Sprintf("%s/%s x%d", series, phase, count)
}
