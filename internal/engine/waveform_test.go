package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
	"github.com/tejashwikalptaru/harmonia/internal/logger"
)

const testRadius = 250.0

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizer(logger.NewTestLogger())
}

func TestSynthesizer_PureSine(t *testing.T) {
	s := newTestSynthesizer()

	buf := s.Synthesize([]domain.Harmonic{{Ratio: 1, Phase: 0}}, 360, 1.0, testRadius)
	require.Len(t, buf, 360)

	// peak-normalized to exactly 0.2 * referenceRadius
	assert.InDelta(t, testRadius*AmplitudeScale, buf.MaxAbs(), 1e-9)

	// shape matches a plain sine scaled to the target amplitude
	target := testRadius * AmplitudeScale
	for i, v := range buf {
		x := 2 * math.Pi * float64(i) / 360
		assert.InDelta(t, target*math.Sin(x), v, 1e-9, "sample %d", i)
	}
}

func TestSynthesizer_PeakNeverExceedsBudget(t *testing.T) {
	s := newTestSynthesizer()
	g := newTestSeriesGenerator()

	types := []domain.SeriesType{
		domain.SeriesNatural, domain.SeriesOctave, domain.SeriesPrime,
		domain.SeriesFibonacci, domain.SeriesUpper, domain.SeriesLower,
		domain.SeriesGeometric, domain.SeriesUnder,
	}
	for _, series := range types {
		for _, count := range []int{1, 4, 16, 32} {
			hs := g.Generate(count, series, domain.PhaseAscending)
			buf := s.Synthesize(hs, 512, 1.0, testRadius)
			assert.LessOrEqual(t, buf.MaxAbs(), testRadius*AmplitudeScale+1e-9,
				"series %s count %d", series, count)
		}
	}
}

func TestSynthesizer_EmptyHarmonicsStaysZero(t *testing.T) {
	s := newTestSynthesizer()

	buf := s.Synthesize(nil, 128, 1.0, testRadius)
	require.Len(t, buf, 128)
	assert.Zero(t, buf.MaxAbs())
}

func TestSynthesizer_ZeroRatioIsSkipped(t *testing.T) {
	s := newTestSynthesizer()

	// a zero ratio must not divide by zero; remaining harmonics still sum
	buf := s.Synthesize([]domain.Harmonic{
		{Ratio: 0, Phase: 0},
		{Ratio: 1, Phase: 0},
	}, 256, 1.0, testRadius)
	assert.InDelta(t, testRadius*AmplitudeScale, buf.MaxAbs(), 1e-9)
}

func TestSynthesizer_ClampsResolutionAndWavelength(t *testing.T) {
	s := newTestSynthesizer()

	buf := s.Synthesize([]domain.Harmonic{{Ratio: 1}}, 1, 0, testRadius)
	assert.Len(t, buf, domain.MinResolution)

	buf = s.Synthesize([]domain.Harmonic{{Ratio: 1}}, 1 << 20, 100, testRadius)
	assert.Len(t, buf, domain.MaxResolution)
}

func TestSynthesizer_WavelengthStretches(t *testing.T) {
	s := newTestSynthesizer()

	// with wavelength 2 the fundamental completes half a cycle over the
	// sampled interval, so the buffer never crosses zero after the start
	buf := s.Synthesize([]domain.Harmonic{{Ratio: 1, Phase: 0}}, 360, 2.0, testRadius)
	for i := 1; i < len(buf); i++ {
		assert.Greater(t, buf[i], 0.0, "sample %d", i)
	}
}

func TestSynthesizer_Deterministic(t *testing.T) {
	s := newTestSynthesizer()
	g := newTestSeriesGenerator()

	hs := g.Generate(8, domain.SeriesNatural, domain.PhaseAlternating)
	first := s.Synthesize(hs, 720, 1.0, testRadius)
	second := s.Synthesize(hs, 720, 1.0, testRadius)
	assert.Equal(t, first, second)
}

func TestSampleBuffer_At(t *testing.T) {
	buf := domain.SampleBuffer{1, 2, 3, 4}

	assert.Equal(t, 1.0, buf.At(0))
	assert.Equal(t, 3.0, buf.At(0.5))
	assert.Equal(t, 1.0, buf.At(1.0)) // wraps
	assert.Equal(t, 4.0, buf.At(-0.25))
	assert.Zero(t, domain.SampleBuffer(nil).At(0.5))
}
