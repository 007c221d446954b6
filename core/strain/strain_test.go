package strain

import (
	"testing"

	"github.com/huangsam/timesheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceSource replays fixed samples and repeats the last one when exhausted.
type sequenceSource struct {
	values []float64
	next   int
}

func (s *sequenceSource) Float64() float64 {
	if len(s.values) == 0 {
		return 0.5
	}
	if s.next >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.next]
	s.next++
	return v
}

func constantSource(v float64) *sequenceSource {
	return &sequenceSource{values: []float64{v}}
}

var _ RandomSource = &sequenceSource{} // Compile-time check

// TestBackfill tests the historical overtime ramp.
func TestBackfill(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		numWeeks int
		samples  []float64
		expected []float64
	}{
		{
			name:     "no history",
			current:  7,
			numWeeks: 0,
			expected: []float64{7},
		},
		{
			name:     "centered noise is a pure ramp",
			current:  10,
			numWeeks: 3,
			samples:  []float64{0.5, 0.5, 0.5},
			expected: []float64{2.5, 5, 7.5, 10},
		},
		{
			name:     "noise spreads fifteen percent either side",
			current:  10,
			numWeeks: 1,
			samples:  []float64{0},
			expected: []float64{5 - 1.5, 10},
		},
		{
			name:     "upper noise bound",
			current:  10,
			numWeeks: 1,
			samples:  []float64{0.999},
			expected: []float64{5 + (0.999-0.5)*10*0.3, 10},
		},
		{
			name:     "negative current clamps history but not current",
			current:  -4,
			numWeeks: 1,
			samples:  []float64{0.5},
			expected: []float64{0, -4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Backfill(tt.current, tt.numWeeks, &sequenceSource{values: tt.samples})
			require.Len(t, got, len(tt.expected))
			for i := range got {
				assert.InDelta(t, tt.expected[i], got[i], 1e-12, "index %d", i)
			}
		})
	}
}

// TestBackfillClamp checks that a large negative draw never yields a negative value.
func TestBackfillClamp(t *testing.T) {
	got := Backfill(1, 6, constantSource(0))
	require.Len(t, got, 7)
	assert.Equal(t, 0.0, got[0])
	for i, v := range got[:6] {
		assert.GreaterOrEqual(t, v, 0.0, "index %d", i)
	}
	assert.Equal(t, 1.0, got[6])
}

// TestEMA tests the exact smoothing recurrence.
func TestEMA(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, EMA(nil))
	})

	t.Run("recurrence", func(t *testing.T) {
		h := []float64{3, 8, 0, 12.5}
		got := EMA(h)
		require.Len(t, got, 4)
		e0 := h[0] * 0.4
		e1 := h[1]*0.4 + e0*0.6
		e2 := h[2]*0.4 + e1*0.6
		e3 := h[3]*0.4 + e2*0.6
		assert.Equal(t, []float64{e0, e1, e2, e3}, got)
	})

	t.Run("negative values are not clamped", func(t *testing.T) {
		got := EMA([]float64{0, -4})
		assert.Equal(t, 0.0, got[0])
		assert.InDelta(t, -1.6, got[1], 1e-12)
	})
}

// TestClassify tests the band boundaries.
func TestClassify(t *testing.T) {
	tests := []struct {
		score    float64
		expected schema.RiskBand
	}{
		{-1, schema.SafeBand},
		{0, schema.SafeBand},
		{4.999, schema.SafeBand},
		{5.0, schema.ModerateBand},
		{7.999, schema.ModerateBand},
		{8.0, schema.HighRiskBand},
		{11.999, schema.HighRiskBand},
		{12.0, schema.CriticalBand},
		{40, schema.CriticalBand},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.score), "score %v", tt.score)
	}
}

// TestSynthesize tests the per-employee trend output.
func TestSynthesize(t *testing.T) {
	t.Run("empty employees yield empty map", func(t *testing.T) {
		got := Synthesize(nil, []string{"W1"}, constantSource(0.5))
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("without weeks only Current is emitted", func(t *testing.T) {
		employees := []schema.EmployeeStrainRecord{{Author: "ana", CurrentOvertime: 20, WorkloadStrainScore: 3}}
		got := Synthesize(employees, nil, constantSource(0.5))
		require.Len(t, got["ana"], 1)
		assert.Equal(t, schema.TrendPoint{PeriodLabel: "Current", EMAScore: 8, RiskBand: schema.HighRiskBand}, got["ana"][0])
	})

	t.Run("length and labels with history", func(t *testing.T) {
		weeks := []string{"2024-01-01", "2024-01-08", "2024-01-15"}
		employees := []schema.EmployeeStrainRecord{
			{Author: "ana", CurrentOvertime: 10},
			{Author: "ben", CurrentOvertime: 0},
		}
		got := Synthesize(employees, weeks, constantSource(0.5))
		require.Len(t, got, 2)
		for author, points := range got {
			require.Len(t, points, len(weeks)+1, author)
			for i, w := range weeks {
				assert.Equal(t, w, points[i].PeriodLabel)
			}
			assert.Equal(t, "Current", points[len(weeks)].PeriodLabel)
		}
		for _, p := range got["ben"] {
			assert.Equal(t, 0.0, p.EMAScore)
			assert.Equal(t, schema.SafeBand, p.RiskBand)
		}
	})

	t.Run("terminal point is one EMA step from the previous", func(t *testing.T) {
		weeks := []string{"a", "b", "c", "d"}
		current := 17.0
		employees := []schema.EmployeeStrainRecord{{Author: "ana", CurrentOvertime: current}}
		got := Synthesize(employees, weeks, &sequenceSource{values: []float64{0.1, 0.9, 0.3, 0.7}})
		points := got["ana"]
		require.Len(t, points, 5)
		prev := points[3].EMAScore
		expected := 0.4*current + 0.6*prev
		assert.InDelta(t, expected, points[4].EMAScore, 1e-12)
		assert.NotEqual(t, 17.0, points[4].EMAScore)
	})

	t.Run("bands follow each point", func(t *testing.T) {
		employees := []schema.EmployeeStrainRecord{{Author: "ana", CurrentOvertime: 30}}
		got := Synthesize(employees, []string{"w"}, constantSource(0.5))
		points := got["ana"]
		require.Len(t, points, 2)
		// history: 15 -> ema 6; current: 30 -> ema 12 + 3.6
		assert.InDelta(t, 6.0, points[0].EMAScore, 1e-12)
		assert.Equal(t, schema.ModerateBand, points[0].RiskBand)
		assert.InDelta(t, 15.6, points[1].EMAScore, 1e-12)
		assert.Equal(t, schema.CriticalBand, points[1].RiskBand)
	})

	t.Run("repeated author keeps the last trend", func(t *testing.T) {
		employees := []schema.EmployeeStrainRecord{
			{Author: "ana", CurrentOvertime: 5},
			{Author: "ana", CurrentOvertime: 50},
		}
		got := Synthesize(employees, nil, constantSource(0.5))
		require.Len(t, got, 1)
		assert.InDelta(t, 20.0, got["ana"][0].EMAScore, 1e-12)
	})
}

// TestYAxisMax tests the chart axis rule.
func TestYAxisMax(t *testing.T) {
	scores := func(vals ...float64) []schema.EmployeeStrainRecord {
		out := make([]schema.EmployeeStrainRecord, len(vals))
		for i, v := range vals {
			out[i] = schema.EmployeeStrainRecord{WorkloadStrainScore: v}
		}
		return out
	}
	assert.Equal(t, 20.0, YAxisMax(scores(3, 9, 14)))
	assert.Equal(t, 27.0, YAxisMax(scores(25)))
	assert.Equal(t, 20.0, YAxisMax(scores(18)))
	assert.Equal(t, 20.5, YAxisMax(scores(18.5)))
	assert.Equal(t, 20.0, YAxisMax(nil))
}

// TestBuildChart tests the ordered chart view.
func TestBuildChart(t *testing.T) {
	payload := schema.StrainPayload{
		BurnoutData: []schema.EmployeeStrainRecord{
			{Author: "zoe", CurrentOvertime: 1, WorkloadStrainScore: 13},
			{Author: "adam", CurrentOvertime: 2, WorkloadStrainScore: 6},
		},
		WeeklyOvertimeData: &schema.WeeklyOvertimeData{Weeks: []string{"w1", "w2"}},
	}
	chart := BuildChart(payload, constantSource(0.5))

	assert.Equal(t, []string{"w1", "w2", "Current"}, chart.Labels)
	assert.Equal(t, 20.0, chart.YAxisMax)
	assert.Equal(t, schema.EMAFormula, chart.Formula)
	require.Len(t, chart.Series, 2)

	zoe := chart.Series[0]
	assert.Equal(t, "zoe", zoe.Author)
	assert.Len(t, zoe.Points, 3)
	// The line band comes from the strain score even though every point is Safe.
	assert.Equal(t, schema.CriticalBand, zoe.LineBand)
	assert.Equal(t, "#dc3545", zoe.LineColor)
	assert.Equal(t, "#dc354520", zoe.BackgroundColor)
	for _, p := range zoe.Points {
		assert.Equal(t, schema.SafeBand, p.RiskBand)
	}

	adam := chart.Series[1]
	assert.Equal(t, schema.ModerateBand, adam.LineBand)
	assert.Equal(t, "#ffc107", adam.LineColor)
}

// TestBuildChartEmpty tests that an empty payload produces an empty chart.
func TestBuildChartEmpty(t *testing.T) {
	chart := BuildChart(schema.StrainPayload{}, constantSource(0.5))
	assert.True(t, chart.Empty())
	assert.Equal(t, []string{"Current"}, chart.Labels)
	assert.Equal(t, 20.0, chart.YAxisMax)
}

// TestNewSeededSource tests that seeded sources are reproducible.
func TestNewSeededSource(t *testing.T) {
	a, b := NewSeededSource(42), NewSeededSource(42)
	for range 10 {
		v := a.Float64()
		assert.Equal(t, v, b.Float64())
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
