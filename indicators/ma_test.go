package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMASeries(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2, 3, 4, 5}
	series := SMASeries(values, 3)

	assert.Len(t, series, 5)
	assert.True(t, math.IsNaN(series[0]))
	assert.True(t, math.IsNaN(series[1]))
	assert.InDelta(t, 2, series[2], 0.001)
	assert.InDelta(t, 3, series[3], 0.001)
	assert.InDelta(t, 4, series[4], 0.001)
}

func TestSMASeriesShortInput(t *testing.T) {
	t.Parallel()

	series := SMASeries([]float64{1, 2}, 5)
	assert.Len(t, series, 2)
	for _, v := range series {
		assert.True(t, math.IsNaN(v))
	}
}
