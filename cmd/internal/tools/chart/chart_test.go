package chart

import (
	"bytes"
	"testing"

	"github.com/nathanhack/fec/benchmarking"
	"github.com/nathanhack/fec/cmd/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChart(t *testing.T) {
	var low, high benchmarking.Stats
	low.MessageBitError.Update(0.1)
	high.MessageBitError.Update(0)
	results := []*tools.SimulationStats{
		{Stats: map[float64]benchmarking.Stats{0: low, 4: high}},
	}

	values, names := xAxisAndValues(map[float64]bool{4: true, 0: true, 1.5: true})
	assert.Equal(t, []float64{0, 1.5, 4}, values)
	assert.Equal(t, []string{"0", "1.5", "4"}, names)

	data := series(results[0], values)
	require.Len(t, data, 3)
	assert.Equal(t, 0.1, data[0].Value)
	assert.Nil(t, data[1].Value)
	assert.Nil(t, data[2].Value)

	var buf bytes.Buffer
	require.NoError(t, New([]string{"code"}, results).Render(&buf))
	assert.Contains(t, buf.String(), "Error Rate")
}
