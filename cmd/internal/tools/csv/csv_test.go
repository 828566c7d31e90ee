package csv

import (
	"bytes"
	"testing"

	"github.com/nathanhack/fec/benchmarking"
	"github.com/nathanhack/fec/cmd/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stats(message, block float64) benchmarking.Stats {
	var s benchmarking.Stats
	s.MessageBitError.Update(message)
	s.BlockError.Update(block)
	return s
}

func TestWrite(t *testing.T) {
	results := []*tools.SimulationStats{
		{Stats: map[float64]benchmarking.Stats{0: stats(0.25, 1), 2: stats(0.5, 1)}},
		{Stats: map[float64]benchmarking.Stats{1: stats(0.125, 0)}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []string{"a.json", "dir/b.json"}, results))
	assert.Equal(t, "Results File,0,1,2\na,0.25,,0.5\ndir/b,,0.125,\n", buf.String())

	BlockError = true
	defer func() { BlockError = false }()
	buf.Reset()
	require.NoError(t, Write(&buf, []string{"a", "b"}, results))
	assert.Equal(t, "Results File,0,1,2\na,1,,1\nb,,0,\n", buf.String())
}
