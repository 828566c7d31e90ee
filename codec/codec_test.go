package codec

import (
	"errors"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repetition sends every message bit three times, the state carries the last decision.
type repetition struct {
	msgSize int
}

func (r repetition) Family() Family      { return "repetition" }
func (r repetition) MsgSize() int        { return r.msgSize }
func (r repetition) SystSize() int       { return r.msgSize }
func (r repetition) ParitySize() int     { return 3 * r.msgSize }
func (r repetition) StateSize() int      { return r.msgSize }
func (r repetition) NewDecoder() Decoder { return repetitionDecoder{r} }

func (r repetition) Encode(msg, parity []uint8) {
	for i, b := range msg {
		parity[3*i], parity[3*i+1], parity[3*i+2] = b, b, b
	}
}

func (r repetition) Check(parity []uint8) bool {
	for i := 0; i < r.msgSize; i++ {
		if parity[3*i] != parity[3*i+1] || parity[3*i] != parity[3*i+2] {
			return false
		}
	}
	return true
}

type repetitionDecoder struct {
	r repetition
}

func (d repetitionDecoder) Decode(parity []float64, msg []uint8) {
	for i := range msg {
		msg[i] = 0
		if parity[3*i]+parity[3*i+1]+parity[3*i+2] > 0 {
			msg[i] = 1
		}
	}
}

func (d repetitionDecoder) SoDecode(in Input, out Output) {
	for i := 0; i < d.r.msgSize; i++ {
		ch := in.Parity[3*i] + in.Parity[3*i+1] + in.Parity[3*i+2]
		app := ch + in.Syst[i] + in.State[i]
		if out.Msg != nil {
			out.Msg[i] = app
		}
		if out.Syst != nil {
			out.Syst[i] = app - in.Syst[i]
		}
		if out.Parity != nil {
			for k := 0; k < 3; k++ {
				out.Parity[3*i+k] = app - in.Parity[3*i+k]
			}
		}
		if out.State != nil {
			out.State[i] = app
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		workers int
		msg     []uint8
		parity  []uint8
		err     error
	}{
		{1, []uint8{}, []uint8{}, nil},
		{1, []uint8{1, 0}, []uint8{1, 1, 1, 0, 0, 0}, nil},
		{3, []uint8{0, 1, 1, 1, 0, 0}, []uint8{0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0}, nil},
		{8, []uint8{0, 1, 1}, nil, ErrSizeMismatch},
	}

	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			c := New(repetition{2}, test.workers)
			parity, err := c.Encode(test.msg)
			if test.err != nil {
				assert.True(t, errors.Is(err, test.err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.parity, parity)

			ok, err := c.Check(parity)
			require.NoError(t, err)
			for _, v := range ok {
				assert.True(t, v)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	c := New(repetition{2}, 0)
	assert.Equal(t, DefaultWorkGroupSize, c.WorkGroupSize())
	c.SetWorkGroupSize(3)
	assert.Equal(t, 3, c.WorkGroupSize())
	assert.Equal(t, 2, c.MsgSize())
	assert.Equal(t, 2, c.SystSize())
	assert.Equal(t, 6, c.ParitySize())
	assert.Equal(t, 2, c.StateSize())
}

func TestSoDecodeValidation(t *testing.T) {
	c := New(repetition{2}, 4)
	parity := make([]float64, 12)

	tests := []struct {
		in  Input
		err error
	}{
		{Input{}, ErrMissingParity},
		{Input{Parity: make([]float64, 5)}, ErrSizeMismatch},
		{Input{Parity: parity, Syst: make([]float64, 3)}, ErrSizeMismatch},
		{Input{Parity: parity, Syst: make([]float64, 2)}, ErrSizeMismatch},
		{Input{Parity: parity, State: make([]float64, 6)}, ErrSizeMismatch},
		{Input{Parity: parity, Syst: make([]float64, 4), State: make([]float64, 4)}, nil},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			_, err := c.SoDecode(test.in, All)
			if test.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, test.err), "found %v", err)
		})
	}

	_, err := c.Decode(make([]float64, 7))
	assert.True(t, errors.Is(err, ErrSizeMismatch))
}

func TestSoDecodeRequestedOutputs(t *testing.T) {
	c := New(repetition{1}, 2)
	parity := []float64{1, 2, -4, -1, -1, -1}

	out, err := c.SoDecode(Input{Parity: parity}, Msg|State)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -3}, out.Msg)
	assert.Equal(t, []float64{-1, -3}, out.State)
	assert.Nil(t, out.Syst)
	assert.Nil(t, out.Parity)

	zeros, err := c.SoDecode(Input{Parity: parity, Syst: []float64{0, 0}, State: []float64{0, 0}}, All)
	require.NoError(t, err)
	absent, err := c.SoDecode(Input{Parity: parity}, All)
	require.NoError(t, err)
	assert.Equal(t, absent, zeros)
}

func TestBatchIndependence(t *testing.T) {
	c := New(repetition{3}, 4)
	n := 13
	parity := make([]float64, n*c.ParitySize())
	for i := range parity {
		parity[i] = float64(i%7) - 3.5
	}

	batch, err := c.SoDecode(Input{Parity: parity}, All)
	require.NoError(t, err)
	hard, err := c.Decode(parity)
	require.NoError(t, err)

	for b := 0; b < n; b++ {
		one, err := c.SoDecode(Input{Parity: parity[b*9 : (b+1)*9]}, All)
		require.NoError(t, err)
		assert.Equal(t, one.Msg, batch.Msg[b*3:(b+1)*3])
		assert.Equal(t, one.Parity, batch.Parity[b*9:(b+1)*9])

		oneHard, err := c.Decode(parity[b*9 : (b+1)*9])
		require.NoError(t, err)
		assert.Equal(t, oneHard, hard[b*3:(b+1)*3])
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := New(repetition{2}, 2)
	c.SetMetrics(m)

	_, err := c.Encode(make([]uint8, 10))
	require.NoError(t, err)
	_, err = c.Encode(make([]uint8, 3))
	require.Error(t, err)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.Blocks.WithLabelValues("repetition", "encode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("repetition", "encode")))
}
