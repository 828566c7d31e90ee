// Package fectest holds the channel model and the behaviour checks shared by the code family tests.
package fectest

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/nathanhack/fec/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RandomBits creates n random bits from seed.
func RandomBits(n int, seed int64) []uint8 {
	r := rand.New(rand.NewSource(seed))
	bits := make([]uint8, n)
	for i := range bits {
		bits[i] = uint8(r.Intn(2))
	}
	return bits
}

// Distort maps bits to the LLRs of a BPSK AWGN channel with the given Es/N0 in dB.
func Distort(bits []uint8, snrdB float64, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	snr := math.Pow(10, snrdB/10)
	mean, std := 4*snr, 4*math.Sqrt(snr/2)
	llr := make([]float64, len(bits))
	for i, b := range bits {
		v := r.NormFloat64()*std + mean
		if b == 0 {
			v = -v
		}
		llr[i] = v
	}
	return llr
}

// Hard thresholds LLRs at 0.
func Hard(llr []float64) []uint8 {
	bits := make([]uint8, len(llr))
	for i, l := range llr {
		if l > 0 {
			bits[i] = 1
		}
	}
	return bits
}

func Errors(a, b []uint8) int {
	count := 0
	for i := range a {
		if a[i] != b[i] {
			count++
		}
	}
	return count
}

// EncodeBlocks checks that every encoded block is consistent, for the all zero,
// the all one and random messages.
func EncodeBlocks(t *testing.T, c *codec.Codec) {
	n := c.MsgSize()
	ones := make([]uint8, n)
	for i := range ones {
		ones[i] = 1
	}
	for i, msg := range [][]uint8{make([]uint8, n), ones, RandomBits(5*n, 1)} {
		parity, err := c.Encode(msg)
		require.NoError(t, err)
		require.Len(t, parity, len(msg)/n*c.ParitySize())
		ok, err := c.Check(parity)
		require.NoError(t, err)
		for b, v := range ok {
			assert.True(t, v, "message %v block %v", i, b)
		}
	}

	parity, err := c.Encode(make([]uint8, n))
	require.NoError(t, err)
	if n > 0 {
		allZero := true
		for _, p := range parity {
			allZero = allZero && p == 0
		}
		assert.True(t, allZero, "the zero message must encode to the zero codeword")
	}
}

// BadSize checks that every operation rejects inputs that are not a whole number of blocks.
func BadSize(t *testing.T, c *codec.Codec) {
	_, err := c.Encode(make([]uint8, 2*c.MsgSize()+1))
	assert.True(t, errors.Is(err, codec.ErrSizeMismatch), "encode: %v", err)
	_, err = c.Decode(make([]float64, 2*c.ParitySize()+1))
	assert.True(t, errors.Is(err, codec.ErrSizeMismatch), "decode: %v", err)
	_, err = c.SoDecode(codec.Input{Parity: make([]float64, c.ParitySize()+1)}, codec.Msg)
	assert.True(t, errors.Is(err, codec.ErrSizeMismatch), "soDecode: %v", err)
	_, err = c.SoDecode(codec.Input{Parity: make([]float64, c.ParitySize()), Syst: make([]float64, c.SystSize()+1)}, codec.Msg)
	assert.True(t, errors.Is(err, codec.ErrSizeMismatch), "soDecode syst: %v", err)
	_, err = c.SoDecode(codec.Input{Parity: make([]float64, c.ParitySize()), State: make([]float64, c.StateSize()+1)}, codec.Msg)
	assert.True(t, errors.Is(err, codec.ErrSizeMismatch), "soDecode state: %v", err)
	_, err = c.SoDecode(codec.Input{}, codec.Msg)
	assert.True(t, errors.Is(err, codec.ErrMissingParity), "soDecode without parity: %v", err)
}

// Channel encodes n random blocks and passes them through Distort.
func Channel(t *testing.T, c *codec.Codec, n int, snrdB float64, seed int64) (msg, parity []uint8, llr []float64) {
	msg = RandomBits(n*c.MsgSize(), seed)
	parity, err := c.Encode(msg)
	require.NoError(t, err)
	return msg, parity, Distort(parity, snrdB, seed+1)
}

// Decode checks that decoding recovers every message at the given snr.
func Decode(t *testing.T, c *codec.Codec, n int, snrdB float64) {
	msg, _, llr := Channel(t, c, n, snrdB, 11)
	decoded, err := c.Decode(llr)
	require.NoError(t, err)
	assert.Equal(t, 0, Errors(msg, decoded))
}

// SoDecodeMatchesDecode checks that hard decoding equals the sign of the soft message.
func SoDecodeMatchesDecode(t *testing.T, c *codec.Codec, n int, snrdB float64) {
	_, _, llr := Channel(t, c, n, snrdB, 21)
	decoded, err := c.Decode(llr)
	require.NoError(t, err)
	out, err := c.SoDecode(codec.Input{Parity: llr}, codec.Msg)
	require.NoError(t, err)
	assert.Equal(t, decoded, Hard(out.Msg))
}

// ParityOut checks that channel plus extrinsic parity recovers the codeword.
func ParityOut(t *testing.T, c *codec.Codec, n int, snrdB float64) {
	_, parity, llr := Channel(t, c, n, snrdB, 31)
	out, err := c.SoDecode(codec.Input{Parity: llr}, codec.Parity)
	require.NoError(t, err)
	app := make([]float64, len(llr))
	for i := range app {
		app[i] = llr[i] + out.Parity[i]
	}
	assert.Equal(t, 0, Errors(parity, Hard(app)))
}

// ZeroPrior checks that explicit zero syst and state inputs equal absent ones.
func ZeroPrior(t *testing.T, c *codec.Codec, n int, snrdB float64) {
	_, _, llr := Channel(t, c, n, snrdB, 41)
	absent, err := c.SoDecode(codec.Input{Parity: llr}, codec.All)
	require.NoError(t, err)

	zeroSyst, err := c.SoDecode(codec.Input{Parity: llr, Syst: make([]float64, n*c.SystSize())}, codec.All)
	require.NoError(t, err)
	assert.Equal(t, absent, zeroSyst)

	zeroState, err := c.SoDecode(codec.Input{Parity: llr, State: make([]float64, n*c.StateSize())}, codec.All)
	require.NoError(t, err)
	assert.Equal(t, absent, zeroState)
}

// SystPrior checks that a correct-biased prior on the message never adds errors.
func SystPrior(t *testing.T, c *codec.Codec, n int, snrdB float64) {
	msg, _, llr := Channel(t, c, n, snrdB, 51)
	without, err := c.SoDecode(codec.Input{Parity: llr}, codec.Msg)
	require.NoError(t, err)

	prior := make([]float64, n*c.SystSize())
	msgPrior := Distort(msg, snrdB, 52)
	for b := 0; b < n; b++ {
		copy(prior[b*c.SystSize():], msgPrior[b*c.MsgSize():(b+1)*c.MsgSize()])
	}
	with, err := c.SoDecode(codec.Input{Parity: llr, Syst: prior}, codec.Msg)
	require.NoError(t, err)
	assert.LessOrEqual(t, Errors(msg, Hard(with.Msg)), Errors(msg, Hard(without.Msg)))
}

// TwoPhases checks that decoding with first, carrying the state, then decoding
// again with first equals decoding once with whole.
func TwoPhases(t *testing.T, first, whole *codec.Codec, n int, snrdB float64) {
	_, _, llr := Channel(t, whole, n, snrdB, 61)
	oneShot, err := whole.SoDecode(codec.Input{Parity: llr}, codec.Msg|codec.Syst|codec.Parity)
	require.NoError(t, err)

	phase1, err := first.SoDecode(codec.Input{Parity: llr}, codec.State)
	require.NoError(t, err)
	phase2, err := first.SoDecode(codec.Input{Parity: llr, State: phase1.State}, codec.Msg|codec.Syst|codec.Parity)
	require.NoError(t, err)
	assert.Equal(t, oneShot, phase2)
}

// BatchIndependence checks that each block of a batch decodes as if alone.
func BatchIndependence(t *testing.T, c *codec.Codec, n int, snrdB float64) {
	_, _, llr := Channel(t, c, n, snrdB, 71)
	batch, err := c.SoDecode(codec.Input{Parity: llr}, codec.All)
	require.NoError(t, err)
	for b := 0; b < n; b++ {
		one, err := c.SoDecode(codec.Input{Parity: llr[b*c.ParitySize() : (b+1)*c.ParitySize()]}, codec.All)
		require.NoError(t, err)
		assert.Equal(t, one.Msg, batch.Msg[b*c.MsgSize():(b+1)*c.MsgSize()])
		assert.Equal(t, one.Syst, batch.Syst[b*c.SystSize():(b+1)*c.SystSize()])
		assert.Equal(t, one.Parity, batch.Parity[b*c.ParitySize():(b+1)*c.ParitySize()])
		assert.Equal(t, one.State, batch.State[b*c.StateSize():(b+1)*c.StateSize()])
	}
}

// Infinite checks decoding of infinite channel LLRs. Certain LLRs matching a
// codeword decode to its message. Certain LLRs with random signs and one erased
// bit never produce NaN, also when the syst output is fed back as the prior.
func Infinite(t *testing.T, c *codec.Codec, seed int64) {
	inf := math.Inf(1)
	msg := RandomBits(c.MsgSize(), seed)
	parity, err := c.Encode(msg)
	require.NoError(t, err)
	certain := make([]float64, len(parity))
	for i, b := range parity {
		certain[i] = -inf
		if b == 1 {
			certain[i] = inf
		}
	}
	decoded, err := c.Decode(certain)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
	out, err := c.SoDecode(codec.Input{Parity: certain}, codec.All)
	require.NoError(t, err)
	assert.Equal(t, msg, Hard(out.Msg))
	NoNaN(t, out)

	random := make([]float64, len(parity))
	for i, b := range RandomBits(len(parity), seed+1) {
		random[i] = -inf
		if b == 1 {
			random[i] = inf
		}
	}
	random[0] = 0
	_, err = c.Decode(random)
	require.NoError(t, err)
	first, err := c.SoDecode(codec.Input{Parity: random}, codec.All)
	require.NoError(t, err)
	NoNaN(t, first)

	second, err := c.SoDecode(codec.Input{Parity: random, Syst: first.Syst, State: first.State}, codec.All)
	require.NoError(t, err)
	NoNaN(t, second)
}

// NoNaN checks every soft output.
func NoNaN(t *testing.T, out codec.Output) {
	for name, v := range map[string][]float64{"msg": out.Msg, "syst": out.Syst, "parity": out.Parity, "state": out.State} {
		for i, l := range v {
			if math.IsNaN(l) {
				assert.Fail(t, "NaN soft output", "%v[%v]", name, i)
				return
			}
		}
	}
}
