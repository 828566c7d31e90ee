package benchmarking

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/convolutional"
	"github.com/nathanhack/fec/ldpc"
	"github.com/nathanhack/fec/modulation"
	"github.com/nathanhack/fec/trellis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convolutionalCodec() *codec.Codec {
	g, _ := trellis.ParseOctal("7", "5")
	tr, _ := trellis.New([]int{3}, [][]trellis.BitField{g}, nil)
	s, _ := convolutional.New(convolutional.EncoderOptions{
		Trellis:     tr,
		Length:      20,
		Termination: convolutional.Tail,
	}, convolutional.DefaultDecoderOptions())
	return codec.New(s, 1)
}

func ExampleBenchmark() {
	c := convolutionalCodec()

	// the code corrects any single error so only the channel shows errors
	stats, err := Benchmark(context.Background(), 100, 4, BSC(c, 1, 0), nil, false)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("trials %v, channel %0.3f, message %0.3f\n", stats.BlockError.Count, stats.ChannelBitError.Mean, stats.MessageBitError.Mean)
	//Output:
	// trials 100, channel 0.023, message 0.000
}

func ExampleAWGN() {
	threads := runtime.NumCPU()
	h, _ := ldpc.Gallager(96, 3, 6, 1)
	s, _ := ldpc.New(ldpc.EncoderOptions{H: h}, ldpc.DefaultDecoderOptions())
	c := codec.New(s, 1)

	stats, _ := Benchmark(context.Background(), 200, threads, AWGN(c, modulation.BPSK(), 20, 1), nil, false)

	fmt.Println("Bit Error Probability :", stats)
	//Output:
	// Bit Error Probability : {Channel:0.00(+/-0.00), Message:0.00(+/-0.00), Block:0.00(+/-0.00)}
}

func TestContinueStats(t *testing.T) {
	c := convolutionalCodec()
	trial := AWGN(c, modulation.QPSK(), 2, 3)

	checkpoints := 0
	first, err := Benchmark(context.Background(), 10, 2, trial, func(Stats) { checkpoints++ }, false)
	require.NoError(t, err)
	assert.Equal(t, 10, first.BlockError.Count)
	assert.Equal(t, 10, checkpoints)

	second, err := BenchmarkContinueStats(context.Background(), 25, 2, trial, nil, first, false)
	require.NoError(t, err)
	assert.Equal(t, 25, second.BlockError.Count)

	same, err := BenchmarkContinueStats(context.Background(), 20, 2, trial, nil, second, false)
	require.NoError(t, err)
	assert.Equal(t, second, same)
}

func TestTrialError(t *testing.T) {
	failure := errors.New("failure")
	trial := func(i int) (Metrics, error) {
		if i == 3 {
			return Metrics{}, failure
		}
		return Metrics{ChannelBitError: 0.5}, nil
	}
	_, err := Benchmark(context.Background(), 8, 1, trial, nil, false)
	assert.True(t, errors.Is(err, failure))
}

func TestWaterfall(t *testing.T) {
	c := convolutionalCodec()
	var previous Stats
	for i, ebN0 := range []float64{0, 3, 6} {
		stats, err := Benchmark(context.Background(), 300, 4, AWGN(c, modulation.BPSK(), ebN0, 5), nil, false)
		require.NoError(t, err)
		assert.LessOrEqual(t, stats.MessageBitError.Mean, stats.ChannelBitError.Mean)
		if i > 0 {
			assert.Less(t, stats.ChannelBitError.Mean, previous.ChannelBitError.Mean)
			assert.LessOrEqual(t, stats.MessageBitError.Mean, previous.MessageBitError.Mean)
		}
		previous = stats
	}
}

func TestOddWordWidth(t *testing.T) {
	// 7 coded bits do not fill whole PAM4 symbols
	h, err := ldpc.Hamming(3)
	require.NoError(t, err)
	s, err := ldpc.New(ldpc.EncoderOptions{H: h}, ldpc.DefaultDecoderOptions())
	require.NoError(t, err)
	c := codec.New(s, 1)
	stats, err := Benchmark(context.Background(), 20, 1, AWGN(c, modulation.PAM4(), 30, 2), nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.MessageBitError.Mean)
}

func TestNoiseVariance(t *testing.T) {
	assert.InDelta(t, 0.5, NoiseVariance(0, 1, 1, 1), 1e-12)
	assert.InDelta(t, 0.05, NoiseVariance(10, 1, 1, 1), 1e-12)
	assert.InDelta(t, 0.5, NoiseVariance(0, 0.5, 2, 1), 1e-12)
}

func TestHammingDistance(t *testing.T) {
	assert.Equal(t, 0, HammingDistance([]uint8{1, 0}, []uint8{1, 0}))
	assert.Equal(t, 1, HammingDistance([]uint8{1, 0}, []uint8{1, 1}))
	assert.Equal(t, 2, HammingDistance([]uint8{1, 0, 1}, []uint8{0}))
}
