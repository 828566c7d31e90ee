package benchmarking

import (
	"math"
	"math/rand"

	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/internal/logsum"
	"github.com/nathanhack/fec/modulation"
	mat2 "gonum.org/v1/gonum/mat"
)

// AWGN creates trials sending codewords of c modulated with m over an additive
// white gaussian noise channel at ebN0dB. Trial i is seeded with seed+i so the
// results do not depend on the scheduling of the trials.
func AWGN(c *codec.Codec, m *modulation.Modulation, ebN0dB float64, seed int64) Trial {
	rate := float64(c.MsgSize()) / float64(c.ParitySize())
	variance := NoiseVariance(ebN0dB, rate, m.WordWidth(), m.AvgPower())

	return func(i int) (Metrics, error) {
		r := rand.New(rand.NewSource(seed + int64(i)))
		message := RandomMessage(r, c.MsgSize())
		codeword, err := c.Encode(message)
		if err != nil {
			return Metrics{}, err
		}
		// the modulation needs whole symbols, the padding bits are dropped after demodulation
		padded := codeword
		if extra := len(codeword) % m.WordWidth(); extra != 0 {
			padded = append(append([]uint8(nil), codeword...), make([]uint8, m.WordWidth()-extra)...)
		}
		symbols, err := m.Modulate(padded)
		if err != nil {
			return Metrics{}, err
		}
		received := RandomNoise(r, mat2.NewVecDense(len(symbols), symbols), variance)
		llr, err := m.Demodulate(received.RawVector().Data, variance, logsum.Linear, 1)
		if err != nil {
			return Metrics{}, err
		}
		return decode(c, message, codeword, llr[:len(codeword)])
	}
}

// BSC creates trials flipping exactly flips bits of every codeword of c.
// The decoder sees LLRs of a binary symmetric channel with the matching crossover probability.
func BSC(c *codec.Codec, flips int, seed int64) Trial {
	p := math.Max(float64(flips)/float64(c.ParitySize()), 1e-6)
	reliability := math.Log((1 - p) / p)

	return func(i int) (Metrics, error) {
		r := rand.New(rand.NewSource(seed + int64(i)))
		message := RandomMessage(r, c.MsgSize())
		codeword, err := c.Encode(message)
		if err != nil {
			return Metrics{}, err
		}
		received := RandomFlipBitCount(r, codeword, flips)
		llr := make([]float64, len(received))
		for j, b := range received {
			llr[j] = -reliability
			if b == 1 {
				llr[j] = reliability
			}
		}
		return decode(c, message, codeword, llr)
	}
}

func decode(c *codec.Codec, message, codeword []uint8, llr []float64) (Metrics, error) {
	decoded, err := c.Decode(llr)
	if err != nil {
		return Metrics{}, err
	}
	messageErrors := HammingDistance(message, decoded)
	metrics := Metrics{
		ChannelBitError: float64(HammingDistance(codeword, HardDecision(llr))) / float64(len(codeword)),
		MessageBitError: float64(messageErrors) / float64(len(message)),
	}
	if messageErrors > 0 {
		metrics.BlockError = 1
	}
	return metrics, nil
}
