package benchmarking

import (
	"math"
	"math/rand"

	mat2 "gonum.org/v1/gonum/mat"
)

// RandomMessage creates a random message of length len.
func RandomMessage(r *rand.Rand, len int) []uint8 {
	message := make([]uint8, len)
	for i := range message {
		message[i] = uint8(r.Intn(2))
	}
	return message
}

// RandomFlipBitCount randomly flips min(numberOfBitsToFlip,len(input)) number of bits.
func RandomFlipBitCount(r *rand.Rand, input []uint8, numberOfBitsToFlip int) []uint8 {
	output := append([]uint8(nil), input...)

	flip := make(map[int]bool)
	for len(flip) < numberOfBitsToFlip && len(flip) < len(input) {
		flip[r.Intn(len(input))] = true
	}

	for i := range flip {
		output[i] ^= 1
	}
	return output
}

// RandomNoise adds white gaussian noise of the given variance to every element of symbols.
func RandomNoise(r *rand.Rand, symbols mat2.Vector, variance float64) *mat2.VecDense {
	σ := math.Sqrt(variance)
	result := mat2.NewVecDense(symbols.Len(), nil)
	for i := 0; i < symbols.Len(); i++ {
		result.SetVec(i, r.NormFloat64()*σ)
	}
	result.AddVec(result, symbols)
	return result
}

// NoiseVariance is the variance per real dimension giving the requested E_b/N_0
// for a code of the given rate sending wordWidth bits per symbol of energy avgPower.
func NoiseVariance(ebN0dB, rate float64, wordWidth int, avgPower float64) float64 {
	// E_s = avgPower and E_b = E_s/(rate*wordWidth), σ^2 = N_0/2
	ebN0 := math.Pow(10, ebN0dB/10)
	return avgPower / (2 * rate * float64(wordWidth) * ebN0)
}
