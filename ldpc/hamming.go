package ldpc

import (
	"fmt"

	mat "github.com/nathanhack/sparsemat"
)

// Hamming creates the parity check matrix of the Hamming code with parityBits
// parity bits. Column i holds the binary expansion of i+1.
func Hamming(parityBits int) (mat.SparseMat, error) {
	if parityBits < 3 {
		return nil, fmt.Errorf("hamming codes require >=3 parity bits")
	}
	n := 1<<parityBits - 1
	H := mat.CSRMat(parityBits, n)

	//To make Hamming codes we make the columns the bit versions
	// of every number from 1 to and including n -> [1,n] (note they're nonzero)
	for i := 1; i <= n; i++ {
		vec := mat.CSRVec(parityBits)
		for j := 0; j < parityBits; j++ {
			if i&(1<<j) > 0 {
				vec.Set(j, 1)
			}
		}
		H.SetColumn(i-1, vec)
	}
	return H, nil
}
