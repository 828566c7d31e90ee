package permutation

import (
	"fmt"
	"math/rand"

	"golang.org/x/exp/slices"
)

// Permutation maps each output position to the source position it reads from.
// An output shorter than its input punctures, repeated or reordered indices interleave.
type Permutation struct {
	sequence  []int
	inputSize int
}

// New creates a permutation from sequence where sequence[i] is the source of output i.
func New(sequence []int) (*Permutation, error) {
	inputSize := 0
	for i, s := range sequence {
		if s < 0 {
			return nil, fmt.Errorf("negative source index %v at position %v", s, i)
		}
		if s+1 > inputSize {
			inputSize = s + 1
		}
	}
	return &Permutation{
		sequence:  append([]int(nil), sequence...),
		inputSize: inputSize,
	}, nil
}

// NewSized creates a permutation reading from blocks of inputSize elements,
// trailing sources may be left out of sequence.
func NewSized(sequence []int, inputSize int) (*Permutation, error) {
	p, err := New(sequence)
	if err != nil {
		return nil, err
	}
	if p.inputSize > inputSize {
		return nil, fmt.Errorf("source index %v out of range for input size %v", p.inputSize-1, inputSize)
	}
	p.inputSize = inputSize
	return p, nil
}

// Identity creates the permutation that copies size elements in order.
func Identity(size int) *Permutation {
	seq := make([]int, size)
	for i := range seq {
		seq[i] = i
	}
	return &Permutation{sequence: seq, inputSize: size}
}

// Random creates a seeded random interleaver over size elements.
func Random(size int, seed int64) *Permutation {
	r := rand.New(rand.NewSource(seed))
	return &Permutation{sequence: r.Perm(size), inputSize: size}
}

// Select creates the puncturing permutation keeping the positions where keep is true.
func Select(keep []bool) *Permutation {
	seq := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			seq = append(seq, i)
		}
	}
	return &Permutation{sequence: seq, inputSize: len(keep)}
}

//InputSize is one more than the largest source index.
func (p *Permutation) InputSize() int { return p.inputSize }

//OutputSize is the number of positions produced per block.
func (p *Permutation) OutputSize() int { return len(p.sequence) }

//At returns the source of output i.
func (p *Permutation) At(i int) int { return p.sequence[i] }

// Sequence returns a copy of the index sequence.
func (p *Permutation) Sequence() []int {
	return append([]int(nil), p.sequence...)
}

// Permute gathers one block: out[i] = in[perm[i]].
func Permute[T any](p *Permutation, in, out []T) {
	for i, s := range p.sequence {
		out[i] = in[s]
	}
}

// Depermute scatters one block of LLRs back to the source layout, summing repeated
// sources. Sources that were never selected are left at zero.
func (p *Permutation) Depermute(in, out []float64) {
	for i := range out[:p.inputSize] {
		out[i] = 0
	}
	for i, s := range p.sequence {
		out[s] += in[i]
	}
}

// PermuteBlocks applies the permutation to every block of a batch.
func PermuteBlocks[T any](p *Permutation, in []T) ([]T, error) {
	if p.inputSize == 0 {
		if len(in) != 0 {
			return nil, fmt.Errorf("input size %v for an empty permutation", len(in))
		}
		return []T{}, nil
	}
	if len(in)%p.inputSize != 0 {
		return nil, fmt.Errorf("input size %v not a multiple of %v", len(in), p.inputSize)
	}
	n := len(in) / p.inputSize
	out := make([]T, n*len(p.sequence))
	for b := 0; b < n; b++ {
		Permute(p, in[b*p.inputSize:(b+1)*p.inputSize], out[b*len(p.sequence):(b+1)*len(p.sequence)])
	}
	return out, nil
}

// DepermuteBlocks undoes PermuteBlocks on LLRs, punctured positions come back as erasures (0).
func (p *Permutation) DepermuteBlocks(in []float64) ([]float64, error) {
	if len(p.sequence) == 0 {
		if len(in) != 0 {
			return nil, fmt.Errorf("input size %v for an empty permutation", len(in))
		}
		return []float64{}, nil
	}
	if len(in)%len(p.sequence) != 0 {
		return nil, fmt.Errorf("input size %v not a multiple of %v", len(in), len(p.sequence))
	}
	n := len(in) / len(p.sequence)
	out := make([]float64, n*p.inputSize)
	for b := 0; b < n; b++ {
		p.Depermute(in[b*len(p.sequence):(b+1)*len(p.sequence)], out[b*p.inputSize:(b+1)*p.inputSize])
	}
	return out, nil
}

// IsIdentity returns true if the permutation copies its input in order.
func (p *Permutation) IsIdentity() bool {
	if len(p.sequence) != p.inputSize {
		return false
	}
	for i, s := range p.sequence {
		if i != s {
			return false
		}
	}
	return true
}

func (p *Permutation) Equals(other *Permutation) bool {
	return p.inputSize == other.inputSize && slices.Equal(p.sequence, other.sequence)
}

func (p *Permutation) String() string {
	return fmt.Sprintf("Permutation(%v->%v)", p.inputSize, len(p.sequence))
}
