package turbo

import (
	"fmt"

	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/permutation"
)

// BitOrdering selects the order of the transmitted bits.
type BitOrdering int

const (
	// Alternate sends, for each trellis step, the systematic bits of the step
	// followed by the outputs of every constituent at that step, then the tail of
	// each constituent. A step carries as many message bits as the widest
	// constituent input.
	Alternate BitOrdering = iota
	// Group keeps the parity layout of the structure.
	Group
)

func (b BitOrdering) String() string {
	switch b {
	case Alternate:
		return "Alternate"
	case Group:
		return "Group"
	}
	return fmt.Sprintf("BitOrdering(%d)", int(b))
}

func ParseBitOrdering(name string) (BitOrdering, error) {
	switch name {
	case "Alternate":
		return Alternate, nil
	case "Group":
		return Group, nil
	}
	return 0, fmt.Errorf("unknown bit ordering %q", name)
}

// PunctureOptions selects and orders the transmitted bits. Every mask repeats
// over its segment and an empty mask keeps every bit. The per constituent masks
// hold either one mask shared by every constituent or one mask per constituent.
type PunctureOptions struct {
	SystMask     []bool
	SystTailMask [][]bool // defaults to SystMask
	ParityMask   [][]bool
	TailMask     [][]bool // defaults to ParityMask
	BitOrdering  BitOrdering
}

// Puncturing creates the permutation producing the transmitted bits from a block.
func (s *Structure) Puncturing(options PunctureOptions) (*permutation.Permutation, error) {
	count := len(s.constituents)
	systTailMask, err := expand("systematic tail", options.SystTailMask, count, options.SystMask)
	if err != nil {
		return nil, err
	}
	parityMask, err := expand("parity", options.ParityMask, count, nil)
	if err != nil {
		return nil, err
	}
	tailMask, err := expand("tail", options.TailMask, count, nil)
	if err != nil {
		return nil, err
	}
	if len(options.TailMask) == 0 {
		tailMask = parityMask
	}

	tailOffset := make([]int, count)
	parityOffset := make([]int, count)
	tail, parity := s.msgSize, s.systSize
	for i, c := range s.constituents {
		tailOffset[i], parityOffset[i] = tail, parity
		tail += c.SystTailSize()
		parity += c.ParitySize()
	}

	var seq []int
	switch options.BitOrdering {
	case Group:
		for i := 0; i < s.msgSize; i++ {
			if maskAt(options.SystMask, i) {
				seq = append(seq, i)
			}
		}
		for i, c := range s.constituents {
			for j := 0; j < c.SystTailSize(); j++ {
				if maskAt(systTailMask[i], j) {
					seq = append(seq, tailOffset[i]+j)
				}
			}
		}
		for i, c := range s.constituents {
			steps := c.Length() * c.Trellis().OutputSize()
			for j := 0; j < c.ParitySize(); j++ {
				if (j < steps && maskAt(parityMask[i], j)) || (j >= steps && maskAt(tailMask[i], j-steps)) {
					seq = append(seq, parityOffset[i]+j)
				}
			}
		}

	case Alternate:
		width := 1
		for _, c := range s.constituents {
			if c.Trellis().InputSize() > width {
				width = c.Trellis().InputSize()
			}
		}
		steps := (s.msgSize + width - 1) / width
		for _, c := range s.constituents {
			if c.Length() > steps {
				steps = c.Length()
			}
		}
		for j := 0; j < steps; j++ {
			for b := j * width; b < (j+1)*width && b < s.msgSize; b++ {
				if maskAt(options.SystMask, b) {
					seq = append(seq, b)
				}
			}
			for i, c := range s.constituents {
				if j >= c.Length() {
					continue
				}
				out := c.Trellis().OutputSize()
				for k := j * out; k < (j+1)*out; k++ {
					if maskAt(parityMask[i], k) {
						seq = append(seq, parityOffset[i]+k)
					}
				}
			}
		}
		for i, c := range s.constituents {
			in, out := c.Trellis().InputSize(), c.Trellis().OutputSize()
			first := parityOffset[i] + c.Length()*out
			for j := 0; j < c.TailSize(); j++ {
				for k := j * in; k < (j+1)*in; k++ {
					if maskAt(systTailMask[i], k) {
						seq = append(seq, tailOffset[i]+k)
					}
				}
				for k := j * out; k < (j+1)*out; k++ {
					if maskAt(tailMask[i], k) {
						seq = append(seq, first+k)
					}
				}
			}
		}

	default:
		return nil, fmt.Errorf("%w: invalid bit ordering %v", codec.ErrInvalidConfiguration, options.BitOrdering)
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: puncturing keeps no bit", codec.ErrInvalidConfiguration)
	}

	return permutation.NewSized(seq, s.paritySize)
}

// expand returns one mask per constituent, fallback is used when masks is empty.
func expand(name string, masks [][]bool, count int, fallback []bool) ([][]bool, error) {
	result := make([][]bool, count)
	switch len(masks) {
	case 0:
		for i := range result {
			result[i] = fallback
		}
	case 1:
		for i := range result {
			result[i] = masks[0]
		}
	case count:
		copy(result, masks)
	default:
		return nil, fmt.Errorf("%w: invalid size for %v mask, expected 1 or %v but found %v", codec.ErrInvalidConfiguration, name, count, len(masks))
	}
	return result, nil
}

func maskAt(mask []bool, i int) bool {
	if len(mask) == 0 {
		return true
	}
	return mask[i%len(mask)]
}
