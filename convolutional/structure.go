package convolutional

import (
	"encoding/json"
	"fmt"

	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/internal/logsum"
	"github.com/nathanhack/fec/permutation"
	"github.com/nathanhack/fec/trellis"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Termination selects how a block ends.
type Termination int

const (
	// Truncate stops after the last message step, the final state is left as is.
	Truncate Termination = iota
	// Tail appends transitions driving the encoder back to state 0.
	Tail
)

func (t Termination) String() string {
	switch t {
	case Truncate:
		return "Truncate"
	case Tail:
		return "Tail"
	}
	return fmt.Sprintf("Termination(%d)", int(t))
}

// ParseTermination maps a name to its Termination.
func ParseTermination(name string) (Termination, error) {
	switch name {
	case "Truncate":
		return Truncate, nil
	case "Tail":
		return Tail, nil
	}
	return 0, fmt.Errorf("unknown termination %q", name)
}

type EncoderOptions struct {
	Trellis     *trellis.Trellis
	Length      int // trellis steps per block
	Termination Termination
}

type DecoderOptions struct {
	Algorithm logsum.Algorithm
	// ScalingFactor multiplies the extrinsic outputs of the Approximate algorithm, zero means 1.
	ScalingFactor float64
}

func DefaultDecoderOptions() DecoderOptions {
	return DecoderOptions{Algorithm: logsum.Approximate, ScalingFactor: 1}
}

// PunctureOptions selects the parity bits that are transmitted. Masks repeat
// over their segment and an empty mask keeps every bit.
type PunctureOptions struct {
	Mask     []bool
	TailMask []bool // defaults to Mask
}

// Structure is a convolutional code. The parity layout of a block is
//
//	| step outputs | tail outputs |
//
// and the systematic layout is | msg | systematic tail |.
type Structure struct {
	trellis     *trellis.Trellis
	length      int
	termination Termination
	tailSize    int
	tailInputs  []int
	decoder     DecoderOptions
}

var _ codec.Structure = (*Structure)(nil)

func New(encoder EncoderOptions, decoder DecoderOptions) (*Structure, error) {
	if encoder.Trellis == nil {
		return nil, fmt.Errorf("%w: missing trellis", codec.ErrInvalidConfiguration)
	}
	if encoder.Length <= 0 {
		return nil, fmt.Errorf("%w: invalid length %v", codec.ErrInvalidConfiguration, encoder.Length)
	}
	if encoder.Termination != Truncate && encoder.Termination != Tail {
		return nil, fmt.Errorf("%w: invalid termination %v", codec.ErrInvalidConfiguration, encoder.Termination)
	}

	s := &Structure{
		trellis:     encoder.Trellis,
		length:      encoder.Length,
		termination: encoder.Termination,
	}
	if s.termination == Tail {
		s.tailSize = s.trellis.StateSize()
	}
	s.tailInputs = make([]int, s.trellis.StateCount())
	for state := range s.tailInputs {
		s.tailInputs[state] = tailInput(s.trellis, state)
	}
	if err := s.SetDecoderOptions(decoder); err != nil {
		return nil, err
	}
	logrus.Debugf("convolutional structure %v, length %v, %v: msg %v, parity %v", s.trellis, s.length, s.termination, s.MsgSize(), s.ParitySize())
	return s, nil
}

// tailInput picks the input that removes the most weight from state, the lowest input wins ties.
func tailInput(t *trellis.Trellis, state int) int {
	best, bestGain := 0, 0
	for u := 0; u < t.InputCount(); u++ {
		gain := trellis.BitField(state).Weight() - t.NextState(state, u).Weight()
		if u == 0 || gain > bestGain {
			best, bestGain = u, gain
		}
	}
	return best
}

func (s *Structure) SetDecoderOptions(decoder DecoderOptions) error {
	if !decoder.Algorithm.Valid() {
		return fmt.Errorf("%w: invalid algorithm %v", codec.ErrInvalidConfiguration, decoder.Algorithm)
	}
	if decoder.ScalingFactor < 0 {
		return fmt.Errorf("%w: negative scaling factor %v", codec.ErrInvalidConfiguration, decoder.ScalingFactor)
	}
	if decoder.ScalingFactor == 0 {
		decoder.ScalingFactor = 1
	}
	s.decoder = decoder
	return nil
}

func (s *Structure) DecoderOptions() DecoderOptions { return s.decoder }

func (s *Structure) EncoderOptions() EncoderOptions {
	return EncoderOptions{Trellis: s.trellis, Length: s.length, Termination: s.termination}
}

func (s *Structure) Family() codec.Family      { return codec.Convolutional }
func (s *Structure) Trellis() *trellis.Trellis { return s.trellis }
func (s *Structure) Length() int               { return s.length }
func (s *Structure) Termination() Termination  { return s.termination }
func (s *Structure) TailSize() int             { return s.tailSize }
func (s *Structure) SystTailSize() int         { return s.tailSize * s.trellis.InputSize() }
func (s *Structure) MsgSize() int              { return s.length * s.trellis.InputSize() }
func (s *Structure) SystSize() int             { return s.MsgSize() + s.SystTailSize() }
func (s *Structure) ParitySize() int           { return (s.length + s.tailSize) * s.trellis.OutputSize() }
func (s *Structure) StateSize() int            { return 0 }
func (s *Structure) NewDecoder() codec.Decoder { return newDecoder(s) }
func (s *Structure) steps() int                { return s.length + s.tailSize }

func (s *Structure) Encode(msg, parity []uint8) {
	s.EncodeTail(msg, parity, nil)
}

// EncodeTail encodes msg into parity and writes the inputs of the tail transitions to systTail when it is not nil.
func (s *Structure) EncodeTail(msg, parity, systTail []uint8) {
	in, out := s.trellis.InputSize(), s.trellis.OutputSize()
	state := 0
	for j := 0; j < s.steps(); j++ {
		var input int
		if j < s.length {
			input = pack(msg[j*in : (j+1)*in])
		} else {
			input = s.tailInputs[state]
			if systTail != nil {
				unpack(trellis.BitField(input), systTail[(j-s.length)*in:(j-s.length+1)*in])
			}
		}
		unpack(s.trellis.Output(state, input), parity[j*out:(j+1)*out])
		state = int(s.trellis.NextState(state, input))
	}
}

// Check replays the trellis over parity, with Tail termination the block must end in state 0.
func (s *Structure) Check(parity []uint8) bool {
	out := s.trellis.OutputSize()
	state := 0
	for j := 0; j < s.steps(); j++ {
		expected := trellis.BitField(pack(parity[j*out : (j+1)*out]))
		found := false
		for u := 0; u < s.trellis.InputCount(); u++ {
			if s.trellis.Output(state, u) == expected {
				state = int(s.trellis.NextState(state, u))
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return s.termination == Truncate || state == 0
}

// Puncturing creates the permutation selecting the transmitted parity bits.
func (s *Structure) Puncturing(options PunctureOptions) (*permutation.Permutation, error) {
	tailMask := options.TailMask
	if len(tailMask) == 0 {
		tailMask = options.Mask
	}
	stepBits := s.length * s.trellis.OutputSize()
	keep := make([]bool, s.ParitySize())
	for i := range keep {
		if i < stepBits {
			keep[i] = maskAt(options.Mask, i)
		} else {
			keep[i] = maskAt(tailMask, i-stepBits)
		}
	}
	if !slices.Contains(keep, true) {
		return nil, fmt.Errorf("%w: puncturing keeps no bit", codec.ErrInvalidConfiguration)
	}
	return permutation.Select(keep), nil
}

func maskAt(mask []bool, i int) bool {
	if len(mask) == 0 {
		return true
	}
	return mask[i%len(mask)]
}

func pack(bits []uint8) int {
	v := 0
	for i, b := range bits {
		if b != 0 {
			v |= 1 << uint(i)
		}
	}
	return v
}

func unpack(v trellis.BitField, bits []uint8) {
	for i := range bits {
		bits[i] = 0
		if v.Test(i) {
			bits[i] = 1
		}
	}
}

type structureJSON struct {
	Trellis       *trellis.Trellis `json:"trellis"`
	Length        int              `json:"length"`
	Termination   string           `json:"termination"`
	Algorithm     string           `json:"algorithm"`
	ScalingFactor float64          `json:"scalingFactor"`
}

func (s *Structure) MarshalJSON() ([]byte, error) {
	return json.Marshal(structureJSON{
		Trellis:       s.trellis,
		Length:        s.length,
		Termination:   s.termination.String(),
		Algorithm:     s.decoder.Algorithm.String(),
		ScalingFactor: s.decoder.ScalingFactor,
	})
}

func (s *Structure) UnmarshalJSON(bytes []byte) error {
	var sj structureJSON
	if err := json.Unmarshal(bytes, &sj); err != nil {
		return err
	}
	termination, err := ParseTermination(sj.Termination)
	if err != nil {
		return err
	}
	algorithm, err := logsum.Parse(sj.Algorithm)
	if err != nil {
		return err
	}
	tmp, err := New(EncoderOptions{
		Trellis:     sj.Trellis,
		Length:      sj.Length,
		Termination: termination,
	}, DecoderOptions{Algorithm: algorithm, ScalingFactor: sj.ScalingFactor})
	if err != nil {
		return err
	}
	*s = *tmp
	return nil
}
