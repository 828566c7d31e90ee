package turbo

import (
	"fmt"

	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/convolutional"
	"github.com/nathanhack/fec/internal/logsum"
	"github.com/nathanhack/fec/permutation"
	"github.com/nathanhack/fec/trellis"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Scheduling selects the order in which constituents exchange extrinsic information.
type Scheduling int

const (
	// Serial runs the constituents one after the other, each one seeing the
	// extrinsic output of those run before it in the same iteration.
	Serial Scheduling = iota
	// Parallel runs every constituent on the extrinsic outputs of the previous iteration.
	Parallel
)

func (s Scheduling) String() string {
	switch s {
	case Serial:
		return "Serial"
	case Parallel:
		return "Parallel"
	}
	return fmt.Sprintf("Scheduling(%d)", int(s))
}

func ParseScheduling(name string) (Scheduling, error) {
	switch name {
	case "Serial":
		return Serial, nil
	case "Parallel":
		return Parallel, nil
	}
	return 0, fmt.Errorf("unknown scheduling %q", name)
}

type EncoderOptions struct {
	// Trellis holds one trellis per constituent or a single one shared by all.
	Trellis []*trellis.Trellis
	// Interleaver maps the message to the input of each constituent, nil or empty means identity.
	Interleaver []*permutation.Permutation
	// Termination holds one termination per constituent or a single one shared by all.
	// Empty means Tail.
	Termination []convolutional.Termination
}

type DecoderOptions struct {
	Iterations    int
	Scheduling    Scheduling
	Algorithm     logsum.Algorithm
	ScalingFactor float64 // zero means 1
}

func DefaultDecoderOptions() DecoderOptions {
	return DecoderOptions{Iterations: 6, Scheduling: Serial, Algorithm: logsum.Approximate, ScalingFactor: 1}
}

// Structure is a turbo code made of convolutional constituents fed by interleaved
// copies of the message. The parity layout of a block is
//
//	| msg | systematic tail 1..M | constituent parity 1..M |
//
// and the systematic layout is | msg | systematic tail 1..M |.
type Structure struct {
	interleavers []*permutation.Permutation
	constituents []*convolutional.Structure
	msgSize      int
	systSize     int
	paritySize   int
	stateSize    int
	decoder      DecoderOptions
}

var _ codec.Structure = (*Structure)(nil)

func New(encoder EncoderOptions, decoder DecoderOptions) (*Structure, error) {
	count := len(encoder.Interleaver)
	if count == 0 {
		return nil, fmt.Errorf("%w: at least one interleaver is required", codec.ErrInvalidConfiguration)
	}
	if len(encoder.Trellis) != 1 && len(encoder.Trellis) != count {
		return nil, fmt.Errorf("%w: trellis and interleaver count don't match", codec.ErrInvalidConfiguration)
	}
	if len(encoder.Termination) > 1 && len(encoder.Termination) != count {
		return nil, fmt.Errorf("%w: termination and interleaver count don't match", codec.ErrInvalidConfiguration)
	}

	s := &Structure{
		interleavers: make([]*permutation.Permutation, count),
		constituents: make([]*convolutional.Structure, count),
	}
	for _, p := range encoder.Interleaver {
		if p != nil && p.InputSize() > s.msgSize {
			s.msgSize = p.InputSize()
		}
	}
	if s.msgSize == 0 {
		return nil, fmt.Errorf("%w: no interleaver defines the message size", codec.ErrInvalidConfiguration)
	}

	for i, p := range encoder.Interleaver {
		if p == nil || p.OutputSize() == 0 {
			p = permutation.Identity(s.msgSize)
		}
		s.interleavers[i] = p

		t := encoder.Trellis[0]
		if len(encoder.Trellis) > 1 {
			t = encoder.Trellis[i]
		}
		if t == nil {
			return nil, fmt.Errorf("%w: missing trellis %v", codec.ErrInvalidConfiguration, i)
		}
		termination := convolutional.Tail
		switch len(encoder.Termination) {
		case 0:
		case 1:
			termination = encoder.Termination[0]
		default:
			termination = encoder.Termination[i]
		}
		if p.OutputSize()%t.InputSize() != 0 {
			return nil, fmt.Errorf("%w: invalid size for interleaver %v", codec.ErrInvalidConfiguration, i)
		}

		c, err := convolutional.New(convolutional.EncoderOptions{
			Trellis:     t,
			Length:      p.OutputSize() / t.InputSize(),
			Termination: termination,
		}, convolutional.DefaultDecoderOptions())
		if err != nil {
			return nil, err
		}
		s.constituents[i] = c
	}

	s.systSize = s.msgSize
	s.paritySize = 0
	for _, c := range s.constituents {
		s.systSize += c.SystTailSize()
		s.paritySize += c.ParitySize()
		s.stateSize += c.SystSize()
	}
	s.paritySize += s.systSize

	if err := s.SetDecoderOptions(decoder); err != nil {
		return nil, err
	}
	logrus.Debugf("turbo structure with %v constituents: msg %v, syst %v, parity %v", count, s.msgSize, s.systSize, s.paritySize)
	return s, nil
}

func (s *Structure) SetDecoderOptions(decoder DecoderOptions) error {
	if decoder.Iterations <= 0 {
		return fmt.Errorf("%w: invalid iteration count %v", codec.ErrInvalidConfiguration, decoder.Iterations)
	}
	if decoder.Scheduling != Serial && decoder.Scheduling != Parallel {
		return fmt.Errorf("%w: invalid scheduling %v", codec.ErrInvalidConfiguration, decoder.Scheduling)
	}
	if !decoder.Algorithm.Valid() {
		return fmt.Errorf("%w: invalid algorithm %v", codec.ErrInvalidConfiguration, decoder.Algorithm)
	}
	if decoder.ScalingFactor == 0 {
		decoder.ScalingFactor = 1
	}
	constituent := convolutional.DecoderOptions{Algorithm: decoder.Algorithm, ScalingFactor: decoder.ScalingFactor}
	for _, c := range s.constituents {
		if err := c.SetDecoderOptions(constituent); err != nil {
			return err
		}
	}
	s.decoder = decoder
	return nil
}

func (s *Structure) DecoderOptions() DecoderOptions { return s.decoder }

func (s *Structure) EncoderOptions() EncoderOptions {
	encoder := EncoderOptions{Interleaver: append([]*permutation.Permutation(nil), s.interleavers...)}
	for _, c := range s.constituents {
		encoder.Trellis = append(encoder.Trellis, c.Trellis())
		encoder.Termination = append(encoder.Termination, c.Termination())
	}
	return encoder
}

func (s *Structure) Family() codec.Family      { return codec.Turbo }
func (s *Structure) MsgSize() int              { return s.msgSize }
func (s *Structure) SystSize() int             { return s.systSize }
func (s *Structure) ParitySize() int           { return s.paritySize }
func (s *Structure) StateSize() int            { return s.stateSize }
func (s *Structure) NewDecoder() codec.Decoder { return newDecoder(s) }

func (s *Structure) ConstituentCount() int { return len(s.constituents) }

func (s *Structure) Constituent(i int) *convolutional.Structure { return s.constituents[i] }

func (s *Structure) Interleaver(i int) *permutation.Permutation { return s.interleavers[i] }

func (s *Structure) Encode(msg, parity []uint8) {
	copy(parity, msg[:s.msgSize])
	systTail := parity[s.msgSize:s.systSize]
	out := parity[s.systSize:]
	for i, c := range s.constituents {
		interleaved := make([]uint8, c.MsgSize())
		permutation.Permute(s.interleavers[i], msg, interleaved)
		c.EncodeTail(interleaved, out[:c.ParitySize()], systTail[:c.SystTailSize()])
		systTail = systTail[c.SystTailSize():]
		out = out[c.ParitySize():]
	}
}

// Check encodes the systematic part again and compares every constituent parity and tail.
func (s *Structure) Check(parity []uint8) bool {
	msg := parity[:s.msgSize]
	systTail := parity[s.msgSize:s.systSize]
	out := parity[s.systSize:]
	for i, c := range s.constituents {
		interleaved := make([]uint8, c.MsgSize())
		permutation.Permute(s.interleavers[i], msg, interleaved)
		expected := make([]uint8, c.ParitySize())
		tail := make([]uint8, c.SystTailSize())
		c.EncodeTail(interleaved, expected, tail)
		if !slices.Equal(expected, out[:c.ParitySize()]) || !slices.Equal(tail, systTail[:c.SystTailSize()]) {
			return false
		}
		systTail = systTail[c.SystTailSize():]
		out = out[c.ParitySize():]
	}
	return true
}
