package turbo

import (
	"encoding/json"
	"fmt"

	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/convolutional"
	"github.com/nathanhack/fec/internal/logsum"
	"github.com/nathanhack/fec/permutation"
	"github.com/nathanhack/fec/trellis"
)

type structureJSON struct {
	Trellis       []*trellis.Trellis `json:"trellis"`
	Interleaver   [][]int            `json:"interleaver"`
	InputSize     []int              `json:"inputSize,omitempty"`
	Termination   []string           `json:"termination"`
	Iterations    int                `json:"iterations"`
	Scheduling    string             `json:"scheduling"`
	Algorithm     string             `json:"algorithm"`
	ScalingFactor float64            `json:"scalingFactor"`
}

func (s *Structure) MarshalJSON() ([]byte, error) {
	sj := structureJSON{
		Iterations:    s.decoder.Iterations,
		Scheduling:    s.decoder.Scheduling.String(),
		Algorithm:     s.decoder.Algorithm.String(),
		ScalingFactor: s.decoder.ScalingFactor,
	}
	for i, c := range s.constituents {
		sj.Trellis = append(sj.Trellis, c.Trellis())
		sj.Interleaver = append(sj.Interleaver, s.interleavers[i].Sequence())
		sj.InputSize = append(sj.InputSize, s.interleavers[i].InputSize())
		sj.Termination = append(sj.Termination, c.Termination().String())
	}
	return json.Marshal(sj)
}

func (s *Structure) UnmarshalJSON(bytes []byte) error {
	var sj structureJSON
	if err := json.Unmarshal(bytes, &sj); err != nil {
		return err
	}

	var encoder EncoderOptions
	encoder.Trellis = sj.Trellis
	for i, seq := range sj.Interleaver {
		// without a recorded size the largest source index decides it
		p, err := permutation.New(seq)
		if i < len(sj.InputSize) {
			p, err = permutation.NewSized(seq, sj.InputSize[i])
		}
		if err != nil {
			return fmt.Errorf("%w: interleaver %v: %v", codec.ErrInvalidConfiguration, i, err)
		}
		encoder.Interleaver = append(encoder.Interleaver, p)
	}
	for _, name := range sj.Termination {
		t, err := convolutional.ParseTermination(name)
		if err != nil {
			return err
		}
		encoder.Termination = append(encoder.Termination, t)
	}

	scheduling, err := ParseScheduling(sj.Scheduling)
	if err != nil {
		return err
	}
	algorithm, err := logsum.Parse(sj.Algorithm)
	if err != nil {
		return err
	}
	tmp, err := New(encoder, DecoderOptions{
		Iterations:    sj.Iterations,
		Scheduling:    scheduling,
		Algorithm:     algorithm,
		ScalingFactor: sj.ScalingFactor,
	})
	if err != nil {
		return err
	}
	*s = *tmp
	return nil
}
