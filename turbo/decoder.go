package turbo

import (
	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/convolutional"
	"github.com/nathanhack/fec/internal/logsum"
	"github.com/nathanhack/fec/permutation"
)

// decoder exchanges extrinsic information between one MAP decoder per constituent.
// ext[i] is the last systematic extrinsic output of constituent i in its own
// interleaved domain, it is the whole state carried between iterations.
type decoder struct {
	s        *Structure
	maps     []*convolutional.MapDecoder
	ext      [][]float64
	next     [][]float64 // parallel scheduling output
	deperm   [][]float64 // ext[i] brought back to the message domain
	msgPrior []float64
	systIn   []float64
}

func newDecoder(s *Structure) *decoder {
	d := &decoder{
		s:        s,
		msgPrior: make([]float64, s.msgSize),
	}
	largest := 0
	for _, c := range s.constituents {
		d.maps = append(d.maps, convolutional.NewMapDecoder(c))
		d.ext = append(d.ext, make([]float64, c.SystSize()))
		d.next = append(d.next, make([]float64, c.SystSize()))
		d.deperm = append(d.deperm, make([]float64, s.msgSize))
		if c.SystSize() > largest {
			largest = c.SystSize()
		}
	}
	d.systIn = make([]float64, largest)
	return d
}

func (d *decoder) Decode(parity []float64, msg []uint8) {
	app := make([]float64, d.s.msgSize)
	d.run(parity, nil, nil, nil)
	d.app(parity, nil, app)
	for i, l := range app {
		msg[i] = 0
		if l > 0 {
			msg[i] = 1
		}
	}
}

func (d *decoder) SoDecode(in codec.Input, out codec.Output) {
	var parityExt []float64
	if out.Parity != nil {
		parityExt = out.Parity[d.s.systSize:]
	}
	d.run(in.Parity, in.Syst, in.State, parityExt)

	s := d.s
	if out.Msg != nil {
		d.app(in.Parity, in.Syst, out.Msg)
	}
	if out.Syst != nil || out.Parity != nil {
		// extrinsic of the systematic bits with respect to the prior and to the channel
		tailOffset := s.msgSize
		for i := 0; i < s.msgSize; i++ {
			sum := d.sum(i, -1)
			if out.Syst != nil {
				out.Syst[i] = logsum.Clamp(in.Parity[i]) + sum
			}
			if out.Parity != nil {
				out.Parity[i] = logsum.Clamp(in.Syst[i]) + sum
			}
		}
		for k, c := range s.constituents {
			tail := d.ext[k][c.MsgSize():]
			for j, e := range tail {
				if out.Syst != nil {
					out.Syst[tailOffset+j] = logsum.Clamp(in.Parity[tailOffset+j]) + e
				}
				if out.Parity != nil {
					out.Parity[tailOffset+j] = logsum.Clamp(in.Syst[tailOffset+j]) + e
				}
			}
			tailOffset += len(tail)
		}
	}
	if out.State != nil {
		offset := 0
		for _, e := range d.ext {
			copy(out.State[offset:], e)
			offset += len(e)
		}
	}
}

// run performs every iteration. When parityExt is not nil the last pass of each
// constituent writes its parity extrinsic output there.
func (d *decoder) run(parity, syst, state, parityExt []float64) {
	s := d.s
	offset := 0
	for k := range d.ext {
		if state != nil {
			for j, l := range state[offset : offset+len(d.ext[k])] {
				d.ext[k][j] = logsum.Clamp(l)
			}
		} else {
			for j := range d.ext[k] {
				d.ext[k][j] = 0
			}
		}
		offset += len(d.ext[k])
		d.depermute(k)
	}

	for it := 0; it < s.decoder.Iterations; it++ {
		last := it == s.decoder.Iterations-1
		for k := range s.constituents {
			var parityOut []float64
			if last && parityExt != nil {
				parityOut = d.parityExt(parityExt, k)
			}
			target := d.ext[k]
			if s.decoder.Scheduling == Parallel {
				target = d.next[k]
			}
			d.constituent(k, parity, syst, target, parityOut)
			if s.decoder.Scheduling == Serial {
				d.depermute(k)
			}
		}
		if s.decoder.Scheduling == Parallel {
			d.ext, d.next = d.next, d.ext
			for k := range d.ext {
				d.depermute(k)
			}
		}
	}
}

// constituent runs the MAP decoder of constituent k and writes its systematic extrinsic to ext.
func (d *decoder) constituent(k int, parity, syst, ext, parityOut []float64) {
	s := d.s
	c := s.constituents[k]
	for i := range d.msgPrior {
		d.msgPrior[i] = logsum.Clamp(parity[i]) + d.sum(i, k)
		if syst != nil {
			d.msgPrior[i] += logsum.Clamp(syst[i])
		}
	}
	systIn := d.systIn[:c.SystSize()]
	permutation.Permute(s.interleavers[k], d.msgPrior, systIn[:c.MsgSize()])

	tailOffset := s.msgSize
	parityOffset := s.systSize
	for j := 0; j < k; j++ {
		tailOffset += s.constituents[j].SystTailSize()
		parityOffset += s.constituents[j].ParitySize()
	}
	for j := c.MsgSize(); j < c.SystSize(); j++ {
		systIn[j] = logsum.Clamp(parity[tailOffset+j-c.MsgSize()])
		if syst != nil {
			systIn[j] += logsum.Clamp(syst[tailOffset+j-c.MsgSize()])
		}
	}
	d.maps[k].SoDecode(parity[parityOffset:parityOffset+c.ParitySize()], systIn, nil, ext, parityOut)
}

// parityExt is the part of the parity output holding the extrinsic of constituent k.
func (d *decoder) parityExt(parityExt []float64, k int) []float64 {
	offset := 0
	for j := 0; j < k; j++ {
		offset += d.s.constituents[j].ParitySize()
	}
	return parityExt[offset : offset+d.s.constituents[k].ParitySize()]
}

func (d *decoder) depermute(k int) {
	c := d.s.constituents[k]
	for i := range d.deperm[k] {
		d.deperm[k][i] = 0
	}
	d.s.interleavers[k].Depermute(d.ext[k][:c.MsgSize()], d.deperm[k])
}

// sum adds the message domain extrinsic of every constituent but skip for message bit i.
func (d *decoder) sum(i, skip int) float64 {
	v := 0.0
	for k := range d.deperm {
		if k != skip {
			v += d.deperm[k][i]
		}
	}
	return v
}

// app writes the a-posteriori LLRs of the message.
func (d *decoder) app(parity, syst, msg []float64) {
	for i := range msg {
		msg[i] = logsum.Clamp(parity[i]) + d.sum(i, -1)
		if syst != nil {
			msg[i] += logsum.Clamp(syst[i])
		}
	}
}
