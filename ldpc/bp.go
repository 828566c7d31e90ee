package ldpc

import (
	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/internal/logsum"
)

// decoder is a flooding belief propagation decoder over the transformed checks.
// Check to bit messages are stored per edge in row major order.
type decoder struct {
	s      *Structure
	offset []int // first edge of each check
	total  []float64
	q      []float64
	prefix []float64
	suffix []float64
	m      []float64
	hard   []uint8
}

func newDecoder(s *Structure) *decoder {
	d := &decoder{
		s:      s,
		offset: make([]int, len(s.d.checks)+1),
		total:  make([]float64, s.ParitySize()),
		m:      make([]float64, s.edges),
		hard:   make([]uint8, s.ParitySize()),
	}
	maxDegree := 0
	for r, row := range s.d.checks {
		d.offset[r+1] = d.offset[r] + len(row)
		if len(row) > maxDegree {
			maxDegree = len(row)
		}
	}
	d.q = make([]float64, maxDegree)
	d.prefix = make([]float64, maxDegree)
	d.suffix = make([]float64, maxDegree)
	return d
}

func (d *decoder) Decode(parity []float64, msg []uint8) {
	d.run(parity, nil, nil)
	for i := range msg {
		msg[i] = 0
		if d.total[i] > 0 {
			msg[i] = 1
		}
	}
}

func (d *decoder) SoDecode(in codec.Input, out codec.Output) {
	d.run(in.Parity, in.Syst, in.State)
	msgSize := d.s.MsgSize()
	if out.Msg != nil {
		copy(out.Msg, d.total[:msgSize])
	}
	if out.Syst != nil {
		for i := range out.Syst {
			out.Syst[i] = d.total[i] - logsum.Clamp(in.Syst[i])
		}
	}
	if out.Parity != nil {
		for i := range out.Parity {
			out.Parity[i] = d.total[i] - logsum.Clamp(in.Parity[i])
		}
	}
	if out.State != nil {
		copy(out.State, d.m)
	}
}

// run iterates until the hard decision satisfies every check or the iterations
// run out, leaving the a-posteriori LLRs in total and the last check
// messages in m. A satisfied input returns before the first iteration.
func (d *decoder) run(parity, syst, state []float64) {
	if state != nil {
		for i, l := range state {
			d.m[i] = logsum.Clamp(l)
		}
	} else {
		for i := range d.m {
			d.m[i] = 0
		}
	}
	d.accumulate(parity, syst)

	for it := 0; it < d.s.decoder.Iterations && !d.satisfied(); it++ {
		for r, row := range d.s.d.checks {
			factor := d.s.factors[r]
			d.checkUpdate(row, d.m[d.offset[r]:d.offset[r+1]], factor[it%len(factor)])
		}
		d.accumulate(parity, syst)
	}
}

// accumulate sets total to channel plus prior plus every incoming check message.
// Inputs saturate at logsum.MaxLLR so totals stay finite.
func (d *decoder) accumulate(parity, syst []float64) {
	for i, l := range parity {
		d.total[i] = logsum.Clamp(l)
	}
	for i := range syst {
		d.total[i] += logsum.Clamp(syst[i])
	}
	for r, row := range d.s.d.checks {
		m := d.m[d.offset[r]:d.offset[r+1]]
		for k, b := range row {
			d.total[b] += m[k]
		}
	}
}

// checkUpdate replaces the outgoing messages m of one check with the combination
// of the other incoming bit messages.
func (d *decoder) checkUpdate(row []int, m []float64, factor float64) {
	alg := d.s.decoder.Algorithm
	n := len(row)
	q, prefix, suffix := d.q[:n], d.prefix[:n], d.suffix[:n]
	for k, b := range row {
		q[k] = d.total[b] - m[k]
	}
	prefix[0] = q[0]
	for k := 1; k < n; k++ {
		prefix[k] = alg.Xor(prefix[k-1], q[k])
	}
	suffix[n-1] = q[n-1]
	for k := n - 2; k >= 0; k-- {
		suffix[k] = alg.Xor(suffix[k+1], q[k])
	}
	m[0] = logsum.Clamp(suffix[1] * factor)
	m[n-1] = logsum.Clamp(prefix[n-2] * factor)
	for k := 1; k < n-1; k++ {
		m[k] = logsum.Clamp(alg.Xor(prefix[k-1], suffix[k+1]) * factor)
	}
}

func (d *decoder) satisfied() bool {
	for i, l := range d.total {
		d.hard[i] = 0
		if l > 0 {
			d.hard[i] = 1
		}
	}
	return d.s.Check(d.hard)
}
