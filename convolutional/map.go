package convolutional

import (
	"math"

	"github.com/nathanhack/fec/internal/logsum"
)

// MapDecoder is a BCJR soft-in soft-out decoder. It owns its metric buffers and
// is reused block after block by one worker.
type MapDecoder struct {
	s     *Structure
	alpha []float64 // (steps+1) x states
	beta  []float64 // (steps+1) x states
	gamma []float64 // steps x states x inputs
	num   []float64
	den   []float64
}

func NewMapDecoder(s *Structure) *MapDecoder {
	t := s.trellis
	steps := s.steps()
	width := t.InputSize()
	if t.OutputSize() > width {
		width = t.OutputSize()
	}
	return &MapDecoder{
		s:     s,
		alpha: make([]float64, (steps+1)*t.StateCount()),
		beta:  make([]float64, (steps+1)*t.StateCount()),
		gamma: make([]float64, steps*t.StateCount()*t.InputCount()),
		num:   make([]float64, width),
		den:   make([]float64, width),
	}
}

// SoDecode runs the forward and backward recursions over one block.
// parity holds ParitySize channel LLRs and syst holds SystSize a-priori LLRs,
// both saturating at logsum.MaxLLR. Extrinsic outputs are only infinite for
// bits the termination forces.
// msg receives the a-posteriori message LLRs, systOut and parityOut the extrinsic
// LLRs; any of the outputs may be nil.
func (d *MapDecoder) SoDecode(parity, syst, msg, systOut, parityOut []float64) {
	t := d.s.trellis
	states, inputs := t.StateCount(), t.InputCount()
	in, out := t.InputSize(), t.OutputSize()
	steps := d.s.steps()
	alg := d.s.decoder.Algorithm
	ninf := math.Inf(-1)

	for j := 0; j < steps; j++ {
		p := parity[j*out : (j+1)*out]
		a := syst[j*in : (j+1)*in]
		g := d.gamma[j*states*inputs : (j+1)*states*inputs]
		for s := 0; s < states; s++ {
			for u := 0; u < inputs; u++ {
				m := 0.0
				for i, l := range a {
					if (u>>uint(i))&1 == 1 {
						m += logsum.Clamp(l)
					}
				}
				o := t.Output(s, u)
				for k, l := range p {
					if o.Test(k) {
						m += logsum.Clamp(l)
					}
				}
				g[s*inputs+u] = m
			}
		}
	}

	alpha := d.alpha
	for s := 0; s < states; s++ {
		alpha[s] = ninf
	}
	alpha[0] = 0
	for j := 0; j < steps; j++ {
		cur := alpha[j*states : (j+1)*states]
		next := alpha[(j+1)*states : (j+2)*states]
		for s := range next {
			next[s] = ninf
		}
		g := d.gamma[j*states*inputs:]
		for s := 0; s < states; s++ {
			if math.IsInf(cur[s], -1) {
				continue
			}
			for u := 0; u < inputs; u++ {
				ns := t.NextState(s, u)
				next[ns] = alg.Add(next[ns], cur[s]+g[s*inputs+u])
			}
		}
		normalize(next)
	}

	beta := d.beta
	last := beta[steps*states : (steps+1)*states]
	for s := range last {
		last[s] = 0
		if d.s.termination == Tail && s != 0 {
			last[s] = ninf
		}
	}
	for j := steps - 1; j >= 0; j-- {
		cur := beta[j*states : (j+1)*states]
		next := beta[(j+1)*states : (j+2)*states]
		g := d.gamma[j*states*inputs:]
		for s := 0; s < states; s++ {
			acc := ninf
			for u := 0; u < inputs; u++ {
				acc = alg.Add(acc, g[s*inputs+u]+next[t.NextState(s, u)])
			}
			cur[s] = acc
		}
		normalize(cur)
	}

	scale := 1.0
	if alg == logsum.Approximate {
		scale = d.s.decoder.ScalingFactor
	}

	wantSyst := msg != nil || systOut != nil
	for j := 0; j < steps; j++ {
		cur := alpha[j*states : (j+1)*states]
		next := beta[(j+1)*states : (j+2)*states]
		g := d.gamma[j*states*inputs:]
		if wantSyst {
			d.combine(in, func(s, u int) (float64, int) {
				return cur[s] + g[s*inputs+u] + next[t.NextState(s, u)], u
			}, cur)
			for i := 0; i < in; i++ {
				app := d.num[i] - d.den[i]
				if msg != nil && j < d.s.length {
					msg[j*in+i] = app
				}
				if systOut != nil {
					systOut[j*in+i] = (app - logsum.Clamp(syst[j*in+i])) * scale
				}
			}
		}
		if parityOut != nil {
			d.combine(out, func(s, u int) (float64, int) {
				return cur[s] + g[s*inputs+u] + next[t.NextState(s, u)], int(t.Output(s, u))
			}, cur)
			for k := 0; k < out; k++ {
				parityOut[j*out+k] = (d.num[k] - d.den[k] - logsum.Clamp(parity[j*out+k])) * scale
			}
		}
	}
}

// combine accumulates, for each of width bits, the transitions labelled 1 into num and 0 into den.
func (d *MapDecoder) combine(width int, transition func(s, u int) (float64, int), alpha []float64) {
	t := d.s.trellis
	alg := d.s.decoder.Algorithm
	ninf := math.Inf(-1)
	for b := 0; b < width; b++ {
		d.num[b], d.den[b] = ninf, ninf
	}
	for s := 0; s < t.StateCount(); s++ {
		if math.IsInf(alpha[s], -1) {
			continue
		}
		for u := 0; u < t.InputCount(); u++ {
			v, label := transition(s, u)
			for b := 0; b < width; b++ {
				if (label>>uint(b))&1 == 1 {
					d.num[b] = alg.Add(d.num[b], v)
				} else {
					d.den[b] = alg.Add(d.den[b], v)
				}
			}
		}
	}
}

func normalize(metrics []float64) {
	max := math.Inf(-1)
	for _, m := range metrics {
		if m > max {
			max = m
		}
	}
	if math.IsInf(max, 0) {
		return
	}
	for i := range metrics {
		metrics[i] -= max
	}
}
