package convolutional

import (
	"math"

	"github.com/nathanhack/fec/internal/logsum"
)

// viterbi is a hard decision maximum likelihood decoder. The cost of a branch
// is the sum of |llr| over the output bits disagreeing with the sign of their llr,
// with llr saturated at logsum.MaxLLR so every path keeps a finite metric.
type viterbi struct {
	s        *Structure
	metric   []float64
	next     []float64
	survivor []int32 // steps x states, previous state * inputs + input
	cost     []float64
}

func newViterbi(s *Structure) *viterbi {
	t := s.trellis
	v := &viterbi{
		s:        s,
		metric:   make([]float64, t.StateCount()),
		next:     make([]float64, t.StateCount()),
		survivor: make([]int32, s.steps()*t.StateCount()),
	}
	if t.OutputSize() <= 12 {
		v.cost = make([]float64, t.OutputCount())
	}
	return v
}

func (v *viterbi) branchCost(parity []float64, output int) float64 {
	if v.cost != nil {
		return v.cost[output]
	}
	return outputCost(parity, output)
}

func outputCost(parity []float64, output int) float64 {
	c := 0.0
	for k, l := range parity {
		bit := (output>>uint(k))&1 == 1
		if bit != (l > 0) {
			c += math.Abs(logsum.Clamp(l))
		}
	}
	return c
}

func (v *viterbi) decode(parity []float64, msg []uint8) {
	t := v.s.trellis
	states, inputs := t.StateCount(), t.InputCount()
	in, out := t.InputSize(), t.OutputSize()
	inf := math.Inf(1)

	for s := range v.metric {
		v.metric[s] = inf
	}
	v.metric[0] = 0

	for j := 0; j < v.s.steps(); j++ {
		llr := parity[j*out : (j+1)*out]
		if v.cost != nil {
			for o := range v.cost {
				v.cost[o] = outputCost(llr, o)
			}
		}
		for s := range v.next {
			v.next[s] = inf
		}
		survivor := v.survivor[j*states : (j+1)*states]
		for u := 0; u < inputs; u++ {
			for s := 0; s < states; s++ {
				if math.IsInf(v.metric[s], 1) {
					continue
				}
				m := v.metric[s] + v.branchCost(llr, int(t.Output(s, u)))
				ns := t.NextState(s, u)
				if m < v.next[ns] {
					v.next[ns] = m
					survivor[ns] = int32(s*inputs + u)
				}
			}
		}
		v.metric, v.next = v.next, v.metric
	}

	state := 0
	if v.s.termination == Truncate {
		for s := 1; s < states; s++ {
			if v.metric[s] < v.metric[state] {
				state = s
			}
		}
	}
	for j := v.s.steps() - 1; j >= 0; j-- {
		p := int(v.survivor[j*states+state])
		u := p % inputs
		state = p / inputs
		if j < v.s.length {
			for i := 0; i < in; i++ {
				msg[j*in+i] = uint8((u >> uint(i)) & 1)
			}
		}
	}
}
