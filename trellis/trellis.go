package trellis

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strconv"
)

// BitField is a packed bit vector where bit i is at position i.
type BitField uint64

//Test returns true if bit i is set.
func (b BitField) Test(i int) bool {
	return (b>>uint(i))&1 == 1
}

//Set returns a copy of b with bit i set to v.
func (b BitField) Set(i int, v bool) BitField {
	if v {
		return b | 1<<uint(i)
	}
	return b &^ (1 << uint(i))
}

//Weight is the number of set bits.
func (b BitField) Weight() int {
	return bits.OnesCount64(uint64(b))
}

// Trellis is the transition table of one convolutional constituent.
// It is read-only after construction.
type Trellis struct {
	stateSize  int
	inputSize  int
	outputSize int
	nextState  []BitField
	output     []BitField
}

// New builds a trellis from generator polynomials written in octal notation.
// constraintLengths has one entry per input bit, generator[i] holds one
// polynomial per output bit for input i. The most significant bit of a polynomial
// taps the current input. feedback is optional; when set, feedback[i] is the
// recursive polynomial of input i and a generator equal to it produces that
// input unchanged (systematic output).
func New(constraintLengths []int, generator [][]BitField, feedback []BitField) (*Trellis, error) {
	if len(constraintLengths) == 0 {
		return nil, fmt.Errorf("trellis needs at least one input")
	}
	if len(generator) != len(constraintLengths) {
		return nil, fmt.Errorf("generator count (%v) doesn't match constraint length count (%v)", len(generator), len(constraintLengths))
	}
	if len(feedback) != 0 && len(feedback) != len(constraintLengths) {
		return nil, fmt.Errorf("feedback count (%v) doesn't match constraint length count (%v)", len(feedback), len(constraintLengths))
	}
	outputSize := len(generator[0])
	if outputSize == 0 {
		return nil, fmt.Errorf("trellis needs at least one output")
	}

	memory := make([]int, len(constraintLengths))
	offset := make([]int, len(constraintLengths))
	stateSize := 0
	for i, k := range constraintLengths {
		if k < 1 {
			return nil, fmt.Errorf("invalid constraint length %v", k)
		}
		if len(generator[i]) != outputSize {
			return nil, fmt.Errorf("generator %v has %v outputs, expected %v", i, len(generator[i]), outputSize)
		}
		for _, g := range generator[i] {
			if g>>uint(k) != 0 {
				return nil, fmt.Errorf("generator %o exceeds constraint length %v", uint64(g), k)
			}
		}
		if len(feedback) != 0 && feedback[i]>>uint(k) != 0 {
			return nil, fmt.Errorf("feedback %o exceeds constraint length %v", uint64(feedback[i]), k)
		}
		memory[i] = k - 1
		offset[i] = stateSize
		stateSize += k - 1
	}
	inputSize := len(constraintLengths)
	if stateSize > 24 || inputSize > 16 || outputSize > 64 {
		return nil, fmt.Errorf("trellis too large")
	}

	t := &Trellis{
		stateSize:  stateSize,
		inputSize:  inputSize,
		outputSize: outputSize,
		nextState:  make([]BitField, (1<<uint(stateSize))*(1<<uint(inputSize))),
		output:     make([]BitField, (1<<uint(stateSize))*(1<<uint(inputSize))),
	}

	for s := 0; s < t.StateCount(); s++ {
		for u := 0; u < t.InputCount(); u++ {
			var next, out BitField
			for i := range constraintLengths {
				m := uint(memory[i])
				mask := BitField(1)<<m - 1
				mem := (BitField(s) >> uint(offset[i])) & mask
				in := BitField(u>>uint(i)) & 1
				if len(feedback) != 0 {
					in ^= BitField(bits.OnesCount64(uint64(feedback[i]&mask&mem)) & 1)
				}
				reg := in<<m | mem
				for k, g := range generator[i] {
					if bits.OnesCount64(uint64(g&reg))&1 == 1 {
						out ^= 1 << uint(k)
					}
				}
				next |= (reg >> 1) << uint(offset[i])
			}
			t.nextState[s*t.InputCount()+u] = next
			t.output[s*t.InputCount()+u] = out
		}
	}
	return t, nil
}

// FromTables builds a trellis from explicit next-state and output tables indexed by state*2^inputSize+input.
func FromTables(stateSize, inputSize, outputSize int, nextState, output []BitField) (*Trellis, error) {
	if stateSize < 0 || stateSize > 24 || inputSize < 1 || inputSize > 16 || outputSize < 1 || outputSize > 64 {
		return nil, fmt.Errorf("invalid trellis dimensions (%v,%v,%v)", stateSize, inputSize, outputSize)
	}
	n := (1 << uint(stateSize)) * (1 << uint(inputSize))
	if len(nextState) != n || len(output) != n {
		return nil, fmt.Errorf("expected tables of size %v but found %v and %v", n, len(nextState), len(output))
	}
	for i := range nextState {
		if nextState[i]>>uint(stateSize) != 0 {
			return nil, fmt.Errorf("next state %v out of range", nextState[i])
		}
		if outputSize < 64 && output[i]>>uint(outputSize) != 0 {
			return nil, fmt.Errorf("output %v out of range", output[i])
		}
	}
	t := &Trellis{
		stateSize:  stateSize,
		inputSize:  inputSize,
		outputSize: outputSize,
		nextState:  append([]BitField(nil), nextState...),
		output:     append([]BitField(nil), output...),
	}
	return t, nil
}

// ParseOctal parses polynomials like "15" or "0o13" written in octal.
func ParseOctal(polynomials ...string) ([]BitField, error) {
	result := make([]BitField, len(polynomials))
	for i, p := range polynomials {
		if len(p) > 2 && (p[:2] == "0o" || p[:2] == "0O") {
			p = p[2:]
		}
		v, err := strconv.ParseUint(p, 8, 64)
		if err != nil {
			return nil, fmt.Errorf("polynomial %q: %w", polynomials[i], err)
		}
		result[i] = BitField(v)
	}
	return result, nil
}

//StateSize is the number of memory bits.
func (t *Trellis) StateSize() int { return t.stateSize }

//InputSize is the number of input bits per transition.
func (t *Trellis) InputSize() int { return t.inputSize }

//OutputSize is the number of output bits per transition.
func (t *Trellis) OutputSize() int { return t.outputSize }

func (t *Trellis) StateCount() int  { return 1 << uint(t.stateSize) }
func (t *Trellis) InputCount() int  { return 1 << uint(t.inputSize) }
func (t *Trellis) OutputCount() int { return 1 << uint(t.outputSize) }

func (t *Trellis) NextState(state, input int) BitField {
	return t.nextState[state*t.InputCount()+input]
}

func (t *Trellis) Output(state, input int) BitField {
	return t.output[state*t.InputCount()+input]
}

// Tables returns copies of the next-state and output tables.
func (t *Trellis) Tables() (nextState, output []BitField) {
	return append([]BitField(nil), t.nextState...), append([]BitField(nil), t.output...)
}

func (t *Trellis) Equals(other *Trellis) bool {
	if t.stateSize != other.stateSize || t.inputSize != other.inputSize || t.outputSize != other.outputSize {
		return false
	}
	for i := range t.nextState {
		if t.nextState[i] != other.nextState[i] || t.output[i] != other.output[i] {
			return false
		}
	}
	return true
}

func (t *Trellis) String() string {
	return fmt.Sprintf("Trellis(states:%v, input:%v, output:%v)", t.StateCount(), t.inputSize, t.outputSize)
}

type trellisJSON struct {
	StateSize  int        `json:"stateSize"`
	InputSize  int        `json:"inputSize"`
	OutputSize int        `json:"outputSize"`
	NextState  []BitField `json:"nextState"`
	Output     []BitField `json:"output"`
}

func (t *Trellis) MarshalJSON() ([]byte, error) {
	return json.Marshal(trellisJSON{
		StateSize:  t.stateSize,
		InputSize:  t.inputSize,
		OutputSize: t.outputSize,
		NextState:  t.nextState,
		Output:     t.output,
	})
}

func (t *Trellis) UnmarshalJSON(bytes []byte) error {
	var tj trellisJSON
	if err := json.Unmarshal(bytes, &tj); err != nil {
		return err
	}
	tmp, err := FromTables(tj.StateSize, tj.InputSize, tj.OutputSize, tj.NextState, tj.Output)
	if err != nil {
		return err
	}
	*t = *tmp
	return nil
}
