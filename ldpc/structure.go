package ldpc

import (
	"encoding/json"
	"fmt"

	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/internal/logsum"
	"github.com/nathanhack/fec/permutation"
	mat "github.com/nathanhack/sparsemat"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

type EncoderOptions struct {
	// H is the parity check matrix, it needs more columns than rows and at least two ones per row.
	H mat.SparseMat
}

type DecoderOptions struct {
	Iterations int
	Algorithm  logsum.Algorithm
	// ScalingFactor maps a check degree to the factors applied to its outgoing
	// messages, one per iteration or a single one for all of them. Key 0 is the
	// default for degrees without an entry. The iteration index restarts at 0 on
	// every decode, so a decode continued from a carried state reuses the first
	// factors rather than resuming where the previous decode stopped.
	ScalingFactor map[int][]float64
}

func DefaultDecoderOptions() DecoderOptions {
	return DecoderOptions{
		Iterations:    50,
		Algorithm:     logsum.Linear,
		ScalingFactor: map[int][]float64{0: {1.0}},
	}
}

// PunctureOptions selects the transmitted bits. SystMask repeats over the message
// prefix and BitMask over the remaining bits, an empty mask keeps every bit.
type PunctureOptions struct {
	SystMask []bool
	BitMask  []bool
}

// Structure is an LDPC code. The codeword layout follows the transformed
// parity check matrix: | msg | gap parity | triangular parity |.
type Structure struct {
	h       mat.SparseMat
	d       *decomposition
	edges   int
	decoder DecoderOptions
	factors [][]float64 // per transformed row
}

var _ codec.Structure = (*Structure)(nil)

func New(encoder EncoderOptions, decoder DecoderOptions) (*Structure, error) {
	if encoder.H == nil {
		return nil, fmt.Errorf("%w: missing parity check matrix", codec.ErrInvalidConfiguration)
	}
	rows, cols := encoder.H.Dims()
	if rows >= cols {
		return nil, fmt.Errorf("%w: parity check matrix needs more columns than rows, found %vx%v", codec.ErrInvalidConfiguration, rows, cols)
	}
	elements := make([][]int, rows)
	edges := 0
	for r := range elements {
		elements[r] = encoder.H.Row(r).NonzeroArray()
		if len(elements[r]) < 2 {
			return nil, fmt.Errorf("%w: row %v of the parity check matrix has %v ones", codec.ErrInvalidConfiguration, r, len(elements[r]))
		}
		edges += len(elements[r])
	}

	d, err := decompose(rows, cols, elements)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrInvalidConfiguration, err)
	}
	s := &Structure{h: encoder.H, d: d, edges: edges}
	if err := s.SetDecoderOptions(decoder); err != nil {
		return nil, err
	}
	logrus.Debugf("ldpc structure %vx%v: msg %v, gap %v, edges %v, check degrees %v", rows, cols, d.msgSize, d.gapSize, edges, s.degrees())
	return s, nil
}

func (s *Structure) SetDecoderOptions(decoder DecoderOptions) error {
	if !decoder.Algorithm.Valid() {
		return fmt.Errorf("%w: invalid algorithm %v", codec.ErrInvalidConfiguration, decoder.Algorithm)
	}
	if decoder.Iterations <= 0 {
		return fmt.Errorf("%w: invalid iteration count %v", codec.ErrInvalidConfiguration, decoder.Iterations)
	}
	if len(decoder.ScalingFactor) == 0 {
		decoder.ScalingFactor = map[int][]float64{0: {1.0}}
	}
	for degree, factor := range decoder.ScalingFactor {
		if len(factor) != 1 && len(factor) != decoder.Iterations {
			return fmt.Errorf("%w: wrong size for scaling factor of degree %v", codec.ErrInvalidConfiguration, degree)
		}
	}

	factors := make([][]float64, len(s.d.checks))
	for r, row := range s.d.checks {
		factor, ok := decoder.ScalingFactor[len(row)]
		if !ok {
			factor, ok = decoder.ScalingFactor[0]
		}
		if !ok {
			return fmt.Errorf("%w: scaling factor not defined and no default for degree %v", codec.ErrInvalidConfiguration, len(row))
		}
		factors[r] = factor
	}
	s.decoder = decoder
	s.factors = factors
	return nil
}

func (s *Structure) DecoderOptions() DecoderOptions { return s.decoder }
func (s *Structure) EncoderOptions() EncoderOptions { return EncoderOptions{H: s.h} }

func (s *Structure) Family() codec.Family      { return codec.Ldpc }
func (s *Structure) MsgSize() int              { return s.d.msgSize }
func (s *Structure) SystSize() int             { return s.d.msgSize }
func (s *Structure) ParitySize() int           { return len(s.d.order) }
func (s *Structure) StateSize() int            { return s.edges }
func (s *Structure) NewDecoder() codec.Decoder { return newDecoder(s) }

// ColumnOrder maps each codeword position to the column of H it came from.
func (s *Structure) ColumnOrder() []int {
	return append([]int(nil), s.d.order...)
}

// Checks returns the rows of the column permuted parity check matrix.
func (s *Structure) Checks() [][]int {
	result := make([][]int, len(s.d.checks))
	for i, row := range s.d.checks {
		result[i] = append([]int(nil), row...)
	}
	return result
}

func (s *Structure) Encode(msg, parity []uint8) {
	d := s.d
	copy(parity, msg[:d.msgSize])
	gap := parity[d.msgSize : d.msgSize+d.gapSize]
	for r, row := range d.dc {
		gap[r] = xor(msg, row)
	}
	tri := parity[d.msgSize+d.gapSize:]
	for r := range tri {
		tri[r] = xor(msg, d.a[r]) ^ xor(gap, d.b[r])
	}
	for i, below := range d.tt {
		if tri[i] == 1 {
			for _, r := range below {
				tri[r] ^= 1
			}
		}
	}
}

func xor(bits []uint8, indices []int) uint8 {
	var v uint8
	for _, i := range indices {
		v ^= bits[i]
	}
	return v & 1
}

// Check returns true if every check has even parity.
func (s *Structure) Check(parity []uint8) bool {
	for _, row := range s.d.checks {
		if xor(parity, row) != 0 {
			return false
		}
	}
	return true
}

// Puncturing creates the permutation selecting the transmitted bits.
func (s *Structure) Puncturing(options PunctureOptions) (*permutation.Permutation, error) {
	keep := make([]bool, s.ParitySize())
	for i := range keep {
		if i < s.d.msgSize {
			keep[i] = maskAt(options.SystMask, i)
		} else {
			keep[i] = maskAt(options.BitMask, i-s.d.msgSize)
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

// degrees lists the distinct check degrees.
func (s *Structure) degrees() []int {
	var result []int
	for _, row := range s.d.checks {
		if !slices.Contains(result, len(row)) {
			result = append(result, len(row))
		}
	}
	slices.Sort(result)
	return result
}

type structureJSON struct {
	H             mat.SparseMat     `json:"h"`
	Iterations    int               `json:"iterations"`
	Algorithm     string            `json:"algorithm"`
	ScalingFactor map[int][]float64 `json:"scalingFactor"`
}

// for unmarshalling, sparsemat only decodes into the concrete CSR type
type structureCSR struct {
	H             mat.CSRMatrix     `json:"h"`
	Iterations    int               `json:"iterations"`
	Algorithm     string            `json:"algorithm"`
	ScalingFactor map[int][]float64 `json:"scalingFactor"`
}

func (s *Structure) MarshalJSON() ([]byte, error) {
	return json.Marshal(structureJSON{
		H:             mat.CSRMatCopy(s.h),
		Iterations:    s.decoder.Iterations,
		Algorithm:     s.decoder.Algorithm.String(),
		ScalingFactor: s.decoder.ScalingFactor,
	})
}

func (s *Structure) UnmarshalJSON(bytes []byte) error {
	var sj structureCSR
	if err := json.Unmarshal(bytes, &sj); err != nil {
		return err
	}
	algorithm, err := logsum.Parse(sj.Algorithm)
	if err != nil {
		return err
	}
	tmp, err := New(EncoderOptions{H: &sj.H}, DecoderOptions{
		Iterations:    sj.Iterations,
		Algorithm:     algorithm,
		ScalingFactor: sj.ScalingFactor,
	})
	if err != nil {
		return err
	}
	*s = *tmp
	return nil
}
