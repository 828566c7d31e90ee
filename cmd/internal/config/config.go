// Package config builds codecs from YAML descriptions.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/convolutional"
	"github.com/nathanhack/fec/internal/logsum"
	"github.com/nathanhack/fec/ldpc"
	"github.com/nathanhack/fec/permutation"
	"github.com/nathanhack/fec/trellis"
	"github.com/nathanhack/fec/turbo"
	mat "github.com/nathanhack/sparsemat"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Family        codec.Family         `yaml:"family"`
	WorkGroupSize int                  `yaml:"workGroupSize"`
	Convolutional *ConvolutionalConfig `yaml:"convolutional"`
	Ldpc          *LdpcConfig          `yaml:"ldpc"`
	Turbo         *TurboConfig         `yaml:"turbo"`
}

// TrellisConfig describes a trellis with octal generator polynomials.
type TrellisConfig struct {
	ConstraintLengths []int      `yaml:"constraintLengths"`
	Generator         [][]string `yaml:"generator"`
	Feedback          []string   `yaml:"feedback"`
}

type ConvolutionalConfig struct {
	Trellis       TrellisConfig `yaml:"trellis"`
	Length        int           `yaml:"length"`
	Termination   string        `yaml:"termination"`
	Algorithm     string        `yaml:"algorithm"`
	ScalingFactor float64       `yaml:"scalingFactor"`
}

// LdpcConfig takes the parity check matrix from exactly one of a JSON file
// (relative paths start at the YAML file) or a generator.
type LdpcConfig struct {
	H             string            `yaml:"h"`
	Gallager      *GallagerConfig   `yaml:"gallager"`
	DvbS2         *DvbS2Config      `yaml:"dvbs2"`
	Hamming       *HammingConfig    `yaml:"hamming"`
	Iterations    int               `yaml:"iterations"`
	Algorithm     string            `yaml:"algorithm"`
	ScalingFactor map[int][]float64 `yaml:"scalingFactor"`
}

type GallagerConfig struct {
	N    int   `yaml:"n"`
	Wc   int   `yaml:"wc"`
	Wr   int   `yaml:"wr"`
	Seed int64 `yaml:"seed"`
}

type DvbS2Config struct {
	N    int    `yaml:"n"`
	Rate string `yaml:"rate"`
	Seed int64  `yaml:"seed"`
}

type HammingConfig struct {
	ParityBits int `yaml:"parityBits"`
}

// InterleaverConfig is the identity unless Random or Sequence is set.
type InterleaverConfig struct {
	Random   *int64 `yaml:"random"`
	Sequence []int  `yaml:"sequence"`
}

type TurboConfig struct {
	Length        int                 `yaml:"length"`
	Trellis       []TrellisConfig     `yaml:"trellis"`
	Interleaver   []InterleaverConfig `yaml:"interleaver"`
	Termination   []string            `yaml:"termination"`
	Iterations    int                 `yaml:"iterations"`
	Scheduling    string              `yaml:"scheduling"`
	Algorithm     string              `yaml:"algorithm"`
	ScalingFactor float64             `yaml:"scalingFactor"`
}

// Load reads a YAML codec description.
func Load(filename string) (*codec.Codec, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, filepath.Dir(filename))
}

// Parse builds the codec described by data, dir resolves relative matrix files.
func Parse(data []byte, dir string) (*codec.Codec, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config.Build(dir)
}

func (c Config) Build(dir string) (*codec.Codec, error) {
	var structure codec.Structure
	var err error
	switch c.Family {
	case codec.Convolutional:
		if c.Convolutional == nil {
			return nil, fmt.Errorf("missing convolutional section")
		}
		structure, err = c.Convolutional.build()
	case codec.Ldpc:
		if c.Ldpc == nil {
			return nil, fmt.Errorf("missing ldpc section")
		}
		structure, err = c.Ldpc.build(dir)
	case codec.Turbo:
		if c.Turbo == nil {
			return nil, fmt.Errorf("missing turbo section")
		}
		structure, err = c.Turbo.build()
	default:
		return nil, fmt.Errorf("unknown family %q", c.Family)
	}
	if err != nil {
		return nil, err
	}
	return codec.New(structure, c.WorkGroupSize), nil
}

func (t TrellisConfig) build() (*trellis.Trellis, error) {
	generator := make([][]trellis.BitField, len(t.Generator))
	for i, g := range t.Generator {
		var err error
		if generator[i], err = trellis.ParseOctal(g...); err != nil {
			return nil, err
		}
	}
	feedback, err := trellis.ParseOctal(t.Feedback...)
	if err != nil {
		return nil, err
	}
	return trellis.New(t.ConstraintLengths, generator, feedback)
}

// algorithm parses name, empty keeps def.
func algorithm(name string, def logsum.Algorithm) (logsum.Algorithm, error) {
	if name == "" {
		return def, nil
	}
	return logsum.Parse(name)
}

func (c ConvolutionalConfig) build() (codec.Structure, error) {
	t, err := c.Trellis.build()
	if err != nil {
		return nil, err
	}
	termination := convolutional.Tail
	if c.Termination != "" {
		if termination, err = convolutional.ParseTermination(c.Termination); err != nil {
			return nil, err
		}
	}
	decoder := convolutional.DefaultDecoderOptions()
	if decoder.Algorithm, err = algorithm(c.Algorithm, decoder.Algorithm); err != nil {
		return nil, err
	}
	if c.ScalingFactor != 0 {
		decoder.ScalingFactor = c.ScalingFactor
	}
	return convolutional.New(convolutional.EncoderOptions{Trellis: t, Length: c.Length, Termination: termination}, decoder)
}

func (c LdpcConfig) build(dir string) (codec.Structure, error) {
	var h mat.SparseMat
	var err error
	sources := 0
	if c.H != "" {
		sources++
		h, err = LoadMatrix(resolve(dir, c.H))
	}
	if c.Gallager != nil {
		sources++
		h, err = ldpc.Gallager(c.Gallager.N, c.Gallager.Wc, c.Gallager.Wr, c.Gallager.Seed)
	}
	if c.DvbS2 != nil {
		sources++
		h, err = ldpc.DvbS2(c.DvbS2.N, c.DvbS2.Rate, c.DvbS2.Seed)
	}
	if c.Hamming != nil {
		sources++
		h, err = ldpc.Hamming(c.Hamming.ParityBits)
	}
	if sources != 1 {
		return nil, fmt.Errorf("ldpc needs exactly one of h, gallager, dvbs2 or hamming, found %v", sources)
	}
	if err != nil {
		return nil, err
	}

	decoder := ldpc.DefaultDecoderOptions()
	if c.Iterations != 0 {
		decoder.Iterations = c.Iterations
	}
	if decoder.Algorithm, err = algorithm(c.Algorithm, decoder.Algorithm); err != nil {
		return nil, err
	}
	if len(c.ScalingFactor) != 0 {
		decoder.ScalingFactor = c.ScalingFactor
	}
	return ldpc.New(ldpc.EncoderOptions{H: h}, decoder)
}

func (c TurboConfig) build() (codec.Structure, error) {
	if c.Length <= 0 {
		return nil, fmt.Errorf("invalid turbo length %v", c.Length)
	}
	var encoder turbo.EncoderOptions
	for _, tc := range c.Trellis {
		t, err := tc.build()
		if err != nil {
			return nil, err
		}
		encoder.Trellis = append(encoder.Trellis, t)
	}
	for i, ic := range c.Interleaver {
		switch {
		case ic.Random != nil && ic.Sequence != nil:
			return nil, fmt.Errorf("interleaver %v sets both random and sequence", i)
		case ic.Random != nil:
			encoder.Interleaver = append(encoder.Interleaver, permutation.Random(c.Length, *ic.Random))
		case ic.Sequence != nil:
			p, err := permutation.NewSized(ic.Sequence, c.Length)
			if err != nil {
				return nil, err
			}
			encoder.Interleaver = append(encoder.Interleaver, p)
		default:
			encoder.Interleaver = append(encoder.Interleaver, permutation.Identity(c.Length))
		}
	}
	for _, name := range c.Termination {
		t, err := convolutional.ParseTermination(name)
		if err != nil {
			return nil, err
		}
		encoder.Termination = append(encoder.Termination, t)
	}

	var err error
	decoder := turbo.DefaultDecoderOptions()
	if c.Iterations != 0 {
		decoder.Iterations = c.Iterations
	}
	if c.Scheduling != "" {
		if decoder.Scheduling, err = turbo.ParseScheduling(c.Scheduling); err != nil {
			return nil, err
		}
	}
	if decoder.Algorithm, err = algorithm(c.Algorithm, decoder.Algorithm); err != nil {
		return nil, err
	}
	if c.ScalingFactor != 0 {
		decoder.ScalingFactor = c.ScalingFactor
	}
	return turbo.New(encoder, decoder)
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

// LoadMatrix reads a parity check matrix saved as sparsemat JSON.
func LoadMatrix(filename string) (mat.SparseMat, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error while reading file %v: %w", filename, err)
	}
	var h mat.CSRMatrix
	if err := json.Unmarshal(bs, &h); err != nil {
		return nil, fmt.Errorf("error while reading file %v: %w", filename, err)
	}
	return &h, nil
}

// SaveMatrix writes h as sparsemat JSON.
func SaveMatrix(filename string, h mat.SparseMat) error {
	bs, err := json.Marshal(mat.CSRMatCopy(h))
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bs, 0644)
}
