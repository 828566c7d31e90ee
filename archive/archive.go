// Package archive saves and loads fully constructed codecs. The payload is a
// zstd compressed JSON document tagged with the code family.
package archive

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/convolutional"
	"github.com/nathanhack/fec/ldpc"
	"github.com/nathanhack/fec/turbo"
	"github.com/sirupsen/logrus"
)

type envelope struct {
	Family        codec.Family    `json:"family"`
	WorkGroupSize int             `json:"workGroupSize"`
	Structure     json.RawMessage `json:"structure"`
}

func Save(c *codec.Codec) ([]byte, error) {
	structure, err := json.Marshal(c.Structure())
	if err != nil {
		return nil, err
	}
	bytes, err := json.Marshal(envelope{
		Family:        c.Structure().Family(),
		WorkGroupSize: c.WorkGroupSize(),
		Structure:     structure,
	})
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	compressed := enc.EncodeAll(bytes, nil)
	logrus.Debugf("saved %v codec: %v bytes (%v uncompressed)", c.Structure().Family(), len(compressed), len(bytes))
	return compressed, nil
}

func Load(data []byte) (*codec.Codec, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	bytes, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing codec: %w", err)
	}

	var e envelope
	if err := json.Unmarshal(bytes, &e); err != nil {
		return nil, err
	}

	var structure codec.Structure
	switch e.Family {
	case codec.Convolutional:
		var s convolutional.Structure
		err = json.Unmarshal(e.Structure, &s)
		structure = &s
	case codec.Ldpc:
		var s ldpc.Structure
		err = json.Unmarshal(e.Structure, &s)
		structure = &s
	case codec.Turbo:
		var s turbo.Structure
		err = json.Unmarshal(e.Structure, &s)
		structure = &s
	default:
		return nil, fmt.Errorf("%w: unknown family %q", codec.ErrInvalidConfiguration, e.Family)
	}
	if err != nil {
		return nil, err
	}
	return codec.New(structure, e.WorkGroupSize), nil
}

func SaveFile(path string, c *codec.Codec) error {
	bytes, err := Save(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0644)
}

func LoadFile(path string) (*codec.Codec, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(bytes)
}
