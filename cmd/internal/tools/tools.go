package tools

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nathanhack/fec/benchmarking"
)

// SimulationStats holds the results of a channel simulation keyed by E_b/N_0 in dB.
type SimulationStats struct {
	TypeInfo  string
	CodecInfo string
	Stats     map[float64]benchmarking.Stats
}
type simulationStats struct {
	TypeInfo  string
	CodecInfo string
	Stats     map[string]benchmarking.Stats
}

func (s *SimulationStats) MarshalJSON() ([]byte, error) {
	ss := simulationStats{
		TypeInfo:  s.TypeInfo,
		CodecInfo: s.CodecInfo,
		Stats:     map[string]benchmarking.Stats{},
	}

	for f, stat := range s.Stats {
		ss.Stats[fmt.Sprintf("%v", f)] = stat
	}

	return json.Marshal(ss)
}

func (s *SimulationStats) UnmarshalJSON(bytes []byte) error {
	var ss simulationStats

	err := json.Unmarshal(bytes, &ss)
	if err != nil {
		return err
	}

	s.TypeInfo = ss.TypeInfo
	s.CodecInfo = ss.CodecInfo
	s.Stats = map[float64]benchmarking.Stats{}

	for fs, stat := range ss.Stats {
		f, err := strconv.ParseFloat(fs, 64)
		if err != nil {
			return err
		}
		s.Stats[f] = stat
	}
	return nil
}

// Md5Sum identifies a saved codec.
func Md5Sum(archive []byte) string {
	return fmt.Sprintf("%x", md5.Sum(archive))
}

// LoadResults returns nil without error when filepath does not exist yet.
func LoadResults(filepath string) (*SimulationStats, error) {
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return nil, nil
	}

	bs, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error while reading file %v: %w", filepath, err)
	}

	var stat SimulationStats
	err = json.Unmarshal(bs, &stat)
	if err != nil {
		return nil, fmt.Errorf("error while unmarshalling file %v: %w", filepath, err)
	}
	return &stat, nil
}

func SaveResults(filepath string, data *SimulationStats) error {
	bs, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error serializing results: %w", err)
	}

	err = os.WriteFile(filepath, bs, 0644)
	if err != nil {
		return fmt.Errorf("error while saving results to %v: %w", filepath, err)
	}
	return nil
}

// SignalContext is canceled on SIGINT or SIGTERM.
func SignalContext() context.Context {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-sigs
		fmt.Println()
		fmt.Println(sig)
		cancel()
	}()
	return ctx
}
