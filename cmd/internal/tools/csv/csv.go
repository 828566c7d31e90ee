package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathanhack/fec/benchmarking"
	"github.com/nathanhack/fec/cmd/internal/tools"
	"github.com/spf13/cobra"
)

var OutputFile string
var ChannelError bool
var BlockError bool

var CSVRun = func(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		fmt.Println("requires at least one RESULTS_JSON")
		return
	}

	stats := make([]*tools.SimulationStats, len(args))
	var err error
	for i, resultFile := range args {
		stats[i], err = tools.LoadResults(resultFile)
		if err != nil {
			fmt.Println(err)
			return
		}
		if stats[i] == nil {
			fmt.Printf("missing results file %v\n", resultFile)
			return
		}
	}

	f, err := os.Create(OutputFile)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer f.Close()

	err = Write(f, args, stats)
	if err != nil {
		fmt.Println(err)
	}
}

// Write writes one row per results file and one column per E_b/N_0.
func Write(f io.Writer, names []string, stats []*tools.SimulationStats) error {
	w := csv.NewWriter(f)
	defer w.Flush()

	ebN0s := make(map[float64]bool)
	for _, s := range stats {
		for p := range s.Stats {
			ebN0s[p] = true
		}
	}

	//first write headers
	ebN0List := make([]float64, 0, len(ebN0s))
	for p := range ebN0s {
		ebN0List = append(ebN0List, p)
	}
	sort.Float64s(ebN0List)

	header := []string{"Results File"}
	for _, p := range ebN0List {
		header = append(header, fmt.Sprintf("%v", p))
	}

	err := w.Write(header)
	if err != nil {
		return err
	}

	for i, s := range stats {
		record := make([]string, len(header))
		record[0] = strings.TrimSuffix(names[i], filepath.Ext(names[i]))

		for i, p := range ebN0List {
			v, has := s.Stats[p]
			if has {
				record[i+1] = fmt.Sprintf("%v", Value(v))
			}
		}

		err = w.Write(record)
		if err != nil {
			return err
		}
	}
	return nil
}

// Value selects the error rate requested by the flags, the message bit error rate by default.
func Value(v benchmarking.Stats) float64 {
	switch {
	case ChannelError:
		return v.ChannelBitError.Mean
	case BlockError:
		return v.BlockError.Mean
	default:
		return v.MessageBitError.Mean
	}
}
