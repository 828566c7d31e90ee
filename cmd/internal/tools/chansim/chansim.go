package chansim

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/nathanhack/fec/archive"
	"github.com/nathanhack/fec/benchmarking"
	"github.com/nathanhack/fec/cmd/internal/tools"
	"github.com/nathanhack/fec/codec"
	"github.com/nathanhack/fec/modulation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	Trials     uint
	EbN0       []float64
	Threads    uint
	Modulation string
	Seed       int64
	Metrics    string
)

var ChansimRun = func(cmd *cobra.Command, args []string) {
	if len(args) != 2 {
		fmt.Println("requires both CODEC_FILE RESULT_JSON")
		return
	}

	//first get the codec to use
	bs, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	c, err := archive.Load(bs)
	if err != nil {
		fmt.Println(err)
		return
	}
	m, err := ByName(Modulation)
	if err != nil {
		fmt.Println(err)
		return
	}

	//next we see if the RESULT_JSON exists if so we load it and validate we're running it against the right thing
	data, err := tools.LoadResults(args[1])
	if err != nil {
		fmt.Println(err)
		return
	}
	if data == nil {
		data = &tools.SimulationStats{
			TypeInfo:  typeInfo(),
			CodecInfo: tools.Md5Sum(bs),
			Stats:     make(map[float64]benchmarking.Stats),
		}
	}
	if data.TypeInfo != typeInfo() {
		fmt.Printf("results loaded do not match the same type expected %v but found %v\n", typeInfo(), data.TypeInfo)
		return
	}
	if data.CodecInfo != tools.Md5Sum(bs) {
		fmt.Println("results loaded do not match the codec")
		return
	}

	var reg *prometheus.Registry
	if Metrics != "" {
		reg = prometheus.NewRegistry()
		c.SetMetrics(codec.NewMetrics(reg))
	}

	err = Run(tools.SignalContext(), data, c, m, args[1])
	if err != nil {
		fmt.Println(err)
	}

	err = tools.SaveResults(args[1], data)
	if err != nil {
		fmt.Println(err)
	}
	if reg != nil {
		if err := prometheus.WriteToTextfile(Metrics, reg); err != nil {
			fmt.Println(err)
		}
	}
}

func typeInfo() string {
	return fmt.Sprintf("AWGN:%v", Modulation)
}

// ByName returns bpsk, qpsk or pam4.
func ByName(name string) (*modulation.Modulation, error) {
	switch name {
	case "bpsk":
		return modulation.BPSK(), nil
	case "qpsk":
		return modulation.QPSK(), nil
	case "pam4":
		return modulation.PAM4(), nil
	}
	return nil, fmt.Errorf("unknown modulation %q", name)
}

// Run adds trials to data for every E_b/N_0 until each reaches Trials, saving
// checkpoints to outputFilename along the way.
func Run(ctx context.Context, data *tools.SimulationStats, c *codec.Codec, m *modulation.Modulation, outputFilename string) error {
	checkpointMux := sync.Mutex{}
	checkpointCount := 0

	numberOfThread := int(Threads)
	if numberOfThread == 0 {
		numberOfThread = runtime.NumCPU()
	}

	trialsPerIter := numberOfThread * 10
	bar := pb.StartNew(int(Trials) * len(EbN0))
	defer bar.Finish()
trialLoops:
	for t := trialsPerIter; ; t += trialsPerIter {
		select {
		case <-ctx.Done():
			break trialLoops
		default:
		}
		if t > int(Trials) {
			t = int(Trials)
		}

		for _, ebN0 := range EbN0 {
			checkpoint := func(stats benchmarking.Stats) {
				checkpointMux.Lock()
				defer checkpointMux.Unlock()

				if checkpointCount%trialsPerIter == 0 {
					data.Stats[ebN0] = stats
					if err := tools.SaveResults(outputFilename, data); err != nil {
						fmt.Println(err)
					}
				}
				checkpointCount++
			}
			previous := data.Stats[ebN0]
			stats, err := benchmarking.BenchmarkContinueStats(ctx, t, numberOfThread, benchmarking.AWGN(c, m, ebN0, Seed), checkpoint, previous, false)
			data.Stats[ebN0] = stats
			if err != nil {
				return err
			}
			bar.Add(stats.BlockError.Count - previous.BlockError.Count)
		}
		if t == int(Trials) {
			break
		}
	}

	for _, ebN0 := range EbN0 {
		logrus.Infof("Eb/N0 %v dB: %v", ebN0, data.Stats[ebN0])
	}
	return nil
}
