package benchmarking

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/nathanhack/avgstd"
	"github.com/nathanhack/threadpool"
)

type Stats struct {
	ChannelBitError avgstd.AvgStd // probability of a bit error in the hard decision of the received codeword
	MessageBitError avgstd.AvgStd // probability of a bit error in the decoded message
	BlockError      avgstd.AvgStd // probability of a decoded message with at least one error
}

func (s Stats) String() string {
	return fmt.Sprintf("{Channel:%0.02f(+/-%0.02f), Message:%0.02f(+/-%0.02f), Block:%0.02f(+/-%0.02f)}",
		s.ChannelBitError.Mean, math.Sqrt(s.ChannelBitError.SampledVariance()),
		s.MessageBitError.Mean, math.Sqrt(s.MessageBitError.SampledVariance()),
		s.BlockError.Mean, math.Sqrt(s.BlockError.SampledVariance()),
	)
}

// Metrics are the error rates of a single trial.
type Metrics struct {
	ChannelBitError float64
	MessageBitError float64
	BlockError      float64
}

type Checkpoints func(updatedStats Stats)

// Trial runs trial number i end to end: message, encoding, channel and decoding.
type Trial func(i int) (Metrics, error)

func Benchmark(ctx context.Context, trials, threads int, trial Trial, checkpoints Checkpoints, showProgress bool) (Stats, error) {
	return BenchmarkContinueStats(ctx, trials, threads, trial, checkpoints, Stats{}, showProgress)
}

// BenchmarkContinueStats runs the trials previousStats has not counted yet.
// The first trial error stops the accumulation and is returned with the stats
// gathered so far.
func BenchmarkContinueStats(ctx context.Context,
	trials, threads int,
	trial Trial,
	checkpoints Checkpoints,
	previousStats Stats,
	showProgress bool) (Stats, error) {
	trialsToRun := trials - previousStats.BlockError.Count
	if trialsToRun <= 0 {
		return previousStats, nil
	}

	var bar *pb.ProgressBar
	if showProgress {
		bar = pb.StartNew(trialsToRun)
	}

	pool := threadpool.NewFixedSize(ctx, threads, trialsToRun)
	statsMux := sync.Mutex{}
	var firstErr error

	run := func(i int) {
		if showProgress {
			bar.Increment()
		}
		metrics, err := trial(i)

		statsMux.Lock()
		defer statsMux.Unlock()
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = fmt.Errorf("trial %v: %w", i, err)
			return
		}
		previousStats.ChannelBitError.Update(metrics.ChannelBitError)
		previousStats.MessageBitError.Update(metrics.MessageBitError)
		previousStats.BlockError.Update(metrics.BlockError)
		if checkpoints != nil {
			checkpoints(previousStats)
		}
	}

	for i := previousStats.BlockError.Count; i < trials; i++ {
		tmp := i
		pool.Add(func() { run(tmp) })
	}
	pool.Wait()
	if showProgress {
		bar.Finish()
	}
	return previousStats, firstErr
}

// HammingDistance counts the positions where a and b differ. If a and b are
// different sizes the extra positions count as differences.
func HammingDistance(a, b []uint8) int {
	min, max := len(a), len(b)
	if min > max {
		min, max = max, min
	}
	count := 0
	for i := 0; i < min; i++ {
		if a[i] != b[i] {
			count++
		}
	}
	return max - min + count
}

// HardDecision maps positive LLRs to 1.
func HardDecision(llr []float64) []uint8 {
	bits := make([]uint8, len(llr))
	for i, l := range llr {
		if l > 0 {
			bits[i] = 1
		}
	}
	return bits
}
