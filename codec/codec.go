package codec

import (
	"context"
	"fmt"
	"time"

	"github.com/nathanhack/threadpool"
	"github.com/sirupsen/logrus"
)

// DefaultWorkGroupSize is used when a codec is created with a non positive worker count.
const DefaultWorkGroupSize = 8

// Codec validates batches of blocks and spreads them over a fixed group of workers.
// Every block is processed independently so the result for a block never depends
// on the rest of the batch.
type Codec struct {
	structure     Structure
	workGroupSize int
	metrics       *Metrics
}

func New(structure Structure, workGroupSize int) *Codec {
	c := &Codec{structure: structure}
	c.SetWorkGroupSize(workGroupSize)
	return c
}

func (c *Codec) Structure() Structure { return c.structure }
func (c *Codec) WorkGroupSize() int   { return c.workGroupSize }

func (c *Codec) SetWorkGroupSize(workGroupSize int) {
	if workGroupSize <= 0 {
		workGroupSize = DefaultWorkGroupSize
	}
	c.workGroupSize = workGroupSize
}

// SetMetrics enables instrumentation, nil disables it.
func (c *Codec) SetMetrics(m *Metrics) { c.metrics = m }

func (c *Codec) MsgSize() int    { return c.structure.MsgSize() }
func (c *Codec) SystSize() int   { return c.structure.SystSize() }
func (c *Codec) ParitySize() int { return c.structure.ParitySize() }
func (c *Codec) StateSize() int  { return c.structure.StateSize() }

// Encode encodes every block of msg, returning n*ParitySize bits.
func (c *Codec) Encode(msg []uint8) ([]uint8, error) {
	msgSize, paritySize := c.structure.MsgSize(), c.structure.ParitySize()
	n, err := blockCount("msg", len(msg), msgSize)
	if err != nil {
		c.metrics.fail(c.structure.Family(), "encode")
		return nil, err
	}
	start := time.Now()
	parity := make([]uint8, n*paritySize)
	c.run(n, func(first, last int) {
		for i := first; i < last; i++ {
			c.structure.Encode(msg[i*msgSize:(i+1)*msgSize], parity[i*paritySize:(i+1)*paritySize])
		}
	})
	c.metrics.observe(c.structure.Family(), "encode", n, start)
	return parity, nil
}

// Check tests every block of parity for consistency.
func (c *Codec) Check(parity []uint8) ([]bool, error) {
	paritySize := c.structure.ParitySize()
	n, err := blockCount("parity", len(parity), paritySize)
	if err != nil {
		c.metrics.fail(c.structure.Family(), "check")
		return nil, err
	}
	start := time.Now()
	result := make([]bool, n)
	c.run(n, func(first, last int) {
		for i := first; i < last; i++ {
			result[i] = c.structure.Check(parity[i*paritySize : (i+1)*paritySize])
		}
	})
	c.metrics.observe(c.structure.Family(), "check", n, start)
	return result, nil
}

// Decode returns the hard decision of the message of every block of parity LLRs.
func (c *Codec) Decode(parity []float64) ([]uint8, error) {
	msgSize, paritySize := c.structure.MsgSize(), c.structure.ParitySize()
	n, err := blockCount("parity", len(parity), paritySize)
	if err != nil {
		c.metrics.fail(c.structure.Family(), "decode")
		return nil, err
	}
	start := time.Now()
	msg := make([]uint8, n*msgSize)
	c.run(n, func(first, last int) {
		decoder := c.structure.NewDecoder()
		for i := first; i < last; i++ {
			decoder.Decode(parity[i*paritySize:(i+1)*paritySize], msg[i*msgSize:(i+1)*msgSize])
		}
	})
	c.metrics.observe(c.structure.Family(), "decode", n, start)
	return msg, nil
}

// SoDecode computes the requested soft outputs of every block in.
func (c *Codec) SoDecode(in Input, want Field) (Output, error) {
	n, err := c.validate(in)
	if err != nil {
		c.metrics.fail(c.structure.Family(), "soDecode")
		return Output{}, err
	}
	start := time.Now()

	sizes := [4]int{c.structure.MsgSize(), c.structure.SystSize(), c.structure.ParitySize(), c.structure.StateSize()}
	var out Output
	if want.Has(Msg) {
		out.Msg = make([]float64, n*sizes[0])
	}
	if want.Has(Syst) {
		out.Syst = make([]float64, n*sizes[1])
	}
	if want.Has(Parity) {
		out.Parity = make([]float64, n*sizes[2])
	}
	if want.Has(State) {
		out.State = make([]float64, n*sizes[3])
	}

	c.run(n, func(first, last int) {
		decoder := c.structure.NewDecoder()
		zeroSyst := make([]float64, sizes[1])
		zeroState := make([]float64, sizes[3])
		for i := first; i < last; i++ {
			block := Input{
				Parity: in.Parity[i*sizes[2] : (i+1)*sizes[2]],
				Syst:   zeroSyst,
				State:  zeroState,
			}
			if in.Syst != nil {
				block.Syst = in.Syst[i*sizes[1] : (i+1)*sizes[1]]
			}
			if in.State != nil {
				block.State = in.State[i*sizes[3] : (i+1)*sizes[3]]
			}
			decoder.SoDecode(block, Output{
				Msg:    slice(out.Msg, i, sizes[0]),
				Syst:   slice(out.Syst, i, sizes[1]),
				Parity: slice(out.Parity, i, sizes[2]),
				State:  slice(out.State, i, sizes[3]),
			})
		}
	})
	c.metrics.observe(c.structure.Family(), "soDecode", n, start)
	return out, nil
}

func (c *Codec) validate(in Input) (int, error) {
	if in.Parity == nil {
		return 0, ErrMissingParity
	}
	n, err := blockCount("parity", len(in.Parity), c.structure.ParitySize())
	if err != nil {
		return 0, err
	}
	if in.Syst != nil {
		if err := matchBlocks("syst", len(in.Syst), c.structure.SystSize(), n); err != nil {
			return 0, err
		}
	}
	if in.State != nil {
		if err := matchBlocks("state", len(in.State), c.structure.StateSize(), n); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// run splits [0,n) in contiguous ranges, one per worker.
func (c *Codec) run(n int, work func(first, last int)) {
	if n == 0 {
		return
	}
	workers := c.workGroupSize
	if workers > n {
		workers = n
	}
	logrus.Debugf("%v: processing %v blocks with %v workers", c.structure.Family(), n, workers)
	if workers == 1 {
		work(0, n)
		return
	}

	step := (n + workers - 1) / workers
	pool := threadpool.New(context.Background(), workers)
	for first := 0; first < n; first += step {
		last := first + step
		if last > n {
			last = n
		}
		f, l := first, last
		pool.Add(func() { work(f, l) })
	}
	pool.Wait()
}

func blockCount(name string, length, size int) (int, error) {
	if size == 0 {
		if length != 0 {
			return 0, fmt.Errorf("%w: %v has %v elements but the block size is 0", ErrSizeMismatch, name, length)
		}
		return 0, nil
	}
	if length%size != 0 {
		return 0, fmt.Errorf("%w: %v has %v elements, not a multiple of %v", ErrSizeMismatch, name, length, size)
	}
	return length / size, nil
}

func matchBlocks(name string, length, size, n int) error {
	if size == 0 {
		if length != 0 {
			return fmt.Errorf("%w: %v has %v elements but the block size is 0", ErrSizeMismatch, name, length)
		}
		return nil
	}
	if length%size != 0 {
		return fmt.Errorf("%w: %v has %v elements, not a multiple of %v", ErrSizeMismatch, name, length, size)
	}
	if length/size != n {
		return fmt.Errorf("%w: %v holds %v blocks but parity holds %v", ErrSizeMismatch, name, length/size, n)
	}
	return nil
}

func slice(s []float64, i, size int) []float64 {
	if s == nil {
		return nil
	}
	return s[i*size : (i+1)*size]
}
