package convolutional

import "github.com/nathanhack/fec/codec"

type decoder struct {
	viterbi *viterbi
	bcjr    *MapDecoder
}

func newDecoder(s *Structure) *decoder {
	return &decoder{viterbi: newViterbi(s), bcjr: NewMapDecoder(s)}
}

func (d *decoder) Decode(parity []float64, msg []uint8) {
	d.viterbi.decode(parity, msg)
}

func (d *decoder) SoDecode(in codec.Input, out codec.Output) {
	d.bcjr.SoDecode(in.Parity, in.Syst, out.Msg, out.Syst, out.Parity)
}
