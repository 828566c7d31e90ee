package codec

// Family tags the concrete code family of a Structure.
type Family string

const (
	Convolutional Family = "convolutional"
	Ldpc          Family = "ldpc"
	Turbo         Family = "turbo"
)

// Structure is the fixed parameterization of a code. It is shared read-only
// between workers, only its decoder options may change between calls.
type Structure interface {
	Family() Family

	// MsgSize is the number of message bits per block.
	MsgSize() int
	// SystSize is the number of systematic LLRs per block (message plus systematic tail).
	SystSize() int
	// ParitySize is the number of coded bits per block.
	ParitySize() int
	// StateSize is the number of decoder state LLRs carried between decoding phases.
	StateSize() int

	// Encode writes the coded bits of one block msg into parity.
	Encode(msg, parity []uint8)
	// Check returns true if parity is a valid codeword.
	Check(parity []uint8) bool

	// NewDecoder creates a worker owning its private buffers.
	NewDecoder() Decoder
}

// Decoder decodes one block at a time. A Decoder is not safe for concurrent use.
type Decoder interface {
	// Decode writes the hard decision of the message into msg.
	Decode(parity []float64, msg []uint8)
	// SoDecode fills every non-nil field of out. in.Syst and in.State are never nil.
	SoDecode(in Input, out Output)
}

// Input holds the soft inputs of soDecode. Nil fields are absent, absent syst and
// state are equivalent to zero vectors.
type Input struct {
	Parity []float64
	Syst   []float64
	State  []float64
}

// Output holds the soft outputs of soDecode. Fields not requested are nil.
type Output struct {
	Msg    []float64
	Syst   []float64
	Parity []float64
	State  []float64
}

// Field selects soDecode outputs.
type Field uint8

const (
	Msg Field = 1 << iota
	Syst
	Parity
	State

	All = Msg | Syst | Parity | State
)

func (f Field) Has(other Field) bool {
	return f&other != 0
}
