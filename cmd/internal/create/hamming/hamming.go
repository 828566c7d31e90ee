package hamming

import (
	"fmt"

	"github.com/nathanhack/fec/cmd/internal/config"
	"github.com/nathanhack/fec/ldpc"
	"github.com/spf13/cobra"
)

var (
	ParityBits uint
)

var HammingRun = func(cmd *cobra.Command, args []string) {
	h, err := ldpc.Hamming(int(ParityBits))
	if err != nil {
		fmt.Println("Unable to create hamming code: ", err)
		return
	}

	err = config.SaveMatrix(args[0], h)
	if err != nil {
		fmt.Println("unable to write file: ", err)
	}
}
