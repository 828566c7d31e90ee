package dvbs2

import (
	"fmt"
	"strings"

	"github.com/nathanhack/fec/cmd/internal/config"
	"github.com/nathanhack/fec/cmd/internal/tools"
	"github.com/nathanhack/fec/ldpc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	Codeword uint
	Rate     string
	Seed     int64
	Threads  uint
)

var DvbS2Run = func(cmd *cobra.Command, args []string) {
	h, err := ldpc.DvbS2(int(Codeword), Rate, Seed)
	if err != nil {
		fmt.Printf("Unable to create DVB-S2 LDPC: %v (rates for %v: %v)\n", err, Codeword, strings.Join(ldpc.DvbS2Rates(int(Codeword)), ", "))
		return
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("girth %v", ldpc.Girth(tools.SignalContext(), h, int(Threads)))
	}

	err = config.SaveMatrix(args[0], h)
	if err != nil {
		fmt.Println("unable to write file: ", err)
	}
}
