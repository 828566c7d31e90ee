package gallager

import (
	"fmt"
	"time"

	"github.com/nathanhack/fec/cmd/internal/config"
	"github.com/nathanhack/fec/cmd/internal/tools"
	"github.com/nathanhack/fec/ldpc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Codeword uint
var Wc uint
var Wr uint
var Smallest uint
var Iter uint
var Seed int64
var Threads uint

var GallagerRun = func(cmd *cobra.Command, args []string) {
	ctx := tools.SignalContext()

	seed := Seed
	if seed == 0 {
		//we seed with the time so we get something different every time
		seed = time.Now().UnixNano()
	}

	for i := 0; i < int(Iter); i++ {
		select {
		case <-ctx.Done():
			fmt.Println("search canceled")
			return
		default:
		}

		h, err := ldpc.Gallager(int(Codeword), int(Wc), int(Wr), seed+int64(i))
		if err != nil {
			fmt.Println("Unable to create gallager LDPC: ", err)
			return
		}

		// any cycle shorter than Smallest rejects the matrix, tanner graphs have no cycle shorter than 4
		if Smallest > 4 {
			if short := ldpc.GirthAtMost(ctx, h, int(Smallest)-2, int(Threads)); short > 0 {
				logrus.Debugf("seed %v has a cycle of length %v", seed+int64(i), short)
				continue
			}
		}
		girth := ldpc.Girth(ctx, h, int(Threads))
		logrus.Infof("seed %v: girth %v", seed+int64(i), girth)

		if err := config.SaveMatrix(args[0], h); err != nil {
			fmt.Println("unable to write file: ", err)
		}
		return
	}
	fmt.Println("Unable to create gallager LDPC try again")
}
