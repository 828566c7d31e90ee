package codec

import (
	"fmt"

	"github.com/nathanhack/fec/archive"
	"github.com/nathanhack/fec/cmd/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var CodecRun = func(cmd *cobra.Command, args []string) {
	c, err := config.Load(args[0])
	if err != nil {
		fmt.Println("Unable to create codec: ", err)
		return
	}
	logrus.Infof("%v codec: msg %v, syst %v, parity %v, state %v", c.Structure().Family(), c.MsgSize(), c.SystSize(), c.ParitySize(), c.StateSize())

	err = archive.SaveFile(args[1], c)
	if err != nil {
		fmt.Println("unable to write file: ", err)
	}
}
