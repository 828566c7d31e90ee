package cmd

import (
	"github.com/nathanhack/fec/cmd/internal/create/codec"
	"github.com/nathanhack/fec/cmd/internal/create/dvbs2"
	"github.com/nathanhack/fec/cmd/internal/create/gallager"
	"github.com/nathanhack/fec/cmd/internal/create/hamming"
	"github.com/nathanhack/fec/ldpc"

	"github.com/spf13/cobra"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"c"},
	Short:   "used to create parity check matrices and codecs",
	Long:    `create makes parity check matrices from the built-in generators and codecs from YAML descriptions, saving them so they can be used later by the tools.`,
}

// createldpcCmd represents the ldpc command
var createldpcCmd = &cobra.Command{
	Use:     "ldpc",
	Aliases: []string{"l"},
	Short:   "creates LDPC parity check matrices",
	Long:    `Creates the parity check matrices of Low Density Parity Check (LDPC) codes.`,
}

// createGallagerCmd represents the gallager command
var createGallagerCmd = &cobra.Command{
	Use:     "gallager OUTPUT_H_JSON",
	Aliases: []string{"g"},
	Short:   "Creates a new Gallager parity check matrix",
	Long:    `Creates a new Gallager parity check matrix. Note a small cycle has a negative effect on the effectiveness of the LDPC.`,
	Args:    cobra.ExactArgs(1),
	Run:     gallager.GallagerRun,
}

// createDvbS2Cmd represents the dvbs2 command
var createDvbS2Cmd = &cobra.Command{
	Use:   "dvbs2 OUTPUT_H_JSON",
	Short: "Creates a DVB-S2 like parity check matrix",
	Long:  `Creates a parity check matrix with the frame size, degree profile and accumulator of a DVB-S2 rate.`,
	Args:  cobra.ExactArgs(1),
	Run:   dvbs2.DvbS2Run,
}

// createHammingCmd represents the Hamming command
var createHammingCmd = &cobra.Command{
	Use:     "hamming OUTPUT_H_JSON",
	Aliases: []string{"h", "ham"},
	Short:   "Creates a Hamming code parity check matrix",
	Long:    `Creates a Hamming code parity check matrix.`,
	Args:    cobra.ExactArgs(1),
	Run:     hamming.HammingRun,
}

// createCodecCmd represents the codec command
var createCodecCmd = &cobra.Command{
	Use:   "codec CONFIG_YAML OUTPUT_CODEC",
	Short: "Creates a codec from a YAML description",
	Long:  `Creates a convolutional, LDPC or turbo codec from a YAML description and saves it as a compressed archive.`,
	Args:  cobra.ExactArgs(2),
	Run:   codec.CodecRun,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.AddCommand(createldpcCmd)
	createCmd.AddCommand(createCodecCmd)

	createldpcCmd.AddCommand(createGallagerCmd)
	createGallagerCmd.Flags().UintVarP(&gallager.Codeword, "codeword", "n", 1000, "the number of bits in the codeword (a multiple of the row weight)")
	createGallagerCmd.Flags().UintVarP(&gallager.Wc, "column", "c", 3, "the column weight (number of ones in the H matrix column) (>=2)")
	createGallagerCmd.Flags().UintVarP(&gallager.Wr, "row", "r", 4, "the row weight (number of ones in the H matrix row) (column < row)")
	createGallagerCmd.Flags().UintVarP(&gallager.Smallest, "smallest", "s", 4, "the smallest allowed cycle: 4, 6, 8...")
	createGallagerCmd.Flags().UintVarP(&gallager.Iter, "iter", "i", 10000, "the number of seeds to try before terminating the search")
	createGallagerCmd.Flags().Int64Var(&gallager.Seed, "seed", 0, "the first seed to try; note 0 means use the time")
	createGallagerCmd.Flags().UintVarP(&gallager.Threads, "threads", "t", 0, "the number of threads to use; note 0 means use the number of cpus")

	createldpcCmd.AddCommand(createDvbS2Cmd)
	createDvbS2Cmd.Flags().UintVarP(&dvbs2.Codeword, "codeword", "n", ldpc.DvbS2Short, "the frame size: 16200 or 64800")
	createDvbS2Cmd.Flags().StringVarP(&dvbs2.Rate, "rate", "r", "1/2", "the code rate")
	createDvbS2Cmd.Flags().Int64Var(&dvbs2.Seed, "seed", 0, "the seed of the address table")
	createDvbS2Cmd.Flags().UintVarP(&dvbs2.Threads, "threads", "t", 0, "the number of threads to use; note 0 means use the number of cpus")

	createldpcCmd.AddCommand(createHammingCmd)
	createHammingCmd.Flags().UintVarP(&hamming.ParityBits, "parity", "p", 4, "the parity >=3, sets codeword size (cs) == 2^parity-1 and message size == cs-parity")
}
