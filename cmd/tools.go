package cmd

import (
	"github.com/nathanhack/fec/cmd/internal/tools/chansim"
	"github.com/nathanhack/fec/cmd/internal/tools/chart"
	"github.com/nathanhack/fec/cmd/internal/tools/csv"

	"github.com/spf13/cobra"
)

// toolsCmd represents the tools command
var toolsCmd = &cobra.Command{
	Use:     "tools",
	Aliases: []string{"t"},
	Short:   "Tools for codecs",
	Long:    `Tools for codecs`,
}

// toolsChansimCmd represents the chansim command
var toolsChansimCmd = &cobra.Command{
	Use:     "chansim CODEC_FILE RESULT_JSON",
	Aliases: []string{"cs"},
	Short:   "An AWGN channel simulator",
	Long:    `An additive white gaussian noise channel simulator sweeping Eb/N0. Results are checkpointed to RESULT_JSON and an existing file is continued.`,
	Run:     chansim.ChansimRun,
}

// toolsResultsCmd represents the results command
var toolsResultsCmd = &cobra.Command{
	Use:     "results",
	Aliases: []string{"r"},
	Short:   "A tool to organize results for graphing and comparison",
	Long:    `A tool to organize results for graphing and comparison`,
}

// toolsCSVCmd represents the csv command
var toolsCSVCmd = &cobra.Command{
	Use:     "csv RESULTS_JSON [RESULTS_JSON] ...",
	Aliases: []string{"c"},
	Short:   "Export to a CSV file",
	Long:    `Export to a CSV file`,
	Run:     csv.CSVRun,
}

// toolsChartCmd represents the chart command
var toolsChartCmd = &cobra.Command{
	Use:   "chart RESULTS_JSON [RESULTS_JSON] ...",
	Short: "Export to an HTML chart",
	Long:  `Export the error rate versus Eb/N0 of every results file to an HTML chart`,
	Run:   chart.ChartRun,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsChansimCmd)
	toolsCmd.AddCommand(toolsResultsCmd)

	toolsChansimCmd.Flags().UintVarP(&chansim.Trials, "trials", "t", 10_000, "the number of trials per step")
	toolsChansimCmd.Flags().Float64SliceVarP(&chansim.EbN0, "ebn0", "e", []float64{0, 1, 2, 3, 4, 5, 6}, "the Eb/N0 values to test in dB")
	toolsChansimCmd.Flags().UintVar(&chansim.Threads, "threads", 0, "number of threads to use (0 means to use the # of threads equal to the # of CPUs)")
	toolsChansimCmd.Flags().StringVarP(&chansim.Modulation, "modulation", "m", "bpsk", "the modulation: bpsk, qpsk or pam4")
	toolsChansimCmd.Flags().Int64Var(&chansim.Seed, "seed", 1, "the seed of the first trial")
	toolsChansimCmd.Flags().StringVar(&chansim.Metrics, "metrics", "", "writes the codec prometheus metrics to this file")

	toolsResultsCmd.AddCommand(toolsCSVCmd)
	toolsCSVCmd.Flags().StringVarP(&csv.OutputFile, "output", "o", "results.csv", "filename of the combined csv")
	toolsCSVCmd.Flags().BoolVarP(&csv.ChannelError, "channel", "c", false, "outputs the channel bit error rate instead of the message bit error rate")
	toolsCSVCmd.Flags().BoolVarP(&csv.BlockError, "block", "b", false, "outputs the block error rate instead of the message bit error rate")

	toolsResultsCmd.AddCommand(toolsChartCmd)
	toolsChartCmd.Flags().StringVarP(&chart.OutputFile, "output", "o", "results.html", "filename of the chart")
	toolsChartCmd.Flags().BoolVarP(&csv.ChannelError, "channel", "c", false, "charts the channel bit error rate instead of the message bit error rate")
	toolsChartCmd.Flags().BoolVarP(&csv.BlockError, "block", "b", false, "charts the block error rate instead of the message bit error rate")
}
