package chart

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/nathanhack/fec/cmd/internal/tools"
	"github.com/nathanhack/fec/cmd/internal/tools/csv"
	"github.com/spf13/cobra"
)

var OutputFile string

var ChartRun = func(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		fmt.Println("requires at least one RESULTS_JSON")
		return
	}

	// loop through all the results files and collect data needed for displaying
	stats := make([]*tools.SimulationStats, len(args))
	var err error
	for i, resultFile := range args {
		stats[i], err = tools.LoadResults(resultFile)
		if err != nil {
			fmt.Println(err)
			return
		}
		if stats[i] == nil {
			fmt.Printf("missing results file %v\n", resultFile)
			return
		}
	}

	f, err := os.Create(OutputFile)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer f.Close()

	err = New(args, stats).Render(f)
	if err != nil {
		fmt.Println(err)
	}
}

// New creates an error rate versus E_b/N_0 chart with one series per results file.
func New(names []string, stats []*tools.SimulationStats) *charts.Line {
	ebN0s := make(map[float64]bool)
	for _, s := range stats {
		for p := range s.Stats {
			ebN0s[p] = true
		}
	}
	xvalues, xnames := xAxisAndValues(ebN0s)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Results",
			Subtitle: "Error Rates",
			Left:     "20%",
		}),
		charts.WithLegendOpts(opts.Legend{Show: true,
			Orient: "vertical",
			Right:  "0",
			Top:    "top",
			Type:   "scroll",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Eb/N0 (dB)",
			SplitLine: &opts.SplitLine{Show: true},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Error Rate",
			Type:      "log",
			SplitLine: &opts.SplitLine{Show: true},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)

	line.SetXAxis(xnames)
	for i, s := range stats {
		line.AddSeries(names[i], series(s, xvalues))
	}
	return line
}

func xAxisAndValues(ebN0s map[float64]bool) ([]float64, []string) {
	nums := make([]float64, 0, len(ebN0s))
	strs := make([]string, 0, len(ebN0s))
	for k := range ebN0s {
		nums = append(nums, k)
	}

	sort.Float64s(nums)

	for _, n := range nums {
		strs = append(strs, fmt.Sprint(n))
	}

	return nums, strs
}

// series leaves a gap where a file has no result or no error, a log axis can't show zero.
func series(stat *tools.SimulationStats, values []float64) []opts.LineData {
	results := make([]opts.LineData, len(values))
	null := opts.LineData{Value: nil}
	for i, v := range values {
		x, has := stat.Stats[v]
		if !has || csv.Value(x) == 0 {
			results[i] = null
			continue
		}

		results[i] = opts.LineData{
			Value: csv.Value(x),
		}
	}
	return results
}
