package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bapomdp/bares/analysis"
	"github.com/bapomdp/bares/analysis/report"
	"github.com/bapomdp/bares/analysis/results"
)

var plotEndFlags chartFlags

var plotEndCmd = &cobra.Command{
	Use:   "plot-end <x-file> <labels-file> <manifest1> <manifest2> [<manifest3>...]",
	Short: "Plot end-of-run performance against a swept parameter",
	Long: "Each manifest lists one result file per x value; the chart draws one line per manifest, " +
		"using the mean return of each file's last row, on a logarithmic x-axis.",
	Args: minArgs(4, "x-file, labels-file and manifests"),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := plotEndFlags.options(cmd, report.DefaultEndOptions())
		if err != nil {
			logrus.Fatalf("plot-end failed: %v", err)
		}
		if err := runPlotEnd(args[0], args[1], args[2:], opts, plotEndFlags.outputPath); err != nil {
			logrus.Fatalf("plot-end failed: %v", err)
		}
	},
}

// runPlotEnd loads the x values, labels and manifests, checks their lengths
// agree and writes the end-performance chart to out.
func runPlotEnd(xPath, labelsPath string, manifests []string, opts report.ChartOptions, out string) error {
	x, err := results.ReadXValues(xPath)
	if err != nil {
		return err
	}
	labels, err := results.ReadLabels(labelsPath)
	if err != nil {
		return err
	}

	lines := make([]report.Line, 0, len(manifests))
	for i, m := range manifests {
		records, err := results.LoadBatch(m)
		if err != nil {
			return err
		}
		if len(records) != len(x) {
			return fmt.Errorf("%w: manifest %s lists %d files but %s has %d x values",
				analysis.ErrLengthMismatch, m, len(records), xPath, len(x))
		}
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		lines = append(lines, report.EndLine(label, records))
	}
	if len(labels) != len(manifests) {
		return fmt.Errorf("%w: %s has %d labels but %d manifests were given",
			analysis.ErrLengthMismatch, labelsPath, len(labels), len(manifests))
	}

	p, err := report.EndPerformanceChart(x, lines, opts)
	if err != nil {
		return err
	}
	if err := report.Save(p, out, opts); err != nil {
		return err
	}
	logrus.Infof("wrote end-performance chart with %d line(s) to %s", len(lines), out)
	return nil
}

func init() {
	plotEndFlags.register(plotEndCmd, "end_performance.png")

	rootCmd.AddCommand(plotEndCmd)
}
