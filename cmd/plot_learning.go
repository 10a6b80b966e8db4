package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bapomdp/bares/analysis"
	"github.com/bapomdp/bares/analysis/report"
	"github.com/bapomdp/bares/analysis/results"
)

var (
	plotLearningFlags chartFlags
	withStder         bool // Draw mean ± 2·stder ribbons
)

var plotLearningCmd = &cobra.Command{
	Use:   "plot-learning <manifest> <labels-file> [--with-stder]",
	Short: "Plot learning curves (return per episode)",
	Long:  "Draw one curve of mean return per episode for every result file listed in the manifest.",
	Args:  exactArgs(2, "manifest and labels-file"),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := plotLearningFlags.options(cmd, report.DefaultLearningOptions())
		if err != nil {
			logrus.Fatalf("plot-learning failed: %v", err)
		}
		if err := runPlotLearning(args[0], args[1], withStder, opts, plotLearningFlags.outputPath); err != nil {
			logrus.Fatalf("plot-learning failed: %v", err)
		}
	},
}

// runPlotLearning loads the learning results listed in manifest and writes
// their curves to out.
func runPlotLearning(manifest, labelsPath string, stder bool, opts report.ChartOptions, out string) error {
	labels, err := results.ReadLabels(labelsPath)
	if err != nil {
		return err
	}
	paths, err := results.LoadManifest(manifest)
	if err != nil {
		return err
	}
	records, err := results.LoadAll(paths)
	if err != nil {
		return fmt.Errorf("manifest %s: %w", manifest, err)
	}
	if len(records) != len(labels) {
		return fmt.Errorf("%w: manifest %s lists %d files but %s has %d labels",
			analysis.ErrLengthMismatch, manifest, len(records), labelsPath, len(labels))
	}
	if len(records) > 0 && records[0].Mode != analysis.Learning {
		return fmt.Errorf("%w: %s is a %v result; learning curves need one row per episode",
			analysis.ErrBadShape, paths[0], records[0].Mode)
	}

	curves := make([]report.Curve, len(records))
	for i, r := range records {
		curves[i] = report.CurveFromRecord(labels[i], r)
	}
	p, err := report.LearningChart(curves, stder, opts)
	if err != nil {
		return err
	}
	if err := report.Save(p, out, opts); err != nil {
		return err
	}
	logrus.Infof("wrote learning chart with %d curve(s) over %d episode(s) to %s", len(curves), records[0].Len(), out)
	return nil
}

func init() {
	plotLearningCmd.Flags().BoolVar(&withStder, "with-stder", false, "Shade mean ± 2·stder around each curve")
	plotLearningFlags.register(plotLearningCmd, "learning.png")

	rootCmd.AddCommand(plotLearningCmd)
}
