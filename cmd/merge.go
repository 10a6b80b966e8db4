package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bapomdp/bares/analysis"
	"github.com/bapomdp/bares/analysis/report"
	"github.com/bapomdp/bares/analysis/results"
)

var mergeReduction string // Pairwise pooling order (fold or tree)

var mergeCmd = &cobra.Command{
	Use:   "merge <file1> <file2> [<file3>...]",
	Short: "Pool the statistics of independent runs into one result",
	Long: "Combine the mean, variance, count and duration of several result files of the same experiment " +
		"into one pooled result. Output is written to stdout in the result file format.",
	Args: minArgs(2, "result files to merge"),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !analysis.IsValidReduction(mergeReduction) {
			return fmt.Errorf("%w: unknown --reduce %q; valid: fold, tree", ErrBadFlag, mergeReduction)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMerge(args, analysis.Reduction(mergeReduction), os.Stdout); err != nil {
			logrus.Fatalf("merge failed: %v", err)
		}
	},
}

// runMerge loads the result files, pools them and writes the pooled result to w.
func runMerge(paths []string, reduction analysis.Reduction, w io.Writer) error {
	records, err := results.LoadAll(paths)
	if err != nil {
		return err
	}
	pooled, err := analysis.PoolWith(records, reduction)
	if err != nil {
		return err
	}
	logrus.Infof("merged %d %v result file(s), %d row(s), total count %v",
		len(records), pooled.Mode, pooled.Len(), pooled.N[0])
	return report.WriteCSV(w, pooled)
}

func init() {
	mergeCmd.Flags().StringVar(&mergeReduction, "reduce", string(analysis.ReduceFold), "Pooling order: fold (left to right) or tree (pairwise halves)")

	rootCmd.AddCommand(mergeCmd)
}
