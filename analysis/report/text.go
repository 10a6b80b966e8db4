// Package report writes pooled records as text and renders result charts.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/bapomdp/bares/analysis"
)

// Header identifies the text format version and column order.
const Header = "# version 1: return mean, return var, return count, return stder, step duration mean"

// FormatFloat renders v in the shortest decimal form that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes the header line followed by one row per element of p:
// mu, var, n, stder, dur.
func WriteCSV(w io.Writer, p analysis.Pooled) error {
	if len(p.Stder) != p.Len() {
		return fmt.Errorf("%w: %d standard errors for %d elements", analysis.ErrLengthMismatch, len(p.Stder), p.Len())
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return err
	}
	for i := 0; i < p.Len(); i++ {
		_, err := fmt.Fprintf(bw, "%s, %s, %s, %s, %s\n",
			FormatFloat(p.Mu[i]), FormatFloat(p.Var[i]), FormatFloat(p.N[i]),
			FormatFloat(p.Stder[i]), FormatFloat(p.Dur[i]))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
