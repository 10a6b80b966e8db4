// Package results loads the files produced by BA-POMDP experiment runs:
// result tables, manifests listing result tables, label files and x-value files.
package results

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bapomdp/bares/analysis"
)

// Column layout of a result row.
const (
	ColMean     = 0
	ColVar      = 1
	ColCount    = 2
	ColStder    = 3 // ignored on read; recomputed on output
	ColDuration = 4

	// MinColumns is the minimum row width; extra columns are ignored.
	MinColumns = 5
)

// Load reads one result table. A single data row is a planning result;
// several rows are a learning result with one row per episode.
// Comment lines ('#') and blank lines are skipped.
func Load(path string) (analysis.Record, error) {
	rows, err := readRows(path)
	if err != nil {
		return analysis.Record{}, err
	}
	r, err := recordFromRows(rows)
	if err != nil {
		return analysis.Record{}, fmt.Errorf("%s: %w", path, err)
	}
	logrus.Debugf("loaded %s: %v result, %d row(s)", path, r.Mode, r.Len())
	return r, nil
}

func recordFromRows(rows [][]string) (analysis.Record, error) {
	if len(rows) == 0 {
		return analysis.Record{}, fmt.Errorf("%w: no data rows", analysis.ErrBadShape)
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return analysis.Record{}, fmt.Errorf("%w: row %d has %d columns, row 0 has %d",
				analysis.ErrBadShape, i, len(row), width)
		}
	}
	if width < MinColumns {
		return analysis.Record{}, fmt.Errorf("%w: need at least %d columns, got %d",
			analysis.ErrBadColumns, MinColumns, width)
	}

	e := len(rows)
	mu := make([]float64, e)
	variance := make([]float64, e)
	n := make([]float64, e)
	dur := make([]float64, e)
	for i, row := range rows {
		for _, c := range [...]struct {
			col int
			dst []float64
		}{
			{ColMean, mu}, {ColVar, variance}, {ColCount, n}, {ColDuration, dur},
		} {
			v, err := parseField(row[c.col])
			if err != nil {
				return analysis.Record{}, fmt.Errorf("%w: row %d column %d: %v", analysis.ErrBadColumns, i, c.col, err)
			}
			c.dst[i] = v
		}
	}

	if e == 1 {
		r := analysis.NewPlanningRecord(mu[0], variance[0], n[0], dur[0])
		if err := r.Validate(); err != nil {
			return analysis.Record{}, err
		}
		return r, nil
	}
	return analysis.NewLearningRecord(mu, variance, n, dur)
}

// LoadAll loads every path in order and checks that the records can be pooled
// together (same mode and episode count).
func LoadAll(paths []string) ([]analysis.Record, error) {
	records := make([]analysis.Record, 0, len(paths))
	for i, p := range paths {
		r, err := Load(p)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			if err := sameShape(records[0], r, paths[0], p); err != nil {
				return nil, err
			}
		}
		records = append(records, r)
	}
	return records, nil
}

func sameShape(first, r analysis.Record, firstPath, path string) error {
	if r.Mode != first.Mode {
		return fmt.Errorf("%w: %s is a %v result but %s is a %v result",
			analysis.ErrBadShape, path, r.Mode, firstPath, first.Mode)
	}
	if r.Len() != first.Len() {
		return fmt.Errorf("%w: %s has %d episodes but %s has %d",
			analysis.ErrLengthMismatch, path, r.Len(), firstPath, first.Len())
	}
	return nil
}

// LoadManifest returns the result paths listed in a manifest, one per line,
// resolved against the manifest's directory. Blank lines are skipped.
func LoadManifest(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	var paths []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		paths = append(paths, line)
	}
	logrus.Debugf("manifest %s lists %d file(s)", path, len(paths))
	return paths, nil
}

// LoadBatch loads every result file listed in a manifest.
// Unlike LoadAll it does not require the files to share a shape.
func LoadBatch(manifest string) ([]analysis.Record, error) {
	paths, err := LoadManifest(manifest)
	if err != nil {
		return nil, err
	}
	records := make([]analysis.Record, 0, len(paths))
	for _, p := range paths {
		r, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", manifest, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// ReadLabels returns one label per line, in order. Trailing blank lines are dropped.
func ReadLabels(path string) ([]string, error) {
	return readLines(path)
}

// ReadXValues reads a comma-separated numeric vector. Values may span several lines.
func ReadXValues(path string) ([]float64, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	var xs []float64
	for i, row := range rows {
		for j, field := range row {
			if field == "" {
				continue
			}
			v, err := parseField(field)
			if err != nil {
				return nil, fmt.Errorf("%s: %w: row %d column %d: %v", path, analysis.ErrBadColumns, i, j, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%s: %w: row %d column %d is not finite", path, analysis.ErrBadColumns, i, j)
			}
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%s: %w: no x values", path, analysis.ErrBadShape)
	}
	return xs, nil
}
