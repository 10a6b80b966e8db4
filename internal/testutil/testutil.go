// Package testutil provides shared test infrastructure for the analysis
// packages and commands: fixture file writers and tolerance assertions used across
// analysis/, analysis/results/, analysis/report/ and cmd/ tests.
package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// absTol keeps relative comparisons meaningful around zero.
const absTol = 1e-12

// WriteFile writes content to dir/name, creating parent directories, and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// WriteResult writes a result table in the harness format: a two-line
// version header followed by one comma-separated row per entry of rows.
func WriteResult(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("# version 1:\n# return mean, return var, return count, return stder, step duration mean\n")
	for _, r := range rows {
		b.WriteString(r)
		b.WriteString("\n")
	}
	return WriteFile(t, dir, name, b.String())
}

// WriteManifest writes a manifest listing the given paths, one per line.
func WriteManifest(t *testing.T, dir, name string, paths ...string) string {
	t.Helper()
	return WriteFile(t, dir, name, strings.Join(paths, "\n")+"\n")
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if !scalar.EqualWithinAbsOrRel(want, got, absTol, relTol) {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

// AssertSliceEqual compares two float64 slices elementwise with relative tolerance.
func AssertSliceEqual(t *testing.T, name string, want, got []float64, relTol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Errorf("%s: got %d elements, want %d", name, len(got), len(want))
		return
	}
	for i := range want {
		if !scalar.EqualWithinAbsOrRel(want[i], got[i], absTol, relTol) {
			t.Errorf("%s[%d]: got %v, want %v", name, i, got[i], want[i])
		}
	}
}

// NormalSamples draws n samples from N(mu, sigma²) with a fixed seed.
func NormalSamples(seed int64, n int, mu, sigma float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = mu + sigma*rng.NormFloat64()
	}
	return out
}
