package analysis

import (
	"fmt"
	"math"
)

// Mode tells whether a record summarises a planning run or a learning run.
type Mode int

const (
	// Planning records carry one scalar per field.
	Planning Mode = iota
	// Learning records carry one value per episode.
	Learning
)

func (m Mode) String() string {
	switch m {
	case Planning:
		return "planning"
	case Learning:
		return "learning"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Record summarises one independent replication.
// Every field has the same length: 1 in planning mode, E (episodes) in learning mode.
// Var is the unbiased sample variance of the episodic return.
type Record struct {
	Mode Mode
	Mu   []float64 // mean return
	Var  []float64 // unbiased sample variance of the return
	N    []float64 // number of samples
	Dur  []float64 // mean step duration
}

// NewPlanningRecord builds a scalar record.
func NewPlanningRecord(mu, variance, n, dur float64) Record {
	return Record{
		Mode: Planning,
		Mu:   []float64{mu},
		Var:  []float64{variance},
		N:    []float64{n},
		Dur:  []float64{dur},
	}
}

// NewLearningRecord builds a per-episode record. The slices are copied.
// Returns ErrLengthMismatch if the slices differ in length and ErrBadShape if they are empty.
func NewLearningRecord(mu, variance, n, dur []float64) (Record, error) {
	r := Record{
		Mode: Learning,
		Mu:   append([]float64(nil), mu...),
		Var:  append([]float64(nil), variance...),
		N:    append([]float64(nil), n...),
		Dur:  append([]float64(nil), dur...),
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Len returns the number of elements per field.
func (r Record) Len() int {
	return len(r.Mu)
}

// Validate checks that all fields agree in length, that the length fits the
// mode, and that every value is a finite number with a non-negative variance
// and a whole-number count of at least 1.
func (r Record) Validate() error {
	e := len(r.Mu)
	if len(r.Var) != e || len(r.N) != e || len(r.Dur) != e {
		return fmt.Errorf("%w: fields have lengths mu=%d var=%d n=%d dur=%d",
			ErrLengthMismatch, len(r.Mu), len(r.Var), len(r.N), len(r.Dur))
	}
	switch r.Mode {
	case Planning:
		if e != 1 {
			return fmt.Errorf("%w: planning record must hold 1 element, got %d", ErrBadShape, e)
		}
	case Learning:
		if e == 0 {
			return fmt.Errorf("%w: learning record holds no episodes", ErrBadShape)
		}
	default:
		return fmt.Errorf("%w: unknown mode %v", ErrBadShape, r.Mode)
	}
	for i := 0; i < e; i++ {
		for _, v := range [...]float64{r.Mu[i], r.Var[i], r.N[i], r.Dur[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: element %d holds a non-finite value", ErrBadColumns, i)
			}
		}
		if r.Var[i] < 0 {
			return fmt.Errorf("%w: element %d has negative variance %g", ErrBadColumns, i, r.Var[i])
		}
		if r.N[i] < 1 || r.N[i] != math.Trunc(r.N[i]) {
			return fmt.Errorf("%w: element %d has count %g, want a whole number >= 1", ErrBadColumns, i, r.N[i])
		}
	}
	return nil
}

// LastMean returns the mean return of the terminal element.
// For a planning record this is its only value.
func (r Record) LastMean() float64 {
	return r.Mu[len(r.Mu)-1]
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	return Record{
		Mode: r.Mode,
		Mu:   append([]float64(nil), r.Mu...),
		Var:  append([]float64(nil), r.Var...),
		N:    append([]float64(nil), r.N...),
		Dur:  append([]float64(nil), r.Dur...),
	}
}

// Pooled is the merge of one or more records. Stder is sqrt(Var / N) elementwise.
type Pooled struct {
	Record
	Stder []float64
}

// StandardError returns sqrt(variance / n) elementwise.
func StandardError(variance, n []float64) []float64 {
	out := make([]float64, len(variance))
	for i := range variance {
		out[i] = math.Sqrt(variance[i] / n[i])
	}
	return out
}

// CheckCompatible verifies that records can be merged: at least one record,
// all valid, all of the same mode and length.
func CheckCompatible(records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: no records to pool", ErrLengthMismatch)
	}
	first := records[0]
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if r.Mode != first.Mode {
			return fmt.Errorf("%w: record %d is %v but record 0 is %v", ErrBadShape, i, r.Mode, first.Mode)
		}
		if r.Len() != first.Len() {
			return fmt.Errorf("%w: record %d has %d episodes but record 0 has %d",
				ErrLengthMismatch, i, r.Len(), first.Len())
		}
	}
	return nil
}
