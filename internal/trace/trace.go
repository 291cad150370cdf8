// Package trace records what happened during each step so runs can be
// replayed, stored and compared.
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/vmihailenco/msgpack/v5"

	"tileccd/internal/core"
	"tileccd/internal/resolve"
)

// Contact is one delivered contact, flattened to plain values
type Contact struct {
	A          uint64  `msgpack:"a"`
	B          uint64  `msgpack:"b"`
	BoxA       int     `msgpack:"ba"`
	BoxB       int     `msgpack:"bb"`
	Side       string  `msgpack:"side"`
	Time       float64 `msgpack:"t"`
	Solid      bool    `msgpack:"solid"`
	CorrectedA bool    `msgpack:"ca"`
	CorrectedB bool    `msgpack:"cb"`
}

// BodyState is a body's committed position at the end of a step
type BodyState struct {
	ID   uint64  `msgpack:"id"`
	Kind string  `msgpack:"kind"`
	X    float64 `msgpack:"x"`
	Y    float64 `msgpack:"y"`
}

// Step holds the contacts of one step in delivery order and the positions
// the bodies ended it at.
type Step struct {
	Index    int         `msgpack:"i"`
	Contacts []Contact   `msgpack:"contacts"`
	Bodies   []BodyState `msgpack:"bodies"`
}

// Trace is a sequence of steps
type Trace struct {
	Steps []Step `msgpack:"steps"`
}

// Recorder builds a Trace. It observes contacts while a step resolves and is
// told when the step ends.
type Recorder struct {
	trace   Trace
	pending []Contact
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe implements resolve.Observer
func (r *Recorder) Observe(rec resolve.Record) {
	r.pending = append(r.pending, Contact{
		A:          rec.A.ID(),
		B:          rec.B.ID(),
		BoxA:       rec.BoxA,
		BoxB:       rec.BoxB,
		Side:       rec.Side.String(),
		Time:       rec.Time,
		Solid:      rec.Solid,
		CorrectedA: rec.CorrectedA,
		CorrectedB: rec.CorrectedB,
	})
}

// EndStep closes the current step with the positions of bodies, in the
// order given.
func (r *Recorder) EndStep(bodies []core.Body) {
	step := Step{Index: len(r.trace.Steps), Contacts: r.pending}
	for _, b := range bodies {
		p := b.Position()
		step.Bodies = append(step.Bodies, BodyState{ID: b.ID(), Kind: b.Kind().String(), X: p[0], Y: p[1]})
	}
	r.trace.Steps = append(r.trace.Steps, step)
	r.pending = nil
}

// Trace returns everything recorded so far
func (r *Recorder) Trace() *Trace {
	return &r.trace
}

// Reset drops all recorded steps
func (r *Recorder) Reset() {
	r.trace = Trace{}
	r.pending = nil
}

// Encode writes t to w as msgpack
func Encode(w io.Writer, t *Trace) error {
	if err := msgpack.NewEncoder(w).Encode(t); err != nil {
		return errors.Wrap(err, "encode trace")
	}
	return nil
}

// Decode reads a trace written by Encode
func Decode(r io.Reader) (*Trace, error) {
	var t Trace
	if err := msgpack.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(err, "decode trace")
	}
	return &t, nil
}

// Text renders t one line per contact and body, in a form stable enough to
// compare runs.
func (t *Trace) Text() string {
	var sb strings.Builder
	for _, s := range t.Steps {
		fmt.Fprintf(&sb, "step %d\n", s.Index)
		for _, c := range s.Contacts {
			fmt.Fprintf(&sb, "  contact %d#%d %s %d#%d t=%.6f solid=%t corrected=%t/%t\n",
				c.A, c.BoxA, c.Side, c.B, c.BoxB, c.Time, c.Solid, c.CorrectedA, c.CorrectedB)
		}
		for _, b := range s.Bodies {
			fmt.Fprintf(&sb, "  body %d %s (%.6f, %.6f)\n", b.ID, b.Kind, b.X, b.Y)
		}
	}
	return sb.String()
}

// Diff returns a unified diff of the text renderings of a and b. It is empty
// when the traces render the same.
func Diff(a, b *Trace) (string, error) {
	ta, tb := a.Text(), b.Text()
	if ta == tb {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(ta),
		B:        difflib.SplitLines(tb),
		FromFile: "a",
		ToFile:   "b",
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", errors.Wrap(err, "diff traces")
	}
	return text, nil
}

// Relabel rewrites body IDs through ids, so traces of two runs that created
// their bodies in the same order compare equal. IDs missing from ids are kept.
func (t *Trace) Relabel(ids map[uint64]uint64) {
	swap := func(id uint64) uint64 {
		if n, ok := ids[id]; ok {
			return n
		}
		return id
	}
	for i := range t.Steps {
		s := &t.Steps[i]
		for j := range s.Contacts {
			s.Contacts[j].A = swap(s.Contacts[j].A)
			s.Contacts[j].B = swap(s.Contacts[j].B)
		}
		for j := range s.Bodies {
			s.Bodies[j].ID = swap(s.Bodies[j].ID)
		}
	}
}
