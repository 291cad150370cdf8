package tileccd

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"strings"
	"testing"

	"tileccd/internal/body"
	"tileccd/internal/core"
	"tileccd/internal/scenario"
	"tileccd/internal/trace"
)

func newEngine(t *testing.T, cols, rows int, bp BroadPhaseType) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Cols, cfg.Rows = cols, rows
	cfg.BroadPhase = bp
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func floor(t *testing.T, e *Engine, row int) {
	t.Helper()
	cols, _ := e.Level().Size()
	for x := 0; x < cols; x++ {
		if err := e.Level().Set(x, row, body.NewBlock(float64(x), float64(row), 1)); err != nil {
			t.Fatalf("Failed to place floor: %v", err)
		}
	}
}

func TestPlayerLandsOnFloor(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, 10, 10, BroadPhaseSweep)
	e.GetConfig().Logger = log.New(&buf, "", 0)
	floor(t, e, 9)

	p := NewPlayer(Vec(4, 5), 1, 1, 20)
	if err := e.AddBody(p); err != nil {
		t.Fatalf("Failed to add player: %v", err)
	}

	for i := 0; i < 120; i++ {
		e.Step(1.0 / 60)
	}

	if p.Position() != Vec(4, 8) {
		t.Fatalf("Expected player resting at (4,8), got %v", p.Position())
	}
	if !p.Grounded() {
		t.Fatalf("Expected player to be grounded")
	}
	if math.Abs(p.Vel[1]) != 0 {
		t.Fatalf("Expected vertical speed killed, got %v", p.Vel[1])
	}
	if !strings.Contains(buf.String(), "step ") {
		t.Fatalf("Expected step summaries in the log, got %q", buf.String())
	}
	if e.Steps() != 120 {
		t.Fatalf("Expected 120 steps, got %d", e.Steps())
	}
}

func TestHeadOnEndsTouching(t *testing.T) {
	for _, bp := range []BroadPhaseType{BroadPhaseSweep, BroadPhaseTree} {
		t.Run(bp.String(), func(t *testing.T) {
			e := newEngine(t, 20, 5, bp)
			a := NewProjectile(Vec(1, 1), Vec(6, 0), 1, 0)
			b := NewProjectile(Vec(5, 1), Vec(-6, 0), 1, 0)
			if err := e.BatchAddBodies([]core.Body{a, b}); err != nil {
				t.Fatalf("Failed to add bodies: %v", err)
			}

			first := e.Step(0.25)
			if first.BodyPairs != 0 {
				t.Fatalf("Expected bodies that only touch not to pair, got %d", first.BodyPairs)
			}

			second := e.Step(0.25)
			if second.Contacts != 1 || second.Corrections != 2 {
				t.Fatalf("Expected 1 contact and 2 corrections, got %+v", second.Stats)
			}
			if a.Position() != Vec(2.5, 1) || b.Position() != Vec(3.5, 1) {
				t.Fatalf("Expected bodies touching at x=3.5, got %v and %v", a.Position(), b.Position())
			}

			e.Step(0.25)
			if a.Position() != Vec(2.5, 1) || b.Position() != Vec(3.5, 1) {
				t.Fatalf("Expected bodies to stay put, got %v and %v", a.Position(), b.Position())
			}
		})
	}
}

func TestStaticOverlapReportsInsideEveryStep(t *testing.T) {
	e := newEngine(t, 10, 10, BroadPhaseSweep)
	a := body.NewMover(core.KindPlayer, Vec(1, 1), body.Box(1, 1))
	b := body.NewMover(core.KindNPC, Vec(1.5, 1), body.Box(1, 1))
	e.BatchAddBodies([]core.Body{a, b})

	for i := 0; i < 3; i++ {
		st := e.Step(0.1)
		if st.Inside != 1 || st.Contacts != 0 {
			t.Fatalf("Step %d: expected exactly 1 inside contact, got %+v", i, st.Stats)
		}
	}
	if a.Position() != Vec(1, 1) || b.Position() != Vec(1.5, 1) {
		t.Fatalf("Expected overlapping bodies not to move")
	}

	if st := e.Step(0); st.Inside != 1 {
		t.Fatalf("Expected a zero-length step to still report the overlap, got %+v", st.Stats)
	}
}

func TestMaxEventsTruncates(t *testing.T) {
	e := newEngine(t, 10, 10, BroadPhaseSweep)
	e.GetConfig().MaxEvents = 1
	floor(t, e, 9)

	// straddles two floor tiles, so landing queues two events
	p := NewPlayer(Vec(4.5, 7.5), 1, 1, 0)
	p.Vel = Vec(0, 6)
	e.AddBody(p)

	st := e.Step(0.25)
	if !st.Truncated || st.Popped != 1 {
		t.Fatalf("Expected the step to stop after 1 event, got %+v", st.Stats)
	}
	if p.Position() != Vec(4.5, 8) {
		t.Fatalf("Expected the first event to land the player, got %v", p.Position())
	}
}

func TestBodyManagement(t *testing.T) {
	e := newEngine(t, 10, 10, BroadPhaseTree)
	p := NewPlayer(Vec(1, 1), 1, 1, 0)
	n := NewNPC(Vec(3, 1), 1, 2, 0)

	if err := e.BatchAddBodies([]core.Body{p, n}); err != nil {
		t.Fatalf("Failed to add bodies: %v", err)
	}
	if err := e.AddBody(p); err == nil {
		t.Fatalf("Expected an error adding a body twice")
	}
	if got, err := e.GetBody(n.ID()); err != nil || got != n {
		t.Fatalf("Expected to get the npc back")
	}
	if got := e.BodiesByKind(core.KindNPC); len(got) != 1 {
		t.Fatalf("Expected 1 npc, got %d", len(got))
	}

	e.Step(0.1)
	stats := e.GetStats()
	if stats.BodyCount != 2 || stats.PlayerCount != 1 || stats.NPCCount != 1 || stats.Tracked != 2 {
		t.Fatalf("Unexpected stats %+v", stats)
	}

	if err := e.RemoveBody(p.ID()); err != nil {
		t.Fatalf("Failed to remove body: %v", err)
	}
	if err := e.RemoveBody(p.ID()); err == nil {
		t.Fatalf("Expected an error removing a missing body")
	}
	e.Step(0.1)
	if e.GetStats().Tracked != 1 {
		t.Fatalf("Expected the broad phase to drop the removed body")
	}

	e.ClearScene()
	if e.GetStats().BodyCount != 0 {
		t.Fatalf("Expected no bodies after ClearScene")
	}
}

func TestWalkerStaysOnLedge(t *testing.T) {
	e := newEngine(t, 10, 8, BroadPhaseSweep)
	for x := 2; x <= 6; x++ {
		e.Level().Set(x, 6, body.NewBlock(float64(x), 6, 1))
	}
	w := NewNPC(Vec(3, 4), 1, 2, 20)
	e.AddBody(w)

	turns := 0
	heading := w.Heading()
	for i := 0; i < 120; i++ {
		e.Step(1.0 / 30)
		if w.Heading() != heading {
			heading = w.Heading()
			turns++
		}
		if i > 30 && w.Position()[1] != 5 {
			t.Fatalf("Step %d: expected walker on the ledge at y=5, got %v", i, w.Position())
		}
	}
	if turns < 2 {
		t.Fatalf("Expected the walker to turn at both ends, got %d turns", turns)
	}
	if x := w.Position()[0]; x < 1.5 || x > 6.5 {
		t.Fatalf("Expected the walker over the ledge, got x=%v", x)
	}
}

func TestParseBroadPhase(t *testing.T) {
	if bp, err := ParseBroadPhase("tree"); err != nil || bp != BroadPhaseTree {
		t.Fatalf("Expected tree, got %v (%v)", bp, err)
	}
	if bp, err := ParseBroadPhase(""); err != nil || bp != BroadPhaseSweep {
		t.Fatalf("Expected sweep by default, got %v (%v)", bp, err)
	}
	if _, err := ParseBroadPhase("grid"); err == nil {
		t.Fatalf("Expected an error for an unknown broad phase")
	}
}

const courtyard = `
name = "courtyard"

[level]
map = """
..........
..........
..........
...==.....
..........
#..~~....#
##########
"""

[[body]]
name = "hero"
pos = [1, 0]
size = [1, 1]
vel = [3, 0]
acc = [0, 20]
terminal = [0, 12]

[[body]]
name = "ball"
kind = "projectile"
pos = [2, 4]
size = [0.5, 0.5]
vel = [-1.5, 0]
acc = [0, 10]
bounce = 0.5

[[body]]
name = "goal"
type = "trigger"
kind = "player"
pos = [7, 4]
size = [2, 1]
`

func runCourtyard(t *testing.T, bp string, steps int) (*trace.Trace, *scenario.Built) {
	t.Helper()
	s, err := scenario.Parse([]byte(strings.Replace(courtyard, `name = "courtyard"`,
		fmt.Sprintf("name = \"courtyard\"\n[engine]\nbroadphase = %q", bp), 1)))
	if err != nil {
		t.Fatalf("Failed to parse scenario: %v", err)
	}
	e, built, err := FromScenario(s, nil)
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}
	rec := e.EnableTrace()
	for i := 0; i < steps; i++ {
		e.Step(1.0 / 30)
	}

	tr := rec.Trace()
	tr.Relabel(stableIDs(e))
	return tr, built
}

// stableIDs numbers bodies in insertion order, then tiles in grid order, then
// props. Two engines built from the same scenario get the same numbers.
func stableIDs(e *Engine) map[uint64]uint64 {
	ids := make(map[uint64]uint64)
	next := func(b core.Body) {
		ids[b.ID()] = uint64(len(ids) + 1)
	}
	for _, b := range e.Bodies() {
		next(b)
	}
	e.Level().Each(func(_, _ int, b core.Body) { next(b) })
	for _, b := range e.Level().Props(e.Level().Bounds()) {
		next(b)
	}
	return ids
}

func TestRunsAreDeterministic(t *testing.T) {
	for _, bp := range []string{"sweep", "tree"} {
		t.Run(bp, func(t *testing.T) {
			first, _ := runCourtyard(t, bp, 90)
			second, _ := runCourtyard(t, bp, 90)

			diff, err := trace.Diff(first, second)
			if err != nil {
				t.Fatalf("Failed to diff traces: %v", err)
			}
			if diff != "" {
				t.Fatalf("Expected identical runs, got:\n%s", diff)
			}
		})
	}
}

func TestStableIDsCoverTiles(t *testing.T) {
	build := func() *Engine {
		s, err := scenario.Parse([]byte(courtyard))
		if err != nil {
			t.Fatalf("Failed to parse scenario: %v", err)
		}
		e, _, err := FromScenario(s, nil)
		if err != nil {
			t.Fatalf("Failed to build engine: %v", err)
		}
		return e
	}
	first, second := build(), build()

	a, b := stableIDs(first), stableIDs(second)
	want := len(first.Bodies()) + first.Level().Len() + first.Level().PropCount()
	if len(a) != want || len(b) != want {
		t.Fatalf("Expected %d labels, got %d and %d", want, len(a), len(b))
	}

	var tilesA, tilesB []uint64
	first.Level().Each(func(_, _ int, tile core.Body) { tilesA = append(tilesA, a[tile.ID()]) })
	second.Level().Each(func(_, _ int, tile core.Body) { tilesB = append(tilesB, b[tile.ID()]) })
	for i := range tilesA {
		if tilesA[i] != tilesB[i] {
			t.Fatalf("Tile %d: expected the same label in both engines, got %d and %d", i, tilesA[i], tilesB[i])
		}
	}
}

func TestCourtyardScenario(t *testing.T) {
	tr, built := runCourtyard(t, "sweep", 90)

	hero := built.Named["hero"].(*body.Mover)
	if hero.Position()[1] != 5 {
		t.Fatalf("Expected hero on the ground at y=5, got %v", hero.Position())
	}
	if hero.Position()[0] != 8 {
		t.Fatalf("Expected hero stopped by the right wall at x=8, got %v", hero.Position())
	}
	if !built.Named["goal"].(*body.Trigger).Fired() {
		t.Fatalf("Expected the hero to pass through the goal")
	}

	// nothing may leave the level
	for _, s := range tr.Steps {
		for _, b := range s.Bodies {
			if b.X < 0 || b.Y < 0 || b.X > 10 || b.Y > 7 {
				t.Fatalf("Step %d: body %d left the level at (%v, %v)", s.Index, b.ID, b.X, b.Y)
			}
		}
	}
}

func TestTraceSurvivesEncoding(t *testing.T) {
	tr, _ := runCourtyard(t, "tree", 30)

	var buf bytes.Buffer
	if err := trace.Encode(&buf, tr); err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	back, err := trace.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if diff, _ := trace.Diff(tr, back); diff != "" {
		t.Fatalf("Expected decoded trace to match, got:\n%s", diff)
	}
}
