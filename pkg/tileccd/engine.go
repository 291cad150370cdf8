package tileccd

import (
	"fmt"
	"log"

	"tileccd/internal/body"
	"tileccd/internal/broadphase"
	"tileccd/internal/core"
	"tileccd/internal/resolve"
	"tileccd/internal/scenario"
	"tileccd/internal/scene"
	"tileccd/internal/trace"
	"tileccd/internal/world"
)

// Engine steps a tile level and the dynamic bodies living in it
type Engine struct {
	sceneManager *scene.Manager
	level        *world.Level
	finder       broadphase.Finder
	config       *Config

	recorder *trace.Recorder
	steps    int
	last     StepStats
}

// Config holds configuration for the engine
type Config struct {
	// Level size in tiles
	Cols, Rows int
	TileSize   float64
	ChunkSize  int

	BroadPhase BroadPhaseType
	// MaxEvents caps the events drained per step; 0 means no cap
	MaxEvents int

	// Logger receives one line per step that did any work. Nil disables it.
	Logger   *log.Logger
	Observer resolve.Observer
}

// BroadPhaseType selects how dynamic bodies are paired with each other
type BroadPhaseType int

const (
	BroadPhaseSweep BroadPhaseType = iota
	BroadPhaseTree
)

func (t BroadPhaseType) String() string {
	if t == BroadPhaseTree {
		return "tree"
	}
	return "sweep"
}

// ParseBroadPhase maps "sweep" and "tree" to their type
func ParseBroadPhase(name string) (BroadPhaseType, error) {
	switch name {
	case "", "sweep":
		return BroadPhaseSweep, nil
	case "tree":
		return BroadPhaseTree, nil
	}
	return BroadPhaseSweep, fmt.Errorf("unknown broad phase %q", name)
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Cols:       64,
		Rows:       32,
		TileSize:   1.0,
		ChunkSize:  16,
		BroadPhase: BroadPhaseSweep,
	}
}

// NewEngine creates an engine over an empty level sized by config
func NewEngine(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	level, err := world.NewLevel(config.Cols, config.Rows, config.TileSize, config.ChunkSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create level: %w", err)
	}
	return NewEngineWithLevel(level, config), nil
}

// NewEngineWithLevel creates an engine over an existing level. The level
// size in config is ignored.
func NewEngineWithLevel(level *world.Level, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	var finder broadphase.Finder
	switch config.BroadPhase {
	case BroadPhaseTree:
		finder = broadphase.NewTreeFinder()
	default: // BroadPhaseSweep
		finder = broadphase.NewSweepAndPrune()
	}

	return &Engine{
		sceneManager: scene.NewManager(),
		level:        level,
		finder:       finder,
		config:       config,
	}
}

// FromScenario builds a scenario and returns an engine holding its level and
// bodies. Engine settings in the scenario override config.
func FromScenario(s *scenario.Scenario, config *Config) (*Engine, *scenario.Built, error) {
	built, err := s.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build scenario: %w", err)
	}

	cfg := DefaultConfig()
	if config != nil {
		c := *config
		cfg = &c
	}
	if s.Engine.BroadPhase != "" {
		bp, err := ParseBroadPhase(s.Engine.BroadPhase)
		if err != nil {
			return nil, nil, err
		}
		cfg.BroadPhase = bp
	}
	if s.Engine.MaxEvents > 0 {
		cfg.MaxEvents = s.Engine.MaxEvents
	}
	cfg.Cols, cfg.Rows = built.Level.Size()
	cfg.TileSize = built.Level.TileSize()
	cfg.ChunkSize = s.Level.Chunk

	e := NewEngineWithLevel(built.Level, cfg)
	if err := e.BatchAddBodies(built.Bodies); err != nil {
		return nil, nil, err
	}
	return e, built, nil
}

// Body Management

// AddBody adds a dynamic body to the scene
func (e *Engine) AddBody(b core.Body) error {
	if err := e.sceneManager.Add(b); err != nil {
		e.logf("add body: %v", err)
		return err
	}
	return nil
}

// RemoveBody removes a dynamic body from the scene
func (e *Engine) RemoveBody(id uint64) error {
	if err := e.sceneManager.Remove(id); err != nil {
		e.logf("remove body: %v", err)
		return err
	}
	return nil
}

// GetBody retrieves a dynamic body by ID
func (e *Engine) GetBody(id uint64) (core.Body, error) {
	return e.sceneManager.Get(id)
}

// Bodies returns the dynamic bodies in the order they were added
func (e *Engine) Bodies() []core.Body {
	return e.sceneManager.Bodies()
}

// BodiesByKind returns the dynamic bodies of one kind
func (e *Engine) BodiesByKind(kind core.Kind) []core.Body {
	return e.sceneManager.ByKind(kind)
}

// BatchAddBodies adds several bodies, stopping at the first failure
func (e *Engine) BatchAddBodies(bodies []core.Body) error {
	for _, b := range bodies {
		if err := e.AddBody(b); err != nil {
			return fmt.Errorf("failed to add body %d: %w", b.ID(), err)
		}
	}
	return nil
}

// ClearScene removes every dynamic body. The level is kept.
func (e *Engine) ClearScene() {
	e.sceneManager.Clear()
	e.finder.Clear()
}

// Level returns the static level
func (e *Engine) Level() *world.Level {
	return e.level
}

// Tracing

// EnableTrace starts recording every contact and the end-of-step positions.
// It returns the recorder, which is reused on later calls.
func (e *Engine) EnableTrace() *trace.Recorder {
	if e.recorder == nil {
		e.recorder = trace.NewRecorder()
	}
	return e.recorder
}

// DisableTrace stops recording
func (e *Engine) DisableTrace() {
	e.recorder = nil
}

// Stepping

// Step advances the scene by dt. Bodies move first, then every contact of
// the step is resolved in time order, then positions are committed.
func (e *Engine) Step(dt float64) StepStats {
	bodies := e.sceneManager.Bodies()

	e.level.Each(func(_, _ int, b core.Body) {
		if u, ok := b.(body.Updater); ok {
			u.Update(dt, e.level)
		}
	})
	for _, b := range bodies {
		if u, ok := b.(body.Updater); ok {
			u.Update(dt, e.level)
		}
	}

	st := StepStats{Step: e.steps, Bodies: len(bodies)}
	for _, b := range bodies {
		if e.level.Rebound(b) {
			st.Rebounds++
		}
	}

	pass := resolve.NewPass(resolve.Options{
		MaxEvents: e.config.MaxEvents,
		Observer:  e.observer(),
	})
	st.LevelPairs = e.level.Feed(pass, bodies)
	e.finder.Sync(bodies)
	st.BodyPairs = e.finder.DetectPairs(pass)
	st.Stats = pass.Resolve()

	for _, b := range bodies {
		b.CommitPrevious()
	}
	e.level.Each(func(_, _ int, b core.Body) {
		b.CommitPrevious()
	})

	if e.recorder != nil {
		e.recorder.EndStep(bodies)
	}

	if st.Popped > 0 || st.Inside > 0 || st.Rebounds > 0 {
		e.logf("step %d: bodies=%d pairs=%d+%d popped=%d contacts=%d inside=%d corrections=%d discarded=%d truncated=%t",
			st.Step, st.Bodies, st.LevelPairs, st.BodyPairs, st.Popped, st.Contacts, st.Inside,
			st.Corrections, st.Discarded, st.Truncated)
	}

	e.steps++
	e.last = st
	return st
}

// observer fans contacts out to the configured observer and the recorder
func (e *Engine) observer() resolve.Observer {
	switch {
	case e.recorder == nil:
		return e.config.Observer
	case e.config.Observer == nil:
		return e.recorder
	}
	user, rec := e.config.Observer, e.recorder
	return resolve.ObserverFunc(func(r resolve.Record) {
		user.Observe(r)
		rec.Observe(r)
	})
}

func (e *Engine) logf(format string, args ...any) {
	if e.config.Logger != nil {
		e.config.Logger.Printf(format, args...)
	}
}

// Performance and Debugging

// GetConfig returns the current engine configuration
func (e *Engine) GetConfig() *Config {
	return e.config
}

// Steps returns the number of steps run so far
func (e *Engine) Steps() int {
	return e.steps
}

// LastStep returns the statistics of the most recent step
func (e *Engine) LastStep() StepStats {
	return e.last
}

// GetStats returns a snapshot of what the engine holds
func (e *Engine) GetStats() Stats {
	return Stats{
		BodyCount:   e.sceneManager.Count(),
		PlayerCount: e.sceneManager.CountByKind(core.KindPlayer),
		NPCCount:    e.sceneManager.CountByKind(core.KindNPC),
		TileCount:   e.level.Len(),
		PropCount:   e.level.PropCount(),
		Tracked:     e.finder.Len(),
		Steps:       e.steps,
	}
}

// StepStats describes the work done by one step
type StepStats struct {
	Step   int
	Bodies int
	// LevelPairs are body-vs-tile and body-vs-prop candidates
	LevelPairs int
	// BodyPairs are body-vs-body candidates from the broad phase
	BodyPairs int
	Rebounds  int
	resolve.Stats
}

// Stats represents what the engine currently holds
type Stats struct {
	BodyCount   int
	PlayerCount int
	NPCCount    int
	TileCount   int
	PropCount   int
	Tracked     int
	Steps       int
}
