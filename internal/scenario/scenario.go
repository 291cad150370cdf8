// Package scenario loads levels and bodies from TOML files.
//
// A scenario has an ASCII tile map, a list of dynamic bodies and optional
// free-placed props:
//
//	name = "ledge"
//
//	[level]
//	tile = 1.0
//	chunk = 16
//	map = """
//	..........
//	....==....
//	##########
//	"""
//
//	[[body]]
//	name = "hero"
//	type = "mover"
//	pos = [1, 0]
//	size = [1, 1]
//	acc = [0, 20]
//
// Map cells: '#' block, '=' one-way platform, '~' liquid, '.' or ' ' empty.
package scenario

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"tileccd/internal/body"
	"tileccd/internal/core"
	"tileccd/internal/world"
)

// Scenario is the decoded file
type Scenario struct {
	Name   string     `toml:"name"`
	Level  LevelSpec  `toml:"level"`
	Engine EngineSpec `toml:"engine"`
	Bodies []BodySpec `toml:"body"`
	Props  []PropSpec `toml:"prop"`
}

// LevelSpec describes the tile grid. Cols and Rows are only read when Map is
// empty; otherwise the map decides the size.
type LevelSpec struct {
	Tile  float64 `toml:"tile"`
	Chunk int     `toml:"chunk"`
	Cols  int     `toml:"cols"`
	Rows  int     `toml:"rows"`
	Map   string  `toml:"map"`
}

// EngineSpec carries run settings. Zero values mean "use the default".
type EngineSpec struct {
	BroadPhase string  `toml:"broadphase"`
	MaxEvents  int     `toml:"max_events"`
	Steps      int     `toml:"steps"`
	DT         float64 `toml:"dt"`
}

// BoxSpec is one hitbox relative to the body position
type BoxSpec struct {
	Offset [2]float64 `toml:"offset"`
	Size   [2]float64 `toml:"size"`
	Sides  []string   `toml:"sides"`
}

// BodySpec describes a dynamic body
type BodySpec struct {
	Name string `toml:"name"`
	// Type is mover, walker or trigger
	Type string `toml:"type"`
	// Kind tags movers; for triggers it is the kind that fires them
	Kind  string     `toml:"kind"`
	Pos   [2]float64 `toml:"pos"`
	Size  [2]float64 `toml:"size"`
	Boxes []BoxSpec  `toml:"box"`

	Vel      [2]float64 `toml:"vel"`
	Acc      [2]float64 `toml:"acc"`
	Terminal [2]float64 `toml:"terminal"`
	Drag     float64    `toml:"drag"`
	Bounce   float64    `toml:"bounce"`
	Speed    float64    `toml:"speed"`
	Solid    *bool      `toml:"solid"`
}

// PropSpec is a static body placed off the grid
type PropSpec struct {
	Pos   [2]float64 `toml:"pos"`
	Size  [2]float64 `toml:"size"`
	Sides []string   `toml:"sides"`
}

// Built is a scenario turned into live objects
type Built struct {
	Level  *world.Level
	Bodies []core.Body
	// Named holds the bodies that were given a name
	Named map[string]core.Body
}

// Load reads and decodes a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scenario %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load scenario %s", path)
	}
	return s, nil
}

// Parse decodes a scenario and fills in defaults
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown key %q", undecoded[0].String())
	}

	if s.Level.Tile == 0 {
		s.Level.Tile = 1
	}
	if s.Level.Chunk == 0 {
		s.Level.Chunk = 16
	}
	if s.Level.Map != "" {
		rows := mapRows(s.Level.Map)
		s.Level.Rows = len(rows)
		s.Level.Cols = 0
		for _, r := range rows {
			if len(r) > s.Level.Cols {
				s.Level.Cols = len(r)
			}
		}
	}
	return &s, nil
}

// Build creates the level, its tiles and props, and the dynamic bodies
func (s *Scenario) Build() (*Built, error) {
	level, err := world.NewLevel(s.Level.Cols, s.Level.Rows, s.Level.Tile, s.Level.Chunk)
	if err != nil {
		return nil, errors.Wrap(err, "build level")
	}
	if err := fillTiles(level, s.Level.Map); err != nil {
		return nil, err
	}

	for i, p := range s.Props {
		shape, err := hitBox(BoxSpec{Size: p.Size, Sides: p.Sides})
		if err != nil {
			return nil, errors.Wrapf(err, "prop %d", i)
		}
		prop := body.NewBase(core.KindObstacle, core.Vec{p.Pos[0], p.Pos[1]}, shape)
		if err := level.AddProp(prop); err != nil {
			return nil, errors.Wrapf(err, "prop %d", i)
		}
	}

	out := &Built{Level: level, Named: make(map[string]core.Body)}
	for i, spec := range s.Bodies {
		b, err := spec.build()
		if err != nil {
			return nil, errors.Wrapf(err, "body %d (%s)", i, spec.Name)
		}
		if spec.Name != "" {
			if _, dup := out.Named[spec.Name]; dup {
				return nil, errors.Errorf("body %d: duplicate name %q", i, spec.Name)
			}
			out.Named[spec.Name] = b
		}
		out.Bodies = append(out.Bodies, b)
	}
	return out, nil
}

func (spec BodySpec) build() (core.Body, error) {
	pos := core.Vec{spec.Pos[0], spec.Pos[1]}

	if spec.Type == "trigger" {
		if spec.Size[0] <= 0 || spec.Size[1] <= 0 {
			return nil, errors.New("trigger needs a positive size")
		}
		r := core.Rect{X: pos[0], Y: pos[1], W: spec.Size[0], H: spec.Size[1]}
		return body.NewTrigger(r, core.ParseKind(spec.Kind)), nil
	}

	shapes, err := spec.shapes()
	if err != nil {
		return nil, err
	}

	var m *body.Mover
	var b core.Body
	switch spec.Type {
	case "", "mover":
		kind := core.ParseKind(spec.Kind)
		if kind == core.KindUnknown {
			kind = core.KindPlayer
		}
		m = body.NewMover(kind, pos, shapes...)
		b = m
	case "walker":
		w := body.NewWalker(pos, spec.Speed, shapes...)
		m, b = w.Mover, w
	default:
		return nil, errors.Errorf("unknown body type %q", spec.Type)
	}

	m.Vel = core.Vec{spec.Vel[0], spec.Vel[1]}
	m.Acc = core.Vec{spec.Acc[0], spec.Acc[1]}
	m.Terminal = core.Vec{spec.Terminal[0], spec.Terminal[1]}
	m.Drag = spec.Drag
	m.Bounce = spec.Bounce
	if spec.Solid != nil {
		m.SetSolid(*spec.Solid)
	}
	return b, nil
}

func (spec BodySpec) shapes() ([]body.HitBox, error) {
	boxes := spec.Boxes
	if len(boxes) == 0 {
		boxes = []BoxSpec{{Size: spec.Size}}
	}
	shapes := make([]body.HitBox, len(boxes))
	for i, bs := range boxes {
		hb, err := hitBox(bs)
		if err != nil {
			return nil, errors.Wrapf(err, "box %d", i)
		}
		shapes[i] = hb
	}
	return shapes, nil
}

func hitBox(bs BoxSpec) (body.HitBox, error) {
	if bs.Size[0] <= 0 || bs.Size[1] <= 0 {
		return body.HitBox{}, errors.Errorf("size must be positive, got %v", bs.Size)
	}
	mask := core.MaskAll
	if len(bs.Sides) > 0 {
		sides := make([]core.Side, len(bs.Sides))
		for i, name := range bs.Sides {
			s, err := core.ParseSide(name)
			if err != nil || s == core.SideInside {
				return body.HitBox{}, errors.Errorf("bad side %q", name)
			}
			sides[i] = s
		}
		mask = core.MaskOf(sides...)
	}
	return body.HitBox{
		Offset: core.Rect{X: bs.Offset[0], Y: bs.Offset[1], W: bs.Size[0], H: bs.Size[1]},
		Mask:   mask,
	}, nil
}

func fillTiles(level *world.Level, m string) error {
	rows := mapRows(m)
	size := level.TileSize()
	for cy, row := range rows {
		for cx, ch := range row {
			x, y := float64(cx)*size, float64(cy)*size

			var b core.Body
			switch ch {
			case '.', ' ':
				continue
			case '#':
				b = body.NewBlock(x, y, size)
			case '=':
				b = body.NewPlatform(x, y, size)
			case '~':
				surface := cy == 0 || cx >= len(rows[cy-1]) || rows[cy-1][cx] != '~'
				b = body.NewLiquid(x, y, size, surface)
			default:
				return errors.Errorf("map row %d col %d: unknown cell %q", cy, cx, ch)
			}
			if err := level.Set(cx, cy, b); err != nil {
				return errors.Wrap(err, "place tile")
			}
		}
	}
	return nil
}

// mapRows splits a map into rows, dropping the blank first line a TOML
// multi-line string starts with and the trailing newline.
func mapRows(m string) [][]byte {
	m = strings.TrimPrefix(m, "\n")
	m = strings.TrimRight(m, "\n")
	if m == "" {
		return nil
	}
	lines := strings.Split(m, "\n")
	rows := make([][]byte, len(lines))
	for i, l := range lines {
		rows[i] = []byte(strings.TrimRight(l, "\r"))
	}
	return rows
}
