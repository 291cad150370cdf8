package world

import (
	"fmt"
	"math"
	"sort"

	"tileccd/internal/core"
)

// ChunkCoord addresses a chunk in chunk units
type ChunkCoord struct{ X, Y int }

// Chunk is a square block of tile slots. Empty slots are nil.
type Chunk struct {
	C     ChunkCoord
	tiles []core.Body
	count int
}

func newChunk(c ChunkCoord, size int) *Chunk {
	return &Chunk{C: c, tiles: make([]core.Body, size*size)}
}

// Grid stores static tiles for a level of cols x rows cells. Storage is split
// into chunks that are created on first write.
type Grid struct {
	tileSize  float64
	chunkSize int
	cols      int
	rows      int

	chunks map[ChunkCoord]*Chunk
	count  int
}

// NewGrid creates an empty grid
func NewGrid(cols, rows int, tileSize float64, chunkSize int) (*Grid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %dx%d", cols, rows)
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %v", tileSize)
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	return &Grid{
		tileSize:  tileSize,
		chunkSize: chunkSize,
		cols:      cols,
		rows:      rows,
		chunks:    make(map[ChunkCoord]*Chunk),
	}, nil
}

// TileSize returns the side of one cell in world units
func (g *Grid) TileSize() float64 { return g.tileSize }

// Size returns the grid size in cells
func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// Len returns the number of occupied cells
func (g *Grid) Len() int { return g.count }

// Bounds returns the level area in world units
func (g *Grid) Bounds() core.Rect {
	return core.Rect{W: float64(g.cols) * g.tileSize, H: float64(g.rows) * g.tileSize}
}

// Inside reports whether cell (cx, cy) is part of the level
func (g *Grid) Inside(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < g.cols && cy < g.rows
}

// CellOf returns the cell holding world point (x, y). The result may lie
// outside the level.
func (g *Grid) CellOf(x, y float64) (cx, cy int) {
	return int(math.Floor(x / g.tileSize)), int(math.Floor(y / g.tileSize))
}

// locate splits a cell into its chunk and the slot inside it
func (g *Grid) locate(cx, cy int) (ChunkCoord, int) {
	c := ChunkCoord{X: cx / g.chunkSize, Y: cy / g.chunkSize}
	lx, ly := cx%g.chunkSize, cy%g.chunkSize
	return c, lx + ly*g.chunkSize
}

// Set puts b in cell (cx, cy), replacing what was there. A nil b clears it.
func (g *Grid) Set(cx, cy int, b core.Body) error {
	if !g.Inside(cx, cy) {
		return fmt.Errorf("cell (%d, %d) outside %dx%d grid", cx, cy, g.cols, g.rows)
	}

	c, slot := g.locate(cx, cy)
	ch := g.chunks[c]
	if ch == nil {
		if b == nil {
			return nil
		}
		ch = newChunk(c, g.chunkSize)
		g.chunks[c] = ch
	}

	old := ch.tiles[slot]
	ch.tiles[slot] = b
	switch {
	case old == nil && b != nil:
		ch.count++
		g.count++
	case old != nil && b == nil:
		ch.count--
		g.count--
	}

	if ch.count == 0 {
		delete(g.chunks, c)
	}
	return nil
}

// At returns the body in cell (cx, cy), or nil
func (g *Grid) At(cx, cy int) core.Body {
	if !g.Inside(cx, cy) {
		return nil
	}
	c, slot := g.locate(cx, cy)
	ch := g.chunks[c]
	if ch == nil {
		return nil
	}
	return ch.tiles[slot]
}

// BlocksAround returns the 3x3 neighborhood of the cell holding (x, y),
// indexed [dx+1][dy+1]. The point is first clamped into the level; cells
// outside it are nil.
func (g *Grid) BlocksAround(x, y float64) core.Neighborhood {
	b := g.Bounds()
	x = clamp(x, 0, b.W-g.tileSize)
	y = clamp(y, 0, b.H-g.tileSize)
	cx, cy := g.CellOf(x, y)

	var n core.Neighborhood
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			n[dx+1][dy+1] = g.At(cx+dx, cy+dy)
		}
	}
	return n
}

// Covering returns the occupied cells whose tiles overlap r, in row-major order.
// The cell range is clamped to the level.
func (g *Grid) Covering(r core.Rect) []core.Body {
	x0, y0 := g.CellOf(r.X, r.Y)
	x1, y1 := g.CellOf(r.X+r.W, r.Y+r.H)
	x0, x1 = clampInt(x0, 0, g.cols-1), clampInt(x1, 0, g.cols-1)
	y0, y1 = clampInt(y0, 0, g.rows-1), clampInt(y1, 0, g.rows-1)

	var out []core.Body
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			b := g.At(cx, cy)
			if b == nil {
				continue
			}
			box, ok := core.BoundingBox(b.HitBoxes())
			if ok && box.Overlaps(r) {
				out = append(out, b)
			}
		}
	}
	return out
}

// Each calls fn for every occupied cell, chunk by chunk in coordinate order
func (g *Grid) Each(fn func(cx, cy int, b core.Body)) {
	coords := make([]ChunkCoord, 0, len(g.chunks))
	for c := range g.chunks {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})

	for _, c := range coords {
		ch := g.chunks[c]
		for slot, b := range ch.tiles {
			if b == nil {
				continue
			}
			fn(c.X*g.chunkSize+slot%g.chunkSize, c.Y*g.chunkSize+slot/g.chunkSize, b)
		}
	}
}

// Chunks returns the number of allocated chunks
func (g *Grid) Chunks() int {
	return len(g.chunks)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
