package effects

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Rain geometry and timing.
const (
	FontSize      = 14
	FrameInterval = 50 * time.Millisecond
	// FadeAlpha is the opacity of the background wash painted every frame.
	FadeAlpha = 0.05
)

// Glyphs are the characters the rain draws from.
var Glyphs = []rune("アイウエオカキクケコRESTトナニヌネノハヒフRESTムメモヤユヨラリルレロワヲRESTン0123456RESTCDEF<>REST}[]();:=REST&#@!")

// Color is an RGBA paint colour.
type Color struct {
	R, G, B uint8
	A       float64
}

// CSS formats c for a canvas fillStyle.
func (c Color) CSS() string {
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", c.R, c.G, c.B, c.A)
}

var (
	Background = Color{R: 10, G: 10, B: 15, A: FadeAlpha}
	White      = Color{R: 255, G: 255, B: 255, A: 1}
	Bright     = Color{R: 0, G: 255, B: 136, A: 1}
)

// Cell is one glyph painted in a frame.
type Cell struct {
	Column int
	X, Y   int
	Glyph  rune
	Color  Color
}

// Random is the randomness the rain needs. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Rain is the matrix rain engine: one falling drop per column.
type Rain struct {
	width, height int
	rng           Random
	drops         []float64
}

// NewRain sizes the rain to a width x height pixel surface. A nil rng uses
// the global source.
func NewRain(width, height int, rng Random) *Rain {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	r := &Rain{rng: rng}
	r.Resize(width, height)
	return r
}

// Resize changes the surface and restarts every drop above the top edge.
func (r *Rain) Resize(width, height int) {
	r.width, r.height = width, height
	columns := 0
	if width > 0 {
		columns = width / FontSize
	}
	r.drops = make([]float64, columns)
	for i := range r.drops {
		r.drops[i] = r.rng.Float64() * -100
	}
}

// Columns is the number of drops.
func (r *Rain) Columns() int { return len(r.drops) }

// Drop returns the row position of column i.
func (r *Rain) Drop(i int) float64 { return r.drops[i] }

// Step advances every drop by one row and returns the glyphs painted.
func (r *Rain) Step() []Cell {
	cells := make([]Cell, 0, len(r.drops))
	for i := range r.drops {
		glyph := Glyphs[r.rng.IntN(len(Glyphs))]

		var color Color
		switch b := r.rng.Float64(); {
		case b > 0.95:
			color = White
		case b > 0.8:
			color = Bright
		default:
			color = Color{R: 0, G: 255, B: 136, A: 0.12 + r.rng.Float64()*0.3}
		}

		y := r.drops[i] * FontSize
		cells = append(cells, Cell{
			Column: i,
			X:      i * FontSize,
			Y:      int(y),
			Glyph:  glyph,
			Color:  color,
		})

		if y > float64(r.height) && r.rng.Float64() > 0.975 {
			r.drops[i] = 0
		}
		r.drops[i]++
	}
	return cells
}
