package effects

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns fixed values so the rain's branches can be forced.
type scripted struct {
	float float64
}

func (s *scripted) Float64() float64 { return s.float }
func (s *scripted) IntN(int) int     { return 0 }

func TestRain_ColumnsFollowWidth(t *testing.T) {
	r := NewRain(140, 100, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, 10, r.Columns())
	for i := range r.Columns() {
		assert.LessOrEqual(t, r.Drop(i), 0.0)
		assert.Greater(t, r.Drop(i), -100.0)
	}

	r.Resize(28, 100)
	assert.Equal(t, 2, r.Columns())

	r.Resize(0, 0)
	assert.Zero(t, r.Columns())
	assert.Empty(t, r.Step())
}

func TestRain_StepAdvancesOneRow(t *testing.T) {
	rng := &scripted{float: 0.5}
	r := NewRain(FontSize*3, 1000, rng)
	before := r.Drop(0)

	cells := r.Step()
	require.Len(t, cells, 3)
	assert.Equal(t, before+1, r.Drop(0))
	assert.Equal(t, Glyphs[0], cells[0].Glyph)
	assert.Equal(t, FontSize*2, cells[2].X)
}

func TestRain_ColorBands(t *testing.T) {
	cases := []struct {
		b    float64
		want Color
	}{
		{0.99, White},
		{0.9, Bright},
	}
	for _, tc := range cases {
		r := NewRain(FontSize, 1000, &scripted{float: tc.b})
		assert.Equal(t, tc.want, r.Step()[0].Color)
	}

	r := NewRain(FontSize, 1000, &scripted{float: 0.5})
	c := r.Step()[0].Color
	assert.InDelta(t, 0.27, c.A, 1e-9)
	assert.Equal(t, uint8(255), c.G)
}

func TestRain_ResetsPastBottom(t *testing.T) {
	rng := &scripted{float: 0.99}
	r := NewRain(FontSize, 5*FontSize, rng)
	// 0.99 * -100 = -99: walk the drop past the bottom edge.
	for r.Drop(0)*FontSize <= float64(5*FontSize) {
		r.Step()
	}
	r.Step()
	assert.Equal(t, 1.0, r.Drop(0))

	rng.float = 0.5
	r = NewRain(FontSize, 5*FontSize, rng)
	for range 200 {
		r.Step()
	}
	assert.Greater(t, r.Drop(0)*FontSize, float64(5*FontSize), "no reset below the threshold")
}

func TestColor_CSS(t *testing.T) {
	assert.Equal(t, "#00ff88", Bright.CSS())
	assert.Equal(t, "rgba(10, 10, 15, 0.05)", Background.CSS())
}

func TestTerminal_Frame(t *testing.T) {
	term := NewTerminal(8, 4, rand.New(rand.NewPCG(7, 7)))
	var frame string
	for range 200 {
		frame = term.Frame()
	}
	require.True(t, strings.HasPrefix(frame, ansiHome))
	assert.Equal(t, 3, strings.Count(frame, "\n"))
}

func TestTerminal_RunStopsOnCancel(t *testing.T) {
	term := NewTerminal(4, 2, rand.New(rand.NewPCG(1, 1)))
	ctx, cancel := context.WithTimeout(context.Background(), 3*FrameInterval)
	defer cancel()

	var buf bytes.Buffer
	start := time.Now()
	require.NoError(t, term.Run(ctx, &buf))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, buf.String(), ansiClear)
}
