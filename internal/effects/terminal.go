package effects

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"
)

const (
	ansiHome   = "\x1b[H"
	ansiClear  = "\x1b[2J"
	ansiReset  = "\x1b[0m"
	ansiWhite  = "\x1b[1;97m"
	ansiBright = "\x1b[92m"
	ansiDim    = "\x1b[2;32m"
)

type termCell struct {
	glyph rune
	level float64
}

// Terminal renders rain frames into a cols x rows character grid. Each
// terminal cell stands for one FontSize square of the canvas.
type Terminal struct {
	rain       *Rain
	cols, rows int
	grid       [][]termCell
}

// NewTerminal builds a terminal renderer of the given size.
func NewTerminal(cols, rows int, rng Random) *Terminal {
	t := &Terminal{
		rain: NewRain(cols*FontSize, rows*FontSize, rng),
		cols: cols,
		rows: rows,
		grid: make([][]termCell, rows),
	}
	for i := range t.grid {
		t.grid[i] = make([]termCell, cols)
	}
	return t
}

// Frame advances the rain one step and returns the screen contents.
func (t *Terminal) Frame() string {
	for _, row := range t.grid {
		for i := range row {
			row[i].level *= 1 - FadeAlpha*4
		}
	}
	for _, c := range t.rain.Step() {
		row := c.Y / FontSize
		if row < 0 || row >= t.rows || c.Column >= t.cols {
			continue
		}
		t.grid[row][c.Column] = termCell{glyph: c.Glyph, level: c.Color.A}
		if c.Color == White {
			t.grid[row][c.Column].level = 2
		}
	}

	var b strings.Builder
	b.WriteString(ansiHome)
	for r, row := range t.grid {
		for _, cell := range row {
			switch {
			case cell.level > 1:
				b.WriteString(ansiWhite)
			case cell.level > 0.5:
				b.WriteString(ansiBright)
			case cell.level > 0.08:
				b.WriteString(ansiDim)
			default:
				b.WriteByte(' ')
				continue
			}
			b.WriteRune(cell.glyph)
			b.WriteString(ansiReset)
		}
		if r < t.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Run draws frames to w every FrameInterval until ctx is done.
func (t *Terminal) Run(ctx context.Context, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(ansiClear); err != nil {
		return err
	}
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	for {
		if _, err := bw.WriteString(t.Frame()); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			_, _ = bw.WriteString(ansiReset + "\n")
			_ = bw.Flush()
			return nil
		case <-ticker.C:
		}
	}
}
