package effects

import (
	"encoding/json"
	"time"
)

// Typewriter delays.
const (
	TypeDelay   = 100 * time.Millisecond
	DeleteDelay = 50 * time.Millisecond
	HoldDelay   = 2000 * time.Millisecond
	NextDelay   = 500 * time.Millisecond
)

// Step is one frame of the typewriter: the text to show and how long to wait
// before the next frame.
type Step struct {
	Text  string
	Delay time.Duration
}

// MarshalJSON encodes the delay in milliseconds for the browser.
func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text    string `json:"text"`
		DelayMS int64  `json:"delay_ms"`
	}{s.Text, s.Delay.Milliseconds()})
}

// Typewriter types each word, holds it, deletes it and moves on, forever.
type Typewriter struct {
	words    [][]rune
	word     int
	chars    int
	deleting bool
}

// NewTypewriter cycles through words. It panics if words is empty.
func NewTypewriter(words []string) *Typewriter {
	if len(words) == 0 {
		panic("effects: typewriter needs at least one word")
	}
	tw := &Typewriter{}
	for _, w := range words {
		tw.words = append(tw.words, []rune(w))
	}
	return tw
}

// Next advances one frame.
func (tw *Typewriter) Next() Step {
	word := tw.words[tw.word]

	if tw.deleting {
		tw.chars--
	} else {
		tw.chars++
	}
	if tw.chars < 0 {
		tw.chars = 0
	}
	if tw.chars > len(word) {
		tw.chars = len(word)
	}
	step := Step{Text: string(word[:tw.chars]), Delay: TypeDelay}
	if tw.deleting {
		step.Delay = DeleteDelay
	}

	switch {
	case !tw.deleting && tw.chars == len(word):
		step.Delay = HoldDelay
		tw.deleting = true
	case tw.deleting && tw.chars == 0:
		tw.deleting = false
		tw.word = (tw.word + 1) % len(tw.words)
		step.Delay = NextDelay
	}
	return step
}

// Cycle returns the frames of one full pass over every word, starting from
// a fresh typewriter.
func Cycle(words []string) []Step {
	tw := NewTypewriter(words)
	var steps []Step
	for {
		s := tw.Next()
		steps = append(steps, s)
		if tw.word == 0 && !tw.deleting && tw.chars == 0 {
			return steps
		}
	}
}
