// Package effects holds the decorative animations of the portfolio page: the
// typewriter headline and the matrix rain background.
//
// Both are pure state machines. The page drives them from timers in the
// browser; the rain CLI command drives the same engine into a terminal.
package effects
