package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var page = []Section{
	{ID: "home", Top: 0, Height: 800},
	{ID: "about", Top: 800, Height: 600},
	{ID: "projects", Top: 1400, Height: 1000},
	{ID: "contact", Top: 2400, Height: 500},
}

func TestActive(t *testing.T) {
	cases := []struct {
		scrollY int
		want    string
	}{
		{0, "home"},
		{599, "home"},
		{600, "about"},
		{1199, "about"},
		{1200, "projects"},
		{2600, "contact"},
		{2700, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Active(tc.scrollY, page), "scrollY=%d", tc.scrollY)
	}
}

func TestActive_OverlapLastWins(t *testing.T) {
	sections := []Section{
		{ID: "outer", Top: 0, Height: 1000},
		{ID: "inner", Top: 100, Height: 200},
	}
	assert.Equal(t, "inner", Active(0, sections))
}

func TestScrollTarget(t *testing.T) {
	top, ok := ScrollTarget(page, "projects")
	assert.True(t, ok)
	assert.Equal(t, 1320, top)

	_, ok = ScrollTarget(page, "missing")
	assert.False(t, ok)
}

func TestMenu(t *testing.T) {
	var m Menu
	assert.False(t, m.Open())
	assert.True(t, m.Toggle())
	assert.False(t, m.Toggle())

	m.Toggle()
	m.Follow()
	assert.False(t, m.Open())

	m.Toggle()
	m.Close()
	assert.False(t, m.Open())
}
