// Package nav resolves in-page navigation: where a link scrolls to, which
// section is highlighted while scrolling, and the mobile menu toggle.
package nav

import "sync"

const (
	// HeaderOffset keeps a scrolled-to section clear of the fixed header.
	HeaderOffset = 80
	// ProbeOffset is how far below the viewport top the active section is sampled.
	ProbeOffset = 200
)

// Section is a page section with its layout box.
type Section struct {
	ID     string `json:"id"`
	Top    int    `json:"top"`
	Height int    `json:"height"`
}

// Link is a navigation entry pointing at a section.
type Link struct {
	Label   string `json:"label"`
	Section string `json:"section"`
}

// Links are the page's navigation entries in display order.
var Links = []Link{
	{Label: "Inicio", Section: "home"},
	{Label: "Sobre mi", Section: "about"},
	{Label: "Proyectos", Section: "projects"},
	{Label: "Visitante", Section: "visitor"},
	{Label: "Mapa", Section: "location"},
	{Label: "Contacto", Section: "contact"},
}

// ScrollTarget is the scroll position that brings s into view. ok is false
// when no section has the given id.
func ScrollTarget(sections []Section, id string) (top int, ok bool) {
	for _, s := range sections {
		if s.ID == id {
			return s.Top - HeaderOffset, true
		}
	}
	return 0, false
}

// Active returns the id of the section under the probe line for the given
// scroll position. When several sections contain it the last one wins. It
// returns "" when none does, and the caller keeps the previous highlight.
func Active(scrollY int, sections []Section) string {
	probe := scrollY + ProbeOffset
	active := ""
	for _, s := range sections {
		if probe >= s.Top && probe < s.Top+s.Height {
			active = s.ID
		}
	}
	return active
}

// Menu is the mobile navigation drawer.
type Menu struct {
	mu   sync.Mutex
	open bool
}

// Toggle flips the drawer and returns the new state.
func (m *Menu) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = !m.open
	return m.open
}

// Follow is called when a navigation link is used; it closes the drawer.
func (m *Menu) Follow() { m.Close() }

// Close shuts the drawer.
func (m *Menu) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
}

func (m *Menu) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
