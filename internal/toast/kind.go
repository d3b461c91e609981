package toast

// Kind is the semantic category of a toast. It selects the icon and styling.
type Kind string

const (
	Success Kind = "success"
	Info    Kind = "info"
	Warning Kind = "warning"
	Error   Kind = "error"
)

var icons = map[Kind]string{
	Success: "✓",
	Info:    "ℹ",
	Warning: "⚠",
	Error:   "✕",
}

// Icon returns the glyph for k. Unknown kinds use the info glyph.
func (k Kind) Icon() string {
	if icon, ok := icons[k]; ok {
		return icon
	}
	return icons[Info]
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	_, ok := icons[k]
	return ok
}
