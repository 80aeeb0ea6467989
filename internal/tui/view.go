package tui

// FocusArea represents which panel receives key presses.
type FocusArea int

const (
	FocusInput FocusArea = iota
	FocusSearch
	FocusOptions
)

// next cycles input, search, options.
func (f FocusArea) next() FocusArea {
	return (f + 1) % 3
}

// typing reports whether plain keys edit text in this area.
func (f FocusArea) typing() bool {
	return f == FocusInput || f == FocusSearch
}
