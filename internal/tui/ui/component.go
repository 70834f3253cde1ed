package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // true for 0-9 shortcuts (displayed in a different color)
}

// Component is a page shown in the main body.
// Name is the breadcrumb label; FocusTarget is the primitive that takes input
// when the page comes to the front.
type Component interface {
	tview.Primitive
	Name() string
	FocusTarget() tview.Primitive
}
