package ui

import "github.com/rivo/tview"

// Pages is a stack-based page manager wrapping tview.Pages.
// It provides push/pop semantics over registered components and notifies
// on stack changes.
type Pages struct {
	*tview.Pages
	components map[string]Component
	stack      []string
	onChange   func(stack []string)
}

// NewPages creates a new stack-based page manager.
func NewPages() *Pages {
	return &Pages{
		Pages:      tview.NewPages(),
		components: make(map[string]Component),
	}
}

// Add registers a component under id. It stays hidden until pushed.
func (p *Pages) Add(id string, c Component) {
	p.components[id] = c
	p.AddPage(id, c, true, false)
}

// SetOnChange sets a callback that fires with the breadcrumb names when the
// stack changes.
func (p *Pages) SetOnChange(fn func(names []string)) {
	p.onChange = fn
}

// Push adds a page to the top of the stack and shows it.
// Pushing the page that is already on top is a no-op.
func (p *Pages) Push(id string) {
	if p.Current() == id {
		return
	}
	if len(p.stack) > 0 {
		p.HidePage(p.stack[len(p.stack)-1])
	}
	p.stack = append(p.stack, id)
	p.ShowPage(id)
	p.SendToFront(id)
	p.notify()
}

// Pop removes the top page and shows the previous one. The root page is
// never popped. Returns the id of the popped page, or empty.
func (p *Pages) Pop() string {
	if len(p.stack) <= 1 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	current := p.stack[len(p.stack)-1]
	p.ShowPage(current)
	p.SendToFront(current)
	p.notify()
	return top
}

// Current returns the id of the current (top) page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Top returns the component on top of the stack, or nil.
func (p *Pages) Top() Component {
	return p.components[p.Current()]
}

// Stack returns a copy of the current page id stack.
func (p *Pages) Stack() []string {
	s := make([]string, len(p.stack))
	copy(s, p.stack)
	return s
}

// Depth returns the current stack depth.
func (p *Pages) Depth() int {
	return len(p.stack)
}

// Reset clears the stack and shows only the given page.
func (p *Pages) Reset(id string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{id}
	p.ShowPage(id)
	p.SendToFront(id)
	p.notify()
}

// Refresh re-sends the breadcrumb names, for when a component renamed itself.
func (p *Pages) Refresh() {
	p.notify()
}

func (p *Pages) notify() {
	if p.onChange == nil {
		return
	}
	names := make([]string, 0, len(p.stack))
	for _, id := range p.stack {
		if c, ok := p.components[id]; ok {
			names = append(names, c.Name())
		} else {
			names = append(names, id)
		}
	}
	p.onChange(names)
}
