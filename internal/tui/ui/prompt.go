package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PromptMode indicates the type of prompt (command or filter).
type PromptMode int

const (
	PromptCommand PromptMode = iota
	PromptFilter
)

const historySize = 50

type promptStyle struct {
	label, title, placeholder string
}

var promptStyles = map[PromptMode]promptStyle{
	PromptCommand: {":", " Command ", "search <text> | open <name> | resync | refresh | help | quit"},
	PromptFilter:  {"/", " Filter ", "name or last message"},
}

// Prompt is the command and filter input bar. Submitted commands are kept in
// a history recalled with the arrow keys.
type Prompt struct {
	*tview.InputField
	mode     PromptMode
	history  []string
	cursor   int
	onSubmit func(mode PromptMode, text string)
	onCancel func()
}

// NewPrompt creates a new prompt input bar.
func NewPrompt(theme *Theme) *Prompt {
	p := &Prompt{InputField: tview.NewInputField()}
	p.SetBorder(true)
	p.SetBorderColor(theme.PromptBorderColor)
	p.SetBackgroundColor(theme.BgColor)
	p.SetFieldBackgroundColor(theme.BgColor)
	p.SetFieldTextColor(theme.FgColor)
	p.SetLabelColor(theme.MenuKeyColor)
	p.SetPlaceholderTextColor(theme.BorderColor)
	p.SetDoneFunc(p.done)
	p.SetInputCapture(p.recall)
	return p
}

// SetOnSubmit sets the callback for non-empty input.
func (p *Prompt) SetOnSubmit(fn func(mode PromptMode, text string)) {
	p.onSubmit = fn
}

// SetOnCancel sets the callback for Esc or an empty submission.
func (p *Prompt) SetOnCancel(fn func()) {
	p.onCancel = fn
}

// Activate resets the prompt into mode.
func (p *Prompt) Activate(mode PromptMode) {
	st := promptStyles[mode]
	p.mode = mode
	p.cursor = len(p.history)
	p.SetText("")
	p.SetLabel(st.label)
	p.SetTitle(st.title)
	p.SetPlaceholder(st.placeholder)
}

// Mode returns the current prompt mode.
func (p *Prompt) Mode() PromptMode {
	return p.mode
}

// History returns submitted commands, oldest first.
func (p *Prompt) History() []string {
	return p.history
}

func (p *Prompt) done(key tcell.Key) {
	text := strings.TrimSpace(p.GetText())
	p.SetText("")
	if key == tcell.KeyEnter && text != "" {
		if p.mode == PromptCommand {
			p.remember(text)
		}
		if p.onSubmit != nil {
			p.onSubmit(p.mode, text)
		}
		return
	}
	if (key == tcell.KeyEnter || key == tcell.KeyEscape) && p.onCancel != nil {
		p.onCancel()
	}
}

func (p *Prompt) remember(cmd string) {
	if n := len(p.history); n > 0 && p.history[n-1] == cmd {
		return
	}
	p.history = append(p.history, cmd)
	if len(p.history) > historySize {
		p.history = p.history[len(p.history)-historySize:]
	}
}

func (p *Prompt) recall(ev *tcell.EventKey) *tcell.EventKey {
	if p.mode != PromptCommand || len(p.history) == 0 {
		return ev
	}
	switch ev.Key() {
	case tcell.KeyUp:
		p.cursor = max(0, p.cursor-1)
	case tcell.KeyDown:
		p.cursor = min(len(p.history), p.cursor+1)
	default:
		return ev
	}
	if p.cursor == len(p.history) {
		p.SetText("")
	} else {
		p.SetText(p.history[p.cursor])
	}
	return nil
}
