package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// FlashLevel represents the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// TTL returns how long a message of this level stays on screen.
func (l FlashLevel) TTL() time.Duration {
	switch l {
	case FlashWarn:
		return 8 * time.Second
	case FlashErr:
		return 10 * time.Second
	default:
		return 5 * time.Second
	}
}

func (l FlashLevel) color(t *Theme) tcell.Color {
	switch l {
	case FlashWarn:
		return t.FlashWarnColor
	case FlashErr:
		return t.FlashErrColor
	default:
		return t.FlashInfoColor
	}
}

// FlashMessage is a notification shown until Expires.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// Live reports whether the message should still be shown at now.
func (m FlashMessage) Live(now time.Time) bool {
	return m.Text != "" && now.Before(m.Expires)
}

// FlashModel keeps the latest notification and announces changes on a
// buffered channel. Announcements are dropped when the buffer is full;
// readers always consult Current.
type FlashModel struct {
	mu      sync.Mutex
	current FlashMessage
	watchCh chan FlashMessage
}

// NewFlashModel creates an empty flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{watchCh: make(chan FlashMessage, 8)}
}

func (f *FlashModel) Info(msg string) { f.publish(FlashInfo, msg) }
func (f *FlashModel) Warn(msg string) { f.publish(FlashWarn, msg) }
func (f *FlashModel) Err(err error)   { f.publish(FlashErr, err.Error()) }

// Clear drops the current message.
func (f *FlashModel) Clear() { f.store(FlashMessage{}) }

func (f *FlashModel) publish(level FlashLevel, msg string) {
	f.store(FlashMessage{Text: msg, Level: level, Expires: time.Now().Add(level.TTL())})
}

func (f *FlashModel) store(m FlashMessage) {
	f.mu.Lock()
	f.current = m
	f.mu.Unlock()
	select {
	case f.watchCh <- m:
	default:
	}
}

// Current returns the message on display, if any.
func (f *FlashModel) Current() (FlashMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.current.Live(time.Now())
}

// Watch returns the change channel. A zero message means cleared.
func (f *FlashModel) Watch() <-chan FlashMessage {
	return f.watchCh
}

// FlashBar displays the current flash message.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &FlashBar{TextView: tv, theme: theme}
}

// Render shows what model currently holds, or nothing.
func (fb *FlashBar) Render(model *FlashModel) {
	fb.Clear()
	msg, ok := model.Current()
	if !ok {
		return
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s[-]", colorName(msg.Level.color(fb.theme)), tview.Escape(msg.Text))
}
