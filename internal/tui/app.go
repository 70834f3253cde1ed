package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/status"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/matheus3301/huddle/internal/tui/client"
	"github.com/matheus3301/huddle/internal/tui/keys"
	"github.com/matheus3301/huddle/internal/tui/model"
	"github.com/matheus3301/huddle/internal/tui/ui"
	"github.com/matheus3301/huddle/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const (
	pageConversations = "conversations"
	pageThread        = "thread"
	pageSearch        = "search"
	pageHelp          = "help"
	pageDetails       = "details"

	refreshInterval = 5 * time.Second
	requestTimeout  = 10 * time.Second
)

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	pages    *ui.Pages
	body     *tview.Flex
	info     *ui.WorkspaceInfo
	menu     *ui.Menu
	logo     *ui.Logo
	crumbs   *ui.Crumbs
	flash    *ui.FlashModel
	flashBar *ui.FlashBar
	prompt   *ui.Prompt
	registry *keys.Registry

	vm        *model.ViewModel
	events    <-chan bus.Event
	unsub     func()
	logger    *zap.Logger
	workspace string

	convList *views.ConversationList
	thread   *views.MessageThread
	searchV  *views.SearchView
	help     *views.HelpView
	details  *views.ConversationInfo

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application for userID in workspace. Conversations
// are synchronized through the daemon behind c.
func NewApp(c *client.Client, workspace, userID string, logger *zap.Logger, opts ...intsync.Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	b := bus.New()
	events, unsub := b.Subscribe("sync.", 32)
	s := intsync.New(client.NewRemote(c, logger), b, logger, opts...)
	vm := model.NewViewModel(c, s, userID)

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		pages:     ui.NewPages(),
		info:      ui.NewWorkspaceInfo(theme),
		menu:      ui.NewMenu(theme),
		logo:      ui.NewLogo(theme),
		crumbs:    ui.NewCrumbs(theme),
		flash:     ui.NewFlashModel(),
		flashBar:  ui.NewFlashBar(theme),
		prompt:    ui.NewPrompt(theme),
		registry:  keys.NewRegistry(),
		vm:        vm,
		events:    events,
		unsub:     unsub,
		logger:    logger.Named("tui"),
		workspace: workspace,
		convList:  views.NewConversationList(theme),
		thread:    views.NewMessageThread(theme, userID),
		searchV:   views.NewSearchView(theme, vm.ConversationName),
		help:      views.NewHelpView(theme),
		details:   views.NewConversationInfo(theme),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddView(pageConversations, &keys.Action{
		Key: tcell.KeyEnter, Label: "Enter", Description: "Open", Visible: true,
		Handler: func() { a.openSelected() },
	})
	a.registry.AddView(pageConversations, &keys.Action{
		Key: tcell.KeyRune, Rune: '/', Description: "Filter", Visible: true,
		Handler: func() { a.activatePrompt(ui.PromptFilter) },
	})
	a.registry.AddView(pageConversations, &keys.Action{
		Key: tcell.KeyRune, Rune: 's', Description: "Sort", Visible: true,
		Handler: func() { a.flash.Info("Sorted by " + a.convList.CycleSort().String()) },
	})
	a.registry.AddView(pageConversations, &keys.Action{
		Key: tcell.KeyRune, Rune: '0', Description: "All", Visible: true, Numeric: true,
		Handler: func() { a.convList.ClearFilter() },
	})
	for n := 1; n <= 9; n++ {
		a.registry.AddView(pageConversations, &keys.Action{
			Key: tcell.KeyRune, Rune: rune('0' + n), Label: "1-9", Description: "Jump",
			Visible: n == 1, Numeric: true,
			Handler: func() { a.openByIndex(n) },
		})
	}

	a.registry.AddView(pageThread, &keys.Action{
		Key: tcell.KeyRune, Rune: 'i', Description: "Compose", Visible: true,
		Handler: func() { a.app.SetFocus(a.thread.Composer()) },
	})
	a.registry.AddView(pageThread, &keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Description: "Resync", Visible: true,
		Handler: func() { a.resync() },
	})
	a.registry.AddView(pageThread, &keys.Action{
		Key: tcell.KeyRune, Rune: 'd', Description: "Details", Visible: true,
		Handler: func() { a.showDetails() },
	})

	a.registry.AddView(pageSearch, &keys.Action{
		Key: tcell.KeyEnter, Label: "Enter", Description: "Open", Visible: true,
		Handler: func() { a.openSearchResult() },
	})
	a.registry.AddView(pageSearch, &keys.Action{
		Key: tcell.KeyTab, Label: "Tab", Description: "Edit query", Visible: true,
		Handler: func() { a.app.SetFocus(a.searchV.Input()) },
	})

	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyEscape, Label: "Esc", Description: "Back", Visible: true,
		Handler: func() { a.escape() },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: ':', Description: "Command", Visible: true,
		Handler: func() { a.activatePrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyCtrlF, Label: "Ctrl-F", Description: "Search", Visible: true,
		Handler: func() { a.showSearch("") },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: '?', Description: "Help", Visible: true,
		Handler: func() { a.push(pageHelp) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q', Description: "Quit", Visible: true,
		Handler: func() {
			if a.pages.Depth() > 1 {
				a.back()
				return
			}
			a.Stop()
		},
	})
}

func (a *App) setupCallbacks() {
	a.pages.SetOnChange(func(names []string) {
		a.crumbs.Update(names)
		a.menu.Update(a.registry.Hints(a.pages.Current()))
	})

	a.prompt.SetOnCancel(a.closePrompt)
	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.closePrompt()
		if mode == ui.PromptFilter {
			a.convList.SetFilter(text)
			return
		}
		a.runCommand(ParseCommand(text))
	})

	a.thread.SetOnSend(func(text string) {
		go func() {
			ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
			defer cancel()
			err := a.vm.Send(ctx, text)
			a.app.QueueUpdateDraw(func() {
				switch {
				case err == nil:
					a.thread.ConfirmSent(text)
				case errors.Is(err, intsync.ErrEmptyMessage):
					a.flash.Warn("Nothing to send")
				default:
					a.flash.Err(fmt.Errorf("send failed, message kept: %w", err))
				}
			})
		}()
	})

	a.searchV.SetOnQuery(func(query string) {
		go func() {
			ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
			defer cancel()
			results, err := a.vm.Search(ctx, query)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					a.flash.Err(fmt.Errorf("search failed: %w", err))
					return
				}
				a.searchV.Update(query, results)
				if len(results) == 0 {
					a.flash.Info("No matches")
					return
				}
				a.app.SetFocus(a.searchV.Results())
			})
		}()
	})
}

func (a *App) setupLayout() {
	a.pages.Add(pageConversations, a.convList)
	a.pages.Add(pageThread, a.thread)
	a.pages.Add(pageSearch, a.searchV)
	a.pages.Add(pageHelp, a.help)
	a.pages.Add(pageDetails, a.details)

	header := tview.NewFlex().
		AddItem(a.info, 42, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(a.logo, 14, 0, false)

	a.body = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 7, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.app.SetRoot(a.body, true)
	a.pages.Reset(pageConversations)
	a.focusTop()
	a.updateInfo()

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		focused := a.app.GetFocus()
		if focused == a.prompt.InputField {
			return event
		}
		// Text inputs keep their keys; only Esc leaves them.
		if _, ok := focused.(*tview.InputField); ok {
			if event.Key() == tcell.KeyEscape {
				a.escape()
				return nil
			}
			return event
		}
		if a.registry.HandleEvent(a.pages.Current(), event) {
			return nil
		}
		return event
	})
}

func (a *App) push(page string) {
	a.pages.Push(page)
	a.focusTop()
}

func (a *App) focusTop() {
	if c := a.pages.Top(); c != nil {
		a.app.SetFocus(c.FocusTarget())
	}
}

// back pops the current page. Leaving the thread closes the conversation.
func (a *App) back() {
	if a.pages.Pop() == pageThread {
		a.vm.Close()
		a.thread.SetConversation("", "")
		a.updateInfo()
	}
	a.focusTop()
}

func (a *App) escape() {
	switch {
	case a.app.GetFocus() == a.thread.Composer():
		a.app.SetFocus(a.thread.Messages())
	case a.pages.Current() == pageConversations && a.convList.Filter() != "":
		a.convList.ClearFilter()
	default:
		a.back()
	}
}

func (a *App) activatePrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.body.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt.InputField)
}

func (a *App) closePrompt() {
	a.body.ResizeItem(a.prompt, 0, 0)
	a.focusTop()
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "":
	case "quit":
		a.Stop()
	case "help":
		a.push(pageHelp)
	case "search":
		a.showSearch(cmd.Args)
	case "open":
		conv, ok := a.convList.FindByName(cmd.Args)
		if !ok {
			a.flash.Warn(fmt.Sprintf("No conversation matches %q", cmd.Args))
			return
		}
		a.openConversation(conv)
	case "resync":
		a.resync()
	case "refresh":
		go a.refresh()
	default:
		a.flash.Warn("Unknown command: " + cmd.Name)
	}
}

func (a *App) openSelected() {
	if id := a.convList.SelectedConversation(); id != "" {
		if conv, ok := a.convList.Lookup(id); ok {
			a.openConversation(conv)
		}
	}
}

func (a *App) openByIndex(n int) {
	if id := a.convList.ConversationByIndex(n); id != "" {
		if conv, ok := a.convList.Lookup(id); ok {
			a.openConversation(conv)
		}
	}
}

func (a *App) openSearchResult() {
	convID, _ := a.searchV.SelectedResult()
	if convID == "" {
		return
	}
	conv, ok := a.vm.Conversation(convID)
	if !ok {
		conv = intsync.Conversation{ID: convID}
	}
	a.openConversation(conv)
}

// openConversation shows the thread at once and loads it in the background.
// The thread fills in through the synchronizer's change feed.
func (a *App) openConversation(conv intsync.Conversation) {
	a.thread.SetConversation(conv.ID, conv.Name)
	a.pages.Reset(pageConversations)
	a.push(pageThread)

	go func() {
		err := a.vm.Open(a.ctx, conv.ID)
		var fetchErr *intsync.FetchError
		switch {
		case err == nil, errors.Is(err, intsync.ErrSuperseded), errors.As(err, &fetchErr):
			// Fetch failures arrive on the bus.
		default:
			a.app.QueueUpdateDraw(func() { a.flash.Err(err) })
		}
	}()
}

func (a *App) resync() {
	if a.pages.Current() != pageThread {
		return
	}
	a.flash.Info("Resyncing...")
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
		defer cancel()
		err := a.vm.Resync(ctx)
		a.app.QueueUpdateDraw(func() {
			switch {
			case err == nil:
				a.flash.Info("Live feed restored")
			case errors.Is(err, intsync.ErrSuperseded):
			default:
				a.flash.Err(fmt.Errorf("resync failed: %w", err))
			}
			a.updateInfo()
		})
	}()
}

func (a *App) showSearch(query string) {
	a.push(pageSearch)
	if query == "" {
		return
	}
	a.searchV.SetQuery(query)
	a.searchV.Submit()
}

func (a *App) showDetails() {
	s := a.vm.Synchronizer()
	convID := s.ConversationID()
	if convID == "" {
		return
	}
	conv, ok := a.vm.Conversation(convID)
	if !ok {
		conv = intsync.Conversation{ID: convID, Name: a.thread.Name()}
	}
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
		defer cancel()
		members, err := a.vm.Members(ctx, convID)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.flash.Err(fmt.Errorf("members: %w", err))
			}
			a.details.Update(&views.ConversationDetails{
				Conversation: conv,
				Members:      members,
				State:        string(s.State()),
				Degraded:     s.Degraded(),
				Loaded:       len(s.Messages()),
			})
			a.push(pageDetails)
		})
	}()
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	go a.refresh()
	go a.watchSync()
	go a.watchFlash()
	go a.refreshLoop()

	err := a.app.Run()
	a.cancel()
	a.vm.Close()
	a.unsub()
	return err
}

func (a *App) refresh() {
	ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
	defer cancel()

	if err := a.vm.LoadStatus(ctx); err != nil {
		a.logger.Debug("status load failed", zap.Error(err))
	}
	convErr := a.vm.LoadConversations(ctx)
	a.app.QueueUpdateDraw(func() {
		if convErr != nil {
			if a.ctx.Err() == nil {
				a.flash.Err(fmt.Errorf("load conversations: %w", convErr))
			}
		} else {
			a.convList.Update(a.vm.Conversations())
		}
		a.updateInfo()
	})
}

func (a *App) refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.refresh()
		case <-a.ctx.Done():
			return
		}
	}
}

// watchSync redraws the thread on every view change and turns synchronizer
// events into flash messages.
func (a *App) watchSync() {
	s := a.vm.Synchronizer()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-s.Changes():
			a.app.QueueUpdateDraw(func() {
				if id := a.thread.ConversationID(); id != "" && id == s.ConversationID() {
					a.thread.Update(s.Messages())
				}
				a.updateInfo()
			})
		case evt := <-a.events:
			a.app.QueueUpdateDraw(func() { a.handleSyncEvent(evt) })
		}
	}
}

func (a *App) handleSyncEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindSyncDegraded:
		a.logger.Warn("live feed degraded", zap.String("conversation", evt.Topic), zap.Any("cause", evt.Payload))
		a.flash.Warn("Live feed lost, press r to resync")
	case bus.KindSyncFetchFailed:
		if err, ok := evt.Payload.(error); ok {
			a.flash.Err(err)
		}
	case bus.KindSyncStateChanged:
		if ch, ok := evt.Payload.(status.StatusChange); ok {
			a.logger.Debug("sync state", zap.String("conversation", ch.ConversationID),
				zap.String("from", string(ch.From)), zap.String("to", string(ch.To)))
		}
	}
	a.updateInfo()
}

func (a *App) watchFlash() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.flash.Watch():
			a.app.QueueUpdateDraw(func() { a.flashBar.Render(a.flash) })
			// Re-render at expiry; by then the bar shows a newer message or nothing.
			if msg, ok := a.flash.Current(); ok {
				time.AfterFunc(time.Until(msg.Expires)+10*time.Millisecond, func() {
					a.app.QueueUpdateDraw(func() { a.flashBar.Render(a.flash) })
				})
			}
		}
	}
}

func (a *App) updateInfo() {
	s := a.vm.Synchronizer()
	data := &ui.WorkspaceData{
		Workspace: a.workspace,
		User:      a.vm.UserID(),
		State:     string(s.State()),
		Degraded:  s.Degraded(),
	}
	if st := a.vm.Status(); st != nil {
		data.Conversations = st.ConversationCount
		data.Messages = st.MessageCount
		data.Subscribers = st.Subscribers
		data.Uptime = time.Duration(st.UptimeMs) * time.Millisecond
	}
	a.info.Update(data)
	a.logo.SetFeed(s.State(), data.Degraded)
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
