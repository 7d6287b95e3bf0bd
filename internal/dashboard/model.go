// Package dashboard is a repository control page built on lightface
// dialogs. Pull, nuke and change requests share one update lock; nuke and
// change ask for confirmation in a popup first, and failures land in an
// error dialog.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/lightface/internal/repos"
	"github.com/marcus/lightface/pkg/eventbus"
	"github.com/marcus/lightface/pkg/lightface"
	"github.com/marcus/lightface/pkg/mouse"
)

const (
	errorTitle   = "Error"
	confirmTitle = "Confirm"
	workingFade  = 0.8
	maxSuggest   = 3
)

// Options configures a dashboard.
type Options struct {
	Service *repos.Service
	// Dialog is the base configuration for both dialogs.
	Dialog        lightface.Config
	NoticeTimeout time.Duration
	LogLimit      int
	Logger        *slog.Logger
	Context       context.Context
}

// Model is the dashboard page.
type Model struct {
	ctx   context.Context
	svc   *repos.Service
	log   *slog.Logger
	sched lightface.Scheduler

	bus    *eventbus.Bus
	errbox *lightface.Dialog
	popbox *lightface.Dialog

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	input    textinput.Model
	controls *mouse.HitMap

	editing     bool
	suggestions []string

	// busy is the update lock: at most one request in flight.
	busy    bool
	pending op

	notice        string
	noticeTag     int
	noticeTimeout time.Duration

	repo     repos.Repository
	actions  []repos.Action
	urls     []string
	logLimit int
	// offset scrolls the action list inside the page. The page itself is
	// always one screen, so it is never published as an eventbus.ScrollMsg.
	offset   int
	loadErr  error

	width, height int
}

// New builds the dashboard and its two dialogs.
func New(opts Options) (Model, error) {
	if opts.Service == nil {
		return Model{}, fmt.Errorf("dashboard: nil service")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.NoticeTimeout <= 0 {
		opts.NoticeTimeout = 8 * time.Second
	}
	if opts.LogLimit <= 0 {
		opts.LogLimit = 50
	}
	if opts.Dialog.Scheduler == nil {
		opts.Dialog.Scheduler = lightface.TickScheduler{}
	}
	opts.Dialog.Logger = opts.Logger

	bus := eventbus.New()

	popCfg := opts.Dialog
	popCfg.Title = confirmTitle
	popbox, err := lightface.New(popCfg, bus)
	if err != nil {
		return Model{}, fmt.Errorf("popup dialog: %w", err)
	}

	errCfg := opts.Dialog
	errCfg.Title = errorTitle
	errCfg.ZIndex = popCfg.ZIndex + 1
	errCfg.Buttons = []lightface.ButtonSpec{{Label: "OK", Style: "blue"}}
	errbox, err := lightface.New(errCfg, bus)
	if err != nil {
		return Model{}, fmt.Errorf("error dialog: %w", err)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	ti := textinput.New()
	ti.Prompt = "URL: "
	ti.Placeholder = "https://host/owner/repo.git"
	ti.CharLimit = 256
	ti.Width = 48
	ti.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:           opts.Context,
		svc:           opts.Service,
		log:           opts.Logger,
		sched:         opts.Dialog.Scheduler,
		bus:           bus,
		errbox:        errbox,
		popbox:        popbox,
		keys:          defaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		input:         ti,
		controls:      mouse.NewHitMap(),
		noticeTimeout: opts.NoticeTimeout,
		logLimit:      opts.LogLimit,
		width:         80,
		height:        24,
	}, nil
}

// Init loads the repository state.
func (m Model) Init() tea.Cmd {
	return loadState(m.svc, m.logLimit)
}

// Busy reports whether a request holds the update lock.
func (m Model) Busy() bool { return m.busy }

// Notice returns the notice line, empty once it has expired.
func (m Model) Notice() string { return m.notice }

// ErrorDialog returns the error dialog.
func (m Model) ErrorDialog() *lightface.Dialog { return m.errbox }

// Popup returns the confirmation dialog.
func (m Model) Popup() *lightface.Dialog { return m.popbox }

func (m Model) dialogOpen() bool {
	return m.errbox.IsOpen() || m.popbox.IsOpen()
}

// Close destroys both dialogs.
func (m Model) Close() {
	m.errbox.Destroy()
	m.popbox.Destroy()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.errbox.Update(msg), m.popbox.Update(msg)}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		cmds = append(cmds, m.bus.Dispatch(msg))

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m, cmd = m.handleMouse(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case resultMsg:
		var cmd tea.Cmd
		m, cmd = m.finish(msg)
		cmds = append(cmds, cmd)

	case confirmMsg:
		var cmd tea.Cmd
		m, cmd = m.confirm(msg)
		cmds = append(cmds, cmd)

	case noticeExpiredMsg:
		if msg.tag == m.noticeTag {
			m.notice = ""
		}

	case stateMsg:
		m.loadErr = msg.err
		if msg.err != nil {
			m.log.Error("load state", "err", msg.err)
			break
		}
		m.repo, m.actions, m.urls = msg.repo, msg.actions, msg.urls
		m.offset = min(m.offset, max(len(m.actions)-1, 0))
		m.suggestions = suggest(m.input.Value(), m.urls, maxSuggest)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	// An open dialog owns the keyboard.
	if m.dialogOpen() {
		return m, m.bus.Dispatch(msg)
	}

	if m.editing {
		return m.handleEditKey(msg)
	}

	switch {
	case matches(msg, m.keys.Quit):
		return m, tea.Quit
	case matches(msg, m.keys.Pull):
		return m.begin(opPull, "")
	case matches(msg, m.keys.Nuke):
		return m.begin(opNukeCheck, "")
	case matches(msg, m.keys.Change):
		if m.busy {
			return m, nil
		}
		m.editing = true
		m.suggestions = suggest(m.input.Value(), m.urls, maxSuggest)
		return m, m.input.Focus()
	case matches(msg, m.keys.Up):
		m.offset = max(m.offset-1, 0)
	case matches(msg, m.keys.Down):
		m.offset = min(m.offset+1, max(len(m.actions)-1, 0))
	case matches(msg, m.keys.Refresh):
		return m, loadState(m.svc, m.logLimit)
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case matches(msg, m.keys.Cancel):
		m.editing = false
		m.input.Blur()
		m.suggestions = nil
		return m, nil
	case matches(msg, m.keys.Submit):
		return m.begin(opChangeCheck, m.input.Value())
	case matches(msg, m.keys.Complete):
		if len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[0])
			m.input.CursorEnd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.suggestions = suggest(m.input.Value(), m.urls, maxSuggest)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.dialogOpen() {
		return m, m.bus.Dispatch(msg)
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	region := m.controls.Test(msg.X, msg.Y)
	if region == nil {
		return m, nil
	}
	switch region.ID {
	case controlPull:
		return m.begin(opPull, "")
	case controlNuke:
		return m.begin(opNukeCheck, "")
	case controlChange:
		if m.editing {
			return m.begin(opChangeCheck, m.input.Value())
		}
		if m.busy {
			return m, nil
		}
		m.editing = true
		return m, m.input.Focus()
	}
	return m, nil
}
