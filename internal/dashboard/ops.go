package dashboard

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/lightface/internal/repos"
	"github.com/marcus/lightface/pkg/lightface"
)

type op int

const (
	opPull op = iota
	opNukeCheck
	opNuke
	opChangeCheck
	opChange
)

func (o op) String() string {
	switch o {
	case opPull:
		return "pull"
	case opNukeCheck:
		return "nuke-check"
	case opNuke:
		return "nuke"
	case opChangeCheck:
		return "change-check"
	case opChange:
		return "change"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// confirmed reports the operation run when a check's confirm button is pressed.
func (o op) confirmed() op {
	if o == opNukeCheck {
		return opNuke
	}
	return opChange
}

type resultMsg struct {
	op      op
	url     string
	notice  string
	confirm repos.Confirmation
	err     error
}

// confirmMsg is sent by the popup's confirm button.
type confirmMsg struct {
	op  op
	url string
}

type noticeExpiredMsg struct {
	tag int
}

type stateMsg struct {
	repo    repos.Repository
	actions []repos.Action
	urls    []string
	err     error
}

// call runs o against the service off the update loop.
func call(ctx context.Context, svc *repos.Service, o op, url string) tea.Cmd {
	return func() tea.Msg {
		res := resultMsg{op: o, url: url}
		switch o {
		case opPull:
			res.notice, res.err = svc.Pull(ctx)
		case opNukeCheck:
			res.confirm, res.err = svc.NukeCheck(ctx)
		case opNuke:
			res.notice, res.err = svc.Nuke(ctx)
		case opChangeCheck:
			res.confirm, res.err = svc.ChangeCheck(ctx, url)
		case opChange:
			res.notice, res.err = svc.Change(ctx, url)
		}
		return res
	}
}

func loadState(svc *repos.Service, limit int) tea.Cmd {
	return func() tea.Msg {
		var msg stateMsg
		store := svc.Store()
		if msg.repo, msg.err = store.Repository(); msg.err != nil {
			return msg
		}
		if msg.actions, msg.err = store.Actions(limit); msg.err != nil {
			return msg
		}
		msg.urls, msg.err = store.KnownURLs()
		return msg
	}
}

// begin takes the update lock and starts o. A held lock drops the request.
func (m Model) begin(o op, url string) (Model, tea.Cmd) {
	if m.busy {
		m.log.Debug("operation dropped, update in progress", "op", o)
		return m, nil
	}
	m.busy = true
	m.pending = o
	m.log.Info("operation started", "op", o)
	return m, tea.Batch(m.spinner.Tick, call(m.ctx, m.svc, o, url))
}

// confirmButtons builds the popup buttons for a check result.
func confirmButtons(res resultMsg) []lightface.ButtonSpec {
	next := confirmMsg{op: res.op.confirmed(), url: res.url}
	return []lightface.ButtonSpec{
		{
			Label: res.confirm.Confirm,
			Style: "red",
			OnClick: func(d *lightface.Dialog) tea.Cmd {
				// Freeze the footer now so Cancel cannot race the request.
				d.DisableButtons(true)
				return func() tea.Msg { return next }
			},
		},
		{Label: res.confirm.Cancel, Style: "blue"},
	}
}

// finish releases the lock and routes the result to the page or a dialog.
func (m Model) finish(res resultMsg) (Model, tea.Cmd) {
	m.busy = false
	var cmds []tea.Cmd

	if res.err != nil {
		m.log.Warn("operation failed", "op", res.op, "err", res.err)
	} else {
		m.log.Info("operation finished", "op", res.op)
	}

	switch res.op {
	case opPull:
		if res.err != nil {
			cmds = append(cmds, m.showError(res.err))
		} else {
			var cmd tea.Cmd
			m, cmd = m.setNotice(res.notice)
			cmds = append(cmds, cmd)
		}

	case opNukeCheck, opChangeCheck:
		if res.err != nil {
			cmds = append(cmds, m.showError(res.err))
			break
		}
		m.popbox.Load(res.confirm.Body, res.confirm.Title)
		m.popbox.SetButtons(confirmButtons(res))
		cmds = append(cmds, m.popbox.Open(false))

	case opNuke, opChange:
		m.popbox.DisableButtons(false)
		cmds = append(cmds, m.popbox.Close(false))
		if res.err != nil {
			cmds = append(cmds, m.showError(res.err))
			break
		}
		if res.op == opChange {
			m.editing = false
			m.input.Reset()
			m.input.Blur()
			m.suggestions = nil
		}
		var cmd tea.Cmd
		m, cmd = m.setNotice(res.notice)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, loadState(m.svc, m.logLimit))
	return m, tea.Batch(cmds...)
}

// confirm runs the destructive half of a check once the user agrees. A popup
// dismissed before the message arrived cancels the request.
func (m Model) confirm(msg confirmMsg) (Model, tea.Cmd) {
	if m.busy || !m.popbox.IsOpen() {
		m.log.Debug("confirmation dropped", "op", msg.op, "busy", m.busy)
		m.popbox.DisableButtons(false)
		return m, nil
	}
	m.popbox.DisableButtons(true)
	fade := m.popbox.Fade(workingFade, 0)
	m, cmd := m.begin(msg.op, msg.url)
	return m, tea.Batch(fade, cmd)
}

func (m Model) showError(err error) tea.Cmd {
	m.errbox.Load("Error: "+err.Error(), errorTitle)
	return m.errbox.Open(false)
}

func (m Model) setNotice(text string) (Model, tea.Cmd) {
	m.noticeTag++
	m.notice = text
	return m, m.sched.After(m.noticeTimeout, noticeExpiredMsg{tag: m.noticeTag})
}
