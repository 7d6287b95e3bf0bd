package dashboard

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/lightface/internal/repos"
	"github.com/marcus/lightface/pkg/lightface"
	_ "github.com/mattn/go-sqlite3"
)

// fakeScheduler queues timer messages for the pump. Notice expiry is held
// back so tests can observe the notice before releasing it.
type fakeScheduler struct {
	pending []tea.Msg
	held    []tea.Msg
}

func (s *fakeScheduler) After(_ time.Duration, msg tea.Msg) tea.Cmd {
	if _, ok := msg.(noticeExpiredMsg); ok {
		s.held = append(s.held, msg)
		return nil
	}
	s.pending = append(s.pending, msg)
	return nil
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// pump runs cmd and every message and timer that follows until the model
// settles.
func pump(t *testing.T, m Model, sched *fakeScheduler, cmd tea.Cmd) Model {
	t.Helper()
	queue := collect(cmd)
	for i := 0; len(queue) > 0 || len(sched.pending) > 0; i++ {
		if i > 2000 {
			t.Fatal("message loop did not settle")
		}
		if len(queue) == 0 {
			queue, sched.pending = sched.pending, nil
		}
		msg := queue[0]
		queue = queue[1:]
		next, cmd := m.Update(msg)
		m = next.(Model)
		queue = append(queue, collect(cmd)...)
	}
	return m
}

func send(t *testing.T, m Model, sched *fakeScheduler, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return pump(t, next.(Model), sched, cmd)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, sched *fakeScheduler, text string) Model {
	t.Helper()
	for _, r := range text {
		m = send(t, m, sched, keyMsg(string(r)))
	}
	return m
}

func newTestModel(t *testing.T) (Model, *repos.Service, *fakeScheduler) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store, err := repos.NewStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	svc := repos.NewService(store, 0, nil)

	sched := &fakeScheduler{}
	cfg := lightface.DefaultConfig()
	cfg.Scheduler = sched

	m, err := New(Options{
		Service: svc,
		Dialog:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(m.Close)

	m = send(t, m, sched, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = pump(t, m, sched, m.Init())
	return m, svc, sched
}

func track(t *testing.T, svc *repos.Service, url string) {
	t.Helper()
	if _, err := svc.Change(context.Background(), url); err != nil {
		t.Fatalf("change: %v", err)
	}
}

func buttonLabels(d *lightface.Dialog) []string {
	var out []string
	for _, b := range d.Buttons() {
		out = append(out, b.Label())
	}
	return out
}

func TestPullWithoutRepositoryOpensErrorDialog(t *testing.T) {
	m, _, sched := newTestModel(t)

	next, cmd := m.Update(keyMsg("p"))
	m = next.(Model)
	if !m.Busy() {
		t.Fatal("pull should take the update lock")
	}
	m = pump(t, m, sched, cmd)

	if m.Busy() {
		t.Error("lock not released after the request finished")
	}
	errbox := m.ErrorDialog()
	if !errbox.IsOpen() || !errbox.Focused() {
		t.Fatalf("error dialog open=%v focused=%v", errbox.IsOpen(), errbox.Focused())
	}
	if !strings.Contains(errbox.Content(), repos.ErrNoRepository.Error()) {
		t.Errorf("error content = %q", errbox.Content())
	}

	m = send(t, m, sched, keyMsg("esc"))
	if errbox.IsOpen() {
		t.Error("escape should close the error dialog")
	}
}

func TestPullShowsNoticeUntilExpiry(t *testing.T) {
	m, svc, sched := newTestModel(t)
	track(t, svc, "https://example.com/a.git")

	m = send(t, m, sched, keyMsg("p"))
	if !strings.Contains(m.Notice(), "revision 1") {
		t.Fatalf("notice = %q", m.Notice())
	}
	if m.ErrorDialog().IsOpen() {
		t.Error("error dialog opened on success")
	}

	// A second pull replaces the notice; the first expiry is stale.
	m = send(t, m, sched, keyMsg("p"))
	if len(sched.held) != 2 {
		t.Fatalf("expected two notice timers, got %d", len(sched.held))
	}
	m = send(t, m, sched, sched.held[0])
	if !strings.Contains(m.Notice(), "revision 2") {
		t.Errorf("stale expiry cleared the notice: %q", m.Notice())
	}
	m = send(t, m, sched, sched.held[1])
	if m.Notice() != "" {
		t.Errorf("notice not cleared: %q", m.Notice())
	}
}

func TestUpdateLockDropsSecondRequest(t *testing.T) {
	m, svc, _ := newTestModel(t)
	track(t, svc, "https://example.com/a.git")

	next, _ := m.Update(keyMsg("p"))
	m = next.(Model)
	next, cmd := m.Update(keyMsg("n"))
	m = next.(Model)

	if cmd != nil {
		t.Error("a second request should be dropped while the lock is held")
	}
	if m.pending != opPull {
		t.Errorf("pending = %v, want pull", m.pending)
	}
}

func TestNukeConfirmFlow(t *testing.T) {
	m, svc, sched := newTestModel(t)
	track(t, svc, "https://example.com/a.git")

	m = send(t, m, sched, keyMsg("n"))
	pop := m.Popup()
	if !pop.IsOpen() || !pop.Focused() {
		t.Fatalf("popup open=%v focused=%v", pop.IsOpen(), pop.Focused())
	}
	if got := buttonLabels(pop); len(got) != 2 || got[0] != "Remove" || got[1] != "Cancel" {
		t.Fatalf("popup buttons = %v", got)
	}
	if pop.Buttons()[0].Style() != "red" || pop.Buttons()[1].Style() != "blue" {
		t.Error("confirm should be red and cancel blue")
	}

	// Focus the confirm button and press it; stop before the request runs.
	m = send(t, m, sched, keyMsg("tab"))
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one confirm message, got %v", msgs)
	}
	next, cmd = m.Update(msgs[0])
	m = next.(Model)

	if !m.Busy() {
		t.Error("confirm should take the lock")
	}
	if pop.Buttons()[0].Enabled() {
		t.Error("popup buttons should be disabled while working")
	}
	if pop.OverlayOpacity() != workingFade {
		t.Errorf("overlay = %v, want %v", pop.OverlayOpacity(), workingFade)
	}

	m = pump(t, m, sched, cmd)
	if pop.IsOpen() {
		t.Error("popup should close after a successful nuke")
	}
	if !strings.Contains(m.Notice(), "Removed") {
		t.Errorf("notice = %q", m.Notice())
	}
	if m.repo.URL != "" {
		t.Errorf("repository still tracked: %q", m.repo.URL)
	}
	if !pop.Buttons()[0].Enabled() {
		t.Error("buttons should be re-enabled after the request")
	}
}

func TestNukeCancelLeavesRepository(t *testing.T) {
	m, svc, sched := newTestModel(t)
	track(t, svc, "https://example.com/a.git")

	m = send(t, m, sched, keyMsg("n"))
	m = send(t, m, sched, keyMsg("tab"))
	m = send(t, m, sched, keyMsg("tab"))
	m = send(t, m, sched, keyMsg("enter"))

	if m.Popup().IsOpen() {
		t.Error("cancel should close the popup")
	}
	repo, _ := svc.Store().Repository()
	if repo.URL == "" {
		t.Error("cancel removed the repository")
	}
}

func TestDismissBeforeConfirmArrivesKeepsRepository(t *testing.T) {
	m, svc, sched := newTestModel(t)
	track(t, svc, "https://example.com/a.git")

	m = send(t, m, sched, keyMsg("n"))
	pop := m.Popup()
	m = send(t, m, sched, keyMsg("tab"))

	// Press confirm but hold its message back until the popup is dismissed.
	next, held := m.Update(keyMsg("enter"))
	m = next.(Model)
	if pop.Buttons()[1].Enabled() {
		t.Error("pressing confirm should freeze the cancel button")
	}
	m = send(t, m, sched, keyMsg("esc"))
	if pop.IsOpen() {
		t.Fatal("escape should close the popup")
	}
	m = pump(t, m, sched, held)

	if m.Busy() {
		t.Error("a dismissed confirmation should not take the lock")
	}
	repo, _ := svc.Store().Repository()
	if repo.URL != "https://example.com/a.git" {
		t.Errorf("repository removed after dismissal: %q", repo.URL)
	}
	if pop.OverlayVisible() || pop.OverlayOpacity() != 0 {
		t.Errorf("closed popup overlay visible=%v opacity=%v", pop.OverlayVisible(), pop.OverlayOpacity())
	}
	if !pop.Buttons()[0].Enabled() {
		t.Error("buttons should be usable again for the next check")
	}
}

func TestActionListScrollKeepsDialogsCentered(t *testing.T) {
	m, svc, sched := newTestModel(t)
	for _, u := range []string{"https://example.com/a.git", "https://example.com/b.git", "https://example.com/c.git"} {
		track(t, svc, u)
	}
	m = send(t, m, sched, keyMsg("r"))
	m = send(t, m, sched, keyMsg("j"))
	m = send(t, m, sched, keyMsg("j"))
	if m.offset != 2 {
		t.Fatalf("offset = %d, want 2", m.offset)
	}
	if x, y := m.bus.Scroll(); x != 0 || y != 0 {
		t.Errorf("list scroll leaked to the page: %d,%d", x, y)
	}

	m = send(t, m, sched, keyMsg("n"))
	r := m.Popup().BoxRect()
	if r.Y != (24-r.H)/2 {
		t.Errorf("popup Y = %d, want %d", r.Y, (24-r.H)/2)
	}
}

func TestConfirmErrorClosesPopupAndOpensError(t *testing.T) {
	m, svc, sched := newTestModel(t)
	track(t, svc, "https://example.com/a.git")

	m = send(t, m, sched, keyMsg("n"))
	if err := svc.Store().SetURL(""); err != nil {
		t.Fatal(err)
	}
	m = send(t, m, sched, confirmMsg{op: opNuke})

	if m.Popup().IsOpen() {
		t.Error("popup should close on error")
	}
	if !m.ErrorDialog().IsOpen() {
		t.Error("error dialog should open on error")
	}
	if m.ErrorDialog().Config().ZIndex <= m.Popup().Config().ZIndex {
		t.Error("error dialog should stack above the popup")
	}
}

func TestChangeWithSuggestion(t *testing.T) {
	m, svc, sched := newTestModel(t)
	track(t, svc, "https://example.com/alpha.git")
	track(t, svc, "https://example.com/bravo.git")
	m = send(t, m, sched, keyMsg("r"))

	m = send(t, m, sched, keyMsg("c"))
	if !m.editing {
		t.Fatal("c should start editing the URL")
	}
	m = typeText(t, m, sched, "alp")
	if len(m.suggestions) == 0 || m.suggestions[0] != "https://example.com/alpha.git" {
		t.Fatalf("suggestions = %v", m.suggestions)
	}
	m = send(t, m, sched, keyMsg("tab"))
	if m.input.Value() != "https://example.com/alpha.git" {
		t.Fatalf("tab did not complete: %q", m.input.Value())
	}

	m = send(t, m, sched, keyMsg("enter"))
	if !m.Popup().IsOpen() {
		t.Fatal("change should ask for confirmation")
	}
	m = send(t, m, sched, confirmMsg{op: opChange, url: m.input.Value()})

	if m.repo.URL != "https://example.com/alpha.git" {
		t.Errorf("tracked url = %q", m.repo.URL)
	}
	if m.editing || m.input.Value() != "" {
		t.Error("editing state should reset after a change")
	}
}

func TestChangeInvalidURL(t *testing.T) {
	m, _, sched := newTestModel(t)

	m = send(t, m, sched, keyMsg("c"))
	m = typeText(t, m, sched, "nope")
	m = send(t, m, sched, keyMsg("enter"))

	if m.Popup().IsOpen() {
		t.Error("invalid url should not reach the confirmation")
	}
	if !m.ErrorDialog().IsOpen() || !strings.Contains(m.ErrorDialog().Content(), "invalid repository url") {
		t.Errorf("error dialog open=%v content=%q", m.ErrorDialog().IsOpen(), m.ErrorDialog().Content())
	}
}

func TestOpenDialogOwnsKeyboard(t *testing.T) {
	m, svc, sched := newTestModel(t)
	track(t, svc, "https://example.com/a.git")

	m = send(t, m, sched, keyMsg("n"))
	m = send(t, m, sched, keyMsg("p"))
	if m.Busy() {
		t.Error("page keys must not act while a dialog is open")
	}
	repo, _ := svc.Store().Repository()
	if repo.Revision != 0 {
		t.Error("pull ran behind an open dialog")
	}
}

func TestClickControl(t *testing.T) {
	m, svc, _ := newTestModel(t)
	track(t, svc, "https://example.com/a.git")
	m.View()

	region := m.controls.Regions()[0]
	if region.ID != controlPull {
		t.Fatalf("first control = %s", region.ID)
	}
	next, cmd := m.Update(tea.MouseMsg{
		X: region.Rect.X, Y: region.Rect.Y,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	})
	m = next.(Model)
	if !m.Busy() || cmd == nil {
		t.Error("clicking pull should start a request")
	}

	m.View()
	if len(m.controls.Regions()) != 0 {
		t.Error("controls should not be clickable while busy")
	}
}

func TestViewFitsWindow(t *testing.T) {
	m, svc, sched := newTestModel(t)
	track(t, svc, "https://example.com/a.git")
	m = send(t, m, sched, tea.WindowSizeMsg{Width: 60, Height: 20})
	m = send(t, m, sched, keyMsg("n"))

	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 20 {
		t.Fatalf("view has %d rows, want 20", len(lines))
	}
	for i, l := range lines {
		if w := ansi.StringWidth(l); w > 60 {
			t.Errorf("row %d is %d cells wide", i, w)
		}
	}
	plain := ansi.Strip(out)
	if !strings.Contains(plain, "Remove repository") || !strings.Contains(plain, "Remove") {
		t.Error("popup not drawn over the page")
	}
}

func TestSuggest(t *testing.T) {
	urls := []string{"https://a/alpha.git", "https://b/bravo.git", "git@c:charlie.git", "https://d/delta.git"}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty input lists most recent", "", urls[:3]},
		{"fuzzy match", "brv", []string{"https://b/bravo.git"}},
		{"exact match is not suggested", "https://a/alpha.git", nil},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggest(tt.input, urls, 3)
			if len(got) != len(tt.want) {
				t.Fatalf("suggest(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("suggest(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
