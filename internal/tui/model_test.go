package tui

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/todo/internal/app"
	"github.com/hylla/todo/internal/domain"
)

// memoryStore is an in-memory app.Store.
type memoryStore struct {
	tasks []domain.Task
	saves int
}

func (s *memoryStore) Load(context.Context) ([]domain.Task, error) {
	return domain.CloneTasks(s.tasks), nil
}

func (s *memoryStore) Save(_ context.Context, tasks []domain.Task) error {
	s.saves++
	s.tasks = domain.CloneTasks(tasks)
	return nil
}

// fakeClipboard records copied text.
type fakeClipboard struct {
	copied []string
	err    error
}

func (f *fakeClipboard) write(text string) error {
	if f.err != nil {
		return f.err
	}
	f.copied = append(f.copied, text)
	return nil
}

func newTestModel(t *testing.T, store *memoryStore, opts ...Option) Model {
	t.Helper()
	var ctl *app.Controller
	if store == nil {
		ctl = app.NewController(nil, nil)
	} else {
		ctl = app.Open(context.Background(), store, nil)
	}
	clip := &fakeClipboard{}
	opts = append([]Option{WithClipboard(clip.write)}, opts...)
	return loadReadyModel(t, NewModel(ctl, opts...))
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = applyMsg(t, m, keyRune(r))
	}
	return m
}

func TestModelAddTaskFlow(t *testing.T) {
	store := &memoryStore{}
	m := newTestModel(t, store)

	m = applyMsg(t, m, keyRune('a'))
	if m.ctl.Mode() != app.ModeEditing {
		t.Fatalf("expected editing mode, got %v", m.ctl.Mode())
	}
	m = typeText(t, m, "  Buy qmilk  ")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	if m.ctl.Buffer() != "  Buy qmilk  " {
		t.Fatalf("unexpected buffer %q", m.ctl.Buffer())
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	want := []domain.Task{{Title: "Buy qmilk"}}
	if got := m.ctl.Tasks(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Tasks() = %#v, want %#v", got, want)
	}
	if m.ctl.Mode() != app.ModeNormal || m.status != "added" {
		t.Fatalf("expected normal mode with added status, got %v %q", m.ctl.Mode(), m.status)
	}
	if store.saves != 0 {
		t.Fatal("expected no save before quit")
	}
}

func TestModelEditingKeys(t *testing.T) {
	m := newTestModel(t, nil)

	m = applyMsg(t, m, keyRune('a'))
	m = typeText(t, m, "abc")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyBackspace})
	if m.ctl.Buffer() != "ab" {
		t.Fatalf("expected backspace to drop one rune, got %q", m.ctl.Buffer())
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.ctl.Mode() != app.ModeNormal || m.ctl.Len() != 0 {
		t.Fatal("expected escape to cancel without creating a task")
	}

	m = applyMsg(t, m, keyRune('a'))
	if m.ctl.Buffer() != "" {
		t.Fatalf("expected fresh buffer, got %q", m.ctl.Buffer())
	}
	m = typeText(t, m, "   ")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.ctl.Mode() != app.ModeNormal || m.ctl.Len() != 0 {
		t.Fatal("expected blank submit to return to normal mode without a task")
	}
}

func TestModelNormalModeMutations(t *testing.T) {
	store := &memoryStore{tasks: []domain.Task{{Title: "one"}, {Title: "two"}, {Title: "three"}}}
	m := newTestModel(t, store)

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	if m.ctl.Selected() != 2 {
		t.Fatalf("expected selection clamped at 2, got %d", m.ctl.Selected())
	}
	m = applyMsg(t, m, keyRune('k'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if task, _ := m.ctl.SelectedTask(); !task.Completed || task.Title != "two" {
		t.Fatalf("expected two completed, got %#v", task)
	}
	if !strings.Contains(m.status, "done: two") {
		t.Fatalf("unexpected toggle status %q", m.status)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyUp})
	m = applyMsg(t, m, keyRune('d'))
	got := m.ctl.Tasks()
	if len(got) != 2 || got[0].Title != "two" {
		t.Fatalf("unexpected tasks after delete %#v", got)
	}
	if !strings.Contains(m.status, "deleted: one") {
		t.Fatalf("unexpected delete status %q", m.status)
	}

	m = applyMsg(t, m, keyRune('x'))
	if m.ctl.Len() != 2 || m.ctl.Mode() != app.ModeNormal {
		t.Fatal("expected unknown key to be ignored")
	}
}

func TestModelQuitSavesAndStops(t *testing.T) {
	seed := []domain.Task{{Title: "keep", Completed: true}, {Title: "me"}}
	store := &memoryStore{tasks: seed}
	m := newTestModel(t, store)

	updated, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg from quit cmd")
	}
	if store.saves != 1 || !reflect.DeepEqual(store.tasks, seed) {
		t.Fatalf("expected one round-trip save, got saves=%d tasks=%#v", store.saves, store.tasks)
	}
	if !updated.(Model).ctl.Quitting() {
		t.Fatal("expected controller to report quitting")
	}
}

func TestModelTypingQuitKeyWhileEditing(t *testing.T) {
	store := &memoryStore{}
	m := newTestModel(t, store)
	m = applyMsg(t, m, keyRune('a'))
	m = typeText(t, m, "quiz")
	if m.ctl.Buffer() != "quiz" || m.ctl.Quitting() {
		t.Fatalf("expected q to be typed while editing, got %q", m.ctl.Buffer())
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected ctrl+c to quit while editing")
	}
	if store.saves != 1 || len(store.tasks) != 0 {
		t.Fatalf("expected in-progress edit to be discarded on quit, got %#v", store.tasks)
	}
}

func TestModelYankCopiesSelectedTitle(t *testing.T) {
	clip := &fakeClipboard{}
	store := &memoryStore{tasks: []domain.Task{{Title: "copy me"}}}
	m := newTestModel(t, store, WithClipboard(clip.write))

	m = applyMsg(t, m, keyRune('y'))
	if len(clip.copied) != 1 || clip.copied[0] != "copy me" {
		t.Fatalf("unexpected clipboard writes %#v", clip.copied)
	}

	clip.err = errors.New("no clipboard")
	m = applyMsg(t, m, keyRune('y'))
	if !strings.Contains(m.status, "copy failed") {
		t.Fatalf("expected copy failure status, got %q", m.status)
	}

	empty := newTestModel(t, nil, WithClipboard(clip.write))
	empty = applyMsg(t, empty, keyRune('y'))
	if empty.status != "nothing to copy" {
		t.Fatalf("unexpected empty-list status %q", empty.status)
	}
}

func TestModelKeyConfigOverrides(t *testing.T) {
	m := newTestModel(t, nil, WithKeyConfig(KeyConfig{Add: "n"}))
	m = applyMsg(t, m, keyRune('a'))
	if m.ctl.Mode() != app.ModeNormal {
		t.Fatal("expected default add key to be replaced")
	}
	m = applyMsg(t, m, keyRune('n'))
	if m.ctl.Mode() != app.ModeEditing {
		t.Fatal("expected configured add key to begin editing")
	}
}

func TestModelHelpPanelToggle(t *testing.T) {
	m := newTestModel(t, nil)
	m = applyMsg(t, m, keyRune('?'))
	if !m.showPanel {
		t.Fatal("expected help panel shown")
	}
	if out := m.render(); out == "" {
		t.Fatal("expected rendered help panel")
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.showPanel {
		t.Fatal("expected escape to close help panel")
	}
	m = applyMsg(t, m, keyRune('?'))
	m = applyMsg(t, m, keyRune('a'))
	if m.showPanel {
		t.Fatal("expected add to close help panel")
	}
}

func TestModelRender(t *testing.T) {
	m := NewModel(app.NewController(nil, nil))
	if got := m.render(); got != "loading..." {
		t.Fatalf("expected loading frame before size, got %q", got)
	}

	store := &memoryStore{tasks: []domain.Task{{Title: "Open item"}, {Title: "Done item", Completed: true}}}
	m = newTestModel(t, store)
	out := m.render()
	for _, want := range []string{"Todos", "□ Open item", "✅ Done item", "Press 'a' to add", "1 open • 1 done", "[normal]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in frame:\n%s", want, out)
		}
	}

	m = applyMsg(t, m, keyRune('a'))
	m = typeText(t, m, "draft")
	out = m.render()
	for _, want := range []string{"New Todo", "draft", "[editing]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in editing frame:\n%s", want, out)
		}
	}

	ephemeral := newTestModel(t, nil)
	if !strings.Contains(ephemeral.render(), "not saved on exit") {
		t.Fatal("expected ephemeral marker in status line")
	}
	if !strings.Contains(ephemeral.render(), "(empty)") {
		t.Fatal("expected empty-list placeholder")
	}
}

func TestHelpMarkdownListsActiveBindings(t *testing.T) {
	k := newKeyMap()
	k.applyKeyConfig(KeyConfig{Delete: "x"})
	md := helpMarkdown(k)
	if !strings.Contains(md, "| `x` | delete selected todo |") {
		t.Fatalf("expected configured delete key in help markdown:\n%s", md)
	}
}

func TestWindowBounds(t *testing.T) {
	cases := []struct {
		total, selected, size int
		start, end            int
	}{
		{0, 0, 5, 0, 0},
		{3, 2, 5, 0, 3},
		{10, 0, 4, 0, 4},
		{10, 5, 4, 3, 7},
		{10, 9, 4, 6, 10},
	}
	for _, tc := range cases {
		start, end := windowBounds(tc.total, tc.selected, tc.size)
		if start != tc.start || end != tc.end {
			t.Fatalf("windowBounds(%d, %d, %d) = %d, %d; want %d, %d", tc.total, tc.selected, tc.size, start, end, tc.start, tc.end)
		}
	}
}

func TestTruncateAndFitLines(t *testing.T) {
	if truncate("abcdef", 4) != "abc…" {
		t.Fatalf("unexpected truncate %q", truncate("abcdef", 4))
	}
	if truncate("ab", 4) != "ab" || truncate("ab", 0) != "" {
		t.Fatal("unexpected short truncate")
	}
	if got := fitLines("a\nb\nc", 2); got != "a\n…" {
		t.Fatalf("unexpected fitLines truncation %q", got)
	}
	if got := fitLines("a", 3); got != "a\n\n" {
		t.Fatalf("unexpected fitLines padding %q", got)
	}
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}
