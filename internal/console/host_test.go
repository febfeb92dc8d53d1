package console

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

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

func runScript(t *testing.T, store *memoryStore, script string) (*app.Controller, string) {
	t.Helper()
	var ctl *app.Controller
	if store == nil {
		ctl = app.NewController(nil, nil)
	} else {
		ctl = app.Open(context.Background(), store, nil)
	}
	var out bytes.Buffer
	if err := New(ctl, strings.NewReader(script), &out, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return ctl, out.String()
}

// TestHostAddToggleRemove verifies behavior for the covered scenario.
func TestHostAddToggleRemove(t *testing.T) {
	store := &memoryStore{}
	script := strings.Join([]string{
		"1", "  Buy milk  ",
		"1", "Walk dog",
		"3", "1",
		"4", "2",
		"5",
	}, "\n") + "\n"

	ctl, out := runScript(t, store, script)
	want := []domain.Task{{Title: "Buy milk", Completed: true}}
	if !reflect.DeepEqual(store.tasks, want) {
		t.Fatalf("saved tasks = %#v, want %#v", store.tasks, want)
	}
	if store.saves != 1 || !ctl.Quitting() {
		t.Fatalf("expected one save on quit, got %d", store.saves)
	}
	for _, fragment := range []string{"done: Buy milk", "removed: Walk dog", "saved. bye!"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out)
		}
	}
}

// TestHostViewRendersTable verifies behavior for the covered scenario.
func TestHostViewRendersTable(t *testing.T) {
	store := &memoryStore{tasks: []domain.Task{{Title: "alpha"}, {Title: "beta", Completed: true}}}
	_, out := runScript(t, store, "2\n5\n")
	for _, fragment := range []string{"Title", "alpha", "beta", "✅", "□", "1 open, 1 done"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out)
		}
	}
}

// TestHostEmptyAndInvalidInput verifies behavior for the covered scenario.
func TestHostEmptyAndInvalidInput(t *testing.T) {
	_, out := runScript(t, nil, "2\n3\n1\n   \n9\n1\ntask\n3\nx\n5\n")
	for _, fragment := range []string{
		"(changes are not saved on exit)",
		"No todos yet.",
		"no todos yet",
		"title is required",
		`unknown option "9"`,
		"invalid todo number",
		"bye!",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out)
		}
	}
}

// TestHostEOFQuitsAndSaves verifies behavior for the covered scenario.
func TestHostEOFQuitsAndSaves(t *testing.T) {
	store := &memoryStore{tasks: []domain.Task{{Title: "kept"}}}
	ctl, _ := runScript(t, store, "1\nlast line without newline")
	if !ctl.Quitting() || store.saves != 1 {
		t.Fatal("expected end of input to quit and save")
	}
	want := []domain.Task{{Title: "kept"}, {Title: "last line without newline"}}
	if !reflect.DeepEqual(store.tasks, want) {
		t.Fatalf("saved tasks = %#v, want %#v", store.tasks, want)
	}
}

// TestHostCanceledContext verifies behavior for the covered scenario.
func TestHostCanceledContext(t *testing.T) {
	store := &memoryStore{}
	ctl := app.Open(context.Background(), store, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(ctl, strings.NewReader("5\n"), nil, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if store.saves != 1 {
		t.Fatal("expected save despite canceled context")
	}
}

// TestHostRequiresController verifies behavior for the covered scenario.
func TestHostRequiresController(t *testing.T) {
	if err := New(nil, nil, nil, nil).Run(context.Background()); err == nil {
		t.Fatal("expected error for nil controller")
	}
}
