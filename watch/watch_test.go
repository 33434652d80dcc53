package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// touchUntil writes path repeatedly until a rebuild is signalled or the
// deadline passes. Watches are registered asynchronously by Run.
func touchUntil(t *testing.T, path string, rebuilt <-chan struct{}) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for i := 0; ; i++ {
		if err := os.WriteFile(path, []byte(strconv.Itoa(i)), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case <-rebuilt:
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no rebuild after writing %s", path)
		}
	}
}

func TestRunRebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rebuilt := make(chan struct{}, 16)
	w := New([]string{root}, nil, 20*time.Millisecond, quietLogger())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			rebuilt <- struct{}{}
			return nil
		})
	}()

	touchUntil(t, filepath.Join(root, "post.md"), rebuilt)

	time.Sleep(100 * time.Millisecond)
	for len(rebuilt) > 0 {
		<-rebuilt
	}

	sub := filepath.Join(root, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	touchUntil(t, filepath.Join(sub, "inner.md"), rebuilt)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRelevant(t *testing.T) {
	w := New([]string{"/site"}, []string{"/site/dist"}, 0, quietLogger())
	cases := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/site/blog/a.md", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/site/blog/a.md", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/site/blog/.a.md.swp", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/site/blog/a.md~", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/site/dist/index.html", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/site/.__build-123", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/site/dist.old", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/site/distribution/a.css", Op: fsnotify.Write}, true},
	}
	for _, tc := range cases {
		if got := w.relevant(tc.event); got != tc.want {
			t.Errorf("relevant(%s %s) = %v, want %v", tc.event.Name, tc.event.Op, got, tc.want)
		}
	}
}
