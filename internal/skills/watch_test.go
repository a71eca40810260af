package skills

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWatch_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeSkill(t, dir, "one", "---\nname: one\n---\nfirst")

	ix, err := OpenDir(context.Background(), dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan int, 4)
	done := make(chan error, 1)
	go func() {
		done <- ix.Watch(ctx, dir, 20*time.Millisecond, func(ix *Index) {
			changed <- ix.Len()
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeSkill(t, dir, "two", "---\nname: two\n---\nsecond")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case n := <-changed:
			if n == 2 {
				cancel()
				if err := <-done; err != nil {
					t.Fatalf("Watch returned error: %v", err)
				}
				return
			}
		case <-deadline:
			cancel()
			<-done
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ix, err := OpenDir(context.Background(), dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ix.Watch(ctx, dir, 0, nil) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
