package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestDebouncerCoalescesBursts(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if called.Load() {
		t.Error("callback ran after Cancel")
	}
}

func TestDebouncerDefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func TestWatcherDetectsConfigEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "max_depth: 5\n")

	var changes atomic.Int32
	w, err := New(path,
		WithDebounceDuration(30*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	writeConfig(t, path, "max_depth: 3\nroot_user_email: ceo@contoso.com\n")

	if !waitFor(t, 2*time.Second, func() bool { return changes.Load() > 0 }) {
		t.Error("expected change to be reported")
	}
}

func TestWatcherPollingMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.json")
	writeConfig(t, path, "[]")

	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithDebounceDuration(20*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}
	writeConfig(t, path, `[{"id":"1","displayName":"John Smith"}]`)

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("expected change on Changed channel")
	}
}

func TestWatcherEnvForcesPolling(t *testing.T) {
	t.Setenv(ForcePollEnv, "yes")
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if !w.IsPolling() {
		t.Errorf("%s should force polling", ForcePollEnv)
	}
}

func TestWatcherReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "description: x\n")

	var removed atomic.Bool
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithOnError(func(err error) {
			if errors.Is(err, ErrFileRemoved) {
				removed.Store(true)
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 2*time.Second, removed.Load) {
		t.Error("expected ErrFileRemoved")
	}
}

func TestWatcherMissingFileIsFine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-yet.yaml")
	w, err := New(path, WithForcePoll(true), WithPollInterval(20*time.Millisecond), WithDebounceDuration(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("missing file should not fail Start: %v", err)
	}
	defer w.Stop()

	writeConfig(t, path, "max_depth: 2\n")
	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("creating the file should count as a change")
	}
}

func TestWatcherStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("not started yet")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	w.Stop()
	w.Stop()
	if w.IsStarted() {
		t.Error("expected stopped")
	}
	if err := w.Start(); err != nil {
		t.Errorf("restart failed: %v", err)
	}
	w.Stop()
}

func TestWatcherPathIsAbsolute(t *testing.T) {
	w, err := New("config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("expected absolute path, got %q", w.Path())
	}
}

func TestEnvBool(t *testing.T) {
	tests := map[string]bool{"1": true, "TRUE": true, " on ": true, "0": false, "no": false, "": false}
	for v, want := range tests {
		t.Setenv("ORGVIEW_TEST_BOOL", v)
		if got := envBool("ORGVIEW_TEST_BOOL"); got != want {
			t.Errorf("envBool(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestRemoteFilesystems(t *testing.T) {
	for _, fs := range []FilesystemType{FSTypeNFS, FSTypeSMB, FSTypeFUSE} {
		if !isRemoteFilesystem(fs) {
			t.Errorf("%s should be remote", fs)
		}
	}
	if isRemoteFilesystem(FSTypeLocal) || isRemoteFilesystem(FSTypeUnknown) {
		t.Error("local and unknown should not force polling")
	}
}

func TestDetectFilesystemTypeMissingPath(t *testing.T) {
	got := DetectFilesystemType(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	if got == "" {
		t.Error("expected a classification, even if unknown")
	}
}
