package lsp

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testLogger discards everything; watcher tests only care about the
// onChange callback, not log output.
type testLogger struct{}

func (*testLogger) Debugf(format string, args ...interface{}) {}
func (*testLogger) Infof(format string, args ...interface{})  {}
func (*testLogger) Warnf(format string, args ...interface{})  {}
func (*testLogger) Errorf(format string, args ...interface{}) {}
func (*testLogger) Fatalf(format string, args ...interface{}) {}
func (l *testLogger) Named(component string) Logger            { return l }

func TestFileWatcher_DetectMapFileChange(t *testing.T) {
	tmpDir := t.TempDir()
	mapFile := filepath.Join(tmpDir, "test.js.map")

	changedFiles := make(chan string, 10)

	watcher, err := NewFileWatcher(tmpDir, &testLogger{}, func(path string) {
		changedFiles <- path
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(mapFile, []byte(`{"version":3,"sources":[],"mappings":"AAAA"}`), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	select {
	case changed := <-changedFiles:
		if changed != mapFile {
			t.Errorf("Expected %s, got %s", mapFile, changed)
		}
	case <-time.After(1 * time.Second):
		t.Error("Timeout waiting for file change event")
	}
}

func TestFileWatcher_IgnoreNonMapFiles(t *testing.T) {
	tmpDir := t.TempDir()
	jsFile := filepath.Join(tmpDir, "test.js")

	changedFiles := make(chan string, 10)

	watcher, err := NewFileWatcher(tmpDir, &testLogger{}, func(path string) {
		changedFiles <- path
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(jsFile, []byte("console.log(1);\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	select {
	case changed := <-changedFiles:
		t.Errorf("Should not trigger for non-.map files, got: %s", changed)
	case <-time.After(700 * time.Millisecond):
		// Success - no event
	}
}

func TestFileWatcher_DebouncingMultipleChanges(t *testing.T) {
	tmpDir := t.TempDir()
	mapFile := filepath.Join(tmpDir, "test.js.map")

	changedFiles := make(chan string, 10)

	watcher, err := NewFileWatcher(tmpDir, &testLogger{}, func(path string) {
		changedFiles <- path
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Close()

	for i := 0; i < 5; i++ {
		content := []byte(`{"version":3,"sources":[],"mappings":"` + string(rune('A'+i)) + `"}`)
		if err := os.WriteFile(mapFile, content, 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	eventCount := 0
	timeout := time.After(1 * time.Second)

loop:
	for {
		select {
		case <-changedFiles:
			eventCount++
		case <-timeout:
			break loop
		}
	}

	if eventCount > 2 {
		t.Errorf("Expected 1-2 events due to debouncing, got %d", eventCount)
	}
}

func TestFileWatcher_IgnoreDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	ignoredDirs := []string{
		"node_modules",
		"vendor",
		".git",
		".idea",
	}

	for _, dir := range ignoredDirs {
		dirPath := filepath.Join(tmpDir, dir)
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
	}

	watcher, err := NewFileWatcher(tmpDir, &testLogger{}, func(path string) {})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Close()

	// Verify directories were not watched: implicit, they should be
	// skipped by filepath.SkipDir without the watcher crashing.
}

func TestFileWatcher_NestedDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	nestedDir := filepath.Join(tmpDir, "src", "pkg", "utils")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested directory: %v", err)
	}

	mapFile := filepath.Join(nestedDir, "helper.js.map")

	changedFiles := make(chan string, 10)

	watcher, err := NewFileWatcher(tmpDir, &testLogger{}, func(path string) {
		changedFiles <- path
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(mapFile, []byte(`{"version":3,"sources":[],"mappings":"AAAA"}`), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	select {
	case changed := <-changedFiles:
		if changed != mapFile {
			t.Errorf("Expected %s, got %s", mapFile, changed)
		}
	case <-time.After(1 * time.Second):
		t.Error("Timeout waiting for file change event")
	}
}

func TestFileWatcher_Close(t *testing.T) {
	tmpDir := t.TempDir()

	watcher, err := NewFileWatcher(tmpDir, &testLogger{}, func(path string) {})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := watcher.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	_ = watcher.Close()
}
