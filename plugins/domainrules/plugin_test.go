package domainrules

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	logAdapter "github.com/netbatch/netbatchd/internal/adapters/log"
	"github.com/netbatch/netbatchd/pkg/batcher"
)

func TestPlugin_Name(t *testing.T) {
	p := New(Config{Path: "/dev/null"})
	if p.Name() != "domainrules" {
		t.Errorf("Name() = %v, want domainrules", p.Name())
	}
}

func TestPlugin_LoadsInitialRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	contents := `
immediate_domains = ["auth.example.com"]
deferrable_domains = ["analytics.example.com"]
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var mu sync.Mutex
	var immediate, deferrable []string

	p := New(Config{Path: path, DebounceDelay: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := p.Initialize(ctx, batcher.PluginConfig{
		SetClassifierRules: func(i, d []string) {
			mu.Lock()
			defer mu.Unlock()
			immediate, deferrable = i, d
		},
		Logger: logAdapter.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer p.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(immediate) != 1 || immediate[0] != "auth.example.com" {
		t.Errorf("immediate = %v", immediate)
	}
	if len(deferrable) != 1 || deferrable[0] != "analytics.example.com" {
		t.Errorf("deferrable = %v", deferrable)
	}
}

func TestPlugin_ReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(path, []byte(`immediate_domains = ["a.example.com"]`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var mu sync.Mutex
	var calls int
	var lastImmediate []string

	p := New(Config{Path: path, DebounceDelay: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := p.Initialize(ctx, batcher.PluginConfig{
		SetClassifierRules: func(i, d []string) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			lastImmediate = i
		},
		Logger: logAdapter.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer p.Shutdown(ctx)

	if err := os.WriteFile(path, []byte(`immediate_domains = ["b.example.com"]`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		got := calls >= 2 && len(lastImmediate) == 1 && lastImmediate[0] == "b.example.com"
		mu.Unlock()
		if got {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("rules were not reloaded after file change, calls=%d last=%v", calls, lastImmediate)
}

func TestPlugin_DisabledWhenPathEmpty(t *testing.T) {
	p := New(Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	called := false
	err := p.Initialize(ctx, batcher.PluginConfig{
		SetClassifierRules: func(i, d []string) { called = true },
		Logger:             logAdapter.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer p.Shutdown(ctx)

	time.Sleep(50 * time.Millisecond)
	if called {
		t.Error("SetClassifierRules was called despite empty Path")
	}
}
