package app

import (
	"context"
	"testing"
	"time"
)

func TestNewMemoryAppRunsAndStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.LogMode = "test"
	cfg.InstanceID = "test-instance"
	cfg.ShutdownTimeout = time.Second
	cfg.Storage.Backend = "memory"

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	s, err := a.Registry.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Registry.Get: %v", err)
	}
	if s.Store.Owner() != "p1" {
		t.Fatalf("owner: got=%q want=p1", s.Store.Owner())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestNewSQLiteApp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogMode = "test"
	cfg.InstanceID = "test-instance"
	cfg.Storage.SQLitePath = "file::memory:?cache=shared"

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if a.sql == nil {
		t.Fatalf("sqlite backend must open a SQL service")
	}
	if err := a.sql.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
