// Package migrate tests verify sequential migration application, version
// skipping, error propagation, and [Registry] bookkeeping.
package migrate

import (
	"fmt"
	"strings"
	"testing"
)

// ///////////////////////////////////////////////
// Run
// ///////////////////////////////////////////////

func TestRunSkipsOldVersions(t *testing.T) {
	called := false
	migrations := []Migration{
		{Version: 1, Description: "already applied", Upgrade: func(d []byte) ([]byte, error) {
			called = true
			return d, nil
		}},
	}
	out, version, err := Run([]byte("data"), 1, migrations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("migration should have been skipped")
	}
	if version != 1 || string(out) != "data" {
		t.Fatalf("got (%q, %d), want (\"data\", 1)", out, version)
	}
}

func TestRunAppliesInVersionOrder(t *testing.T) {
	migrations := []Migration{
		{Version: 3, Description: "v2->v3", Upgrade: func(d []byte) ([]byte, error) {
			return append(d, "-v3"...), nil
		}},
		{Version: 2, Description: "v1->v2", Upgrade: func(d []byte) ([]byte, error) {
			return append(d, "-v2"...), nil
		}},
	}
	out, version, err := Run([]byte("data"), 1, migrations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != 3 {
		t.Fatalf("version = %d, want 3", version)
	}
	if string(out) != "data-v2-v3" {
		t.Fatalf("out = %q, want data-v2-v3", out)
	}
}

func TestRunStopsOnError(t *testing.T) {
	migrations := []Migration{
		{Version: 2, Description: "ok", Upgrade: func(d []byte) ([]byte, error) { return d, nil }},
		{Version: 3, Description: "fails", Upgrade: func(d []byte) ([]byte, error) {
			return nil, fmt.Errorf("boom")
		}},
	}
	_, version, err := Run([]byte("data"), 1, migrations)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "migration to v3 failed") || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("unexpected error %v", err)
	}
	if version != 2 {
		t.Fatalf("version = %d, want 2", version)
	}
}

// ///////////////////////////////////////////////
// Registry
// ///////////////////////////////////////////////

func TestRegistryRegisterSortsAndRejectsDuplicates(t *testing.T) {
	r := &Registry{CurrentVersion: 3}
	r.Register(Migration{Version: 3, Description: "b", Upgrade: func(d []byte) ([]byte, error) { return d, nil }})
	r.Register(Migration{Version: 2, Description: "a", Upgrade: func(d []byte) ([]byte, error) { return d, nil }})

	got := r.Migrations()
	if len(got) != 2 || got[0].Version != 2 || got[1].Version != 3 {
		t.Fatalf("migrations not sorted: %+v", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate version")
		}
	}()
	r.Register(Migration{Version: 2, Description: "dup"})
}

func TestRegistryNeedsMigration(t *testing.T) {
	r := &Registry{CurrentVersion: 2}
	if !r.NeedsMigration(1) {
		t.Error("v1 should need migration to v2")
	}
	if r.NeedsMigration(2) {
		t.Error("v2 should not need migration")
	}
}
