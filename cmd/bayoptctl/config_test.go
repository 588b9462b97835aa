package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_config.json")
	payload := map[string]any{
		"run_id":         "cfg-run",
		"objective":      "branin",
		"batches":        7,
		"batch_quantity": 4,
		"seed":           77,
		"surrogate":      "ensemble",
		"acquisition":    "ei",
		"switch_after":   5,
		"candidates":     300,
		"acq_beta":       1.5,
		"acq_xi":         0.05,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load run request: %v", err)
	}
	if req.RunID != "cfg-run" || req.Objective != "branin" {
		t.Fatalf("unexpected base fields: %+v", req)
	}
	if req.Batches != 7 || req.BatchQuantity != 4 || req.Seed != 77 {
		t.Fatalf("unexpected loop fields: %+v", req)
	}
	if req.Surrogate != "ensemble" || req.Acquisition != "ei" {
		t.Fatalf("unexpected model fields: %+v", req)
	}
	if req.SwitchAfter != 5 || req.Candidates != 300 {
		t.Fatalf("unexpected recommender fields: %+v", req)
	}
	if req.AcqBeta != 1.5 || req.AcqXi != 0.05 {
		t.Fatalf("unexpected acquisition params: %+v", req)
	}
}

func TestLoadRunRequestFromConfigMissingFile(t *testing.T) {
	_, err := loadRunRequestFromConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected read error")
	}
}

func TestLoadOrDefaultRunRequestEmptyPath(t *testing.T) {
	req, err := loadOrDefaultRunRequest("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if req.Objective != "" || req.Batches != 0 {
		t.Fatalf("expected zero request, got %+v", req)
	}
}

func TestOverrideFromFlagsOnlyAppliesSetFlags(t *testing.T) {
	req, err := loadRunRequestFromConfig(writeConfig(t, map[string]any{
		"objective": "branin",
		"batches":   7,
	}))
	if err != nil {
		t.Fatalf("load run request: %v", err)
	}

	overrideFromFlags(&req, map[string]bool{"batches": true}, map[string]any{
		"objective": "sphere",
		"batches":   3,
	})
	if req.Objective != "branin" {
		t.Fatalf("unset flag must not override config, got %s", req.Objective)
	}
	if req.Batches != 3 {
		t.Fatalf("set flag must override config, got %d", req.Batches)
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("BAYOPT_STORE", "sqlite")
	t.Setenv("BAYOPT_DB_PATH", "/tmp/custom.db")

	env := envDefaults()
	if env.storeKind() != "sqlite" {
		t.Fatalf("unexpected store kind: %s", env.storeKind())
	}
	if env.dbPath() != "/tmp/custom.db" {
		t.Fatalf("unexpected db path: %s", env.dbPath())
	}
}

func TestEnvDefaultsFallBack(t *testing.T) {
	t.Setenv("BAYOPT_STORE", "")
	t.Setenv("BAYOPT_DB_PATH", "")

	env := envDefaults()
	if env.storeKind() != "memory" {
		t.Fatalf("unexpected default store kind: %s", env.storeKind())
	}
	if env.dbPath() != "bayopt.db" {
		t.Fatalf("unexpected default db path: %s", env.dbPath())
	}
}

func writeConfig(t *testing.T, payload map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run_config.json")
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
