package main

import (
	"context"
	"testing"
)

func TestRunCommandEndToEnd(t *testing.T) {
	err := run(context.Background(), []string{
		"run",
		"-objective", "sphere",
		"-batches", "3",
		"-batch-quantity", "2",
		"-seed", "5",
		"-store", "memory",
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
}

func TestRunCommandWithConfigFile(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"objective":      "branin",
		"batches":        2,
		"batch_quantity": 2,
		"seed":           9,
	})

	err := run(context.Background(), []string{"run", "-config", path, "-store", "memory"})
	if err != nil {
		t.Fatalf("run with config: %v", err)
	}
}

func TestObjectivesCommand(t *testing.T) {
	if err := run(context.Background(), []string{"objectives"}); err != nil {
		t.Fatalf("objectives command: %v", err)
	}
}

func TestInitCommand(t *testing.T) {
	if err := run(context.Background(), []string{"init", "-store", "memory"}); err != nil {
		t.Fatalf("init command: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"frobnicate"}); err == nil {
		t.Fatal("expected unknown command error")
	}
	if err := run(context.Background(), nil); err == nil {
		t.Fatal("expected missing command error")
	}
}

func TestCampaignCommandRequiresID(t *testing.T) {
	if err := run(context.Background(), []string{"campaign", "-store", "memory"}); err == nil {
		t.Fatal("expected missing id error")
	}
	if err := run(context.Background(), []string{"artifacts", "-store", "memory"}); err == nil {
		t.Fatal("expected missing run id error")
	}
}
