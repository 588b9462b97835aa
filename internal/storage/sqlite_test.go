//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"bayopt/internal/model"
)

func TestSQLiteStoreCampaignAndArtifactsRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "bayopt.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	snapshot := model.CampaignSnapshot{
		VersionedRecord: model.VersionedRecord{SchemaVersion: model.CurrentSchemaVersion, CodecVersion: model.CurrentCodecVersion},
		ID:              "camp-1",
		BatchesDone:     1,
		FitsDone:        1,
		Columns:         []string{"temp", "yield"},
		Measurements: []model.MeasurementRecord{{
			BatchNr: 1,
			FitNr:   1,
			Values: map[string]model.CellRecord{
				"temp":  {Kind: "float", Float: 20},
				"yield": {Kind: "float", Float: 80},
			},
		}},
	}
	if err := store.SaveCampaignSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	loadedSnapshot, ok, err := store.GetCampaignSnapshot(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if !ok {
		t.Fatalf("expected campaign %s", snapshot.ID)
	}
	if loadedSnapshot.ID != snapshot.ID || len(loadedSnapshot.Measurements) != 1 {
		t.Fatalf("unexpected snapshot loaded: %+v", loadedSnapshot)
	}

	ids, err := store.ListCampaignIDs(ctx)
	if err != nil {
		t.Fatalf("list campaigns: %v", err)
	}
	if len(ids) != 1 || ids[0] != "camp-1" {
		t.Fatalf("unexpected campaign ids: %+v", ids)
	}

	artifacts := model.RunArtifacts{
		VersionedRecord: model.VersionedRecord{SchemaVersion: model.CurrentSchemaVersion, CodecVersion: model.CurrentCodecVersion},
		Config:          model.RunConfig{RunID: "run-1", Objective: "sphere", Batches: 3, BatchQuantity: 2},
		BestByBatch:     []float64{5.0, 1.2, 0.4},
		FinalBest:       0.4,
	}
	if err := store.SaveRunArtifacts(ctx, artifacts); err != nil {
		t.Fatalf("save artifacts: %v", err)
	}

	loadedArtifacts, ok, err := store.GetRunArtifacts(ctx, "run-1")
	if err != nil {
		t.Fatalf("get artifacts: %v", err)
	}
	if !ok {
		t.Fatal("expected run artifacts run-1")
	}
	if loadedArtifacts.FinalBest != artifacts.FinalBest || len(loadedArtifacts.BestByBatch) != 3 {
		t.Fatalf("unexpected artifacts loaded: %+v", loadedArtifacts)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "bayopt.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("first init: %v", err)
	}
	snapshot := model.CampaignSnapshot{
		VersionedRecord: model.VersionedRecord{SchemaVersion: model.CurrentSchemaVersion, CodecVersion: model.CurrentCodecVersion},
		ID:              "persisted-campaign",
	}
	if err := first.SaveCampaignSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	loaded, ok, err := second.GetCampaignSnapshot(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !ok || loaded.ID != snapshot.ID {
		t.Fatalf("expected persisted campaign, got ok=%t value=%+v", ok, loaded)
	}
}
