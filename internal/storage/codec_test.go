package storage

import (
	"errors"
	"reflect"
	"testing"

	"bayopt/internal/model"
)

func TestCampaignSnapshotCodecRoundTrip(t *testing.T) {
	input := model.CampaignSnapshot{
		VersionedRecord: model.VersionedRecord{SchemaVersion: model.CurrentSchemaVersion, CodecVersion: model.CurrentCodecVersion},
		ID:              "camp-1",
		BatchesDone:     3,
		FitsDone:        2,
		Columns:         []string{"temp", "pressure", "yield"},
		Measurements: []model.MeasurementRecord{
			{
				BatchNr: 1,
				FitNr:   1,
				Values: map[string]model.CellRecord{
					"temp":     {Kind: "float", Float: 20},
					"pressure": {Kind: "float", Float: 2},
					"yield":    {Kind: "float", Float: 80},
				},
			},
			{
				BatchNr: 2,
				FitNr:   0,
				Values: map[string]model.CellRecord{
					"temp":     {Kind: "float", Float: 60},
					"pressure": {Kind: "float", Float: 4},
					"yield":    {Kind: "float", Float: 55},
				},
			},
		},
	}

	encoded, err := EncodeCampaignSnapshot(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeCampaignSnapshot(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, input) {
		t.Fatalf("roundtrip mismatch\nactual=%+v\nexpected=%+v", decoded, input)
	}
}

func TestDecodeCampaignSnapshotVersionMismatch(t *testing.T) {
	input := model.CampaignSnapshot{
		VersionedRecord: model.VersionedRecord{SchemaVersion: model.CurrentSchemaVersion, CodecVersion: model.CurrentCodecVersion + 1},
		ID:              "camp-1",
	}
	encoded, err := EncodeCampaignSnapshot(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = DecodeCampaignSnapshot(encoded)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got: %v", err)
	}
}

func TestRunArtifactsCodecRoundTrip(t *testing.T) {
	input := model.RunArtifacts{
		VersionedRecord: model.VersionedRecord{SchemaVersion: model.CurrentSchemaVersion, CodecVersion: model.CurrentCodecVersion},
		Config: model.RunConfig{
			RunID:         "run-1",
			Objective:     "branin",
			Batches:       10,
			BatchQuantity: 3,
			Seed:          7,
			Surrogate:     "gp",
			Acquisition:   "ei",
			SwitchAfter:   2,
			Candidates:    200,
		},
		BestByBatch: []float64{12.5, 3.1, 0.9},
		FinalBest:   0.9,
		BestParams:  map[string]float64{"x1": 3.14, "x2": 2.27},
	}

	encoded, err := EncodeRunArtifacts(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRunArtifacts(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, input) {
		t.Fatalf("roundtrip mismatch\nactual=%+v\nexpected=%+v", decoded, input)
	}
}

func TestDecodeRunArtifactsVersionMismatch(t *testing.T) {
	input := model.RunArtifacts{
		VersionedRecord: model.VersionedRecord{SchemaVersion: model.CurrentSchemaVersion + 1, CodecVersion: model.CurrentCodecVersion},
		Config:          model.RunConfig{RunID: "run-1"},
	}
	encoded, err := EncodeRunArtifacts(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = DecodeRunArtifacts(encoded)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got: %v", err)
	}
}
