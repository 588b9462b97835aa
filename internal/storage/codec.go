package storage

import (
	"encoding/json"
	"errors"

	"bayopt/internal/model"
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeCampaignSnapshot(s model.CampaignSnapshot) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeCampaignSnapshot(data []byte) (model.CampaignSnapshot, error) {
	var snapshot model.CampaignSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.CampaignSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.CampaignSnapshot{}, err
	}
	return snapshot, nil
}

func EncodeRunArtifacts(a model.RunArtifacts) ([]byte, error) {
	return json.Marshal(a)
}

func DecodeRunArtifacts(data []byte) (model.RunArtifacts, error) {
	var artifacts model.RunArtifacts
	if err := json.Unmarshal(data, &artifacts); err != nil {
		return model.RunArtifacts{}, err
	}
	if err := checkVersion(artifacts.VersionedRecord); err != nil {
		return model.RunArtifacts{}, err
	}
	return artifacts, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != model.CurrentSchemaVersion || v.CodecVersion != model.CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
