package storage

import (
	"context"

	"bayopt/internal/model"
)

// Store defines persistence operations for campaign state and run outcomes.
type Store interface {
	Init(ctx context.Context) error
	SaveCampaignSnapshot(ctx context.Context, snapshot model.CampaignSnapshot) error
	GetCampaignSnapshot(ctx context.Context, id string) (model.CampaignSnapshot, bool, error)
	ListCampaignIDs(ctx context.Context) ([]string, error)
	SaveRunArtifacts(ctx context.Context, artifacts model.RunArtifacts) error
	GetRunArtifacts(ctx context.Context, runID string) (model.RunArtifacts, bool, error)
}
