package storage

import (
	"context"
	"sort"
	"sync"

	"bayopt/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	campaigns   map[string]model.CampaignSnapshot
	artifacts   map[string]model.RunArtifacts
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.campaigns = make(map[string]model.CampaignSnapshot)
	s.artifacts = make(map[string]model.RunArtifacts)
	return nil
}

func (s *MemoryStore) SaveCampaignSnapshot(_ context.Context, snapshot model.CampaignSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.Measurements = append([]model.MeasurementRecord(nil), snapshot.Measurements...)
	snapshot.Columns = append([]string(nil), snapshot.Columns...)
	s.campaigns[snapshot.ID] = snapshot
	return nil
}

func (s *MemoryStore) GetCampaignSnapshot(_ context.Context, id string) (model.CampaignSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.campaigns[id]
	if !ok {
		return model.CampaignSnapshot{}, false, nil
	}
	snapshot.Measurements = append([]model.MeasurementRecord(nil), snapshot.Measurements...)
	snapshot.Columns = append([]string(nil), snapshot.Columns...)
	return snapshot, true, nil
}

func (s *MemoryStore) ListCampaignIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.campaigns))
	for id := range s.campaigns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveRunArtifacts(_ context.Context, artifacts model.RunArtifacts) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifacts.BestByBatch = append([]float64(nil), artifacts.BestByBatch...)
	s.artifacts[artifacts.Config.RunID] = artifacts
	return nil
}

func (s *MemoryStore) GetRunArtifacts(_ context.Context, runID string) (model.RunArtifacts, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifacts, ok := s.artifacts[runID]
	if !ok {
		return model.RunArtifacts{}, false, nil
	}
	artifacts.BestByBatch = append([]float64(nil), artifacts.BestByBatch...)
	return artifacts, true, nil
}
