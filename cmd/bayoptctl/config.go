package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"bayopt/internal/storage"
	bayapi "bayopt/pkg/bayopt"
)

// storeEnv carries environment overrides for the persistence flags, so
// scripted invocations can set the backend once instead of per command.
type storeEnv struct {
	StoreKind string `env:"BAYOPT_STORE"`
	DBPath    string `env:"BAYOPT_DB_PATH"`
}

func envDefaults() storeEnv {
	var cfg storeEnv
	if err := env.Parse(&cfg); err != nil {
		return storeEnv{}
	}
	return cfg
}

func (e storeEnv) storeKind() string {
	if e.StoreKind != "" {
		return e.StoreKind
	}
	return storage.DefaultStoreKind()
}

func (e storeEnv) dbPath() string {
	if e.DBPath != "" {
		return e.DBPath
	}
	return "bayopt.db"
}

func loadRunRequestFromConfig(path string) (bayapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bayapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return bayapi.RunRequest{}, err
	}

	var req bayapi.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["objective"]); ok {
		req.Objective = v
	}
	if v, ok := asInt(raw["batches"]); ok {
		req.Batches = v
	}
	if v, ok := asInt(raw["batch_quantity"]); ok {
		req.BatchQuantity = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asString(raw["surrogate"]); ok {
		req.Surrogate = v
	}
	if v, ok := asString(raw["acquisition"]); ok {
		req.Acquisition = v
	}
	if v, ok := asInt(raw["switch_after"]); ok {
		req.SwitchAfter = v
	}
	if v, ok := asInt(raw["candidates"]); ok {
		req.Candidates = v
	}
	if v, ok := asFloat64(raw["acq_beta"]); ok {
		req.AcqBeta = v
	}
	if v, ok := asFloat64(raw["acq_xi"]); ok {
		req.AcqXi = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (bayapi.RunRequest, error) {
	if configPath == "" {
		return bayapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return bayapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *bayapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "objective":
			req.Objective = v.(string)
		case "batches":
			req.Batches = v.(int)
		case "batch-quantity":
			req.BatchQuantity = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "surrogate":
			req.Surrogate = v.(string)
		case "acquisition":
			req.Acquisition = v.(string)
		case "switch-after":
			req.SwitchAfter = v.(int)
		case "candidates":
			req.Candidates = v.(int)
		case "acq-beta":
			req.AcqBeta = v.(float64)
		case "acq-xi":
			req.AcqXi = v.(float64)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
