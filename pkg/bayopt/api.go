package bayopt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"bayopt/internal/campaign"
	"bayopt/internal/model"
	"bayopt/internal/objfn"
	"bayopt/internal/recommend"
	"bayopt/internal/space"
	"bayopt/internal/storage"
	"bayopt/internal/surrogate"
	"bayopt/internal/table"
)

const defaultDBPath = "bayopt.db"

type Options struct {
	StoreKind string
	DBPath    string
}

// Client runs simulated optimization campaigns against the built-in
// benchmark functions and persists their state and outcomes.
type Client struct {
	store storage.Store
}

type RunRequest struct {
	RunID         string
	Objective     string
	Batches       int
	BatchQuantity int
	Seed          int64
	Surrogate     string
	Acquisition   string
	SwitchAfter   int
	Candidates    int
	AcqBeta       float64
	AcqXi         float64
}

type RunSummary struct {
	RunID       string
	Objective   string
	BestByBatch []float64
	FinalBest   float64
	BestParams  map[string]float64
}

type CampaignSummary struct {
	ID           string
	BatchesDone  int
	FitsDone     int
	Measurements int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run executes a closed-loop campaign: recommend a batch, evaluate it
// against the benchmark, feed the results back, repeat. The campaign
// snapshot and run artifacts are persisted before returning.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Objective == "" {
		req.Objective = "sphere"
	}
	if req.Batches <= 0 {
		req.Batches = 10
	}
	if req.BatchQuantity <= 0 {
		req.BatchQuantity = 3
	}
	if req.Surrogate == "" {
		req.Surrogate = "gp"
	}
	if req.SwitchAfter <= 0 {
		req.SwitchAfter = req.BatchQuantity
	}
	if req.Candidates <= 0 {
		req.Candidates = 200
	}
	if req.RunID == "" {
		req.RunID = fmt.Sprintf("%s-%s", req.Objective, uuid.NewString())
	}

	obj, err := objfn.FromConfig(req.Objective)
	if err != nil {
		return RunSummary{}, err
	}
	sp, err := obj.Space()
	if err != nil {
		return RunSummary{}, err
	}
	objective, err := space.NewObjective(space.Target{Name: "value", Mode: space.Minimize})
	if err != nil {
		return RunSummary{}, err
	}

	surr, err := surrogateFromConfig(req.Surrogate, sp)
	if err != nil {
		return RunSummary{}, err
	}
	acq, err := recommend.AcquisitionFromConfig(req.Acquisition)
	if err != nil {
		return RunSummary{}, err
	}

	bayesian := recommend.NewBayesian(surr, acq, req.Seed+1)
	bayesian.Candidates = req.Candidates
	if req.AcqBeta > 0 {
		bayesian.AcqParams.Beta = req.AcqBeta
	}
	if req.AcqXi > 0 {
		bayesian.AcqParams.Xi = req.AcqXi
	}
	meta := &recommend.TwoPhase{
		Initial:     recommend.NewRandom(req.Seed),
		Main:        bayesian,
		SwitchAfter: req.SwitchAfter,
	}

	camp, err := campaign.New(sp, objective, meta)
	if err != nil {
		return RunSummary{}, err
	}

	if err := c.store.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	best := math.MaxFloat64
	bestParams := map[string]float64{}
	bestByBatch := make([]float64, 0, req.Batches)

	for batch := 0; batch < req.Batches; batch++ {
		if err := ctx.Err(); err != nil {
			return RunSummary{}, err
		}

		rec, err := camp.Recommend(req.BatchQuantity)
		if err != nil {
			return RunSummary{}, err
		}

		measured, err := evaluateBatch(obj, sp, rec)
		if err != nil {
			return RunSummary{}, err
		}
		if err := camp.AddMeasurements(measured); err != nil {
			return RunSummary{}, err
		}

		for i := 0; i < measured.Len(); i++ {
			cell, err := measured.Cell("value", i)
			if err != nil {
				return RunSummary{}, err
			}
			v, _ := cell.AsFloat()
			if v < best {
				best = v
				bestParams = map[string]float64{}
				for _, p := range sp.Parameters() {
					pc, err := measured.Cell(p.Name(), i)
					if err != nil {
						return RunSummary{}, err
					}
					pv, _ := pc.AsFloat()
					bestParams[p.Name()] = pv
				}
			}
		}
		bestByBatch = append(bestByBatch, best)
	}

	snapshot, err := camp.Snapshot(req.RunID)
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveCampaignSnapshot(ctx, snapshot); err != nil {
		return RunSummary{}, err
	}

	artifacts := model.RunArtifacts{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: model.CurrentSchemaVersion,
			CodecVersion:  model.CurrentCodecVersion,
		},
		Config: model.RunConfig{
			RunID:         req.RunID,
			Objective:     req.Objective,
			Batches:       req.Batches,
			BatchQuantity: req.BatchQuantity,
			Seed:          req.Seed,
			Surrogate:     req.Surrogate,
			Acquisition:   req.Acquisition,
			SwitchAfter:   req.SwitchAfter,
			Candidates:    req.Candidates,
			AcqBeta:       req.AcqBeta,
			AcqXi:         req.AcqXi,
		},
		BestByBatch: bestByBatch,
		FinalBest:   best,
		BestParams:  bestParams,
	}
	if err := c.store.SaveRunArtifacts(ctx, artifacts); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:       req.RunID,
		Objective:   req.Objective,
		BestByBatch: bestByBatch,
		FinalBest:   best,
		BestParams:  bestParams,
	}, nil
}

// Artifacts fetches the persisted outcome of an earlier run.
func (c *Client) Artifacts(ctx context.Context, runID string) (model.RunArtifacts, error) {
	if runID == "" {
		return model.RunArtifacts{}, errors.New("run id is required")
	}
	artifacts, ok, err := c.store.GetRunArtifacts(ctx, runID)
	if err != nil {
		return model.RunArtifacts{}, err
	}
	if !ok {
		return model.RunArtifacts{}, fmt.Errorf("run artifacts not found: %s", runID)
	}
	return artifacts, nil
}

// Campaigns lists the persisted campaign snapshots.
func (c *Client) Campaigns(ctx context.Context) ([]CampaignSummary, error) {
	ids, err := c.store.ListCampaignIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CampaignSummary, 0, len(ids))
	for _, id := range ids {
		snapshot, ok, err := c.store.GetCampaignSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, CampaignSummary{
			ID:           snapshot.ID,
			BatchesDone:  snapshot.BatchesDone,
			FitsDone:     snapshot.FitsDone,
			Measurements: len(snapshot.Measurements),
		})
	}
	return out, nil
}

// Campaign fetches one persisted campaign snapshot.
func (c *Client) Campaign(ctx context.Context, id string) (model.CampaignSnapshot, error) {
	if id == "" {
		return model.CampaignSnapshot{}, errors.New("campaign id is required")
	}
	snapshot, ok, err := c.store.GetCampaignSnapshot(ctx, id)
	if err != nil {
		return model.CampaignSnapshot{}, err
	}
	if !ok {
		return model.CampaignSnapshot{}, fmt.Errorf("campaign not found: %s", id)
	}
	return snapshot, nil
}

func surrogateFromConfig(name string, sp space.SearchSpace) (surrogate.Surrogate, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "", "gp", "gaussian_process":
		return surrogate.NewGaussianProcess(), nil
	case "ensemble", "random_forest":
		return surrogate.NewEnsemble(nil)
	default:
		return surrogate.ResolveArchitecture(name, sp)
	}
}

func evaluateBatch(obj objfn.Objective, sp space.SearchSpace, rec *table.Table) (*table.Table, error) {
	cols := make([]string, 0, len(sp.Parameters())+1)
	for _, p := range sp.Parameters() {
		cols = append(cols, p.Name())
	}
	cols = append(cols, "value")

	out := table.New(cols...)
	for i := 0; i < rec.Len(); i++ {
		row := make(map[string]table.Cell, len(cols))
		for _, p := range sp.Parameters() {
			cell, err := rec.Cell(p.Name(), i)
			if err != nil {
				return nil, err
			}
			row[p.Name()] = cell
		}
		values := make(map[string]float64, len(sp.Parameters()))
		for _, p := range sp.Parameters() {
			v, ok := row[p.Name()].AsFloat()
			if !ok {
				return nil, fmt.Errorf("row %d parameter %q is not numeric", i, p.Name())
			}
			values[p.Name()] = v
		}
		row["value"] = table.Float(obj.Eval(values))
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}
