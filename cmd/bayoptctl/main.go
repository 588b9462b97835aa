package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bayopt/internal/objfn"
	"bayopt/internal/storage"
	bayapi "bayopt/pkg/bayopt"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "campaigns":
		return runCampaigns(ctx, args[1:])
	case "campaign":
		return runCampaign(ctx, args[1:])
	case "artifacts":
		return runArtifacts(ctx, args[1:])
	case "objectives":
		return runObjectives(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	env := envDefaults()
	storeKind := fs.String("store", env.storeKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", env.dbPath(), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	env := envDefaults()
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	objective := fs.String("objective", "sphere", "objective function: "+strings.Join(objfn.Available(), "|"))
	batches := fs.Int("batches", 10, "number of recommend/measure cycles")
	batchQuantity := fs.Int("batch-quantity", 3, "experiments per batch")
	seed := fs.Int64("seed", 1, "rng seed")
	surrogateName := fs.String("surrogate", "gp", "surrogate model: gp|ensemble|<registered architecture>")
	acquisition := fs.String("acquisition", "ucb", "acquisition function: ucb|ei|pi")
	switchAfter := fs.Int("switch-after", 0, "measurements required before the model-based phase (0 uses batch quantity)")
	candidates := fs.Int("candidates", 200, "candidate pool size per recommendation")
	acqBeta := fs.Float64("acq-beta", 0, "confidence-bound width for ucb (0 uses default)")
	acqXi := fs.Float64("acq-xi", 0, "improvement margin for ei/pi (0 uses default)")
	storeKind := fs.String("store", env.storeKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", env.dbPath(), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	overrideFromFlags(&req, setFlags, map[string]any{
		"run-id":         *runID,
		"objective":      *objective,
		"batches":        *batches,
		"batch-quantity": *batchQuantity,
		"seed":           *seed,
		"surrogate":      *surrogateName,
		"acquisition":    *acquisition,
		"switch-after":   *switchAfter,
		"candidates":     *candidates,
		"acq-beta":       *acqBeta,
		"acq-xi":         *acqXi,
	})

	client, err := bayapi.New(bayapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run=%s objective=%s batches=%d\n", summary.RunID, summary.Objective, len(summary.BestByBatch))
	for i, best := range summary.BestByBatch {
		fmt.Printf("batch=%d best=%.6f\n", i+1, best)
	}
	fmt.Printf("final best=%.6f params=%v\n", summary.FinalBest, summary.BestParams)
	return nil
}

func runCampaigns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("campaigns", flag.ContinueOnError)
	env := envDefaults()
	storeKind := fs.String("store", env.storeKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", env.dbPath(), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bayapi.New(bayapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	campaigns, err := client.Campaigns(ctx)
	if err != nil {
		return err
	}
	if len(campaigns) == 0 {
		fmt.Println("no campaigns")
		return nil
	}
	for _, c := range campaigns {
		fmt.Printf("id=%s batches=%d fits=%d measurements=%d\n", c.ID, c.BatchesDone, c.FitsDone, c.Measurements)
	}
	return nil
}

func runCampaign(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("campaign", flag.ContinueOnError)
	env := envDefaults()
	id := fs.String("id", "", "campaign id")
	storeKind := fs.String("store", env.storeKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", env.dbPath(), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return usageError("campaign requires -id")
	}

	client, err := bayapi.New(bayapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	snapshot, err := client.Campaign(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("id=%s batches=%d fits=%d columns=%v\n", snapshot.ID, snapshot.BatchesDone, snapshot.FitsDone, snapshot.Columns)
	for i, m := range snapshot.Measurements {
		fmt.Printf("row=%d batch=%d fit=%d", i, m.BatchNr, m.FitNr)
		for _, col := range snapshot.Columns {
			cell, ok := m.Values[col]
			if !ok {
				continue
			}
			switch cell.Kind {
			case "float":
				fmt.Printf(" %s=%.6f", col, cell.Float)
			case "string":
				fmt.Printf(" %s=%s", col, cell.Str)
			case "bool":
				fmt.Printf(" %s=%t", col, cell.Bool)
			default:
				fmt.Printf(" %s=<missing>", col)
			}
		}
		fmt.Println()
	}
	return nil
}

func runArtifacts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("artifacts", flag.ContinueOnError)
	env := envDefaults()
	runID := fs.String("run-id", "", "run id")
	storeKind := fs.String("store", env.storeKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", env.dbPath(), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("artifacts requires -run-id")
	}

	client, err := bayapi.New(bayapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	artifacts, err := client.Artifacts(ctx, *runID)
	if err != nil {
		return err
	}
	fmt.Printf("run=%s objective=%s surrogate=%s acquisition=%s seed=%d\n",
		artifacts.Config.RunID, artifacts.Config.Objective, artifacts.Config.Surrogate, artifacts.Config.Acquisition, artifacts.Config.Seed)
	for i, best := range artifacts.BestByBatch {
		fmt.Printf("batch=%d best=%.6f\n", i+1, best)
	}
	fmt.Printf("final best=%.6f params=%v\n", artifacts.FinalBest, artifacts.BestParams)
	return nil
}

func runObjectives(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("objectives", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, name := range objfn.Available() {
		obj, err := objfn.FromConfig(name)
		if err != nil {
			return err
		}
		sp, err := obj.Space()
		if err != nil {
			return err
		}
		fmt.Printf("name=%s dimensions=%d known-minimum=%.6f\n", obj.Name(), len(sp.Parameters()), obj.KnownMinimum())
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: bayoptctl <init|run|campaigns|campaign|artifacts|objectives> [flags]", msg)
}
