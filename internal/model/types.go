package model

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// CellRecord is the persisted form of one table cell.
type CellRecord struct {
	Kind  string  `json:"kind"`
	Float float64 `json:"float,omitempty"`
	Str   string  `json:"str,omitempty"`
	Bool  bool    `json:"bool,omitempty"`
}

// MeasurementRecord is one completed experiment row together with the batch
// it was requested in and the surrogate-fit cycle that incorporated it.
type MeasurementRecord struct {
	BatchNr int                   `json:"batch_nr"`
	FitNr   int                   `json:"fit_nr"`
	Values  map[string]CellRecord `json:"values"`
}

// CampaignSnapshot is the persisted state of one optimization campaign.
type CampaignSnapshot struct {
	VersionedRecord
	ID           string              `json:"id"`
	BatchesDone  int                 `json:"batches_done"`
	FitsDone     int                 `json:"fits_done"`
	Columns      []string            `json:"columns"`
	Measurements []MeasurementRecord `json:"measurements"`
}

// RunConfig records how a simulated campaign run was configured.
type RunConfig struct {
	RunID         string  `json:"run_id"`
	Objective     string  `json:"objective"`
	Batches       int     `json:"batches"`
	BatchQuantity int     `json:"batch_quantity"`
	Seed          int64   `json:"seed"`
	Surrogate     string  `json:"surrogate"`
	Acquisition   string  `json:"acquisition"`
	SwitchAfter   int     `json:"switch_after"`
	Candidates    int     `json:"candidates"`
	AcqBeta       float64 `json:"acq_beta,omitempty"`
	AcqXi         float64 `json:"acq_xi,omitempty"`
}

// RunArtifacts is the persisted outcome of one simulated campaign run.
type RunArtifacts struct {
	VersionedRecord
	Config      RunConfig          `json:"config"`
	BestByBatch []float64          `json:"best_by_batch"`
	FinalBest   float64            `json:"final_best"`
	BestParams  map[string]float64 `json:"best_params,omitempty"`
}
